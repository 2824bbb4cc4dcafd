package engine

import "github.com/avidcoder/cutthroat/pkg/card"

// PlayerView is one seat's board as seen by a particular viewer: always
// visible (points, royals are never hidden), with Hand nil unless the
// viewer is allowed to see it.
type PlayerView struct {
	Hand   []card.Card // nil unless viewer==seat or glasses reveal it
	Points []PointStack
	Royals []RoyalStack
	Frozen []FrozenCard
}

// PublicView is State redacted for one viewer, per §4.1.7.
type PublicView struct {
	Viewer        card.Seat
	Dealer        card.Seat
	Turn          card.Seat
	Phase         Phase
	DeckSize      int
	Scrap         []card.Card
	Players       [3]PlayerView
	Winner        *Winner
	SevenRevealed []card.Card // only populated for the active resolver during ResolvingSeven
}

// PublicView redacts State for viewer. A viewer always sees their own hand
// and frozen list and everybody's points/royals/scrap/deck size. Glasses
// (controlling a royal stack whose base is an 8) reveal every opponent's
// hand. During ResolvingSeven, only the resolver sees the revealed cards.
func (s *State) PublicView(viewer card.Seat) PublicView {
	v := PublicView{
		Viewer:   viewer,
		Dealer:   s.Dealer,
		Turn:     s.Turn,
		Phase:    s.Phase,
		DeckSize: len(s.Deck),
		Scrap:    append([]card.Card(nil), s.Scrap...),
		Winner:   s.Winner,
	}

	hasGlasses := controlsAnEight(&s.Players[viewer])

	for seatIdx := card.Seat0; seatIdx <= card.Seat2; seatIdx++ {
		board := s.Players[seatIdx]
		pv := PlayerView{
			Points: clonePointStacks(board.Points),
			Royals: cloneRoyalStacks(board.Royals),
			Frozen: append([]FrozenCard(nil), board.Frozen...),
		}
		if seatIdx == viewer || hasGlasses {
			pv.Hand = append([]card.Card(nil), board.Hand...)
		}
		v.Players[seatIdx] = pv
	}

	if s.Phase.Kind == PhaseResolvingSeven && s.Phase.Seat == viewer {
		v.SevenRevealed = append([]card.Card(nil), s.Phase.SevenRevealed...)
	} else {
		v.Phase.SevenRevealed = nil
	}

	return v
}

func controlsAnEight(board *PlayerBoard) bool {
	for _, rs := range board.Royals {
		if !rs.Base.Joker && rs.Base.Rank == card.Rank8 {
			return true
		}
	}
	return false
}
