package engine

import "github.com/avidcoder/cutthroat/pkg/card"

func (s *State) drawTop() card.Card {
	c := s.Deck[0]
	s.Deck = s.Deck[1:]
	return c
}

func (s *State) revealFromDeck(n int) []card.Card {
	var out []card.Card
	for i := 0; i < n && len(s.Deck) > 0; i++ {
		out = append(out, s.Deck[0])
		s.Deck = s.Deck[1:]
	}
	return out
}

func (s *State) autoDrawUpTo(seat card.Seat, n int) {
	board := &s.Players[seat]
	for i := 0; i < n; i++ {
		if len(s.Deck) == 0 || len(board.Hand) >= 7 {
			break
		}
		board.Hand = append(board.Hand, s.drawTop())
	}
}

func (s *State) freeze(seat card.Seat, c card.Card, turns uint8) {
	s.Players[seat].Frozen = append(s.Players[seat].Frozen, FrozenCard{Card: c, RemainingTurns: turns})
}

func removeFromHandBoard(board *PlayerBoard, c card.Card) bool {
	for i, h := range board.Hand {
		if h.Equal(c) {
			board.Hand = append(board.Hand[:i], board.Hand[i+1:]...)
			return true
		}
	}
	return false
}

func (s *State) removeFromScrap(c card.Card) bool {
	for i, sc := range s.Scrap {
		if sc.Equal(c) {
			s.Scrap = append(s.Scrap[:i], s.Scrap[i+1:]...)
			return true
		}
	}
	return false
}

func availableCards(board *PlayerBoard) []card.Card {
	frozen := make(map[card.Card]bool, len(board.Frozen))
	for _, f := range board.Frozen {
		frozen[f.Card] = true
	}
	var out []card.Card
	for _, c := range board.Hand {
		if !frozen[c] {
			out = append(out, c)
		}
	}
	return out
}

// queenProtectionAllows implements the per-seat targeting restriction: two
// or more controlled Queens make every stack of board's owner immune; with
// exactly one, only that Queen's own stack may be targeted; with none,
// there is no restriction.
func queenProtectionAllows(board *PlayerBoard, targetIsQueen bool) bool {
	queens := 0
	for _, rs := range board.Royals {
		if rs.Base.IsQueen() {
			queens++
		}
	}
	switch {
	case queens >= 2:
		return false
	case queens == 1:
		return targetIsQueen
	default:
		return true
	}
}

func (s *State) findPointStack(base card.Card) (card.Seat, int, bool) {
	for seatIdx := card.Seat0; seatIdx <= card.Seat2; seatIdx++ {
		for i, ps := range s.Players[seatIdx].Points {
			if ps.Base.Equal(base) {
				return seatIdx, i, true
			}
		}
	}
	return 0, 0, false
}

func (s *State) findRoyalStack(base card.Card) (card.Seat, int, bool) {
	for seatIdx := card.Seat0; seatIdx <= card.Seat2; seatIdx++ {
		for i, rs := range s.Players[seatIdx].Royals {
			if rs.Base.Equal(base) {
				return seatIdx, i, true
			}
		}
	}
	return 0, 0, false
}

func (s *State) removePointStackAt(seat card.Seat, idx int) PointStack {
	list := s.Players[seat].Points
	ps := list[idx]
	s.Players[seat].Points = append(list[:idx], list[idx+1:]...)
	return ps
}

func (s *State) removeRoyalStackAt(seat card.Seat, idx int) RoyalStack {
	list := s.Players[seat].Royals
	rs := list[idx]
	s.Players[seat].Royals = append(list[:idx], list[idx+1:]...)
	return rs
}

// stealPointStack moves a PointStack under a new Jack rider played by thief.
func (s *State) stealPointStack(base card.Card, thief card.Seat, jack card.Card) {
	owner, idx, ok := s.findPointStack(base)
	if !ok {
		return
	}
	ps := s.removePointStackAt(owner, idx)
	ps.Jacks = append(ps.Jacks, Rider{Card: jack, Owner: thief})
	s.Players[thief].Points = append(s.Players[thief].Points, ps)
}

// stealRoyalStack moves a RoyalStack under a new Joker rider played by thief.
func (s *State) stealRoyalStack(base card.Card, thief card.Seat, joker card.Card) {
	owner, idx, ok := s.findRoyalStack(base)
	if !ok {
		return
	}
	rs := s.removeRoyalStackAt(owner, idx)
	rs.Jokers = append(rs.Jokers, Rider{Card: joker, Owner: thief})
	s.Players[thief].Royals = append(s.Players[thief].Royals, rs)
}

// scuttleStack scraps attacker, then the entire targeted PointStack
// (base, then every Jack rider in play order).
func (s *State) scuttleStack(attacker card.Card, base card.Card) {
	s.Scrap = append(s.Scrap, attacker)
	owner, idx, ok := s.findPointStack(base)
	if !ok {
		return
	}
	ps := s.removePointStackAt(owner, idx)
	s.Scrap = append(s.Scrap, ps.Base)
	for _, r := range ps.Jacks {
		s.Scrap = append(s.Scrap, r.Card)
	}
}

// scrapRoyalStack scraps an entire RoyalStack (base, then every Joker rider).
func (s *State) scrapRoyalStack(base card.Card) {
	owner, idx, ok := s.findRoyalStack(base)
	if !ok {
		return
	}
	rs := s.removeRoyalStackAt(owner, idx)
	s.Scrap = append(s.Scrap, rs.Base)
	for _, r := range rs.Jokers {
		s.Scrap = append(s.Scrap, r.Card)
	}
}

// scrapTopmostJack scraps only the topmost Jack rider of whichever PointStack
// it sits on; the stack survives and may relocate to its new controller.
func (s *State) scrapTopmostJack(jackCard card.Card) {
	for seatIdx := card.Seat0; seatIdx <= card.Seat2; seatIdx++ {
		board := &s.Players[seatIdx]
		for i, ps := range board.Points {
			if len(ps.Jacks) == 0 || !ps.Jacks[len(ps.Jacks)-1].Card.Equal(jackCard) {
				continue
			}
			removed := ps.Jacks[len(ps.Jacks)-1]
			ps.Jacks = ps.Jacks[:len(ps.Jacks)-1]
			s.Scrap = append(s.Scrap, removed.Card)
			board.Points = append(board.Points[:i], board.Points[i+1:]...)
			newController := ps.Controller()
			s.Players[newController].Points = append(s.Players[newController].Points, ps)
			return
		}
	}
}

// scrapTopmostJoker is the RoyalStack analogue of scrapTopmostJack.
func (s *State) scrapTopmostJoker(jokerCard card.Card) {
	for seatIdx := card.Seat0; seatIdx <= card.Seat2; seatIdx++ {
		board := &s.Players[seatIdx]
		for i, rs := range board.Royals {
			if len(rs.Jokers) == 0 || !rs.Jokers[len(rs.Jokers)-1].Card.Equal(jokerCard) {
				continue
			}
			removed := rs.Jokers[len(rs.Jokers)-1]
			rs.Jokers = rs.Jokers[:len(rs.Jokers)-1]
			s.Scrap = append(s.Scrap, removed.Card)
			board.Royals = append(board.Royals[:i], board.Royals[i+1:]...)
			newController := rs.Controller()
			s.Players[newController].Royals = append(s.Players[newController].Royals, rs)
			return
		}
	}
}

// bouncePointStack returns an entire PointStack's base to its controller's
// hand (scrapping any Jack riders) and freezes the returned base for one turn.
func (s *State) bouncePointStack(base card.Card) {
	owner, idx, ok := s.findPointStack(base)
	if !ok {
		return
	}
	ps := s.removePointStackAt(owner, idx)
	for _, r := range ps.Jacks {
		s.Scrap = append(s.Scrap, r.Card)
	}
	s.Players[owner].Hand = append(s.Players[owner].Hand, ps.Base)
	s.freeze(owner, ps.Base, 1)
}

func (s *State) bounceRoyalStack(base card.Card) {
	owner, idx, ok := s.findRoyalStack(base)
	if !ok {
		return
	}
	rs := s.removeRoyalStackAt(owner, idx)
	for _, r := range rs.Jokers {
		s.Scrap = append(s.Scrap, r.Card)
	}
	s.Players[owner].Hand = append(s.Players[owner].Hand, rs.Base)
	s.freeze(owner, rs.Base, 1)
}

// bounceJackRider returns just the topmost Jack rider to its owner's hand
// (freezing it) and lets the stack revert to whoever now controls it.
func (s *State) bounceJackRider(jackCard card.Card) {
	for seatIdx := card.Seat0; seatIdx <= card.Seat2; seatIdx++ {
		board := &s.Players[seatIdx]
		for i, ps := range board.Points {
			if len(ps.Jacks) == 0 || !ps.Jacks[len(ps.Jacks)-1].Card.Equal(jackCard) {
				continue
			}
			rider := ps.Jacks[len(ps.Jacks)-1]
			ps.Jacks = ps.Jacks[:len(ps.Jacks)-1]
			board.Points = append(board.Points[:i], board.Points[i+1:]...)
			newController := ps.Controller()
			s.Players[newController].Points = append(s.Players[newController].Points, ps)
			s.Players[rider.Owner].Hand = append(s.Players[rider.Owner].Hand, rider.Card)
			s.freeze(rider.Owner, rider.Card, 1)
			return
		}
	}
}

func (s *State) bounceJokerRider(jokerCard card.Card) {
	for seatIdx := card.Seat0; seatIdx <= card.Seat2; seatIdx++ {
		board := &s.Players[seatIdx]
		for i, rs := range board.Royals {
			if len(rs.Jokers) == 0 || !rs.Jokers[len(rs.Jokers)-1].Card.Equal(jokerCard) {
				continue
			}
			rider := rs.Jokers[len(rs.Jokers)-1]
			rs.Jokers = rs.Jokers[:len(rs.Jokers)-1]
			board.Royals = append(board.Royals[:i], board.Royals[i+1:]...)
			newController := rs.Controller()
			s.Players[newController].Royals = append(s.Players[newController].Royals, rs)
			s.Players[rider.Owner].Hand = append(s.Players[rider.Owner].Hand, rider.Card)
			s.freeze(rider.Owner, rider.Card, 1)
			return
		}
	}
}

// scrapAllPoints implements the Ace effect: every PointStack in play (base,
// then Jacks in play order) moves to scrap.
func (s *State) scrapAllPoints() {
	for seatIdx := range s.Players {
		board := &s.Players[seatIdx]
		for _, ps := range board.Points {
			s.Scrap = append(s.Scrap, ps.Base)
			for _, r := range ps.Jacks {
				s.Scrap = append(s.Scrap, r.Card)
			}
		}
		board.Points = nil
	}
}

// scrapAllRoyalsAndJackRiders implements the Six effect: every RoyalStack
// (base and Jokers) is scrapped outright, and every PointStack loses its
// Jack riders (reverting to its BaseOwner) without the base itself scrapping.
func (s *State) scrapAllRoyalsAndJackRiders() {
	for seatIdx := range s.Players {
		board := &s.Players[seatIdx]
		for _, rs := range board.Royals {
			s.Scrap = append(s.Scrap, rs.Base)
			for _, r := range rs.Jokers {
				s.Scrap = append(s.Scrap, r.Card)
			}
		}
		board.Royals = nil
		for i := range board.Points {
			ps := &board.Points[i]
			for _, r := range ps.Jacks {
				s.Scrap = append(s.Scrap, r.Card)
			}
			ps.Jacks = nil
		}
	}
	s.reconcilePointControllers()
}

// reconcilePointControllers relocates every PointStack to the board of its
// (possibly just-changed) Controller, restoring the invariant that a stack
// always lives under its controller's board.
func (s *State) reconcilePointControllers() {
	var all []PointStack
	for seatIdx := range s.Players {
		all = append(all, s.Players[seatIdx].Points...)
		s.Players[seatIdx].Points = nil
	}
	for _, ps := range all {
		c := ps.Controller()
		s.Players[c].Points = append(s.Players[c].Points, ps)
	}
}
