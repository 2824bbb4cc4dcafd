package engine

import "github.com/avidcoder/cutthroat/pkg/card"

// LegalActions enumerates every Action that seat may Apply right now. It is
// empty iff seat is not the acting seat or the game is over. Apply accepts
// an action iff it appears in this slice — the two can never disagree.
func (s *State) LegalActions(seat card.Seat) []Action {
	acting, ok := s.ActingSeat()
	if !ok || acting != seat {
		return nil
	}
	switch s.Phase.Kind {
	case PhaseMain:
		return s.legalMain(seat)
	case PhaseCountering:
		return s.legalCountering(seat)
	case PhaseResolvingThree:
		return s.legalResolvingThree()
	case PhaseResolvingFour:
		return s.legalResolvingFour(seat)
	case PhaseResolvingFive:
		return s.legalResolvingFive(seat)
	case PhaseResolvingSeven:
		return s.legalResolvingSeven(seat)
	default:
		return nil
	}
}

func (s *State) legalMain(seat card.Seat) []Action {
	var actions []Action
	board := &s.Players[seat]

	if len(s.Deck) > 0 && len(board.Hand) < 7 {
		actions = append(actions, Action{Kind: ActionDraw})
	}
	if len(s.Deck) == 0 {
		actions = append(actions, Action{Kind: ActionPass})
	}
	for _, c := range availableCards(board) {
		for _, p := range s.cardPlayOptions(seat, c) {
			actions = append(actions, mainActionFor(c, p))
		}
	}
	return actions
}

func mainActionFor(c card.Card, p SevenPlay) Action {
	switch p.Kind {
	case SevenPoints:
		return Action{Kind: ActionPlayPoints, Card: c}
	case SevenScuttle:
		return Action{Kind: ActionScuttle, Card: c, TargetBase: p.TargetBase}
	case SevenRoyal:
		return Action{Kind: ActionPlayRoyal, Card: c}
	case SevenJack:
		return Action{Kind: ActionPlayJack, Card: c, TargetBase: p.TargetBase}
	case SevenJoker:
		return Action{Kind: ActionPlayJoker, Card: c, TargetBase: p.TargetBase}
	case SevenOneOff:
		return Action{Kind: ActionPlayOneOff, Card: c, OneOffTarget: p.OneOffTarget}
	default:
		return Action{}
	}
}

// cardPlayOptions enumerates every way card c can be played right now,
// independent of whether c comes from a hand or a seven-reveal. The
// Discard option (seven-resolution only) is not included here.
func (s *State) cardPlayOptions(seat card.Seat, c card.Card) []SevenPlay {
	var out []SevenPlay
	if c.IsPointCard() {
		out = append(out, SevenPlay{Kind: SevenPoints})
	}
	if c.IsNumber() {
		for seat2 := card.Seat0; seat2 <= card.Seat2; seat2++ {
			if seat2 == seat {
				continue
			}
			for _, ps := range s.Players[seat2].Points {
				if c.ScuttleBeats(ps.Base) {
					out = append(out, SevenPlay{Kind: SevenScuttle, TargetBase: ps.Base})
				}
			}
		}
	}
	if !c.Joker && (c.Rank == card.Rank8 || c.Rank == card.RankQ || c.Rank == card.RankK) {
		out = append(out, SevenPlay{Kind: SevenRoyal})
	}
	if c.IsJack() {
		for _, base := range s.pointStackBases(seat) {
			out = append(out, SevenPlay{Kind: SevenJack, TargetBase: base})
		}
	}
	if c.Joker {
		for _, base := range s.royalStackBases(seat) {
			out = append(out, SevenPlay{Kind: SevenJoker, TargetBase: base})
		}
	}
	if c.IsOneOff() {
		for _, t := range s.oneOffTargets(seat, c) {
			out = append(out, SevenPlay{Kind: SevenOneOff, OneOffTarget: t})
		}
	}
	return out
}

// pointStackBases lists the bases of every PointStack not controlled by
// self, filtered by queen protection — the candidate set for placing a new
// Jack (main PlayJack, or a seven-resolution Jack play).
func (s *State) pointStackBases(self card.Seat) []card.Card {
	var out []card.Card
	for seat2 := card.Seat0; seat2 <= card.Seat2; seat2++ {
		if seat2 == self {
			continue
		}
		board := &s.Players[seat2]
		for _, ps := range board.Points {
			if queenProtectionAllows(board, false) {
				out = append(out, ps.Base)
			}
		}
	}
	return out
}

// royalStackBases is the RoyalStack analogue of pointStackBases.
func (s *State) royalStackBases(self card.Seat) []card.Card {
	var out []card.Card
	for seat2 := card.Seat0; seat2 <= card.Seat2; seat2++ {
		if seat2 == self {
			continue
		}
		board := &s.Players[seat2]
		for _, rs := range board.Royals {
			if queenProtectionAllows(board, rs.Base.IsQueen()) {
				out = append(out, rs.Base)
			}
		}
	}
	return out
}

func (s *State) pointStackTargets(self card.Seat) []OneOffTarget {
	var out []OneOffTarget
	for _, base := range s.pointStackBases(self) {
		out = append(out, OneOffTarget{Kind: TargetPoint, Card: base})
	}
	return out
}

func (s *State) royalStackTargets(self card.Seat) []OneOffTarget {
	var out []OneOffTarget
	for _, base := range s.royalStackBases(self) {
		out = append(out, OneOffTarget{Kind: TargetRoyal, Card: base})
	}
	return out
}

// jackRiderTargets lists the topmost Jack rider of every PointStack that
// has one, not controlled by self — the candidate set for scrapping or
// bouncing a rider (rank 2 / rank 9 Jack target).
func (s *State) jackRiderTargets(self card.Seat) []OneOffTarget {
	var out []OneOffTarget
	for seat2 := card.Seat0; seat2 <= card.Seat2; seat2++ {
		if seat2 == self {
			continue
		}
		board := &s.Players[seat2]
		for _, ps := range board.Points {
			if len(ps.Jacks) == 0 {
				continue
			}
			if !queenProtectionAllows(board, false) {
				continue
			}
			out = append(out, OneOffTarget{Kind: TargetJack, Card: ps.Jacks[len(ps.Jacks)-1].Card})
		}
	}
	return out
}

// jokerRiderTargets is the RoyalStack analogue of jackRiderTargets.
func (s *State) jokerRiderTargets(self card.Seat) []OneOffTarget {
	var out []OneOffTarget
	for seat2 := card.Seat0; seat2 <= card.Seat2; seat2++ {
		if seat2 == self {
			continue
		}
		board := &s.Players[seat2]
		for _, rs := range board.Royals {
			if len(rs.Jokers) == 0 {
				continue
			}
			if !queenProtectionAllows(board, rs.Base.IsQueen()) {
				continue
			}
			out = append(out, OneOffTarget{Kind: TargetJoker, Card: rs.Jokers[len(rs.Jokers)-1].Card})
		}
	}
	return out
}

// oneOffTargets enumerates the legal OneOffTarget values for playing c,
// per its rank's target shape (§4.1.4).
func (s *State) oneOffTargets(self card.Seat, c card.Card) []OneOffTarget {
	switch c.Rank {
	case card.RankA, card.Rank3, card.Rank5, card.Rank6, card.Rank7:
		return []OneOffTarget{{Kind: TargetNone}}
	case card.Rank2:
		var out []OneOffTarget
		out = append(out, s.royalStackTargets(self)...)
		out = append(out, s.jackRiderTargets(self)...)
		out = append(out, s.jokerRiderTargets(self)...)
		return out
	case card.Rank4:
		var out []OneOffTarget
		for seat2 := card.Seat0; seat2 <= card.Seat2; seat2++ {
			if seat2 == self {
				continue
			}
			out = append(out, OneOffTarget{Kind: TargetPlayer, Seat: seat2})
		}
		return out
	case card.Rank9:
		var out []OneOffTarget
		out = append(out, s.pointStackTargets(self)...)
		out = append(out, s.royalStackTargets(self)...)
		out = append(out, s.jackRiderTargets(self)...)
		out = append(out, s.jokerRiderTargets(self)...)
		return out
	default:
		return nil
	}
}

func (s *State) legalCountering(seat card.Seat) []Action {
	actions := []Action{{Kind: ActionCounterPass}}
	for _, c := range availableCards(&s.Players[seat]) {
		if c.IsTwo() {
			actions = append(actions, Action{Kind: ActionCounterTwo, Card: c})
		}
	}
	return actions
}

func (s *State) legalResolvingThree() []Action {
	var actions []Action
	for _, c := range s.Scrap {
		actions = append(actions, Action{Kind: ActionResolveThreePick, Card: c})
	}
	return actions
}

// legalResolvingFour enumerates over the full hand, not availableCards: a
// forced discard under a rank-4 must be satisfiable even from a frozen
// card, since nothing else in hand may be playable.
func (s *State) legalResolvingFour(seat card.Seat) []Action {
	var actions []Action
	for _, c := range s.Players[seat].Hand {
		actions = append(actions, Action{Kind: ActionResolveFourDiscard, Card: c})
	}
	return actions
}

// legalResolvingFive mirrors legalResolvingFour: a self-discard under a
// rank-5 must also be satisfiable from a frozen card.
func (s *State) legalResolvingFive(seat card.Seat) []Action {
	var actions []Action
	for _, c := range s.Players[seat].Hand {
		actions = append(actions, Action{Kind: ActionResolveFiveDiscard, Card: c})
	}
	return actions
}

func (s *State) legalResolvingSeven(seat card.Seat) []Action {
	var actions []Action
	for _, rc := range s.Phase.SevenRevealed {
		for _, p := range s.cardPlayOptions(seat, rc) {
			actions = append(actions, Action{Kind: ActionResolveSevenChoose, Card: rc, SevenPlay: p})
		}
		actions = append(actions, Action{Kind: ActionResolveSevenChoose, Card: rc, SevenPlay: SevenPlay{Kind: SevenDiscard}})
	}
	return actions
}
