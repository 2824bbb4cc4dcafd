package engine

import (
	"fmt"

	"github.com/avidcoder/cutthroat/pkg/card"
)

// NewWithDeck constructs the initial State for a game dealt from deck, per
// §3.3: five cards dealt one at a time to each seat, clockwise starting at
// next(dealer), for five rounds (the first 15 cards of deck). The engine
// does not re-validate deck membership — the caller must supply exactly 54
// distinct cards matching the standard deck.
func NewWithDeck(dealer card.Seat, deck []card.Card) (*State, error) {
	if len(deck) != 54 {
		return nil, fmt.Errorf("engine: deck must contain exactly 54 cards, got %d", len(deck))
	}
	s := &State{
		Dealer: dealer,
		Turn:   dealer.Next(),
		Phase:  Phase{Kind: PhaseMain},
		Deck:   append([]card.Card(nil), deck...),
	}
	seat := dealer.Next()
	for i := 0; i < 15; i++ {
		c := s.Deck[0]
		s.Deck = s.Deck[1:]
		s.Players[seat].Hand = append(s.Players[seat].Hand, c)
		seat = seat.Next()
	}
	return s, nil
}

// Apply mutates State according to (seat, a), or returns a RuleError and
// leaves State bitwise unchanged.
func (s *State) Apply(seat card.Seat, a Action) error {
	if s.Phase.Kind == PhaseGameOver {
		return newGameOver()
	}
	acting, ok := s.ActingSeat()
	if !ok || acting != seat {
		return newNotYourTurn()
	}

	legal := s.LegalActions(seat)
	found := false
	for _, la := range legal {
		if la == a {
			found = true
			break
		}
	}
	if !found {
		return illegal(fmt.Sprintf("%s is not a legal action for %s in phase %s", a.Kind, seat, s.Phase.Kind))
	}

	snapshot := s.clone()
	if err := s.perform(seat, a); err != nil {
		*s = *snapshot
		return err
	}
	if s.Winner == nil {
		s.checkPointsWin()
	}
	return nil
}

func (s *State) perform(seat card.Seat, a Action) *RuleError {
	switch s.Phase.Kind {
	case PhaseMain:
		return s.performMain(seat, a)
	case PhaseCountering:
		return s.performCountering(seat, a)
	case PhaseResolvingThree:
		return s.performResolvingThree(seat, a)
	case PhaseResolvingFour:
		return s.performResolvingFour(seat, a)
	case PhaseResolvingFive:
		return s.performResolvingFive(seat, a)
	case PhaseResolvingSeven:
		return s.performResolvingSeven(seat, a)
	default:
		return invalid("no actions are legal once the game is over")
	}
}

func (s *State) performMain(seat card.Seat, a Action) *RuleError {
	board := &s.Players[seat]
	switch a.Kind {
	case ActionDraw:
		c := s.drawTop()
		board.Hand = append(board.Hand, c)
		s.resetPassStreak()
		s.endTurn(seat)
	case ActionPass:
		s.advancePassStreak(seat)
		if s.PassStreakLen > 3 {
			s.Winner = &Winner{Kind: WinnerDraw}
			s.Phase = Phase{Kind: PhaseGameOver}
			return nil
		}
		s.endTurn(seat)
	case ActionPlayPoints:
		removeFromHandBoard(board, a.Card)
		board.Points = append(board.Points, PointStack{Base: a.Card, BaseOwner: seat})
		s.resetPassStreak()
		s.endTurn(seat)
	case ActionScuttle:
		removeFromHandBoard(board, a.Card)
		s.scuttleStack(a.Card, a.TargetBase)
		s.resetPassStreak()
		s.endTurn(seat)
	case ActionPlayRoyal:
		removeFromHandBoard(board, a.Card)
		board.Royals = append(board.Royals, RoyalStack{Base: a.Card, BaseOwner: seat})
		s.resetPassStreak()
		s.endTurn(seat)
	case ActionPlayJack:
		removeFromHandBoard(board, a.Card)
		s.stealPointStack(a.TargetBase, seat, a.Card)
		s.resetPassStreak()
		s.endTurn(seat)
	case ActionPlayJoker:
		removeFromHandBoard(board, a.Card)
		s.stealRoyalStack(a.TargetBase, seat, a.Card)
		s.resetPassStreak()
		s.endTurn(seat)
	case ActionPlayOneOff:
		removeFromHandBoard(board, a.Card)
		s.resetPassStreak()
		s.enterCountering(seat, a)
	default:
		return invalid("action not valid in the main phase")
	}
	return nil
}

func (s *State) performCountering(seat card.Seat, a Action) *RuleError {
	cs := s.Phase.Counter
	switch a.Kind {
	case ActionCounterPass:
		cs.NextSeat = cs.NextSeat.Next()
		if cs.NextSeat == cs.RotationAnchor {
			s.closeCounterWindow()
		}
	case ActionCounterTwo:
		board := &s.Players[seat]
		removeFromHandBoard(board, a.Card)
		cs.Twos = append(cs.Twos, TwoPlay{Seat: seat, Card: a.Card})
		cs.RotationAnchor = seat
		cs.NextSeat = seat.Next()
	default:
		return invalid("action not valid during a counter window")
	}
	return nil
}

// closeCounterWindow resolves the parity check: all Twos and the original
// one-off card go to scrap, then the effect resolves (even Twos count) or
// fizzles (odd). See §4.1.5.
func (s *State) closeCounterWindow() {
	cs := s.Phase.Counter
	for _, tp := range cs.Twos {
		s.Scrap = append(s.Scrap, tp.Card)
	}
	s.Scrap = append(s.Scrap, cs.OneOff.Card)

	basePlayer := cs.BasePlayer
	oneOff := cs.OneOff
	resolves := len(cs.Twos)%2 == 0

	if resolves {
		if entered := s.resolveOneOffEffect(basePlayer, oneOff); !entered {
			s.endTurn(basePlayer)
		}
	} else {
		s.endTurn(basePlayer)
	}
}

func (s *State) performResolvingThree(seat card.Seat, a Action) *RuleError {
	basePlayer := s.Phase.BasePlayer
	if !s.removeFromScrap(a.Card) {
		return invalid("card not in scrap")
	}
	s.Players[seat].Hand = append(s.Players[seat].Hand, a.Card)
	s.endTurn(basePlayer)
	return nil
}

func (s *State) performResolvingFour(seat card.Seat, a Action) *RuleError {
	basePlayer := s.Phase.BasePlayer
	board := &s.Players[seat]
	if !removeFromHandBoard(board, a.Card) {
		return invalid("card not in hand")
	}
	s.Scrap = append(s.Scrap, a.Card)
	s.Phase.FourRemaining--
	if s.Phase.FourRemaining <= 0 || len(board.Hand) == 0 {
		s.endTurn(basePlayer)
	}
	return nil
}

func (s *State) performResolvingFive(seat card.Seat, a Action) *RuleError {
	basePlayer := s.Phase.BasePlayer
	board := &s.Players[seat]
	if !removeFromHandBoard(board, a.Card) {
		return invalid("card not in hand")
	}
	s.Scrap = append(s.Scrap, a.Card)
	s.autoDrawUpTo(seat, 3)
	s.endTurn(basePlayer)
	return nil
}

func (s *State) performResolvingSeven(seat card.Seat, a Action) *RuleError {
	basePlayer := s.Phase.BasePlayer
	revealed := s.Phase.SevenRevealed

	idx := -1
	for i, rc := range revealed {
		if rc.Equal(a.Card) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return invalid("card was not revealed")
	}
	chosen := revealed[idx]
	leftover := append([]card.Card(nil), revealed[:idx]...)
	leftover = append(leftover, revealed[idx+1:]...)

	switch a.SevenPlay.Kind {
	case SevenPoints:
		s.Players[seat].Points = append(s.Players[seat].Points, PointStack{Base: chosen, BaseOwner: seat})
	case SevenScuttle:
		s.scuttleStack(chosen, a.SevenPlay.TargetBase)
	case SevenRoyal:
		s.Players[seat].Royals = append(s.Players[seat].Royals, RoyalStack{Base: chosen, BaseOwner: seat})
	case SevenJack:
		s.stealPointStack(a.SevenPlay.TargetBase, seat, chosen)
	case SevenJoker:
		s.stealRoyalStack(a.SevenPlay.TargetBase, seat, chosen)
	case SevenDiscard:
		s.Scrap = append(s.Scrap, chosen)
	case SevenOneOff:
		oneOffAction := Action{Kind: ActionPlayOneOff, Card: chosen, OneOffTarget: a.SevenPlay.OneOffTarget}
		s.Deck = append(leftover, s.Deck...)
		s.enterCountering(seat, oneOffAction)
		return nil
	default:
		return invalid("unrecognized seven play")
	}

	s.Deck = append(leftover, s.Deck...)
	s.endTurn(basePlayer)
	return nil
}

// resolveOneOffEffect applies the per-rank effect of §4.1.4 for a one-off
// that survived the counter window. It returns true if it transitioned into
// a Resolving* sub-phase, in which case the caller must not end the turn.
func (s *State) resolveOneOffEffect(basePlayer card.Seat, oneOff Action) bool {
	switch oneOff.Card.Rank {
	case card.RankA:
		s.scrapAllPoints()
		return false
	case card.Rank2:
		s.resolveRank2(oneOff.OneOffTarget)
		return false
	case card.Rank3:
		if len(s.Scrap) == 0 {
			return false
		}
		s.Phase = Phase{Kind: PhaseResolvingThree, Seat: basePlayer, BasePlayer: basePlayer}
		return true
	case card.Rank4:
		target := oneOff.OneOffTarget.Seat
		if len(s.Players[target].Hand) == 0 {
			return false
		}
		remaining := 2
		if len(s.Players[target].Hand) < remaining {
			remaining = len(s.Players[target].Hand)
		}
		s.Phase = Phase{Kind: PhaseResolvingFour, Seat: target, BasePlayer: basePlayer, FourRemaining: remaining}
		return true
	case card.Rank5:
		if len(s.Players[basePlayer].Hand) == 0 {
			s.autoDrawUpTo(basePlayer, 3)
			return false
		}
		s.Phase = Phase{Kind: PhaseResolvingFive, Seat: basePlayer, BasePlayer: basePlayer}
		return true
	case card.Rank6:
		s.scrapAllRoyalsAndJackRiders()
		return false
	case card.Rank7:
		revealed := s.revealFromDeck(2)
		if len(revealed) == 0 {
			return false
		}
		s.Phase = Phase{Kind: PhaseResolvingSeven, Seat: basePlayer, BasePlayer: basePlayer, SevenRevealed: revealed}
		return true
	case card.Rank9:
		s.resolveRank9(oneOff.OneOffTarget)
		return false
	default:
		return false
	}
}

func (s *State) resolveRank2(target OneOffTarget) {
	switch target.Kind {
	case TargetRoyal:
		s.scrapRoyalStack(target.Card)
	case TargetJack:
		s.scrapTopmostJack(target.Card)
	case TargetJoker:
		s.scrapTopmostJoker(target.Card)
	}
}

func (s *State) resolveRank9(target OneOffTarget) {
	switch target.Kind {
	case TargetPoint:
		s.bouncePointStack(target.Card)
	case TargetRoyal:
		s.bounceRoyalStack(target.Card)
	case TargetJack:
		s.bounceJackRider(target.Card)
	case TargetJoker:
		s.bounceJokerRider(target.Card)
	}
}

// endTurn decrements seat's frozen counters, drops any that reach zero,
// returns to the Main phase, and advances Turn to the next seat.
func (s *State) endTurn(seat card.Seat) {
	board := &s.Players[seat]
	kept := board.Frozen[:0:0]
	for _, f := range board.Frozen {
		f.RemainingTurns--
		if f.RemainingTurns > 0 {
			kept = append(kept, f)
		}
	}
	board.Frozen = kept
	s.Turn = seat.Next()
	s.Phase = Phase{Kind: PhaseMain}
}

func (s *State) enterCountering(seat card.Seat, oneOff Action) {
	s.Phase = Phase{
		Kind: PhaseCountering,
		Counter: &CounterState{
			BasePlayer:     seat,
			OneOff:         oneOff,
			NextSeat:       seat.Next(),
			RotationAnchor: seat,
		},
	}
}

func (s *State) advancePassStreak(seat card.Seat) {
	if s.PassStreakStart == nil {
		ss := seat
		s.PassStreakStart = &ss
		s.PassStreakLen = 1
		return
	}
	s.PassStreakLen++
}

func (s *State) resetPassStreak() {
	s.PassStreakStart = nil
	s.PassStreakLen = 0
}

// checkPointsWin implements Scenario A's point-threshold win condition: a
// seat wins the instant its controlled point-stack total reaches the
// threshold set by how many Kings it controls (14 with none, 9 with one,
// 5 with two, 0 with three or more).
func (s *State) checkPointsWin() {
	for seatIdx := card.Seat0; seatIdx <= card.Seat2; seatIdx++ {
		board := &s.Players[seatIdx]
		total := 0
		for _, ps := range board.Points {
			total += pointValue(ps.Base)
		}
		kings := 0
		for _, rs := range board.Royals {
			if !rs.Base.Joker && rs.Base.Rank == card.RankK {
				kings++
			}
		}
		if total >= thresholdForKings(kings) {
			s.Winner = &Winner{Kind: WinnerSeat, Seat: seatIdx}
			s.Phase = Phase{Kind: PhaseGameOver}
			return
		}
	}
}

func pointValue(c card.Card) int {
	if c.Rank == card.RankA {
		return 1
	}
	return int(c.Rank) + 2
}

func thresholdForKings(kings int) int {
	switch {
	case kings >= 3:
		return 0
	case kings == 2:
		return 5
	case kings == 1:
		return 9
	default:
		return 14
	}
}
