package engine

import (
	"testing"

	"github.com/avidcoder/cutthroat/pkg/card"
)

func c(rank card.Rank, suit card.Suit) card.Card { return card.NewCard(rank, suit) }

func TestNewWithDeckDealsFifteenCardsClockwiseFromNextDealer(t *testing.T) {
	deck := card.StandardDeck()
	s, err := NewWithDeck(card.Seat0, deck)
	if err != nil {
		t.Fatalf("NewWithDeck: %v", err)
	}
	if s.Turn != card.Seat1 {
		t.Errorf("initial turn = %v, want Seat1 (next of dealer)", s.Turn)
	}
	if s.Phase.Kind != PhaseMain {
		t.Errorf("initial phase = %v, want Main", s.Phase.Kind)
	}
	for seat := card.Seat0; seat <= card.Seat2; seat++ {
		if len(s.Players[seat].Hand) != 5 {
			t.Errorf("seat %v dealt %d cards, want 5", seat, len(s.Players[seat].Hand))
		}
	}
	if s.Players[card.Seat1].Hand[0] != deck[0] {
		t.Errorf("first card dealt should go to next(dealer)")
	}
	if len(s.Deck) != 39 {
		t.Errorf("deck size after deal = %d, want 39", len(s.Deck))
	}
}

func TestNewWithDeckRejectsWrongSize(t *testing.T) {
	if _, err := NewWithDeck(card.Seat0, card.StandardDeck()[:10]); err == nil {
		t.Error("expected an error for a short deck")
	}
}

// Scenario A — King threshold: playing a King when already holding 9 points
// crosses the one-king threshold of 9 and wins immediately.
func TestScenarioAKingThreshold(t *testing.T) {
	s := &State{
		Turn:  card.Seat0,
		Phase: Phase{Kind: PhaseMain},
	}
	s.Players[0].Hand = []card.Card{c(card.RankK, card.SuitHearts)}
	s.Players[0].Points = []PointStack{{Base: c(card.Rank9, card.SuitClubs), BaseOwner: card.Seat0}}

	err := s.Apply(card.Seat0, Action{Kind: ActionPlayRoyal, Card: c(card.RankK, card.SuitHearts)})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if s.Winner == nil || s.Winner.Kind != WinnerSeat || s.Winner.Seat != card.Seat0 {
		t.Fatalf("winner = %+v, want Seat(0)", s.Winner)
	}
	if s.Phase.Kind != PhaseGameOver {
		t.Errorf("phase = %v, want GameOver", s.Phase.Kind)
	}
}

// Scenario B — one Two countering an Ace is odd parity: the one-off fizzles.
func TestScenarioBCounterParityFizzle(t *testing.T) {
	s := &State{Turn: card.Seat0, Phase: Phase{Kind: PhaseMain}}
	s.Players[0].Hand = []card.Card{c(card.RankA, card.SuitClubs)}
	s.Players[1].Hand = []card.Card{c(card.Rank2, card.SuitDiamonds)}
	s.Players[2].Points = []PointStack{{Base: c(card.Rank5, card.SuitSpades), BaseOwner: card.Seat2}}

	mustApply(t, s, card.Seat0, Action{Kind: ActionPlayOneOff, Card: c(card.RankA, card.SuitClubs), OneOffTarget: OneOffTarget{Kind: TargetNone}})
	mustApply(t, s, card.Seat1, Action{Kind: ActionCounterTwo, Card: c(card.Rank2, card.SuitDiamonds)})
	mustApply(t, s, card.Seat2, Action{Kind: ActionCounterPass})
	mustApply(t, s, card.Seat0, Action{Kind: ActionCounterPass})

	if s.Phase.Kind != PhaseMain {
		t.Fatalf("phase = %v, want Main after the window closes", s.Phase.Kind)
	}
	if len(s.Players[2].Points) != 1 {
		t.Errorf("fizzled ace must not scrap points, got %d stacks left", len(s.Players[2].Points))
	}
	if len(s.Scrap) != 2 {
		t.Fatalf("scrap = %v, want the two and the ace", s.Scrap)
	}
	if s.Turn != card.Seat1 {
		t.Errorf("turn = %v, want Seat1 (next of base_player 0)", s.Turn)
	}
}

// Scenario C — two Twos is even parity: the Ace resolves and scraps every point stack.
func TestScenarioCCounterParityResolves(t *testing.T) {
	s := &State{Turn: card.Seat0, Phase: Phase{Kind: PhaseMain}}
	s.Players[0].Hand = []card.Card{c(card.RankA, card.SuitClubs)}
	s.Players[1].Hand = []card.Card{c(card.Rank2, card.SuitDiamonds)}
	s.Players[2].Hand = []card.Card{c(card.Rank2, card.SuitHearts)}
	s.Players[2].Points = []PointStack{{Base: c(card.Rank5, card.SuitSpades), BaseOwner: card.Seat2}}

	mustApply(t, s, card.Seat0, Action{Kind: ActionPlayOneOff, Card: c(card.RankA, card.SuitClubs), OneOffTarget: OneOffTarget{Kind: TargetNone}})
	mustApply(t, s, card.Seat1, Action{Kind: ActionCounterTwo, Card: c(card.Rank2, card.SuitDiamonds)})
	mustApply(t, s, card.Seat2, Action{Kind: ActionCounterTwo, Card: c(card.Rank2, card.SuitHearts)})
	mustApply(t, s, card.Seat0, Action{Kind: ActionCounterPass})
	mustApply(t, s, card.Seat1, Action{Kind: ActionCounterPass})

	if len(s.Players[2].Points) != 0 {
		t.Errorf("resolved ace must scrap all points, %d remain", len(s.Players[2].Points))
	}
	if s.Turn != card.Seat1 {
		t.Errorf("turn = %v, want Seat1", s.Turn)
	}
}

// Scenario D — a Jack steals a point stack; an uncountered 9 bounces the
// rider back to whoever played it (the thief) and returns the stack to its
// base owner.
func TestScenarioDJackTheftAndBounce(t *testing.T) {
	s := &State{Turn: card.Seat0, Phase: Phase{Kind: PhaseMain}}
	s.Players[0].Hand = []card.Card{c(card.RankJ, card.SuitDiamonds)}
	s.Players[1].Points = []PointStack{{Base: c(card.Rank5, card.SuitClubs), BaseOwner: card.Seat1}}
	s.Players[2].Hand = []card.Card{c(card.Rank9, card.SuitClubs)}

	mustApply(t, s, card.Seat0, Action{Kind: ActionPlayJack, Card: c(card.RankJ, card.SuitDiamonds), TargetBase: c(card.Rank5, card.SuitClubs)})
	if s.Players[0].Points[0].Controller() != card.Seat0 {
		t.Fatalf("stack should now be controlled by the thief")
	}

	s.Turn = card.Seat2 // drive the scenario directly to seat 2's one-off
	mustApply(t, s, card.Seat2, Action{Kind: ActionPlayOneOff, Card: c(card.Rank9, card.SuitClubs), OneOffTarget: OneOffTarget{Kind: TargetJack, Card: c(card.RankJ, card.SuitDiamonds)}})
	mustApply(t, s, card.Seat0, Action{Kind: ActionCounterPass})
	mustApply(t, s, card.Seat1, Action{Kind: ActionCounterPass})

	found := false
	for _, h := range s.Players[0].Hand {
		if h.Equal(c(card.RankJ, card.SuitDiamonds)) {
			found = true
		}
	}
	if !found {
		t.Errorf("jack should return to seat 0 (whoever played it), hand = %v", s.Players[0].Hand)
	}
	if len(s.Players[0].Frozen) != 1 || s.Players[0].Frozen[0].RemainingTurns != 1 {
		t.Errorf("jack should come back frozen for 1 turn, frozen = %v", s.Players[0].Frozen)
	}
	if len(s.Players[1].Points) != 1 || s.Players[1].Points[0].Controller() != card.Seat1 {
		t.Errorf("stack should revert to its base owner, seat1 points = %v", s.Players[1].Points)
	}
}

// Scenario E — a seven reveals two cards; choosing OneOff on one returns the
// other to the deck top and opens a new counter window.
func TestScenarioESevenRevealThenOneOff(t *testing.T) {
	s := &State{Turn: card.Seat0, Phase: Phase{Kind: PhaseMain}}
	s.Players[0].Hand = []card.Card{c(card.Rank7, card.SuitClubs)}
	s.Deck = []card.Card{c(card.RankA, card.SuitClubs), c(card.RankK, card.SuitDiamonds), c(card.Rank3, card.SuitHearts)}

	mustApply(t, s, card.Seat0, Action{Kind: ActionPlayOneOff, Card: c(card.Rank7, card.SuitClubs), OneOffTarget: OneOffTarget{Kind: TargetNone}})
	mustApply(t, s, card.Seat1, Action{Kind: ActionCounterPass})
	mustApply(t, s, card.Seat2, Action{Kind: ActionCounterPass})

	if s.Phase.Kind != PhaseResolvingSeven {
		t.Fatalf("phase = %v, want ResolvingSeven", s.Phase.Kind)
	}
	want := []card.Card{c(card.RankA, card.SuitClubs), c(card.RankK, card.SuitDiamonds)}
	if len(s.Phase.SevenRevealed) != 2 || !s.Phase.SevenRevealed[0].Equal(want[0]) || !s.Phase.SevenRevealed[1].Equal(want[1]) {
		t.Fatalf("revealed = %v, want %v", s.Phase.SevenRevealed, want)
	}

	mustApply(t, s, card.Seat0, Action{
		Kind:      ActionResolveSevenChoose,
		Card:      c(card.RankA, card.SuitClubs),
		SevenPlay: SevenPlay{Kind: SevenOneOff, OneOffTarget: OneOffTarget{Kind: TargetNone}},
	})

	if s.Phase.Kind != PhaseCountering || s.Phase.Counter.BasePlayer != card.Seat0 {
		t.Fatalf("phase = %+v, want Countering with base_player 0", s.Phase)
	}
	if len(s.Deck) == 0 || !s.Deck[0].Equal(c(card.RankK, card.SuitDiamonds)) {
		t.Errorf("unchosen card should return to deck top, deck = %v", s.Deck)
	}
}

// Scenario F — a full rotation of passes, twice around to the starter, ends in a draw.
func TestScenarioFStalemate(t *testing.T) {
	s := &State{Turn: card.Seat0, Phase: Phase{Kind: PhaseMain}}

	mustApply(t, s, card.Seat0, Action{Kind: ActionPass})
	mustApply(t, s, card.Seat1, Action{Kind: ActionPass})
	mustApply(t, s, card.Seat2, Action{Kind: ActionPass})
	mustApply(t, s, card.Seat0, Action{Kind: ActionPass})

	if s.Winner == nil || s.Winner.Kind != WinnerDraw {
		t.Fatalf("winner = %+v, want Draw", s.Winner)
	}
}

func TestFrozenCardDecrementsAndBecomesPlayableAgain(t *testing.T) {
	s := &State{Turn: card.Seat0, Phase: Phase{Kind: PhaseMain}}
	frozenCard := c(card.Rank4, card.SuitSpades)
	s.Players[0].Hand = []card.Card{frozenCard}
	s.Players[0].Frozen = []FrozenCard{{Card: frozenCard, RemainingTurns: 1}}
	// deck empty -> Pass is the only legal action regardless of the frozen card
	mustApply(t, s, card.Seat0, Action{Kind: ActionPass})

	if len(s.Players[0].Frozen) != 0 {
		t.Fatalf("frozen entry should be dropped once its counter reaches 0, got %v", s.Players[0].Frozen)
	}
}

func TestQueenProtectionBlocksAllStacksWithTwoQueens(t *testing.T) {
	s := &State{Turn: card.Seat0, Phase: Phase{Kind: PhaseMain}}
	s.Players[0].Hand = []card.Card{c(card.RankJ, card.SuitDiamonds)}
	s.Players[1].Royals = []RoyalStack{
		{Base: c(card.RankQ, card.SuitClubs), BaseOwner: card.Seat1},
		{Base: c(card.RankQ, card.SuitDiamonds), BaseOwner: card.Seat1},
	}
	s.Players[1].Points = []PointStack{{Base: c(card.Rank5, card.SuitClubs), BaseOwner: card.Seat1}}

	legal := s.LegalActions(card.Seat0)
	for _, a := range legal {
		if a.Kind == ActionPlayJack {
			t.Fatalf("no jack play should be legal against a seat with two queens, got %+v", a)
		}
	}
}

func TestQueenProtectionAllowsOnlyTheQueenWithOne(t *testing.T) {
	s := &State{Turn: card.Seat0, Phase: Phase{Kind: PhaseMain}}
	joker := card.NewJoker(0)
	s.Players[0].Hand = []card.Card{joker}
	s.Players[1].Royals = []RoyalStack{
		{Base: c(card.RankQ, card.SuitClubs), BaseOwner: card.Seat1},
		{Base: c(card.RankK, card.SuitClubs), BaseOwner: card.Seat1},
	}

	legal := s.LegalActions(card.Seat0)
	sawQueen, sawKing := false, false
	for _, a := range legal {
		if a.Kind != ActionPlayJoker {
			continue
		}
		if a.TargetBase.Equal(c(card.RankQ, card.SuitClubs)) {
			sawQueen = true
		}
		if a.TargetBase.Equal(c(card.RankK, card.SuitClubs)) {
			sawKing = true
		}
	}
	if !sawQueen {
		t.Error("the lone queen's own stack should be targetable")
	}
	if sawKing {
		t.Error("every other stack should be immune while one queen is controlled")
	}
}

func TestLegalApplyAgreement(t *testing.T) {
	s := &State{Turn: card.Seat0, Phase: Phase{Kind: PhaseMain}}
	s.Deck = card.StandardDeck()[:5]
	s.Players[0].Hand = []card.Card{c(card.Rank5, card.SuitClubs), c(card.RankJ, card.SuitHearts)}
	s.Players[1].Points = []PointStack{{Base: c(card.Rank3, card.SuitClubs), BaseOwner: card.Seat1}}

	legal := s.LegalActions(card.Seat0)
	if len(legal) == 0 {
		t.Fatal("expected at least one legal action")
	}
	for _, a := range legal {
		snap := s.clone()
		if err := s.Apply(card.Seat0, a); err != nil {
			t.Errorf("legal action %+v rejected by Apply: %v", a, err)
		}
		*s = *snap
	}

	if err := s.Apply(card.Seat0, Action{Kind: ActionPlayPoints, Card: c(card.RankQ, card.SuitSpades)}); err == nil {
		t.Error("playing a card not in hand should be rejected")
	}
}

func TestApplyTransactionalOnError(t *testing.T) {
	s := &State{Turn: card.Seat0, Phase: Phase{Kind: PhaseMain}}
	s.Players[0].Hand = []card.Card{c(card.Rank5, card.SuitClubs)}
	before := s.clone()

	if err := s.Apply(card.Seat1, Action{Kind: ActionPass}); err == nil {
		t.Fatal("expected NotYourTurn")
	}
	if !statesEqual(before, s) {
		t.Error("state must be unchanged after a rejected apply")
	}
}

func mustApply(t *testing.T, s *State, seat card.Seat, a Action) {
	t.Helper()
	if err := s.Apply(seat, a); err != nil {
		t.Fatalf("Apply(%v, %+v): %v", seat, a, err)
	}
}

func statesEqual(a, b *State) bool {
	if a.Turn != b.Turn || len(a.Deck) != len(b.Deck) {
		return false
	}
	for seat := range a.Players {
		if len(a.Players[seat].Hand) != len(b.Players[seat].Hand) {
			return false
		}
	}
	return true
}
