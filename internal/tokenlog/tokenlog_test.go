package tokenlog_test

import (
	"strings"
	"testing"

	"github.com/avidcoder/cutthroat/internal/engine"
	"github.com/avidcoder/cutthroat/internal/tokenlog"
	"github.com/avidcoder/cutthroat/pkg/card"
)

func c(rank card.Rank, suit card.Suit) card.Card { return card.NewCard(rank, suit) }

// gameActions is a short but mechanically varied legal game played against
// the deterministic deal produced by card.StandardDeck() with dealer =
// Seat2: seat 0 opens glasses with 8C (triggering a snapshot), seat 1
// draws (which ends its turn), seat 2 plays a rank-3 one-off that survives
// an uncontested counter window and resolves by picking its own scrapped
// card back up.
func gameActions() (card.Seat, []card.Card, []tokenlog.SeatAction) {
	dealer := card.Seat2
	deck := card.StandardDeck()
	actions := []tokenlog.SeatAction{
		{Seat: card.Seat0, Action: engine.Action{Kind: engine.ActionPlayRoyal, Card: c(card.Rank8, card.SuitClubs)}},
		{Seat: card.Seat1, Action: engine.Action{Kind: engine.ActionDraw}},
		{Seat: card.Seat2, Action: engine.Action{Kind: engine.ActionPlayOneOff, Card: c(card.Rank3, card.SuitDiamonds), OneOffTarget: engine.OneOffTarget{Kind: engine.TargetNone}}},
		{Seat: card.Seat0, Action: engine.Action{Kind: engine.ActionCounterPass}},
		{Seat: card.Seat1, Action: engine.Action{Kind: engine.ActionCounterPass}},
		{Seat: card.Seat2, Action: engine.Action{Kind: engine.ActionResolveThreePick, Card: c(card.Rank3, card.SuitDiamonds)}},
	}
	return dealer, deck, actions
}

func TestEncodeProducesGlassesSnapshotOnFirstLine(t *testing.T) {
	dealer, deck, actions := gameActions()
	log, err := tokenlog.Encode(dealer, deck, actions)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	lines := strings.Split(log, "\n")
	if len(lines) != 7 {
		t.Fatalf("expected 1 header line + 6 action lines, got %d", len(lines))
	}
	want := "P0 playRoyal 8C P1 3C 6C 9C QC 2D P2 4C 7C TC KC 3D"
	if lines[1] != want {
		t.Errorf("first action line = %q, want %q", lines[1], want)
	}
}

func TestParseReplaysToMatchingFinalState(t *testing.T) {
	dealer, deck, actions := gameActions()
	log, err := tokenlog.Encode(dealer, deck, actions)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	parsed, err := tokenlog.Parse(log)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Dealer != dealer {
		t.Errorf("Dealer = %v, want %v", parsed.Dealer, dealer)
	}
	if len(parsed.Actions) != len(actions) {
		t.Fatalf("got %d actions, want %d", len(parsed.Actions), len(actions))
	}
	if parsed.Final.Turn != card.Seat0 {
		t.Errorf("final turn = %v, want Seat0", parsed.Final.Turn)
	}
	if parsed.Final.Phase.Kind != engine.PhaseMain {
		t.Errorf("final phase = %v, want PhaseMain", parsed.Final.Phase.Kind)
	}
	// Seat 2 pulled its own 3D back out of scrap.
	hand := parsed.Final.Players[card.Seat2].Hand
	found := false
	for _, hc := range hand {
		if hc.Equal(c(card.Rank3, card.SuitDiamonds)) {
			found = true
		}
	}
	if !found {
		t.Errorf("seat 2's hand %v should contain 3D after resolving its own three", hand)
	}
}

func TestRoundTripReencodingIsByteIdentical(t *testing.T) {
	dealer, deck, actions := gameActions()
	log, err := tokenlog.Encode(dealer, deck, actions)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	parsed, err := tokenlog.Parse(log)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	reencoded, err := tokenlog.Encode(parsed.Dealer, parsed.Deck, parsed.Actions)
	if err != nil {
		t.Fatalf("re-Encode: %v", err)
	}
	if reencoded != log {
		t.Errorf("re-encoded log differs from original:\n got: %q\nwant: %q", reencoded, log)
	}
}

func TestRedactionBlanksNonViewerDrawAndParserRejectsIt(t *testing.T) {
	dealer, deck, actions := gameActions()
	log, err := tokenlog.Encode(dealer, deck, actions)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	viewer := card.Seat0
	redacted, err := tokenlog.Redact(log, &viewer)
	if err != nil {
		t.Fatalf("Redact: %v", err)
	}
	lines := strings.Split(redacted, "\n")
	// line index 2 is seat1's "draw <card>" line (0=header,1=seat0 playRoyal).
	if !strings.Contains(lines[2], card.AtomUnknown) {
		t.Errorf("seat1's draw line %q should be redacted for a Seat0 viewer", lines[2])
	}

	if _, err := tokenlog.Parse(redacted); err == nil {
		t.Error("Parse should reject a redacted log containing UNKNOWN")
	}
}

func TestRedactionDoesNotBlankTheDrawersOwnDraw(t *testing.T) {
	dealer, deck, actions := gameActions()
	log, err := tokenlog.Encode(dealer, deck, actions)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	viewer := card.Seat1
	redacted, err := tokenlog.Redact(log, &viewer)
	if err != nil {
		t.Fatalf("Redact: %v", err)
	}
	if strings.Contains(redacted, card.AtomUnknown) {
		t.Errorf("seat1 viewing its own draw should not see UNKNOWN: %q", redacted)
	}
}

func TestParseRejectsBadHeader(t *testing.T) {
	_, err := tokenlog.Parse("V2 CUTTHROAT3P DEALER P0 DECK ENDDECK")
	if err == nil {
		t.Fatal("expected an error for an unknown version atom")
	}
	te, ok := err.(*tokenlog.TokenError)
	if !ok {
		t.Fatalf("expected *tokenlog.TokenError, got %T", err)
	}
	if te.Kind != tokenlog.InvalidFormat {
		t.Errorf("Kind = %v, want InvalidFormat", te.Kind)
	}
}

func TestParseRejectsOutOfTurnAction(t *testing.T) {
	dealer, deck, _ := gameActions()
	header := strings.Join([]string{"V1", "CUTTHROAT3P", "DEALER", card.SeatAtom(dealer), "DECK"}, " ")
	var deckAtoms []string
	for _, dc := range deck {
		deckAtoms = append(deckAtoms, card.CardAtom(dc))
	}
	log := header + " " + strings.Join(deckAtoms, " ") + " ENDDECK\nP1 pass"

	_, err := tokenlog.Parse(log)
	if err == nil {
		t.Fatal("expected an error: seat1 acting on seat0's turn")
	}
	te, ok := err.(*tokenlog.TokenError)
	if !ok {
		t.Fatalf("expected *tokenlog.TokenError, got %T", err)
	}
	if te.Kind != tokenlog.Replay {
		t.Errorf("Kind = %v, want Replay", te.Kind)
	}
}
