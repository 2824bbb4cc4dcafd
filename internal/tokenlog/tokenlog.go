// Package tokenlog is the whitespace-atom wire format for a played
// Cutthroat game (§4.2 of the design). Parse is the sole entry point for
// trusting a log: it re-derives state by replaying every action through
// the rules engine, so a log that parses is, by construction, a legal
// game from the dealt deck to its final state.
package tokenlog

import (
	"strings"

	"github.com/avidcoder/cutthroat/internal/engine"
	"github.com/avidcoder/cutthroat/pkg/card"
)

// SeatAction is one line of a token log: the acting seat and the action it
// took, disambiguated against the live state at the time.
type SeatAction struct {
	Seat   card.Seat
	Action engine.Action
}

// TokenLog is a fully parsed, replay-validated game transcript.
type TokenLog struct {
	Dealer  card.Seat
	Deck    []card.Card
	Actions []SeatAction

	// Final is the engine state reached after applying every action.
	Final *engine.State
}

func tokenize(log string) []string {
	return strings.Fields(log)
}

// encodeHeader renders the `V1 CUTTHROAT3P DEALER <Pd> DECK … ENDDECK` line.
func encodeHeader(dealer card.Seat, deck []card.Card) []string {
	toks := make([]string, 0, 5+len(deck))
	toks = append(toks, card.AtomV1, card.AtomGameName, card.AtomDealer, card.SeatAtom(dealer), card.AtomDeck)
	for _, c := range deck {
		toks = append(toks, card.CardAtom(c))
	}
	toks = append(toks, card.AtomEndDeck)
	return toks
}

// parseHeader consumes the header atoms from the front of toks and returns
// the dealer, deck, and the remaining (unconsumed) tokens.
func parseHeader(toks []string) (card.Seat, []card.Card, []string, error) {
	need := func(i int, want string) error {
		if i >= len(toks) {
			return invalidFormatf("truncated header, expected %q", want)
		}
		if toks[i] != want {
			return invalidFormatf("expected %q at position %d, got %q", want, i, toks[i])
		}
		return nil
	}
	if err := need(0, card.AtomV1); err != nil {
		return 0, nil, nil, err
	}
	if err := need(1, card.AtomGameName); err != nil {
		return 0, nil, nil, err
	}
	if err := need(2, card.AtomDealer); err != nil {
		return 0, nil, nil, err
	}
	if len(toks) < 4 {
		return 0, nil, nil, invalidFormatf("truncated header, expected dealer seat atom")
	}
	dealer, ok := card.ParseSeatAtom(toks[3])
	if !ok {
		return 0, nil, nil, invalidFormatf("invalid dealer seat atom %q", toks[3])
	}
	if err := need(4, card.AtomDeck); err != nil {
		return 0, nil, nil, err
	}

	pos := 5
	var deck []card.Card
	for pos < len(toks) && toks[pos] != card.AtomEndDeck {
		c, ok := card.ParseCardAtom(toks[pos])
		if !ok {
			return 0, nil, nil, unknownCard(toks[pos])
		}
		deck = append(deck, c)
		pos++
	}
	if pos >= len(toks) {
		return 0, nil, nil, invalidFormatf("missing %s", card.AtomEndDeck)
	}
	pos++ // consume ENDDECK

	if len(deck) < 15 {
		return 0, nil, nil, invalidFormatf("deck too short: %d cards, need at least 15", len(deck))
	}
	return dealer, deck, toks[pos:], nil
}
