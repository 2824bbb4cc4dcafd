package tokenlog

import (
	"strings"

	"github.com/avidcoder/cutthroat/internal/engine"
	"github.com/avidcoder/cutthroat/pkg/card"
)

// Encode renders the full token log for a game that dealt from (dealer,
// deck) and played exactly actions, in order. It drives its own engine
// instance to supply each line's pre-action state, so the caller's live
// engine is never touched. It fails only if replaying actions against a
// freshly dealt engine diverges from what the caller recorded — which
// would indicate the caller fed Encode a transcript it never actually
// applied.
func Encode(dealer card.Seat, deck []card.Card, actions []SeatAction) (string, error) {
	st, err := engine.NewWithDeck(dealer, deck)
	if err != nil {
		return "", invalidActionContext("cannot deal from recorded header: %v", err)
	}

	lines := make([]string, 0, 1+len(actions))
	lines = append(lines, strings.Join(encodeHeader(dealer, deck), " "))

	for _, sa := range actions {
		line, err := EncodeAction(st, sa.Seat, sa.Action)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
		if err := st.Apply(sa.Seat, sa.Action); err != nil {
			return "", invalidActionContext("recorded action %s by %s was not applicable: %v", sa.Action.Kind, sa.Seat, err)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// EncodeAction renders one line (seat atom + action tokens + optional
// glasses snapshot) as a function of pre — the state immediately before
// a is applied. pre is read only; EncodeAction never mutates it.
func EncodeAction(pre *engine.State, seat card.Seat, a engine.Action) (string, error) {
	if !seat.Valid() {
		return "", &EncodeError{Kind: InvalidSeat, Message: "seat out of range"}
	}

	toks := []string{card.SeatAtom(seat)}

	body, err := actionTokens(pre, a)
	if err != nil {
		return "", err
	}
	toks = append(toks, body...)

	if isGlassesTrigger(a) {
		toks = append(toks, glassesSnapshot(pre, seat)...)
	}

	return strings.Join(toks, " "), nil
}

func actionTokens(pre *engine.State, a engine.Action) ([]string, error) {
	switch a.Kind {
	case engine.ActionDraw:
		if len(pre.Deck) == 0 {
			return nil, invalidActionContext("Draw encoded against an empty deck")
		}
		return []string{string(card.VerbDraw), card.CardAtom(pre.Deck[0])}, nil
	case engine.ActionPass:
		return []string{string(card.VerbPass)}, nil
	case engine.ActionPlayPoints:
		return []string{string(card.VerbPoints), card.CardAtom(a.Card)}, nil
	case engine.ActionScuttle:
		return []string{string(card.VerbScuttle), card.CardAtom(a.Card), card.CardAtom(a.TargetBase)}, nil
	case engine.ActionPlayRoyal:
		return []string{string(card.VerbPlayRoyal), card.CardAtom(a.Card)}, nil
	case engine.ActionPlayJack, engine.ActionPlayJoker:
		return []string{string(card.VerbPlayRoyal), card.CardAtom(a.Card), card.CardAtom(a.TargetBase)}, nil
	case engine.ActionPlayOneOff:
		toks := []string{string(card.VerbOneOff), card.CardAtom(a.Card)}
		toks = append(toks, encodeOneOffTarget(a.OneOffTarget)...)
		return toks, nil
	case engine.ActionCounterTwo:
		return []string{string(card.VerbCounter), card.CardAtom(a.Card)}, nil
	case engine.ActionCounterPass:
		return []string{string(card.VerbResolve)}, nil
	case engine.ActionResolveThreePick:
		return []string{string(card.VerbResolve), card.CardAtom(a.Card)}, nil
	case engine.ActionResolveFourDiscard:
		return []string{string(card.VerbResolve), string(card.VerbDiscard), card.CardAtom(a.Card)}, nil
	case engine.ActionResolveFiveDiscard:
		return []string{string(card.VerbDiscard), card.CardAtom(a.Card)}, nil
	case engine.ActionResolveSevenChoose:
		return sevenPlayTokens(a.Card, a.SevenPlay)
	default:
		return nil, invalidActionContext("unknown action kind %v", a.Kind)
	}
}

func sevenPlayTokens(c card.Card, p engine.SevenPlay) ([]string, error) {
	switch p.Kind {
	case engine.SevenPoints:
		return []string{string(card.VerbPoints), card.CardAtom(c)}, nil
	case engine.SevenScuttle:
		return []string{string(card.VerbScuttle), card.CardAtom(c), card.CardAtom(p.TargetBase)}, nil
	case engine.SevenRoyal:
		return []string{string(card.VerbPlayRoyal), card.CardAtom(c)}, nil
	case engine.SevenJack, engine.SevenJoker:
		return []string{string(card.VerbPlayRoyal), card.CardAtom(c), card.CardAtom(p.TargetBase)}, nil
	case engine.SevenOneOff:
		toks := []string{string(card.VerbOneOff), card.CardAtom(c)}
		toks = append(toks, encodeOneOffTarget(p.OneOffTarget)...)
		return toks, nil
	case engine.SevenDiscard:
		return []string{string(card.VerbDiscard), card.CardAtom(c)}, nil
	default:
		return nil, invalidActionContext("unknown seven-play kind %v", p.Kind)
	}
}

func encodeOneOffTarget(t engine.OneOffTarget) []string {
	switch t.Kind {
	case engine.TargetNone:
		return nil
	case engine.TargetPlayer:
		return []string{card.SeatAtom(t.Seat)}
	case engine.TargetPoint, engine.TargetRoyal, engine.TargetJack, engine.TargetJoker:
		return []string{card.CardAtom(t.Card)}
	default:
		return nil
	}
}

// isGlassesTrigger reports whether a is one that causes its actor to begin
// controlling a fresh royal stack whose base is an 8, per §4.2.4. Both
// triggers — PlayRoyal and the seven-resolution royal play — always stand
// up a brand-new stack, so no post-state lookup is needed.
func isGlassesTrigger(a engine.Action) bool {
	eight := func(c card.Card) bool { return !c.Joker && c.Rank == card.Rank8 }
	switch a.Kind {
	case engine.ActionPlayRoyal:
		return eight(a.Card)
	case engine.ActionResolveSevenChoose:
		return a.SevenPlay.Kind == engine.SevenRoyal && eight(a.Card)
	default:
		return false
	}
}

// glassesSnapshot renders both opponents' hands, in clockwise order
// starting from next(actor), as seat-atom-then-cards groups.
func glassesSnapshot(pre *engine.State, actor card.Seat) []string {
	var toks []string
	for _, opp := range [2]card.Seat{actor.Next(), actor.Next().Next()} {
		toks = append(toks, card.SeatAtom(opp))
		for _, c := range pre.Players[opp].Hand {
			toks = append(toks, card.CardAtom(c))
		}
	}
	return toks
}
