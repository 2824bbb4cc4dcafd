package tokenlog

import (
	"github.com/avidcoder/cutthroat/internal/engine"
	"github.com/avidcoder/cutthroat/pkg/card"
)

// Parse tokenizes, header-validates, and replays log against a freshly
// dealt engine. Every action is checked for legality by the engine itself
// (via Apply) before being recorded, so a TokenLog returned from Parse is
// guaranteed to be a legal play sequence from its own dealt deck to Final.
func Parse(log string) (*TokenLog, error) {
	toks := tokenize(log)
	dealer, deck, rest, err := parseHeader(toks)
	if err != nil {
		return nil, err
	}
	st, err := engine.NewWithDeck(dealer, deck)
	if err != nil {
		return nil, invalidFormatf("cannot deal from header: %v", err)
	}

	var actions []SeatAction
	pos := 0
	for pos < len(rest) {
		seat, np, err := readSeat(rest, pos)
		if err != nil {
			return nil, err
		}
		pos = np

		if pos >= len(rest) {
			return nil, invalidFormatf("seat %s has no action", card.SeatAtom(seat))
		}
		verb := rest[pos]
		pos++

		action, np2, err := parseActionBody(st, verb, rest, pos)
		if err != nil {
			return nil, err
		}
		pos = np2

		if isGlassesTrigger(action) {
			np3, err := consumeAndValidateGlasses(st, seat, rest, pos)
			if err != nil {
				return nil, err
			}
			pos = np3
		}

		if err := st.Apply(seat, action); err != nil {
			return nil, replayRejected(err)
		}
		actions = append(actions, SeatAction{Seat: seat, Action: action})
	}

	return &TokenLog{Dealer: dealer, Deck: deck, Actions: actions, Final: st}, nil
}

// consumeAndValidateGlasses reads the glasses-snapshot tokens following an
// action that grants glasses and checks them against the live (pre-action)
// state's hands exactly, per §4.2.4.
func consumeAndValidateGlasses(st *engine.State, actor card.Seat, toks []string, pos int) (int, error) {
	for _, opp := range [2]card.Seat{actor.Next(), actor.Next().Next()} {
		seat, np, err := readSeat(toks, pos)
		if err != nil {
			return pos, err
		}
		if seat != opp {
			return pos, invalidFormatf("glasses snapshot out of order: expected %s, got %s", card.SeatAtom(opp), card.SeatAtom(seat))
		}
		pos = np

		want := st.Players[opp].Hand
		for i := range want {
			c, np2, err := readCard(toks, pos)
			if err != nil {
				return pos, err
			}
			pos = np2
			if !c.Equal(want[i]) {
				return pos, invalidFormatf("glasses snapshot for %s does not match live hand", card.SeatAtom(opp))
			}
		}
	}
	return pos, nil
}

func readCard(toks []string, pos int) (card.Card, int, error) {
	if pos >= len(toks) {
		return card.Card{}, pos, invalidFormatf("expected card atom, reached end of input")
	}
	c, ok := card.ParseCardAtom(toks[pos])
	if !ok {
		return card.Card{}, pos, unknownCard(toks[pos])
	}
	return c, pos + 1, nil
}

func readSeat(toks []string, pos int) (card.Seat, int, error) {
	if pos >= len(toks) {
		return 0, pos, invalidFormatf("expected seat atom, reached end of input")
	}
	s, ok := card.ParseSeatAtom(toks[pos])
	if !ok {
		return 0, pos, invalidFormatf("invalid seat atom %q", toks[pos])
	}
	return s, pos + 1, nil
}

// parseActionBody parses one verb + its arguments into an Action. The verb
// alone does not determine the Action variant — the live phase and, for
// playRoyal, the played card's rank/jokerness disambiguate it, per §4.2.2.
func parseActionBody(st *engine.State, verb string, toks []string, pos int) (engine.Action, int, error) {
	phase := st.Phase.Kind

	switch card.Verb(verb) {
	case card.VerbDraw:
		c, np, err := readCard(toks, pos)
		if err != nil {
			return engine.Action{}, pos, err
		}
		if len(st.Deck) == 0 {
			return engine.Action{}, pos, invalidFormatf("draw encoded with an empty deck")
		}
		if expected := st.Deck[0]; !c.Equal(expected) {
			return engine.Action{}, pos, invalidFormatf("draw card %s does not match top of deck %s", card.CardAtom(c), card.CardAtom(expected))
		}
		return engine.Action{Kind: engine.ActionDraw}, np, nil

	case card.VerbPass:
		return engine.Action{Kind: engine.ActionPass}, pos, nil

	case card.VerbPoints:
		c, np, err := readCard(toks, pos)
		if err != nil {
			return engine.Action{}, pos, err
		}
		if phase == engine.PhaseResolvingSeven {
			return engine.Action{Kind: engine.ActionResolveSevenChoose, Card: c, SevenPlay: engine.SevenPlay{Kind: engine.SevenPoints}}, np, nil
		}
		return engine.Action{Kind: engine.ActionPlayPoints, Card: c}, np, nil

	case card.VerbScuttle:
		c, np, err := readCard(toks, pos)
		if err != nil {
			return engine.Action{}, pos, err
		}
		t, np2, err := readCard(toks, np)
		if err != nil {
			return engine.Action{}, np, err
		}
		if phase == engine.PhaseResolvingSeven {
			return engine.Action{Kind: engine.ActionResolveSevenChoose, Card: c, SevenPlay: engine.SevenPlay{Kind: engine.SevenScuttle, TargetBase: t}}, np2, nil
		}
		return engine.Action{Kind: engine.ActionScuttle, Card: c, TargetBase: t}, np2, nil

	case card.VerbPlayRoyal:
		return parsePlayRoyal(phase, toks, pos)

	case card.VerbOneOff:
		c, np, err := readCard(toks, pos)
		if err != nil {
			return engine.Action{}, pos, err
		}
		target, np2, err := parseOneOffTargetInline(st, c, toks, np)
		if err != nil {
			return engine.Action{}, np, err
		}
		if phase == engine.PhaseResolvingSeven {
			return engine.Action{Kind: engine.ActionResolveSevenChoose, Card: c, SevenPlay: engine.SevenPlay{Kind: engine.SevenOneOff, OneOffTarget: target}}, np2, nil
		}
		return engine.Action{Kind: engine.ActionPlayOneOff, Card: c, OneOffTarget: target}, np2, nil

	case card.VerbCounter:
		c, np, err := readCard(toks, pos)
		if err != nil {
			return engine.Action{}, pos, err
		}
		return engine.Action{Kind: engine.ActionCounterTwo, Card: c}, np, nil

	case card.VerbResolve:
		switch phase {
		case engine.PhaseCountering:
			return engine.Action{Kind: engine.ActionCounterPass}, pos, nil
		case engine.PhaseResolvingThree:
			c, np, err := readCard(toks, pos)
			if err != nil {
				return engine.Action{}, pos, err
			}
			return engine.Action{Kind: engine.ActionResolveThreePick, Card: c}, np, nil
		case engine.PhaseResolvingFour:
			if pos >= len(toks) || toks[pos] != string(card.VerbDiscard) {
				return engine.Action{}, pos, invalidFormatf("expected %q after resolve in phase %s", card.VerbDiscard, phase)
			}
			c, np, err := readCard(toks, pos+1)
			if err != nil {
				return engine.Action{}, pos + 1, err
			}
			return engine.Action{Kind: engine.ActionResolveFourDiscard, Card: c}, np, nil
		default:
			return engine.Action{}, pos, invalidFormatf("resolve verb not valid in phase %s", phase)
		}

	case card.VerbDiscard:
		c, np, err := readCard(toks, pos)
		if err != nil {
			return engine.Action{}, pos, err
		}
		if phase == engine.PhaseResolvingSeven {
			return engine.Action{Kind: engine.ActionResolveSevenChoose, Card: c, SevenPlay: engine.SevenPlay{Kind: engine.SevenDiscard}}, np, nil
		}
		return engine.Action{Kind: engine.ActionResolveFiveDiscard, Card: c}, np, nil

	default:
		return engine.Action{}, pos, unknownAction(verb)
	}
}

// parsePlayRoyal disambiguates the reused "playRoyal" verb: a bare card is
// a Royal base play; a card followed by a second card atom is a Jack or
// Joker rider play onto that target. Seat atoms never parse as card atoms,
// so lookahead is unambiguous.
func parsePlayRoyal(phase engine.PhaseKind, toks []string, pos int) (engine.Action, int, error) {
	c, np, err := readCard(toks, pos)
	if err != nil {
		return engine.Action{}, pos, err
	}

	if np < len(toks) {
		if t, ok := card.ParseCardAtom(toks[np]); ok {
			switch {
			case c.IsJack():
				if phase == engine.PhaseResolvingSeven {
					return engine.Action{Kind: engine.ActionResolveSevenChoose, Card: c, SevenPlay: engine.SevenPlay{Kind: engine.SevenJack, TargetBase: t}}, np + 1, nil
				}
				return engine.Action{Kind: engine.ActionPlayJack, Card: c, TargetBase: t}, np + 1, nil
			case c.Joker:
				if phase == engine.PhaseResolvingSeven {
					return engine.Action{Kind: engine.ActionResolveSevenChoose, Card: c, SevenPlay: engine.SevenPlay{Kind: engine.SevenJoker, TargetBase: t}}, np + 1, nil
				}
				return engine.Action{Kind: engine.ActionPlayJoker, Card: c, TargetBase: t}, np + 1, nil
			default:
				return engine.Action{}, np, invalidFormatf("playRoyal %s carries a target but is neither a jack nor a joker", card.CardAtom(c))
			}
		}
	}

	if c.IsJack() {
		return engine.Action{}, np, invalidFormatf("playRoyal %s (a jack) requires a target", card.CardAtom(c))
	}
	if phase == engine.PhaseResolvingSeven {
		return engine.Action{Kind: engine.ActionResolveSevenChoose, Card: c, SevenPlay: engine.SevenPlay{Kind: engine.SevenRoyal}}, np, nil
	}
	return engine.Action{Kind: engine.ActionPlayRoyal, Card: c}, np, nil
}

// parseOneOffTargetInline parses the target atoms (if any) following a
// one-off card, per §4.2.3. The target shape is fixed by c's rank; for
// ranks 2 and 9 the target card's kind (Point/Royal/Jack/Joker) is inferred
// by scanning the live state, not spelled out on the wire.
func parseOneOffTargetInline(st *engine.State, c card.Card, toks []string, pos int) (engine.OneOffTarget, int, error) {
	switch c.Rank {
	case card.RankA, card.Rank3, card.Rank5, card.Rank6, card.Rank7:
		return engine.OneOffTarget{Kind: engine.TargetNone}, pos, nil

	case card.Rank2:
		t, np, err := readCard(toks, pos)
		if err != nil {
			return engine.OneOffTarget{}, pos, err
		}
		target, ok := classifyTarget(st, t)
		if !ok {
			return engine.OneOffTarget{}, pos, invalidFormatf("%s is not a live stack base or rider", card.CardAtom(t))
		}
		if target.Kind == engine.TargetPoint {
			return engine.OneOffTarget{}, pos, invalidFormatf("rank-2 one-off cannot target a point-stack base")
		}
		return target, np, nil

	case card.Rank4:
		seat, np, err := readSeat(toks, pos)
		if err != nil {
			return engine.OneOffTarget{}, pos, err
		}
		return engine.OneOffTarget{Kind: engine.TargetPlayer, Seat: seat}, np, nil

	case card.Rank9:
		t, np, err := readCard(toks, pos)
		if err != nil {
			return engine.OneOffTarget{}, pos, err
		}
		target, ok := classifyTarget(st, t)
		if !ok {
			return engine.OneOffTarget{}, pos, invalidFormatf("%s is not a live stack base or rider", card.CardAtom(t))
		}
		return target, np, nil

	default:
		return engine.OneOffTarget{}, pos, invalidFormatf("%s has no one-off effect", card.CardAtom(c))
	}
}

// classifyTarget scans the live state for c and reports what kind of
// target it is, in the precedence order of §4.2.3: a PointStack base, then
// a RoyalStack base, then a topmost Jack rider, then a topmost Joker
// rider.
func classifyTarget(st *engine.State, c card.Card) (engine.OneOffTarget, bool) {
	for seat := card.Seat0; seat <= card.Seat2; seat++ {
		for _, ps := range st.Players[seat].Points {
			if ps.Base.Equal(c) {
				return engine.OneOffTarget{Kind: engine.TargetPoint, Card: c}, true
			}
		}
	}
	for seat := card.Seat0; seat <= card.Seat2; seat++ {
		for _, rs := range st.Players[seat].Royals {
			if rs.Base.Equal(c) {
				return engine.OneOffTarget{Kind: engine.TargetRoyal, Card: c}, true
			}
		}
	}
	for seat := card.Seat0; seat <= card.Seat2; seat++ {
		for _, ps := range st.Players[seat].Points {
			if n := len(ps.Jacks); n > 0 && ps.Jacks[n-1].Card.Equal(c) {
				return engine.OneOffTarget{Kind: engine.TargetJack, Card: c}, true
			}
		}
	}
	for seat := card.Seat0; seat <= card.Seat2; seat++ {
		for _, rs := range st.Players[seat].Royals {
			if n := len(rs.Jokers); n > 0 && rs.Jokers[n-1].Card.Equal(c) {
				return engine.OneOffTarget{Kind: engine.TargetJoker, Card: c}, true
			}
		}
	}
	return engine.OneOffTarget{}, false
}
