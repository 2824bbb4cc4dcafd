package engine

import "github.com/avidcoder/cutthroat/pkg/card"

// ActionKind is the closed set of actions apply(seat, action) accepts.
type ActionKind int

const (
	ActionDraw ActionKind = iota
	ActionPass
	ActionPlayPoints
	ActionScuttle
	ActionPlayRoyal
	ActionPlayJack
	ActionPlayJoker
	ActionPlayOneOff
	ActionCounterPass
	ActionCounterTwo
	ActionResolveThreePick
	ActionResolveFourDiscard
	ActionResolveFiveDiscard
	ActionResolveSevenChoose
)

func (k ActionKind) String() string {
	names := [...]string{
		"Draw", "Pass", "PlayPoints", "Scuttle", "PlayRoyal", "PlayJack",
		"PlayJoker", "PlayOneOff", "CounterPass", "CounterTwo",
		"ResolveThreePick", "ResolveFourDiscard", "ResolveFiveDiscard",
		"ResolveSevenChoose",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "Unknown"
	}
	return names[k]
}

// OneOffTargetKind is the closed set of one-off target shapes across all
// one-off ranks.
type OneOffTargetKind int

const (
	TargetNone OneOffTargetKind = iota
	TargetPlayer
	TargetPoint
	TargetRoyal
	TargetJack
	TargetJoker
)

// OneOffTarget names what a one-off (or a seven-resolution OneOff choice)
// acts on. Which Kind values are legal depends on the one-off's rank — see
// oneOffTargets in legal.go.
type OneOffTarget struct {
	Kind OneOffTargetKind
	Seat card.Seat // TargetPlayer
	Card card.Card // TargetPoint (base), TargetRoyal (base), TargetJack (rider card), TargetJoker (rider card)
}

// SevenPlayKind is the closed set of ways a revealed seven-effect card can
// be played — the same repertoire as a main-phase turn, plus Discard.
type SevenPlayKind int

const (
	SevenPoints SevenPlayKind = iota
	SevenScuttle
	SevenRoyal
	SevenJack
	SevenJoker
	SevenOneOff
	SevenDiscard
)

// SevenPlay describes how the seven-resolver plays one revealed card.
type SevenPlay struct {
	Kind         SevenPlayKind
	TargetBase   card.Card    // SevenScuttle/SevenJack/SevenJoker: the targeted stack's base
	OneOffTarget OneOffTarget // SevenOneOff
}

// Action is the closed sum type the engine consumes. Only the fields
// relevant to Kind are meaningful.
type Action struct {
	Kind ActionKind

	// Card is the primary card played: PlayPoints, Scuttle (attacker),
	// PlayRoyal, PlayJack (the jack), PlayJoker (the joker), PlayOneOff,
	// CounterTwo, ResolveThreePick, ResolveFourDiscard,
	// ResolveFiveDiscard, ResolveSevenChoose (the chosen revealed card).
	Card card.Card

	// TargetBase is the targeted stack's base card: Scuttle, PlayJack,
	// PlayJoker.
	TargetBase card.Card

	// OneOffTarget is meaningful only for PlayOneOff.
	OneOffTarget OneOffTarget

	// SevenPlay is meaningful only for ResolveSevenChoose.
	SevenPlay SevenPlay
}
