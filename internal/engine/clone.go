package engine

import "github.com/avidcoder/cutthroat/pkg/card"

// clone deep-copies State so Apply can restore it verbatim on error.
func (s *State) clone() *State {
	c := *s
	c.Deck = append([]card.Card(nil), s.Deck...)
	c.Scrap = append([]card.Card(nil), s.Scrap...)
	for i := range s.Players {
		c.Players[i] = clonePlayerBoard(s.Players[i])
	}
	if s.PassStreakStart != nil {
		v := *s.PassStreakStart
		c.PassStreakStart = &v
	}
	if s.Winner != nil {
		v := *s.Winner
		c.Winner = &v
	}
	c.Phase = clonePhase(s.Phase)
	return &c
}

func clonePlayerBoard(b PlayerBoard) PlayerBoard {
	return PlayerBoard{
		Hand:   append([]card.Card(nil), b.Hand...),
		Points: clonePointStacks(b.Points),
		Royals: cloneRoyalStacks(b.Royals),
		Frozen: append([]FrozenCard(nil), b.Frozen...),
	}
}

func clonePointStacks(in []PointStack) []PointStack {
	if in == nil {
		return nil
	}
	out := make([]PointStack, len(in))
	for i, ps := range in {
		out[i] = PointStack{Base: ps.Base, BaseOwner: ps.BaseOwner, Jacks: append([]Rider(nil), ps.Jacks...)}
	}
	return out
}

func cloneRoyalStacks(in []RoyalStack) []RoyalStack {
	if in == nil {
		return nil
	}
	out := make([]RoyalStack, len(in))
	for i, rs := range in {
		out[i] = RoyalStack{Base: rs.Base, BaseOwner: rs.BaseOwner, Jokers: append([]Rider(nil), rs.Jokers...)}
	}
	return out
}

func clonePhase(p Phase) Phase {
	np := p
	if p.Counter != nil {
		cs := *p.Counter
		cs.Twos = append([]TwoPlay(nil), p.Counter.Twos...)
		np.Counter = &cs
	}
	np.SevenRevealed = append([]card.Card(nil), p.SevenRevealed...)
	return np
}
