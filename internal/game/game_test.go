package game_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avidcoder/cutthroat/internal/engine"
	"github.com/avidcoder/cutthroat/internal/game"
	"github.com/avidcoder/cutthroat/pkg/card"
)

func c(rank card.Rank, suit card.Suit) card.Card { return card.NewCard(rank, suit) }

func newStarted(t *testing.T) (*game.Actor, context.Context) {
	t.Helper()
	a, err := game.New("g1", card.Seat2, card.StandardDeck())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	a.Start(ctx)
	t.Cleanup(func() {
		cancel()
		a.Stop()
	})
	return a, ctx
}

func TestSubmitAppliesLegalActionAndReturnsView(t *testing.T) {
	a, ctx := newStarted(t)

	view, err := a.Submit(ctx, card.Seat0, engine.Action{Kind: engine.ActionPlayRoyal, Card: c(card.Rank8, card.SuitClubs)})
	require.NoError(t, err)
	assert.Equal(t, card.Seat0, view.Viewer)
	assert.Len(t, view.Players[card.Seat0].Royals, 1, "seat0 should control 1 royal stack after playing 8C")
	assert.Equal(t, card.Seat1, view.Turn, "turn should pass to seat1 after seat0's turn ends")
}

func TestSubmitRejectsOutOfTurnAction(t *testing.T) {
	a, ctx := newStarted(t)

	_, err := a.Submit(ctx, card.Seat1, engine.Action{Kind: engine.ActionPass})
	require.Error(t, err)

	re, ok := err.(*engine.RuleError)
	require.True(t, ok, "expected *engine.RuleError, got %T", err)
	assert.Equal(t, engine.ErrKindNotYourTurn, re.Kind)
}

func TestViewRedactsOtherSeatsHands(t *testing.T) {
	a, _ := newStarted(t)

	view := a.View(card.Seat0)
	assert.NotNil(t, view.Players[card.Seat0].Hand, "seat0 should see its own hand")
	assert.Nil(t, view.Players[card.Seat1].Hand, "seat0 should not see seat1's hand absent glasses")
}

func TestBroadcastPublishesToUpdatesChannel(t *testing.T) {
	a, ctx := newStarted(t)

	_, err := a.Submit(ctx, card.Seat0, engine.Action{Kind: engine.ActionPlayRoyal, Card: c(card.Rank8, card.SuitClubs)})
	require.NoError(t, err)

	seen := map[card.Seat]bool{}
	for i := 0; i < 3; i++ {
		select {
		case upd := <-a.Updates():
			seen[upd.Seat] = true
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for a fanned-out update")
		}
	}
	for _, seat := range []card.Seat{card.Seat0, card.Seat1, card.Seat2} {
		assert.True(t, seen[seat], "no update was fanned out for %v", seat)
	}
}

func TestSubmitAfterStopReturnsErrStopped(t *testing.T) {
	a, err := game.New("g2", card.Seat2, card.StandardDeck())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.Start(ctx)
	a.Stop()

	_, err = a.Submit(context.Background(), card.Seat0, engine.Action{Kind: engine.ActionPass})
	assert.ErrorIs(t, err, game.ErrStopped)
}

func TestSubmitHonorsContextCancellation(t *testing.T) {
	a, err := game.New("g3", card.Seat2, card.StandardDeck())
	require.NoError(t, err)

	// Never started: nothing ever drains the mailbox, so Submit waits on
	// the reply channel until ctx is done.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = a.Submit(ctx, card.Seat0, engine.Action{Kind: engine.ActionPass})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
