package registry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avidcoder/cutthroat/internal/engine"
	"github.com/avidcoder/cutthroat/internal/registry"
	"github.com/avidcoder/cutthroat/pkg/card"
)

func TestCreateThenGetReturnsSameActor(t *testing.T) {
	r := registry.Get()
	id := "TestCreateThenGetReturnsSameActor"

	created, err := r.Create(id, card.Seat0, card.StandardDeck(), nil)
	require.NoError(t, err)
	defer r.Remove(id)

	got, ok := r.Get(id)
	require.True(t, ok, "Get reported the game missing right after Create")
	assert.Same(t, created, got, "Get returned a different actor than Create produced")
}

func TestCreateRejectsDuplicateID(t *testing.T) {
	r := registry.Get()
	id := "TestCreateRejectsDuplicateID"

	_, err := r.Create(id, card.Seat0, card.StandardDeck(), nil)
	require.NoError(t, err)
	defer r.Remove(id)

	_, err = r.Create(id, card.Seat0, card.StandardDeck(), nil)
	assert.Error(t, err, "expected an error creating a second game under the same id")
}

func TestRemoveForgetsTheGame(t *testing.T) {
	r := registry.Get()
	id := "TestRemoveForgetsTheGame"

	_, err := r.Create(id, card.Seat0, card.StandardDeck(), nil)
	require.NoError(t, err)
	r.Remove(id)

	_, ok := r.Get(id)
	assert.False(t, ok, "game should no longer be registered after Remove")

	// Removing twice, or removing an id that never existed, must not panic.
	r.Remove(id)
	r.Remove("never-existed")
}

func TestOnGameOverHookDoesNotFireBeforeAnyAction(t *testing.T) {
	r := registry.Get()
	id := "TestOnGameOverHookDoesNotFireBeforeAnyAction"

	fired := make(chan struct{}, 1)
	a, err := r.Create(id, card.Seat0, card.StandardDeck(), func(transcript string, actionCount int, final *engine.State) {
		fired <- struct{}{}
	})
	require.NoError(t, err)
	defer r.Remove(id)

	assert.Equal(t, id, a.ID())

	// No action has been played, so the hook must not have fired yet.
	// Firing on GameOver and the self-removal are not exercised here.
	select {
	case <-fired:
		t.Fatal("game-over hook fired before any action was applied")
	case <-time.After(10 * time.Millisecond):
	}
}
