// Package registry is the process-wide table of live games. It tracks
// liveness only — which game ids currently have a running actor — and has
// no opinion on lobby or rematch seat policy.
package registry

import (
	"fmt"
	"sync"

	"github.com/avidcoder/cutthroat/internal/engine"
	"github.com/avidcoder/cutthroat/internal/game"
	"github.com/avidcoder/cutthroat/pkg/card"
)

// Registry maps a game id to its live Actor.
type Registry struct {
	mu     sync.RWMutex
	actors map[string]*game.Actor
}

var (
	instance *Registry
	once     sync.Once
)

// Get returns the single process-wide Registry.
func Get() *Registry {
	once.Do(func() {
		instance = &Registry{actors: make(map[string]*game.Actor)}
	})
	return instance
}

// Create deals a new game under id and registers it; the caller starts the
// returned actor. The actor is also wired to remove itself from the
// registry once it reaches GameOver and flushes its transcript, so a
// finished game does not linger in memory once persisted.
func (r *Registry) Create(id string, dealer card.Seat, deck []card.Card, onGameOver func(transcript string, actionCount int, final *engine.State)) (*game.Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actors[id]; exists {
		return nil, fmt.Errorf("registry: game %q already exists", id)
	}

	a, err := game.New(id, dealer, deck)
	if err != nil {
		return nil, err
	}
	a.OnGameOver(func(transcript string, actionCount int, final *engine.State) {
		if onGameOver != nil {
			onGameOver(transcript, actionCount, final)
		}
		// The hook runs on the actor's own goroutine, and Remove waits for
		// that goroutine to exit, so it must run on another one.
		go r.Remove(id)
	})
	r.actors[id] = a
	return a, nil
}

// Get retrieves a live game's actor by id.
func (r *Registry) Get(id string) (*game.Actor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actors[id]
	return a, ok
}

// Remove stops and forgets a game. Safe to call on an id that is already
// gone.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	a, ok := r.actors[id]
	if ok {
		delete(r.actors, id)
	}
	r.mu.Unlock()

	if ok {
		a.Stop()
	}
}

// List returns the ids of every currently live game.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.actors))
	for id := range r.actors {
		ids = append(ids, id)
	}
	return ids
}

// StopAll stops every live game's actor, for graceful process shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	actors := make([]*game.Actor, 0, len(r.actors))
	for _, a := range r.actors {
		actors = append(actors, a)
	}
	r.actors = make(map[string]*game.Actor)
	r.mu.Unlock()

	for _, a := range actors {
		a.Stop()
	}
}
