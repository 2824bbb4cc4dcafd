// Package game is the per-table actor runtime around internal/engine.
// Exactly one Actor owns one engine.State for the lifetime of a game: a
// single goroutine drains its command mailbox and is the only caller of
// engine.Apply. Nothing here advances on a clock, so run() is purely
// event-driven — no ticker.
package game

import (
	"context"
	"errors"
	"sync"

	"github.com/avidcoder/cutthroat/internal/engine"
	"github.com/avidcoder/cutthroat/internal/telemetry"
	"github.com/avidcoder/cutthroat/internal/tokenlog"
	"github.com/avidcoder/cutthroat/pkg/card"
)

// ErrStopped is returned by Submit once Stop has been called. Reaching
// GameOver does not stop the actor by itself; the registry's game-over
// hook is what calls Stop for a finished game.
var ErrStopped = errors.New("game: actor is no longer accepting commands")

// SeatUpdate is one redacted view pushed to the fan-out channel after a
// successful apply. Viewer-specific: a subscriber only ever needs the view
// for the seat it renders.
type SeatUpdate struct {
	Seat card.Seat
	View engine.PublicView
}

type actorCommand struct {
	seat   card.Seat
	action engine.Action
	reply  chan applyResult
}

type applyResult struct {
	view engine.PublicView
	err  error
}

// Actor owns exactly one engine.State for one live game. All mutation goes
// through Submit's mailbox; View is the lone synchronous read path and
// never touches the mailbox.
type Actor struct {
	id string

	mu    sync.RWMutex
	state *engine.State

	dealer card.Seat
	deck   []card.Card
	log    []tokenlog.SeatAction

	commands chan actorCommand
	updates  chan SeatUpdate
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	onGameOver func(transcript string, actionCount int, final *engine.State)
}

// New deals a fresh game from (dealer, deck) and returns its actor. The
// actor does not start running until Start is called.
func New(id string, dealer card.Seat, deck []card.Card) (*Actor, error) {
	st, err := engine.NewWithDeck(dealer, deck)
	if err != nil {
		return nil, err
	}
	telemetry.GamesStarted.Inc()
	telemetry.LiveGames.Inc()
	return &Actor{
		id:       id,
		state:    st,
		dealer:   dealer,
		deck:     append([]card.Card(nil), deck...),
		commands: make(chan actorCommand, 16),
		updates:  make(chan SeatUpdate, 24),
		stopChan: make(chan struct{}),
	}, nil
}

// ID is the server-generated game id this actor was registered under.
func (a *Actor) ID() string { return a.id }

// OnGameOver registers the transcript-flush hook. Must be called before
// Start; the actor does not guard against a late registration racing the
// owning goroutine.
func (a *Actor) OnGameOver(fn func(transcript string, actionCount int, final *engine.State)) {
	a.onGameOver = fn
}

// Start launches the owning goroutine. ctx cancellation stops it exactly
// like an explicit Stop.
func (a *Actor) Start(ctx context.Context) {
	a.wg.Add(1)
	go a.run(ctx)
}

// Stop halts the owning goroutine and waits for it to exit. Idempotent.
func (a *Actor) Stop() {
	a.stopOnce.Do(func() {
		close(a.stopChan)
		telemetry.LiveGames.Dec()
	})
	a.wg.Wait()
}

func (a *Actor) run(ctx context.Context) {
	defer a.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.stopChan:
			return
		case cmd := <-a.commands:
			view, err := a.apply(cmd.seat, cmd.action)
			cmd.reply <- applyResult{view: view, err: err}
		}
	}
}

// Submit enqueues (seat, action) for the owning goroutine and waits for the
// resulting view of seat or ctx cancellation.
func (a *Actor) Submit(ctx context.Context, seat card.Seat, action engine.Action) (engine.PublicView, error) {
	reply := make(chan applyResult, 1)
	select {
	case <-a.stopChan:
		return engine.PublicView{}, ErrStopped
	default:
	}
	select {
	case a.commands <- actorCommand{seat: seat, action: action, reply: reply}:
	case <-ctx.Done():
		return engine.PublicView{}, ctx.Err()
	case <-a.stopChan:
		return engine.PublicView{}, ErrStopped
	}

	select {
	case res := <-reply:
		return res.view, res.err
	case <-ctx.Done():
		return engine.PublicView{}, ctx.Err()
	}
}

// View is the synchronous query path: no mailbox round-trip, just a
// redacted snapshot under the read lock.
func (a *Actor) View(seat card.Seat) engine.PublicView {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.PublicView(seat)
}

// Updates is the fan-out channel a websocket connection subscribes to. A
// slow subscriber drops updates rather than stalling the owning goroutine.
func (a *Actor) Updates() <-chan SeatUpdate {
	return a.updates
}

// apply runs only on the owning goroutine.
func (a *Actor) apply(seat card.Seat, action engine.Action) (engine.PublicView, error) {
	a.mu.RLock()
	_, encErr := tokenlog.EncodeAction(a.state, seat, action)
	a.mu.RUnlock()
	if encErr != nil {
		return engine.PublicView{}, encErr
	}

	a.mu.Lock()
	preKind := a.state.Phase.Kind
	preCounterLen := 0
	if preKind == engine.PhaseCountering {
		preCounterLen = len(a.state.Phase.Counter.Twos)
	}

	err := a.state.Apply(seat, action)
	var view engine.PublicView
	var gameOver bool
	if err == nil {
		a.log = append(a.log, tokenlog.SeatAction{Seat: seat, Action: action})
		view = a.state.PublicView(seat)
		gameOver = a.state.Phase.Kind == engine.PhaseGameOver
		if preKind == engine.PhaseCountering && a.state.Phase.Kind != engine.PhaseCountering {
			telemetry.CounterWindowLength.Observe(float64(preCounterLen))
		}
	}
	a.mu.Unlock()

	telemetry.RecordApply(action.Kind.String(), err)
	if err != nil {
		return engine.PublicView{}, err
	}

	a.broadcast()
	if gameOver {
		a.finish()
	}
	return view, nil
}

func (a *Actor) broadcast() {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for seatIdx := card.Seat0; seatIdx <= card.Seat2; seatIdx++ {
		update := SeatUpdate{Seat: seatIdx, View: a.state.PublicView(seatIdx)}
		select {
		case a.updates <- update:
		default:
		}
	}
}

// finish encodes the full transcript and hands it to the registered
// game-over hook. Apply's own GameOver check means no further command will
// ever mutate state again, so reading a.log and a.state here without
// re-checking gameOver is safe.
func (a *Actor) finish() {
	a.mu.RLock()
	dealer, deck := a.dealer, a.deck
	log := append([]tokenlog.SeatAction(nil), a.log...)
	final := a.state
	a.mu.RUnlock()

	if final.Winner != nil {
		telemetry.RecordGameFinished(final.Winner.Kind.String())
	}

	if a.onGameOver == nil {
		return
	}
	transcript, err := tokenlog.Encode(dealer, deck, log)
	if err != nil {
		telemetry.RecordTokenLogFailure(err)
		return
	}
	a.onGameOver(transcript, len(log), final)
}
