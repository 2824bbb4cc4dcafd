// Command cuttlesrv is the HTTP and WebSocket front door for the game
// actor runtime: it deals new games, hands out public views, and streams
// per-seat updates over a websocket connection.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/avidcoder/cutthroat/internal/engine"
	"github.com/avidcoder/cutthroat/internal/events"
	"github.com/avidcoder/cutthroat/internal/game"
	"github.com/avidcoder/cutthroat/internal/registry"
	"github.com/avidcoder/cutthroat/internal/storage"
	"github.com/avidcoder/cutthroat/internal/telemetry"
	"github.com/avidcoder/cutthroat/pkg/card"
	"github.com/avidcoder/cutthroat/pkg/rng"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // development default, not a security boundary
	},
}

// Server wires the registry to HTTP and WebSocket handlers. It holds no
// game state of its own: every mutation goes through a game.Actor
// obtained from reg.
type Server struct {
	reg       *registry.Registry
	rngSys    *rng.System
	logs      storage.LogStore
	analytics storage.AnalyticsSink
	producer  *events.Producer

	nextGameID int64
}

// NewServer builds a Server. logs, analytics, and producer may be nil —
// logs and producer are each used only if present, so the server runs
// standalone without any of the backing stores configured. analytics is
// stored on the Server but no handler reads it.
func NewServer(reg *registry.Registry, rngSys *rng.System, logs storage.LogStore, analytics storage.AnalyticsSink, producer *events.Producer) *Server {
	return &Server{reg: reg, rngSys: rngSys, logs: logs, analytics: analytics, producer: producer}
}

// createGame deals a new game: a random dealer seat and a shuffled deck,
// both drawn from the crypto RNG so the deal cannot be predicted or
// replayed by a client.
func (s *Server) createGame(c *gin.Context) {
	dealer := card.Seat(s.rngSys.RandomInt(3))
	deck := shuffledDeck(s.rngSys)

	id := fmt.Sprintf("game-%d", atomic.AddInt64(&s.nextGameID, 1))

	startedAt := time.Now()
	actor, err := s.reg.Create(id, dealer, deck, func(transcript string, actionCount int, final *engine.State) {
		s.onGameOver(id, dealer, startedAt, transcript, actionCount, final)
	})
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	actor.Start(context.Background())

	c.JSON(http.StatusCreated, gin.H{
		"game_id": id,
		"dealer":  dealer,
	})
}

// onGameOver persists the finished game's transcript and publishes a
// completion event. It runs on the actor's own goroutine (see
// game.Actor.finish), so it must never block on the actor itself.
func (s *Server) onGameOver(id string, dealer card.Seat, startedAt time.Time, transcript string, actionCount int, final *engine.State) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.logs != nil {
		if err := s.logs.Append(ctx, id, transcript); err != nil {
			log.Printf("cuttlesrv: failed to persist transcript for %s: %v", id, err)
		}
	}

	if final.Winner == nil {
		return
	}

	duration := time.Since(startedAt)
	winnerSeat := card.Seat0
	if final.Winner.Kind == engine.WinnerSeat {
		winnerSeat = final.Winner.Seat
	}

	if s.producer != nil {
		evt := events.GameCompleted{
			GameID:      id,
			Dealer:      dealer,
			Winner:      final.Winner.Kind.String(),
			WinnerSeat:  winnerSeat,
			ActionCount: actionCount,
			DurationMS:  duration.Milliseconds(),
			FinishedAt:  time.Now(),
		}
		if err := s.producer.Publish(ctx, evt); err != nil {
			log.Printf("cuttlesrv: failed to publish completion event for %s: %v", id, err)
		}
	}

	telemetry.GameDuration.Observe(duration.Seconds())
}

// getView returns the public view of a game for a given seat.
func (s *Server) getView(c *gin.Context) {
	id := c.Param("gameId")
	seat, ok := parseSeat(c.Query("seat"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing seat"})
		return
	}

	actor, ok := s.reg.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	c.JSON(http.StatusOK, actor.View(seat))
}

// getLog returns the stored token-log transcript of a finished game.
func (s *Server) getLog(c *gin.Context) {
	if s.logs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "log storage not configured"})
		return
	}
	id := c.Param("gameId")
	transcript, err := s.logs.Load(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"game_id": id, "log": transcript})
}

// wireMessage is the inbound/outbound websocket envelope. Clients send
// {"action": {...}} and receive either {"view": {...}} or {"error": "..."}.
type wireMessage struct {
	Action *engine.Action     `json:"action,omitempty"`
	View   *engine.PublicView `json:"view,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// handleWebSocket upgrades the connection, subscribes it to the actor's
// per-seat update stream, and accepts inbound action submissions until
// the client disconnects.
func (s *Server) handleWebSocket(c *gin.Context) {
	id := c.Param("gameId")
	seat, ok := parseSeat(c.Query("seat"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing seat"})
		return
	}

	actor, ok := s.reg.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("cuttlesrv: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	go s.pumpUpdates(ctx, conn, actor, seat)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("cuttlesrv: websocket error: %v", err)
			}
			return
		}

		var msg wireMessage
		if err := json.Unmarshal(payload, &msg); err != nil || msg.Action == nil {
			conn.WriteJSON(wireMessage{Error: "malformed action message"})
			continue
		}

		view, err := actor.Submit(ctx, seat, *msg.Action)
		if err != nil {
			conn.WriteJSON(wireMessage{Error: err.Error()})
			continue
		}
		conn.WriteJSON(wireMessage{View: &view})
	}
}

// pumpUpdates forwards broadcast views addressed to seat onto conn until
// ctx is cancelled.
func (s *Server) pumpUpdates(ctx context.Context, conn *websocket.Conn, actor *game.Actor, seat card.Seat) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, open := <-actor.Updates():
			if !open {
				return
			}
			if update.Seat != seat {
				continue
			}
			if err := conn.WriteJSON(wireMessage{View: &update.View}); err != nil {
				return
			}
		}
	}
}

func parseSeat(raw string) (card.Seat, bool) {
	switch raw {
	case "0":
		return card.Seat0, true
	case "1":
		return card.Seat1, true
	case "2":
		return card.Seat2, true
	default:
		return 0, false
	}
}

// shuffledDeck returns a fresh standard deck in Fisher-Yates order, drawn
// from sys so the deal is unpredictable and unreplayable.
func shuffledDeck(sys *rng.System) []card.Card {
	deck := card.StandardDeck()
	for i := len(deck) - 1; i > 0; i-- {
		j := sys.RandomInt(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}
