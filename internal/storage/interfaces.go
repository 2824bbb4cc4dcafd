package storage

import (
	"context"
	"time"

	"github.com/avidcoder/cutthroat/pkg/card"
)

// LogStore persists finished games' token-log transcripts. Schema is
// opaque: one row per finished game, keyed by game id, holding the
// complete §4.2.1 wire text.
type LogStore interface {
	Append(ctx context.Context, gameID string, log string) error
	Load(ctx context.Context, gameID string) (string, error)
}

// GameSummary is the analytics-facing record of one finished game, fed
// asynchronously via internal/events rather than inline in the actor's
// apply path.
type GameSummary struct {
	GameID      string
	Dealer      card.Seat
	Winner      string // "Seat" or "Draw", mirrors engine.WinnerKind.String()
	WinnerSeat  card.Seat
	ActionCount int
	Duration    time.Duration
	FinishedAt  time.Time
}

// AnalyticsSink records finished-game summaries for reporting. Fire and
// forget: callers are not expected to retry or surface a failure to the
// player.
type AnalyticsSink interface {
	RecordGame(ctx context.Context, summary GameSummary) error
}
