// Package postgres is the PostgreSQL-backed implementation of
// storage.LogStore, one row per finished game.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// LogPostgresStorage implements storage.LogStore for PostgreSQL.
type LogPostgresStorage struct {
	db *sql.DB
}

// NewLogPostgresStorage creates a new PostgreSQL-backed log store.
func NewLogPostgresStorage(db *sql.DB) *LogPostgresStorage {
	return &LogPostgresStorage{db: db}
}

// Append inserts a finished game's full token-log transcript. Games are
// append-only: a second Append for the same gameID is rejected rather than
// silently overwriting a transcript already handed to clients.
func (s *LogPostgresStorage) Append(ctx context.Context, gameID string, log string) error {
	query := `
		INSERT INTO game_logs (game_id, log, created_at)
		VALUES ($1, $2, now())
	`
	_, err := s.db.ExecContext(ctx, query, gameID, log)
	if err != nil {
		return fmt.Errorf("postgres: append game log %q: %w", gameID, err)
	}
	return nil
}

// Load retrieves a finished game's token-log transcript by id.
func (s *LogPostgresStorage) Load(ctx context.Context, gameID string) (string, error) {
	query := `SELECT log FROM game_logs WHERE game_id = $1`

	var log string
	err := s.db.QueryRowContext(ctx, query, gameID).Scan(&log)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("postgres: no log stored for game %q", gameID)
	}
	if err != nil {
		return "", fmt.Errorf("postgres: load game log %q: %w", gameID, err)
	}
	return log, nil
}
