package storage

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ClickHouseConfig holds ClickHouse connection configuration.
type ClickHouseConfig struct {
	Host         string
	Port         int
	Database     string
	Username     string
	Password     string
	Secure       bool
	MaxOpenConns int
	MaxIdleConns int
	ConnTimeout  time.Duration
}

// ClickHouseAnalytics implements AnalyticsSink for ClickHouse.
type ClickHouseAnalytics struct {
	db clickhouse.Conn
}

// NewClickHouseAnalytics opens a ClickHouse connection and pings it.
func NewClickHouseAnalytics(ctx context.Context, config ClickHouseConfig) (*ClickHouseAnalytics, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", config.Host, config.Port)},
		Auth: clickhouse.Auth{
			Database: config.Database,
			Username: config.Username,
			Password: config.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		TLS: &tls.Config{InsecureSkipVerify: config.Secure},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	return &ClickHouseAnalytics{db: conn}, nil
}

// CreateTables creates the game_analytics table if it doesn't exist.
func (ch *ClickHouseAnalytics) CreateTables(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS game_analytics (
		game_id String,
		dealer_seat Int8,
		winner String,
		winner_seat Int8,
		action_count Int32,
		duration_ms Int64,
		finished_at DateTime64(3)
	) ENGINE = ReplacingMergeTree(finished_at)
	ORDER BY (game_id, finished_at)`

	if err := ch.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create game_analytics table: %w", err)
	}
	return nil
}

// RecordGame records one finished game's summary.
func (ch *ClickHouseAnalytics) RecordGame(ctx context.Context, summary GameSummary) error {
	query := `
		INSERT INTO game_analytics (
			game_id, dealer_seat, winner, winner_seat, action_count,
			duration_ms, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	return ch.db.Exec(ctx, query,
		summary.GameID, int8(summary.Dealer), summary.Winner, int8(summary.WinnerSeat),
		summary.ActionCount, summary.Duration.Milliseconds(), summary.FinishedAt,
	)
}

// Close closes the ClickHouse connection.
func (ch *ClickHouseAnalytics) Close() error {
	return ch.db.Close()
}

// Ping checks if the connection is alive.
func (ch *ClickHouseAnalytics) Ping(ctx context.Context) error {
	return ch.db.Ping(ctx)
}
