package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avidcoder/cutthroat/internal/events"
	"github.com/avidcoder/cutthroat/internal/registry"
	"github.com/avidcoder/cutthroat/internal/storage"
	"github.com/avidcoder/cutthroat/internal/storage/postgres"
	"github.com/avidcoder/cutthroat/pkg/rng"
)

func main() {
	rngSys, err := rng.NewSystem(rng.NewAuditLogger())
	if err != nil {
		log.Fatalf("failed to initialize RNG: %v", err)
	}

	logs := maybeConnectPostgres()
	analytics := maybeConnectClickHouse()
	producer := maybeConnectKafka()
	if producer != nil {
		defer producer.Close()
	}

	srv := NewServer(registry.Get(), rngSys, logs, analytics, producer)

	router := gin.Default()
	router.POST("/api/games", srv.createGame)
	router.GET("/api/games/:gameId/view", srv.getView)
	router.GET("/api/games/:gameId/log", srv.getLog)
	router.GET("/ws/:gameId", srv.handleWebSocket)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("cuttlesrv: shutting down, stopping all live games...")
		registry.Get().StopAll()
		os.Exit(0)
	}()

	port := os.Getenv("CUTTHROAT_SERVER_PORT")
	if port == "" {
		port = "3100"
	}

	log.Printf("cuttlesrv starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// maybeConnectPostgres wires the transcript log store when
// CUTTHROAT_POSTGRES_DSN is set, and runs without persistence otherwise.
func maybeConnectPostgres() storage.LogStore {
	dsn := os.Getenv("CUTTHROAT_POSTGRES_DSN")
	if dsn == "" {
		log.Println("cuttlesrv: CUTTHROAT_POSTGRES_DSN not set, transcripts will not be persisted")
		return nil
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Printf("cuttlesrv: failed to open postgres: %v", err)
		return nil
	}
	if err := db.Ping(); err != nil {
		log.Printf("cuttlesrv: failed to ping postgres: %v", err)
		return nil
	}
	return postgres.NewLogPostgresStorage(db)
}

// maybeConnectClickHouse wires the analytics sink when
// CUTTHROAT_CLICKHOUSE_HOST is set, and runs without analytics otherwise.
func maybeConnectClickHouse() storage.AnalyticsSink {
	host := os.Getenv("CUTTHROAT_CLICKHOUSE_HOST")
	if host == "" {
		log.Println("cuttlesrv: CUTTHROAT_CLICKHOUSE_HOST not set, analytics disabled")
		return nil
	}
	port, _ := strconv.Atoi(os.Getenv("CUTTHROAT_CLICKHOUSE_PORT"))
	if port == 0 {
		port = 9000
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := storage.NewClickHouseAnalytics(ctx, storage.ClickHouseConfig{
		Host:     host,
		Port:     port,
		Database: os.Getenv("CUTTHROAT_CLICKHOUSE_DATABASE"),
		Username: os.Getenv("CUTTHROAT_CLICKHOUSE_USER"),
		Password: os.Getenv("CUTTHROAT_CLICKHOUSE_PASSWORD"),
	})
	if err != nil {
		log.Printf("cuttlesrv: failed to connect to clickhouse: %v", err)
		return nil
	}
	if err := ch.CreateTables(ctx); err != nil {
		log.Printf("cuttlesrv: failed to create clickhouse tables: %v", err)
	}
	return ch
}

// maybeConnectKafka wires the completion-event producer when
// CUTTHROAT_KAFKA_BROKERS is set, and runs without one otherwise.
func maybeConnectKafka() *events.Producer {
	brokers := os.Getenv("CUTTHROAT_KAFKA_BROKERS")
	if brokers == "" {
		log.Println("cuttlesrv: CUTTHROAT_KAFKA_BROKERS not set, completion events disabled")
		return nil
	}
	topic := os.Getenv("CUTTHROAT_KAFKA_TOPIC")
	if topic == "" {
		topic = "cutthroat.games.completed"
	}

	producer, err := events.NewProducer(events.ProducerConfig{
		Brokers:        []string{brokers},
		Topic:          topic,
		MaxRetries:     3,
		RetryBackoff:   100 * time.Millisecond,
		FlushFrequency: 500 * time.Millisecond,
		FlushMessages:  10,
	})
	if err != nil {
		log.Printf("cuttlesrv: failed to connect to kafka: %v", err)
		return nil
	}
	return producer
}
