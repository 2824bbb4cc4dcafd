// Package events fans finished-game notifications out to Kafka so
// downstream consumers (analytics, spectator feeds) don't sit on the
// actor's hot path.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/avidcoder/cutthroat/pkg/card"
)

// ProducerConfig holds Kafka producer configuration.
type ProducerConfig struct {
	Brokers        []string
	Topic          string
	MaxRetries     int
	RetryBackoff   time.Duration
	FlushFrequency time.Duration
	FlushMessages  int
	RequiredAcks   sarama.RequiredAcks
}

// GameCompleted is the wire message published when a game reaches
// GameOver.
type GameCompleted struct {
	GameID      string    `json:"game_id"`
	Dealer      card.Seat `json:"dealer"`
	Winner      string    `json:"winner"`
	WinnerSeat  card.Seat `json:"winner_seat,omitempty"`
	ActionCount int       `json:"action_count"`
	DurationMS  int64     `json:"duration_ms"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Producer publishes GameCompleted events to Kafka.
type Producer struct {
	producer sarama.SyncProducer
	topic    string

	mu     sync.RWMutex
	closed bool
	sent   int64
	failed int64
}

// NewProducer dials the Kafka brokers and returns a ready Producer.
func NewProducer(config ProducerConfig) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.Retry.Max = config.MaxRetries
	saramaConfig.Producer.Retry.Backoff = config.RetryBackoff
	saramaConfig.Producer.Flush.Frequency = config.FlushFrequency
	saramaConfig.Producer.Flush.Messages = config.FlushMessages
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &Producer{producer: producer, topic: config.Topic}, nil
}

// Publish sends one GameCompleted event, keyed by game id so consumers can
// partition by game.
func (p *Producer) Publish(ctx context.Context, event GameCompleted) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal game-completed event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.GameID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("winner"), Value: []byte(event.Winner)},
		},
		Timestamp: time.Now(),
	}

	_, _, err = p.producer.SendMessage(msg)
	p.mu.Lock()
	if err != nil {
		p.failed++
	} else {
		p.sent++
	}
	p.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to send game-completed event to Kafka: %w", err)
	}
	return nil
}

// Stats returns (messages sent, messages failed).
func (p *Producer) Stats() (sent, failed int64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sent, p.failed
}

// Close shuts the producer down gracefully. Idempotent.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.producer.Close()
}

// EnsureTopic creates the topic if it doesn't already exist.
func EnsureTopic(brokers []string, topic string, partitions int32, replicationFactor int16) error {
	config := sarama.NewConfig()
	config.Version = sarama.V2_0_0_0

	admin, err := sarama.NewClusterAdmin(brokers, config)
	if err != nil {
		return fmt.Errorf("failed to create cluster admin: %w", err)
	}
	defer admin.Close()

	detail := &sarama.TopicDetail{
		NumPartitions:     partitions,
		ReplicationFactor: replicationFactor,
	}
	if err := admin.CreateTopic(topic, detail, false); err != nil {
		if topicErr, ok := err.(*sarama.TopicError); ok && topicErr.Err == sarama.ErrTopicAlreadyExists {
			return nil
		}
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}
