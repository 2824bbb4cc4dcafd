package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"

	"github.com/avidcoder/cutthroat/internal/storage"
)

// Consumer reads GameCompleted events off Kafka and feeds them to an
// AnalyticsSink, decoupling analytics writes from the actor's hot path:
// the actor only has to publish to the topic Producer writes, and this
// reads it on its own schedule.
type Consumer struct {
	consumer sarama.Consumer
	topic    string
	sink     storage.AnalyticsSink
}

// NewConsumer dials the Kafka brokers for consumption.
func NewConsumer(brokers []string, topic string, sink storage.AnalyticsSink) (*Consumer, error) {
	consumer, err := sarama.NewConsumer(brokers, sarama.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}
	return &Consumer{consumer: consumer, topic: topic, sink: sink}, nil
}

// Run reads every partition of topic from the oldest offset and feeds each
// decoded GameCompleted to the sink until ctx is cancelled. Decode failures
// are logged and skipped rather than aborting the whole run.
func (c *Consumer) Run(ctx context.Context) error {
	partitions, err := c.consumer.Partitions(c.topic)
	if err != nil {
		return fmt.Errorf("failed to list partitions for %q: %w", c.topic, err)
	}

	msgs := make(chan *sarama.ConsumerMessage)
	for _, partition := range partitions {
		pc, err := c.consumer.ConsumePartition(c.topic, partition, sarama.OffsetOldest)
		if err != nil {
			return fmt.Errorf("failed to consume partition %d of %q: %w", partition, c.topic, err)
		}
		go func(pc sarama.PartitionConsumer) {
			defer pc.Close()
			for {
				select {
				case msg := <-pc.Messages():
					msgs <- msg
				case <-ctx.Done():
					return
				}
			}
		}(pc)
	}

	for {
		select {
		case <-ctx.Done():
			return c.consumer.Close()
		case msg := <-msgs:
			var event GameCompleted
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("events: discarding malformed GameCompleted message: %v", err)
				continue
			}
			summary := storage.GameSummary{
				GameID:      event.GameID,
				Dealer:      event.Dealer,
				Winner:      event.Winner,
				WinnerSeat:  event.WinnerSeat,
				ActionCount: event.ActionCount,
				Duration:    time.Duration(event.DurationMS) * time.Millisecond,
				FinishedAt:  event.FinishedAt,
			}
			if err := c.sink.RecordGame(ctx, summary); err != nil {
				log.Printf("events: failed to record game %q to analytics sink: %v", event.GameID, err)
			}
		}
	}
}
