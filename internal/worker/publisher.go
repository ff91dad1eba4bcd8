package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"promocart/internal/config"
	"promocart/internal/logger"
	"promocart/internal/offers"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Result is a message on the results topic.
type Result struct {
	CartToken string         `json:"cart_token"`
	Outcome   offers.Outcome `json:"outcome"`
	Timestamp time.Time      `json:"timestamp"`
}

// ResultPublisher writes outcomes keyed by cart token, so one cart's results
// stay ordered on a partition.
type ResultPublisher struct {
	writer MessageWriter
	now    func() time.Time
}

// NewResultPublisher writes asynchronously so a cycle never waits on the
// broker. Delivery failures are logged; Close flushes pending batches.
func NewResultPublisher(cfg *config.Config, logger *logger.Logger) *ResultPublisher {
	return NewResultPublisherWithWriter(newWriter(cfg, logger))
}

func newWriter(cfg *config.Config, logger *logger.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers()...),
		Topic:        cfg.KafkaResultsTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to publish %d results: %v", len(messages), err)
			}
		},
	}
}

func NewResultPublisherWithWriter(w MessageWriter) *ResultPublisher {
	return &ResultPublisher{writer: w, now: time.Now}
}

func (p *ResultPublisher) Publish(ctx context.Context, cartToken string, outcome offers.Outcome) error {
	value, err := json.Marshal(Result{CartToken: cartToken, Outcome: outcome, Timestamp: p.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(cartToken), Value: value})
}

func (p *ResultPublisher) Close() error {
	return p.writer.Close()
}
