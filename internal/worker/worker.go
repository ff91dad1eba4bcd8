package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"promocart/internal/config"
	"promocart/internal/logger"
	"promocart/internal/offers"
	"promocart/internal/services/reconcile"

	"github.com/segmentio/kafka-go"
)

const (
	EventItemAdded      = "cart.item_added"
	EventPageLoaded     = "page.loaded"
	EventOrderCompleted = "order.completed"
)

// Event is a message on the cart events topic.
type Event struct {
	Type        string                `json:"type"`
	CartToken   string                `json:"cart_token"`
	CustomerID  string                `json:"customer_id"`
	SectionsURL string                `json:"sections_url"`
	CartPage    bool                  `json:"cart_page"`
	Order       *reconcile.OrderEvent `json:"order,omitempty"`
	Timestamp   time.Time             `json:"timestamp"`
}

// MessageReader is satisfied by *kafka.Reader.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Reconciler is what the worker triggers.
type Reconciler interface {
	ReconcileCart(ctx context.Context, req reconcile.CartRequest, p offers.Presenter) ([]offers.Outcome, error)
	RecordClaims(ctx context.Context, order reconcile.OrderEvent) (int, error)
}

type Worker struct {
	logger     *logger.Logger
	reader     MessageReader
	reconciler Reconciler
}

func New(cfg *config.Config, logger *logger.Logger, reconciler Reconciler) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers(),
		GroupID:        cfg.KafkaGroupID,
		Topic:          cfg.KafkaCartTopic,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})
	return NewWithReader(reader, logger, reconciler)
}

func NewWithReader(reader MessageReader, logger *logger.Logger, reconciler Reconciler) *Worker {
	return &Worker{
		logger:     logger,
		reader:     reader,
		reconciler: reconciler,
	}
}

// Start consumes events until ctx is done or the reader is closed.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Worker started, listening for cart events...")

	for {
		readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		message, err := w.reader.ReadMessage(readCtx)
		cancel()

		if err != nil {
			switch {
			case ctx.Err() != nil, errors.Is(err, io.EOF):
				w.logger.Info("Worker stopped")
				return
			case errors.Is(err, context.DeadlineExceeded):
				continue
			}
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		w.logger.Debug("Received message: %s", string(message.Value))

		if err := w.Handle(ctx, message); err != nil {
			w.logger.Error("Failed to process event: %v", err)
			continue
		}

		w.logger.Debug("Event processed successfully")
	}
}

// Handle processes one message.
func (w *Worker) Handle(ctx context.Context, message kafka.Message) error {
	var event Event
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("failed to parse event: %w", err)
	}

	switch event.Type {
	case EventItemAdded, EventPageLoaded:
		if event.CartToken == "" {
			return fmt.Errorf("%s event without cart token", event.Type)
		}
		outcomes, err := w.reconciler.ReconcileCart(ctx, reconcile.CartRequest{
			CartToken:   event.CartToken,
			CustomerID:  event.CustomerID,
			SectionsURL: event.SectionsURL,
			CartPage:    event.CartPage,
		}, nil)
		if err != nil {
			return fmt.Errorf("failed to reconcile cart: %w", err)
		}
		w.logger.Debug("Reconciled %d offers for cart %s", len(outcomes), event.CartToken)
		return nil

	case EventOrderCompleted:
		if event.Order == nil {
			return errors.New("order.completed event without order")
		}
		if event.Order.CustomerID == "" {
			event.Order.CustomerID = event.CustomerID
		}
		if _, err := w.reconciler.RecordClaims(ctx, *event.Order); err != nil {
			return fmt.Errorf("failed to record claims: %w", err)
		}
		return nil
	}

	w.logger.Debug("Ignoring event type %q", event.Type)
	return nil
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	if err := w.reader.Close(); err != nil {
		w.logger.Error("Failed to close reader: %v", err)
	}
}
