package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
)

// MessageWriter is the subset of *kafka.Writer used by the publisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes calculation events to a topic, keyed by portfolio ID
// so events of one portfolio stay ordered on one partition.
type KafkaPublisher struct {
	writer MessageWriter
	log    *slog.Logger
}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, log *slog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return NewPublisherWithWriter(w, log)
}

// NewPublisherWithWriter wraps an existing writer.
func NewPublisherWithWriter(w MessageWriter, log *slog.Logger) *KafkaPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &KafkaPublisher{writer: w, log: log.With(slog.String("component", "calculation-events"))}
}

// PublishCalculation writes one event.
func (p *KafkaPublisher) PublishCalculation(ctx context.Context, e model.CalculationEvent) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode calculation event: %w", err)
	}
	msg := kafka.Message{Key: []byte(e.PortfolioID), Value: b, Time: e.CreatedAt}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish calculation event: %w", err)
	}
	p.log.Debug("calculation event published",
		slog.String("calculation_id", e.CalculationID),
		slog.String("portfolio_id", e.PortfolioID))
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops events. It is used when no brokers are configured.
type NopPublisher struct{}

// PublishCalculation does nothing.
func (NopPublisher) PublishCalculation(context.Context, model.CalculationEvent) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }
