package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/IBM/sarama"

	"github.com/shopflow/choreography/internal/messaging"
	"github.com/shopflow/choreography/internal/telemetry"
)

// Producer publishes messages synchronously so callers learn about broker failures.
type Producer struct {
	producer sarama.SyncProducer
	logger   *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewProducer connects a sync producer to brokers.
func NewProducer(brokers []string, config *sarama.Config, logger *slog.Logger) (*Producer, error) {
	sp, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	logger.Info("kafka producer initialized", slog.Any("brokers", brokers))
	return NewProducerFrom(sp, logger), nil
}

// NewProducerFrom wraps an existing sarama producer.
func NewProducerFrom(sp sarama.SyncProducer, logger *slog.Logger) *Producer {
	return &Producer{producer: sp, logger: logger}
}

// Publish sends msg and waits for the broker acknowledgement.
func (p *Producer) Publish(ctx context.Context, msg messaging.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return messaging.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	partition, offset, err := p.producer.SendMessage(toProducerMessage(msg))
	if err != nil {
		telemetry.RecordPublished(msg.Topic, telemetry.OutcomeError)
		return fmt.Errorf("send message to %s: %w", msg.Topic, err)
	}

	telemetry.RecordPublished(msg.Topic, telemetry.OutcomeOK)
	p.logger.DebugContext(ctx, "message published",
		slog.String("topic", msg.Topic),
		slog.String("key", msg.Key),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
	)
	return nil
}

// Close flushes and closes the underlying producer.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.producer.Close()
}
