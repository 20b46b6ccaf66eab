package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	"github.com/shopflow/choreography/internal/messaging"
)

// ConsumerGroup delivers messages of a consumer group to a router. Partitions are
// consumed concurrently; messages within one partition are handled in order.
type ConsumerGroup struct {
	group  sarama.ConsumerGroup
	logger *slog.Logger
}

// NewConsumerGroup joins groupID on brokers.
func NewConsumerGroup(brokers []string, groupID string, config *sarama.Config, logger *slog.Logger) (*ConsumerGroup, error) {
	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer group: %w", err)
	}
	logger.Info("kafka consumer group initialized", slog.String("group", groupID))
	return NewConsumerGroupFrom(group, logger), nil
}

// NewConsumerGroupFrom wraps an existing sarama consumer group.
func NewConsumerGroupFrom(group sarama.ConsumerGroup, logger *slog.Logger) *ConsumerGroup {
	return &ConsumerGroup{group: group, logger: logger}
}

// Consume joins the group for the router's topics and rejoins after every
// rebalance until ctx is cancelled or the group is closed.
func (c *ConsumerGroup) Consume(ctx context.Context, router *messaging.Router) error {
	topics := router.Topics()
	if len(topics) == 0 {
		return errors.New("kafka consumer: router has no topics")
	}

	stop := make(chan struct{})
	errsDone := make(chan struct{})
	go func() {
		defer close(errsDone)
		for {
			select {
			case <-stop:
				return
			case err, ok := <-c.group.Errors():
				if !ok {
					return
				}
				c.logger.Error("kafka consumer error", slog.String("error", err.Error()))
			}
		}
	}()
	defer func() {
		close(stop)
		<-errsDone
	}()

	handler := &groupHandler{router: router, logger: c.logger}
	c.logger.Info("kafka consumer started", slog.Any("topics", topics))
	for {
		if err := c.group.Consume(ctx, topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return fmt.Errorf("kafka consume: %w", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Close leaves the group.
func (c *ConsumerGroup) Close() error {
	return c.group.Close()
}

type groupHandler struct {
	router *messaging.Router
	logger *slog.Logger
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim handles one partition. A message whose handling still fails after
// the retry middleware is left unmarked and the claim stops, so the next session
// redelivers it from the last committed offset.
func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := session.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case cm, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			msg := fromConsumerMessage(cm)
			if err := h.router.Dispatch(ctx, msg); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				h.logger.ErrorContext(ctx, "message handling failed",
					slog.String("topic", cm.Topic),
					slog.Int("partition", int(cm.Partition)),
					slog.Int64("offset", cm.Offset),
					slog.String("error", err.Error()),
				)
				return fmt.Errorf("handle %s/%d@%d: %w", cm.Topic, cm.Partition, cm.Offset, err)
			}
			session.MarkMessage(cm, "")
		}
	}
}
