package notifier

import (
	"context"
	"log/slog"

	"github.com/shopflow/choreography/internal/domain/model"
)

// LogSender writes notifications to the log instead of delivering them.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender constructs LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send never fails.
func (s *LogSender) Send(ctx context.Context, n model.Notification) error {
	s.logger.InfoContext(ctx, "email queued",
		slog.String("recipient", n.Recipient),
		slog.String("order", n.OrderID),
		slog.String("kind", string(n.Kind)),
		slog.String("message", n.Message),
	)
	return nil
}
