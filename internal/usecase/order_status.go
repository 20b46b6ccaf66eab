package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainErrors "github.com/shopflow/choreography/internal/domain/errors"
	"github.com/shopflow/choreography/internal/domain/repository"
	"github.com/shopflow/choreography/internal/event"
)

const maxStatusAttempts = 3

// OrderStatusUseCase applies payment outcomes to orders.
type OrderStatusUseCase struct {
	orders repository.OrderRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewOrderStatusUseCase constructs OrderStatusUseCase.
func NewOrderStatusUseCase(orders repository.OrderRepository, logger *slog.Logger) *OrderStatusUseCase {
	return &OrderStatusUseCase{orders: orders, logger: logger, now: time.Now}
}

// HandlePaymentSucceeded moves a Submitted order to Paid. Orders in any other status
// are left alone, so redelivery is harmless.
func (u *OrderStatusUseCase) HandlePaymentSucceeded(ctx context.Context, e event.PaymentSucceeded) error {
	for attempt := 1; attempt <= maxStatusAttempts; attempt++ {
		order, err := u.orders.FindByID(ctx, e.OrderID)
		if err != nil {
			return fmt.Errorf("load order %s: %w", e.OrderID, err)
		}

		if !order.MarkPaid(u.now()) {
			u.logger.InfoContext(ctx, "payment already applied",
				slog.String("order", order.ID), slog.String("status", string(order.Status)))
			return nil
		}

		err = u.orders.Replace(ctx, order)
		if err == nil {
			u.logger.InfoContext(ctx, "order paid", slog.String("order", order.ID), slog.String("event", e.ID))
			return nil
		}
		if !errors.Is(err, domainErrors.ErrConflict) {
			return fmt.Errorf("update order %s: %w", e.OrderID, err)
		}
		u.logger.DebugContext(ctx, "order changed concurrently, reloading",
			slog.String("order", e.OrderID), slog.Int("attempt", attempt))
	}
	return fmt.Errorf("update order %s: %w", e.OrderID, domainErrors.ErrConflict)
}

// HandlePaymentFailed records the decline. The order keeps its status.
func (u *OrderStatusUseCase) HandlePaymentFailed(ctx context.Context, e event.PaymentFailed) error {
	order, err := u.orders.FindByID(ctx, e.OrderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", e.OrderID, err)
	}
	u.logger.WarnContext(ctx, "payment declined",
		slog.String("order", order.ID),
		slog.String("status", string(order.Status)),
		slog.String("reason", e.Reason),
	)
	return nil
}
