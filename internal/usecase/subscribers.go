package usecase

import (
	"context"
	"errors"
	"log/slog"

	domainErrors "github.com/shopflow/choreography/internal/domain/errors"
	"github.com/shopflow/choreography/internal/event"
	"github.com/shopflow/choreography/internal/messaging"
)

// Subscription registers the event handlers of one service on a router.
type Subscription func(r *messaging.Router)

// OrderSubscription applies payment outcomes to orders.
func OrderSubscription(status *OrderStatusUseCase, logger *slog.Logger) Subscription {
	return func(r *messaging.Router) {
		r.Handle(event.TopicPaymentSucceeded, handle(event.DecodePaymentSucceeded, status.HandlePaymentSucceeded, logger))
		r.Handle(event.TopicPaymentFailed, handle(event.DecodePaymentFailed, status.HandlePaymentFailed, logger))
	}
}

// PaymentSubscription decides payments for created orders.
func PaymentSubscription(payments *PaymentUseCase, logger *slog.Logger) Subscription {
	return func(r *messaging.Router) {
		r.Handle(event.TopicOrderCreated, handle(event.DecodeOrderCreated, payments.HandleOrderCreated, logger))
	}
}

// BasketSubscription clears baskets of buyers who placed an order.
func BasketSubscription(baskets *BasketUseCase, logger *slog.Logger) Subscription {
	return func(r *messaging.Router) {
		r.Handle(event.TopicOrderCreated, handle(event.DecodeOrderCreated, baskets.HandleOrderCreated, logger))
	}
}

// NotificationSubscription keeps the recipient projection and sends payment notifications.
func NotificationSubscription(notifications *NotificationUseCase, logger *slog.Logger) Subscription {
	return func(r *messaging.Router) {
		r.Handle(event.TopicOrderCreated, handle(event.DecodeOrderCreated, notifications.HandleOrderCreated, logger))
		r.Handle(event.TopicPaymentSucceeded, handle(event.DecodePaymentSucceeded, notifications.HandlePaymentSucceeded, logger))
	}
}

// handle decodes the payload and maps use case errors onto delivery semantics:
// undecodable or invalid events are permanent, unknown entities are dropped,
// everything else is retried.
func handle[E any](decode func([]byte) (E, error), apply func(context.Context, E) error, logger *slog.Logger) messaging.Handler {
	return func(ctx context.Context, msg messaging.Message) error {
		e, err := decode(msg.Value)
		if err != nil {
			return messaging.Permanent(err)
		}

		err = apply(ctx, e)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, domainErrors.ErrNotFound):
			logger.WarnContext(ctx, "dropping event for unknown entity",
				slog.String("topic", msg.Topic), slog.String("key", msg.Key), slog.String("error", err.Error()))
			return nil
		case errors.Is(err, domainErrors.ErrValidation):
			return messaging.Permanent(err)
		default:
			return err
		}
	}
}
