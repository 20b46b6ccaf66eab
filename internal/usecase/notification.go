package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/shopflow/choreography/internal/domain/errors"
	"github.com/shopflow/choreography/internal/domain/model"
	"github.com/shopflow/choreography/internal/domain/repository"
	"github.com/shopflow/choreography/internal/event"
	"github.com/shopflow/choreography/internal/telemetry"
)

// NotificationSender delivers a notification to its recipient.
type NotificationSender interface {
	Send(ctx context.Context, n model.Notification) error
}

// NotificationUseCase tells buyers about their orders on a best-effort basis.
type NotificationUseCase struct {
	notifications repository.NotificationRepository
	sender        NotificationSender
	logger        *slog.Logger
	now           func() time.Time
}

// NewNotificationUseCase constructs NotificationUseCase.
func NewNotificationUseCase(notifications repository.NotificationRepository, sender NotificationSender, logger *slog.Logger) *NotificationUseCase {
	return &NotificationUseCase{notifications: notifications, sender: sender, logger: logger, now: time.Now}
}

// HandleOrderCreated remembers who placed the order and sends anything that was
// waiting for that information.
func (u *NotificationUseCase) HandleOrderCreated(ctx context.Context, e event.OrderCreated) error {
	if e.UserName == "" {
		return fmt.Errorf("%w: order %s carries no user name", domainErrors.ErrValidation, e.OrderID)
	}
	if err := u.notifications.SaveRecipient(ctx, e.OrderID, e.UserName); err != nil {
		return fmt.Errorf("save recipient of %s: %w", e.OrderID, err)
	}
	return u.dispatchPending(ctx, e.OrderID, e.UserName)
}

// HandlePaymentSucceeded records the payment notification once per order and sends it
// when the recipient is known.
func (u *NotificationUseCase) HandlePaymentSucceeded(ctx context.Context, e event.PaymentSucceeded) error {
	n := &model.Notification{
		ID:        uuid.NewString(),
		OrderID:   e.OrderID,
		Kind:      model.NotificationPaymentSucceeded,
		Message:   fmt.Sprintf("Payment for order %s succeeded", e.OrderID),
		Status:    model.NotificationPending,
		CreatedAt: u.now().UTC(),
	}
	created, err := u.notifications.Create(ctx, n)
	if err != nil {
		return fmt.Errorf("record notification for %s: %w", e.OrderID, err)
	}
	if !created {
		u.logger.DebugContext(ctx, "notification already recorded", slog.String("order", e.OrderID))
	}

	recipient, err := u.notifications.FindRecipient(ctx, e.OrderID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrRecipientUnknown) {
			u.logger.InfoContext(ctx, "notification waits for recipient", slog.String("order", e.OrderID))
			return nil
		}
		return fmt.Errorf("find recipient of %s: %w", e.OrderID, err)
	}
	return u.dispatchPending(ctx, e.OrderID, recipient)
}

func (u *NotificationUseCase) dispatchPending(ctx context.Context, orderID, recipient string) error {
	pending, err := u.notifications.ListPending(ctx, orderID)
	if err != nil {
		return fmt.Errorf("list notifications of %s: %w", orderID, err)
	}

	for _, n := range pending {
		claimed, err := u.notifications.Claim(ctx, n.ID, recipient)
		if err != nil {
			return fmt.Errorf("claim notification %s: %w", n.ID, err)
		}
		if !claimed {
			u.logger.DebugContext(ctx, "notification claimed elsewhere", slog.String("notification", n.ID))
			continue
		}

		n.Recipient = recipient
		status := model.NotificationSent
		if err := u.sender.Send(ctx, n); err != nil {
			status = model.NotificationFailed
			u.logger.WarnContext(ctx, "notification delivery failed",
				slog.String("order", orderID),
				slog.String("recipient", recipient),
				slog.String("error", err.Error()),
			)
		}
		telemetry.RecordNotification(string(n.Kind), string(status))

		if err := u.notifications.UpdateStatus(ctx, n.ID, recipient, status); err != nil {
			u.logger.ErrorContext(ctx, "update notification status failed",
				slog.String("notification", n.ID), slog.String("error", err.Error()))
		}
	}
	return nil
}
