package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainErrors "github.com/shopflow/choreography/internal/domain/errors"
	"github.com/shopflow/choreography/internal/domain/model"
	"github.com/shopflow/choreography/internal/domain/repository"
	"github.com/shopflow/choreography/internal/event"
	"github.com/shopflow/choreography/internal/messaging"
	"github.com/shopflow/choreography/internal/payment"
	"github.com/shopflow/choreography/internal/telemetry"
)

// PaymentUseCase takes the payment decision for newly created orders.
type PaymentUseCase struct {
	payments repository.PaymentRepository
	decider  payment.Decider
	relay    RelayTrigger
	logger   *slog.Logger
	now      func() time.Time
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(payments repository.PaymentRepository, decider payment.Decider, relay RelayTrigger, logger *slog.Logger) *PaymentUseCase {
	return &PaymentUseCase{payments: payments, decider: decider, relay: relay, logger: logger, now: time.Now}
}

// HandleOrderCreated decides the payment once per order and stores the outcome event
// next to the decision. A repeated OrderCreated produces no new outcome.
func (u *PaymentUseCase) HandleOrderCreated(ctx context.Context, e event.OrderCreated) error {
	existing, err := u.payments.FindByOrder(ctx, e.OrderID)
	switch {
	case err == nil:
		u.logger.InfoContext(ctx, "payment already decided",
			slog.String("order", e.OrderID), slog.String("status", string(existing.Status)))
		return nil
	case !errors.Is(err, domainErrors.ErrNotFound):
		return fmt.Errorf("load payment %s: %w", e.OrderID, err)
	}

	decision, err := u.decider.Decide(ctx, e.OrderID)
	if err != nil {
		return fmt.Errorf("decide payment %s: %w", e.OrderID, err)
	}

	now := u.now()
	record := model.Payment{OrderID: e.OrderID, EventID: e.ID, DecidedAt: now.UTC()}
	var outcome event.Event
	if decision.Approved {
		record.Status = model.PaymentStatusApproved
		outcome = event.PaymentSucceeded{IntegrationEvent: event.NewIntegrationEvent(now), OrderID: e.OrderID}
	} else {
		record.Status = model.PaymentStatusDeclined
		record.Reason = decision.Reason
		outcome = event.PaymentFailed{IntegrationEvent: event.NewIntegrationEvent(now), OrderID: e.OrderID, Reason: decision.Reason}
	}

	msg, err := event.NewOutboxMessage(outcome, messaging.InjectHeaders(ctx), now)
	if err != nil {
		return err
	}

	created, err := u.payments.Record(ctx, record, msg)
	if err != nil {
		return fmt.Errorf("record payment %s: %w", e.OrderID, err)
	}
	if !created {
		u.logger.InfoContext(ctx, "payment recorded concurrently", slog.String("order", e.OrderID))
		return nil
	}

	telemetry.RecordPaymentProcessed(string(record.Status))
	if u.relay != nil {
		u.relay.Trigger()
	}
	u.logger.InfoContext(ctx, "payment decided",
		slog.String("order", e.OrderID),
		slog.String("status", string(record.Status)),
		slog.String("reason", record.Reason),
	)
	return nil
}
