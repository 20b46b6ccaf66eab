package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	domainErrors "github.com/shopflow/choreography/internal/domain/errors"
	"github.com/shopflow/choreography/internal/domain/model"
	"github.com/shopflow/choreography/internal/domain/repository"
	"github.com/shopflow/choreography/internal/event"
	"github.com/shopflow/choreography/internal/messaging"
)

var tracer = otel.Tracer("github.com/shopflow/choreography/internal/usecase")

// RelayTrigger wakes the outbox relay so new events leave promptly.
type RelayTrigger interface {
	Trigger()
}

// Checkout payloads live in the model package so transport layers can build them.
type (
	CheckoutItem    = model.CheckoutItem
	CheckoutRequest = model.CheckoutRequest
)

// CheckoutUseCase turns a checkout request into a stored order and an OrderCreated event.
type CheckoutUseCase struct {
	orders  repository.OrderRepository
	relay   RelayTrigger
	logger  *slog.Logger
	now     func() time.Time
	newCode func() (string, error)
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(orders repository.OrderRepository, relay RelayTrigger, logger *slog.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{
		orders:  orders,
		relay:   relay,
		logger:  logger,
		now:     time.Now,
		newCode: model.NewOrderCode,
	}
}

// Checkout validates the request, stores the order together with its OrderCreated
// outbox message in one transaction and returns the created order.
func (u *CheckoutUseCase) Checkout(ctx context.Context, req CheckoutRequest) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "checkout")
	defer span.End()

	order, err := u.buildOrder(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("order.id", order.ID))

	created := event.OrderCreated{
		IntegrationEvent: event.NewIntegrationEvent(u.now()),
		OrderID:          order.ID,
		UserName:         order.UserName,
	}
	outbox, err := event.NewOutboxMessage(created, messaging.InjectHeaders(ctx), u.now())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := u.orders.Create(ctx, order, outbox); err != nil {
		span.SetStatus(codes.Error, err.Error())
		u.logger.ErrorContext(ctx, "store order failed", slog.String("order", order.ID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: store order: %w", domainErrors.ErrTransient, err)
	}

	if u.relay != nil {
		u.relay.Trigger()
	}

	u.logger.InfoContext(ctx, "order created",
		slog.String("order", order.ID),
		slog.String("code", order.Code),
		slog.String("user", order.UserName),
		slog.String("total", order.TotalPrice().StringFixed(2)),
	)
	return order, nil
}

func (u *CheckoutUseCase) buildOrder(req CheckoutRequest) (*model.Order, error) {
	if len(req.Items) == 0 {
		return nil, invalid(domainErrors.ErrEmptyOrder)
	}

	code, err := u.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate order code: %w", err)
	}

	order, err := model.NewOrder(req.BuyerID, req.UserName, req.Address, code, u.now())
	if err != nil {
		return nil, invalid(err)
	}
	for _, item := range req.Items {
		if err := order.AddItem(item.ProductID, item.ProductName, item.PictureURL, item.UnitPrice, item.Quantity); err != nil {
			return nil, invalid(err)
		}
	}
	return order, nil
}

func invalid(err error) error {
	if errors.Is(err, domainErrors.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %w", domainErrors.ErrValidation, err)
}
