package test

import (
	"context"

	"github.com/shopflow/choreography/internal/domain/model"
)

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	CheckoutFn func(context.Context, model.CheckoutRequest) (*model.Order, error)
	OrdersFn   func(context.Context, string) ([]model.Order, error)
	OrderFn    func(context.Context, string) (*model.Order, error)
	DeleteFn   func(context.Context, string) error
}

// Checkout delegates to provided function or returns a submitted order.
func (s OrderFacadeStub) Checkout(ctx context.Context, req model.CheckoutRequest) (*model.Order, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, req)
	}
	return &model.Order{
		ID:       "order-1",
		Code:     "ABC123",
		BuyerID:  req.BuyerID,
		UserName: req.UserName,
		Status:   model.OrderStatusSubmitted,
	}, nil
}

// Orders returns predefined orders for given user.
func (s OrderFacadeStub) Orders(ctx context.Context, userName string) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, userName)
	}
	return nil, nil
}

// Order returns a single order.
func (s OrderFacadeStub) Order(ctx context.Context, id string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return &model.Order{ID: id, UserName: "alice", Status: model.OrderStatusSubmitted}, nil
}

// DeleteOrder removes an order.
func (s OrderFacadeStub) DeleteOrder(ctx context.Context, id string) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, id)
	}
	return nil
}

// BasketFacadeStub simulates basket operations.
type BasketFacadeStub struct {
	BasketFn func(context.Context, string) (*model.Basket, error)
	UpdateFn func(context.Context, string, []model.BasketItem) (*model.Basket, error)
	DeleteFn func(context.Context, string) error
}

// Basket returns stored basket or an empty one.
func (s BasketFacadeStub) Basket(ctx context.Context, userName string) (*model.Basket, error) {
	if s.BasketFn != nil {
		return s.BasketFn(ctx, userName)
	}
	return &model.Basket{UserName: userName}, nil
}

// UpdateBasket echoes the supplied items.
func (s BasketFacadeStub) UpdateBasket(ctx context.Context, userName string, items []model.BasketItem) (*model.Basket, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, userName, items)
	}
	return &model.Basket{UserName: userName, Items: items}, nil
}

// DeleteBasket executes configured handler.
func (s BasketFacadeStub) DeleteBasket(ctx context.Context, userName string) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, userName)
	}
	return nil
}

// HealthCheckerStub reports the configured error.
type HealthCheckerStub struct {
	Err error
}

// HealthCheck returns the configured error.
func (s HealthCheckerStub) HealthCheck(context.Context) error {
	return s.Err
}
