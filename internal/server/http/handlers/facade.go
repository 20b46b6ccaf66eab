package handlers

import (
	"context"

	"github.com/shopflow/choreography/internal/domain/model"
)

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	Checkout(ctx context.Context, req model.CheckoutRequest) (*model.Order, error)
	Orders(ctx context.Context, userName string) ([]model.Order, error)
	Order(ctx context.Context, id string) (*model.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

// BasketFacade provides basket operations for the caller.
type BasketFacade interface {
	Basket(ctx context.Context, userName string) (*model.Basket, error)
	UpdateBasket(ctx context.Context, userName string, items []model.BasketItem) (*model.Basket, error)
	DeleteBasket(ctx context.Context, userName string) error
}

// HealthChecker reports whether the service's backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
