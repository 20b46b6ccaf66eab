package usecase

import (
	"context"

	"github.com/shopflow/choreography/internal/domain/model"
	"github.com/shopflow/choreography/internal/domain/repository"
)

// OrderQueryUseCase serves read and administrative operations on orders.
type OrderQueryUseCase struct {
	orders repository.OrderRepository
}

// NewOrderQueryUseCase constructs OrderQueryUseCase.
func NewOrderQueryUseCase(orders repository.OrderRepository) *OrderQueryUseCase {
	return &OrderQueryUseCase{orders: orders}
}

// ListByUser returns the user's orders, newest first.
func (u *OrderQueryUseCase) ListByUser(ctx context.Context, userName string) ([]model.Order, error) {
	return u.orders.ListByUser(ctx, userName)
}

// Get returns a single order.
func (u *OrderQueryUseCase) Get(ctx context.Context, id string) (*model.Order, error) {
	return u.orders.FindByID(ctx, id)
}

// Delete removes an order. It is not part of the fulfillment flow.
func (u *OrderQueryUseCase) Delete(ctx context.Context, id string) error {
	return u.orders.Delete(ctx, id)
}
