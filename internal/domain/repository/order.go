package repository

import (
	"context"

	"github.com/shopflow/choreography/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// Create stores the order together with the outbox messages describing it.
	Create(ctx context.Context, order *model.Order, outbox ...model.OutboxMessage) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	// Replace saves status changes when the stored version matches order.Version
	// and returns ErrConflict otherwise. On success order.Version is incremented.
	Replace(ctx context.Context, order *model.Order) error
	ListByUser(ctx context.Context, userName string) ([]model.Order, error)
	Delete(ctx context.Context, id string) error
}
