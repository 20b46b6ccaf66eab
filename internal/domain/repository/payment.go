package repository

import (
	"context"

	"github.com/shopflow/choreography/internal/domain/model"
)

// PaymentRepository keeps one payment decision per order.
type PaymentRepository interface {
	FindByOrder(ctx context.Context, orderID string) (*model.Payment, error)
	// Record stores the decision and its outcome event atomically. It reports false
	// without storing anything when a decision for the order already exists.
	Record(ctx context.Context, payment model.Payment, outcome model.OutboxMessage) (bool, error)
}
