package repository

import (
	"context"

	"github.com/shopflow/choreography/internal/domain/model"
)

// NotificationRepository stores notifications and the order recipient projection.
type NotificationRepository interface {
	SaveRecipient(ctx context.Context, orderID, userName string) error
	FindRecipient(ctx context.Context, orderID string) (string, error)
	// Create reports false when a notification of the same kind already exists for the order.
	Create(ctx context.Context, notification *model.Notification) (bool, error)
	ListPending(ctx context.Context, orderID string) ([]model.Notification, error)
	// Claim moves a pending notification to SENDING and reports false when another
	// handler got there first.
	Claim(ctx context.Context, id, recipient string) (bool, error)
	UpdateStatus(ctx context.Context, id, recipient string, status model.NotificationStatus) error
}
