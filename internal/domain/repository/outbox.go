package repository

import (
	"context"
	"time"

	"github.com/shopflow/choreography/internal/domain/model"
)

// OutboxRepository gives the relay access to unpublished integration events.
type OutboxRepository interface {
	// ClaimBatch leases up to limit unpublished messages for the given duration.
	ClaimBatch(ctx context.Context, limit int, lease time.Duration) ([]model.OutboxMessage, error)
	MarkPublished(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, cause error) error
}
