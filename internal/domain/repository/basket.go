package repository

import (
	"context"

	"github.com/shopflow/choreography/internal/domain/model"
)

// BasketRepository manages shopping baskets keyed by user name.
type BasketRepository interface {
	Get(ctx context.Context, userName string) (*model.Basket, error)
	Update(ctx context.Context, basket *model.Basket) (*model.Basket, error)
	// Delete removes the basket; deleting an absent basket succeeds.
	Delete(ctx context.Context, userName string) error
}
