package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainErrors "github.com/shopflow/choreography/internal/domain/errors"
	"github.com/shopflow/choreography/internal/domain/model"
	"github.com/shopflow/choreography/internal/domain/repository"
	"github.com/shopflow/choreography/internal/event"
)

// BasketUseCase manages baskets and clears them once an order is placed.
type BasketUseCase struct {
	baskets repository.BasketRepository
	logger  *slog.Logger
}

// NewBasketUseCase constructs BasketUseCase.
func NewBasketUseCase(baskets repository.BasketRepository, logger *slog.Logger) *BasketUseCase {
	return &BasketUseCase{baskets: baskets, logger: logger}
}

// HandleOrderCreated deletes the buyer's basket. Deleting twice is harmless.
func (u *BasketUseCase) HandleOrderCreated(ctx context.Context, e event.OrderCreated) error {
	if strings.TrimSpace(e.UserName) == "" {
		return fmt.Errorf("%w: order %s carries no user name", domainErrors.ErrValidation, e.OrderID)
	}
	if err := u.baskets.Delete(ctx, e.UserName); err != nil {
		return fmt.Errorf("clear basket of %s: %w", e.UserName, err)
	}
	u.logger.InfoContext(ctx, "basket cleared", slog.String("user", e.UserName), slog.String("order", e.OrderID))
	return nil
}

// Get returns the user's basket or an empty one when none is stored.
func (u *BasketUseCase) Get(ctx context.Context, userName string) (*model.Basket, error) {
	basket, err := u.baskets.Get(ctx, userName)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return &model.Basket{UserName: userName, Items: []model.BasketItem{}}, nil
		}
		return nil, err
	}
	return basket, nil
}

// Update replaces the user's basket.
func (u *BasketUseCase) Update(ctx context.Context, userName string, items []model.BasketItem) (*model.Basket, error) {
	for _, item := range items {
		if strings.TrimSpace(item.ProductID) == "" {
			return nil, fmt.Errorf("%w: %w", domainErrors.ErrValidation, domainErrors.ErrInvalidProduct)
		}
		if item.Quantity < 0 {
			return nil, fmt.Errorf("%w: %w", domainErrors.ErrValidation, domainErrors.ErrInvalidQuantity)
		}
		if err := model.ValidatePrice(item.Price); err != nil {
			return nil, fmt.Errorf("%w: %w", domainErrors.ErrValidation, err)
		}
	}
	if items == nil {
		items = []model.BasketItem{}
	}
	return u.baskets.Update(ctx, &model.Basket{UserName: userName, Items: items})
}

// Delete removes the user's basket.
func (u *BasketUseCase) Delete(ctx context.Context, userName string) error {
	return u.baskets.Delete(ctx, userName)
}
