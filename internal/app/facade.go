package app

import (
	"context"

	"github.com/shopflow/choreography/internal/domain/model"
	"github.com/shopflow/choreography/internal/usecase"
)

// OrderingFacade exposes order use cases to the HTTP layer.
type OrderingFacade struct {
	checkout *usecase.CheckoutUseCase
	queries  *usecase.OrderQueryUseCase
}

func NewOrderingFacade(checkout *usecase.CheckoutUseCase, queries *usecase.OrderQueryUseCase) *OrderingFacade {
	return &OrderingFacade{checkout: checkout, queries: queries}
}

func (f *OrderingFacade) Checkout(ctx context.Context, req model.CheckoutRequest) (*model.Order, error) {
	return f.checkout.Checkout(ctx, req)
}

func (f *OrderingFacade) Orders(ctx context.Context, userName string) ([]model.Order, error) {
	return f.queries.ListByUser(ctx, userName)
}

func (f *OrderingFacade) Order(ctx context.Context, id string) (*model.Order, error) {
	return f.queries.Get(ctx, id)
}

func (f *OrderingFacade) DeleteOrder(ctx context.Context, id string) error {
	return f.queries.Delete(ctx, id)
}

// BasketFacade exposes basket use cases to the HTTP layer.
type BasketFacade struct {
	baskets *usecase.BasketUseCase
}

func NewBasketFacade(baskets *usecase.BasketUseCase) *BasketFacade {
	return &BasketFacade{baskets: baskets}
}

func (f *BasketFacade) Basket(ctx context.Context, userName string) (*model.Basket, error) {
	return f.baskets.Get(ctx, userName)
}

func (f *BasketFacade) UpdateBasket(ctx context.Context, userName string, items []model.BasketItem) (*model.Basket, error) {
	return f.baskets.Update(ctx, userName, items)
}

func (f *BasketFacade) DeleteBasket(ctx context.Context, userName string) error {
	return f.baskets.Delete(ctx, userName)
}
