package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	domainErrors "github.com/shopflow/choreography/internal/domain/errors"
	"github.com/shopflow/choreography/internal/domain/model"
	testhelpers "github.com/shopflow/choreography/internal/test"
)

func TestBasketClearedOnOrderCreated(t *testing.T) {
	baskets := testhelpers.NewBasketRepositoryStub()
	uc := NewBasketUseCase(baskets, discardLogger())
	items := []model.BasketItem{{ProductID: "mouse", Price: decimal.RequireFromString("50"), Quantity: 2}}
	if _, err := uc.Update(context.Background(), "alice", items); err != nil {
		t.Fatalf("seed: %v", err)
	}

	e := orderCreated("order-1", "alice")
	if err := uc.HandleOrderCreated(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := baskets.Get(context.Background(), "alice"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected basket to be gone, got %v", err)
	}

	// a second delivery finds nothing to delete and still succeeds
	if err := uc.HandleOrderCreated(context.Background(), e); err != nil {
		t.Fatalf("unexpected error on redelivery: %v", err)
	}
	if baskets.Deletes != 2 {
		t.Fatalf("expected two delete calls, got %d", baskets.Deletes)
	}
}

func TestBasketOrderCreatedWithoutUser(t *testing.T) {
	baskets := testhelpers.NewBasketRepositoryStub()
	uc := NewBasketUseCase(baskets, discardLogger())

	if err := uc.HandleOrderCreated(context.Background(), orderCreated("order-1", "")); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if baskets.Deletes != 0 {
		t.Fatal("no basket may be touched")
	}
}

func TestBasketOrderCreatedStoreError(t *testing.T) {
	baskets := testhelpers.NewBasketRepositoryStub()
	baskets.Err = errors.New("redis down")
	uc := NewBasketUseCase(baskets, discardLogger())

	if err := uc.HandleOrderCreated(context.Background(), orderCreated("order-1", "alice")); err == nil {
		t.Fatal("expected error")
	}
}

func TestBasketGetUpdateDelete(t *testing.T) {
	baskets := testhelpers.NewBasketRepositoryStub()
	uc := NewBasketUseCase(baskets, discardLogger())

	empty, err := uc.Get(context.Background(), "bob")
	if err != nil || len(empty.Items) != 0 || empty.UserName != "bob" {
		t.Fatalf("expected empty basket, got %+v err=%v", empty, err)
	}

	items := []model.BasketItem{
		{ProductID: "mouse", Price: decimal.RequireFromString("50"), Quantity: 1},
		{ProductID: "pad", Price: decimal.RequireFromString("1.50"), Quantity: 1},
	}
	if _, err := uc.Update(context.Background(), "bob", items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	basket, err := uc.Get(context.Background(), "bob")
	if err != nil || !basket.TotalPrice().Equal(decimal.RequireFromString("51.50")) {
		t.Fatalf("unexpected basket %+v err=%v", basket, err)
	}

	if err := uc.Delete(context.Background(), "bob"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	invalid := [][]model.BasketItem{
		{{ProductID: "", Quantity: 1}},
		{{ProductID: "x", Quantity: -1}},
		{{ProductID: "x", Quantity: 1, Price: decimal.NewFromInt(-5)}},
		{{ProductID: "x", Quantity: 1, Price: decimal.RequireFromString("1.999")}},
	}
	for _, items := range invalid {
		if _, err := uc.Update(context.Background(), "bob", items); !errors.Is(err, domainErrors.ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", items, err)
		}
	}

	baskets.Err = errors.New("redis down")
	if _, err := uc.Get(context.Background(), "bob"); err == nil {
		t.Fatal("expected error")
	}
}
