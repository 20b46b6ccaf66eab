package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domainErrors "github.com/shopflow/choreography/internal/domain/errors"
	"github.com/shopflow/choreography/internal/domain/model"
	pkgAuth "github.com/shopflow/choreography/internal/pkg/auth"
	"github.com/shopflow/choreography/internal/server/http/dto"
	"github.com/shopflow/choreography/internal/server/http/middleware"
	testhelpers "github.com/shopflow/choreography/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var alice = pkgAuth.Identity{BuyerID: "buyer-1", UserName: "alice"}

func asAlice(c *gin.Context) {
	c.Set(middleware.IdentityContextKey, alice)
}

func performRequest(t *testing.T, method, route, path string, handler gin.HandlerFunc, setup func(*gin.Context), body []byte) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, route, func(c *gin.Context) {
		if setup != nil {
			setup(c)
		}
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func checkoutBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(dto.CheckoutRequest{
		Address: dto.Address{Street: "1 Main St", City: "Springfield", State: "IL", Country: "US", ZipCode: "62701"},
		Items: []dto.CheckoutItem{
			{ProductID: "p1", ProductName: "Mug", UnitPrice: decimal.RequireFromString("50.00"), Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return body
}

func TestCurrentIdentity(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentIdentity(c); got != (pkgAuth.Identity{}) {
		t.Fatalf("expected empty identity when not set, got %+v", got)
	}

	asAlice(c)
	if got := CurrentIdentity(c); got != alice {
		t.Fatalf("expected alice, got %+v", got)
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("%w: empty", domainErrors.ErrValidation): http.StatusBadRequest,
		domainErrors.ErrNotFound:                           http.StatusNotFound,
		fmt.Errorf("db: %w", domainErrors.ErrTransient):    http.StatusServiceUnavailable,
		errors.New("boom"):                                 http.StatusInternalServerError,
	}
	for err, want := range cases {
		if got := statusFor(err); got != want {
			t.Fatalf("statusFor(%v) = %d, want %d", err, got, want)
		}
	}
}

func TestOrderHandlerCheckout(t *testing.T) {
	var captured model.CheckoutRequest
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{
		CheckoutFn: func(_ context.Context, req model.CheckoutRequest) (*model.Order, error) {
			captured = req
			return &model.Order{ID: "order-7", Code: "QWERTY"}, nil
		},
	})

	w := performRequest(t, http.MethodPost, "/checkout", "/checkout", handler.Checkout, asAlice, checkoutBody(t))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp dto.CheckoutResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.OrderID != "order-7" || resp.OrderCode != "QWERTY" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if captured.BuyerID != alice.BuyerID || captured.UserName != alice.UserName {
		t.Fatalf("identity not forwarded: %+v", captured)
	}
	if captured.Address.City != "Springfield" || len(captured.Items) != 1 || captured.Items[0].Quantity != 2 {
		t.Fatalf("request not mapped: %+v", captured)
	}
}

func TestOrderHandlerCheckoutFailures(t *testing.T) {
	cases := []struct {
		name string
		body []byte
		err  error
		want int
	}{
		{name: "malformed", body: []byte("{"), want: http.StatusBadRequest},
		{name: "validation", err: fmt.Errorf("%w: %w", domainErrors.ErrValidation, domainErrors.ErrEmptyOrder), want: http.StatusBadRequest},
		{name: "transient", err: domainErrors.ErrTransient, want: http.StatusServiceUnavailable},
		{name: "unexpected", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewOrderHandler(testhelpers.OrderFacadeStub{
				CheckoutFn: func(context.Context, model.CheckoutRequest) (*model.Order, error) {
					return nil, tc.err
				},
			})
			body := tc.body
			if body == nil {
				body = checkoutBody(t)
			}
			w := performRequest(t, http.MethodPost, "/checkout", "/checkout", handler.Checkout, asAlice, body)
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}

func TestOrderHandlerList(t *testing.T) {
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{})
	w := performRequest(t, http.MethodGet, "/orders", "/orders", handler.List, asAlice, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for empty list, got %d", w.Code)
	}

	var requested string
	handler = NewOrderHandler(testhelpers.OrderFacadeStub{
		OrdersFn: func(_ context.Context, userName string) ([]model.Order, error) {
			requested = userName
			return []model.Order{{
				ID:        "o1",
				Code:      "AAAAAA",
				Status:    model.OrderStatusPaid,
				CreatedAt: time.Unix(0, 0).UTC(),
				Items:     []model.OrderItem{{ProductID: "p1", UnitPrice: decimal.RequireFromString("12.50"), Quantity: 2}},
			}}, nil
		},
	})
	w = performRequest(t, http.MethodGet, "/orders", "/orders", handler.List, asAlice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if requested != "alice" {
		t.Fatalf("expected orders for alice, got %q", requested)
	}
	var resp []dto.OrderSummary
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 1 || resp[0].Status != "Paid" || !resp[0].Total.Equal(decimal.RequireFromString("25")) {
		t.Fatalf("unexpected response %+v", resp)
	}

	handler = NewOrderHandler(testhelpers.OrderFacadeStub{
		OrdersFn: func(context.Context, string) ([]model.Order, error) { return nil, errors.New("db down") },
	})
	w = performRequest(t, http.MethodGet, "/orders", "/orders", handler.List, asAlice, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestOrderHandlerGet(t *testing.T) {
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{
		OrderFn: func(_ context.Context, id string) (*model.Order, error) {
			return &model.Order{
				ID:       id,
				UserName: "alice",
				Status:   model.OrderStatusSubmitted,
				Address:  model.Address{City: "Springfield"},
				Items:    []model.OrderItem{{ProductID: "p1", ProductName: "Mug", UnitPrice: decimal.NewFromInt(3), Quantity: 4}},
			}, nil
		},
	})
	w := performRequest(t, http.MethodGet, "/orders/:id", "/orders/o1", handler.Get, asAlice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp dto.OrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.OrderID != "o1" || resp.Address.City != "Springfield" || len(resp.Items) != 1 || resp.Items[0].Units != 4 {
		t.Fatalf("unexpected response %+v", resp)
	}

	other := func(c *gin.Context) {
		c.Set(middleware.IdentityContextKey, pkgAuth.Identity{BuyerID: "b2", UserName: "bob"})
	}
	w = performRequest(t, http.MethodGet, "/orders/:id", "/orders/o1", handler.Get, other, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign order, got %d", w.Code)
	}

	handler = NewOrderHandler(testhelpers.OrderFacadeStub{
		OrderFn: func(context.Context, string) (*model.Order, error) { return nil, domainErrors.ErrNotFound },
	})
	w = performRequest(t, http.MethodGet, "/orders/:id", "/orders/missing", handler.Get, asAlice, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestOrderHandlerDelete(t *testing.T) {
	var deleted string
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{
		DeleteFn: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	})
	w := performRequest(t, http.MethodDelete, "/orders/:id", "/orders/o9", handler.Delete, asAlice, nil)
	if w.Code != http.StatusNoContent || deleted != "o9" {
		t.Fatalf("expected 204 and delete of o9, got %d %q", w.Code, deleted)
	}

	handler = NewOrderHandler(testhelpers.OrderFacadeStub{
		DeleteFn: func(context.Context, string) error { return domainErrors.ErrNotFound },
	})
	w = performRequest(t, http.MethodDelete, "/orders/:id", "/orders/o9", handler.Delete, asAlice, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestBasketHandlerGet(t *testing.T) {
	handler := NewBasketHandler(testhelpers.BasketFacadeStub{
		BasketFn: func(_ context.Context, userName string) (*model.Basket, error) {
			return &model.Basket{UserName: userName, Items: []model.BasketItem{
				{ProductID: "p1", Price: decimal.RequireFromString("2.50"), Quantity: 4},
			}}, nil
		},
	})
	w := performRequest(t, http.MethodGet, "/basket", "/basket", handler.Get, asAlice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp dto.BasketResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.BuyerID != "alice" || len(resp.Items) != 1 || !resp.Total.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected basket %+v", resp)
	}
}

func TestBasketHandlerUpdate(t *testing.T) {
	var received []model.BasketItem
	handler := NewBasketHandler(testhelpers.BasketFacadeStub{
		UpdateFn: func(_ context.Context, userName string, items []model.BasketItem) (*model.Basket, error) {
			received = items
			return &model.Basket{UserName: userName, Items: items}, nil
		},
	})
	body, _ := json.Marshal(dto.BasketRequest{Items: []dto.BasketItem{
		{ProductID: "p1", ProductName: "Mug", Price: decimal.NewFromInt(5), Quantity: 1},
	}})
	w := performRequest(t, http.MethodPost, "/basket", "/basket", handler.Update, asAlice, body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(received) != 1 || received[0].ProductName != "Mug" {
		t.Fatalf("unexpected items %+v", received)
	}

	w = performRequest(t, http.MethodPost, "/basket", "/basket", handler.Update, asAlice, []byte("nope"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", w.Code)
	}

	handler = NewBasketHandler(testhelpers.BasketFacadeStub{
		UpdateFn: func(context.Context, string, []model.BasketItem) (*model.Basket, error) {
			return nil, domainErrors.ErrValidation
		},
	})
	w = performRequest(t, http.MethodPost, "/basket", "/basket", handler.Update, asAlice, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestBasketHandlerDelete(t *testing.T) {
	handler := NewBasketHandler(testhelpers.BasketFacadeStub{})
	w := performRequest(t, http.MethodDelete, "/basket", "/basket", handler.Delete, asAlice, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	handler = NewBasketHandler(testhelpers.BasketFacadeStub{
		DeleteFn: func(context.Context, string) error { return domainErrors.ErrTransient },
	})
	w = performRequest(t, http.MethodDelete, "/basket", "/basket", handler.Delete, asAlice, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	cases := []struct {
		name    string
		checker HealthChecker
		want    int
	}{
		{name: "no checker", want: http.StatusOK},
		{name: "healthy", checker: testhelpers.HealthCheckerStub{}, want: http.StatusOK},
		{name: "unhealthy", checker: testhelpers.HealthCheckerStub{Err: errors.New("refused")}, want: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewHealthHandler(tc.checker)
			w := performRequest(t, http.MethodGet, "/healthz", "/healthz", handler.Health, nil, nil)
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}

var (
	_ OrderFacade   = testhelpers.OrderFacadeStub{}
	_ BasketFacade  = testhelpers.BasketFacadeStub{}
	_ HealthChecker = testhelpers.HealthCheckerStub{}
)
