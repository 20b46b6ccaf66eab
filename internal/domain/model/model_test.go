package model

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/shopflow/choreography/internal/domain/errors"
)

func validAddress() Address {
	return Address{Street: "1 Main St", City: "Springfield", State: "IL", Country: "US", ZipCode: "62701"}
}

func TestOrderStatusValues(t *testing.T) {
	cases := []struct {
		name  string
		got   OrderStatus
		value string
	}{
		{"submitted", OrderStatusSubmitted, "Submitted"},
		{"paid", OrderStatusPaid, "Paid"},
		{"shipped", OrderStatusShipped, "Shipped"},
		{"cancelled", OrderStatusCancelled, "Cancelled"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.got) != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
			parsed, err := ParseOrderStatus(tc.value)
			if err != nil {
				t.Fatalf("unexpected parse error: %v", err)
			}
			if parsed != tc.got {
				t.Fatalf("expected %s, got %s", tc.got, parsed)
			}
		})
	}
}

func TestParseOrderStatusRejectsUnknown(t *testing.T) {
	for _, value := range []string{"", "paid", "Refunded"} {
		if _, err := ParseOrderStatus(value); !errors.Is(err, domainErrors.ErrInvalidStatus) {
			t.Fatalf("expected ErrInvalidStatus for %q, got %v", value, err)
		}
	}
}

func TestNewOrderValidation(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	if _, err := NewOrder("", "alice", validAddress(), "ORD-AAAA-BBBB", now); !errors.Is(err, domainErrors.ErrInvalidBuyer) {
		t.Fatalf("expected ErrInvalidBuyer, got %v", err)
	}
	if _, err := NewOrder("buyer-1", " ", validAddress(), "ORD-AAAA-BBBB", now); !errors.Is(err, domainErrors.ErrInvalidBuyer) {
		t.Fatalf("expected ErrInvalidBuyer, got %v", err)
	}

	addr := validAddress()
	addr.ZipCode = ""
	if _, err := NewOrder("buyer-1", "alice", addr, "ORD-AAAA-BBBB", now); !errors.Is(err, domainErrors.ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}

	order, err := NewOrder("buyer-1", "alice", validAddress(), "ORD-AAAA-BBBB", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID == "" {
		t.Fatal("expected order id to be generated")
	}
	if order.Status != OrderStatusSubmitted {
		t.Fatalf("expected Submitted, got %s", order.Status)
	}
	if !order.CreatedAt.Equal(now) {
		t.Fatalf("unexpected creation time %v", order.CreatedAt)
	}
}

func TestAddItemMergesDuplicateProducts(t *testing.T) {
	order, err := NewOrder("buyer-1", "alice", validAddress(), "ORD-AAAA-BBBB", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := order.AddItem("p1", "Mouse", "", decimal.RequireFromString("50.00"), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := order.AddItem("p2", "Pad", "", decimal.RequireFromString("9.99"), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := order.AddItem("p1", "Mouse", "", decimal.RequireFromString("50.00"), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(order.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(order.Items))
	}
	if order.Items[0].Quantity != 2 {
		t.Fatalf("expected merged quantity 2, got %d", order.Items[0].Quantity)
	}
	if want := decimal.RequireFromString("129.97"); !order.TotalPrice().Equal(want) {
		t.Fatalf("expected total %s, got %s", want, order.TotalPrice())
	}
	if order.TotalUnits() != 5 {
		t.Fatalf("expected 5 units, got %d", order.TotalUnits())
	}
}

func TestAddItemRejectsInvalidInput(t *testing.T) {
	order, _ := NewOrder("buyer-1", "alice", validAddress(), "ORD-AAAA-BBBB", time.Now())

	cases := []struct {
		name      string
		productID string
		price     decimal.Decimal
		quantity  int
		want      error
	}{
		{"empty product", "", decimal.NewFromInt(1), 1, domainErrors.ErrInvalidProduct},
		{"negative quantity", "p1", decimal.NewFromInt(1), -1, domainErrors.ErrInvalidQuantity},
		{"negative price", "p1", decimal.NewFromInt(-1), 1, domainErrors.ErrInvalidPrice},
		{"sub-cent price", "p1", decimal.RequireFromString("0.005"), 1, domainErrors.ErrInvalidPrice},
		{"price beyond precision", "p1", decimal.RequireFromString("10000000000000000"), 1, domainErrors.ErrInvalidPrice},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := order.AddItem(tc.productID, "x", "", tc.price, tc.quantity); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if len(order.Items) != 0 {
		t.Fatalf("rejected items must not be added, got %d", len(order.Items))
	}
}

func TestValidatePrice(t *testing.T) {
	for _, v := range []string{"0", "0.5", "19.99", "19.990", "9999999999999999.99"} {
		if err := ValidatePrice(decimal.RequireFromString(v)); err != nil {
			t.Fatalf("expected %s to be accepted, got %v", v, err)
		}
	}
	for _, v := range []string{"-0.01", "0.001", "1.999", "10000000000000000"} {
		if err := ValidatePrice(decimal.RequireFromString(v)); !errors.Is(err, domainErrors.ErrInvalidPrice) {
			t.Fatalf("expected %s to be rejected, got %v", v, err)
		}
	}
}

func TestZeroQuantityContributesNothing(t *testing.T) {
	order, _ := NewOrder("buyer-1", "alice", validAddress(), "ORD-AAAA-BBBB", time.Now())
	if err := order.AddItem("p1", "Mouse", "", decimal.RequireFromString("50.00"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !order.TotalPrice().IsZero() {
		t.Fatalf("expected zero total, got %s", order.TotalPrice())
	}
}

func TestMarkPaidTransitions(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		from    OrderStatus
		changed bool
		want    OrderStatus
	}{
		{OrderStatusSubmitted, true, OrderStatusPaid},
		{OrderStatusPaid, false, OrderStatusPaid},
		{OrderStatusShipped, false, OrderStatusShipped},
		{OrderStatusCancelled, false, OrderStatusCancelled},
	}

	for _, tc := range cases {
		t.Run(string(tc.from), func(t *testing.T) {
			order := &Order{Status: tc.from}
			if got := order.MarkPaid(now); got != tc.changed {
				t.Fatalf("expected changed=%v, got %v", tc.changed, got)
			}
			if order.Status != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, order.Status)
			}
		})
	}
}

func TestMarkPaidTwiceStaysPaid(t *testing.T) {
	order := &Order{Status: OrderStatusSubmitted}
	order.MarkPaid(time.Now())
	if order.MarkPaid(time.Now()) {
		t.Fatal("second MarkPaid must not report a change")
	}
	if order.Status != OrderStatusPaid {
		t.Fatalf("expected Paid, got %s", order.Status)
	}
}

func TestGenerateOrderCode(t *testing.T) {
	code, err := GenerateOrderCode(bytes.NewReader([]byte{0, 1, 2, 3, 31, 32, 33, 255}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "ORD-ABCD-9AB9" {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestGenerateOrderCodeShortEntropy(t *testing.T) {
	if _, err := GenerateOrderCode(bytes.NewReader([]byte{1, 2})); err == nil {
		t.Fatal("expected error on short entropy")
	}
}

func TestNewOrderCodeFormat(t *testing.T) {
	code, err := NewOrderCode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parts := strings.Split(code, "-")
	if len(parts) != 3 || parts[0] != "ORD" {
		t.Fatalf("unexpected code format %s", code)
	}
	for _, segment := range parts[1:] {
		if len(segment) != 4 {
			t.Fatalf("unexpected segment %q", segment)
		}
		for _, r := range segment {
			if !strings.ContainsRune(orderCodeAlphabet, r) {
				t.Fatalf("unexpected symbol %q in %s", r, code)
			}
		}
	}
}

func TestBasketTotalPrice(t *testing.T) {
	basket := Basket{Items: []BasketItem{
		{ProductID: "p1", Price: decimal.RequireFromString("50.00"), Quantity: 2},
		{ProductID: "p2", Price: decimal.RequireFromString("0.50"), Quantity: 3},
	}}
	if want := decimal.RequireFromString("101.50"); !basket.TotalPrice().Equal(want) {
		t.Fatalf("expected %s, got %s", want, basket.TotalPrice())
	}
}
