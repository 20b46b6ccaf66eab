package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/shopflow/choreography/internal/domain/errors"
)

// OrderStatus describes the order lifecycle. Only the values declared below are valid.
type OrderStatus string

const (
	OrderStatusSubmitted OrderStatus = "Submitted"
	OrderStatusPaid      OrderStatus = "Paid"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// ParseOrderStatus converts persisted or wire representation into OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	switch s := OrderStatus(value); s {
	case OrderStatusSubmitted, OrderStatusPaid, OrderStatusShipped, OrderStatusCancelled:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", domainErrors.ErrInvalidStatus, value)
	}
}

// Address is the immutable shipping destination of an order.
type Address struct {
	Street  string
	City    string
	State   string
	Country string
	ZipCode string
}

// Validate requires every address field to be present.
func (a Address) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"street", a.Street},
		{"city", a.City},
		{"state", a.State},
		{"country", a.Country},
		{"zipCode", a.ZipCode},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", domainErrors.ErrInvalidAddress, f.name)
		}
	}
	return nil
}

// OrderItem is a line of an order. Name and price are snapshots taken at checkout.
type OrderItem struct {
	ProductID   string
	ProductName string
	PictureURL  string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// Subtotal returns unit price multiplied by quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the aggregate root owned by the order service.
type Order struct {
	ID        string
	Code      string
	BuyerID   string
	UserName  string
	Address   Address
	Status    OrderStatus
	Items     []OrderItem
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder creates an order in Submitted status without items.
func NewOrder(buyerID, userName string, address Address, code string, now time.Time) (*Order, error) {
	if strings.TrimSpace(buyerID) == "" || strings.TrimSpace(userName) == "" {
		return nil, domainErrors.ErrInvalidBuyer
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}
	now = now.UTC()
	return &Order{
		ID:        uuid.NewString(),
		Code:      code,
		BuyerID:   buyerID,
		UserName:  userName,
		Address:   address,
		Status:    OrderStatusSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AddItem appends a line or, when the product is already present, adds the quantity to it.
func (o *Order) AddItem(productID, productName, pictureURL string, unitPrice decimal.Decimal, quantity int) error {
	if strings.TrimSpace(productID) == "" {
		return domainErrors.ErrInvalidProduct
	}
	if quantity < 0 {
		return fmt.Errorf("%w: %d", domainErrors.ErrInvalidQuantity, quantity)
	}
	if err := ValidatePrice(unitPrice); err != nil {
		return err
	}

	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			o.Items[i].Quantity += quantity
			return nil
		}
	}

	o.Items = append(o.Items, OrderItem{
		ProductID:   productID,
		ProductName: productName,
		PictureURL:  pictureURL,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
	})
	return nil
}

// maxPrice is the first value not representable in a NUMERIC(18, 2) column.
var maxPrice = decimal.New(1, 16)

// ValidatePrice accepts non-negative amounts with at most two decimal places
// that fit the stored precision.
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: %s", domainErrors.ErrInvalidPrice, price)
	}
	if !price.Equal(price.Round(2)) {
		return fmt.Errorf("%w: %s has more than two decimal places", domainErrors.ErrInvalidPrice, price)
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return fmt.Errorf("%w: %s is too large", domainErrors.ErrInvalidPrice, price)
	}
	return nil
}

// TotalPrice is derived from the items on every call.
func (o *Order) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// TotalUnits sums quantities across all lines.
func (o *Order) TotalUnits() int {
	var units int
	for _, item := range o.Items {
		units += item.Quantity
	}
	return units
}

// MarkPaid moves a Submitted order to Paid. It reports whether the order changed;
// applying it to an order in any other status is a no-op.
func (o *Order) MarkPaid(now time.Time) bool {
	switch o.Status {
	case OrderStatusSubmitted:
		o.Status = OrderStatusPaid
		o.UpdatedAt = now.UTC()
		return true
	case OrderStatusPaid, OrderStatusShipped, OrderStatusCancelled:
		return false
	default:
		return false
	}
}
