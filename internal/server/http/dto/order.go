package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Address is the shipping address of an order.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zipCode"`
}

// CheckoutItem is a resolved line item sent by the client.
type CheckoutItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	PictureURL  string          `json:"pictureUrl"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
}

// CheckoutRequest describes the checkout payload.
type CheckoutRequest struct {
	Address
	Items []CheckoutItem `json:"items"`
}

// CheckoutResponse identifies the created order.
type CheckoutResponse struct {
	OrderID   string `json:"orderId"`
	OrderCode string `json:"orderCode"`
}

// OrderSummary is a row of the order list.
type OrderSummary struct {
	OrderID   string          `json:"orderId"`
	OrderCode string          `json:"orderCode"`
	Date      time.Time       `json:"date"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
}

// OrderItem is a line of a detailed order.
type OrderItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	PictureURL  string          `json:"pictureUrl,omitempty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Units       int             `json:"units"`
}

// OrderResponse is a detailed order.
type OrderResponse struct {
	OrderSummary
	Address Address     `json:"address"`
	Items   []OrderItem `json:"orderItems"`
}
