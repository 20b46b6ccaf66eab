package model

import "github.com/shopspring/decimal"

// CheckoutItem is a line item already resolved by the caller.
type CheckoutItem struct {
	ProductID   string
	ProductName string
	PictureURL  string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// CheckoutRequest carries everything needed to place an order.
type CheckoutRequest struct {
	BuyerID  string
	UserName string
	Address  Address
	Items    []CheckoutItem
}
