package errors

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("concurrent modification")
	ErrTransient = errors.New("temporarily unavailable")

	ErrValidation       = errors.New("validation failed")
	ErrEmptyOrder       = errors.New("order has no items")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidPrice     = errors.New("invalid unit price")
	ErrInvalidAddress   = errors.New("invalid address")
	ErrInvalidBuyer     = errors.New("invalid buyer")
	ErrInvalidProduct   = errors.New("invalid product")
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrRecipientUnknown = errors.New("notification recipient unknown")
)
