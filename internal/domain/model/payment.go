package model

import "time"

// PaymentStatus is the outcome of a payment decision.
type PaymentStatus string

const (
	PaymentStatusApproved PaymentStatus = "APPROVED"
	PaymentStatusDeclined PaymentStatus = "DECLINED"
)

// Payment records the single decision taken for an order.
type Payment struct {
	OrderID   string
	EventID   string
	Status    PaymentStatus
	Reason    string
	DecidedAt time.Time
}
