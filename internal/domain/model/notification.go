package model

import "time"

// NotificationKind identifies what the user is being told about.
type NotificationKind string

const NotificationPaymentSucceeded NotificationKind = "payment_succeeded"

// NotificationStatus tracks delivery of a notification.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "PENDING"
	NotificationSending NotificationStatus = "SENDING"
	NotificationSent    NotificationStatus = "SENT"
	NotificationFailed  NotificationStatus = "FAILED"
)

// Notification is a message addressed to the buyer of an order.
type Notification struct {
	ID        string
	OrderID   string
	Kind      NotificationKind
	Recipient string
	Message   string
	Status    NotificationStatus
	CreatedAt time.Time
}
