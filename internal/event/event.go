// Package event defines the integration events exchanged between services.
// Field names on the wire are camelCase and must stay compatible across releases.
package event

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shopflow/choreography/internal/domain/model"
)

const (
	TopicOrderCreated     = "order-created"
	TopicPaymentSucceeded = "payment-succeeded"
	TopicPaymentFailed    = "payment-failed"
)

// IntegrationEvent carries the identity and creation time shared by all events.
type IntegrationEvent struct {
	ID           string    `json:"id"`
	CreationDate time.Time `json:"creationDate"`
}

// NewIntegrationEvent assigns a fresh identifier.
func NewIntegrationEvent(now time.Time) IntegrationEvent {
	return IntegrationEvent{ID: uuid.NewString(), CreationDate: now.UTC()}
}

// EventID returns the unique id of the event.
func (e IntegrationEvent) EventID() string { return e.ID }

// OrderCreated is published by checkout once the order is stored.
type OrderCreated struct {
	IntegrationEvent
	OrderID  string `json:"orderId"`
	UserName string `json:"userName"`
}

// PaymentSucceeded is published when the payment for an order was approved.
type PaymentSucceeded struct {
	IntegrationEvent
	OrderID string `json:"orderId"`
}

// PaymentFailed is published when the payment for an order was declined.
type PaymentFailed struct {
	IntegrationEvent
	OrderID string `json:"orderId"`
	Reason  string `json:"reason"`
}

// Event is implemented by every integration event.
type Event interface {
	EventID() string
	Topic() string
	Key() string
}

func (e OrderCreated) Topic() string     { return TopicOrderCreated }
func (e OrderCreated) Key() string       { return e.OrderID }
func (e PaymentSucceeded) Topic() string { return TopicPaymentSucceeded }
func (e PaymentSucceeded) Key() string   { return e.OrderID }
func (e PaymentFailed) Topic() string    { return TopicPaymentFailed }
func (e PaymentFailed) Key() string      { return e.OrderID }

// Encode serializes an event into its wire form.
func Encode(e Event) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.Topic(), err)
	}
	return payload, nil
}

// NewOutboxMessage converts an event into a row for the transactional outbox.
func NewOutboxMessage(e Event, headers map[string]string, now time.Time) (model.OutboxMessage, error) {
	payload, err := Encode(e)
	if err != nil {
		return model.OutboxMessage{}, err
	}
	return model.OutboxMessage{
		EventID:   e.EventID(),
		Topic:     e.Topic(),
		Key:       e.Key(),
		Payload:   payload,
		Headers:   headers,
		CreatedAt: now.UTC(),
	}, nil
}

// DecodeOrderCreated parses and validates an OrderCreated payload.
func DecodeOrderCreated(payload []byte) (OrderCreated, error) {
	var e OrderCreated
	if err := decode(payload, &e); err != nil {
		return e, err
	}
	if strings.TrimSpace(e.OrderID) == "" {
		return e, fmt.Errorf("%w: orderId is required", ErrMalformed)
	}
	return e, nil
}

// DecodePaymentSucceeded parses and validates a PaymentSucceeded payload.
func DecodePaymentSucceeded(payload []byte) (PaymentSucceeded, error) {
	var e PaymentSucceeded
	if err := decode(payload, &e); err != nil {
		return e, err
	}
	if strings.TrimSpace(e.OrderID) == "" {
		return e, fmt.Errorf("%w: orderId is required", ErrMalformed)
	}
	return e, nil
}

// DecodePaymentFailed parses and validates a PaymentFailed payload.
func DecodePaymentFailed(payload []byte) (PaymentFailed, error) {
	var e PaymentFailed
	if err := decode(payload, &e); err != nil {
		return e, err
	}
	if strings.TrimSpace(e.OrderID) == "" {
		return e, fmt.Errorf("%w: orderId is required", ErrMalformed)
	}
	return e, nil
}

func decode(payload []byte, dst any) error {
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return nil
}
