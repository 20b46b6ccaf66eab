package event

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestOrderCreatedWireShape(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	e := OrderCreated{
		IntegrationEvent: IntegrationEvent{ID: "evt-1", CreationDate: created},
		OrderID:          "order-1",
		UserName:         "alice",
	}

	payload, err := Encode(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, key := range []string{"id", "creationDate", "orderId", "userName"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("expected key %q in %s", key, payload)
		}
	}
	if len(fields) != 4 {
		t.Fatalf("unexpected extra fields in %s", payload)
	}
}

func TestPaymentFailedWireShape(t *testing.T) {
	e := PaymentFailed{IntegrationEvent: NewIntegrationEvent(time.Now()), OrderID: "order-1", Reason: "insufficient funds"}
	payload, err := Encode(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded, err := DecodePaymentFailed(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.OrderID != "order-1" || decoded.Reason != "insufficient funds" || decoded.ID != e.ID {
		t.Fatalf("unexpected event %+v", decoded)
	}
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		decode  func([]byte) error
	}{
		{"order created invalid json", "{", func(p []byte) error { _, err := DecodeOrderCreated(p); return err }},
		{"order created missing id", `{"userName":"alice"}`, func(p []byte) error { _, err := DecodeOrderCreated(p); return err }},
		{"payment succeeded missing id", `{"id":"x"}`, func(p []byte) error { _, err := DecodePaymentSucceeded(p); return err }},
		{"payment failed invalid json", "[]", func(p []byte) error { _, err := DecodePaymentFailed(p); return err }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.decode([]byte(tc.payload)); !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestNewOutboxMessage(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	e := PaymentSucceeded{IntegrationEvent: NewIntegrationEvent(now), OrderID: "order-7"}

	msg, err := NewOutboxMessage(e, map[string]string{"traceparent": "tp"}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Topic != TopicPaymentSucceeded || msg.Key != "order-7" || msg.EventID != e.ID {
		t.Fatalf("unexpected outbox message %+v", msg)
	}
	if msg.Headers["traceparent"] != "tp" {
		t.Fatalf("expected headers to be kept, got %v", msg.Headers)
	}
}
