// Package payment contains the simulated payment decision policies.
package payment

import (
	"context"
	"hash/fnv"
)

// DefaultDeclineReason is reported when a simulated payment is declined.
const DefaultDeclineReason = "insufficient funds (simulated)"

// Decision is the outcome of charging an order.
type Decision struct {
	Approved bool
	Reason   string
}

// Decider decides whether an order's payment succeeds. Implementations must be
// deterministic per order so redelivered events get the same answer.
type Decider interface {
	Decide(ctx context.Context, orderID string) (Decision, error)
}

// DeciderFunc adapts a function to Decider.
type DeciderFunc func(ctx context.Context, orderID string) (Decision, error)

func (f DeciderFunc) Decide(ctx context.Context, orderID string) (Decision, error) {
	return f(ctx, orderID)
}

// AlwaysApprove approves every payment.
func AlwaysApprove() Decider {
	return DeciderFunc(func(context.Context, string) (Decision, error) {
		return Decision{Approved: true}, nil
	})
}

// NewHashDecider declines roughly declinePercent of orders, chosen by a hash
// of the order id.
func NewHashDecider(declinePercent int, reason string) Decider {
	if declinePercent <= 0 {
		return AlwaysApprove()
	}
	if declinePercent > 100 {
		declinePercent = 100
	}
	if reason == "" {
		reason = DefaultDeclineReason
	}
	return DeciderFunc(func(_ context.Context, orderID string) (Decision, error) {
		if bucket(orderID) < uint32(declinePercent) {
			return Decision{Approved: false, Reason: reason}, nil
		}
		return Decision{Approved: true}, nil
	})
}

func bucket(orderID string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(orderID))
	return h.Sum32() % 100
}
