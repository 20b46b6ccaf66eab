package test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/shopflow/choreography/internal/domain/model"
)

// RelayTriggerStub counts relay wake-ups.
type RelayTriggerStub struct {
	count atomic.Int32
}

// Trigger records a wake-up.
func (r *RelayTriggerStub) Trigger() { r.count.Add(1) }

// Count returns the number of wake-ups.
func (r *RelayTriggerStub) Count() int { return int(r.count.Load()) }

// SenderStub records notifications instead of delivering them.
type SenderStub struct {
	mu   sync.Mutex
	sent []model.Notification
	Err  error
}

// Send records n or returns the configured error.
func (s *SenderStub) Send(_ context.Context, n model.Notification) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return nil
}

// Sent returns a snapshot of delivered notifications.
func (s *SenderStub) Sent() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Notification(nil), s.sent...)
}
