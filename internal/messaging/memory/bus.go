// Package memory provides an in-process message bus used by tests and single
// binary deployments.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopflow/choreography/internal/messaging"
)

const queueSize = 1024

type delivery struct {
	router *messaging.Router
	msg    messaging.Message
}

// Bus fans every published message out to all subscribed routers handling its
// topic. Deliveries run concurrently on a fixed pool of workers.
type Bus struct {
	logger *slog.Logger

	jobs       chan delivery
	done       chan struct{}
	workers    sync.WaitGroup
	pending    sync.WaitGroup
	publishing sync.WaitGroup

	mu        sync.RWMutex
	routers   map[*messaging.Router]struct{}
	published []messaging.Message
	closed    bool
	closeOnce sync.Once
}

// NewBus starts a bus with the given number of delivery workers.
func NewBus(workers int, logger *slog.Logger) *Bus {
	if workers <= 0 {
		workers = 1
	}
	b := &Bus{
		logger:  logger,
		jobs:    make(chan delivery, queueSize),
		done:    make(chan struct{}),
		routers: make(map[*messaging.Router]struct{}),
	}
	for i := 0; i < workers; i++ {
		b.workers.Add(1)
		go b.worker()
	}
	return b
}

// Publish records msg and schedules it for every interested router.
func (b *Bus) Publish(ctx context.Context, msg messaging.Message) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return messaging.ErrClosed
	}
	b.published = append(b.published, msg)
	var targets []*messaging.Router
	for r := range b.routers {
		if r.Handles(msg.Topic) {
			targets = append(targets, r)
		}
	}
	b.pending.Add(len(targets))
	b.publishing.Add(1)
	b.mu.Unlock()
	defer b.publishing.Done()

	for i, r := range targets {
		select {
		case b.jobs <- delivery{router: r, msg: msg}:
		case <-ctx.Done():
			for range targets[i:] {
				b.pending.Done()
			}
			return ctx.Err()
		case <-b.done:
			for range targets[i:] {
				b.pending.Done()
			}
			return messaging.ErrClosed
		}
	}
	return nil
}

// Subscribe attaches router until the returned function is called.
func (b *Bus) Subscribe(router *messaging.Router) (unsubscribe func()) {
	b.mu.Lock()
	b.routers[router] = struct{}{}
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.routers, router)
		b.mu.Unlock()
	}
}

// Consume subscribes router and blocks until ctx is done.
func (b *Bus) Consume(ctx context.Context, router *messaging.Router) error {
	unsubscribe := b.Subscribe(router)
	defer unsubscribe()
	select {
	case <-ctx.Done():
	case <-b.done:
	}
	return nil
}

// Wait blocks until every scheduled delivery has been handled.
func (b *Bus) Wait() {
	b.pending.Wait()
}

// Published returns messages published to topic so far.
func (b *Bus) Published(topic string) []messaging.Message {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []messaging.Message
	for _, msg := range b.published {
		if msg.Topic == topic {
			out = append(out, msg)
		}
	}
	return out
}

// Close stops the workers. Deliveries still queued are discarded and released
// from Wait.
func (b *Bus) Close() error {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()
		close(b.done)
		b.workers.Wait()
		b.publishing.Wait()
		for {
			select {
			case <-b.jobs:
				b.pending.Done()
			default:
				return
			}
		}
	})
	return nil
}

func (b *Bus) worker() {
	defer b.workers.Done()
	for {
		select {
		case <-b.done:
			return
		case d := <-b.jobs:
			b.deliver(d)
		}
	}
}

func (b *Bus) deliver(d delivery) {
	defer b.pending.Done()
	if err := d.router.Dispatch(context.Background(), d.msg); err != nil {
		b.logger.Error("in-memory delivery failed",
			slog.String("topic", d.msg.Topic),
			slog.String("key", d.msg.Key),
			slog.String("error", err.Error()),
		)
	}
}
