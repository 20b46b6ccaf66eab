// Package messaging contains the broker independent publish/subscribe contracts
// and the delivery middleware shared by all consumers.
package messaging

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Message is a single delivery on a topic. Key selects the partition so all
// messages of one order are delivered in publish order.
type Message struct {
	Topic   string
	Key     string
	Value   []byte
	Headers map[string]string
}

// Header returns the header value or an empty string.
func (m Message) Header(key string) string {
	return m.Headers[key]
}

// Handler processes a delivery. Returning nil acknowledges it.
type Handler func(ctx context.Context, msg Message) error

// Middleware decorates a Handler.
type Middleware func(next Handler) Handler

// Publisher sends messages to the broker.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Consumer delivers messages of the router's topics until ctx is cancelled.
type Consumer interface {
	Consume(ctx context.Context, router *Router) error
	Close() error
}

// Router maps topics to handlers wrapped in the configured middleware.
type Router struct {
	mu          sync.RWMutex
	routes      map[string]Handler
	middlewares []Middleware
}

// NewRouter creates a router; middleware is applied in the given order, the first one outermost.
func NewRouter(middlewares ...Middleware) *Router {
	return &Router{routes: make(map[string]Handler), middlewares: middlewares}
}

// Handle registers h for topic, replacing any previous handler.
func (r *Router) Handle(topic string, h Handler) {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		h = r.middlewares[i](h)
	}
	r.mu.Lock()
	r.routes[topic] = h
	r.mu.Unlock()
}

// Topics lists registered topics in lexical order.
func (r *Router) Topics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	topics := make([]string, 0, len(r.routes))
	for topic := range r.routes {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// Handles reports whether a handler is registered for topic.
func (r *Router) Handles(topic string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.routes[topic]
	return ok
}

// Dispatch routes msg to the handler of its topic.
func (r *Router) Dispatch(ctx context.Context, msg Message) error {
	r.mu.RLock()
	h, ok := r.routes[msg.Topic]
	r.mu.RUnlock()
	if !ok {
		return Permanent(fmt.Errorf("no handler for topic %q", msg.Topic))
	}
	return h(ctx, msg)
}
