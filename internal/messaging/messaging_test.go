package messaging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type publisherStub struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

func (p *publisherStub) Publish(_ context.Context, msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *publisherStub) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRouterDispatch(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, msg Message) error {
				order = append(order, name)
				return next(ctx, msg)
			}
		}
	}

	r := NewRouter(mw("outer"), mw("inner"))
	r.Handle("b-topic", func(context.Context, Message) error { order = append(order, "handler"); return nil })
	r.Handle("a-topic", func(context.Context, Message) error { return nil })

	if err := r.Dispatch(context.Background(), Message{Topic: "b-topic"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 3 || order[0] != "outer" || order[1] != "inner" || order[2] != "handler" {
		t.Fatalf("unexpected middleware order %v", order)
	}

	topics := r.Topics()
	if len(topics) != 2 || topics[0] != "a-topic" {
		t.Fatalf("unexpected topics %v", topics)
	}
	if !r.Handles("a-topic") || r.Handles("c-topic") {
		t.Fatal("unexpected Handles result")
	}

	if err := r.Dispatch(context.Background(), Message{Topic: "c-topic"}); !IsPermanent(err) {
		t.Fatalf("expected permanent error for unknown topic, got %v", err)
	}
}

func TestPermanent(t *testing.T) {
	if Permanent(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
	base := errors.New("bad payload")
	err := Permanent(base)
	if !IsPermanent(err) || !errors.Is(err, base) {
		t.Fatalf("unexpected permanent error %v", err)
	}
	if IsPermanent(base) {
		t.Fatal("plain error must not be permanent")
	}
	if err.Error() != "permanent: bad payload" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestRetrySucceedsAfterTransientErrors(t *testing.T) {
	calls := 0
	h := Retry(RetryPolicy{MaxAttempts: 3, Logger: discardLogger()})(func(context.Context, Message) error {
		calls++
		if calls < 3 {
			return errors.New("db down")
		}
		return nil
	})

	if err := h(context.Background(), Message{Topic: "order-created"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryDeadLettersAfterExhaustion(t *testing.T) {
	dlq := &publisherStub{}
	calls := 0
	h := Retry(RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond, DeadLetter: dlq, Logger: discardLogger()})(
		func(context.Context, Message) error {
			calls++
			return errors.New("still down")
		})

	msg := Message{Topic: "payment-succeeded", Key: "o-1", Value: []byte(`{}`), Headers: map[string]string{"traceparent": "tp"}}
	if err := h(context.Background(), msg); err != nil {
		t.Fatalf("dead-lettered message must be acknowledged, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if len(dlq.messages) != 1 {
		t.Fatalf("expected one dead letter, got %d", len(dlq.messages))
	}
	dead := dlq.messages[0]
	if dead.Topic != "payment-succeeded.dlq" || dead.Key != "o-1" || string(dead.Value) != "{}" {
		t.Fatalf("unexpected dead letter %+v", dead)
	}
	if dead.Header(HeaderError) != "still down" || dead.Header(HeaderAttempts) != "2" || dead.Header("traceparent") != "tp" {
		t.Fatalf("unexpected dead letter headers %v", dead.Headers)
	}
	if msg.Headers[HeaderError] != "" {
		t.Fatal("original headers must not be modified")
	}
}

func TestRetrySkipsPermanentErrors(t *testing.T) {
	dlq := &publisherStub{}
	calls := 0
	h := Retry(RetryPolicy{MaxAttempts: 5, DeadLetter: dlq, Logger: discardLogger()})(func(context.Context, Message) error {
		calls++
		return Permanent(errors.New("malformed"))
	})

	if err := h(context.Background(), Message{Topic: "order-created"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
	if len(dlq.messages) != 1 || dlq.messages[0].Header(HeaderAttempts) != "1" {
		t.Fatalf("unexpected dead letters %+v", dlq.messages)
	}
}

func TestRetryWithoutDeadLetterDrops(t *testing.T) {
	h := Retry(RetryPolicy{Logger: discardLogger()})(func(context.Context, Message) error {
		return errors.New("boom")
	})
	if err := h(context.Background(), Message{Topic: "order-created"}); err != nil {
		t.Fatalf("expected message to be dropped, got %v", err)
	}
}

func TestRetryReturnsDeadLetterFailure(t *testing.T) {
	dlq := &publisherStub{err: errors.New("broker down")}
	h := Retry(RetryPolicy{MaxAttempts: 1, DeadLetter: dlq})(func(context.Context, Message) error {
		return errors.New("boom")
	})
	if err := h(context.Background(), Message{Topic: "order-created"}); err == nil {
		t.Fatal("expected dead letter failure to surface")
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := Retry(RetryPolicy{MaxAttempts: 3, Backoff: time.Hour, Logger: discardLogger()})(func(context.Context, Message) error {
		cancel()
		return errors.New("boom")
	})
	if err := h(ctx, Message{Topic: "order-created"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestTracingPropagatesProducerTrace(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	producerCtx, span := tp.Tracer("test").Start(context.Background(), "checkout")
	headers := InjectHeaders(producerCtx)
	span.End()

	var consumerTrace trace.TraceID
	h := Tracing()(func(ctx context.Context, msg Message) error {
		consumerTrace = trace.SpanContextFromContext(ctx).TraceID()
		return errors.New("fail")
	})
	if err := h(context.Background(), Message{Topic: "order-created", Headers: headers}); err == nil {
		t.Fatal("expected handler error to pass through")
	}
	if consumerTrace != span.SpanContext().TraceID() {
		t.Fatalf("expected trace %s, got %s", span.SpanContext().TraceID(), consumerTrace)
	}
}
