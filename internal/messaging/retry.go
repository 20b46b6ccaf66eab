package messaging

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopflow/choreography/internal/telemetry"
)

// Headers attached to dead-lettered messages.
const (
	HeaderError    = "x-error"
	HeaderAttempts = "x-attempts"
)

// DeadLetterTopic names the topic receiving messages a consumer gave up on.
func DeadLetterTopic(topic string) string {
	return topic + ".dlq"
}

// RetryPolicy configures the Retry middleware.
type RetryPolicy struct {
	MaxAttempts int
	// Backoff is multiplied by the attempt number between retries.
	Backoff    time.Duration
	DeadLetter Publisher
	Logger     *slog.Logger
}

// Retry re-invokes the handler on transient errors and dead-letters the message
// once attempts are exhausted or the error is permanent. A dead-lettered message
// is acknowledged.
func Retry(policy RetryPolicy) Middleware {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	logger := policy.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next Handler) Handler {
		return func(ctx context.Context, msg Message) error {
			start := time.Now()
			var (
				err     error
				attempt int
			)
			for attempt = 1; attempt <= policy.MaxAttempts; attempt++ {
				err = next(ctx, msg)
				if err == nil {
					telemetry.RecordConsumed(msg.Topic, telemetry.OutcomeOK, time.Since(start).Seconds())
					return nil
				}
				if IsPermanent(err) || attempt == policy.MaxAttempts {
					break
				}

				telemetry.RecordConsumed(msg.Topic, telemetry.OutcomeRetry, time.Since(start).Seconds())
				logger.WarnContext(ctx, "message handling failed, retrying",
					slog.String("topic", msg.Topic),
					slog.String("key", msg.Key),
					slog.Int("attempt", attempt),
					slog.String("error", err.Error()),
				)
				if !sleep(ctx, policy.Backoff*time.Duration(attempt)) {
					return ctx.Err()
				}
			}
			return deadLetter(ctx, policy, logger, msg, err, attempt, start)
		}
	}
}

func deadLetter(ctx context.Context, policy RetryPolicy, logger *slog.Logger, msg Message, cause error, attempts int, start time.Time) error {
	attrs := []any{
		slog.String("topic", msg.Topic),
		slog.String("key", msg.Key),
		slog.Int("attempts", attempts),
		slog.String("error", cause.Error()),
	}

	if policy.DeadLetter == nil {
		telemetry.RecordConsumed(msg.Topic, telemetry.OutcomeDropped, time.Since(start).Seconds())
		logger.ErrorContext(ctx, "message dropped", attrs...)
		return nil
	}

	headers := make(map[string]string, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[HeaderError] = cause.Error()
	headers[HeaderAttempts] = strconv.Itoa(attempts)

	dlq := Message{Topic: DeadLetterTopic(msg.Topic), Key: msg.Key, Value: msg.Value, Headers: headers}
	if err := policy.DeadLetter.Publish(ctx, dlq); err != nil {
		telemetry.RecordConsumed(msg.Topic, telemetry.OutcomeError, time.Since(start).Seconds())
		logger.ErrorContext(ctx, "dead letter publish failed", append(attrs, slog.String("publish_error", err.Error()))...)
		return err
	}

	telemetry.RecordConsumed(msg.Topic, telemetry.OutcomeDeadLetter, time.Since(start).Seconds())
	logger.ErrorContext(ctx, "message dead-lettered", attrs...)
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
