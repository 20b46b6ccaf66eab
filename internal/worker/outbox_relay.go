package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopflow/choreography/internal/domain/model"
	"github.com/shopflow/choreography/internal/domain/repository"
	"github.com/shopflow/choreography/internal/messaging"
	"github.com/shopflow/choreography/internal/telemetry"
)

// RelayOptions tunes the outbox relay.
type RelayOptions struct {
	PollInterval time.Duration
	BatchSize    int
	Workers      int
	Lease        time.Duration
}

// OutboxRelay publishes stored outbox messages to the broker concurrently.
type OutboxRelay struct {
	outbox    repository.OutboxRepository
	publisher messaging.Publisher
	opts      RelayOptions
	logger    *slog.Logger

	jobs   chan model.OutboxMessage
	wake   chan struct{}
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewOutboxRelay constructs the relay worker pool.
func NewOutboxRelay(outbox repository.OutboxRepository, publisher messaging.Publisher, opts RelayOptions, logger *slog.Logger) *OutboxRelay {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.Lease <= 0 {
		opts.Lease = 30 * time.Second
	}
	return &OutboxRelay{
		outbox:    outbox,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		jobs:      make(chan model.OutboxMessage, opts.BatchSize*opts.Workers),
		wake:      make(chan struct{}, 1),
	}
}

// Start launches background publishing.
func (r *OutboxRelay) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for i := 0; i < r.opts.Workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx)
	}

	r.wg.Add(1)
	go r.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (r *OutboxRelay) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

// Trigger asks the dispatcher to poll now instead of waiting for the next tick.
func (r *OutboxRelay) Trigger() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Flush publishes everything currently claimable on the calling goroutine and
// returns the number of messages published.
func (r *OutboxRelay) Flush(ctx context.Context) (int, error) {
	var published int
	for {
		batch, err := r.outbox.ClaimBatch(ctx, r.opts.BatchSize, r.opts.Lease)
		if err != nil {
			return published, err
		}
		if len(batch) == 0 {
			return published, nil
		}
		telemetry.RecordOutboxClaimed(len(batch))
		progressed := 0
		for _, msg := range batch {
			if r.publish(ctx, msg) {
				progressed++
			}
		}
		published += progressed
		if progressed == 0 {
			return published, nil
		}
	}
}

func (r *OutboxRelay) dispatch(ctx context.Context) {
	defer r.wg.Done()
	defer close(r.jobs)
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.fetchAndDispatch(ctx)
		case <-r.wake:
			r.fetchAndDispatch(ctx)
		}
	}
}

func (r *OutboxRelay) fetchAndDispatch(ctx context.Context) {
	batch, err := r.outbox.ClaimBatch(ctx, r.opts.BatchSize, r.opts.Lease)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("claim outbox batch failed", slog.String("error", err.Error()))
		}
		return
	}
	if len(batch) > 0 {
		telemetry.RecordOutboxClaimed(len(batch))
	}
	for _, msg := range batch {
		select {
		case <-ctx.Done():
			return
		case r.jobs <- msg:
		}
	}
}

func (r *OutboxRelay) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-r.jobs:
			if !ok {
				return
			}
			r.publish(ctx, msg)
		}
	}
}

// publish reports whether msg reached the broker. Failed messages stay in the
// outbox and are claimed again once their lease expires.
func (r *OutboxRelay) publish(ctx context.Context, msg model.OutboxMessage) bool {
	msgCtx := messaging.ExtractContext(ctx, msg.Headers)

	err := r.publisher.Publish(msgCtx, messaging.Message{
		Topic:   msg.Topic,
		Key:     msg.Key,
		Value:   msg.Payload,
		Headers: msg.Headers,
	})
	if err != nil {
		r.logger.WarnContext(msgCtx, "publish outbox message failed",
			slog.Int64("id", msg.ID),
			slog.String("topic", msg.Topic),
			slog.Int("attempts", msg.Attempts+1),
			slog.String("error", err.Error()),
		)
		if markErr := r.outbox.MarkFailed(ctx, msg.ID, err); markErr != nil {
			r.logger.Error("mark outbox message failed", slog.Int64("id", msg.ID), slog.String("error", markErr.Error()))
		}
		return false
	}

	if err := r.outbox.MarkPublished(ctx, msg.ID); err != nil {
		// the message will be published again after the lease; consumers deduplicate
		r.logger.Error("mark outbox message published failed", slog.Int64("id", msg.ID), slog.String("error", err.Error()))
		return true
	}
	r.logger.DebugContext(msgCtx, "outbox message published",
		slog.Int64("id", msg.ID), slog.String("topic", msg.Topic), slog.String("event", msg.EventID))
	return true
}
