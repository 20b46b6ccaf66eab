package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/shopflow/choreography/internal/config"
	"github.com/shopflow/choreography/internal/domain/repository"
	"github.com/shopflow/choreography/internal/messaging"
	"github.com/shopflow/choreography/internal/usecase"
	"github.com/shopflow/choreography/internal/worker"
)

// Module wires the HTTP server, the event subscriber and lifecycle hooks shared by every service.
var Module = fx.Options(
	fx.Provide(
		newHTTPServer,
		newMessageRouter,
	),
	fx.Invoke(registerLifecycle),
)

// RelayModule adds the outbox relay for services that emit events.
var RelayModule = fx.Provide(
	newOutboxRelay,
	func(r *worker.OutboxRelay) usecase.RelayTrigger { return r },
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type relayParams struct {
	fx.In

	Outbox    repository.OutboxRepository
	Publisher messaging.Publisher
	Config    *config.Config
	Logger    *slog.Logger
}

func newOutboxRelay(p relayParams) *worker.OutboxRelay {
	return worker.NewOutboxRelay(p.Outbox, p.Publisher, worker.RelayOptions{
		PollInterval: p.Config.OutboxPollInterval,
		BatchSize:    p.Config.OutboxBatchSize,
		Workers:      p.Config.OutboxWorkers,
		Lease:        p.Config.OutboxLease,
	}, p.Logger)
}

type routerParams struct {
	fx.In

	Subscription usecase.Subscription
	Publisher    messaging.Publisher
	Config       *config.Config
	Logger       *slog.Logger
}

func newMessageRouter(p routerParams) *messaging.Router {
	router := messaging.NewRouter(
		messaging.Tracing(),
		messaging.Retry(messaging.RetryPolicy{
			MaxAttempts: p.Config.HandlerMaxAttempts,
			Backoff:     p.Config.HandlerRetryBackoff,
			DeadLetter:  p.Publisher,
			Logger:      p.Logger,
		}),
	)
	p.Subscription(router)
	return router
}

type lifecycleParams struct {
	fx.In

	Ctx        context.Context
	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Config     *config.Config
	Server     *http.Server
	Router     *messaging.Router
	Consumer   messaging.Consumer
	Publisher  messaging.Publisher
	Relay      *worker.OutboxRelay `optional:"true"`
}

func registerLifecycle(p lifecycleParams) {
	var (
		stopConsumer context.CancelFunc
		consumed     = make(chan struct{})
	)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			p.Logger.Info("starting service",
				slog.String("service", p.Config.ServiceName),
				slog.String("addr", p.Server.Addr),
				slog.Any("topics", p.Router.Topics()),
			)

			// Background loops outlive OnStart, so they run on the application context.
			if p.Relay != nil {
				p.Relay.Start(p.Ctx)
			}

			var consumeCtx context.Context
			consumeCtx, stopConsumer = context.WithCancel(p.Ctx)
			go func() {
				defer close(consumed)
				err := p.Consumer.Consume(consumeCtx, p.Router)
				if err != nil && !errors.Is(err, context.Canceled) {
					p.Logger.Error("consumer terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()

			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			var errs []error
			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs = append(errs, err)
			}

			if stopConsumer != nil {
				stopConsumer()
				select {
				case <-consumed:
				case <-shutdownCtx.Done():
					errs = append(errs, shutdownCtx.Err())
				}
			}
			if err := p.Consumer.Close(); err != nil {
				errs = append(errs, err)
			}

			if p.Relay != nil {
				p.Relay.Stop()
			}
			if err := p.Publisher.Close(); err != nil {
				errs = append(errs, err)
			}

			p.Logger.Info("service stopped", slog.String("service", p.Config.ServiceName))
			return errors.Join(errs...)
		},
	})
}
