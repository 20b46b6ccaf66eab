package telemetry

import (
	"context"
	"log/slog"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"

	"github.com/shopflow/choreography/internal/config"
)

// Module installs the tracer provider and flushes it on shutdown.
var Module = fx.Options(
	fx.Provide(newTracerProvider),
	fx.Invoke(registerLifecycle),
)

func newTracerProvider(cfg *config.Config) (*sdktrace.TracerProvider, error) {
	return SetupTracer(cfg.ServiceName)
}

func registerLifecycle(lc fx.Lifecycle, tp *sdktrace.TracerProvider, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := tp.Shutdown(ctx); err != nil {
				logger.Error("tracer shutdown failed", slog.Any("error", err))
				return err
			}
			return nil
		},
	})
}
