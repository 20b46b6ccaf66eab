package messaging

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/shopflow/choreography/internal/messaging"

// InjectHeaders returns the trace context of ctx as message headers.
func InjectHeaders(ctx context.Context) map[string]string {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier
}

// ExtractContext restores the trace context carried in headers.
func ExtractContext(ctx context.Context, headers map[string]string) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(headers))
}

// Tracing starts a consumer span linked to the producer's trace for every delivery.
func Tracing() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, msg Message) error {
			ctx = ExtractContext(ctx, msg.Headers)
			ctx, span := otel.Tracer(tracerName).Start(ctx, "consume "+msg.Topic,
				trace.WithSpanKind(trace.SpanKindConsumer),
				trace.WithAttributes(
					attribute.String("messaging.destination.name", msg.Topic),
					attribute.String("messaging.message.key", msg.Key),
				),
			)
			defer span.End()

			err := next(ctx, msg)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return err
		}
	}
}
