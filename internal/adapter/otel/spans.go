package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "openlease"

// StartTransitionSpan starts a span for a lifecycle state transition.
func StartTransitionSpan(ctx context.Context, entity, entityID, target string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "transition",
		trace.WithAttributes(
			attribute.String("entity.kind", entity),
			attribute.String("entity.id", entityID),
			attribute.String("transition.target", target),
		),
	)
}
