package resolver

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"component-graphql/internal/component"
)

const tracerName = "component-graphql/resolver"

func startResolverSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

func finishResolverSpan(span trace.Span, err error, rows int) {
	if span == nil {
		return
	}
	outcome := "success"
	switch {
	case errors.Is(err, component.ErrNotFound):
		outcome = "not_found"
		err = nil
	case err != nil:
		outcome = "error"
	}
	span.SetAttributes(
		attribute.String("component.resolution.outcome", outcome),
		attribute.Int("component.resolution.rows", rows),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
