package delegate

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func startDispatchSpan(ctx context.Context, req Request) (context.Context, trace.Span) {
	tracer := otel.Tracer("stitchql/delegate")
	ctx, span := tracer.Start(ctx, "delegate.dispatch")
	span.SetAttributes(
		attribute.String("stitchql.subschema", req.Subschema.Name()),
		attribute.String("stitchql.field", req.Field),
		attribute.String("stitchql.operation", string(req.Operation)),
	)
	return ctx, span
}

func finishDispatchSpan(span trace.Span, err error, errorCount int) {
	if span == nil {
		return
	}
	span.SetAttributes(attribute.Int("stitchql.error_count", errorCount))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
