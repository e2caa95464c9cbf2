package machine

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// startAttemptSpan creates a span covering a single transition attempt.
// Uses the global tracer; a no-op provider makes this free when tracing
// is not initialized. The caller is responsible for calling span.End().
//
//nolint:spancheck // Span lifecycle managed by caller (factory pattern)
func startAttemptSpan(ctx context.Context, name, id string, seq int64) (context.Context, trace.Span) {
	tracer := otel.Tracer("amp-fsm")

	ctx, span := tracer.Start(ctx, "machine.attempt")
	span.SetAttributes(
		attribute.String("machine", name),
		attribute.String("machine_id", id),
		attribute.Int64("attempt", seq),
	)

	return ctx, span
}

func endAttemptSpanSuccess(span trace.Span) {
	span.SetAttributes(attribute.String("outcome", outcomeSuccess))
	span.SetStatus(codes.Ok, "transition applied")
}

func endAttemptSpanRejected(span trace.Span, kind ErrorKind) {
	span.SetAttributes(
		attribute.String("outcome", outcomeError),
		attribute.String("kind", string(kind)),
	)
	// Rejections are expected control flow, not span errors, so the
	// status stays Ok with the kind recorded as an attribute.
	span.SetStatus(codes.Ok, "transition rejected")
}
