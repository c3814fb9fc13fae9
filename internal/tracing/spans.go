package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Span names.
const (
	SpanLineCommand = "engine.linecmd"
	SpanUndoApply   = "undo.apply"
	SpanStorePrefix = "store."
)

// Attribute keys.
const (
	AttrCommandKind  = "command.kind"
	AttrCommandLine  = "command.line"
	AttrActionKind   = "undo.action"
	AttrItemCount    = "items.count"
	AttrItemID       = "item.id"
	AttrAppliedCount = "items.applied"
)

// OrNoop returns t, or a no-op tracer when t is nil.
func OrNoop(t trace.Tracer) trace.Tracer {
	if t == nil {
		return noop.NewTracerProvider().Tracer("noop")
	}
	return t
}

// Start opens a span with the given attributes.
func Start(ctx context.Context, t trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return OrNoop(t).Start(ctx, name, trace.WithAttributes(attrs...))
}

// End records err on span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
