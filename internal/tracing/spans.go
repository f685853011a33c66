package tracing

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrPatientID   = "patient.id"
	AttrOperation   = "patient.operation"
	AttrRecordCount = "patient.count"
	AttrCacheHit    = "cache.hit"
	AttrSessionID   = "session.id"
	AttrErrorType   = "error.type"
)

// SpanPrefixPatients prefixes every registry operation span.
const SpanPrefixPatients = "patients."

// End closes span, recording err and marking the status.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// TraceID returns the hex trace id of the span active in ctx, or "" when
// there is none.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
