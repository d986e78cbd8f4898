package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer used for application spans
const TracerName = "instantorder"

// Span attribute keys
const (
	SpanAttrProductID   = "product_id"
	SpanAttrProductName = "product_name"
	SpanAttrInvoiceID   = "invoice_id"
	SpanAttrInvoiceKind = "invoice_kind"
	SpanAttrDraftID     = "draft_id"
	SpanAttrQuantity    = "quantity"
	SpanAttrPages       = "pages"
	SpanAttrMerged      = "merged"
)

// StartServiceSpan starts an internal span named "<service>.<method>" on the
// global provider. The caller ends it.
func StartServiceSpan(ctx context.Context, service, method string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, service+"."+method, trace.WithSpanKind(trace.SpanKindInternal))
}

// SetAttributes adds alternating key/value pairs to span. Pairs with a
// non-string key are skipped.
func SetAttributes(span trace.Span, keyValues ...any) {
	if span == nil || !span.IsRecording() {
		return
	}
	span.SetAttributes(Attributes(keyValues...)...)
}

// Attributes converts alternating key/value pairs to attributes
func Attributes(keyValues ...any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		if key, ok := keyValues[i].(string); ok {
			attrs = append(attrs, attributeOf(attribute.Key(key), keyValues[i+1]))
		}
	}
	return attrs
}

// RecordError records err on span and marks it failed
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// GetTraceID returns the trace id of the span in ctx, or ""
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

func attributeOf(key attribute.Key, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return key.String(v)
	case bool:
		return key.Bool(v)
	case int:
		return key.Int(v)
	case int64:
		return key.Int64(v)
	case float64:
		return key.Float64(v)
	case fmt.Stringer:
		return key.String(v.String())
	}
	return key.String(fmt.Sprint(value))
}
