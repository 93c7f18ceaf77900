package trace

import "context"

// SpanContext identifies a span's position within a trace. Immutable once
// created; produced by the Tracer and consumed by propagation injectors.
type SpanContext struct {
	TraceID  string `json:"trace_id"`
	SpanID   string `json:"span_id"`
	ParentID string `json:"parent_id,omitempty"`
	Sampled  bool   `json:"sampled"`
}

// Valid reports whether the context carries both trace and span IDs.
func (sc SpanContext) Valid() bool {
	return sc.TraceID != "" && sc.SpanID != ""
}

// contextKey is a private type so ambient trace context cannot collide
// with other context values.
type contextKey struct{}

// ContextWithSpanContext returns a context carrying sc as the ambient
// trace context. Spans allocated from the returned context become
// children of sc.
func ContextWithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	return context.WithValue(ctx, contextKey{}, sc)
}

// SpanContextFromContext returns the ambient trace context, or a zero
// SpanContext when none is present. The ambient context is read once per
// span allocation and never mutated, so concurrent calls are safe.
func SpanContextFromContext(ctx context.Context) SpanContext {
	if ctx == nil {
		return SpanContext{}
	}
	sc, _ := ctx.Value(contextKey{}).(SpanContext)
	return sc
}
