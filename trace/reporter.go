package trace

// Reporter receives finished spans. Implementations must be safe for use
// from the tracer's collector goroutine and must not retain the span's
// tag map beyond the call if they mutate it.
//
// How spans are buffered, batched, or exported beyond this handoff is the
// reporter's concern, not the tracer's.
type Reporter interface {
	Report(span *Span)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(span *Span)

// Report calls f.
func (f ReporterFunc) Report(span *Span) { f(span) }

// Discard is a Reporter that drops every span.
var Discard Reporter = ReporterFunc(func(*Span) {})

// Stats observes tracer internals. The monitoring package provides a
// Prometheus-backed implementation; the zero tracer uses a no-op.
type Stats interface {
	SpanStarted(sampled bool)
	SpanFinished(kind Kind, durationSeconds float64)
	SpanDropped()
}

type nopStats struct{}

func (nopStats) SpanStarted(bool)           {}
func (nopStats) SpanFinished(Kind, float64) {}
func (nopStats) SpanDropped()               {}
