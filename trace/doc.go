/*
Package trace provides the span data model and span factory for tracewire.

# Overview

A Span is a timed, tagged record of one observed operation. The Tracer
allocates spans bound to the ambient trace context carried in a
context.Context, decides sampling for new trace roots, and dispatches
finished spans to a pluggable Reporter through a buffered channel.

# Usage

	tracer := trace.New("checkout",
		trace.WithSampler(trace.NewRatioSampler(0.1)),
		trace.WithReporter(reporter),
	)
	defer tracer.Close()

	span := tracer.NextSpan(ctx)
	span.SetKind(trace.KindClient)
	span.SetName("GET")
	span.Start()
	// ... observed work ...
	span.Finish()

# Sampling

Sampling is decided once, when a trace root is allocated. Child spans
inherit the parent's sampled flag from the ambient SpanContext. An
unsampled call produces a no-op span: every mutator returns immediately
and Finish is a cheap early return, so disabling sampling adds negligible
cost. A no-op span still carries a valid SpanContext so propagation to
downstream services is never broken.

# Lifecycle

A span is finished at most once. After Finish the span is handed to the
Reporter and must not be mutated again. A span that is started but never
finished is leaked; finishing is the caller's obligation.
*/
package trace
