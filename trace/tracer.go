package trace

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultBuffer = 1000

// Tracer allocates spans and dispatches finished ones to a Reporter.
// Safe for concurrent use by multiple goroutines; each call owns its own
// Span, so the only shared state is the ambient context read at
// allocation time.
type Tracer struct {
	service   string
	sampler   Sampler
	reporter  Reporter
	stats     Stats
	logger    *zap.Logger
	spans     chan *Span
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	now       func() time.Time
}

// Option configures a Tracer.
type Option func(*Tracer)

// WithSampler sets the sampling policy for new trace roots. Defaults to
// AlwaysSample.
func WithSampler(s Sampler) Option {
	return func(t *Tracer) {
		if s != nil {
			t.sampler = s
		}
	}
}

// WithReporter sets the sink for finished spans. Defaults to Discard.
func WithReporter(r Reporter) Option {
	return func(t *Tracer) {
		if r != nil {
			t.reporter = r
		}
	}
}

// WithLogger sets the logger used for tracer diagnostics such as dropped
// spans.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracer) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithStats registers a Stats observer.
func WithStats(s Stats) Option {
	return func(t *Tracer) {
		if s != nil {
			t.stats = s
		}
	}
}

// WithBuffer sets the finished-span buffer size. When the buffer is full
// further spans are dropped rather than blocking the traced call.
func WithBuffer(n int) Option {
	return func(t *Tracer) {
		if n > 0 {
			t.spans = make(chan *Span, n)
		}
	}
}

// New creates a tracer for the named local service and starts its
// collector goroutine. Call Close when the tracer is no longer needed.
func New(service string, opts ...Option) *Tracer {
	t := &Tracer{
		service:  service,
		sampler:  AlwaysSample(),
		reporter: Discard,
		stats:    nopStats{},
		logger:   zap.NewNop(),
		spans:    make(chan *Span, defaultBuffer),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	go t.collect()

	return t
}

// Service returns the local service name the tracer was created with.
func (t *Tracer) Service() string { return t.service }

// NextSpan allocates a new unstarted span bound to the ambient trace
// context in ctx: a child of the current trace when one is present, a new
// trace root otherwise. Sampling is decided here for roots; children
// inherit the parent's flag. Unsampled allocations return a no-op span
// that still carries a valid SpanContext for propagation.
//
// Pure allocation: no I/O, no timestamp is recorded until Start.
func (t *Tracer) NextSpan(ctx context.Context) *Span {
	var sc SpanContext
	parent := SpanContextFromContext(ctx)
	if parent.Valid() {
		sc = SpanContext{
			TraceID:  parent.TraceID,
			SpanID:   NewSpanID(),
			ParentID: parent.SpanID,
			Sampled:  parent.Sampled,
		}
	} else {
		sc = SpanContext{
			TraceID: NewTraceID(),
			SpanID:  NewSpanID(),
		}
		sc.Sampled = t.sampler.Sample(sc.TraceID)
	}

	t.stats.SpanStarted(sc.Sampled)

	if !sc.Sampled {
		return &Span{context: sc, noop: true, tracer: t}
	}
	return &Span{context: sc, tracer: t}
}

// Close stops the collector after draining buffered spans. Safe to call
// more than once. Spans finished after Close are dropped.
func (t *Tracer) Close() {
	t.closeOnce.Do(func() { close(t.quit) })
	<-t.done
}

// submit enqueues a finished span without blocking. A full pipeline
// drops spans rather than stall the traced call.
func (t *Tracer) submit(span *Span) {
	select {
	case t.spans <- span:
	default:
		t.stats.SpanDropped()
		t.logger.Warn("span buffer full, dropping span",
			zap.String("trace_id", span.context.TraceID),
			zap.String("span_id", span.context.SpanID),
		)
	}
}

func (t *Tracer) collect() {
	defer close(t.done)
	for {
		select {
		case span := <-t.spans:
			t.process(span)
		case <-t.quit:
			for {
				select {
				case span := <-t.spans:
					t.process(span)
				default:
					return
				}
			}
		}
	}
}

func (t *Tracer) process(span *Span) {
	t.stats.SpanFinished(span.kind, span.Duration().Seconds())
	t.reporter.Report(span)
}
