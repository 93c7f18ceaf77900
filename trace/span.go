package trace

import (
	"strconv"
	"sync/atomic"
	"time"
)

// Kind classifies the role a span plays in an exchange.
type Kind string

const (
	KindClient   Kind = "client"
	KindServer   Kind = "server"
	KindProducer Kind = "producer"
	KindConsumer Kind = "consumer"
)

// TagError is the tag key carrying an error description.
const TagError = "error"

// Endpoint identifies the remote side of a call.
type Endpoint struct {
	ServiceName string `json:"service_name,omitempty"`
	Host        string `json:"host,omitempty"`
	Port        int    `json:"port,omitempty"`
}

// Empty reports whether no field of the endpoint is set.
func (e Endpoint) Empty() bool {
	return e.ServiceName == "" && e.Host == "" && e.Port == 0
}

// String renders the endpoint for logs and tags.
func (e Endpoint) String() string {
	s := e.ServiceName
	if e.Host != "" {
		addr := e.Host
		if e.Port != 0 {
			addr += ":" + strconv.Itoa(e.Port)
		}
		if s != "" {
			s += " "
		}
		s += addr
	}
	return s
}

// Span is a mutable handle representing one observed operation.
//
// A span is owned by the call that created it until Finish; it is not safe
// for concurrent mutation. After Finish it belongs to the reporting
// pipeline and must not be touched again.
type Span struct {
	context  SpanContext
	kind     Kind
	name     string
	tags     map[string]string
	remote   *Endpoint
	start    time.Time
	end      time.Time
	noop     bool
	finished atomic.Bool
	tracer   *Tracer
}

// Context returns the span's trace context. Valid for no-op spans too.
func (s *Span) Context() SpanContext { return s.context }

// IsNoop reports whether this span was created unsampled. All mutators on
// a no-op span are inert.
func (s *Span) IsNoop() bool { return s.noop }

// SetKind sets the span kind.
func (s *Span) SetKind(k Kind) {
	if s.noop {
		return
	}
	s.kind = k
}

// SetName sets the span's operation name.
func (s *Span) SetName(name string) {
	if s.noop {
		return
	}
	s.name = name
}

// SetTag records a key/value tag, overwriting any previous value.
func (s *Span) SetTag(key, value string) {
	if s.noop {
		return
	}
	if s.tags == nil {
		s.tags = make(map[string]string)
	}
	s.tags[key] = value
}

// SetRemoteEndpoint attaches the resolved identity of the call's
// destination.
func (s *Span) SetRemoteEndpoint(e Endpoint) {
	if s.noop || e.Empty() {
		return
	}
	ep := e
	s.remote = &ep
}

// Start records the start timestamp. Pre-send naming and tagging happen
// before Start so the recorded duration covers only the network-visible
// part of the call.
func (s *Span) Start() {
	if s.noop {
		return
	}
	s.start = s.tracer.now()
}

// Finish records the end timestamp and hands the span to the reporting
// pipeline. Safe to call more than once; only the first call has effect.
// Finishing a no-op span is a cheap return.
func (s *Span) Finish() {
	if s.noop {
		return
	}
	if !s.finished.CompareAndSwap(false, true) {
		return
	}
	s.end = s.tracer.now()
	s.tracer.submit(s)
}

// Abandon marks the span finished without reporting it. For lifecycles
// aborted before the span ever started, such as a propagation failure
// during send; an unstarted span carries no timing worth exporting.
func (s *Span) Abandon() {
	if s.noop {
		return
	}
	s.finished.CompareAndSwap(false, true)
}

// Finished reports whether Finish has been called. Always true for no-op
// spans, which have nothing left to do.
func (s *Span) Finished() bool {
	if s.noop {
		return true
	}
	return s.finished.Load()
}

// Kind returns the span kind.
func (s *Span) Kind() Kind { return s.kind }

// Name returns the operation name.
func (s *Span) Name() string { return s.name }

// Tag returns the value recorded for key.
func (s *Span) Tag(key string) (string, bool) {
	v, ok := s.tags[key]
	return v, ok
}

// Tags returns the span's tags. The returned map is the span's own;
// readers in the reporting pipeline must not modify it.
func (s *Span) Tags() map[string]string { return s.tags }

// RemoteEndpoint returns the attached remote endpoint, or nil.
func (s *Span) RemoteEndpoint() *Endpoint { return s.remote }

// StartTime returns the recorded start timestamp.
func (s *Span) StartTime() time.Time { return s.start }

// EndTime returns the recorded end timestamp.
func (s *Span) EndTime() time.Time { return s.end }

// Duration returns the recorded span duration, or zero before Finish.
func (s *Span) Duration() time.Duration {
	if s.start.IsZero() || s.end.IsZero() {
		return 0
	}
	return s.end.Sub(s.start)
}
