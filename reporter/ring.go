package reporter

import (
	"sync"

	"github.com/tracewire/tracewire/trace"
)

const defaultRingCapacity = 256

// Ring keeps the most recent finished spans in a bounded buffer. Used by
// the debug server to expose recent traces without unbounded memory.
// Safe for concurrent use.
type Ring struct {
	mu    sync.RWMutex
	spans []*trace.Span
	next  int
	full  bool
}

// NewRing creates a ring holding up to capacity spans. Non-positive
// capacity falls back to a default.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = defaultRingCapacity
	}
	return &Ring{spans: make([]*trace.Span, capacity)}
}

// Report stores the span, evicting the oldest when full.
func (r *Ring) Report(span *trace.Span) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.spans[r.next] = span
	r.next++
	if r.next == len(r.spans) {
		r.next = 0
		r.full = true
	}
}

// Recent returns the buffered spans, oldest first.
func (r *Ring) Recent() []*trace.Span {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.full {
		out := make([]*trace.Span, r.next)
		copy(out, r.spans[:r.next])
		return out
	}
	out := make([]*trace.Span, 0, len(r.spans))
	out = append(out, r.spans[r.next:]...)
	out = append(out, r.spans[:r.next]...)
	return out
}

// Len returns the number of buffered spans.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.full {
		return len(r.spans)
	}
	return r.next
}
