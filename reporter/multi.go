package reporter

import "github.com/tracewire/tracewire/trace"

// Multi fans a span out to several reporters in order.
type Multi []trace.Reporter

// NewMulti combines reporters, skipping nils.
func NewMulti(reporters ...trace.Reporter) Multi {
	out := make(Multi, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// Report delivers the span to every reporter.
func (m Multi) Report(span *trace.Span) {
	for _, r := range m {
		r.Report(span)
	}
}
