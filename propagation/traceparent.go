package propagation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tracewire/tracewire/trace"
)

// Header used for trace context propagation, following the W3C Trace
// Context layout: version-traceid-spanid-flags, for example
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//
// Bit 0 of the flags byte is the sampled flag. Unsampled calls still emit
// the header (flags 00) so a downstream service can continue the trace.
const TraceParentHeader = "traceparent"

const (
	traceParentVersion = "00"
	flagSampled        = "01"
	flagUnsampled      = "00"

	traceIDLen = 32
	spanIDLen  = 16
)

// TraceParent injects and extracts trace context using the traceparent
// header. The zero value is ready to use.
type TraceParent struct{}

var (
	_ Injector  = TraceParent{}
	_ Extractor = TraceParent{}
)

// Inject writes sc onto the carrier. Fails only when sc itself is
// malformed; a valid SpanContext always injects.
func (TraceParent) Inject(sc trace.SpanContext, carrier TextMapCarrier) error {
	if !sc.Valid() {
		return fmt.Errorf("propagation: refusing to inject invalid span context %q/%q", sc.TraceID, sc.SpanID)
	}
	flags := flagUnsampled
	if sc.Sampled {
		flags = flagSampled
	}
	carrier.Set(TraceParentHeader, strings.Join([]string{
		traceParentVersion, sc.TraceID, sc.SpanID, flags,
	}, "-"))
	return nil
}

// Extract reads trace context from the carrier. Returns
// ErrContextNotFound when the header is absent and a parse error when it
// is present but malformed.
func (TraceParent) Extract(carrier TextMapCarrier) (trace.SpanContext, error) {
	value := carrier.Get(TraceParentHeader)
	if value == "" {
		return trace.SpanContext{}, ErrContextNotFound
	}

	parts := strings.Split(value, "-")
	if len(parts) != 4 {
		return trace.SpanContext{}, fmt.Errorf("propagation: malformed traceparent %q", value)
	}
	version, traceID, spanID, flags := parts[0], parts[1], parts[2], parts[3]

	if len(version) != 2 || !isHex(version) {
		return trace.SpanContext{}, fmt.Errorf("propagation: bad traceparent version %q", version)
	}
	if len(traceID) != traceIDLen || !isHex(traceID) || traceID == strings.Repeat("0", traceIDLen) {
		return trace.SpanContext{}, fmt.Errorf("propagation: bad trace id %q", traceID)
	}
	if len(spanID) != spanIDLen || !isHex(spanID) || spanID == strings.Repeat("0", spanIDLen) {
		return trace.SpanContext{}, fmt.Errorf("propagation: bad span id %q", spanID)
	}
	flagBits, err := strconv.ParseUint(flags, 16, 8)
	if err != nil || len(flags) != 2 {
		return trace.SpanContext{}, fmt.Errorf("propagation: bad trace flags %q", flags)
	}

	return trace.SpanContext{
		TraceID: traceID,
		SpanID:  spanID,
		Sampled: flagBits&1 == 1,
	}, nil
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}
