// Package propagation carries trace context across process boundaries.
//
// The transport core writes trace context onto an outgoing call through
// the Injector interface and reads it back through Extractor. Carriers
// are text maps; HeaderCarrier adapts http.Header and MapCarrier adapts a
// plain string map for transports with their own metadata types.
package propagation

import (
	"errors"
	"net/http"
	"net/textproto"

	"github.com/tracewire/tracewire/trace"
)

// ErrContextNotFound is returned by extractors when the carrier holds no
// trace context.
var ErrContextNotFound = errors.New("propagation: trace context not found")

// TextMapCarrier is the place trace context gets written to. It may be
// the outgoing request itself or a separate metadata object supplied by
// the caller.
type TextMapCarrier interface {
	Get(key string) string
	Set(key, value string)
	Keys() []string
}

// Injector writes trace context fields onto a carrier. Inject must not
// fail for a well-formed carrier; a returned error means propagation is
// broken and is surfaced to the caller rather than swallowed.
type Injector interface {
	Inject(sc trace.SpanContext, carrier TextMapCarrier) error
}

// Extractor reads trace context fields from a carrier.
type Extractor interface {
	Extract(carrier TextMapCarrier) (trace.SpanContext, error)
}

// HeaderCarrier adapts http.Header to the TextMapCarrier interface.
type HeaderCarrier http.Header

// Get returns the first value for key.
func (c HeaderCarrier) Get(key string) string {
	return http.Header(c).Get(key)
}

// Set replaces any existing values for key.
func (c HeaderCarrier) Set(key, value string) {
	http.Header(c).Set(key, value)
}

// Keys lists the keys present in the carrier.
func (c HeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// MapCarrier adapts a string map to the TextMapCarrier interface. Keys
// are canonicalized like HTTP headers so Get("traceparent") and
// Get("Traceparent") agree.
type MapCarrier map[string]string

// Get returns the value for key.
func (c MapCarrier) Get(key string) string {
	return c[textproto.CanonicalMIMEHeaderKey(key)]
}

// Set stores the value for key.
func (c MapCarrier) Set(key, value string) {
	c[textproto.CanonicalMIMEHeaderKey(key)] = value
}

// Keys lists the keys present in the carrier.
func (c MapCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
