package transport

import (
	"github.com/tracewire/tracewire/propagation"
	"github.com/tracewire/tracewire/trace"
)

// RequestAdapter reads fields off a native request type on behalf of the
// handler. Implementations should be stateless; one adapter instance is
// shared across concurrent calls.
//
// Resp appears here only so ErrorDescription can inspect a response
// alongside a transport error.
type RequestAdapter[Req any, Resp comparable] interface {
	// SpanName returns a low-cardinality, human-readable name for the
	// call, for example the HTTP method.
	SpanName(req Req) string

	// RequestTags writes request-derived tags onto the span.
	RequestTags(req Req, span *trace.Span)

	// Carrier views the request itself as the place trace context is
	// written, for the common case where carrier and request coincide.
	Carrier(req Req) propagation.TextMapCarrier

	// RemoteEndpoint attempts to resolve the call's destination. ok
	// reports whether any endpoint data could be derived.
	RemoteEndpoint(req Req) (ep trace.Endpoint, ok bool)

	// ErrorDescription derives an error tag value from the response
	// and/or error of a completed call. resp may be the zero value and
	// err may be nil; both are inspected independently. An empty return
	// means no error tag.
	ErrorDescription(resp Resp, err error) string
}

// ResponseAdapter writes response-derived tags onto the span.
type ResponseAdapter[Resp comparable] interface {
	ResponseTags(resp Resp, span *trace.Span)
}
