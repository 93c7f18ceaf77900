/*
Package transport instruments the client side of an outbound
request/response exchange, producing exactly one client span per logical
call and propagating trace context onto the outgoing call.

# Lifecycle

ClientHandler enforces a two-phase contract around a call:

	in, err := handler.HandleSend(ctx, injector, req)
	if err != nil {
		// propagation onto the carrier failed; nothing was recorded
	}
	resp, callErr := doCall(req)
	handler.HandleReceive(resp, callErr, in)

HandleSend allocates the span, always injects trace context onto the
carrier (even when the span is unsampled, so the trace is not broken
downstream), then names, tags and starts the span. HandleReceive applies
outcome tags and finishes the span exactly once; the Inflight handle is
one-shot, so a second HandleReceive is inert.

A call abandoned without HandleReceive leaks its span. That is a caller
obligation; the handler cannot observe a call that never reports back.

# Adapters

The handler is generic over the native request and response types and
reads them only through the RequestAdapter and ResponseAdapter
capability interfaces, so it is testable with trivial fakes and reusable
across HTTP clients, RPC stacks, and anything else with a
request/response shape.
*/
package transport
