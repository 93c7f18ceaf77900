package transport

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/tracewire/tracewire/propagation"
	"github.com/tracewire/tracewire/trace"
)

// Options is the configuration surface consumed by ClientHandler.
type Options struct {
	// ServerName is a statically configured name for the remote service,
	// used as the endpoint service name when the adapter cannot supply
	// one. Empty means unset.
	ServerName string
}

// ClientHandler orchestrates the span lifecycle around one outbound call:
// HandleSend before the call goes on the wire, HandleReceive exactly once
// after it completes. Safe for concurrent use; each call owns its own
// span.
type ClientHandler[Req any, Resp comparable] struct {
	tracer     *trace.Tracer
	adapter    RequestAdapter[Req, Resp]
	responses  ResponseAdapter[Resp]
	serverName string
}

// NewClientHandler creates a handler over the given adapters.
func NewClientHandler[Req any, Resp comparable](
	tracer *trace.Tracer,
	adapter RequestAdapter[Req, Resp],
	responses ResponseAdapter[Resp],
	opts Options,
) *ClientHandler[Req, Resp] {
	return &ClientHandler[Req, Resp]{
		tracer:     tracer,
		adapter:    adapter,
		responses:  responses,
		serverName: opts.ServerName,
	}
}

// Inflight is the typed handle for a call between HandleSend and
// HandleReceive. It is one-shot: only the first HandleReceive consumes
// it, which is what guarantees the span finishes at most once.
type Inflight struct {
	span *trace.Span
	done atomic.Bool
}

// Span returns the underlying span. Callers may add tags to a sampled
// span while the call is in flight; they must not finish it themselves.
func (in *Inflight) Span() *trace.Span { return in.span }

// Context returns ctx extended with this call's trace context, so work
// performed downstream of the call parents onto this span.
func (in *Inflight) Context(ctx context.Context) context.Context {
	return trace.ContextWithSpanContext(ctx, in.span.Context())
}

// HandleSend starts the client span for a call whose carrier is the
// request itself. Call it before the request goes on the wire.
//
// Trace context is injected even when the span is unsampled; downstream
// services must still see propagation headers. An injection error is
// returned immediately (broken propagation silently breaks the trace)
// and the allocated span is discarded unrecorded.
func (h *ClientHandler[Req, Resp]) HandleSend(ctx context.Context, injector propagation.Injector, req Req) (*Inflight, error) {
	return h.HandleSendCarrier(ctx, injector, h.adapter.Carrier(req), req)
}

// HandleSendCarrier is HandleSend for the case where trace data rides on
// a carrier distinct from the request.
func (h *ClientHandler[Req, Resp]) HandleSendCarrier(ctx context.Context, injector propagation.Injector, carrier propagation.TextMapCarrier, req Req) (*Inflight, error) {
	span := h.tracer.NextSpan(ctx)

	if err := injector.Inject(span.Context(), carrier); err != nil {
		span.Abandon()
		return nil, fmt.Errorf("transport: inject trace context: %w", err)
	}
	if span.IsNoop() {
		return &Inflight{span: span}, nil
	}

	// Naming, tagging and endpoint resolution all happen before the
	// start timestamp so the recorded duration covers only the
	// network-visible part of the call. An adapter panic here must not
	// leak a span that can never be finished.
	defer func() {
		if r := recover(); r != nil {
			span.Abandon()
			panic(r)
		}
	}()

	span.SetKind(trace.KindClient)
	span.SetName(h.adapter.SpanName(req))
	h.adapter.RequestTags(req, span)
	ep, resolved := h.adapter.RemoteEndpoint(req)
	if ep, ok := resolveEndpoint(ep, resolved, h.serverName); ok {
		span.SetRemoteEndpoint(ep)
	}
	span.Start()

	return &Inflight{span: span}, nil
}

// HandleReceive finishes the client span after tagging it according to
// the response or error. Call it exactly once when the call completes;
// later calls on the same Inflight are no-ops, and a nil Inflight (from
// a failed HandleSend) is tolerated.
//
// resp and err are inspected independently and may both be absent, which
// simply finishes the span with no outcome tags. When both are present
// the error description wins as the failure signal (a transport error on
// a partially received response). The span is finished even if an
// adapter panics while tagging; the panic then propagates so
// instrumentation bugs never mask, and are never masked by, the call's
// own outcome.
func (h *ClientHandler[Req, Resp]) HandleReceive(resp Resp, err error, in *Inflight) {
	if in == nil || !in.done.CompareAndSwap(false, true) {
		return
	}
	span := in.span
	if span.IsNoop() {
		span.Finish()
		return
	}

	defer span.Finish()

	var zero Resp
	hasResp := resp != zero

	if hasResp || err != nil {
		if desc := h.adapter.ErrorDescription(resp, err); desc != "" {
			span.SetTag(trace.TagError, desc)
		}
	}
	if hasResp && h.responses != nil {
		h.responses.ResponseTags(resp, span)
	}
}
