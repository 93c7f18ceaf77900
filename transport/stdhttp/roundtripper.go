package stdhttp

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tracewire/tracewire/propagation"
	"github.com/tracewire/tracewire/trace"
	"github.com/tracewire/tracewire/transport"
)

// Transport is an http.RoundTripper that traces every request through a
// ClientHandler. Tracing is fail-open: a malfunction in instrumentation
// never aborts or alters the underlying call.
type Transport struct {
	base       http.RoundTripper
	handler    *transport.ClientHandler[*http.Request, *http.Response]
	injector   propagation.Injector
	logger     *zap.Logger
	serverName string
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithBase sets the underlying RoundTripper. Defaults to
// http.DefaultTransport.
func WithBase(rt http.RoundTripper) TransportOption {
	return func(t *Transport) {
		if rt != nil {
			t.base = rt
		}
	}
}

// WithInjector sets the propagation injector. Defaults to TraceParent.
func WithInjector(in propagation.Injector) TransportOption {
	return func(t *Transport) {
		if in != nil {
			t.injector = in
		}
	}
}

// WithServerName statically names the remote service for endpoint
// resolution.
func WithServerName(name string) TransportOption {
	return func(t *Transport) { t.serverName = name }
}

// WithLogger sets the logger for fail-open diagnostics.
func WithLogger(l *zap.Logger) TransportOption {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTransport creates a tracing RoundTripper bound to tracer.
func NewTransport(tracer *trace.Tracer, opts ...TransportOption) *Transport {
	t := &Transport{
		base:     http.DefaultTransport,
		injector: propagation.TraceParent{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}

	adapter := Adapter{}
	t.handler = transport.NewClientHandler[*http.Request, *http.Response](
		tracer, adapter, adapter, transport.Options{ServerName: t.serverName},
	)

	return t
}

// RoundTrip issues the request through the base transport with a client
// span around it. The request is cloned before header injection, per the
// RoundTripper contract that requests must not be mutated.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if clone.Header == nil {
		clone.Header = make(http.Header)
	}

	in, err := t.handler.HandleSend(req.Context(), t.injector, clone)
	if err != nil {
		// Broken propagation is reported, not fatal: the call proceeds
		// untraced.
		t.logger.Warn("tracing disabled for request", zap.Error(err))
		return t.base.RoundTrip(clone)
	}

	resp, rerr := t.base.RoundTrip(clone)
	t.handler.HandleReceive(resp, rerr, in)
	return resp, rerr
}
