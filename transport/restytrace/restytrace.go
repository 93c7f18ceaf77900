// Package restytrace instruments go-resty clients with tracewire client
// spans. Install registers request hooks on a resty.Client so every
// request (and every retry attempt) emits one client span with trace
// context propagated on its headers.
package restytrace

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/tracewire/tracewire/propagation"
	"github.com/tracewire/tracewire/trace"
	"github.com/tracewire/tracewire/transport"
)

type inflightKey struct{}

// Config controls the installed instrumentation.
type Config struct {
	// ServerName statically names the remote service for endpoint
	// resolution. Empty means unset.
	ServerName string

	// Injector overrides the propagation injector. Defaults to
	// TraceParent.
	Injector propagation.Injector

	// Logger receives fail-open diagnostics. Defaults to a no-op.
	Logger *zap.Logger
}

// Install wires tracing hooks onto client. Fail-open: instrumentation
// errors are logged and the request proceeds untraced.
func Install(client *resty.Client, tracer *trace.Tracer, cfg Config) {
	if cfg.Injector == nil {
		cfg.Injector = propagation.TraceParent{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	adapter := Adapter{}
	handler := transport.NewClientHandler[*resty.Request, *resty.Response](
		tracer, adapter, adapter, transport.Options{ServerName: cfg.ServerName},
	)

	client.OnBeforeRequest(func(c *resty.Client, r *resty.Request) error {
		// The hook runs before resty composes the final URL; resolve
		// relative URLs against the client base so the endpoint tag is
		// complete.
		if !strings.Contains(r.URL, "://") && c.BaseURL != "" {
			r.URL = strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(r.URL, "/")
		}

		in, err := handler.HandleSend(r.Context(), cfg.Injector, r)
		if err != nil {
			cfg.Logger.Warn("tracing disabled for request", zap.Error(err))
			return nil
		}
		r.SetContext(context.WithValue(in.Context(r.Context()), inflightKey{}, in))
		return nil
	})

	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		if in := inflightFrom(resp.Request); in != nil {
			handler.HandleReceive(resp, nil, in)
		}
		return nil
	})

	client.OnError(func(r *resty.Request, err error) {
		in := inflightFrom(r)
		if in == nil {
			return
		}
		var respErr *resty.ResponseError
		if errors.As(err, &respErr) {
			handler.HandleReceive(respErr.Response, respErr.Err, in)
			return
		}
		handler.HandleReceive(nil, err, in)
	})
}

func inflightFrom(r *resty.Request) *transport.Inflight {
	if r == nil {
		return nil
	}
	in, _ := r.Context().Value(inflightKey{}).(*transport.Inflight)
	return in
}

// Adapter reads span data off resty requests and responses.
type Adapter struct{}

var (
	_ transport.RequestAdapter[*resty.Request, *resty.Response] = Adapter{}
	_ transport.ResponseAdapter[*resty.Response]                = Adapter{}
)

// SpanName names the span after the request method.
func (Adapter) SpanName(r *resty.Request) string {
	return r.Method
}

// RequestTags records method, path and host.
func (Adapter) RequestTags(r *resty.Request, span *trace.Span) {
	span.SetTag("http.method", r.Method)
	if u, err := url.Parse(r.URL); err == nil {
		span.SetTag("http.path", u.Path)
		if u.Host != "" {
			span.SetTag("http.host", u.Host)
		}
	}
}

// Carrier views the request headers as the propagation carrier.
func (Adapter) Carrier(r *resty.Request) propagation.TextMapCarrier {
	return propagation.HeaderCarrier(r.Header)
}

// RemoteEndpoint derives the destination from the request URL.
func (Adapter) RemoteEndpoint(r *resty.Request) (trace.Endpoint, bool) {
	u, err := url.Parse(r.URL)
	if err != nil || u.Host == "" {
		return trace.Endpoint{}, false
	}

	port, _ := strconv.Atoi(u.Port())
	if port == 0 {
		switch u.Scheme {
		case "https":
			port = 443
		case "http":
			port = 80
		}
	}

	return trace.Endpoint{Host: u.Hostname(), Port: port}, true
}

// ErrorDescription reports the transport error when one occurred, and
// otherwise the status of a failed response. The error wins even when a
// partial response exists.
func (Adapter) ErrorDescription(resp *resty.Response, err error) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil && resp.IsError() {
		return strconv.Itoa(resp.StatusCode())
	}
	return ""
}

// ResponseTags records the response status code.
func (Adapter) ResponseTags(resp *resty.Response, span *trace.Span) {
	span.SetTag("http.status_code", strconv.Itoa(resp.StatusCode()))
}
