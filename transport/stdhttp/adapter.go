// Package stdhttp instruments net/http clients with tracewire client
// spans. Adapter maps *http.Request / *http.Response onto the transport
// capability interfaces, and Transport wraps an http.RoundTripper so an
// ordinary http.Client emits one client span per request.
package stdhttp

import (
	"net"
	"net/http"
	"strconv"

	"github.com/tracewire/tracewire/propagation"
	"github.com/tracewire/tracewire/trace"
	"github.com/tracewire/tracewire/transport"
)

// Tag keys written by the adapter.
const (
	TagMethod     = "http.method"
	TagPath       = "http.path"
	TagHost       = "http.host"
	TagStatusCode = "http.status_code"
)

// Adapter reads span data off net/http requests and responses. Stateless;
// one instance serves all calls.
type Adapter struct{}

var (
	_ transport.RequestAdapter[*http.Request, *http.Response] = Adapter{}
	_ transport.ResponseAdapter[*http.Response]               = Adapter{}
)

// SpanName names the span after the request method, the conventional
// low-cardinality choice for HTTP clients.
func (Adapter) SpanName(req *http.Request) string {
	return req.Method
}

// RequestTags records method, path and host.
func (Adapter) RequestTags(req *http.Request, span *trace.Span) {
	span.SetTag(TagMethod, req.Method)
	if req.URL != nil {
		span.SetTag(TagPath, req.URL.Path)
	}
	if host := req.Host; host != "" {
		span.SetTag(TagHost, host)
	} else if req.URL != nil {
		span.SetTag(TagHost, req.URL.Host)
	}
}

// Carrier views the request headers as the propagation carrier.
func (Adapter) Carrier(req *http.Request) propagation.TextMapCarrier {
	return propagation.HeaderCarrier(req.Header)
}

// RemoteEndpoint derives the destination from the request URL. The
// service name is left empty; the handler's static server name fills it
// in when configured.
func (Adapter) RemoteEndpoint(req *http.Request) (trace.Endpoint, bool) {
	if req.URL == nil || req.URL.Host == "" {
		return trace.Endpoint{}, false
	}

	host, portStr, err := net.SplitHostPort(req.URL.Host)
	if err != nil {
		host = req.URL.Host
		portStr = ""
	}
	port, _ := strconv.Atoi(portStr)
	if port == 0 {
		switch req.URL.Scheme {
		case "https":
			port = 443
		case "http":
			port = 80
		}
	}

	return trace.Endpoint{Host: host, Port: port}, true
}

// ErrorDescription reports the transport error when one occurred, and
// otherwise the status code of a failed response (>= 400). The error
// wins even when a partial response exists.
func (Adapter) ErrorDescription(resp *http.Response, err error) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil && resp.StatusCode >= http.StatusBadRequest {
		return strconv.Itoa(resp.StatusCode)
	}
	return ""
}

// ResponseTags records the response status code.
func (Adapter) ResponseTags(resp *http.Response, span *trace.Span) {
	span.SetTag(TagStatusCode, strconv.Itoa(resp.StatusCode))
}
