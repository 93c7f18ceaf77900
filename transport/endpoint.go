package transport

import "github.com/tracewire/tracewire/trace"

// resolveEndpoint decides the remote endpoint for a span from what the
// adapter could derive and the statically configured server name.
//
// Precedence: adapter-resolved network details always win; the static
// name is only a fallback for the service name, never an override. When
// the adapter resolved nothing and no static name is configured, no
// endpoint is attached at all, so spans never carry a misleading blank
// service name.
func resolveEndpoint(ep trace.Endpoint, resolved bool, serverName string) (trace.Endpoint, bool) {
	if !resolved {
		if serverName == "" {
			return trace.Endpoint{}, false
		}
		return trace.Endpoint{ServiceName: serverName}, true
	}
	if ep.ServiceName == "" {
		ep.ServiceName = serverName
	}
	return ep, true
}
