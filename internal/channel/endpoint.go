package channel

import (
	"net"
	"net/url"
	"strings"
)

// ResolveEndpoint picks the backend origin to dial.
//
// The configured URL wins, with one exception: a loopback backend configured
// while the client itself is served from a non-loopback origin is unreachable
// from the client's network position, so traffic is routed through the serving
// origin instead (the same-origin proxy forwards it). No configuration at all
// also falls back to the serving origin. A configured URL that does not parse
// is used verbatim as a last resort.
func ResolveEndpoint(configured, pageOrigin string) string {
	if configured == "" {
		return pageOrigin
	}
	u, err := url.Parse(configured)
	if err != nil || u.Host == "" {
		return configured
	}
	if isLoopbackHost(u.Hostname()) && !originIsLoopback(pageOrigin) {
		return pageOrigin
	}
	return configured
}

func originIsLoopback(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return isLoopbackHost(u.Hostname())
}

func isLoopbackHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

// websocketURL rewrites an http(s) origin to its ws(s) equivalent and appends
// the websocket path.
func websocketURL(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String()
}
