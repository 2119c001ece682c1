package http

import (
	"net"
	"net/http"
	"strings"
)

// UnknownClient is recorded when no address can be determined
const UnknownClient = "unknown"

// ClientIP returns the first X-Forwarded-For entry, else the remote host
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
		if first != "" {
			return first
		}
	}

	if r.RemoteAddr == "" {
		return UnknownClient
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
