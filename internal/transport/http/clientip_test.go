package http

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		remoteAddr string
		expected   string
	}{
		{name: "forwarded single", forwarded: "203.0.113.7", remoteAddr: "10.0.0.1:5000", expected: "203.0.113.7"},
		{name: "forwarded chain", forwarded: " 203.0.113.7 , 10.0.0.2", remoteAddr: "10.0.0.1:5000", expected: "203.0.113.7"},
		{name: "empty forwarded entry", forwarded: " ,10.0.0.2", remoteAddr: "10.0.0.1:5000", expected: "10.0.0.1"},
		{name: "remote addr", remoteAddr: "192.0.2.1:443", expected: "192.0.2.1"},
		{name: "ipv6 remote addr", remoteAddr: "[2001:db8::1]:8080", expected: "2001:db8::1"},
		{name: "remote addr without port", remoteAddr: "192.0.2.1", expected: "192.0.2.1"},
		{name: "nothing", remoteAddr: "", expected: UnknownClient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/x", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.expected, ClientIP(req))
		})
	}
}
