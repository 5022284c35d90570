// Package transport implements the HTTP-over-UNIX-socket control plane
// used to talk to a running Firecracker process's REST API.
package transport

import (
	"context"
	"net"
	"net/http"
	"time"
)

// NewUnixRoundTripper returns an http.RoundTripper that dials socketPath
// over a UNIX domain socket for every request, regardless of the URL's
// host component (the client always addresses "http://localhost/...").
func NewUnixRoundTripper(socketPath string) http.RoundTripper {
	return &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			d := net.Dialer{}
			return d.DialContext(ctx, "unix", socketPath)
		},
		IdleConnTimeout: 60 * time.Second,
	}
}
