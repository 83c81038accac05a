// Package httpserver constructs the process's http.Server.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server with a bounded header read. Request-level timeouts
// live in the router middleware, so the server itself only guards against
// slow-header clients.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
