// internal/server/timeouts.go
//
// HTTP server construction with timeouts.
//
//   - ReadHeaderTimeout – abort slow-loris headers (10 s)
//   - IdleTimeout       – close keep-alives on idle clients (60 s)
//
// There is deliberately no WriteTimeout: a lookup is bounded only by
// its git subprocess, and cutting a hung one off here would also cut
// off every legitimately slow clone of a large repository.
package server

import (
	"net/http"
	"time"
)

// NewHTTPServer constructs an *http.Server with the shared defaults.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
