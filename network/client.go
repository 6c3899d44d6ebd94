// Package network provides a pre-configured, shared HTTP client for outbound requests.
package network

import (
	"net/http"
	"time"
)

// Client is the singleton HTTP client shared across the application.
// Outbound traffic is limited to the version check, so the pool is kept small.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: newTransport(),
}

// newTransport initializes a tuned http.Transport with conservative pool and timeout parameters.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 10
	t.MaxIdleConnsPerHost = 10
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	return t
}
