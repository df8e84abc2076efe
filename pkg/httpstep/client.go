// Package httpstep is a reference Step adapter: it turns an HTTP
// request description into a sim.Step whose RequestFunc issues the
// request, validates the response, and extracts variables for the
// next step's context. It is an external collaborator in the sense of
// spec.md §6 — the engine in pkg/sim knows nothing about HTTP.
package httpstep

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// ClientOptions configures the HTTP client shared by every step built
// from the same configuration file.
type ClientOptions struct {
	Insecure          bool
	DisableKeepAlives bool
	MaxConnsPerHost   int
	HTTP2             bool
	Timeout           time.Duration
}

// NewClient builds an *http.Client per opts, choosing between a
// pooled HTTP/1.1 transport and an HTTP/2 transport.
func NewClient(opts ClientOptions) *http.Client {
	tlsConfig := &tls.Config{InsecureSkipVerify: opts.Insecure}

	if opts.HTTP2 {
		return &http.Client{
			Timeout: opts.Timeout,
			Transport: &http2.Transport{
				TLSClientConfig: tlsConfig,
				AllowHTTP:       false,
				ReadIdleTimeout: 30 * time.Second,
				PingTimeout:     15 * time.Second,
			},
		}
	}

	maxConns := opts.MaxConnsPerHost
	if maxConns <= 0 {
		maxConns = 100
	}
	transport := &http.Transport{
		MaxIdleConns:        maxConns,
		MaxIdleConnsPerHost: maxConns,
		MaxConnsPerHost:     maxConns,
		DisableKeepAlives:   opts.DisableKeepAlives,
		TLSClientConfig:     tlsConfig,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
	}
}
