package egress

import (
	"context"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// maxRedirects is how many redirects a request follows before the last
// response is returned as is.
const maxRedirects = 10

// dialFunc matches net.Dialer.DialContext.
type dialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// NewHTTPClient creates an HTTP client whose connections go through p.
// Cookies are kept per run like a browser would. A nil p yields a direct
// client.
func NewHTTPClient(p *Proxy, timeout time.Duration) *http.Client {
	if p == nil {
		return NewDirectHTTPClient(timeout)
	}
	// Each connection through Tor holds a circuit; keep the pool small.
	transport := newTransport(p.DialContext)
	transport.MaxIdleConns = 10
	transport.MaxIdleConnsPerHost = 2
	transport.IdleConnTimeout = 30 * time.Second
	return newClient(transport, timeout)
}

// NewDirectHTTPClient creates an HTTP client that connects directly.
func NewDirectHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	return newClient(newTransport(dialer.DialContext), timeout)
}

func newTransport(dial dialFunc) *http.Transport {
	return &http.Transport{
		DialContext:           dial,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
}

func newClient(transport http.RoundTripper, timeout time.Duration) *http.Client {
	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}
