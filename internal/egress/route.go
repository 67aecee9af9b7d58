package egress

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Settings selects the route. With Proxy empty and EmbeddedTor false
// requests go out directly.
type Settings struct {
	// Proxy is a SOCKS5 address in host:port format.
	Proxy string

	// EmbeddedTor starts a private Tor daemon.
	EmbeddedTor bool

	// TorStartupTimeout bounds the daemon bootstrap.
	TorStartupTimeout time.Duration

	// Timeout bounds each HTTP request.
	Timeout time.Duration
}

// Proxied reports whether the settings route through SOCKS5.
func (s Settings) Proxied() bool {
	return s.Proxy != "" || s.EmbeddedTor
}

// Route is the outbound path of a run.
type Route struct {
	// Client performs the run's requests.
	Client *http.Client

	// Description names the route for the banner, e.g. "direct".
	Description string

	tor *EmbeddedTor
}

// Open sets up the route described by s. A configured proxy must pass the
// SOCKS5 probe; the embedded daemon must bootstrap. Both failures are
// returned so the run does not start leaking traffic on the direct path.
func Open(ctx context.Context, s Settings, logger *slog.Logger) (*Route, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	switch {
	case s.EmbeddedTor:
		logger.Info("starting embedded Tor daemon", "timeout", s.TorStartupTimeout)
		tor := NewEmbeddedTor(WithStartupTimeout(s.TorStartupTimeout))
		if err := tor.Start(ctx); err != nil {
			return nil, err
		}
		p, err := tor.Proxy()
		if err != nil {
			_ = tor.Stop() //nolint:errcheck // best effort cleanup
			return nil, err
		}
		logger.Info("embedded Tor daemon ready", "socks", tor.SocksAddr())
		return &Route{
			Client:      NewHTTPClient(p, s.Timeout),
			Description: "embedded Tor (SOCKS5 " + p.Address() + ")",
			tor:         tor,
		}, nil

	case s.Proxy != "":
		p, err := NewProxy(s.Proxy)
		if err != nil {
			return nil, err
		}
		if status := p.CheckConnection(ctx); status != ProxyStatusOK {
			return nil, fmt.Errorf("%w: %s", status.Err(), s.Proxy)
		}
		logger.Debug("proxy reachable", "proxy", s.Proxy)
		return &Route{
			Client:      NewHTTPClient(p, s.Timeout),
			Description: "SOCKS5 " + p.Address(),
		}, nil

	default:
		return &Route{
			Client:      NewDirectHTTPClient(s.Timeout),
			Description: "direct",
		}, nil
	}
}

// Close stops the embedded daemon if the route started one.
func (r *Route) Close() error {
	if r == nil || r.tor == nil {
		return nil
	}
	return r.tor.Stop()
}
