package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Depth, wait and blacklist defaults follow the settings the traffic
// generator has always shipped with; request settings follow what a
// browser user on a normal connection would tolerate.
const (
	// DefaultMinDepth is the lower bound (inclusive) of the per-session depth draw.
	DefaultMinDepth = 3

	// DefaultMaxDepth is the upper bound (exclusive) of the per-session depth draw.
	DefaultMaxDepth = 10

	// DefaultMinWait is the lower bound (inclusive) of the pause between hops.
	DefaultMinWait = 5 * time.Second

	// DefaultMaxWait is the upper bound (exclusive) of the pause between hops.
	DefaultMaxWait = 10 * time.Second

	// DefaultTimeout bounds a single HTTP request including reading the body.
	DefaultTimeout = 5 * time.Second

	// DefaultNetworkCooldown is how long the fetcher pauses after a transport
	// failure. It keeps a dead network from turning the driver into a busy loop.
	DefaultNetworkCooldown = 30 * time.Second

	// DefaultBackoffStep is added to both wait bounds on every 429 response.
	DefaultBackoffStep = 10 * time.Second

	// DefaultMaxBodySize limits the response body bytes read per request.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultStatsInterval is how often the traffic meter is logged.
	DefaultStatsInterval = time.Minute

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultUserAgent mimics a current desktop Chrome on Windows.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// AppName is the application name used for XDG directory paths.
	AppName = "trafficgen"
)

// DefaultBlacklist lists substrings of links that are never followed:
// link shorteners, share dialogs, account pages and static assets.
var DefaultBlacklist = []string{
	"https://t.co",
	"t.umblr.com",
	"messenger.com",
	"itunes.apple.com",
	"l.facebook.com",
	"bit.ly",
	"mediawiki",
	".css",
	".ico",
	".xml",
	"intent/tweet",
	"twitter.com/share",
	"signup",
	"login",
	"dialog/feed?",
	".png",
	".jpg",
	".json",
	".svg",
	".gif",
	"zendesk",
	"clickserve",
}

// Config holds all configuration options for trafficgen.
// It is loaded once at startup from a YAML file and passed through the
// application rather than kept in global state. The wait bounds here are
// the starting values; the live, backed-off bounds belong to the browse state.
type Config struct {
	// RootURLs are the starting points of browsing sessions.
	RootURLs []string `yaml:"root_urls"`

	// MinDepth and MaxDepth bound the per-session depth, drawn from [MinDepth, MaxDepth).
	MinDepth int `yaml:"min_depth"`
	MaxDepth int `yaml:"max_depth"`

	// MinWait and MaxWait bound the pause between hops, drawn from [MinWait, MaxWait).
	MinWait Duration `yaml:"min_wait"`
	MaxWait Duration `yaml:"max_wait"`

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string `yaml:"user_agent"`

	// Blacklist contains substrings; links containing any of them are not followed.
	Blacklist []string `yaml:"blacklist"`

	// Debug enables verbose trace output for every fetch.
	Debug bool `yaml:"debug"`

	// Timeout bounds each HTTP request.
	Timeout Duration `yaml:"timeout"`

	// NetworkCooldown is the pause after a transport failure.
	NetworkCooldown Duration `yaml:"network_cooldown"`

	// BackoffStep is added to both wait bounds whenever a 429 is received.
	BackoffStep Duration `yaml:"backoff_step"`

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64 `yaml:"max_body_size"`

	// RequestsPerMinute caps the request rate. 0 disables the cap.
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// Headers are extra HTTP headers added to every request.
	Headers map[string]string `yaml:"headers"`

	// StatsInterval is how often the traffic meter is logged. 0 disables it.
	StatsInterval Duration `yaml:"stats_interval"`

	// Egress selects how requests leave the host.
	Egress Egress `yaml:"egress"`

	// History configures the run ledger.
	History History `yaml:"history"`
}

// Egress configures optional proxy routing. With both fields unset requests
// go out directly.
type Egress struct {
	// Proxy is a SOCKS5 proxy address in "host:port" format, typically an
	// existing Tor daemon (127.0.0.1:9050).
	Proxy string `yaml:"proxy"`

	// EmbeddedTor starts a private Tor daemon and routes traffic through it.
	EmbeddedTor bool `yaml:"embedded_tor"`

	// TorStartupTimeout is the maximum time to wait for the embedded daemon.
	TorStartupTimeout Duration `yaml:"tor_startup_timeout"`
}

// History configures the SQLite run ledger. Only run totals are stored,
// never visited pages.
type History struct {
	// Enabled turns on recording of completed runs.
	Enabled bool `yaml:"enabled"`

	// Dir is the directory holding the database. Defaults to XDGDataDir().
	Dir string `yaml:"dir"`
}

// NewConfig creates a new Config with default values.
// Root URLs have no sensible default and are left empty.
func NewConfig() *Config {
	return &Config{
		MinDepth:        DefaultMinDepth,
		MaxDepth:        DefaultMaxDepth,
		MinWait:         DurationFrom(DefaultMinWait),
		MaxWait:         DurationFrom(DefaultMaxWait),
		UserAgent:       DefaultUserAgent,
		Blacklist:       append([]string(nil), DefaultBlacklist...),
		Timeout:         DurationFrom(DefaultTimeout),
		NetworkCooldown: DurationFrom(DefaultNetworkCooldown),
		BackoffStep:     DurationFrom(DefaultBackoffStep),
		MaxBodySize:     DefaultMaxBodySize,
		StatsInterval:   DurationFrom(DefaultStatsInterval),
		Egress: Egress{
			TorStartupTimeout: DurationFrom(DefaultTorStartupTimeout),
		},
	}
}

// XDGDataDir returns the XDG data directory for trafficgen.
// On Linux: ~/.local/share/trafficgen
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for trafficgen.
// On Linux: ~/.config/trafficgen
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// HistoryDir returns the directory of the run ledger, falling back to the
// XDG data directory.
func (c *Config) HistoryDir() string {
	if c.History.Dir != "" {
		return c.History.Dir
	}
	return XDGDataDir()
}

// Validate checks if the configuration is valid.
// It returns the first problem found, wrapped around one of the sentinel
// errors in errors.go so callers can use errors.Is().
func (c *Config) Validate() error {
	if len(c.RootURLs) == 0 {
		return ErrNoRootURL
	}
	for _, raw := range c.RootURLs {
		if !isHTTPURL(raw) {
			return fmt.Errorf("%w: %q", ErrInvalidRootURL, raw)
		}
	}

	if c.MinDepth < 0 || c.MinDepth >= c.MaxDepth {
		return fmt.Errorf("%w (got min_depth=%d, max_depth=%d)", ErrInvalidDepthRange, c.MinDepth, c.MaxDepth)
	}

	if c.MinWait.Duration < 0 || c.MinWait.Duration >= c.MaxWait.Duration {
		return fmt.Errorf("%w (got min_wait=%s, max_wait=%s)", ErrInvalidWaitRange, c.MinWait, c.MaxWait)
	}

	if strings.TrimSpace(c.UserAgent) == "" {
		return ErrEmptyUserAgent
	}

	if c.Timeout.Duration <= 0 {
		return ErrInvalidTimeout
	}

	if c.NetworkCooldown.Duration < 0 {
		return ErrInvalidCooldown
	}

	if c.BackoffStep.Duration < 0 {
		return ErrInvalidBackoffStep
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.RequestsPerMinute < 0 {
		return ErrInvalidRequestRate
	}

	if c.StatsInterval.Duration < 0 {
		return ErrInvalidStatsInterval
	}

	if c.Egress.Proxy != "" && c.Egress.EmbeddedTor {
		return ErrConflictingEgress
	}

	return nil
}

// EffectiveMaxBodySize returns MaxBodySize, or the default when it is 0.
func (c *Config) EffectiveMaxBodySize() int64 {
	if c.MaxBodySize == 0 {
		return DefaultMaxBodySize
	}
	return c.MaxBodySize
}

// isHTTPURL reports whether raw is an absolute http or https URL with a host.
func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}
