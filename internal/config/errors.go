package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration. Callers can
// match them with errors.Is().
var (
	// ErrNoRootURL is returned when the configuration lists no root URLs.
	ErrNoRootURL = errors.New("no root URL specified: root_urls must contain at least one URL")

	// ErrInvalidRootURL is returned when a root URL is not an absolute http(s) URL.
	ErrInvalidRootURL = errors.New("invalid root URL: must be an absolute http:// or https:// URL")

	// ErrInvalidDepthRange is returned when min_depth is negative or not below max_depth.
	// The depth of a session is drawn from [min_depth, max_depth), so the range
	// must contain at least one value.
	ErrInvalidDepthRange = errors.New("invalid depth range: require 0 <= min_depth < max_depth")

	// ErrInvalidWaitRange is returned when min_wait is negative or not below max_wait.
	ErrInvalidWaitRange = errors.New("invalid wait range: require 0 <= min_wait < max_wait")

	// ErrEmptyUserAgent is returned when the user agent is blank.
	ErrEmptyUserAgent = errors.New("invalid user agent: must not be empty")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidCooldown is returned when the network error cooldown is negative.
	ErrInvalidCooldown = errors.New("invalid network cooldown: must be non-negative")

	// ErrInvalidBackoffStep is returned when the rate limit backoff step is negative.
	ErrInvalidBackoffStep = errors.New("invalid backoff step: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to select the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidRequestRate is returned when requests_per_minute is negative.
	ErrInvalidRequestRate = errors.New("invalid requests per minute: must be non-negative")

	// ErrInvalidStatsInterval is returned when stats_interval is negative.
	ErrInvalidStatsInterval = errors.New("invalid stats interval: must be non-negative")

	// ErrConflictingEgress is returned when both an external proxy and the
	// embedded Tor daemon are requested.
	ErrConflictingEgress = errors.New("conflicting egress: egress.proxy and egress.embedded_tor cannot be used together")
)
