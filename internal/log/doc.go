// Package log provides logging for trafficgen, built on top of the
// standard slog package.
//
// The RedactingHandler wraps any slog.Handler and masks values that should
// not end up in logs that get shared:
//   - Attributes whose key names a credential (cookie, authorization, token)
//   - Values shaped like credentials (bearer tokens, JWTs, basic auth)
//   - URL userinfo and credential-bearing query parameters, so that
//     "https://user:pw@host/?token=x&page=2" is logged as
//     "https://***@host/?page=2&token=***"
//
// Browsed URLs come from arbitrary pages and regularly embed session ids
// or signed tokens in their query strings.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("fetching page", "url", pageURL)
//	slog.SetDefault(logger)
package log
