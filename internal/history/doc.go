// Package history keeps a ledger of completed trafficgen runs in SQLite
// (modernc.org/sqlite, no cgo).
//
// Only run totals are stored: duration, request counts, bytes and the
// final pause range. Visited URLs are never written.
package history
