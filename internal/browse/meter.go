package browse

import "sync"

// Meter holds the running traffic totals of a run. Only the Fetcher
// mutates it; reporting reads snapshots.
type Meter struct {
	mu    sync.Mutex
	bytes int64
	good  int64
	bad   int64
}

// MeterSnapshot is a point-in-time copy of a Meter.
type MeterSnapshot struct {
	// Bytes is the cumulative size of response bodies read.
	Bytes int64 `json:"bytes"`

	// Good counts HTTP 200 responses.
	Good int64 `json:"good"`

	// Bad counts responses with any other status.
	Bad int64 `json:"bad"`
}

// Requests returns the number of HTTP responses counted.
func (s MeterSnapshot) Requests() int64 {
	return s.Good + s.Bad
}

// record adds one response of size n with the given status.
func (m *Meter) record(status int, n int64) MeterSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bytes += n
	if status == statusOK {
		m.good++
	} else {
		m.bad++
	}
	return MeterSnapshot{Bytes: m.bytes, Good: m.good, Bad: m.bad}
}

// Snapshot returns the current totals.
func (m *Meter) Snapshot() MeterSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MeterSnapshot{Bytes: m.bytes, Good: m.good, Bad: m.bad}
}
