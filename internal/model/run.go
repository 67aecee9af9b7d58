package model

import "time"

// RunSummary holds the totals of one trafficgen run. It is printed on
// shutdown and stored in the run history. Visited URLs are never part of
// it.
type RunSummary struct {
	// ID is the history row id; 0 until the run is saved.
	ID int64 `json:"id,omitempty"`

	// StartedAt and EndedAt bound the run.
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`

	// Egress names the route traffic took, e.g. "direct".
	Egress string `json:"egress"`

	// RootURLs is the number of configured root URLs.
	RootURLs int `json:"root_urls"`

	// Sessions counts browsing sessions started.
	Sessions int64 `json:"sessions"`

	// Hops counts fetch attempts.
	Hops int64 `json:"hops"`

	// DeadEnds counts sessions that ended on a failed fetch or a page
	// without links.
	DeadEnds int64 `json:"dead_ends"`

	// Bytes is the total response body size read.
	Bytes int64 `json:"bytes"`

	// GoodRequests counts HTTP 200 responses.
	GoodRequests int64 `json:"good_requests"`

	// BadRequests counts other HTTP responses.
	BadRequests int64 `json:"bad_requests"`

	// BlacklistAdded counts URLs blacklisted during the run.
	BlacklistAdded int `json:"blacklist_added"`

	// FinalMinWait and FinalMaxWait are the pause bounds at the end of the
	// run, after any 429 backoff.
	FinalMinWait time.Duration `json:"final_min_wait"`
	FinalMaxWait time.Duration `json:"final_max_wait"`
}

// Duration returns how long the run lasted.
func (r *RunSummary) Duration() time.Duration {
	if r.EndedAt.Before(r.StartedAt) {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// Requests returns the number of HTTP responses received.
func (r *RunSummary) Requests() int64 {
	return r.GoodRequests + r.BadRequests
}

// SuccessRate returns the share of responses that were HTTP 200, in
// percent. It is 0 when there were no responses.
func (r *RunSummary) SuccessRate() float64 {
	total := r.Requests()
	if total == 0 {
		return 0
	}
	return float64(r.GoodRequests) * 100 / float64(total)
}
