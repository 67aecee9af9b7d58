package browse

import "time"

// Observer receives a trace of browsing activity. The console uses it for
// the verbose per-request output. Implementations must not block.
type Observer interface {
	// SessionStarted is called when the Driver picks a root URL and depth.
	SessionStarted(root string, depth, roots int)

	// Visiting is called before each hop is fetched.
	Visiting(url string, depth int)

	// Fetched is called for every HTTP response with the updated totals.
	Fetched(url string, status int, size int64, totals MeterSnapshot)

	// FetchFailed is called when a request fails at the transport level.
	FetchFailed(url string, err error, cooldown time.Duration)

	// RateLimited is called after a 429 raised the pause range.
	RateLimited(url string, minWait, maxWait time.Duration)

	// Scraped is called with the number of followable links on a page.
	Scraped(url string, links int)

	// Blacklisted is called when a URL is added to the blacklist.
	Blacklisted(url string, reason EndReason)

	// Pausing is called before the pause preceding the next hop.
	Pausing(d time.Duration)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) SessionStarted(string, int, int)                  {}
func (NopObserver) Visiting(string, int)                             {}
func (NopObserver) Fetched(string, int, int64, MeterSnapshot)        {}
func (NopObserver) FetchFailed(string, error, time.Duration)         {}
func (NopObserver) RateLimited(string, time.Duration, time.Duration) {}
func (NopObserver) Scraped(string, int)                              {}
func (NopObserver) Blacklisted(string, EndReason)                    {}
func (NopObserver) Pausing(time.Duration)                            {}
