package browse

import (
	"context"
	"log/slog"
	"math/rand/v2"
)

// EndReason tells how a browsing session ended.
type EndReason int

const (
	// EndDepthReached means the last hop was fetched at depth 0.
	EndDepthReached EndReason = iota
	// EndFetchFailed means a request got no response; the URL was blacklisted.
	EndFetchFailed
	// EndNoLinks means a page had no followable links; the URL was blacklisted.
	EndNoLinks
	// EndCancelled means the context was cancelled mid-session.
	EndCancelled
)

// String returns the reason in lower case words.
func (r EndReason) String() string {
	switch r {
	case EndDepthReached:
		return "depth reached"
	case EndFetchFailed:
		return "fetch failed"
	case EndNoLinks:
		return "no links"
	case EndCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Trace describes one session.
type Trace struct {
	// Start is the URL the session began at.
	Start string

	// Depth is the depth the session was started with.
	Depth int

	// Hops counts fetch attempts, including a failed last one.
	Hops int

	// Last is the last URL attempted.
	Last string

	// End is why the session stopped.
	End EndReason
}

// Engine walks from a URL to a random link, and from there on, until the
// requested depth is used up or a dead end is hit.
type Engine struct {
	fetcher  PageFetcher
	state    *State
	rng      *rand.Rand
	sleep    SleepFunc
	extract  func(body []byte, filter Filter) []string
	observer Observer
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRand sets the random source for pauses and link choice.
func WithRand(rng *rand.Rand) EngineOption {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// WithSleep replaces the pause between hops.
func WithSleep(s SleepFunc) EngineOption {
	return func(e *Engine) {
		if s != nil {
			e.sleep = s
		}
	}
}

// WithExtractor replaces ExtractLinks.
func WithExtractor(fn func(body []byte, filter Filter) []string) EngineOption {
	return func(e *Engine) {
		if fn != nil {
			e.extract = fn
		}
	}
}

// WithObserver sets the receiver of traversal events.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an Engine fetching through fetcher and sharing state
// with it.
func NewEngine(fetcher PageFetcher, state *State, opts ...EngineOption) *Engine {
	e := &Engine{
		fetcher:  fetcher,
		state:    state,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // traffic shaping, not security
		sleep:    sleepContext,
		extract:  ExtractLinks,
		observer: NopObserver{},
		logger:   slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Browse visits url and keeps following one random link per page until
// depth reaches 0. At depth 0 the page is fetched and nothing else
// happens. A URL that fails to load, or whose page has no followable
// links, is added to the blacklist and ends the session.
//
// Browse does not return errors; the Trace tells how far it got.
func (e *Engine) Browse(ctx context.Context, url string, depth int) Trace {
	trace := Trace{Start: url, Depth: depth}

	for {
		if ctx.Err() != nil {
			trace.End = EndCancelled
			return trace
		}

		trace.Hops++
		trace.Last = url
		e.observer.Visiting(url, depth)

		page, err := e.fetcher.Fetch(ctx, url)
		if depth <= 0 {
			trace.End = EndDepthReached
			if ctx.Err() != nil {
				trace.End = EndCancelled
			}
			return trace
		}
		if err != nil {
			if ctx.Err() != nil {
				trace.End = EndCancelled
				return trace
			}
			e.deadEnd(url, EndFetchFailed)
			trace.End = EndFetchFailed
			return trace
		}

		links := e.extract(page.Body, e.state.Blacklist)
		e.observer.Scraped(url, len(links))
		if len(links) == 0 {
			e.deadEnd(url, EndNoLinks)
			trace.End = EndNoLinks
			return trace
		}

		pause := e.state.Waits.Sample(e.rng)
		e.observer.Pausing(pause)
		if err := e.sleep(ctx, pause); err != nil {
			trace.End = EndCancelled
			return trace
		}

		url = links[e.rng.IntN(len(links))]
		depth--
	}
}

func (e *Engine) deadEnd(url string, reason EndReason) {
	if e.state.Blacklist.Add(url) {
		e.logger.Debug("blacklisted", "url", url, "reason", reason.String())
		e.observer.Blacklisted(url, reason)
	}
}
