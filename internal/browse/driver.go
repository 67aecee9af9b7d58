package browse

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
)

// Browser runs one session. *Engine implements it.
type Browser interface {
	Browse(ctx context.Context, url string, depth int) Trace
}

// SessionStats summarizes the sessions a Driver has run.
type SessionStats struct {
	// Sessions counts sessions started.
	Sessions int64 `json:"sessions"`

	// Hops counts fetch attempts over all sessions.
	Hops int64 `json:"hops"`

	// DeadEnds counts sessions ended by a failed fetch or a page with no links.
	DeadEnds int64 `json:"dead_ends"`

	// Completed counts sessions that used up their depth.
	Completed int64 `json:"completed"`
}

// Driver starts sessions from random root URLs with random depths until
// its context is cancelled.
type Driver struct {
	browser  Browser
	roots    []string
	minDepth int
	maxDepth int
	rng      *rand.Rand
	observer Observer
	logger   *slog.Logger

	mu    sync.Mutex
	stats SessionStats
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithDriverRand sets the random source for root and depth choice.
func WithDriverRand(rng *rand.Rand) DriverOption {
	return func(d *Driver) {
		if rng != nil {
			d.rng = rng
		}
	}
}

// WithDriverObserver sets the receiver of session events.
func WithDriverObserver(o Observer) DriverOption {
	return func(d *Driver) {
		if o != nil {
			d.observer = o
		}
	}
}

// WithDriverLogger sets the logger.
func WithDriverLogger(l *slog.Logger) DriverOption {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDriver creates a Driver. Depths are drawn from [minDepth, maxDepth);
// an empty range always yields minDepth. roots must not be empty.
func NewDriver(browser Browser, roots []string, minDepth, maxDepth int, opts ...DriverOption) *Driver {
	d := &Driver{
		browser:  browser,
		roots:    append([]string(nil), roots...),
		minDepth: minDepth,
		maxDepth: maxDepth,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // traffic shaping, not security
		observer: NopObserver{},
		logger:   slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Run browses session after session until ctx is done and then returns
// ctx.Err(). It returns immediately with ErrNoRoots if there is nothing
// to start from.
func (d *Driver) Run(ctx context.Context) error {
	if len(d.roots) == 0 {
		return ErrNoRoots
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		root := d.roots[d.rng.IntN(len(d.roots))]
		depth := d.drawDepth()

		d.logger.Debug("session started", "root", root, "depth", depth)
		d.observer.SessionStarted(root, depth, len(d.roots))

		trace := d.browser.Browse(ctx, root, depth)
		d.record(trace)
	}
}

// Stats returns the session totals so far.
func (d *Driver) Stats() SessionStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

func (d *Driver) drawDepth() int {
	if d.maxDepth <= d.minDepth {
		return d.minDepth
	}
	return d.minDepth + d.rng.IntN(d.maxDepth-d.minDepth)
}

func (d *Driver) record(trace Trace) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.Sessions++
	d.stats.Hops += int64(trace.Hops)
	switch trace.End {
	case EndDepthReached:
		d.stats.Completed++
	case EndFetchFailed, EndNoLinks:
		d.stats.DeadEnds++
	case EndCancelled:
	}
}
