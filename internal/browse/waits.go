package browse

import (
	"math/rand/v2"
	"sync"
	"time"
)

// WaitBounds holds the current pause range between hops. The bounds start
// from configuration and only ever grow, each time a server answers 429.
type WaitBounds struct {
	mu  sync.Mutex
	min time.Duration
	max time.Duration
}

// NewWaitBounds creates WaitBounds for the range [minWait, maxWait).
func NewWaitBounds(minWait, maxWait time.Duration) *WaitBounds {
	return &WaitBounds{min: minWait, max: maxWait}
}

// Bounds returns the current range.
func (w *WaitBounds) Bounds() (time.Duration, time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.min, w.max
}

// Increase shifts both bounds up by step and returns the new range.
// A negative step is ignored so the bounds never shrink.
func (w *WaitBounds) Increase(step time.Duration) (time.Duration, time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if step > 0 {
		w.min += step
		w.max += step
	}
	return w.min, w.max
}

// Sample draws a pause uniformly from [min, max). An empty range yields min.
func (w *WaitBounds) Sample(rng *rand.Rand) time.Duration {
	lo, hi := w.Bounds()
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rng.Int64N(int64(hi-lo)))
}
