package console

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/nao1215/trafficgen/internal/browse"
	"github.com/nao1215/trafficgen/internal/log"
)

// Tracer prints a trace line for each browsing event.
// It is safe for concurrent use.
type Tracer struct {
	mu     sync.Mutex
	w      io.Writer
	red    *color.Color
	yellow *color.Color
	purple *color.Color
}

// NewTracer creates a Tracer writing to w.
func NewTracer(w io.Writer, noColor bool) *Tracer {
	t := &Tracer{
		w:      w,
		red:    color.New(color.FgHiRed),
		yellow: color.New(color.FgHiYellow),
		purple: color.New(color.FgHiMagenta),
	}
	if noColor {
		t.red.DisableColor()
		t.yellow.DisableColor()
		t.purple.DisableColor()
	}
	return t
}

var _ browse.Observer = (*Tracer)(nil)

func (t *Tracer) line(c *color.Color, format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if c == nil {
		fmt.Fprintf(t.w, format+"\n", args...)
		return
	}
	c.Fprintf(t.w, format+"\n", args...)
}

// SessionStarted announces the root chosen for a new session.
func (t *Tracer) SessionStarted(root string, depth, roots int) {
	t.line(t.purple, "Randomly selecting one of %d Root URLs", roots)
	t.line(nil, "Starting at [%s] ~~~ [depth = %d]", log.RedactURL(root), depth)
}

// Visiting prints the hop header.
func (t *Tracer) Visiting(url string, depth int) {
	t.line(nil, rule)
	t.line(nil, "Browsing [%s] ~~~ [depth = %d]", log.RedactURL(url), depth)
	t.line(nil, "  Requesting page...")
}

// Fetched prints the response size, the meter and the status.
func (t *Tracer) Fetched(_ string, status int, size int64, totals browse.MeterSnapshot) {
	t.line(nil, "  Page size: %s", FormatBytes(size))
	t.line(nil, "  Data meter: %s", FormatBytes(totals.Bytes))
	if status != 200 {
		t.line(t.red, "  Response status: %d", status)
	}
	t.line(nil, "  Good requests: %d", totals.Good)
	t.line(nil, "  Bad requests: %d", totals.Bad)
}

// FetchFailed prints the transport error and the cooldown.
func (t *Tracer) FetchFailed(_ string, err error, cooldown time.Duration) {
	t.line(t.red, "  Request failed: %v", err)
	if cooldown > 0 {
		t.line(nil, "  Cooling down for %s seconds...", FormatSeconds(cooldown))
	}
}

// RateLimited reports the new pause range after a 429.
func (t *Tracer) RateLimited(_ string, minWait, maxWait time.Duration) {
	t.line(nil, "  We're making requests too frequently... sleeping longer (%s-%s seconds)...",
		FormatSeconds(minWait), FormatSeconds(maxWait))
}

// Scraped prints the link count.
func (t *Tracer) Scraped(_ string, links int) {
	t.line(nil, "  Scraping page for links")
	t.line(nil, "  Found %d valid links", links)
}

// Blacklisted prints why a URL was dropped.
func (t *Tracer) Blacklisted(_ string, reason browse.EndReason) {
	switch reason {
	case browse.EndFetchFailed:
		t.line(t.yellow, "  Stopping and blacklisting: page error")
	case browse.EndNoLinks:
		t.line(t.yellow, "  Stopping and blacklisting: no links")
	default:
		t.line(t.yellow, "  Stopping and blacklisting: %s", reason)
	}
}

// Pausing prints the pause length.
func (t *Tracer) Pausing(d time.Duration) {
	t.line(nil, "  Pausing for %s seconds...", FormatSeconds(d))
}
