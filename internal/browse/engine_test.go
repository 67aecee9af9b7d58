package browse

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"
)

// fakeFetcher serves scripted pages and records every call.
type fakeFetcher struct {
	mu    sync.Mutex
	pages  map[string]string
	status map[string]int
	fail   map[string]bool
	calls  []string
	state *State
}

func newFakeFetcher(state *State) *fakeFetcher {
	return &fakeFetcher{
		pages:  make(map[string]string),
		status: make(map[string]int),
		fail:   make(map[string]bool),
		state:  state,
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, url)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.fail[url] {
		return nil, ErrNetwork
	}
	status, ok := f.status[url]
	if !ok {
		status = statusOK
	}
	body := f.pages[url]
	f.state.Meter.record(status, int64(len(body)))
	return &Page{URL: url, StatusCode: status, Body: []byte(body)}, nil
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// recorder captures the hooks the engine calls.
type recorder struct {
	NopObserver

	mu       sync.Mutex
	visits   []visit
	sleeps   []time.Duration
	extracts int
}

type visit struct {
	url   string
	depth int
}

func (r *recorder) Visiting(url string, depth int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visits = append(r.visits, visit{url: url, depth: depth})
}

func (r *recorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.sleeps = append(r.sleeps, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *recorder) extract(body []byte, filter Filter) []string {
	r.mu.Lock()
	r.extracts++
	r.mu.Unlock()
	return ExtractLinks(body, filter)
}

func newTestEngine(t *testing.T, state *State, fetcher PageFetcher, rec *recorder) *Engine {
	t.Helper()
	return NewEngine(fetcher, state,
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithSleep(rec.sleep),
		WithExtractor(rec.extract),
		WithObserver(rec),
	)
}

// TestEngineBrowse tests the outcome of a session for each kind of page.
func TestEngineBrowse(t *testing.T) {
	t.Parallel()

	const (
		start   = "https://start.example/"
		minWait = 2 * time.Second
		maxWait = 4 * time.Second
	)

	t.Run("depth zero fetches once and extracts nothing", func(t *testing.T) {
		t.Parallel()

		for _, failing := range []bool{false, true} {
			state := NewState(nil, minWait, maxWait)
			fetcher := newFakeFetcher(state)
			fetcher.pages[start] = `<a href="https://next.example/">`
			fetcher.fail[start] = failing
			rec := &recorder{}

			trace := newTestEngine(t, state, fetcher, rec).Browse(t.Context(), start, 0)

			if calls := fetcher.Calls(); len(calls) != 1 {
				t.Errorf("failing=%v: expected 1 fetch, got %v", failing, calls)
			}
			if rec.extracts != 0 {
				t.Errorf("failing=%v: expected no extraction, got %d", failing, rec.extracts)
			}
			if len(rec.sleeps) != 0 {
				t.Errorf("failing=%v: expected no pause, got %v", failing, rec.sleeps)
			}
			if state.Blacklist.Len() != 0 {
				t.Errorf("failing=%v: expected blacklist untouched, got %v", failing, state.Blacklist.Entries())
			}
			if trace.End != EndDepthReached || trace.Hops != 1 {
				t.Errorf("failing=%v: unexpected trace %+v", failing, trace)
			}
		}
	})

	t.Run("network failure blacklists the url", func(t *testing.T) {
		t.Parallel()

		state := NewState(nil, minWait, maxWait)
		fetcher := newFakeFetcher(state)
		fetcher.fail[start] = true
		rec := &recorder{}

		trace := newTestEngine(t, state, fetcher, rec).Browse(t.Context(), start, 3)

		if calls := fetcher.Calls(); len(calls) != 1 {
			t.Errorf("expected 1 fetch, got %v", calls)
		}
		if rec.extracts != 0 {
			t.Errorf("expected no extraction, got %d", rec.extracts)
		}
		if !slices.Equal(state.Blacklist.Entries(), []string{start}) {
			t.Errorf("expected %q blacklisted, got %v", start, state.Blacklist.Entries())
		}
		if trace.End != EndFetchFailed {
			t.Errorf("expected %v, got %v", EndFetchFailed, trace.End)
		}
	})

	t.Run("page without links blacklists the url", func(t *testing.T) {
		t.Parallel()

		state := NewState([]string{"ads.example"}, minWait, maxWait)
		fetcher := newFakeFetcher(state)
		fetcher.pages[start] = `<a href="/relative"><a href="https://ads.example/x">`
		rec := &recorder{}

		trace := newTestEngine(t, state, fetcher, rec).Browse(t.Context(), start, 3)

		if calls := fetcher.Calls(); len(calls) != 1 {
			t.Errorf("expected 1 fetch, got %v", calls)
		}
		if rec.extracts != 1 {
			t.Errorf("expected 1 extraction, got %d", rec.extracts)
		}
		if !state.Blacklist.Matches(start) {
			t.Errorf("expected %q blacklisted", start)
		}
		if len(rec.sleeps) != 0 {
			t.Errorf("expected no pause, got %v", rec.sleeps)
		}
		if trace.End != EndNoLinks {
			t.Errorf("expected %v, got %v", EndNoLinks, trace.End)
		}
	})

	t.Run("error status page is scraped and followed", func(t *testing.T) {
		t.Parallel()

		const next = "https://next.example/"
		state := NewState(nil, minWait, maxWait)
		fetcher := newFakeFetcher(state)
		fetcher.pages[start] = `<h1>Not Found</h1><a href="https://next.example/">home</a>`
		fetcher.status[start] = 404
		fetcher.pages[next] = `<p>landing</p>`
		rec := &recorder{}

		trace := newTestEngine(t, state, fetcher, rec).Browse(t.Context(), start, 1)

		if rec.extracts != 1 {
			t.Errorf("expected the 404 body to be scraped once, got %d", rec.extracts)
		}
		want := []visit{{url: start, depth: 1}, {url: next, depth: 0}}
		if !slices.Equal(rec.visits, want) {
			t.Errorf("visits = %v, want %v", rec.visits, want)
		}
		if state.Blacklist.Len() != 0 {
			t.Errorf("expected nothing blacklisted, got %v", state.Blacklist.Entries())
		}
		if trace.End != EndDepthReached || trace.Hops != 2 {
			t.Errorf("unexpected trace %+v", trace)
		}
		if snap := state.Meter.Snapshot(); snap.Good != 1 || snap.Bad != 1 {
			t.Errorf("expected 1 good and 1 bad response, got %+v", snap)
		}
	})

	t.Run("page with links pauses and follows one at depth minus one", func(t *testing.T) {
		t.Parallel()

		valid := []string{"https://a.example/1", "https://b.example/2", "https://c.example/3"}
		state := NewState([]string{"blocked.example"}, minWait, maxWait)
		fetcher := newFakeFetcher(state)
		fetcher.pages[start] = `<a href="https://a.example/1"><a href="https://b.example/2">` +
			`<a href="https://blocked.example/"><a href="https://c.example/3">`
		rec := &recorder{}

		trace := newTestEngine(t, state, fetcher, rec).Browse(t.Context(), start, 1)

		if rec.extracts != 1 {
			t.Errorf("expected 1 extraction, got %d", rec.extracts)
		}
		if len(rec.sleeps) != 1 {
			t.Fatalf("expected 1 pause, got %v", rec.sleeps)
		}
		if rec.sleeps[0] < minWait || rec.sleeps[0] >= maxWait {
			t.Errorf("pause %v outside [%v, %v)", rec.sleeps[0], minWait, maxWait)
		}
		if len(rec.visits) != 2 {
			t.Fatalf("expected 2 visits, got %v", rec.visits)
		}
		next := rec.visits[1]
		if next.depth != 0 {
			t.Errorf("expected next hop at depth 0, got %d", next.depth)
		}
		if !slices.Contains(valid, next.url) {
			t.Errorf("next hop %q not drawn from %v", next.url, valid)
		}
		if state.Blacklist.Len() != 1 {
			t.Errorf("expected blacklist unchanged, got %v", state.Blacklist.Entries())
		}
		if trace.End != EndDepthReached || trace.Hops != 2 || trace.Last != next.url {
			t.Errorf("unexpected trace %+v", trace)
		}
	})

	t.Run("walks until depth is used up", func(t *testing.T) {
		t.Parallel()

		state := NewState(nil, minWait, maxWait)
		fetcher := newFakeFetcher(state)
		fetcher.pages[start] = `<a href="https://loop.example/">`
		fetcher.pages["https://loop.example/"] = `<a href="https://loop.example/">`
		rec := &recorder{}

		trace := newTestEngine(t, state, fetcher, rec).Browse(t.Context(), start, 4)

		if calls := fetcher.Calls(); len(calls) != 5 {
			t.Errorf("expected 5 fetches, got %v", calls)
		}
		for i, v := range rec.visits {
			if v.depth != 4-i {
				t.Errorf("visit %d at depth %d, want %d", i, v.depth, 4-i)
			}
		}
		if len(rec.sleeps) != 4 {
			t.Errorf("expected 4 pauses, got %d", len(rec.sleeps))
		}
		if trace.End != EndDepthReached {
			t.Errorf("expected %v, got %v", EndDepthReached, trace.End)
		}
	})

	t.Run("cancelled context stops before fetching", func(t *testing.T) {
		t.Parallel()

		state := NewState(nil, minWait, maxWait)
		fetcher := newFakeFetcher(state)
		rec := &recorder{}

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		trace := newTestEngine(t, state, fetcher, rec).Browse(ctx, start, 3)

		if calls := fetcher.Calls(); len(calls) != 0 {
			t.Errorf("expected no fetch, got %v", calls)
		}
		if trace.End != EndCancelled {
			t.Errorf("expected %v, got %v", EndCancelled, trace.End)
		}
		if state.Blacklist.Len() != 0 {
			t.Error("cancellation must not blacklist")
		}
	})

	t.Run("cancellation during pause ends the session", func(t *testing.T) {
		t.Parallel()

		state := NewState(nil, minWait, maxWait)
		fetcher := newFakeFetcher(state)
		fetcher.pages[start] = `<a href="https://next.example/">`

		ctx, cancel := context.WithCancel(t.Context())
		engine := NewEngine(fetcher, state, WithSleep(func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		}))

		trace := engine.Browse(ctx, start, 2)

		if calls := fetcher.Calls(); len(calls) != 1 {
			t.Errorf("expected 1 fetch, got %v", calls)
		}
		if trace.End != EndCancelled {
			t.Errorf("expected %v, got %v", EndCancelled, trace.End)
		}
	})
}

// TestEndReasonString tests EndReason names.
func TestEndReasonString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		reason EndReason
		want   string
	}{
		{EndDepthReached, "depth reached"},
		{EndFetchFailed, "fetch failed"},
		{EndNoLinks, "no links"},
		{EndCancelled, "cancelled"},
		{EndReason(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.reason.String(); got != tt.want {
			t.Errorf("EndReason(%d).String() = %q, want %q", tt.reason, got, tt.want)
		}
	}
}

// TestSleepContext tests the default pause.
func TestSleepContext(t *testing.T) {
	t.Parallel()

	if err := sleepContext(t.Context(), time.Millisecond); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
