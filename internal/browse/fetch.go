package browse

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"
)

const statusOK = http.StatusOK

// ErrNetwork marks a request that produced no HTTP response: DNS failure,
// refused connection, timeout, or a body that could not be read.
var ErrNetwork = errors.New("network error")

// ErrNoRoots is returned by Driver.Run when it has no root URLs.
var ErrNoRoots = errors.New("no root URLs to browse")

// Page is the outcome of one GET that reached a server.
type Page struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Body is the decoded response body, truncated at the size limit.
	Body []byte
}

// PageFetcher performs a single GET.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Fetcher issues the requests of a run and keeps the run's traffic
// accounting: every response feeds the Meter and a 429 pushes the pause
// range up.
type Fetcher struct {
	client      *http.Client
	state       *State
	userAgent   string
	headers     map[string]string
	maxBodySize int64
	cooldown    time.Duration
	backoffStep time.Duration
	limiter     *rate.Limiter
	observer    Observer
	logger      *slog.Logger
	sleep       SleepFunc
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithHeaders adds extra headers to every request. They override the
// browser-like defaults.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *Fetcher) {
		for k, v := range headers {
			f.headers[k] = v
		}
	}
}

// WithMaxBodySize limits how many decoded body bytes are read.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithCooldown sets the pause after a transport failure.
func WithCooldown(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.cooldown = d
	}
}

// WithBackoffStep sets how much both wait bounds grow on HTTP 429.
func WithBackoffStep(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.backoffStep = d
	}
}

// WithRequestsPerMinute caps the request rate. n <= 0 removes the cap.
func WithRequestsPerMinute(n int) FetcherOption {
	return func(f *Fetcher) {
		if n <= 0 {
			f.limiter = nil
			return
		}
		f.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
	}
}

// WithFetchObserver sets the receiver of fetch events.
func WithFetchObserver(o Observer) FetcherOption {
	return func(f *Fetcher) {
		if o != nil {
			f.observer = o
		}
	}
}

// WithFetchLogger sets the logger.
func WithFetchLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithFetchSleep replaces the cooldown sleep.
func WithFetchSleep(s SleepFunc) FetcherOption {
	return func(f *Fetcher) {
		if s != nil {
			f.sleep = s
		}
	}
}

// NewFetcher creates a Fetcher using client for transport and recording
// into state. The client carries the timeout and any proxy setup.
func NewFetcher(client *http.Client, state *State, opts ...FetcherOption) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	f := &Fetcher{
		client:      client,
		state:       state,
		headers:     make(map[string]string),
		maxBodySize: 5 * 1024 * 1024,
		cooldown:    30 * time.Second,
		backoffStep: 10 * time.Second,
		observer:    NopObserver{},
		logger:      slog.New(slog.DiscardHandler),
		sleep:       sleepContext,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch performs one GET of url.
//
// Any HTTP response is returned as a Page, whatever its status, and counted
// in the Meter. When no response arrives the Fetcher waits the cooldown and
// returns an error wrapping ErrNetwork; the Meter is left alone. If ctx is
// cancelled the context error is returned without the cooldown.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	page, err := f.do(ctx, url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		f.logger.Debug("request failed", "url", url, "error", err, "cooldown", f.cooldown)
		f.observer.FetchFailed(url, err, f.cooldown)
		if sleepErr := f.sleep(ctx, f.cooldown); sleepErr != nil {
			return nil, sleepErr
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrNetwork, url, err)
	}

	totals := f.state.Meter.record(page.StatusCode, int64(len(page.Body)))
	f.logger.Debug("page fetched", "url", url, "status", page.StatusCode, "bytes", len(page.Body))
	f.observer.Fetched(url, page.StatusCode, int64(len(page.Body)), totals)

	if page.StatusCode == http.StatusTooManyRequests {
		minWait, maxWait := f.state.Waits.Increase(f.backoffStep)
		f.logger.Warn("rate limited, increasing pause", "url", url, "min_wait", minWait, "max_wait", maxWait)
		f.observer.RateLimited(url, minWait, maxWait)
	}

	return page, nil
}

// do sends the request and reads the decoded body.
func (f *Fetcher) do(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := f.readBody(resp)
	if err != nil {
		return nil, err
	}

	return &Page{URL: url, StatusCode: resp.StatusCode, Body: body}, nil
}

// readBody decodes the body according to Content-Encoding. Reading stops
// silently at maxBodySize.
func (f *Fetcher) readBody(resp *http.Response) ([]byte, error) {
	reader := io.Reader(resp.Body)

	// Go's transport only decodes gzip on its own when it added the header
	// itself; with an explicit Accept-Encoding the body arrives encoded.
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	body, err := io.ReadAll(io.LimitReader(reader, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
