package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/nao1215/trafficgen/internal/browse"
	"github.com/nao1215/trafficgen/internal/config"
	"github.com/nao1215/trafficgen/internal/console"
	"github.com/nao1215/trafficgen/internal/egress"
	"github.com/nao1215/trafficgen/internal/history"
	logpkg "github.com/nao1215/trafficgen/internal/log"
	"github.com/nao1215/trafficgen/internal/model"
	"github.com/nao1215/trafficgen/internal/report"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// historySaveTimeout bounds writing the run summary after shutdown.
const historySaveTimeout = 10 * time.Second

// Formats accepted by --summary-format.
const (
	summaryFormatJSON     = "json"
	summaryFormatMarkdown = "markdown"
)

var errUnknownSummaryFormat = errors.New("unknown summary format")

// runRootCmd loads the configuration named by args[0] and generates
// traffic until SIGINT or SIGTERM.
func runRootCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args[0])
	if err != nil {
		return err
	}

	jsonLog, err := cmd.Flags().GetBool("json-log")
	if err != nil {
		return err
	}

	verbose := getVerboseFlag(cmd)
	if verbose {
		cfg.Debug = true
	}

	logger := newLogger(cmd.ErrOrStderr(), jsonLog, cfg.Debug)
	slog.SetDefault(logger)

	out := cmd.OutOrStdout()
	summary, closeSummary, err := openSummaryWriter(cmd, out)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSummary(); err != nil {
			logger.Error("failed to close summary file", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return generate(ctx, cfg, out, summary, logger)
}

// openSummaryWriter returns the writer for the shutdown summary: the text
// summary on out, plus a JSON or Markdown copy when --summary-file is set.
// The file is created before traffic starts so a bad path fails early.
func openSummaryWriter(cmd *cobra.Command, out io.Writer) (report.Writer, func() error, error) {
	path, err := cmd.Flags().GetString("summary-file")
	if err != nil {
		return nil, nil, err
	}
	format, err := cmd.Flags().GetString("summary-format")
	if err != nil {
		return nil, nil, err
	}

	text := report.NewSimpleWriter(out)
	if path == "" {
		return text, func() error { return nil }, nil
	}

	var newFileWriter func(io.Writer) report.Writer
	switch format {
	case summaryFormatJSON:
		newFileWriter = func(w io.Writer) report.Writer {
			return report.NewJSONWriter(w, report.WithPrettyPrint())
		}
	case summaryFormatMarkdown:
		newFileWriter = func(w io.Writer) report.Writer {
			return report.NewMarkdownWriter(w)
		}
	default:
		return nil, nil, fmt.Errorf("%w: %q (use %s or %s)", errUnknownSummaryFormat, format, summaryFormatJSON, summaryFormatMarkdown)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create summary file: %w", err)
	}

	return report.NewMultiWriter(text, newFileWriter(f)), f.Close, nil
}

// loadConfig resolves, loads and validates the configuration file.
func loadConfig(arg string) (*config.Config, error) {
	path := config.FindConfigFile(arg)
	if path == "" {
		if arg == config.SearchMarker {
			return nil, fmt.Errorf("%w: no %s in the current directory or %s (run 'trafficgen init' to create one)",
				config.ErrConfigNotFound, config.DefaultConfigFile, config.XDGConfigDir())
		}
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, arg)
	}

	cfg, err := config.LoadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, jsonLog, verbose bool) *slog.Logger {
	if jsonLog {
		return logpkg.NewJSONLogger(w, verbose)
	}
	return logpkg.NewLogger(w, verbose)
}

// generate runs the traffic generator until ctx is done, then writes the
// run summary to summaryOut and records it in the history if enabled.
// Banner and trace lines go to out.
// Cancellation is a normal shutdown and is not returned as an error.
func generate(ctx context.Context, cfg *config.Config, out io.Writer, summaryOut report.Writer, logger *slog.Logger) error {
	settings := egress.Settings{
		Proxy:             cfg.Egress.Proxy,
		EmbeddedTor:       cfg.Egress.EmbeddedTor,
		TorStartupTimeout: cfg.Egress.TorStartupTimeout.Duration,
		Timeout:           cfg.Timeout.Duration,
	}
	if err := egress.CheckRoots(cfg.RootURLs, settings.Proxied()); err != nil {
		return err
	}

	route, err := egress.Open(ctx, settings, logger)
	if err != nil {
		return fmt.Errorf("failed to set up egress: %w", err)
	}
	defer func() {
		if err := route.Close(); err != nil {
			logger.Error("failed to stop embedded Tor", "error", err)
		}
	}()

	noColor := color.NoColor
	console.PrintBanner(out, console.BannerInfo{
		MinDepth: cfg.MinDepth,
		MaxDepth: cfg.MaxDepth,
		RootURLs: len(cfg.RootURLs),
		MinWait:  cfg.MinWait.Duration,
		MaxWait:  cfg.MaxWait.Duration,
		Egress:   route.Description,
	}, noColor)

	state := browse.NewState(cfg.Blacklist, cfg.MinWait.Duration, cfg.MaxWait.Duration)
	var observer browse.Observer = browse.NopObserver{}
	if cfg.Debug {
		observer = console.NewTracer(out, noColor)
	}

	fetcher := browse.NewFetcher(route.Client, state,
		browse.WithUserAgent(cfg.UserAgent),
		browse.WithHeaders(cfg.Headers),
		browse.WithMaxBodySize(cfg.EffectiveMaxBodySize()),
		browse.WithCooldown(cfg.NetworkCooldown.Duration),
		browse.WithBackoffStep(cfg.BackoffStep.Duration),
		browse.WithRequestsPerMinute(cfg.RequestsPerMinute),
		browse.WithFetchObserver(observer),
		browse.WithFetchLogger(logger),
	)
	engine := browse.NewEngine(fetcher, state,
		browse.WithObserver(observer),
		browse.WithLogger(logger),
	)
	driver := browse.NewDriver(engine, cfg.RootURLs, cfg.MinDepth, cfg.MaxDepth,
		browse.WithDriverObserver(observer),
		browse.WithDriverLogger(logger),
	)

	logger.Info("starting traffic generation",
		"roots", len(cfg.RootURLs),
		"egress", route.Description,
		"historyEnabled", cfg.History.Enabled,
	)

	startedAt := time.Now()
	blacklistBefore := state.Blacklist.Len()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return driver.Run(gctx)
	})
	if interval := cfg.StatsInterval.Duration; meterLogged(ctx, interval, logger) {
		g.Go(func() error {
			return logMeter(gctx, state, interval, logger)
		})
	}
	runErr := g.Wait()

	summary := summarize(state, driver.Stats(), startedAt, time.Now(), route.Description, len(cfg.RootURLs))
	summary.BlacklistAdded = state.Blacklist.Len() - blacklistBefore

	if cfg.History.Enabled {
		saveRun(ctx, cfg.HistoryDir(), summary, logger)
	}

	fmt.Fprintln(out)
	if _, err := summaryOut.WriteRun(summary); err != nil {
		logger.Error("failed to write run summary", "error", err)
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		return runErr
	}
	return nil
}

// meterLogged reports whether the periodic meter line would be emitted.
// At the default Warn level it would be dropped, so no ticker is started.
func meterLogged(ctx context.Context, interval time.Duration, logger *slog.Logger) bool {
	return interval > 0 && logger.Enabled(ctx, slog.LevelInfo)
}

// logMeter logs the traffic totals every interval until ctx is done.
func logMeter(ctx context.Context, state *browse.State, interval time.Duration, logger *slog.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			snap := state.Meter.Snapshot()
			minWait, maxWait := state.Waits.Bounds()
			logger.Info("traffic meter",
				"data", console.FormatBytes(snap.Bytes),
				"good", snap.Good,
				"bad", snap.Bad,
				"minWait", minWait,
				"maxWait", maxWait,
				"blacklist", state.Blacklist.Len(),
			)
		}
	}
}

// summarize builds the run summary from the final state.
func summarize(state *browse.State, stats browse.SessionStats, startedAt, endedAt time.Time, egressName string, roots int) *model.RunSummary {
	snap := state.Meter.Snapshot()
	minWait, maxWait := state.Waits.Bounds()

	return &model.RunSummary{
		StartedAt:    startedAt,
		EndedAt:      endedAt,
		Egress:       egressName,
		RootURLs:     roots,
		Sessions:     stats.Sessions,
		Hops:         stats.Hops,
		DeadEnds:     stats.DeadEnds,
		Bytes:        snap.Bytes,
		GoodRequests: snap.Good,
		BadRequests:  snap.Bad,
		FinalMinWait: minWait,
		FinalMaxWait: maxWait,
	}
}

// saveRun records summary in the history ledger. Failures are logged and
// otherwise ignored.
func saveRun(ctx context.Context, dir string, summary *model.RunSummary, logger *slog.Logger) {
	// ctx is normally cancelled by now.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historySaveTimeout)
	defer cancel()

	store, err := history.Open(dir, history.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open run history", "dir", dir, "error", err)
		return
	}
	defer store.Close()

	id, err := store.SaveRun(ctx, summary)
	if err != nil {
		logger.Warn("failed to save run", "path", store.Path(), "error", err)
		return
	}
	logger.Info("run saved", "id", id, "path", store.Path())
}
