package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/trafficgen/internal/config"
	"github.com/nao1215/trafficgen/internal/console"
	"github.com/nao1215/trafficgen/internal/history"
	"github.com/nao1215/trafficgen/internal/report"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of runs listed when --limit is not set.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `History lists the runs recorded in the run ledger, newest first.

Runs are only recorded when history.enabled is set in the configuration
file. The ledger holds run totals only, never visited URLs.

Examples:
  # List the 20 most recent runs
  trafficgen history

  # Show a single run in detail
  trafficgen history --id 3

  # Export every run as JSON
  trafficgen history --limit 0 --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output in Markdown format (mutually exclusive with --json)")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list (0 lists all)")
	cmd.Flags().Int64P("id", "i", 0,
		"Show the run with this id")
	cmd.Flags().String("dir", "",
		"History directory (default: trafficgen directory under $XDG_DATA_HOME)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	jsonOut, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	markdownOut, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	id, err := flags.GetInt64("id")
	if err != nil {
		return err
	}
	dir, err := flags.GetString("dir")
	if err != nil {
		return err
	}
	if dir == "" {
		dir = config.XDGDataDir()
	}

	out := cmd.OutOrStdout()
	store, err := history.Open(dir, history.ReadOnlyOptions())
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			fmt.Fprintln(out, "No runs recorded.")
			return nil
		}
		return fmt.Errorf("failed to open run history: %w", err)
	}
	defer store.Close()

	w := newReportWriter(out, jsonOut, markdownOut)
	ctx := cmd.Context()

	if id != 0 {
		run, err := store.GetRun(ctx, id)
		if err != nil {
			return err
		}
		_, err = w.WriteRun(run)
		return err
	}

	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if _, err := w.WriteHistory(runs); err != nil {
		return err
	}

	if jsonOut || markdownOut || len(runs) == 0 {
		return nil
	}

	totals, err := store.Totals(ctx)
	if err != nil {
		return fmt.Errorf("failed to sum runs: %w", err)
	}
	fmt.Fprintf(out, "\n%d runs in total, %s received, %d good and %d bad requests\n",
		totals.Runs, console.FormatBytes(totals.Bytes), totals.GoodRequests, totals.BadRequests)
	return nil
}

func newReportWriter(out io.Writer, jsonOut, markdownOut bool) report.Writer {
	switch {
	case jsonOut:
		return report.NewJSONWriter(out, report.WithPrettyPrint())
	case markdownOut:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out)
	}
}
