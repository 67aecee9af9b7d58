package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/trafficgen/internal/model"
)

// SimpleWriter outputs plain text for the terminal.
type SimpleWriter struct {
	baseWriter

	printer *message.Printer
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithLanguage sets the language used for number grouping.
func WithLanguage(tag language.Tag) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.printer = message.NewPrinter(tag)
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
// Numbers are grouped the English way ("1,234") unless WithLanguage says
// otherwise.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.English),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteRun outputs the end-of-run summary.
func (w *SimpleWriter) WriteRun(run *model.RunSummary) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")
	sb.WriteString("                  TRAFFIC GENERATOR SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n\n")

	if run.ID != 0 {
		sb.WriteString(fmt.Sprintf("Run:            #%d\n", run.ID))
	}
	sb.WriteString(fmt.Sprintf("Started:        %s\n", run.StartedAt.Format(timeLayout)))
	sb.WriteString(fmt.Sprintf("Duration:       %s\n", run.Duration().Round(time.Second)))
	sb.WriteString(fmt.Sprintf("Egress:         %s\n", run.Egress))
	sb.WriteString(fmt.Sprintf("Root URLs:      %s\n", w.printer.Sprintf("%d", run.RootURLs)))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Sessions:       %s\n", w.printer.Sprintf("%d", run.Sessions)))
	sb.WriteString(fmt.Sprintf("Hops:           %s\n", w.printer.Sprintf("%d", run.Hops)))
	sb.WriteString(fmt.Sprintf("Dead ends:      %s\n", w.printer.Sprintf("%d", run.DeadEnds)))
	sb.WriteString(fmt.Sprintf("Blacklisted:    %s\n", w.printer.Sprintf("%d", run.BlacklistAdded)))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Data received:  %s\n", humanize.Bytes(uint64(max(run.Bytes, 0)))))
	sb.WriteString(fmt.Sprintf("Good requests:  %s\n", w.printer.Sprintf("%d", run.GoodRequests)))
	sb.WriteString(fmt.Sprintf("Bad requests:   %s\n", w.printer.Sprintf("%d", run.BadRequests)))
	sb.WriteString(fmt.Sprintf("Success rate:   %s\n", w.printer.Sprintf("%.1f%%", run.SuccessRate())))
	sb.WriteString(fmt.Sprintf("Final pause:    %s - %s\n", run.FinalMinWait, run.FinalMaxWait))

	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// WriteHistory outputs one line per run.
func (w *SimpleWriter) WriteHistory(runs []*model.RunSummary) (int, error) {
	if len(runs) == 0 {
		return io.WriteString(w.output, "No runs recorded.\n")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-6s  %-23s  %10s  %10s  %9s  %9s  %s\n",
		"RUN", "STARTED", "DURATION", "DATA", "GOOD", "BAD", "EGRESS"))
	for _, run := range runs {
		sb.WriteString(fmt.Sprintf("%-6s  %-23s  %10s  %10s  %9s  %9s  %s\n",
			fmt.Sprintf("#%d", run.ID),
			run.StartedAt.Format(timeLayout),
			run.Duration().Round(time.Second),
			humanize.Bytes(uint64(max(run.Bytes, 0))),
			w.printer.Sprintf("%d", run.GoodRequests),
			w.printer.Sprintf("%d", run.BadRequests),
			run.Egress,
		))
	}

	return io.WriteString(w.output, sb.String())
}
