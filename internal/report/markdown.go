package report

import (
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/trafficgen/internal/model"
)

// lowSuccessRate is the success percentage below which the Markdown
// summary carries a warning.
const lowSuccessRate = 50.0

// MarkdownWriter outputs Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteRun outputs a run summary with a chart of response outcomes.
func (w *MarkdownWriter) WriteRun(run *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Traffic Generator Run")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", run.StartedAt.Format(timeLayout)},
			{"Duration", run.Duration().Round(time.Second).String()},
			{"Egress", run.Egress},
			{"Root URLs", strconv.Itoa(run.RootURLs)},
			{"Sessions", strconv.FormatInt(run.Sessions, 10)},
			{"Hops", strconv.FormatInt(run.Hops, 10)},
			{"Dead ends", strconv.FormatInt(run.DeadEnds, 10)},
			{"Blacklisted URLs", strconv.Itoa(run.BlacklistAdded)},
		},
	})
	md.PlainText("")

	md.H2("Traffic")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Data received", humanize.Bytes(uint64(max(run.Bytes, 0)))},
			{"Good requests", strconv.FormatInt(run.GoodRequests, 10)},
			{"Bad requests", strconv.FormatInt(run.BadRequests, 10)},
			{"Success rate", strconv.FormatFloat(run.SuccessRate(), 'f', 1, 64) + "%"},
			{"Final pause", run.FinalMinWait.String() + " - " + run.FinalMaxWait.String()},
		},
	})
	md.PlainText("")

	if run.Requests() > 0 {
		w.writePieChart(md, run)
	}
	w.writeAlert(md, run)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, run *model.RunSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Response Outcomes"),
		piechart.WithShowData(true),
	)
	if run.GoodRequests > 0 {
		chart.LabelAndIntValue("HTTP 200", uint64(run.GoodRequests))
	}
	if run.BadRequests > 0 {
		chart.LabelAndIntValue("Other status", uint64(run.BadRequests))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, run *model.RunSummary) {
	switch {
	case run.Requests() == 0:
		md.Note("No HTTP responses were received during this run.")
	case run.SuccessRate() < lowSuccessRate:
		md.Warningf("Only %.1f%% of responses were HTTP 200. Check the root URLs and the egress route.",
			run.SuccessRate())
	default:
		md.Tip("Traffic generation ran normally.")
	}
	md.PlainText("")
}

// WriteHistory outputs the recorded runs as a table.
func (w *MarkdownWriter) WriteHistory(runs []*model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Traffic Generator History")
	md.PlainText("")

	if len(runs) == 0 {
		md.PlainText("No runs recorded.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			"#" + strconv.FormatInt(run.ID, 10),
			run.StartedAt.Format(timeLayout),
			run.Duration().Round(time.Second).String(),
			humanize.Bytes(uint64(max(run.Bytes, 0))),
			strconv.FormatInt(run.GoodRequests, 10),
			strconv.FormatInt(run.BadRequests, 10),
			run.Egress,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Run", "Started", "Duration", "Data", "Good", "Bad", "Egress"},
		Rows:   rows,
	})
	md.PlainText("")
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [trafficgen](https://github.com/nao1215/trafficgen)*")
}
