package report

import (
	"io"

	"github.com/nao1215/trafficgen/internal/model"
)

// Writer outputs run data in one format.
type Writer interface {
	// WriteRun outputs the summary of a single run.
	WriteRun(run *model.RunSummary) (int, error)

	// WriteHistory outputs a list of recorded runs, newest first.
	WriteHistory(runs []*model.RunSummary) (int, error)
}

// MultiWriter writes to several Writers in turn and stops at the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteRun outputs run to all Writers.
func (m *MultiWriter) WriteRun(run *model.RunSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteRun(run)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteHistory outputs runs to all Writers.
func (m *MultiWriter) WriteHistory(runs []*model.RunSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteHistory(runs)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter holds the output destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// timeLayout is used for timestamps in text and Markdown output.
const timeLayout = "2006-01-02 15:04:05 MST"
