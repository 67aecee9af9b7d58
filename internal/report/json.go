package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/trafficgen/internal/model"
)

// JSONWriter outputs runs as JSON.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output with the given prefix and indent.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// jsonRun adds derived values to a run.
type jsonRun struct {
	*model.RunSummary

	DurationSeconds float64 `json:"duration_seconds"`
	Requests        int64   `json:"requests"`
	SuccessRate     float64 `json:"success_rate"`
}

func newJSONRun(run *model.RunSummary) jsonRun {
	return jsonRun{
		RunSummary:      run,
		DurationSeconds: run.Duration().Seconds(),
		Requests:        run.Requests(),
		SuccessRate:     run.SuccessRate(),
	}
}

// WriteRun outputs run as a JSON object.
func (w *JSONWriter) WriteRun(run *model.RunSummary) (int, error) {
	return w.writeJSON(newJSONRun(run))
}

// WriteHistory outputs runs as a JSON array. An empty history is "[]".
func (w *JSONWriter) WriteHistory(runs []*model.RunSummary) (int, error) {
	out := make([]jsonRun, 0, len(runs))
	for _, run := range runs {
		out = append(out, newJSONRun(run))
	}
	return w.writeJSON(out)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
