package report

import (
	"encoding/json"
	"io"
)

// JSONWriter writes JSON for tool integration.
type JSONWriter struct {
	baseWriter
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint indents the output by two spaces.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = "  "
	}
}

// NewJSONWriter creates a JSONWriter. Output is compact unless
// WithPrettyPrint is given.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteSpiders writes the spiders as a JSON array.
func (w *JSONWriter) WriteSpiders(spiders []SpiderInfo) (int, error) {
	if spiders == nil {
		spiders = []SpiderInfo{}
	}
	return w.writeJSON(spiders)
}

// WriteSummary writes the summary as a JSON object.
func (w *JSONWriter) WriteSummary(summary *CrawlSummary) (int, error) {
	if summary == nil {
		return 0, ErrNilSummary
	}
	return w.writeJSON(summary)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error
	if w.indent != "" {
		data, err = json.MarshalIndent(v, "", w.indent)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
