package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Writer writes listings and summaries in one format.
type Writer interface {
	// WriteSpiders writes the spider listing. It returns the number of bytes
	// written.
	WriteSpiders(spiders []SpiderInfo) (int, error)

	// WriteSummary writes a crawl summary. It returns the number of bytes
	// written.
	WriteSummary(summary *CrawlSummary) (int, error)
}

// Format names an output format.
type Format string

// Supported formats.
const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ErrUnknownFormat is returned by NewWriter for unsupported formats.
var ErrUnknownFormat = errors.New("unknown report format")

// ErrNilSummary is returned when a nil summary is written.
var ErrNilSummary = errors.New("nil crawl summary")

// NewWriter returns the Writer for format.
func NewWriter(format Format, output io.Writer) (Writer, error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatText, "":
		return NewSimpleWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown, "md":
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q (expected text, json or markdown)", ErrUnknownFormat, format)
	}
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
