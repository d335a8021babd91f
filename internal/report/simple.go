package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// SimpleWriter writes plain text for terminals.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{baseWriter: newBaseWriter(output)}
}

// WriteSpiders writes one aligned line per spider.
func (w *SimpleWriter) WriteSpiders(spiders []SpiderInfo) (int, error) {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDOMAIN\tSAMPLE URL")
	for _, s := range spiders {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, s.Domain, s.SampleURL)
	}
	if err := tw.Flush(); err != nil {
		return 0, err
	}
	return io.WriteString(w.output, sb.String())
}

// WriteSummary writes the summary as key: value lines.
func (w *SimpleWriter) WriteSummary(summary *CrawlSummary) (int, error) {
	if summary == nil {
		return 0, ErrNilSummary
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "spider:   %s\n", summary.Spider)
	fmt.Fprintf(&sb, "url:      %s\n", summary.URL)
	fmt.Fprintf(&sb, "output:   %s\n", outputName(summary.Output))
	fmt.Fprintf(&sb, "bytes:    %d\n", summary.Bytes)
	fmt.Fprintf(&sb, "duration: %s\n", summary.Duration.Round(1e6))
	for _, e := range summary.Metadata {
		fmt.Fprintf(&sb, "%s: %s\n", e.Key, e.Value)
	}
	return io.WriteString(w.output, sb.String())
}

func outputName(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}
