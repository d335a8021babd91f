package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
)

// MarkdownWriter writes GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// WriteSpiders writes the spiders as a table.
func (w *MarkdownWriter) WriteSpiders(spiders []SpiderInfo) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Spiders")
	md.PlainText("")

	rows := make([][]string, 0, len(spiders))
	for _, s := range spiders {
		rows = append(rows, []string{
			"`" + s.Name + "`",
			s.Domain,
			s.SampleURL,
			strings.Join(s.Filters, ", "),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Name", "Domain", "Sample URL", "Filters"},
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}

// WriteSummary writes the summary as a property table followed by a
// metadata table.
func (w *MarkdownWriter) WriteSummary(summary *CrawlSummary) (int, error) {
	if summary == nil {
		return 0, ErrNilSummary
	}

	md := markdown.NewMarkdown(w.output)
	title := summary.Title()
	if title == "" {
		title = summary.URL
	}
	md.H1(title)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Spider", "`" + summary.Spider + "`"},
			{"URL", summary.URL},
			{"Output", outputName(summary.Output)},
			{"Bytes", strconv.FormatInt(summary.Bytes, 10)},
			{"Duration", summary.Duration.Round(1e6).String()},
		},
	})

	if len(summary.Metadata) > 0 {
		md.PlainText("")
		md.H2("Metadata")
		md.PlainText("")
		rows := make([][]string, 0, len(summary.Metadata))
		for _, e := range summary.Metadata {
			rows = append(rows, []string{e.Key, e.Value})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Key", "Value"},
			Rows:   rows,
		})
	}

	return len(md.String()), md.Build()
}
