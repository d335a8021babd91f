package spider

import (
	"bytes"
	"context"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/nao1215/storyscraper/internal/document"
	"github.com/nao1215/storyscraper/internal/filter"
	"github.com/nao1215/storyscraper/internal/meta"
	"github.com/nao1215/storyscraper/internal/model"
)

// parseStep runs the spider's Parse and wraps the nodes in a body.
type parseStep struct {
	spider  Spider
	session *Session
	logger  Logger
}

func (s *parseStep) Name() string { return string(model.StageParse) }

func (s *parseStep) Do(ctx context.Context, crawl *model.Crawl) error {
	s.logger.Info("beginning parse", "url", crawl.URL)

	nodes, err := s.spider.Parse(ctx, s.session, crawl.URL)
	if err != nil {
		return err
	}

	crawl.Body = document.NewBody(nodes...)
	crawl.Metadata = s.session.metadata.Clone()
	return nil
}

// filterStep applies the filter chain to the body.
type filterStep struct {
	chain  filter.Chain
	logger Logger
}

func (s *filterStep) Name() string { return string(model.StageFilter) }

func (s *filterStep) Do(_ context.Context, crawl *model.Crawl) error {
	s.logger.Info("applying filters", "count", len(s.chain))
	return s.chain.Apply(crawl.Body, s.logger.Slog())
}

// metadataStep projects the metadata snapshot into head elements.
type metadataStep struct{}

func (metadataStep) Name() string { return string(model.StageMetadata) }

func (metadataStep) Do(_ context.Context, crawl *model.Crawl) error {
	crawl.Head = meta.Project(crawl.Metadata)
	return nil
}

// assembleStep builds the document from head and body.
type assembleStep struct{}

func (assembleStep) Name() string { return string(model.StageAssembly) }

func (assembleStep) Do(_ context.Context, crawl *model.Crawl) error {
	crawl.Document = document.Assemble(crawl.Head, crawl.Body)
	return nil
}

// sink writes a rendered document somewhere and returns the byte count.
type sink func(doc *html.Node) (int64, error)

// serializeStep renders the document, either into crawl.Output or into a
// sink.
type serializeStep struct {
	sink   sink
	logger Logger
}

func (s *serializeStep) Name() string { return string(model.StageSerialize) }

func (s *serializeStep) Do(_ context.Context, crawl *model.Crawl) error {
	if s.sink != nil {
		s.logger.Info("writing document")
		n, err := s.sink(crawl.Document)
		crawl.Written = n
		return err
	}

	s.logger.Info("serializing document")
	var buf bytes.Buffer
	if _, err := document.Render(&buf, crawl.Document); err != nil {
		return err
	}
	crawl.Output = buf.Bytes()
	return nil
}

// failedStageAttrs describes a failed crawl for logging.
func failedStageAttrs(crawl *model.Crawl, err error) []any {
	return []any{
		slog.String("url", crawl.URL),
		slog.String("stage", string(crawl.FailedStage)),
		slog.Any("error", err),
	}
}
