package spider

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/nao1215/storyscraper/internal/document"
	"github.com/nao1215/storyscraper/internal/fetch"
	"github.com/nao1215/storyscraper/internal/filter"
	"github.com/nao1215/storyscraper/internal/meta"
	"github.com/nao1215/storyscraper/internal/model"
	"github.com/nao1215/storyscraper/internal/pipeline"
)

// Scraper runs crawls for one Spider. It owns the fetcher, the metadata of
// the crawl in progress, the filter chain and a logger named after the
// spider.
//
// A crawl is a pipeline of five stages: the spider parses the page into a
// body, the filter chain cleans it, the metadata is projected into head
// elements, head and body are assembled into a document, and the document
// is serialized. Crawl, CrawlTo and CrawlToFile differ only in where the
// serialized bytes go; all three produce the same bytes for the same page.
//
// Design decision: metadata is reset at the start of every crawl, so a
// Scraper can be reused without one crawl's title leaking into the next.
// Crawls on one Scraper must not run concurrently.
type Scraper struct {
	Logger

	spider   Spider
	fetcher  *fetch.Fetcher
	filters  filter.Chain
	metadata *meta.Metadata
}

// Option configures a Scraper.
type Option func(*scraperSettings)

type scraperSettings struct {
	fetcher *fetch.Fetcher
	logger  *slog.Logger
	filters filter.Chain
}

// WithFetcher sets the fetcher Parse fetches through. The default is
// fetch.New().
func WithFetcher(f *fetch.Fetcher) Option {
	return func(s *scraperSettings) {
		s.fetcher = f
	}
}

// WithLogger sets the base logger. The Scraper adds a "spider" attribute.
func WithLogger(l *slog.Logger) Option {
	return func(s *scraperSettings) {
		s.logger = l
	}
}

// WithFilters replaces the filter chain, taking precedence over the
// spider's own chain. A nil chain is ignored; an empty one disables
// filtering.
func WithFilters(c filter.Chain) Option {
	return func(s *scraperSettings) {
		if c != nil {
			s.filters = c.Clone()
		}
	}
}

// New creates a Scraper for sp.
//
// The filter chain is, in order of precedence, the one given with
// WithFilters, the spider's own if it implements FilterProvider, or
// filter.Default().
func New(sp Spider, opts ...Option) *Scraper {
	var settings scraperSettings
	for _, opt := range opts {
		opt(&settings)
	}

	if settings.fetcher == nil {
		settings.fetcher = fetch.New(fetch.WithLogger(settings.logger))
	}
	if settings.logger == nil {
		settings.logger = slog.Default()
	}
	if settings.filters == nil {
		if fp, ok := sp.(FilterProvider); ok {
			settings.filters = fp.Filters().Clone()
		} else {
			settings.filters = filter.Default()
		}
	}

	return &Scraper{
		Logger:   Logger{logger: settings.logger.With("spider", sp.Name())},
		spider:   sp,
		fetcher:  settings.fetcher,
		filters:  settings.filters,
		metadata: meta.New(),
	}
}

// Spider returns the wrapped spider.
func (s *Scraper) Spider() Spider {
	return s.spider
}

// Filters returns a copy of the filter chain.
func (s *Scraper) Filters() filter.Chain {
	return s.filters.Clone()
}

// Metadata returns a copy of the metadata recorded by the most recent
// crawl.
func (s *Scraper) Metadata() *meta.Metadata {
	return s.metadata.Clone()
}

// Crawl runs a crawl of url and returns the document as a string. An empty
// url crawls the spider's sample URL.
func (s *Scraper) Crawl(ctx context.Context, url string) (string, error) {
	crawl, err := s.run(ctx, url, nil)
	if err != nil {
		return "", err
	}
	return string(crawl.Output), nil
}

// CrawlTo runs a crawl of url and writes the document to w. It returns the
// number of bytes written. Nothing is written if the crawl fails before
// serialization.
func (s *Scraper) CrawlTo(ctx context.Context, url string, w io.Writer) (int64, error) {
	crawl, err := s.run(ctx, url, func(doc *html.Node) (int64, error) {
		return document.Render(w, doc)
	})
	if err != nil {
		return 0, err
	}
	return crawl.Written, nil
}

// CrawlToFile runs a crawl of url and writes the document to the file at
// path, creating parent directories as needed. The file is not created if
// the crawl fails.
func (s *Scraper) CrawlToFile(ctx context.Context, url, path string) (int64, error) {
	crawl, err := s.run(ctx, url, func(doc *html.Node) (int64, error) {
		return document.WriteFile(path, doc)
	})
	if err != nil {
		return 0, err
	}
	return crawl.Written, nil
}

func (s *Scraper) run(ctx context.Context, url string, out sink) (*model.Crawl, error) {
	// Metadata from an earlier crawl must never reach this one.
	s.metadata.Reset()

	if url == "" {
		url = s.spider.SampleURL()
	}
	crawl := model.NewCrawl(s.spider.Name(), url)

	session := &Session{
		Logger:   s.Logger,
		fetcher:  s.fetcher,
		metadata: s.metadata,
	}

	p := pipeline.New(pipeline.WithLogger(s.logger))
	p.AddSteps(
		&parseStep{spider: s.spider, session: session, logger: s.Logger},
		&filterStep{chain: s.filters, logger: s.Logger},
		metadataStep{},
		assembleStep{},
		&serializeStep{sink: out, logger: s.Logger},
	)

	if err := p.Execute(ctx, crawl); err != nil {
		var stepErr *pipeline.StepError
		if errors.As(err, &stepErr) {
			err = stepErr.Err
		}
		s.Critical("crawl failed", failedStageAttrs(crawl, err)...)
		return nil, &StageError{Spider: s.spider.Name(), Stage: crawl.FailedStage, Err: err}
	}
	return crawl, nil
}
