package spider

import (
	"context"

	"github.com/nao1215/storyscraper/internal/fetch"
	"github.com/nao1215/storyscraper/internal/meta"
)

// Session is what a Spider's Parse works through: the fetcher, the crawl's
// metadata and the spider's logger. A Session is valid only during the
// Parse call it was passed to.
type Session struct {
	Logger

	fetcher  *fetch.Fetcher
	metadata *meta.Metadata
}

// Fetch retrieves url with every link made absolute against the final
// response URL. Non-2xx responses are returned, not treated as errors;
// use Document.CheckStatus if the status matters.
func (s *Session) Fetch(ctx context.Context, url string) (*fetch.Document, error) {
	return s.fetcher.Fetch(ctx, url)
}

// SetMeta records a metadata entry. Setting an existing key replaces its
// value and keeps its position. The "title" key becomes the document title.
func (s *Session) SetMeta(key, value string) {
	s.metadata.Set(key, value)
}

// Meta returns the metadata recorded so far in this crawl.
func (s *Session) Meta() *meta.Metadata {
	return s.metadata
}
