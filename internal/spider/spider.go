package spider

import (
	"context"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/storyscraper/internal/filter"
)

// Spider extracts a story from one site.
type Spider interface {
	// Name identifies the spider on the command line and in logs.
	Name() string

	// Domain is the site the spider handles, without a leading "www.".
	Domain() string

	// SampleURL is a story the spider can crawl. It is used when a crawl is
	// started without a URL and in usage listings.
	SampleURL() string

	// Parse fetches url through s and returns the nodes that make up the
	// story body, in document order. It may write metadata with
	// s.SetMeta while running. Spiders for a single story may ignore url.
	Parse(ctx context.Context, s *Session, url string) ([]*html.Node, error)
}

// FilterProvider is implemented by spiders that replace the default filter
// chain. The returned chain is used as is; it is not merged with the
// default.
type FilterProvider interface {
	Filters() filter.Chain
}

// Descriptor implements the descriptive half of Spider. Concrete spiders
// embed it.
type Descriptor struct {
	SpiderName      string
	SpiderDomain    string
	SpiderSampleURL string
}

// Name implements Spider.
func (d Descriptor) Name() string { return d.SpiderName }

// Domain implements Spider.
func (d Descriptor) Domain() string { return d.SpiderDomain }

// SampleURL implements Spider.
func (d Descriptor) SampleURL() string { return d.SpiderSampleURL }

// NormalizeDomain strips a leading "www." from host so it can be compared
// with Spider.Domain. The comparison itself is case-sensitive.
func NormalizeDomain(host string) string {
	return strings.TrimPrefix(host, "www.")
}
