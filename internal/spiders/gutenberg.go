package spiders

import (
	"context"
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/nao1215/storyscraper/internal/filter"
	"github.com/nao1215/storyscraper/internal/spider"
)

// boilerplateXPath matches the Project Gutenberg license header and footer.
const boilerplateXPath = `//*[@id='pg-header' or @id='pg-footer']` +
	` | //section[contains(concat(' ', normalize-space(@class), ' '), ' pg-boilerplate ')]`

// Gutenberg crawls HTML ebooks from Project Gutenberg.
type Gutenberg struct {
	spider.Descriptor
}

// NewGutenberg returns the gutenberg.org spider.
func NewGutenberg() *Gutenberg {
	return &Gutenberg{Descriptor: spider.Descriptor{
		SpiderName:      "gutenberg",
		SpiderDomain:    "gutenberg.org",
		SpiderSampleURL: "https://www.gutenberg.org/cache/epub/11/pg11-images.html",
	}}
}

// Filters keeps empty elements. Ebooks use empty divs and spans as page
// and section markers.
func (g *Gutenberg) Filters() filter.Chain {
	return filter.Default().Without(filter.MustLookup(filter.NameRemoveEmpty))
}

// Parse returns the ebook's body without the Project Gutenberg boilerplate.
func (g *Gutenberg) Parse(ctx context.Context, s *spider.Session, url string) ([]*html.Node, error) {
	doc, err := s.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := doc.CheckStatus(); err != nil {
		return nil, err
	}

	boilerplate, err := doc.XPath(boilerplateXPath)
	if err != nil {
		return nil, err
	}
	for _, n := range boilerplate {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
	s.Debug("removed boilerplate", "sections", len(boilerplate))

	title := doc.Title()
	if h1 := htmlquery.FindOne(doc.Root, "//body//h1"); h1 != nil {
		title = strings.Join(strings.Fields(htmlquery.InnerText(h1)), " ")
	}
	if title != "" {
		s.SetMeta("title", title)
	}
	if author := metaContent(doc.Root, "dc.creator"); author != "" {
		s.SetMeta("author", author)
	}
	if lang := metaContent(doc.Root, "dc.language"); lang != "" {
		s.SetMeta("language", lang)
	}
	s.SetMeta("source", doc.URL)

	body := htmlquery.FindOne(doc.Root, "//body")
	if body == nil {
		return nil, fmt.Errorf("%w: no body in %s", spider.ErrNoContent, doc.URL)
	}

	var nodes []*html.Node
	hasElement := false
	for c := body.FirstChild; c != nil; {
		next := c.NextSibling
		body.RemoveChild(c)
		if c.Type == html.ElementNode {
			hasElement = true
		}
		nodes = append(nodes, c)
		c = next
	}
	if !hasElement {
		return nil, fmt.Errorf("%w: empty body in %s", spider.ErrNoContent, doc.URL)
	}
	return nodes, nil
}

func metaContent(root *html.Node, name string) string {
	n := htmlquery.FindOne(root, fmt.Sprintf("//meta[@name=%q]", name))
	if n == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.SelectAttr(n, "content"))
}
