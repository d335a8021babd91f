package spiders

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nao1215/storyscraper/internal/fetch"
	"github.com/nao1215/storyscraper/internal/spider"
)

// AO3 crawls complete works from the Archive of Our Own.
type AO3 struct {
	spider.Descriptor
}

// NewAO3 returns the archiveofourown.org spider.
func NewAO3() *AO3 {
	return &AO3{Descriptor: spider.Descriptor{
		SpiderName:      "ao3",
		SpiderDomain:    "archiveofourown.org",
		SpiderSampleURL: "https://archiveofourown.org/works/4370",
	}}
}

// Parse fetches the full work at url, past the adult content notice, and
// returns a heading followed by the chapters.
func (a *AO3) Parse(ctx context.Context, s *spider.Session, rawURL string) ([]*html.Node, error) {
	target, err := fullWorkURL(rawURL)
	if err != nil {
		return nil, err
	}

	s.Debug("fetching work", "url", target)
	doc, err := s.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}
	if err := doc.CheckStatus(); err != nil {
		return nil, err
	}

	chapters := doc.Find("#chapters").First()
	if chapters.Length() == 0 {
		return nil, fmt.Errorf("%w: no #chapters in %s", spider.ErrNoContent, doc.URL)
	}

	title := text(doc.Find("h2.title").First())
	var authors []string
	doc.Find(`a[rel="author"]`).Each(func(_ int, sel *goquery.Selection) {
		if name := text(sel); name != "" {
			authors = append(authors, name)
		}
	})
	summary := text(doc.Find(".summary blockquote").First())

	if title != "" {
		s.SetMeta("title", title)
	}
	if len(authors) > 0 {
		s.SetMeta("author", strings.Join(authors, ", "))
	}
	if summary != "" {
		s.SetMeta("description", summary)
	}
	s.SetMeta("source", doc.URL)

	content := chapters.Clone()
	content.Find("h3.landmark").Remove()

	var nodes []*html.Node
	if title != "" {
		nodes = append(nodes, heading(atom.H1, title))
	}
	return append(nodes, content.Nodes...), nil
}

func fullWorkURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", fetch.ErrInvalidURL, err)
	}
	q := u.Query()
	q.Set("view_adult", "true")
	q.Set("view_full_work", "true")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

func heading(a atom.Atom, title string) *html.Node {
	h := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	h.AppendChild(&html.Node{Type: html.TextNode, Data: title})
	return h
}
