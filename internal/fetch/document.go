package fetch

import (
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Document is a fetched page.
type Document struct {
	// Root is the parsed document node.
	Root *html.Node

	// URL is the final response URL, after redirects.
	URL string

	// BaseURL is the URL links were resolved against. It differs from URL
	// only when the page declared a <base href>.
	BaseURL string

	// StatusCode is the HTTP status code of the final response.
	StatusCode int

	// Header holds the final response headers. It is nil for browser-rendered
	// pages.
	Header http.Header
}

// OK reports whether the response status was 2xx.
func (d *Document) OK() bool {
	return d.StatusCode >= 200 && d.StatusCode < 300
}

// CheckStatus returns a *StatusError unless the response status was 2xx.
func (d *Document) CheckStatus() error {
	if d.OK() {
		return nil
	}
	return &StatusError{URL: d.URL, Code: d.StatusCode}
}

// Find selects nodes with a CSS selector.
func (d *Document) Find(selector string) *goquery.Selection {
	return goquery.NewDocumentFromNode(d.Root).Find(selector)
}

// XPath selects nodes with an XPath expression.
func (d *Document) XPath(expr string) ([]*html.Node, error) {
	return htmlquery.QueryAll(d.Root, expr)
}

// Title returns the trimmed text of the <title> element, if any.
func (d *Document) Title() string {
	return trimmedText(d.Find("head > title").First())
}

func trimmedText(s *goquery.Selection) string {
	return collapseSpace(s.Text())
}

// Clone returns deep copies of the nodes in s, detached from any tree, ready
// to be returned from a spider's Parse.
func Clone(s *goquery.Selection) []*html.Node {
	return s.Clone().Nodes
}
