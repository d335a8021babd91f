package filter

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Selectors of elements that never belong in a story body.
const scriptSelector = "script, style, noscript, iframe, object, embed, template"

// Selectors of elements that count as content even without text.
const mediaSelector = "img, picture, video, audio, svg, canvas, math, table, hr"

// Attributes that carry URLs and may hold javascript: links.
var urlAttributes = map[string]bool{
	"href": true, "src": true, "action": true, "formaction": true,
	"background": true, "poster": true, "data": true,
}

// invisibleReplacer removes zero-width characters left by rich text editors.
var nbspRun = regexp.MustCompile("\u00a0{2,}")

var invisibleReplacer = strings.NewReplacer(
	"\u200b", "",
	"\u200c", "",
	"\u2060", "",
	"\ufeff", "",
)

// StripScripts removes scripts, styles and embedded objects.
func StripScripts(body *html.Node) error {
	goquery.NewDocumentFromNode(body).Find(scriptSelector).Remove()
	return nil
}

// StripComments removes every comment node.
func StripComments(body *html.Node) error {
	var comments []*html.Node
	walk(body, func(n *html.Node) {
		if n.Type == html.CommentNode {
			comments = append(comments, n)
		}
	})
	for _, c := range comments {
		c.Parent.RemoveChild(c)
	}
	return nil
}

// StripEventHandlers removes on* attributes and javascript: URLs.
func StripEventHandlers(body *html.Node) error {
	walk(body, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			key := strings.ToLower(a.Key)
			if strings.HasPrefix(key, "on") {
				continue
			}
			if urlAttributes[key] && isJavaScriptURL(a.Val) {
				continue
			}
			kept = append(kept, a)
		}
		n.Attr = kept
	})
	return nil
}

// NormalizeText converts text to Unicode NFC, drops zero-width characters
// and collapses runs of no-break spaces into one.
func NormalizeText(body *html.Node) error {
	walk(body, func(n *html.Node) {
		if n.Type == html.TextNode {
			text := norm.NFC.String(invisibleReplacer.Replace(n.Data))
			n.Data = nbspRun.ReplaceAllLiteralString(text, "\u00a0")
		}
	})
	return nil
}

// asciiSpace is the whitespace HTML collapses. U+00A0 is not part of it.
const asciiSpace = " \t\n\r\f"

// RemoveEmpty removes p, div and span elements holding neither text nor media.
// Nested empty elements are removed innermost first. A span holding only
// whitespace is replaced by a single space so the words around it stay
// apart, and no-break spaces count as text.
func RemoveEmpty(body *html.Node) error {
	sel := goquery.NewDocumentFromNode(body).Find("p, div, span")
	for i := sel.Length() - 1; i >= 0; i-- {
		s := sel.Eq(i)
		text := s.Text()
		if strings.Trim(text, asciiSpace) != "" {
			continue
		}
		if s.Find(mediaSelector).Length() > 0 {
			continue
		}
		if text != "" && goquery.NodeName(s) == "span" {
			s.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: " "})
			continue
		}
		s.Remove()
	}
	return nil
}

func isJavaScriptURL(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "vbscript:")
}

// walk visits n and its descendants in document order.
// The callback may modify attributes but must not restructure the tree.
func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}
