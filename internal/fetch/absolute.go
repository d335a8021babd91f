package fetch

import (
	"regexp"
	"strings"

	whatwgUrl "github.com/nlnwa/whatwg-url/url"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// linkAttributes are attributes whose whole value is a single URL.
var linkAttributes = map[string]bool{
	"action":     true,
	"archive":    true,
	"background": true,
	"cite":       true,
	"classid":    true,
	"codebase":   true,
	"data":       true,
	"formaction": true,
	"href":       true,
	"longdesc":   true,
	"manifest":   true,
	"poster":     true,
	"profile":    true,
	"src":        true,
	"usemap":     true,
}

// cssURL matches url(...) references in style sheets and style attributes.
var cssURL = regexp.MustCompile(`url\(\s*(['"]?)([^'")]*?)(['"]?)\s*\)`)

// MakeLinksAbsolute rewrites every relative reference under root against
// base. A <base href> found in the tree is resolved first, used as the base
// instead, and removed. It returns the base that was used.
func MakeLinksAbsolute(root *html.Node, base string) string {
	if b := findBase(root); b != nil {
		if href, ok := attr(b, "href"); ok {
			if resolved, ok := resolve(base, href); ok {
				base = resolved
			}
		}
		b.Parent.RemoveChild(b)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			absolutizeElement(n, base)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return base
}

func absolutizeElement(n *html.Node, base string) {
	for i, a := range n.Attr {
		if a.Namespace != "" {
			continue
		}
		key := strings.ToLower(a.Key)
		switch {
		case linkAttributes[key]:
			if resolved, ok := resolve(base, a.Val); ok {
				n.Attr[i].Val = resolved
			}
		case key == "srcset":
			n.Attr[i].Val = resolveSrcset(base, a.Val)
		case key == "style":
			n.Attr[i].Val = resolveCSS(base, a.Val)
		}
	}

	if n.DataAtom == atom.Style {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				c.Data = resolveCSS(base, c.Data)
			}
		}
	}
}

// resolve resolves ref against base. Empty references and references that
// fail to parse are reported as not ok.
func resolve(base, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	u, err := urlParser.ParseRef(base, ref)
	if err != nil {
		return "", false
	}
	return u.Href(false), true
}

// resolveSrcset resolves each candidate URL of a srcset value and keeps the
// width and density descriptors.
func resolveSrcset(base, srcset string) string {
	candidates := strings.Split(srcset, ",")
	for i, c := range candidates {
		fields := strings.Fields(c)
		if len(fields) == 0 {
			continue
		}
		if resolved, ok := resolve(base, fields[0]); ok {
			fields[0] = resolved
		}
		candidates[i] = strings.Join(fields, " ")
	}
	return strings.Join(candidates, ", ")
}

func resolveCSS(base, css string) string {
	return cssURL.ReplaceAllStringFunc(css, func(m string) string {
		parts := cssURL.FindStringSubmatch(m)
		if parts[1] != parts[3] {
			return m
		}
		if strings.HasPrefix(parts[2], "data:") {
			return m
		}
		resolved, ok := resolve(base, parts[2])
		if !ok {
			return m
		}
		return "url(" + parts[1] + resolved + parts[3] + ")"
	})
}

func findBase(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Base {
		if _, ok := attr(n, "href"); ok {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBase(c); b != nil {
			return b
		}
	}
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
