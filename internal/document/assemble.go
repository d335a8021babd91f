package document

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Assemble composes head elements and a body into a complete document:
// a DocumentNode holding <html>, which holds <head> and body.
// Nodes that are still attached to another tree are detached first.
func Assemble(head []*html.Node, body *html.Node) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	root := newElement(atom.Html)
	doc.AppendChild(root)

	h := newElement(atom.Head)
	for _, n := range head {
		detach(n)
		h.AppendChild(n)
	}
	root.AppendChild(h)

	if body == nil {
		body = newElement(atom.Body)
	}
	detach(body)
	root.AppendChild(body)

	return doc
}

// NewBody returns an empty <body> element holding the given nodes.
func NewBody(nodes ...*html.Node) *html.Node {
	body := newElement(atom.Body)
	for _, n := range nodes {
		if n == nil {
			continue
		}
		detach(n)
		body.AppendChild(n)
	}
	return body
}

func newElement(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}
