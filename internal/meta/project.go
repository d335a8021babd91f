package meta

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Project converts metadata into head elements.
// The result always has m.Len()+1 elements, the charset declaration first.
// A nil m projects to the charset declaration alone.
func Project(m *Metadata) []*html.Node {
	nodes := []*html.Node{element(atom.Meta, html.Attribute{Key: "charset", Val: "UTF-8"})}
	if m == nil {
		return nodes
	}

	for name, content := range m.All() {
		if name == TitleKey {
			title := element(atom.Title)
			title.AppendChild(&html.Node{Type: html.TextNode, Data: content})
			nodes = append(nodes, title)
			continue
		}
		nodes = append(nodes, element(atom.Meta,
			html.Attribute{Key: "name", Val: name},
			html.Attribute{Key: "content", Val: content},
		))
	}
	return nodes
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}
