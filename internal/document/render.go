package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Doctype is written before the document element.
const Doctype = "<!doctype html>"

const indentUnit = "  "

// blockElements start on their own line.
var blockElements = map[atom.Atom]bool{
	atom.Html: true, atom.Head: true, atom.Body: true,
	atom.Title: true, atom.Meta: true, atom.Link: true, atom.Base: true,
	atom.Address: true, atom.Article: true, atom.Aside: true,
	atom.Blockquote: true, atom.Details: true, atom.Dialog: true,
	atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Fieldset: true, atom.Figcaption: true, atom.Figure: true,
	atom.Footer: true, atom.Form: true, atom.H1: true, atom.H2: true,
	atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hgroup: true, atom.Hr: true, atom.Li: true,
	atom.Main: true, atom.Nav: true, atom.Ol: true, atom.P: true,
	atom.Section: true, atom.Summary: true, atom.Table: true,
	atom.Caption: true, atom.Thead: true, atom.Tbody: true, atom.Tfoot: true,
	atom.Tr: true, atom.Td: true, atom.Th: true, atom.Ul: true,
	atom.Pre: true, atom.Textarea: true, atom.Script: true,
	atom.Style: true, atom.Noscript: true,
}

// verbatimElements are rendered as-is on a single logical line.
var verbatimElements = map[atom.Atom]bool{
	atom.Pre: true, atom.Textarea: true, atom.Script: true, atom.Style: true,
	atom.Noscript: true,
}

// voidElements have no end tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Render writes the document to w. The document is formatted completely
// before anything is written, so a formatting error writes nothing.
// It returns the number of bytes written.
func Render(w io.Writer, doc *html.Node) (int64, error) {
	var buf bytes.Buffer
	if err := format(&buf, doc); err != nil {
		return 0, err
	}
	return buf.WriteTo(w)
}

// String renders the document to a string.
func String(doc *html.Node) (string, error) {
	var sb strings.Builder
	if _, err := Render(&sb, doc); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteFile renders the document to the file at path, creating parent
// directories as needed. An existing file is truncated.
func WriteFile(path string, doc *html.Node) (int64, error) {
	var buf bytes.Buffer
	if err := format(&buf, doc); err != nil {
		return 0, err
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return 0, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return 0, err
	}
	return int64(buf.Len()), nil
}

func format(buf *bytes.Buffer, doc *html.Node) error {
	if doc == nil {
		return ErrNilDocument
	}

	buf.WriteString(Doctype)
	buf.WriteByte('\n')

	if doc.Type != html.DocumentNode {
		return formatNode(buf, doc, 0)
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.DoctypeNode {
			continue
		}
		if err := formatNode(buf, c, 0); err != nil {
			return err
		}
	}
	return nil
}

// formatNode writes a node that starts on its own line.
func formatNode(buf *bytes.Buffer, n *html.Node, depth int) error {
	if !isBlock(n) {
		return formatRun(buf, []*html.Node{n}, depth)
	}

	indent(buf, depth)
	if verbatimElements[atomOf(n)] {
		if err := html.Render(buf, n); err != nil {
			return err
		}
		buf.WriteByte('\n')
		return nil
	}

	writeStartTag(buf, n)
	if voidElements[n.Data] {
		buf.WriteByte('\n')
		return nil
	}

	if !hasBlockChild(n) {
		var inner bytes.Buffer
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&inner, c); err != nil {
				return err
			}
		}
		// A title is metadata and keeps its text exactly.
		if atomOf(n) == atom.Title {
			buf.Write(inner.Bytes())
		} else {
			buf.WriteString(strings.TrimSpace(inner.String()))
		}
		writeEndTag(buf, n)
		buf.WriteByte('\n')
		return nil
	}

	buf.WriteByte('\n')
	var run []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !isBlock(c) {
			run = append(run, c)
			continue
		}
		if err := formatRun(buf, run, depth+1); err != nil {
			return err
		}
		run = run[:0]
		if err := formatNode(buf, c, depth+1); err != nil {
			return err
		}
	}
	if err := formatRun(buf, run, depth+1); err != nil {
		return err
	}
	indent(buf, depth)
	writeEndTag(buf, n)
	buf.WriteByte('\n')
	return nil
}

// formatRun writes consecutive inline nodes on one line.
// Runs holding only whitespace are dropped.
func formatRun(buf *bytes.Buffer, run []*html.Node, depth int) error {
	if len(run) == 0 {
		return nil
	}
	var inner bytes.Buffer
	for _, n := range run {
		if err := html.Render(&inner, n); err != nil {
			return err
		}
	}
	line := strings.TrimSpace(inner.String())
	if line == "" {
		return nil
	}
	indent(buf, depth)
	buf.WriteString(line)
	buf.WriteByte('\n')
	return nil
}

func writeStartTag(buf *bytes.Buffer, n *html.Node) {
	buf.WriteByte('<')
	buf.WriteString(n.Data)
	for _, a := range n.Attr {
		buf.WriteByte(' ')
		if a.Namespace != "" {
			buf.WriteString(a.Namespace)
			buf.WriteByte(':')
		}
		buf.WriteString(a.Key)
		buf.WriteString(`="`)
		buf.WriteString(html.EscapeString(a.Val))
		buf.WriteByte('"')
	}
	buf.WriteByte('>')
}

func writeEndTag(buf *bytes.Buffer, n *html.Node) {
	buf.WriteString("</")
	buf.WriteString(n.Data)
	buf.WriteByte('>')
}

func indent(buf *bytes.Buffer, depth int) {
	for range depth {
		buf.WriteString(indentUnit)
	}
}

func isBlock(n *html.Node) bool {
	return n.Type == html.ElementNode && blockElements[atomOf(n)]
}

// atomOf returns the atom of an element, looking it up by name for nodes
// built by hand without DataAtom.
func atomOf(n *html.Node) atom.Atom {
	if n.DataAtom != 0 {
		return n.DataAtom
	}
	return atom.Lookup([]byte(n.Data))
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlock(c) {
			return true
		}
	}
	return false
}
