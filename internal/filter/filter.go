package filter

import (
	"fmt"
	"log/slog"
	"reflect"
	"runtime"
	"slices"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Filter is one transformation unit of a chain.
type Filter interface {
	// Name identifies the filter in logs.
	Name() string

	// Apply mutates the descendants of body in place.
	Apply(body *html.Node) error
}

// funcFilter adapts a plain function to Filter.
type funcFilter struct {
	name string
	fn   func(*html.Node) error
}

func (f *funcFilter) Name() string                { return f.name }
func (f *funcFilter) Apply(body *html.Node) error { return f.fn(body) }

// Func adapts fn to a Filter named after the fully-qualified symbol of fn,
// e.g. "github.com/nao1215/storyscraper/internal/filter.StripComments".
func Func(fn func(*html.Node) error) Filter {
	return &funcFilter{name: funcName(fn), fn: fn}
}

// Named adapts fn to a Filter with an explicit name.
func Named(name string, fn func(*html.Node) error) Filter {
	return &funcFilter{name: name, fn: fn}
}

func funcName(fn any) string {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return fmt.Sprintf("%T", fn)
	}
	return f.Name()
}

// Chain is an ordered list of filters.
// Chains are treated as values: methods never modify the receiver.
type Chain []Filter

// Names returns the filter names in order.
func (c Chain) Names() []string {
	names := make([]string, len(c))
	for i, f := range c {
		names[i] = f.Name()
	}
	return names
}

// Clone returns a copy of the chain.
func (c Chain) Clone() Chain {
	return slices.Clone(c)
}

// Without returns a copy of the chain without filters named like any of fs.
func (c Chain) Without(fs ...Filter) Chain {
	out := make(Chain, 0, len(c))
	for _, f := range c {
		if !slices.ContainsFunc(fs, func(x Filter) bool { return x.Name() == f.Name() }) {
			out = append(out, f)
		}
	}
	return out
}

// Apply runs every filter of the chain over body, in order.
// It stops at the first failing filter and returns an *Error for it.
func (c Chain) Apply(body *html.Node, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if !isBody(body) {
		return ErrNotBody
	}

	parent := body.Parent
	for i, f := range c {
		logger.Debug("running filter", "filter", f.Name(), "index", i)

		if err := f.Apply(body); err != nil {
			return &Error{Index: i, Name: f.Name(), Err: err}
		}
		if !isBody(body) || body.Parent != parent {
			return &Error{Index: i, Name: f.Name(), Err: ErrBodyReplaced}
		}
	}
	return nil
}

func isBody(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == atom.Body
}
