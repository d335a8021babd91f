package filter

import (
	"fmt"
	"slices"
	"strings"
)

// Short names of the built-in filters, in default chain order.
const (
	NameStripScripts       = "strip-scripts"
	NameStripComments      = "strip-comments"
	NameStripEventHandlers = "strip-event-handlers"
	NameNormalizeText      = "normalize-text"
	NameRemoveEmpty        = "remove-empty"
)

var builtins = map[string]Filter{
	NameStripScripts:       Func(StripScripts),
	NameStripComments:      Func(StripComments),
	NameStripEventHandlers: Func(StripEventHandlers),
	NameNormalizeText:      Func(NormalizeText),
	NameRemoveEmpty:        Func(RemoveEmpty),
}

var defaultOrder = []string{
	NameStripScripts,
	NameStripComments,
	NameStripEventHandlers,
	NameNormalizeText,
	NameRemoveEmpty,
}

// Default returns a fresh copy of the default chain.
func Default() Chain {
	c := make(Chain, len(defaultOrder))
	for i, name := range defaultOrder {
		c[i] = builtins[name]
	}
	return c
}

// Lookup returns the built-in filter registered under name.
func Lookup(name string) (Filter, error) {
	f, ok := builtins[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}
	return f, nil
}

// MustLookup is like Lookup but panics on unknown names.
// It is intended for package-level chain definitions.
func MustLookup(name string) Filter {
	f, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return f
}

// Resolve builds a chain from built-in filter names, keeping their order.
func Resolve(names []string) (Chain, error) {
	c := make(Chain, 0, len(names))
	for _, name := range names {
		f, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		c = append(c, f)
	}
	return c, nil
}

// BuiltinNames returns the short names of every built-in filter, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ShortName returns the registry name of f if it is a built-in filter, and
// f.Name() otherwise.
func ShortName(f Filter) string {
	for name, b := range builtins {
		if b.Name() == f.Name() {
			return name
		}
	}
	return f.Name()
}

// ShortNames returns ShortName for every filter of c, in order.
func (c Chain) ShortNames() []string {
	names := make([]string, len(c))
	for i, f := range c {
		names[i] = ShortName(f)
	}
	return names
}
