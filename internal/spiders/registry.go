package spiders

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sync"

	"github.com/nao1215/storyscraper/internal/spider"
)

var (
	// ErrUnknownSpider is returned when no spider is registered under a name
	// or for a domain.
	ErrUnknownSpider = errors.New("unknown spider")

	// ErrDuplicateSpider is returned when a name is registered twice.
	ErrDuplicateSpider = errors.New("spider already registered")
)

// Constructor creates a fresh spider.
type Constructor func() spider.Spider

type entry struct {
	name   string
	domain string
	create Constructor
}

// Registry maps spider names to constructors. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a spider. The constructor is called once to read the
// spider's name and domain.
func (r *Registry) Register(create Constructor) error {
	sp := create()
	name := sp.Name()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSpider, name)
	}
	r.entries[name] = entry{
		name:   name,
		domain: spider.NormalizeDomain(sp.Domain()),
		create: create,
	}
	return nil
}

// Lookup returns a new spider registered under name.
func (r *Registry) Lookup(name string) (spider.Spider, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSpider, name)
	}
	return e.create(), nil
}

// Match returns a new spider whose domain equals the host of rawURL. A
// leading "www." on the host is ignored; the comparison is case-sensitive.
func (r *Registry) Match(rawURL string) (spider.Spider, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: no spider for %q", ErrUnknownSpider, rawURL)
	}
	host := spider.NormalizeDomain(u.Hostname())

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.sortedNames() {
		e := r.entries[name]
		if e.domain == host {
			return e.create(), nil
		}
	}
	return nil, fmt.Errorf("%w: no spider for domain %s", ErrUnknownSpider, host)
}

// All returns a new instance of every registered spider, sorted by name.
func (r *Registry) All() []spider.Spider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]spider.Spider, 0, len(r.entries))
	for _, name := range r.sortedNames() {
		all = append(all, r.entries[name].create())
	}
	return all
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames()
}

func (r *Registry) sortedNames() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Default returns a Registry holding the built-in spiders.
func Default() *Registry {
	r := NewRegistry()
	for _, c := range []Constructor{
		func() spider.Spider { return NewAO3() },
		func() spider.Spider { return NewGutenberg() },
	} {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
	return r
}
