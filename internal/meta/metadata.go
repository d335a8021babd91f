package meta

import (
	"iter"
)

// TitleKey is the metadata key projected into the document <title>.
const TitleKey = "title"

// Metadata is an ordered string mapping.
// The zero value is ready to use. A Metadata is not safe for concurrent use.
type Metadata struct {
	keys   []string
	values map[string]string
}

// New returns an empty Metadata.
func New() *Metadata {
	return &Metadata{}
}

// Set stores value under key. An existing key keeps its position.
func (m *Metadata) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Metadata) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of entries.
func (m *Metadata) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Metadata) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// All iterates over the entries in insertion order.
func (m *Metadata) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Reset removes every entry.
func (m *Metadata) Reset() {
	m.keys = nil
	m.values = nil
}

// Clone returns an independent copy.
func (m *Metadata) Clone() *Metadata {
	c := &Metadata{
		keys:   m.Keys(),
		values: make(map[string]string, len(m.values)),
	}
	for k, v := range m.values {
		c.values[k] = v
	}
	return c
}
