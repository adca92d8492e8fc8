// Package normalization maps loosely written configuration strings onto
// typed enum values.
package normalization

import (
	"sort"
	"strings"
)

// Normalizer looks values up by their trimmed, lower-cased key.
type Normalizer[T comparable] struct {
	values map[string]T
	keys   []string // sorted, for error messages
}

// NewNormalizer builds a Normalizer from key -> value pairs. Keys are
// cleaned the same way lookups are.
func NewNormalizer[T comparable](values map[string]T) *Normalizer[T] {
	n := &Normalizer[T]{values: make(map[string]T, len(values)), keys: make([]string, 0, len(values))}
	for k, v := range values {
		key := clean(k)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	sort.Strings(n.keys)
	return n
}

// Lookup returns the value registered for raw.
func (n *Normalizer[T]) Lookup(raw string) (T, bool) {
	v, ok := n.values[clean(raw)]
	return v, ok
}

// Keys returns the accepted keys in sorted order.
func (n *Normalizer[T]) Keys() []string {
	return append([]string(nil), n.keys...)
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
