// Package sets provides a minimal generic set.
package sets

// Set is a hash set of comparable keys.
type Set[T comparable] map[T]struct{}

// New creates a set holding vals.
func New[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts v.
func (s Set[T]) Add(v T) { s[v] = struct{}{} }

// Has reports whether v is present.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Insert adds v and reports whether it was absent before.
func (s Set[T]) Insert(v T) bool {
	if s.Has(v) {
		return false
	}
	s.Add(v)
	return true
}
