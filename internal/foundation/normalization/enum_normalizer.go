package normalization

import (
	"fmt"
	"strings"
)

// EnumNormalizer normalizes one named configuration setting. Empty input
// resolves to the fallback value.
type EnumNormalizer[T comparable] struct {
	normalizer *Normalizer[T]
	field      string
	fallback   T
}

// NewEnumNormalizer creates a normalizer for the setting named field.
func NewEnumNormalizer[T comparable](field string, values map[string]T, fallback T) *EnumNormalizer[T] {
	return &EnumNormalizer[T]{normalizer: NewNormalizer(values), field: field, fallback: fallback}
}

// Normalize returns the canonical value for raw, or an error naming the
// setting and the accepted values.
func (e *EnumNormalizer[T]) Normalize(raw string) (T, error) {
	if clean(raw) == "" {
		return e.fallback, nil
	}
	if v, ok := e.normalizer.Lookup(raw); ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q (want %s)", e.field, raw, strings.Join(e.normalizer.Keys(), ", "))
}

// ValidValues lists the accepted spellings.
func (e *EnumNormalizer[T]) ValidValues() []string {
	return e.normalizer.Keys()
}
