package frontmatter

import (
	"fmt"
	"strconv"
	"strings"
)

// Fields is a parsed front matter map. Nested maps are addressed with dotted
// keys ("navigation.label").
type Fields map[string]any

// Get returns the value stored under a dotted key.
func (f Fields) Get(key string) (any, bool) {
	var cur any = map[string]any(f)
	for _, part := range strings.Split(key, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Has reports whether key is present.
func (f Fields) Has(key string) bool {
	_, ok := f.Get(key)
	return ok
}

// String returns key as a string. Scalars are formatted; maps and lists are not.
func (f Fields) String(key string) (string, bool) {
	v, ok := f.Get(key)
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case int, int64, float64, bool:
		return fmt.Sprint(t), true
	default:
		return "", false
	}
}

// Int returns key as an int, accepting integral floats and numeric strings.
func (f Fields) Int(key string) (int, bool) {
	v, ok := f.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t == float64(int(t)) {
			return int(t), true
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Bool returns key as a bool, accepting "true"/"false" strings.
func (f Fields) Bool(key string) (bool, bool) {
	v, ok := f.Get(key)
	if !ok {
		return false, false
	}
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b, true
		}
	}
	return false, false
}

// Set stores value under a dotted key, creating intermediate maps. An existing
// scalar on the path is replaced by a map.
func (f Fields) Set(key string, value any) {
	parts := strings.Split(key, ".")
	m := map[string]any(f)
	for _, part := range parts[:len(parts)-1] {
		next, ok := asMap(m[part])
		if !ok {
			next = map[string]any{}
			m[part] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Fields:
		return map[string]any(t), true
	}
	return nil, false
}
