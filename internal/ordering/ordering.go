// Package ordering parses the numeric filename prefixes ("01-intro",
// "2_setup") used to order pages without front matter.
package ordering

import (
	"strconv"
	"strings"
)

// HasNumericPrefix reports whether the last path segment of identifier starts
// with digits followed by '-' or '_'.
func HasNumericPrefix(identifier string) bool {
	_, _, ok := splitSegment(leaf(identifier))
	return ok
}

// SplitNumericPrefix strips numeric prefixes from every path segment of
// identifier and returns the leaf segment's prefix value with the stripped
// path. Identifiers without a leaf prefix return 0 and the de-prefixed path.
// A segment that is nothing but a prefix is left intact.
func SplitNumericPrefix(identifier string) (int, string) {
	segments := strings.Split(identifier, "/")
	value := 0
	for i, seg := range segments {
		n, rest, ok := splitSegment(seg)
		if !ok {
			continue
		}
		// "01-" keeps its name; only its order value is taken.
		if rest != "" {
			segments[i] = rest
		}
		if i == len(segments)-1 {
			value = n
		}
	}
	return value, strings.Join(segments, "/")
}

// StripNumericPrefix returns identifier with every segment's numeric prefix removed.
func StripNumericPrefix(identifier string) string {
	_, rest := SplitNumericPrefix(identifier)
	return rest
}

func leaf(identifier string) string {
	if i := strings.LastIndexByte(identifier, '/'); i >= 0 {
		return identifier[i+1:]
	}
	return identifier
}

// splitSegment splits "02-installation" into (2, "installation") and "01-"
// into (1, "").
func splitSegment(seg string) (int, string, bool) {
	i := 0
	for i < len(seg) && seg[i] >= '0' && seg[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(seg) || (seg[i] != '-' && seg[i] != '_') {
		return 0, seg, false
	}
	n, err := strconv.Atoi(seg[:i])
	if err != nil {
		return 0, seg, false
	}
	return n, seg[i+1:], true
}
