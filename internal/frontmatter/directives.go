package frontmatter

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNestedArray is returned for directive values with brackets inside brackets.
var ErrNestedArray = fmt.Errorf("%w: nested arrays are not supported", ErrParse)

const (
	directiveOpen  = "{{/* @"
	directiveClose = "*/}}"
)

var numeric = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

var directiveKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*(\.[A-Za-z_][A-Za-z0-9_-]*)*$`)

// ParseDirectives extracts front matter from directive lines of a template:
//
//	{{/* @title = "About us" */}}
//	{{/* @navigation.priority = 20 */}}
//	{{/* @tags = [go, "static sites"] */}}
//	{{/* @author = [name: Ada, url: "https://example.com"] */}}
//
// Each line sets exactly one key. Dotted keys nest. Values are strings,
// integers, floats, booleans or a single-level bracket list; a list whose
// items are all "key: value" pairs becomes a map. The lines are template
// comments, so the template renders unchanged.
func ParseDirectives(content []byte) (Fields, error) {
	fields := Fields{}
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, directiveOpen) {
			continue
		}
		key, value, err := parseDirectiveLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		fields.Set(key, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return fields, nil
}

func parseDirectiveLine(line string) (string, any, error) {
	if !strings.HasSuffix(line, directiveClose) {
		return "", nil, fmt.Errorf("%w: directive is not closed with %q", ErrParse, directiveClose)
	}
	inner := strings.TrimSpace(line[len(directiveOpen) : len(line)-len(directiveClose)])
	key, raw, ok := strings.Cut(inner, "=")
	if !ok {
		return "", nil, fmt.Errorf("%w: directive %q has no '='", ErrParse, inner)
	}
	key = strings.TrimSpace(key)
	if !directiveKey.MatchString(key) {
		return "", nil, fmt.Errorf("%w: invalid directive key %q", ErrParse, key)
	}
	value, err := parseDirectiveValue(strings.TrimSpace(raw))
	if err != nil {
		return "", nil, fmt.Errorf("@%s: %w", key, err)
	}
	return key, value, nil
}

func parseDirectiveValue(raw string) (any, error) {
	if !strings.HasPrefix(raw, "[") {
		if strings.HasSuffix(raw, "]") && !isQuoted(raw) {
			return nil, fmt.Errorf("%w: unbalanced ']' in %q", ErrParse, raw)
		}
		return parseScalar(raw)
	}
	if !strings.HasSuffix(raw, "]") {
		return nil, fmt.Errorf("%w: unterminated list %q", ErrParse, raw)
	}
	body := raw[1 : len(raw)-1]
	items, err := splitItems(body)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []any{}, nil
	}
	if _, _, isPair := cutPair(items[0]); isPair {
		return parsePairs(items)
	}
	list := make([]any, 0, len(items))
	for _, item := range items {
		v, err := parseScalar(item)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, nil
}

func parsePairs(items []string) (map[string]any, error) {
	out := make(map[string]any, len(items))
	for _, item := range items {
		k, v, ok := cutPair(item)
		if !ok {
			return nil, fmt.Errorf("%w: mixed list and map items in %q", ErrParse, item)
		}
		val, err := parseScalar(v)
		if err != nil {
			return nil, err
		}
		out[k] = val
	}
	return out, nil
}

// splitItems splits a list body on commas outside quotes and rejects nesting.
func splitItems(body string) ([]string, error) {
	var items []string
	var cur strings.Builder
	var quote rune
	for _, r := range body {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			cur.WriteRune(r)
		case r == '[' || r == ']':
			return nil, ErrNestedArray
		case r == ',':
			items = append(items, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("%w: unterminated quote in %q", ErrParse, body)
	}
	if last := strings.TrimSpace(cur.String()); last != "" || len(items) > 0 {
		items = append(items, last)
	}
	for _, item := range items {
		if item == "" {
			return nil, fmt.Errorf("%w: empty list item in %q", ErrParse, body)
		}
	}
	return items, nil
}

// cutPair splits "key: value" when the key is an unquoted identifier.
func cutPair(item string) (string, string, bool) {
	if isQuoted(item) {
		return "", "", false
	}
	k, v, ok := strings.Cut(item, ":")
	if !ok {
		return "", "", false
	}
	k = strings.TrimSpace(k)
	if !directiveKey.MatchString(k) || strings.Contains(k, ".") {
		return "", "", false
	}
	return k, strings.TrimSpace(v), true
}

func parseScalar(raw string) (any, error) {
	if isQuoted(raw) {
		return raw[1 : len(raw)-1], nil
	}
	if len(raw) > 0 && (raw[0] == '"' || raw[0] == '\'') {
		return nil, fmt.Errorf("%w: unterminated quote in %q", ErrParse, raw)
	}
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "":
		return "", nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	if numeric.MatchString(raw) {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f, nil
		}
	}
	return raw, nil
}

func isQuoted(s string) bool {
	return len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0]
}
