// Package frontmatter extracts page metadata from source files: YAML blocks
// at the top of Markdown documents and directive comments in templates.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrParse is the root of every front matter syntax error.
var ErrParse = errors.New("front matter parse error")

// ErrMissingClosingDelimiter indicates the document started with a YAML
// front matter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = fmt.Errorf("%w: yaml start delimiter found but closing delimiter is missing", ErrParse)

// Split separates YAML front matter (`---` delimited on both ends) from the
// Markdown body.
//
// If the document does not start with a delimiter line, had is false and body
// is the full input.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	rest := content[start:]

	// Empty block.
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}
	if bytes.Equal(rest, []byte("---")) {
		return []byte{}, []byte{}, true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	if idx := bytes.Index(rest, closeSeq); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, nil
	}

	// Closing delimiter on the last line without a trailing newline.
	closeEOF := []byte(nl + "---")
	if bytes.HasSuffix(rest, closeEOF) {
		return rest[:len(rest)-len(closeEOF)+len(nl)], []byte{}, true, nil
	}
	return nil, nil, false, ErrMissingClosingDelimiter
}

// ParseYAML parses raw YAML front matter (without delimiters) into a map.
func ParseYAML(frontmatter []byte) (Fields, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return Fields{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return Fields(fields), nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
