package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Goldmark converts GitHub-flavoured Markdown with generated heading IDs.
type Goldmark struct {
	md goldmark.Markdown
}

// NewGoldmark creates the default Markdown converter.
func NewGoldmark() *Goldmark {
	return &Goldmark{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)}
}

// Convert renders markdown to HTML.
func (g *Goldmark) Convert(markdown []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := g.md.Convert(markdown, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	// #nosec G203 -- goldmark escapes raw HTML unless configured otherwise.
	return template.HTML(buf.String()), nil
}
