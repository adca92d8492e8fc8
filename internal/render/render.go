// Package render turns pages into HTML: Markdown conversion with goldmark and
// layout execution with html/template.
package render

import (
	"html/template"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/navigation"
	"git.home.luguber.info/inful/sitegen/internal/pages"
	"git.home.luguber.info/inful/sitegen/internal/pagetype"
	"git.home.luguber.info/inful/sitegen/internal/routes"
)

// Template identifiers understood by Templates.
const (
	TemplatePage      = "page"
	TemplatePost      = "post"
	TemplateDocs      = "docs"
	TemplateTemplated = "templated"
)

// Renderer renders the template identified by templateID with data.
type Renderer interface {
	Render(templateID string, data Data) (string, error)
}

// Converter converts a Markdown body to HTML.
type Converter interface {
	Convert(markdown []byte) (template.HTML, error)
}

// Data is the value templates execute against.
type Data struct {
	Site    config.SiteConfig
	Title   string
	Page    *pages.Page
	Route   routes.Route
	Content template.HTML
	Date    time.Time
	Menu    []navigation.Link
	Sidebar []navigation.Link
}

// Field returns a front matter value by dotted key, or nil.
func (d Data) Field(key string) any {
	if d.Page == nil {
		return nil
	}
	v, _ := d.Page.Field(key)
	return v
}

// TemplateFor returns the template identifier used for a page type.
func TemplateFor(t pagetype.Type) string {
	switch t {
	case pagetype.Templated:
		return TemplateTemplated
	case pagetype.MarkdownPost:
		return TemplatePost
	case pagetype.Documentation:
		return TemplateDocs
	default:
		return TemplatePage
	}
}
