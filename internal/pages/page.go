// Package pages parses discovered source files into immutable Page values.
package pages

import (
	"path"
	"regexp"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
	"git.home.luguber.info/inful/sitegen/internal/pagetype"
)

// Page is one parsed source file. Pages are created by the Registry and are
// read-only afterwards.
type Page struct {
	identifier string
	pageType   pagetype.Type
	sourcePath string
	matter     frontmatter.Fields
	rawMatter  string
	body       string
	title      string
	order      int
	hasOrder   bool
}

func (p *Page) Identifier() string         { return p.identifier }
func (p *Page) Type() pagetype.Type        { return p.pageType }
func (p *Page) SourcePath() string         { return p.sourcePath }
func (p *Page) Matter() frontmatter.Fields { return p.matter }
func (p *Page) RawMatter() string          { return p.rawMatter }
func (p *Page) Body() string               { return p.body }

// Title is the front matter title, else the first level-1 heading of the
// body, else the humanized identifier.
func (p *Page) Title() string { return p.title }

// Basename is the last segment of the identifier.
func (p *Page) Basename() string { return path.Base(p.identifier) }

// OrderPrefix returns the numeric filename prefix when numerical ordering is on.
func (p *Page) OrderPrefix() (int, bool) { return p.order, p.hasOrder }

// Field returns a front matter value by dotted key.
func (p *Page) Field(key string) (any, bool) { return p.matter.Get(key) }

// NavigationLabel returns navigation.label from front matter.
func (p *Page) NavigationLabel() (string, bool) { return nonEmpty(p.matter.String("navigation.label")) }

// NavigationPriority returns navigation.priority from front matter.
func (p *Page) NavigationPriority() (int, bool) { return p.matter.Int("navigation.priority") }

// NavigationGroup returns navigation.group from front matter.
func (p *Page) NavigationGroup() (string, bool) { return nonEmpty(p.matter.String("navigation.group")) }

// Hidden returns navigation.hidden and whether the page set it explicitly.
func (p *Page) Hidden() (hidden bool, explicit bool) { return p.matter.Bool("navigation.hidden") }

// Description returns the front matter description, if any.
func (p *Page) Description() string {
	d, _ := p.matter.String("description")
	return d
}

var datePrefix = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[-_]`)

// Date returns the front matter date, falling back to a YYYY-MM-DD prefix of
// the basename (the usual blog post naming).
func (p *Page) Date() (time.Time, bool) {
	if v, ok := p.matter.Get("date"); ok {
		switch t := v.(type) {
		case time.Time:
			return t, true
		case string:
			for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
				if d, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
					return d, true
				}
			}
		}
	}
	if m := datePrefix.FindStringSubmatch(p.Basename()); m != nil {
		if d, err := time.Parse("2006-01-02", m[1]); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func nonEmpty(s string, ok bool) (string, bool) {
	s = strings.TrimSpace(s)
	return s, ok && s != ""
}
