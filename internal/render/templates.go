package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/pages"
)

//go:embed layouts/*.gohtml
var embeddedLayouts embed.FS

// ErrUnknownTemplate is returned for template identifiers without a layout.
var ErrUnknownTemplate = errors.New("unknown template")

var layoutNames = []string{TemplatePage, TemplatePost, TemplateDocs}

// Templates renders pages with html/template. The partials in base.gohtml
// and the page, post and docs layouts are embedded and can be replaced by
// files of the same name in the project's layouts directory.
type Templates struct {
	base    *template.Template
	layouts map[string]*template.Template
}

// NewTemplates parses the embedded layouts and any overrides in layoutDir.
func NewTemplates(layoutDir string) (*Templates, error) {
	raw, err := layoutSource(layoutDir, "base")
	if err != nil {
		return nil, err
	}
	base, err := template.New("base").Funcs(funcMap()).Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base layout: %w", err)
	}

	t := &Templates{base: base, layouts: make(map[string]*template.Template, len(layoutNames))}
	for _, name := range layoutNames {
		src, err := layoutSource(layoutDir, name)
		if err != nil {
			return nil, err
		}
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone base layout: %w", err)
		}
		layout, err := clone.New(name).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse %s layout: %w", name, err)
		}
		t.layouts[name] = layout
	}
	return t, nil
}

// Render executes a layout, or for TemplateTemplated the page source itself,
// which may use the base partials.
func (t *Templates) Render(templateID string, data Data) (string, error) {
	tpl, err := t.lookup(templateID, data)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", templateID, err)
	}
	return buf.String(), nil
}

func (t *Templates) lookup(templateID string, data Data) (*template.Template, error) {
	if templateID != TemplateTemplated {
		tpl, ok := t.layouts[templateID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, templateID)
		}
		return tpl, nil
	}
	if data.Page == nil {
		return nil, fmt.Errorf("%w: templated render without a page", ErrUnknownTemplate)
	}
	clone, err := t.base.Clone()
	if err != nil {
		return nil, fmt.Errorf("clone base layout: %w", err)
	}
	tpl, err := clone.New(data.Page.SourcePath()).Parse(data.Page.Body())
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", data.Page.SourcePath(), err)
	}
	return tpl, nil
}

// layoutSource returns <layoutDir>/<name>.gohtml when it exists, else the
// embedded default.
func layoutSource(layoutDir, name string) (string, error) {
	if layoutDir != "" {
		p := filepath.Join(layoutDir, name+".gohtml")
		// #nosec G304 -- layout names are fixed, layoutDir comes from configuration.
		b, err := os.ReadFile(p)
		if err == nil && strings.TrimSpace(string(b)) != "" {
			slog.Debug("Loaded layout override", slog.String("layout", name), logfields.Path(p))
			return string(b), nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read layout %s: %w", p, err)
		}
	}
	b, err := embeddedLayouts.ReadFile("layouts/" + name + ".gohtml")
	if err != nil {
		panic(fmt.Sprintf("embedded layout missing for %s: %v", name, err))
	}
	return string(b), nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"humanize": pages.Humanize,
		"join":     strings.Join,
		"absURL": func(base, p string) string {
			return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(p, "/")
		},
	}
}
