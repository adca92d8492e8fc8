// Package writer renders one route and persists it to the output tree.
package writer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/navigation"
	"git.home.luguber.info/inful/sitegen/internal/pagetype"
	"git.home.luguber.info/inful/sitegen/internal/render"
	"git.home.luguber.info/inful/sitegen/internal/routes"
)

// ErrOutsideOutput is returned for output paths escaping the output root.
var ErrOutsideOutput = errors.New("output path escapes output directory")

// Site is the per-build context every page is rendered with.
type Site struct {
	Config  config.SiteConfig
	Table   *routes.Table
	Menu    *navigation.Menu
	Sidebar *navigation.Menu
}

// Writer compiles routes into files under an output root.
type Writer struct {
	outputRoot string
	renderer   render.Renderer
	converter  render.Converter
	site       Site
}

// New creates a Writer.
func New(outputRoot string, renderer render.Renderer, converter render.Converter, site Site) *Writer {
	return &Writer{outputRoot: outputRoot, renderer: renderer, converter: converter, site: site}
}

// OutputRoot returns the directory files are written under.
func (w *Writer) OutputRoot() string { return w.outputRoot }

// Write renders r and overwrites its output file, returning the absolute
// path written. Renderer errors are returned unchanged.
func (w *Writer) Write(r routes.Route) (string, error) {
	target, err := w.target(r.OutputPath)
	if err != nil {
		return "", err
	}

	data, err := w.data(r)
	if err != nil {
		return "", err
	}
	html, err := w.renderer.Render(render.TemplateFor(r.Type), data)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	// #nosec G306 -- site output is meant to be world readable.
	if err := os.WriteFile(target, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", r.OutputPath, err)
	}
	return target, nil
}

func (w *Writer) data(r routes.Route) (render.Data, error) {
	p := r.Page()
	data := render.Data{
		Site:  w.site.Config,
		Title: p.Title(),
		Page:  p,
		Route: r,
	}
	if date, ok := p.Date(); ok {
		data.Date = date
	}
	if w.site.Menu != nil {
		data.Menu = w.site.Menu.Links(w.site.Table, r.Key)
	}
	if r.Type == pagetype.Documentation && w.site.Sidebar != nil {
		data.Sidebar = w.site.Sidebar.Links(w.site.Table, r.Key)
	}
	if r.Type.IsMarkdown() {
		content, err := w.converter.Convert([]byte(p.Body()))
		if err != nil {
			return render.Data{}, err
		}
		data.Content = content
	}
	return data, nil
}

func (w *Writer) target(outputPath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(outputPath))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideOutput, outputPath)
	}
	abs, err := filepath.Abs(filepath.Join(w.outputRoot, clean))
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}
	return abs, nil
}
