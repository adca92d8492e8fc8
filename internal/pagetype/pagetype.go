// Package pagetype describes the closed set of content kinds the generator
// compiles and where each one lives on disk.
package pagetype

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/config"
)

// ErrUnsupportedPageType is returned when a page type is not registered.
var ErrUnsupportedPageType = errors.New("unsupported page type")

// Type tags a page with its content kind.
type Type string

const (
	Templated     Type = "templated"
	MarkdownPage  Type = "markdown-page"
	MarkdownPost  Type = "markdown-post"
	Documentation Type = "documentation"
)

// All lists every page type in compile order.
var All = []Type{Templated, MarkdownPage, MarkdownPost, Documentation}

// Valid reports whether t is a member of the closed set.
func (t Type) Valid() bool {
	switch t {
	case Templated, MarkdownPage, MarkdownPost, Documentation:
		return true
	}
	return false
}

// IsMarkdown reports whether sources of this type carry YAML front matter.
func (t Type) IsMarkdown() bool { return t == MarkdownPage || t == MarkdownPost || t == Documentation }

// NumericallyOrdered reports whether numeric filename prefixes order pages of
// this type. Posts are named by date instead.
func (t Type) NumericallyOrdered() bool { return t != MarkdownPost }

// Descriptor locates the sources and output of one page type. Directories are
// slash-separated and relative to the project root; OutputDirectory is
// relative to the site output root.
type Descriptor struct {
	Type            Type
	SourceDirectory string
	OutputDirectory string
	FileExtension   string
	OutputSuffix    string
	Exclude         []string
}

// SourcePath returns the project-relative source path of identifier.
func (d Descriptor) SourcePath(identifier string) string {
	return path.Join(d.SourceDirectory, identifier+d.FileExtension)
}

// Identifier converts a project-relative source path back into an identifier.
// It reports false when the path does not belong to this descriptor.
func (d Descriptor) Identifier(sourcePath string) (string, bool) {
	p := path.Clean(filepath.ToSlash(sourcePath))
	prefix := d.SourceDirectory + "/"
	if !strings.HasPrefix(p, prefix) || !strings.HasSuffix(p, d.FileExtension) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(p, prefix), d.FileExtension)
	if id == "" {
		return "", false
	}
	return id, true
}

// Registry holds the enabled page types of one project.
type Registry struct {
	root        string
	descriptors map[Type]Descriptor
}

// NewRegistry creates an empty registry rooted at root.
func NewRegistry(root string) *Registry {
	return &Registry{root: root, descriptors: make(map[Type]Descriptor)}
}

// FromConfig registers the four built-in page types using the configured
// conventional directories.
func FromConfig(cfg *config.Config) *Registry {
	r := NewRegistry(cfg.Root)
	pages := slashClean(cfg.Paths.Pages)
	r.Register(Descriptor{Type: Templated, SourceDirectory: pages, FileExtension: ".gohtml", OutputSuffix: ".html", Exclude: cfg.Exclude.Pages})
	r.Register(Descriptor{Type: MarkdownPage, SourceDirectory: pages, FileExtension: ".md", OutputSuffix: ".html", Exclude: cfg.Exclude.Pages})
	r.Register(Descriptor{Type: MarkdownPost, SourceDirectory: slashClean(cfg.Paths.Posts), OutputDirectory: "posts", FileExtension: ".md", OutputSuffix: ".html", Exclude: cfg.Exclude.Posts})
	r.Register(Descriptor{Type: Documentation, SourceDirectory: slashClean(cfg.Paths.Docs), OutputDirectory: cfg.Docs.OutputDirectory, FileExtension: ".md", OutputSuffix: ".html", Exclude: cfg.Exclude.Docs})
	return r
}

// Register adds or replaces the descriptor for d.Type.
func (r *Registry) Register(d Descriptor) {
	r.descriptors[d.Type] = d
}

// Root returns the project root.
func (r *Registry) Root() string { return r.root }

// Lookup returns the descriptor registered for t.
func (r *Registry) Lookup(t Type) (Descriptor, error) {
	d, ok := r.descriptors[t]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnsupportedPageType, t)
	}
	return d, nil
}

// Descriptors returns the registered descriptors in compile order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.descriptors))
	for _, t := range All {
		if d, ok := r.descriptors[t]; ok {
			out = append(out, d)
		}
	}
	return out
}

// ForSourcePath finds the descriptor owning a project-relative source path
// and returns it with the derived identifier.
func (r *Registry) ForSourcePath(sourcePath string) (Descriptor, string, error) {
	for _, d := range r.Descriptors() {
		if id, ok := d.Identifier(sourcePath); ok {
			return d, id, nil
		}
	}
	return Descriptor{}, "", fmt.Errorf("%w: %s is not inside a known source directory", ErrUnsupportedPageType, sourcePath)
}

// AbsPath resolves a project-relative slash path against the project root.
func (r *Registry) AbsPath(rel string) string {
	return filepath.Join(r.root, filepath.FromSlash(rel))
}

func slashClean(p string) string {
	return path.Clean(filepath.ToSlash(p))
}
