package pages

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
	"git.home.luguber.info/inful/sitegen/internal/ordering"
	"git.home.luguber.info/inful/sitegen/internal/pagetype"
)

// ErrFileNotFound is returned when an identifier has no source file.
var ErrFileNotFound = errors.New("page source file not found")

// Options tune parsing.
type Options struct {
	// NumericalOrdering strips numeric filename prefixes from derived titles
	// and records the leaf prefix as the page's order.
	NumericalOrdering bool
}

// Registry parses and holds the pages of one build.
type Registry struct {
	types *pagetype.Registry
	opts  Options
	pages []*Page
	index map[pageKey]*Page
}

type pageKey struct {
	t  pagetype.Type
	id string
}

// NewRegistry creates an empty registry over the given page types.
func NewRegistry(types *pagetype.Registry, opts Options) *Registry {
	return &Registry{types: types, opts: opts, index: make(map[pageKey]*Page)}
}

// Parse reads the source of identifier and returns its Page without
// registering it.
func (r *Registry) Parse(t pagetype.Type, identifier string) (*Page, error) {
	desc, err := r.types.Lookup(t)
	if err != nil {
		return nil, err
	}

	sourcePath := desc.SourcePath(identifier)
	abs := r.types.AbsPath(sourcePath)
	if info, statErr := os.Stat(abs); statErr != nil || info.IsDir() {
		if statErr == nil || errors.Is(statErr, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, sourcePath)
		}
		return nil, fmt.Errorf("stat %s: %w", sourcePath, statErr)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sourcePath, err)
	}

	page := &Page{identifier: identifier, pageType: t, sourcePath: sourcePath}
	if t.IsMarkdown() {
		fm, body, _, splitErr := frontmatter.Split(content)
		if splitErr != nil {
			return nil, fmt.Errorf("%s: %w", sourcePath, splitErr)
		}
		fields, parseErr := frontmatter.ParseYAML(fm)
		if parseErr != nil {
			return nil, fmt.Errorf("%s: %w", sourcePath, parseErr)
		}
		page.matter, page.rawMatter, page.body = fields, string(fm), string(body)
	} else {
		fields, parseErr := frontmatter.ParseDirectives(content)
		if parseErr != nil {
			return nil, fmt.Errorf("%s: %w", sourcePath, parseErr)
		}
		page.matter, page.body = fields, string(content)
	}

	if r.ordered(t) && ordering.HasNumericPrefix(identifier) {
		page.order, _ = ordering.SplitNumericPrefix(identifier)
		page.hasOrder = true
	}
	page.title = r.resolveTitle(page)
	return page, nil
}

// Add parses identifier and registers the page.
func (r *Registry) Add(t pagetype.Type, identifier string) (*Page, error) {
	page, err := r.Parse(t, identifier)
	if err != nil {
		return nil, err
	}
	key := pageKey{t: t, id: identifier}
	if _, exists := r.index[key]; !exists {
		r.pages = append(r.pages, page)
	} else {
		for i, existing := range r.pages {
			if existing.pageType == t && existing.identifier == identifier {
				r.pages[i] = page
			}
		}
	}
	r.index[key] = page
	return page, nil
}

// Get returns a registered page.
func (r *Registry) Get(t pagetype.Type, identifier string) (*Page, bool) {
	p, ok := r.index[pageKey{t: t, id: identifier}]
	return p, ok
}

// All returns the registered pages in registration order.
func (r *Registry) All() []*Page {
	out := make([]*Page, len(r.pages))
	copy(out, r.pages)
	return out
}

// Len returns the number of registered pages.
func (r *Registry) Len() int { return len(r.pages) }

func (r *Registry) resolveTitle(p *Page) string {
	if title, ok := nonEmpty(p.matter.String("title")); ok {
		return title
	}
	var h1 string
	if p.pageType.IsMarkdown() {
		h1 = markdownH1([]byte(p.body))
	} else {
		h1 = templateH1([]byte(p.body))
	}
	if h1 != "" {
		return h1
	}
	return HumanizeIdentifier(p.identifier, r.ordered(p.pageType))
}

func (r *Registry) ordered(t pagetype.Type) bool {
	return r.opts.NumericalOrdering && t.NumericallyOrdered()
}
