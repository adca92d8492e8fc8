// Package routes maps every page to a unique output location.
package routes

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/ordering"
	"git.home.luguber.info/inful/sitegen/internal/pages"
	"git.home.luguber.info/inful/sitegen/internal/pagetype"
)

// Route is the output location of one page. Routes are values; the Table is
// the only place they are created.
type Route struct {
	Key        string
	Type       pagetype.Type
	SourcePath string
	// OutputPath is slash-separated and relative to the site output root.
	OutputPath string
	URI        string
	page       *pages.Page
}

// Page returns the page the route owns.
func (r Route) Page() *pages.Page { return r.page }

// Options control route derivation.
type Options struct {
	PrettyURLs        bool
	FlattenDocs       bool
	NumericalOrdering bool
}

// Key derives the route key of identifier for page type descriptor d.
func Key(d pagetype.Descriptor, identifier string, opts Options) string {
	name := identifier
	if opts.NumericalOrdering && d.Type.NumericallyOrdered() {
		name = ordering.StripNumericPrefix(name)
	}
	if d.Type == pagetype.Documentation && opts.FlattenDocs {
		name = path.Base(name)
	}
	return strings.Trim(d.OutputDirectory+"/"+name, "/")
}

// URI returns the public path of a route key.
func URI(key, suffix string, pretty bool) string {
	if !pretty {
		return "/" + key + suffix
	}
	switch {
	case key == "index":
		return "/"
	case strings.HasSuffix(key, "/index"):
		return "/" + strings.TrimSuffix(key, "index")
	default:
		return "/" + key
	}
}

func newRoute(d pagetype.Descriptor, p *pages.Page, opts Options) Route {
	key := Key(d, p.Identifier(), opts)
	return Route{
		Key:        key,
		Type:       d.Type,
		SourcePath: p.SourcePath(),
		OutputPath: key + d.OutputSuffix,
		URI:        URI(key, d.OutputSuffix, opts.PrettyURLs),
		page:       p,
	}
}
