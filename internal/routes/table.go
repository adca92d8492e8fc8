package routes

import (
	"errors"
	"fmt"

	"git.home.luguber.info/inful/sitegen/internal/pages"
	"git.home.luguber.info/inful/sitegen/internal/pagetype"
)

var (
	// ErrRouteNotFound is returned by lookups that match nothing.
	ErrRouteNotFound = errors.New("route not found")
	// ErrRouteCollision is returned when two pages resolve to one route key.
	ErrRouteCollision = errors.New("route collision")
)

// Table indexes the routes of one build by key, source path and page.
type Table struct {
	routes   []Route
	byKey    map[string]int
	bySource map[string]int
	byPage   map[*pages.Page]int
}

// Build creates a route for every page. It fails on the first route key
// shared by two pages.
func Build(types *pagetype.Registry, all []*pages.Page, opts Options) (*Table, error) {
	t := &Table{
		byKey:    make(map[string]int, len(all)),
		bySource: make(map[string]int, len(all)),
		byPage:   make(map[*pages.Page]int, len(all)),
	}
	for _, p := range all {
		d, err := types.Lookup(p.Type())
		if err != nil {
			return nil, err
		}
		r := newRoute(d, p, opts)
		if i, dup := t.byKey[r.Key]; dup {
			return nil, &CollisionError{Key: r.Key, First: t.routes[i].SourcePath, Second: r.SourcePath}
		}
		idx := len(t.routes)
		t.routes = append(t.routes, r)
		t.byKey[r.Key] = idx
		t.bySource[r.SourcePath] = idx
		t.byPage[p] = idx
	}
	return t, nil
}

// Get returns the route with the given key.
func (t *Table) Get(key string) (Route, error) {
	if i, ok := t.byKey[key]; ok {
		return t.routes[i], nil
	}
	return Route{}, fmt.Errorf("%w: %s", ErrRouteNotFound, key)
}

// FromSourcePath returns the route of a project-relative source path.
func (t *Table) FromSourcePath(sourcePath string) (Route, error) {
	if i, ok := t.bySource[sourcePath]; ok {
		return t.routes[i], nil
	}
	return Route{}, fmt.Errorf("%w: no route for source %s", ErrRouteNotFound, sourcePath)
}

// FromPage returns the route of a page registered in the table. Passing a
// page that was not part of Build is a programming error and panics.
func (t *Table) FromPage(p *pages.Page) Route {
	i, ok := t.byPage[p]
	if !ok {
		panic(fmt.Sprintf("routes: page %s is not in the route table", p.SourcePath()))
	}
	return t.routes[i]
}

// All returns every route in build order.
func (t *Table) All() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// ByType returns the routes of one page type in build order.
func (t *Table) ByType(pt pagetype.Type) []Route {
	var out []Route
	for _, r := range t.routes {
		if r.Type == pt {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of routes.
func (t *Table) Len() int { return len(t.routes) }

// CollisionError names the two sources that resolved to one route key.
type CollisionError struct {
	Key    string
	First  string
	Second string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s: %q is produced by both %s and %s", ErrRouteCollision, e.Key, e.First, e.Second)
}

func (e *CollisionError) Unwrap() error { return ErrRouteCollision }
