// Package navigation builds the main menu and the documentation sidebar from
// the route table.
package navigation

import (
	"log/slog"
	"path"
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/ordering"
	"git.home.luguber.info/inful/sitegen/internal/pages"
	"git.home.luguber.info/inful/sitegen/internal/pagetype"
	"git.home.luguber.info/inful/sitegen/internal/routes"
)

// OtherGroup collects ungrouped pages of a grouped sidebar.
const OtherGroup = "Other"

// Builder turns routes into menus. It only reads the route table.
type Builder struct {
	table *routes.Table
	opts  Options
}

// NewBuilder creates a Builder over table.
func NewBuilder(table *routes.Table, opts Options) *Builder {
	return &Builder{table: table, opts: opts}
}

// MainMenu builds the site header menu from every non-documentation route
// plus the documentation home page.
func (b *Builder) MainMenu() *Menu {
	a := newAssembler(b.opts)
	for _, r := range b.table.All() {
		if !b.inMainMenu(r) {
			continue
		}
		item := b.itemFor(r)
		if group, ok := b.mainMenuGroup(r); ok {
			a.addToGroup(group, item)
			continue
		}
		a.addItem(item)
	}
	b.addCustomItems(a)
	return a.menu()
}

// Sidebar builds the documentation sidebar.
func (b *Builder) Sidebar() *Menu {
	var candidates []routes.Route
	for _, r := range b.table.ByType(pagetype.Documentation) {
		if b.inSidebar(r) {
			candidates = append(candidates, r)
		}
	}

	// Hidden and excluded pages still switch the sidebar to grouped mode.
	grouped := false
	if !b.opts.SidebarFlat {
		for _, r := range b.table.ByType(pagetype.Documentation) {
			if _, ok := b.sidebarGroup(r); ok {
				grouped = true
				break
			}
		}
	}

	a := newAssembler(b.opts)
	for _, r := range candidates {
		item := b.itemFor(r)
		if !grouped {
			a.addItem(item)
			continue
		}
		group, ok := b.sidebarGroup(r)
		if !ok {
			group = OtherGroup
		}
		a.addToGroup(group, item)
	}

	if len(a.nodes) == 0 {
		if home, err := b.table.Get(b.opts.DocsHome); err == nil {
			a.addItem(b.itemFor(home))
		}
	}
	return a.menu()
}

func (b *Builder) inMainMenu(r routes.Route) bool {
	p := r.Page()
	if r.Type == pagetype.Documentation && r.Key != b.opts.DocsHome {
		return false
	}
	hidden, explicit := p.Hidden()
	if explicit {
		if hidden {
			return false
		}
	} else if r.Type == pagetype.MarkdownPost {
		return false
	}
	if matches(b.opts.Exclude, p.Identifier(), r.Key) {
		return false
	}
	if _, declared := p.NavigationGroup(); !declared && b.isNested(r) && b.opts.Subdirectories == config.SubdirectoriesHidden {
		return false
	}
	return true
}

func (b *Builder) inSidebar(r routes.Route) bool {
	if r.Key == b.opts.DocsHome {
		return false
	}
	p := r.Page()
	if hidden, _ := p.Hidden(); hidden {
		return false
	}
	return !matches(b.opts.SidebarExclude, p.Identifier(), r.Key)
}

// isNested reports whether a non-documentation page lives in a subdirectory
// of its source directory.
func (b *Builder) isNested(r routes.Route) bool {
	return r.Type != pagetype.Documentation && strings.Contains(r.Page().Identifier(), "/")
}

func (b *Builder) mainMenuGroup(r routes.Route) (string, bool) {
	if g, ok := r.Page().NavigationGroup(); ok {
		return g, true
	}
	if b.opts.Subdirectories == config.SubdirectoriesDropdown && b.isNested(r) {
		return b.firstDirectory(r.Page()), true
	}
	return "", false
}

func (b *Builder) sidebarGroup(r routes.Route) (string, bool) {
	p := r.Page()
	if g, ok := p.NavigationGroup(); ok {
		return g, true
	}
	if b.opts.SubdirectoryGroups && strings.Contains(p.Identifier(), "/") {
		return b.firstDirectory(p), true
	}
	return "", false
}

func (b *Builder) firstDirectory(p *pages.Page) string {
	dir, _, _ := strings.Cut(p.Identifier(), "/")
	if b.opts.NumericalOrdering {
		dir = ordering.StripNumericPrefix(dir)
	}
	return dir
}

// itemFor back-fills label and priority: front matter, then configuration by
// route key, then the page title and filename order, then the default.
func (b *Builder) itemFor(r routes.Route) *Item {
	p := r.Page()

	label, ok := p.NavigationLabel()
	if !ok {
		if l, set := b.opts.Labels[r.Key]; set && l != "" {
			label = l
		} else {
			label = p.Title()
		}
	}

	priority, ok := p.NavigationPriority()
	if !ok {
		if v, set := b.opts.Order[r.Key]; set {
			priority = v
		} else if v, set := p.OrderPrefix(); set {
			priority = v
		} else {
			priority = DefaultPriority
		}
	}

	return &Item{
		Destination: RouteDestination{Key: r.Key},
		Label:       label,
		Priority:    priority,
		Attributes: map[string]string{
			"route_key": r.Key,
			"page_type": string(r.Type),
		},
		pageType: r.Type,
	}
}

func (b *Builder) addCustomItems(a *assembler) {
	for _, c := range b.opts.Custom {
		priority := DefaultPriority
		if c.Priority != nil {
			priority = *c.Priority
		}
		item := &Item{Label: c.Label, Priority: priority, Attributes: map[string]string{}}
		if c.Route != "" {
			if _, err := b.table.Get(c.Route); err != nil {
				slog.Warn("Navigation link points to an unknown route", logfields.RouteKey(c.Route), slog.String("label", c.Label))
				continue
			}
			item.Destination = RouteDestination{Key: c.Route}
			item.Attributes["route_key"] = c.Route
		} else {
			item.Destination = ExternalDestination{URL: c.URL}
			item.Attributes["external"] = "true"
		}
		a.addItem(item)
	}
}

// matches reports whether an identifier or route key is listed, exactly or
// as a path.Match pattern.
func matches(patterns []string, identifier, key string) bool {
	for _, pattern := range patterns {
		for _, candidate := range []string{identifier, key} {
			if pattern == candidate {
				return true
			}
			if ok, err := path.Match(pattern, candidate); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// assembler accumulates nodes in insertion order and materializes groups.
type assembler struct {
	opts  Options
	nodes []Node
}

func newAssembler(opts Options) *assembler {
	return &assembler{opts: opts}
}

func (a *assembler) addItem(item *Item) {
	a.nodes = append(a.nodes, item)
}

func (a *assembler) addToGroup(name string, item *Item) {
	key := Slug(name)
	for i, n := range a.nodes {
		switch v := n.(type) {
		case *Group:
			if v.Key == key {
				v.Items = append(v.Items, item)
				return
			}
		case *Item:
			if Slug(v.Label) == key {
				slog.Info("Promoting navigation item to group", logfields.Group(key), slog.String("label", v.Label))
				a.nodes[i] = &Group{Key: key, Label: a.groupLabel(name, key), Items: []*Item{item}, base: v.Priority}
				return
			}
		}
	}
	a.nodes = append(a.nodes, &Group{Key: key, Label: a.groupLabel(name, key), Items: []*Item{item}, base: DefaultPriority})
}

// groupLabel: configured label, else the raw name, humanized when it is a
// lower-case slug.
func (a *assembler) groupLabel(name, key string) string {
	if l, ok := a.opts.GroupLabels[key]; ok && l != "" {
		return l
	}
	if name == strings.ToLower(name) {
		return pages.Humanize(name)
	}
	return name
}

func (a *assembler) groupPriority(g *Group) int {
	if p, ok := a.opts.GroupPriorities[g.Key]; ok {
		return p
	}
	return derivedGroupPriority(g.base, g.Items)
}

// derivedGroupPriority returns min(base, children) when every child is a
// documentation page, otherwise base.
func derivedGroupPriority(base int, items []*Item) int {
	if len(items) == 0 {
		return base
	}
	lowest := base
	for _, item := range items {
		if item.pageType != pagetype.Documentation {
			return base
		}
		if item.Priority < lowest {
			lowest = item.Priority
		}
	}
	return lowest
}

func (a *assembler) menu() *Menu {
	for _, n := range a.nodes {
		if g, ok := n.(*Group); ok {
			g.Priority = a.groupPriority(g)
			g.Items = sortAndDedupe(g.Items)
		}
	}
	return &Menu{Nodes: sortAndDedupe(a.nodes)}
}

// sortAndDedupe sorts ascending by priority, keeping insertion order among
// equals, then drops later nodes whose label was already seen.
func sortAndDedupe[T Node](nodes []T) []T {
	sorted := make([]T, len(nodes))
	copy(sorted, nodes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].NodePriority() < sorted[j].NodePriority()
	})

	seen := make(map[string]struct{}, len(sorted))
	out := sorted[:0]
	for _, n := range sorted {
		if _, dup := seen[n.NodeLabel()]; dup {
			continue
		}
		seen[n.NodeLabel()] = struct{}{}
		out = append(out, n)
	}
	return out
}
