package navigation

import "git.home.luguber.info/inful/sitegen/internal/pagetype"

// DefaultPriority is used for items and groups without an explicit priority.
const DefaultPriority = 500

// Node is a top-level menu entry: an *Item or a *Group.
type Node interface {
	NodeLabel() string
	NodePriority() int
}

// Item is a single link.
type Item struct {
	Destination Destination
	Label       string
	Priority    int
	Attributes  map[string]string
	// pageType is empty for configured links.
	pageType pagetype.Type
}

func (i *Item) NodeLabel() string { return i.Label }
func (i *Item) NodePriority() int { return i.Priority }

// RouteKey returns the route key of a route item, or "".
func (i *Item) RouteKey() string {
	if d, ok := i.Destination.(RouteDestination); ok {
		return d.Key
	}
	return ""
}

// Group is a labeled set of items. Groups do not nest.
type Group struct {
	Key      string
	Label    string
	Priority int
	Items    []*Item

	// base seeds the derived priority; a promoted item's priority survives.
	base int
}

func (g *Group) NodeLabel() string { return g.Label }
func (g *Group) NodePriority() int { return g.Priority }

// Menu is an ordered navigation tree.
type Menu struct {
	Nodes []Node
}

// Items returns every item of the menu, group children included, in order.
func (m *Menu) Items() []*Item {
	var out []*Item
	for _, n := range m.Nodes {
		switch v := n.(type) {
		case *Item:
			out = append(out, v)
		case *Group:
			out = append(out, v.Items...)
		}
	}
	return out
}

// Group returns the group with the given key.
func (m *Menu) Group(key string) (*Group, bool) {
	for _, n := range m.Nodes {
		if g, ok := n.(*Group); ok && g.Key == key {
			return g, true
		}
	}
	return nil, false
}

// Labels returns the top-level labels in order.
func (m *Menu) Labels() []string {
	out := make([]string, len(m.Nodes))
	for i, n := range m.Nodes {
		out[i] = n.NodeLabel()
	}
	return out
}
