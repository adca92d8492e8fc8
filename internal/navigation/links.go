package navigation

import (
	"log/slog"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/routes"
)

// Link is the template-facing form of a menu node.
type Link struct {
	Label    string
	Href     string
	Active   bool
	External bool
	Children []Link
}

// IsGroup reports whether the link is a group header.
func (l Link) IsGroup() bool { return len(l.Children) > 0 }

// Links resolves the menu against the route table, marking the node that
// points at activeKey (and its group) active.
func (m *Menu) Links(table *routes.Table, activeKey string) []Link {
	out := make([]Link, 0, len(m.Nodes))
	for _, n := range m.Nodes {
		switch v := n.(type) {
		case *Item:
			if l, ok := itemLink(v, table, activeKey); ok {
				out = append(out, l)
			}
		case *Group:
			group := Link{Label: v.Label}
			for _, item := range v.Items {
				if l, ok := itemLink(item, table, activeKey); ok {
					group.Children = append(group.Children, l)
					group.Active = group.Active || l.Active
				}
			}
			if len(group.Children) > 0 {
				out = append(out, group)
			}
		}
	}
	return out
}

func itemLink(item *Item, table *routes.Table, activeKey string) (Link, bool) {
	href, err := Href(item.Destination, table)
	if err != nil {
		slog.Warn("Dropping navigation link", slog.String("label", item.Label), logfields.Error(err))
		return Link{}, false
	}
	_, external := item.Destination.(ExternalDestination)
	return Link{
		Label:    item.Label,
		Href:     href,
		Active:   activeKey != "" && item.RouteKey() == activeKey,
		External: external,
	}, true
}
