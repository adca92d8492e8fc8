package navigation

import (
	"fmt"

	"git.home.luguber.info/inful/sitegen/internal/routes"
)

// Destination is where a navigation item points: a RouteDestination or an
// ExternalDestination.
type Destination interface {
	destination()
}

// RouteDestination links to a route by key.
type RouteDestination struct {
	Key string
}

// ExternalDestination links to a literal URL.
type ExternalDestination struct {
	URL string
}

func (RouteDestination) destination()    {}
func (ExternalDestination) destination() {}

// Href resolves a destination to the string placed in an anchor. A route key
// missing from the table resolves to an error.
func Href(d Destination, table *routes.Table) (string, error) {
	switch dest := d.(type) {
	case RouteDestination:
		r, err := table.Get(dest.Key)
		if err != nil {
			return "", err
		}
		return r.URI, nil
	case ExternalDestination:
		return dest.URL, nil
	default:
		panic(fmt.Sprintf("navigation: unknown destination %T", d))
	}
}
