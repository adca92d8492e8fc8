package navigation

import "git.home.luguber.info/inful/sitegen/internal/config"

// Options carry the navigation settings of one build.
type Options struct {
	// DocsHome is the route key of the documentation home page.
	DocsHome           string
	Exclude            []string
	SidebarExclude     []string
	Subdirectories     config.SubdirectoryMode
	Labels             map[string]string
	Order              map[string]int
	GroupLabels        map[string]string
	GroupPriorities    map[string]int
	Custom             []config.CustomNavItem
	SidebarFlat        bool
	SubdirectoryGroups bool
	NumericalOrdering  bool
}

// OptionsFromConfig derives navigation options from the project configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DocsHome:           cfg.Docs.OutputDirectory + "/index",
		Exclude:            cfg.Navigation.Exclude,
		SidebarExclude:     cfg.Sidebar.Exclude,
		Subdirectories:     cfg.Navigation.Subdirectories,
		Labels:             cfg.Navigation.Labels,
		Order:              cfg.Navigation.Order,
		GroupLabels:        cfg.Navigation.GroupLabels,
		GroupPriorities:    cfg.Navigation.GroupPriorities,
		Custom:             cfg.Navigation.Custom,
		SidebarFlat:        cfg.Sidebar.Flat,
		SubdirectoryGroups: cfg.Sidebar.SubdirectoryGroupsEnabled(),
		NumericalOrdering:  cfg.OrderingEnabled(),
	}
}
