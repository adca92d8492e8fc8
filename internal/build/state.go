package build

import (
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/discovery"
	"git.home.luguber.info/inful/sitegen/internal/navigation"
	"git.home.luguber.info/inful/sitegen/internal/pages"
	"git.home.luguber.info/inful/sitegen/internal/pagetype"
	"git.home.luguber.info/inful/sitegen/internal/routes"
)

// State carries everything one build produces, stage by stage.
type State struct {
	Config   *config.Config
	BuildID  string
	Report   *Report
	Warnings *Warnings

	Types    *pagetype.Registry
	Files    []discovery.File
	Pages    *pages.Registry
	Routes   *routes.Table
	MainMenu *navigation.Menu
	Sidebar  *navigation.Menu

	orchestrator *Orchestrator
}

// OutputRoot is the absolute site output directory.
func (s *State) OutputRoot() string {
	return s.Config.Path(s.Config.Paths.Output)
}
