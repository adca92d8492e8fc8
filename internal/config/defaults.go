package config

import (
	"path"
	"time"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// PathsDefaultApplier handles conventional directory defaults.
type PathsDefaultApplier struct{}

func (p *PathsDefaultApplier) Domain() string { return "paths" }

func (p *PathsDefaultApplier) ApplyDefaults(cfg *Config) error {
	setDefault(&cfg.Paths.Pages, "_pages")
	setDefault(&cfg.Paths.Posts, "_posts")
	setDefault(&cfg.Paths.Docs, "_docs")
	setDefault(&cfg.Paths.Output, "_site")
	setDefault(&cfg.Paths.Layouts, "_layouts")
	setDefault(&cfg.Paths.Extensions, "extensions")
	setDefault(&cfg.Paths.Cache, ".sitegen")
	return nil
}

// SiteDefaultApplier handles site metadata and documentation output defaults.
type SiteDefaultApplier struct{}

func (s *SiteDefaultApplier) Domain() string { return "site" }

func (s *SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	setDefault(&cfg.Site.Name, "Site")
	setDefault(&cfg.Site.Language, "en")
	setDefault(&cfg.Docs.OutputDirectory, "docs")
	cfg.Docs.OutputDirectory = path.Clean(cfg.Docs.OutputDirectory)
	return nil
}

// NavigationDefaultApplier handles main menu and sidebar defaults.
type NavigationDefaultApplier struct{}

func (n *NavigationDefaultApplier) Domain() string { return "navigation" }

func (n *NavigationDefaultApplier) ApplyDefaults(cfg *Config) error {
	nav := &cfg.Navigation
	if nav.Exclude == nil {
		nav.Exclude = []string{"404"}
	}
	if nav.Subdirectories == "" {
		nav.Subdirectories = SubdirectoriesHidden
	}

	docsHome := cfg.Docs.OutputDirectory + "/index"

	if nav.Labels == nil {
		nav.Labels = map[string]string{}
	}
	setDefaultKey(nav.Labels, "index", "Home")
	setDefaultKey(nav.Labels, docsHome, "Docs")

	if nav.Order == nil {
		nav.Order = map[string]int{}
	}
	setDefaultKey(nav.Order, "index", 0)
	setDefaultKey(nav.Order, "posts", 10)
	setDefaultKey(nav.Order, docsHome, 100)
	return nil
}

// OutputDefaultApplier handles post-build task output defaults.
type OutputDefaultApplier struct{}

func (o *OutputDefaultApplier) Domain() string { return "output" }

func (o *OutputDefaultApplier) ApplyDefaults(cfg *Config) error {
	setDefault(&cfg.Feed.Filename, "feed.xml")
	setDefault(&cfg.Feed.Title, cfg.Site.Name)
	setDefault(&cfg.Search.Filename, "search.json")
	if cfg.Sitemap.Lastmod == "" {
		cfg.Sitemap.Lastmod = LastmodMtime
	}
	return nil
}

// BuildDefaultApplier handles command retry defaults.
type BuildDefaultApplier struct{}

func (b *BuildDefaultApplier) Domain() string { return "build" }

func (b *BuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	r := &cfg.Build.Retry
	if r.Backoff == "" {
		r.Backoff = RetryBackoffLinear
	}
	if r.Initial <= 0 {
		r.Initial = time.Second
	}
	if r.Max <= 0 {
		r.Max = 30 * time.Second
	}
	if r.MaxRetries < 0 {
		r.MaxRetries = 0
	}
	return nil
}

// defaultAppliers returns the appliers in dependency order: navigation keys
// depend on the docs output directory.
func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{
		&PathsDefaultApplier{},
		&SiteDefaultApplier{},
		&NavigationDefaultApplier{},
		&OutputDefaultApplier{},
		&BuildDefaultApplier{},
	}
}

func applyDefaults(cfg *Config) error {
	for _, applier := range defaultAppliers() {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func setDefaultKey[V any](m map[string]V, key string, value V) {
	if _, ok := m[key]; !ok {
		m[key] = value
	}
}
