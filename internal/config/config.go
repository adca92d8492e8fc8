package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFilename is the configuration file looked up when none is given.
const DefaultFilename = "sitegen.yaml"

// Config is the project configuration. It is loaded once at process start and
// treated as immutable afterwards; overrides produce a copy (see WithOverrides).
type Config struct {
	// Root is the project root every relative path is resolved against.
	Root string `yaml:"-"`

	Site              SiteConfig       `yaml:"site"`
	Paths             PathsConfig      `yaml:"paths"`
	Docs              DocsConfig       `yaml:"docs"`
	PrettyURLs        bool             `yaml:"pretty_urls"`
	NumericalOrdering *bool            `yaml:"numerical_ordering,omitempty"`
	Exclude           ExcludeConfig    `yaml:"exclude,omitempty"`
	Navigation        NavigationConfig `yaml:"navigation"`
	Sidebar           SidebarConfig    `yaml:"sidebar"`
	Features          FeaturesConfig   `yaml:"features"`
	Feed              FeedConfig       `yaml:"feed"`
	Sitemap           SitemapConfig    `yaml:"sitemap"`
	Search            SearchConfig     `yaml:"search"`
	Build             BuildConfig      `yaml:"build"`
	Metrics           MetricsConfig    `yaml:"metrics,omitempty"`
}

// SiteConfig holds site-wide metadata handed to templates and feeds.
type SiteConfig struct {
	Name     string `yaml:"name"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Language string `yaml:"language,omitempty"`
}

// PathsConfig holds the conventional directories, relative to Root.
type PathsConfig struct {
	Pages      string `yaml:"pages"`
	Posts      string `yaml:"posts"`
	Docs       string `yaml:"docs"`
	Output     string `yaml:"output"`
	Layouts    string `yaml:"layouts"`
	Extensions string `yaml:"extensions"`
	Cache      string `yaml:"cache"`
}

// DocsConfig controls documentation output.
type DocsConfig struct {
	OutputDirectory string `yaml:"output_directory"`
	// FlattenOutput maps nested documentation identifiers to a single output level.
	FlattenOutput *bool `yaml:"flatten_output,omitempty"`
}

// ExcludeConfig lists identifiers skipped by discovery, per source directory.
type ExcludeConfig struct {
	Pages []string `yaml:"pages,omitempty"`
	Posts []string `yaml:"posts,omitempty"`
	Docs  []string `yaml:"docs,omitempty"`
}

// SubdirectoryMode selects how main-menu pages in subdirectories are shown.
type SubdirectoryMode string

const (
	SubdirectoriesFlat     SubdirectoryMode = "flat"
	SubdirectoriesDropdown SubdirectoryMode = "dropdown"
	SubdirectoriesHidden   SubdirectoryMode = "hidden"
)

// NavigationConfig configures the main menu.
type NavigationConfig struct {
	Exclude         []string          `yaml:"exclude,omitempty"`
	Subdirectories  SubdirectoryMode  `yaml:"subdirectories,omitempty"`
	Labels          map[string]string `yaml:"labels,omitempty"`
	Order           map[string]int    `yaml:"order,omitempty"`
	GroupLabels     map[string]string `yaml:"group_labels,omitempty"`
	GroupPriorities map[string]int    `yaml:"group_priorities,omitempty"`
	Custom          []CustomNavItem   `yaml:"custom,omitempty"`
}

// CustomNavItem is a menu link declared in configuration. Exactly one of URL
// and Route is set.
type CustomNavItem struct {
	Label    string `yaml:"label"`
	URL      string `yaml:"url,omitempty"`
	Route    string `yaml:"route,omitempty"`
	Priority *int   `yaml:"priority,omitempty"`
}

// SidebarConfig configures the documentation sidebar.
type SidebarConfig struct {
	// Flat forces a flat sidebar even when pages declare groups.
	Flat bool `yaml:"flat"`
	// SubdirectoryGroups treats the first directory of a nested doc as its group.
	SubdirectoryGroups *bool    `yaml:"subdirectory_groups,omitempty"`
	Exclude            []string `yaml:"exclude,omitempty"`
}

// FeedConfig configures the RSS feed task.
type FeedConfig struct {
	Filename    string `yaml:"filename"`
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// LastmodStrategy selects where sitemap modification times come from.
type LastmodStrategy string

const (
	LastmodMtime LastmodStrategy = "mtime"
	LastmodGit   LastmodStrategy = "git"
	LastmodNone  LastmodStrategy = "none"
)

// SitemapConfig configures the sitemap task.
type SitemapConfig struct {
	Lastmod LastmodStrategy `yaml:"lastmod"`
}

// SearchConfig configures the search index task.
type SearchConfig struct {
	Filename string `yaml:"filename"`
}

// BuildConfig holds build pipeline knobs.
type BuildConfig struct {
	WarningsFatal bool         `yaml:"warnings_fatal"`
	AssetsCommand string       `yaml:"assets_command,omitempty"`
	Tasks         []TaskConfig `yaml:"tasks,omitempty"`
	Retry         RetryConfig  `yaml:"retry"`
}

// RetryBackoffMode selects how the delay between command retries grows.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// RetryConfig controls retries of failing command tasks. MaxRetries 0
// disables retrying.
type RetryConfig struct {
	Backoff    RetryBackoffMode `yaml:"backoff"`
	Initial    time.Duration    `yaml:"initial"`
	Max        time.Duration    `yaml:"max"`
	MaxRetries int              `yaml:"max_retries"`
}

// TaskConfig declares an external command run as a post-build task.
type TaskConfig struct {
	Name    string   `yaml:"name"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
	Dir     string   `yaml:"dir,omitempty"`
}

// MetricsConfig configures metrics export.
type MetricsConfig struct {
	// Textfile, when set, receives the Prometheus text exposition after each build.
	Textfile string `yaml:"textfile,omitempty"`
}

// Load reads, normalizes and validates the configuration at configPath.
func Load(configPath string) (*Config, error) {
	root, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	loadEnvFiles(root)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Root = root

	if err := applyDefaults(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := normalizeEnums(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configPath, or returns the default configuration rooted
// at the file's directory when it does not exist.
func LoadOrDefault(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if err == nil {
		return cfg, nil
	}
	if _, statErr := os.Stat(configPath); !errors.Is(statErr, os.ErrNotExist) {
		return nil, err
	}
	root, absErr := filepath.Abs(filepath.Dir(configPath))
	if absErr != nil {
		return nil, fmt.Errorf("resolve project root: %w", absErr)
	}
	slog.Info("No configuration file found; using defaults", "path", configPath)
	return Default(root)
}

// Default returns the default configuration for a project rooted at root.
func Default(root string) (*Config, error) {
	loadEnvFiles(root)
	cfg := &Config{Root: root}
	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path resolves a project-relative path against Root.
func (c *Config) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(c.Root, rel)
}

// OrderingEnabled reports whether numeric filename prefixes drive ordering.
func (c *Config) OrderingEnabled() bool {
	return c.NumericalOrdering == nil || *c.NumericalOrdering
}

// FlattenDocs reports whether nested documentation identifiers share one output level.
func (c *Config) FlattenDocs() bool {
	return c.Docs.FlattenOutput == nil || *c.Docs.FlattenOutput
}

// SubdirectoryGroupsEnabled reports whether doc subdirectories become sidebar groups.
func (s SidebarConfig) SubdirectoryGroupsEnabled() bool {
	return s.SubdirectoryGroups == nil || *s.SubdirectoryGroups
}

// Init writes an example configuration file and the conventional directories.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example, err := Default(filepath.Dir(configPath))
	if err != nil {
		return err
	}
	example.Site = SiteConfig{Name: "My Site", BaseURL: "https://example.com", Language: "en"}
	example.Feed.Title = example.Site.Name
	example.Navigation.Custom = []CustomNavItem{{Label: "GitHub", URL: "https://github.com/example/site"}}

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	for _, dir := range []string{example.Paths.Pages, example.Paths.Posts, example.Paths.Docs} {
		if err := os.MkdirAll(example.Path(dir), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
