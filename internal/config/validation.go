package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/util/sets"
)

// ValidateConfig validates a normalized configuration.
func ValidateConfig(cfg *Config) error {
	return newConfigurationValidator(cfg).validate()
}

type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	if err := cv.validatePaths(); err != nil {
		return err
	}
	if err := cv.validateNavigation(); err != nil {
		return err
	}
	return cv.validateTasks()
}

func (cv *configurationValidator) validatePaths() error {
	p := cv.config.Paths
	sources := map[string]string{}
	for name, dir := range map[string]string{"pages": p.Pages, "posts": p.Posts, "docs": p.Docs} {
		clean := filepath.Clean(dir)
		if other, dup := sources[clean]; dup {
			return fmt.Errorf("paths.%s and paths.%s must differ: %s", name, other, dir)
		}
		sources[clean] = name
	}
	if name, clash := sources[filepath.Clean(p.Output)]; clash {
		return fmt.Errorf("paths.output must not equal paths.%s: %s", name, p.Output)
	}
	if strings.Contains(cv.config.Docs.OutputDirectory, "..") || filepath.IsAbs(cv.config.Docs.OutputDirectory) {
		return fmt.Errorf("docs.output_directory must be a relative path inside the output: %s", cv.config.Docs.OutputDirectory)
	}
	return nil
}

func (cv *configurationValidator) validateNavigation() error {
	for i, item := range cv.config.Navigation.Custom {
		if item.Label == "" {
			return fmt.Errorf("navigation.custom[%d]: label is required", i)
		}
		if (item.URL == "") == (item.Route == "") {
			return fmt.Errorf("navigation.custom[%d] %q: exactly one of url or route is required", i, item.Label)
		}
	}
	return nil
}

func (cv *configurationValidator) validateTasks() error {
	seen := sets.New[string]()
	for i, task := range cv.config.Build.Tasks {
		if task.Name == "" {
			return fmt.Errorf("build.tasks[%d]: name is required", i)
		}
		if task.Command == "" {
			return fmt.Errorf("build.tasks[%d] %s: command is required", i, task.Name)
		}
		if seen.Has(task.Name) {
			return fmt.Errorf("duplicate task name: %s", task.Name)
		}
		seen.Add(task.Name)
	}
	return nil
}
