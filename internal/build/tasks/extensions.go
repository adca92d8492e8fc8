package tasks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitegen/internal/config"
)

// ExtensionTasksDir is the subdirectory of the extensions path scanned for task descriptors.
const ExtensionTasksDir = "tasks"

// DiscoverExtensionTasks reads every <extensions>/tasks/*.yaml descriptor in
// name order. A missing directory yields no tasks. Descriptors without a
// name take the file's basename. Invalid descriptors are skipped; their
// errors are joined and returned alongside the valid specs.
func DiscoverExtensionTasks(extensionsDir string) ([]config.TaskConfig, error) {
	dir := filepath.Join(extensionsDir, ExtensionTasksDir)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read extension tasks: %w", err)
	}

	var names []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	specs := make([]config.TaskConfig, 0, len(names))
	var errs []error
	for _, name := range names {
		spec, err := readExtensionTask(dir, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		specs = append(specs, spec)
	}
	return specs, errors.Join(errs...)
}

func readExtensionTask(dir, name string) (config.TaskConfig, error) {
	var spec config.TaskConfig
	// #nosec G304 -- descriptor lives in the project's extensions directory.
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return spec, fmt.Errorf("read extension task %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return spec, fmt.Errorf("parse extension task %s: %w", name, err)
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	if spec.Command == "" {
		return spec, fmt.Errorf("extension task %s: command is required", name)
	}
	return spec, nil
}
