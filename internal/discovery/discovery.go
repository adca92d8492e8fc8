// Package discovery finds the source files of each page type and turns their
// paths into identifiers.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/pagetype"
)

// ErrWalkFailed wraps filesystem errors raised while scanning a source directory.
var ErrWalkFailed = errors.New("source directory walk failed")

// File is a discovered source file. Path is relative to the project root.
type File struct {
	Path       string
	Identifier string
	Type       pagetype.Type
}

// Discovery scans the source directories of a page type registry.
type Discovery struct {
	registry *pagetype.Registry
}

// New creates a Discovery for the registered page types.
func New(registry *pagetype.Registry) *Discovery {
	return &Discovery{registry: registry}
}

// Identifiers returns the identifiers of every source file of page type t.
// The result is sorted; callers must not rely on that for anything but logs.
func (d *Discovery) Identifiers(t pagetype.Type) ([]string, error) {
	files, err := d.Files(t)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = f.Identifier
	}
	return ids, nil
}

// Files returns the source files of page type t. A missing source directory
// yields no files.
func (d *Discovery) Files(t pagetype.Type) ([]File, error) {
	desc, err := d.registry.Lookup(t)
	if err != nil {
		return nil, err
	}

	root := d.registry.AbsPath(desc.SourceDirectory)
	if _, statErr := os.Stat(root); errors.Is(statErr, fs.ErrNotExist) {
		slog.Debug("Source directory not found", logfields.PageType(string(t)), logfields.Path(desc.SourceDirectory))
		return nil, nil
	}

	var files []File
	walkErr := filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), desc.FileExtension) {
			return nil
		}
		if strings.HasPrefix(entry.Name(), "_") {
			return nil
		}

		rel, err := filepath.Rel(d.registry.Root(), p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		id, ok := desc.Identifier(rel)
		if !ok {
			slog.Warn("Skipping file outside source directory", logfields.Path(rel))
			return nil
		}
		if excluded(id, desc.Exclude) {
			slog.Debug("Excluded from discovery", logfields.PageType(string(t)), logfields.Identifier(id))
			return nil
		}
		files = append(files, File{Path: rel, Identifier: id, Type: t})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrWalkFailed, desc.SourceDirectory, walkErr)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Identifier < files[j].Identifier })
	slog.Debug("Discovered sources", logfields.PageType(string(t)), logfields.Count(len(files)))
	return files, nil
}

// All discovers the files of every registered page type, in compile order.
func (d *Discovery) All() ([]File, error) {
	var all []File
	for _, desc := range d.registry.Descriptors() {
		files, err := d.Files(desc.Type)
		if err != nil {
			return nil, err
		}
		all = append(all, files...)
	}
	return all, nil
}

// excluded matches an identifier against exact names and path.Match patterns.
func excluded(id string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == id {
			return true
		}
		if ok, err := path.Match(pattern, id); err == nil && ok {
			return true
		}
	}
	return false
}
