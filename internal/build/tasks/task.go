// Package tasks implements the post-build pipeline: built-in generators
// (sitemap, feed, search index, manifest) and external command tasks.
package tasks

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/lastmod"
	"git.home.luguber.info/inful/sitegen/internal/routes"
)

// Task is one post-build step.
type Task interface {
	Name() string
	Run(ctx context.Context, tc *Context) error
}

// Context is what tasks see of the finished build.
type Context struct {
	Config     *config.Config
	Routes     *routes.Table
	OutputRoot string
	BuildID    string
	StartedAt  time.Time
	Lastmod    lastmod.Source

	artifacts []string
}

// OutputPath resolves a slash-separated path inside the output root.
func (c *Context) OutputPath(rel string) string {
	return filepath.Join(c.OutputRoot, filepath.FromSlash(rel))
}

// WriteArtifact writes a generated file into the output tree and records it.
func (c *Context) WriteArtifact(rel string, data []byte) error {
	rel = path.Clean(strings.TrimPrefix(rel, "/"))
	target := c.OutputPath(rel)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", rel, err)
	}
	// #nosec G306 -- site output is meant to be world readable.
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	c.artifacts = append(c.artifacts, rel)
	return nil
}

// Artifacts lists the files written through WriteArtifact, in order.
func (c *Context) Artifacts() []string {
	out := make([]string, len(c.artifacts))
	copy(out, c.artifacts)
	return out
}

// AbsoluteURL joins the site base URL and a route URI.
func (c *Context) AbsoluteURL(uri string) string {
	return strings.TrimSuffix(c.Config.Site.BaseURL, "/") + "/" + strings.TrimPrefix(uri, "/")
}

type funcTask struct {
	name string
	fn   func(ctx context.Context, tc *Context) error
}

// NewFunc wraps a function as a Task.
func NewFunc(name string, fn func(ctx context.Context, tc *Context) error) Task {
	return funcTask{name: name, fn: fn}
}

func (f funcTask) Name() string                               { return f.name }
func (f funcTask) Run(ctx context.Context, tc *Context) error { return f.fn(ctx, tc) }
