// Package commands implements the sitegen CLI subcommands.
package commands

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitegen/internal/config"
	derrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/observability"
)

// LogLevelEnv overrides the log level chosen by -v.
const LogLevelEnv = "SITEGEN_LOG_LEVEL"

// Global is shared state passed to every subcommand.
type Global struct {
	Logger  *slog.Logger
	Context context.Context
}

func (g *Global) ctx() context.Context {
	if g == nil || g.Context == nil {
		return context.Background()
	}
	return g.Context
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitegen.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build     BuildCmd     `cmd:"" help:"Build the whole site"`
	Rebuild   RebuildCmd   `cmd:"" help:"Recompile a single source file"`
	RouteList RouteListCmd `cmd:"" name:"route:list" help:"List every route"`
	Discover  DiscoverCmd  `cmd:"" help:"List discovered source files per page type"`
	Init      InitCmd      `cmd:"" help:"Create an example configuration and the source directories"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)})
	logger := slog.New(observability.NewContextHandler(handler))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel returns debug with -v, otherwise info. SITEGEN_LOG_LEVEL wins
// over both when it names a valid level.
func parseLogLevel(verbose bool) slog.Level {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if env := strings.TrimSpace(os.Getenv(LogLevelEnv)); env != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(env)); err == nil {
			return parsed
		}
	}
	return level
}

// loadConfig loads the project configuration, falling back to defaults when
// the file does not exist, and classifies failures.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "failed to load configuration").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return cfg, nil
}
