package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pterm/pterm"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output        string `short:"o" help:"Output directory (overrides paths.output)"`
	PrettyURLs    bool   `name:"pretty-urls" help:"Link to pages without the .html suffix"`
	WarningsFatal bool   `name:"warnings-fatal" help:"Fail the build on the first post-build warning"`
	NoSitemap     bool   `name:"no-sitemap" help:"Skip the sitemap task"`
	NoFeed        bool   `name:"no-feed" help:"Skip the feed task"`
	NoSearch      bool   `name:"no-search" help:"Skip the search index task"`
	NoManifest    bool   `name:"no-manifest" help:"Skip the build manifest task"`
	NoAssets      bool   `name:"no-assets" help:"Skip build.assets_command"`
	MetricsFile   string `name:"metrics-file" help:"Write Prometheus metrics in text format to this file" type:"path"`

	out io.Writer
}

// Overrides converts the flags into configuration overrides.
func (b *BuildCmd) Overrides() config.Overrides {
	o := config.Overrides{OutputDir: b.Output}
	if b.PrettyURLs {
		o.PrettyURLs = &b.PrettyURLs
	}
	if b.WarningsFatal {
		o.WarningsFatal = &b.WarningsFatal
	}
	flags := []struct {
		feature config.Feature
		off     bool
	}{
		{config.FeatureSitemap, b.NoSitemap},
		{config.FeatureFeed, b.NoFeed},
		{config.FeatureSearch, b.NoSearch},
		{config.FeatureManifest, b.NoManifest},
	}
	for _, f := range flags {
		if f.off {
			o.Disable = append(o.Disable, f.feature)
		}
	}
	return o
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	out := b.out
	if out == nil {
		out = os.Stdout
	}

	var recorder *metrics.PrometheusRecorder
	metricsFile := b.MetricsFile
	if metricsFile == "" && cfg.Metrics.Textfile != "" {
		metricsFile = cfg.Path(cfg.Metrics.Textfile)
	}
	opts := []build.Option{build.WithObserver(newProgressObserver(out, root.Verbose))}
	if metricsFile != "" {
		recorder = metrics.NewPrometheusRecorder(nil)
		opts = append(opts, build.WithRecorder(recorder))
	}

	pterm.Info.WithWriter(out).Printfln("Building %s", cfg.Site.Name)
	result, runErr := build.New(cfg, opts...).Run(g.ctx(), build.BuildRequest{
		Overrides:  b.Overrides(),
		SkipAssets: b.NoAssets,
	})

	if recorder != nil {
		if err := recorder.WriteTextfile(metricsFile); err != nil {
			slog.Warn("Failed to write metrics file", logfields.Path(metricsFile), logfields.Error(err))
		}
	}
	if result != nil && result.Report != nil {
		printSummary(out, result)
	}
	return runErr
}

func printSummary(out io.Writer, result *build.BuildResult) {
	for _, w := range result.Warnings {
		pterm.Warning.WithWriter(out).Println(w.Error())
	}
	line := fmt.Sprintf("%d pages, %d routes in %s -> %s", result.PagesCompiled, result.Routes,
		result.Duration.Round(1e6), result.OutputPath)
	switch result.Status {
	case build.BuildStatusSuccess:
		pterm.Success.WithWriter(out).Println("Build complete: " + line)
	case build.BuildStatusWarning:
		pterm.Warning.WithWriter(out).Printfln("Build complete with %d warning(s): %s", len(result.Warnings), line)
	default:
		pterm.Error.WithWriter(out).Printfln("Build %s: %s", result.Status, line)
	}
}
