package tasks

import (
	"log/slog"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/retry"
	"git.home.luguber.info/inful/sitegen/internal/util/sets"
)

// Plan is the input to Assemble.
type Plan struct {
	Config *config.Config
	// Registered are tasks added programmatically, in registration order.
	Registered []Task
	Runner     CommandRunner
}

// Assemble returns the ordered post-build task list: built-in generators,
// configured command tasks, extension tasks, programmatic tasks, and finally
// the manifest. Names are unique; the first task claiming a name wins.
// When extension descriptors cannot be read the error is returned together
// with every other task.
func Assemble(plan Plan) ([]Task, error) {
	cfg := plan.Config
	var list []Task

	hasBaseURL := cfg.Site.BaseURL != ""
	if cfg.Features.Enabled(config.FeatureSitemap) {
		if hasBaseURL {
			list = append(list, Sitemap{})
		} else {
			slog.Info("Skipping task without site.base_url", logfields.Task(SitemapName))
		}
	}
	if cfg.Features.Enabled(config.FeatureFeed) {
		if hasBaseURL {
			list = append(list, Feed{})
		} else {
			slog.Info("Skipping task without site.base_url", logfields.Task(FeedName))
		}
	}
	if cfg.Features.Enabled(config.FeatureSearch) {
		list = append(list, Search{})
	}

	policy := retry.FromConfig(cfg.Build.Retry)
	for _, spec := range cfg.Build.Tasks {
		list = append(list, Command{Spec: spec, Runner: plan.Runner, Retry: policy})
	}

	extensionSpecs, extErr := DiscoverExtensionTasks(cfg.Path(cfg.Paths.Extensions))
	for _, spec := range extensionSpecs {
		list = append(list, Command{Spec: spec, Runner: plan.Runner, Retry: policy})
	}

	list = append(list, plan.Registered...)

	if cfg.Features.Enabled(config.FeatureManifest) {
		list = append(list, Manifest{})
	}

	return dedupe(list), extErr
}

func dedupe(list []Task) []Task {
	seen := sets.New[string]()
	out := make([]Task, 0, len(list))
	for _, t := range list {
		if !seen.Insert(t.Name()) {
			slog.Debug("Dropping duplicate task", logfields.Task(t.Name()))
			continue
		}
		out = append(out, t)
	}
	return out
}
