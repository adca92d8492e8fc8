package build

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/build/tasks"
	"git.home.luguber.info/inful/sitegen/internal/config"
	derrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
	"git.home.luguber.info/inful/sitegen/internal/manifest"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/pagetype"
	"git.home.luguber.info/inful/sitegen/internal/render"
	"git.home.luguber.info/inful/sitegen/internal/routes"
	"git.home.luguber.info/inful/sitegen/internal/testutil/testutils"
)

var siteFiles = map[string]string{
	"_pages/index.md":             "---\ntitle: Welcome\n---\nHello **world**.\n",
	"_pages/about.md":             "# About us\n",
	"_pages/secret.md":            "---\nnavigation:\n  hidden: true\n---\n# Secret\n",
	"_pages/contact.gohtml":       "{{/* @title = \"Contact\" */}}\n{{ template \"head\" . }}<main><h1>Contact</h1></main>{{ template \"foot\" . }}\n",
	"_pages/_partial.md":          "# Skipped\n",
	"_posts/2024-05-01-launch.md": "# Launch\nWe launched.\n",
	"_docs/index.md":              "# Documentation\n",
	"_docs/guide/01-intro.md":     "# Intro\nStart here.\n",
	"_docs/guide/02-advanced.md":  "# Advanced\nGo deeper.\n",
	"_layouts/.keep":              "",
	"extensions/tasks/.gitkeep":   "",
}

func newConfig(t *testing.T, root string) *config.Config {
	t.Helper()
	cfg, err := config.Default(root)
	require.NoError(t, err)
	cfg.Site.Name = "Example"
	cfg.Site.BaseURL = "https://example.org"
	return cfg
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunBuildsCompleteSite(t *testing.T) {
	root := testutils.WriteProject(t, siteFiles)
	cfg := newConfig(t, root)

	result, err := New(cfg).Run(context.Background(), BuildRequest{})
	require.NoError(t, err)
	require.Equal(t, BuildStatusSuccess, result.Status)
	require.Equal(t, 8, result.Routes)
	require.Equal(t, 8, result.PagesCompiled)
	require.NotEmpty(t, result.BuildID)

	out := filepath.Join(root, "_site")
	for _, rel := range []string{
		"index.html", "about.html", "secret.html", "contact.html",
		"posts/2024-05-01-launch.html",
		"docs/index.html", "docs/intro.html", "docs/advanced.html",
		"sitemap.xml", "feed.xml", "docs/search.json",
	} {
		require.FileExists(t, filepath.Join(out, filepath.FromSlash(rel)))
	}
	require.NoFileExists(t, filepath.Join(out, "_partial.html"))

	index := readFile(t, filepath.Join(out, "index.html"))
	require.Contains(t, index, "<strong>world</strong>")
	require.Contains(t, index, `href="/about.html"`)
	require.NotContains(t, index, `href="/secret.html"`)
	require.Contains(t, readFile(t, filepath.Join(out, "contact.html")), "<h1>Contact</h1>")

	report := result.Report
	require.Equal(t, OutcomeSuccess, report.Outcome)
	require.Equal(t, PageCount{Compiled: 3}, report.Pages[pagetype.MarkdownPage])
	require.Equal(t, PageCount{Compiled: 3}, report.Pages[pagetype.Documentation])
	require.Equal(t, []string{"sitemap", "feed", "search", "manifest"}, report.Tasks)
	for _, stage := range []StageName{StageDiscover, StageParse, StageRoute, StageNavigate, StageCompile, StagePostBuild} {
		require.Contains(t, report.StageDurations, stage)
	}
	require.NotContains(t, report.StageDurations, StagePrebuild)

	cache := filepath.Join(root, ".sitegen")
	require.FileExists(t, filepath.Join(cache, ReportJSONFilename))
	require.Contains(t, readFile(t, filepath.Join(cache, ReportTextFilename)), "outcome=success")
	m, err := manifest.Read(filepath.Join(cache, manifest.Filename))
	require.NoError(t, err)
	require.Equal(t, result.BuildID, m.ID)
	require.Len(t, m.Inputs.Pages, 8)
}

func TestRunDocsSidebarGroupsByDirectory(t *testing.T) {
	root := testutils.WriteProject(t, siteFiles)
	_, err := New(newConfig(t, root)).Run(context.Background(), BuildRequest{})
	require.NoError(t, err)

	intro := readFile(t, filepath.Join(root, "_site", "docs", "intro.html"))
	group := strings.Index(intro, "Guide")
	first := strings.Index(intro, `href="/docs/intro.html"`)
	second := strings.Index(intro, `href="/docs/advanced.html"`)
	require.True(t, group >= 0 && first >= 0 && second >= 0)
	require.Less(t, first, second)
}

func collectTree(t *testing.T, dir string) map[string]string {
	t.Helper()
	out := map[string]string{}
	require.NoError(t, filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, _ := filepath.Rel(dir, p)
		out[filepath.ToSlash(rel)] = readFile(t, p)
		return nil
	}))
	return out
}

func TestRunIsDeterministic(t *testing.T) {
	root := testutils.WriteProject(t, siteFiles)
	o := New(newConfig(t, root))

	_, err := o.Run(context.Background(), BuildRequest{Overrides: config.Overrides{OutputDir: "out-a"}})
	require.NoError(t, err)
	_, err = o.Run(context.Background(), BuildRequest{Overrides: config.Overrides{OutputDir: "out-b"}})
	require.NoError(t, err)

	a := collectTree(t, filepath.Join(root, "out-a"))
	b := collectTree(t, filepath.Join(root, "out-b"))
	require.NotEmpty(t, a)
	require.Equal(t, a, b)
}

func TestRunAppliesOverridesToCopy(t *testing.T) {
	root := testutils.WriteProject(t, siteFiles)
	cfg := newConfig(t, root)
	pretty := true

	result, err := New(cfg).Run(context.Background(), BuildRequest{Overrides: config.Overrides{
		PrettyURLs: &pretty,
		Disable:    []config.Feature{config.FeatureFeed, config.FeatureSitemap},
	}})
	require.NoError(t, err)
	require.False(t, cfg.PrettyURLs)
	require.Equal(t, []string{"search", "manifest"}, result.Report.Tasks)

	index := readFile(t, filepath.Join(root, "_site", "index.html"))
	require.Contains(t, index, `href="/about"`)
	require.NoFileExists(t, filepath.Join(root, "_site", "feed.xml"))
}

func TestRebuildReproducesFullBuildOutput(t *testing.T) {
	root := testutils.WriteProject(t, siteFiles)
	o := New(newConfig(t, root))
	_, err := o.Run(context.Background(), BuildRequest{})
	require.NoError(t, err)

	target := filepath.Join(root, "_site", "docs", "intro.html")
	want := readFile(t, target)
	require.NoError(t, os.Remove(target))

	written, err := o.Rebuild(context.Background(), "_docs/guide/01-intro.md", config.Overrides{})
	require.NoError(t, err)
	require.Equal(t, target, written)
	require.Equal(t, want, readFile(t, target))

	written, err = o.Rebuild(context.Background(), filepath.Join(root, "_docs", "guide", "01-intro.md"), config.Overrides{})
	require.NoError(t, err)
	require.Equal(t, want, readFile(t, written))
}

func TestRebuildAppliesBuildOverrides(t *testing.T) {
	root := testutils.WriteProject(t, siteFiles)
	o := New(newConfig(t, root))
	pretty := true
	overrides := config.Overrides{PrettyURLs: &pretty, OutputDir: "public"}
	_, err := o.Run(context.Background(), BuildRequest{Overrides: overrides})
	require.NoError(t, err)

	target := filepath.Join(root, "public", "docs", "intro.html")
	want := readFile(t, target)
	require.Contains(t, want, `href="/docs/advanced"`)
	require.NoError(t, os.Remove(target))

	written, err := o.Rebuild(context.Background(), "_docs/guide/01-intro.md", overrides)
	require.NoError(t, err)
	require.Equal(t, target, written)
	require.Equal(t, want, readFile(t, target))
	require.NoFileExists(t, filepath.Join(root, "_site", "docs", "intro.html"))
}

func TestRebuildRejectsFilesOutsideSourceDirectories(t *testing.T) {
	root := testutils.WriteProject(t, siteFiles)
	o := New(newConfig(t, root))

	for _, p := range []string{"README.md", "../elsewhere/page.md", "/etc/passwd"} {
		_, err := o.Rebuild(context.Background(), p, config.Overrides{})
		require.ErrorIs(t, err, ErrSourceOutsideProject, p)
		require.True(t, derrors.HasCategory(err, derrors.CategoryValidation), p)
	}
}

func TestRebuildUnknownSourceIsRouteNotFound(t *testing.T) {
	root := testutils.WriteProject(t, siteFiles)
	_, err := New(newConfig(t, root)).Rebuild(context.Background(), "_docs/missing.md", config.Overrides{})
	require.ErrorIs(t, err, routes.ErrRouteNotFound)
	require.Equal(t, 4, derrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestRunFailsOnRouteCollision(t *testing.T) {
	root := testutils.WriteProject(t, map[string]string{
		"_docs/guide/setup.md": "# Setup\n",
		"_docs/admin/setup.md": "# Admin setup\n",
	})

	result, err := New(newConfig(t, root)).Run(context.Background(), BuildRequest{})
	require.ErrorIs(t, err, routes.ErrRouteCollision)
	require.True(t, derrors.HasCategory(err, derrors.CategoryRouting))
	require.Equal(t, BuildStatusFailed, result.Status)
	require.Contains(t, err.Error(), "_docs/guide/setup.md")
	require.Contains(t, err.Error(), "_docs/admin/setup.md")
	require.NoDirExists(t, filepath.Join(root, "_site"))
}

func TestRunFailsOnFrontMatterParseError(t *testing.T) {
	root := testutils.WriteProject(t, map[string]string{
		"_pages/broken.md": "---\ntitle: [unclosed\n---\nBody\n",
	})

	result, err := New(newConfig(t, root)).Run(context.Background(), BuildRequest{})
	require.ErrorIs(t, err, frontmatter.ErrParse)
	require.True(t, derrors.HasCategory(err, derrors.CategoryParse))
	require.Equal(t, BuildStatusFailed, result.Status)
}

// failingRenderer fails for one route key and delegates the rest.
type failingRenderer struct {
	next    render.Renderer
	failKey string
}

var errRender = errors.New("template exploded")

func (f failingRenderer) Render(id string, data render.Data) (string, error) {
	if data.Route.Key == f.failKey {
		return "", errRender
	}
	return f.next.Render(id, data)
}

func TestCompileFailureStopsOnlyItsPageType(t *testing.T) {
	root := testutils.WriteProject(t, siteFiles)
	tpl, err := render.NewTemplates(filepath.Join(root, "_layouts"))
	require.NoError(t, err)

	result, err := New(newConfig(t, root), WithRenderer(failingRenderer{next: tpl, failKey: "docs/advanced"})).
		Run(context.Background(), BuildRequest{})
	require.ErrorIs(t, err, ErrCompile)
	require.ErrorIs(t, err, errRender)
	require.True(t, derrors.HasCategory(err, derrors.CategoryBuild))
	require.Equal(t, BuildStatusFailed, result.Status)

	report := result.Report
	require.Equal(t, PageCount{Compiled: 1, Failed: 1}, report.Pages[pagetype.Documentation])
	require.Equal(t, PageCount{Compiled: 3}, report.Pages[pagetype.MarkdownPage])
	require.Equal(t, PageCount{Compiled: 1}, report.Pages[pagetype.MarkdownPost])
	require.Empty(t, report.Tasks)
	require.FileExists(t, filepath.Join(root, "_site", "docs", "intro.html"))
	require.NoFileExists(t, filepath.Join(root, "_site", "docs", "advanced.html"))
	require.NoFileExists(t, filepath.Join(root, "_site", "docs", "index.html"))
	require.FileExists(t, filepath.Join(root, "_site", "about.html"))
}

func TestTaskFailureBecomesWarning(t *testing.T) {
	root := testutils.WriteProject(t, siteFiles)
	boom := errors.New("upload refused")
	var ranAfter bool

	o := New(newConfig(t, root),
		WithTask(tasks.NewFunc("upload", func(context.Context, *tasks.Context) error { return boom })),
		WithTask(tasks.NewFunc("after", func(context.Context, *tasks.Context) error { ranAfter = true; return nil })),
	)
	result, err := o.Run(context.Background(), BuildRequest{})
	require.NoError(t, err)
	require.Equal(t, BuildStatusWarning, result.Status)
	require.True(t, result.Status.IsSuccess())
	require.True(t, ranAfter)
	require.Len(t, result.Warnings, 1)
	require.Equal(t, "upload", result.Warnings[0].Source)
	require.ErrorIs(t, result.Warnings[0], boom)
	require.Equal(t, []string{"sitemap", "feed", "search", "upload", "after", "manifest"}, result.Report.Tasks)
}

func TestWarningsFatalAbortsAtFirstWarning(t *testing.T) {
	root := testutils.WriteProject(t, siteFiles)
	cfg := newConfig(t, root)
	cfg.Build.WarningsFatal = true
	var ranAfter bool

	o := New(cfg,
		WithTask(tasks.NewFunc("upload", func(context.Context, *tasks.Context) error { return errors.New("refused") })),
		WithTask(tasks.NewFunc("after", func(context.Context, *tasks.Context) error { ranAfter = true; return nil })),
	)
	result, err := o.Run(context.Background(), BuildRequest{})
	require.ErrorIs(t, err, ErrWarningsFatal)
	require.Equal(t, 13, derrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	require.Equal(t, BuildStatusFailed, result.Status)
	require.False(t, ranAfter)
}

func TestPanickingTaskIsRecovered(t *testing.T) {
	root := testutils.WriteProject(t, siteFiles)
	o := New(newConfig(t, root))
	o.Register(tasks.NewFunc("explode", func(context.Context, *tasks.Context) error { panic("boom") }))

	result, err := o.Run(context.Background(), BuildRequest{})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	require.Contains(t, result.Warnings[0].Error(), "task panicked: boom")
}

type recordingRunner struct {
	calls [][]string
}

func (r *recordingRunner) Run(_ context.Context, _ string, _ []string, name string, args ...string) ([]byte, []byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	return nil, nil, nil
}

func TestAssetsCommandRunsBeforeDiscovery(t *testing.T) {
	root := testutils.WriteProject(t, siteFiles)
	cfg := newConfig(t, root)
	cfg.Build.AssetsCommand = "npm run build"
	cfg.Build.Tasks = []config.TaskConfig{{Name: "lint", Command: "htmltest"}}
	runner := &recordingRunner{}

	result, err := New(cfg, WithCommandRunner(runner)).Run(context.Background(), BuildRequest{})
	require.NoError(t, err)
	require.Contains(t, result.Report.StageDurations, StagePrebuild)
	require.Equal(t, [][]string{{"sh", "-c", "npm run build"}, {"htmltest"}}, runner.calls)

	runner.calls = nil
	_, err = New(cfg, WithCommandRunner(runner)).Run(context.Background(), BuildRequest{SkipAssets: true})
	require.NoError(t, err)
	require.Equal(t, [][]string{{"htmltest"}}, runner.calls)
}

type countingObserver struct {
	NoopObserver
	stages []StageName
	pages  map[pagetype.Type]int
	tasks  []string
	done   *Report
}

func (c *countingObserver) OnStageStart(s StageName) { c.stages = append(c.stages, s) }
func (c *countingObserver) OnPageCompiled(t pagetype.Type, _ routes.Route, done, total int, _ time.Duration, _ error) {
	if done == total {
		c.pages[t] = total
	}
}
func (c *countingObserver) OnTaskComplete(task string, _ time.Duration, _ error) {
	c.tasks = append(c.tasks, task)
}
func (c *countingObserver) OnBuildComplete(r *Report) { c.done = r }

func TestObserverAndMetrics(t *testing.T) {
	root := testutils.WriteProject(t, siteFiles)
	obs := &countingObserver{pages: map[pagetype.Type]int{}}
	rec := metrics.NewPrometheusRecorder(prom.NewRegistry())

	result, err := New(newConfig(t, root), WithObserver(obs), WithRecorder(rec)).Run(context.Background(), BuildRequest{})
	require.NoError(t, err)
	require.Equal(t, []StageName{StageDiscover, StageParse, StageRoute, StageNavigate, StageCompile, StagePostBuild}, obs.stages)
	require.Equal(t, map[pagetype.Type]int{
		pagetype.Templated:     1,
		pagetype.MarkdownPage:  3,
		pagetype.MarkdownPost:  1,
		pagetype.Documentation: 3,
	}, obs.pages)
	require.Equal(t, result.Report.Tasks, obs.tasks)
	require.Same(t, result.Report, obs.done)

	families, err := rec.Registry().Gather()
	require.NoError(t, err)
	found := map[string]bool{}
	for _, mf := range families {
		found[mf.GetName()] = true
	}
	require.True(t, found["sitegen_pages_compiled_total"])
	require.True(t, found["sitegen_build_outcomes_total"])
	require.True(t, found["sitegen_task_duration_seconds"])
}

func TestRunCanceledContext(t *testing.T) {
	root := testutils.WriteProject(t, siteFiles)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(newConfig(t, root)).Run(ctx, BuildRequest{})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, BuildStatusCancelled, result.Status)
	require.Equal(t, OutcomeCanceled, result.Report.Outcome)
}

func TestRoutesListsTableWithoutCompiling(t *testing.T) {
	root := testutils.WriteProject(t, siteFiles)
	table, err := New(newConfig(t, root)).Routes(context.Background())
	require.NoError(t, err)
	require.Equal(t, 8, table.Len())
	_, err = table.Get("docs/intro")
	require.NoError(t, err)
	require.NoDirExists(t, filepath.Join(root, "_site"))
}

func TestRunWithoutConfig(t *testing.T) {
	result, err := New(nil).Run(context.Background(), BuildRequest{})
	require.Error(t, err)
	require.True(t, derrors.HasCategory(err, derrors.CategoryConfig))
	require.Equal(t, BuildStatusFailed, result.Status)
}
