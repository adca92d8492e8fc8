package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/discovery"
	"git.home.luguber.info/inful/sitegen/internal/lastmod"
	"git.home.luguber.info/inful/sitegen/internal/manifest"
	"git.home.luguber.info/inful/sitegen/internal/pages"
	"git.home.luguber.info/inful/sitegen/internal/pagetype"
	"git.home.luguber.info/inful/sitegen/internal/retry"
	"git.home.luguber.info/inful/sitegen/internal/routes"
	"git.home.luguber.info/inful/sitegen/internal/testutil/testutils"
)

// newContext builds a project from files and writes a stub HTML output for
// every route.
func newContext(t *testing.T, files map[string]string) *Context {
	t.Helper()
	root := t.TempDir()
	testutils.WriteFiles(t, root, files)

	cfg, err := config.Default(root)
	require.NoError(t, err)
	cfg.Site.BaseURL = "https://example.org/"

	types := pagetype.FromConfig(cfg)
	reg := pages.NewRegistry(types, pages.Options{NumericalOrdering: true})
	found, err := discovery.New(types).All()
	require.NoError(t, err)
	for _, f := range found {
		_, err := reg.Add(f.Type, f.Identifier)
		require.NoError(t, err)
	}
	table, err := routes.Build(types, reg.All(), routes.Options{FlattenDocs: true, NumericalOrdering: true})
	require.NoError(t, err)

	tc := &Context{
		Config:     cfg,
		Routes:     table,
		OutputRoot: cfg.Path(cfg.Paths.Output),
		BuildID:    "build-1",
		Lastmod:    lastmod.None{},
	}
	for _, r := range table.All() {
		html := "<html><body><nav>Menu</nav><main><h1>" + r.Page().Title() + "</h1><p>Body of " + r.Key + "</p></main></body></html>"
		p := tc.OutputPath(r.OutputPath)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(html), 0o600))
	}
	return tc
}

func readOutput(t *testing.T, tc *Context, rel string) string {
	t.Helper()
	data, err := os.ReadFile(tc.OutputPath(rel))
	require.NoError(t, err)
	return string(data)
}

func TestSitemapSkips404(t *testing.T) {
	tc := newContext(t, map[string]string{
		"_pages/index.md":   "# Home\n",
		"_pages/404.md":     "# Not found\n",
		"_docs/01-intro.md": "# Intro\n",
	})

	require.NoError(t, Sitemap{}.Run(context.Background(), tc))

	out := readOutput(t, tc, "sitemap.xml")
	require.True(t, strings.HasPrefix(out, "<?xml"))
	require.Contains(t, out, "<loc>https://example.org/index.html</loc>")
	require.Contains(t, out, "<loc>https://example.org/docs/intro.html</loc>")
	require.NotContains(t, out, "404")
	require.NotContains(t, out, "<lastmod>")
	require.Equal(t, []string{"sitemap.xml"}, tc.Artifacts())
}

func TestSitemapUsesLastmodSource(t *testing.T) {
	tc := newContext(t, map[string]string{"_pages/index.md": "# Home\n"})
	tc.Lastmod = lastmod.Mtime{Root: tc.Config.Root}

	require.NoError(t, Sitemap{}.Run(context.Background(), tc))
	require.Contains(t, readOutput(t, tc, "sitemap.xml"), "<lastmod>")
}

func TestFeedOrdersPostsNewestFirst(t *testing.T) {
	tc := newContext(t, map[string]string{
		"_posts/2024-01-01-first.md":  "# First\n",
		"_posts/2024-06-01-second.md": "---\ndescription: The second one\n---\n# Second\n",
		"_posts/undated.md":           "---\ndate: 2023-05-05\n---\n# Old\n",
		"_pages/about.md":             "# About\n",
	})
	tc.Config.Feed.Title = "News"

	require.NoError(t, Feed{}.Run(context.Background(), tc))

	out := readOutput(t, tc, "feed.xml")
	require.Contains(t, out, `<rss version="2.0">`)
	require.Contains(t, out, "<title>News</title>")
	require.Contains(t, out, "<description>The second one</description>")
	require.NotContains(t, out, "About")

	second := strings.Index(out, "<title>Second</title>")
	first := strings.Index(out, "<title>First</title>")
	old := strings.Index(out, "<title>Old</title>")
	require.True(t, second >= 0 && first >= 0 && old >= 0)
	require.Less(t, second, first)
	require.Less(t, first, old)
}

func TestExtractText(t *testing.T) {
	text, err := ExtractText([]byte(`<html><head><title>T</title></head><body>
<header>Site</header><nav><a>Menu</a></nav>
<main><h1>Intro</h1>
<p>Hello   <em>world</em>.</p><script>var x = 1;</script></main>
<footer>Footer</footer></body></html>`))
	require.NoError(t, err)
	require.Equal(t, "Intro Hello world .", text)
}

func TestExtractTextFallsBackToBody(t *testing.T) {
	text, err := ExtractText([]byte(`<body><p>Only body</p><aside>side</aside></body>`))
	require.NoError(t, err)
	require.Equal(t, "Only body", text)
}

func TestSearchIndexesDocumentation(t *testing.T) {
	tc := newContext(t, map[string]string{
		"_pages/about.md":         "# About\n",
		"_docs/index.md":          "# Docs\n",
		"_docs/guide/01-intro.md": "# Intro\n",
	})

	require.NoError(t, Search{}.Run(context.Background(), tc))

	var entries []SearchEntry
	require.NoError(t, json.Unmarshal([]byte(readOutput(t, tc, "docs/search.json")), &entries))
	require.Len(t, entries, 2)

	bySlug := map[string]SearchEntry{}
	for _, e := range entries {
		bySlug[e.Slug] = e
	}
	require.Equal(t, "Intro", bySlug["intro"].Title)
	require.Equal(t, "/docs/intro.html", bySlug["intro"].Destination)
	require.Equal(t, "Intro Body of docs/intro", bySlug["intro"].Content)
	require.Contains(t, bySlug, "index")
}

func TestSearchWithoutDocsWritesEmptyIndex(t *testing.T) {
	tc := newContext(t, map[string]string{"_pages/about.md": "# About\n"})
	require.NoError(t, Search{}.Run(context.Background(), tc))
	require.JSONEq(t, "[]", readOutput(t, tc, "docs/search.json"))
}

func TestManifestRecordsPagesAndArtifacts(t *testing.T) {
	tc := newContext(t, map[string]string{
		"_pages/index.md": "---\ntitle: Home\n---\nWelcome\n",
		"_docs/intro.md":  "# Intro\n",
	})
	require.NoError(t, Sitemap{}.Run(context.Background(), tc))
	require.NoError(t, os.Remove(tc.OutputPath("docs/intro.html")))

	require.NoError(t, Manifest{}.Run(context.Background(), tc))

	m, err := manifest.Read(filepath.Join(tc.Config.Root, ".sitegen", manifest.Filename))
	require.NoError(t, err)
	require.Equal(t, "build-1", m.ID)
	require.Len(t, m.Inputs.Pages, 1)
	require.Equal(t, "index", m.Inputs.Pages[0].RouteKey)
	require.NotEmpty(t, m.Inputs.Pages[0].SourceFingerprint)
	require.Len(t, m.Inputs.Pages[0].OutputHash, 64)
	require.Contains(t, m.Outputs.ArtifactHashes, "sitemap.xml")
	require.NotEmpty(t, m.Outputs.ContentHash)
}

func TestManifestHashIsStable(t *testing.T) {
	tc := newContext(t, map[string]string{"_pages/index.md": "# Home\n"})
	path := filepath.Join(tc.Config.Root, ".sitegen", manifest.Filename)

	require.NoError(t, Manifest{}.Run(context.Background(), tc))
	first, err := manifest.Read(path)
	require.NoError(t, err)

	tc.BuildID = "build-2"
	require.NoError(t, Manifest{}.Run(context.Background(), tc))
	second, err := manifest.Read(path)
	require.NoError(t, err)

	require.Equal(t, first.Outputs.ContentHash, second.Outputs.ContentHash)
	require.Equal(t, "build-2", second.ID)
}

type call struct {
	dir  string
	env  []string
	name string
	args []string
}

type fakeRunner struct {
	calls  []call
	stderr string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, dir string, env []string, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, call{dir: dir, env: env, name: name, args: args})
	return []byte("ok"), []byte(f.stderr), f.err
}

func TestCommandPassesBuildEnvironment(t *testing.T) {
	tc := newContext(t, nil)
	runner := &fakeRunner{}
	task := Command{Spec: config.TaskConfig{Name: "lint", Command: "htmltest", Args: []string{"-c", "x"}, Dir: "tools"}, Runner: runner}

	require.Equal(t, "lint", task.Name())
	require.NoError(t, task.Run(context.Background(), tc))
	require.Len(t, runner.calls, 1)
	c := runner.calls[0]
	require.Equal(t, filepath.Join(tc.Config.Root, "tools"), c.dir)
	require.Equal(t, "htmltest", c.name)
	require.Equal(t, []string{"-c", "x"}, c.args)
	require.Contains(t, c.env, "SITEGEN_OUTPUT="+tc.OutputRoot)
	require.Contains(t, c.env, "SITEGEN_BUILD_ID=build-1")
}

func TestCommandFailureIncludesStderr(t *testing.T) {
	tc := newContext(t, nil)
	boom := errors.New("exit status 1")
	runner := &fakeRunner{stderr: "broken link\n", err: boom}

	err := Command{Spec: config.TaskConfig{Name: "lint", Command: "htmltest"}, Runner: runner}.Run(context.Background(), tc)
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "broken link")
}

type flakyRunner struct {
	failures int
	calls    int
}

func (f *flakyRunner) Run(context.Context, string, []string, string, ...string) ([]byte, []byte, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, []byte("busy"), errors.New("exit status 75")
	}
	return nil, nil, nil
}

func TestCommandRetriesWithPolicy(t *testing.T) {
	tc := newContext(t, nil)
	runner := &flakyRunner{failures: 2}
	policy := retry.FromConfig(config.RetryConfig{Backoff: config.RetryBackoffFixed, Initial: time.Millisecond, Max: time.Millisecond, MaxRetries: 2})

	task := Command{Spec: config.TaskConfig{Name: "upload", Command: "rsync"}, Runner: runner, Retry: policy}
	require.NoError(t, task.Run(context.Background(), tc))
	require.Equal(t, 3, runner.calls)

	runner = &flakyRunner{failures: 5}
	task.Runner = runner
	require.ErrorContains(t, task.Run(context.Background(), tc), "busy")
	require.Equal(t, 3, runner.calls)
}

func TestRunAssetsCommandUsesShell(t *testing.T) {
	runner := &fakeRunner{}
	require.NoError(t, RunAssetsCommand(context.Background(), runner, "/project", "npm run build"))
	require.Equal(t, "sh", runner.calls[0].name)
	require.Equal(t, []string{"-c", "npm run build"}, runner.calls[0].args)
	require.Equal(t, "/project", runner.calls[0].dir)
}

func TestDiscoverExtensionTasks(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFiles(t, root, map[string]string{
		"tasks/b-deploy.yaml": "command: rsync\nargs: [-a, _site/, host:/srv]\n",
		"tasks/a-check.yml":   "name: check\ncommand: htmltest\n",
		"tasks/notes.txt":     "ignored",
	})

	specs, err := DiscoverExtensionTasks(root)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	require.Equal(t, "check", specs[0].Name)
	require.Equal(t, "b-deploy", specs[1].Name)
	require.Equal(t, []string{"-a", "_site/", "host:/srv"}, specs[1].Args)
}

func TestDiscoverExtensionTasksMissingDir(t *testing.T) {
	specs, err := DiscoverExtensionTasks(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	require.Empty(t, specs)
}

func TestDiscoverExtensionTasksRequiresCommand(t *testing.T) {
	root := t.TempDir()
	testutils.WriteFiles(t, root, map[string]string{
		"tasks/a-good.yaml": "command: echo\n",
		"tasks/b-bad.yaml":  "name: bad\n",
	})
	specs, err := DiscoverExtensionTasks(root)
	require.EqualError(t, err, "extension task b-bad.yaml: command is required")
	require.Len(t, specs, 1)
	require.Equal(t, "a-good", specs[0].Name)
}

func names(list []Task) []string {
	out := make([]string, 0, len(list))
	for _, t := range list {
		out = append(out, t.Name())
	}
	return out
}

func TestAssembleOrder(t *testing.T) {
	tc := newContext(t, map[string]string{
		"extensions/tasks/deploy.yaml": "command: rsync\n",
	})
	tc.Config.Build.Tasks = []config.TaskConfig{{Name: "lint", Command: "htmltest"}}
	custom := NewFunc("custom", func(context.Context, *Context) error { return nil })

	list, err := Assemble(Plan{Config: tc.Config, Registered: []Task{custom}})
	require.NoError(t, err)
	require.Equal(t, []string{"sitemap", "feed", "search", "lint", "deploy", "custom", "manifest"}, names(list))
}

func TestAssembleWithoutBaseURL(t *testing.T) {
	tc := newContext(t, nil)
	tc.Config.Site.BaseURL = ""
	off := false
	tc.Config.Features.Manifest = &off

	list, err := Assemble(Plan{Config: tc.Config})
	require.NoError(t, err)
	require.Equal(t, []string{"search"}, names(list))
}

func TestAssembleDeduplicatesByName(t *testing.T) {
	tc := newContext(t, nil)
	tc.Config.Build.Tasks = []config.TaskConfig{{Name: "search", Command: "pagefind"}}
	dup := NewFunc("manifest", func(context.Context, *Context) error { return nil })

	list, err := Assemble(Plan{Config: tc.Config, Registered: []Task{dup}})
	require.NoError(t, err)
	require.Equal(t, []string{"sitemap", "feed", "search", "manifest"}, names(list))
	_, builtin := list[2].(Search)
	require.True(t, builtin)
	_, isFunc := list[3].(funcTask)
	require.True(t, isFunc)
}

func TestAssembleKeepsTasksWhenExtensionsAreInvalid(t *testing.T) {
	tc := newContext(t, map[string]string{
		"extensions/tasks/a-good.yaml":   "command: echo\nargs: [done]\n",
		"extensions/tasks/b-bad.yaml":    "name: bad\n",
		"extensions/tasks/c-broken.yaml": "command: [unclosed\n",
	})
	runner := &fakeRunner{}

	list, err := Assemble(Plan{Config: tc.Config, Runner: runner})
	require.Error(t, err)
	require.Contains(t, err.Error(), "b-bad.yaml: command is required")
	require.Contains(t, err.Error(), "parse extension task c-broken.yaml")
	require.Equal(t, []string{"sitemap", "feed", "search", "a-good", "manifest"}, names(list))

	for _, task := range list {
		if task.Name() == "a-good" {
			require.NoError(t, task.Run(context.Background(), tc))
		}
	}
	require.Len(t, runner.calls, 1)
	require.Equal(t, "echo", runner.calls[0].name)
	require.Equal(t, []string{"done"}, runner.calls[0].args)
}
