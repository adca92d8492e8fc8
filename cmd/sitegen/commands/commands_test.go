package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/config"
	derrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/routes"
	"git.home.luguber.info/inful/sitegen/internal/testutil/testutils"
)

func init() {
	pterm.DisableStyling()
}

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("sitegen"), kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, kctx
}

func TestParseBuildFlags(t *testing.T) {
	cli, kctx := parse(t, "-c", "site/sitegen.yaml", "build", "-o", "public", "--pretty-urls", "--no-feed", "--no-search", "--warnings-fatal")
	assert.Equal(t, "build", kctx.Command())
	assert.True(t, filepath.IsAbs(cli.Config))
	assert.Equal(t, "sitegen.yaml", filepath.Base(cli.Config))

	o := cli.Build.Overrides()
	assert.Equal(t, "public", o.OutputDir)
	require.NotNil(t, o.PrettyURLs)
	assert.True(t, *o.PrettyURLs)
	require.NotNil(t, o.WarningsFatal)
	assert.True(t, *o.WarningsFatal)
	assert.Equal(t, []config.Feature{config.FeatureFeed, config.FeatureSearch}, o.Disable)
}

func TestOverridesZeroWithoutFlags(t *testing.T) {
	var b BuildCmd
	assert.True(t, b.Overrides().IsZero())
}

func TestParseSubcommands(t *testing.T) {
	_, kctx := parse(t, "route:list", "--json")
	assert.Equal(t, "route:list", kctx.Command())

	cli, kctx := parse(t, "rebuild", "_docs/intro.md")
	assert.Equal(t, "rebuild <path>", kctx.Command())
	assert.Equal(t, "_docs/intro.md", cli.Rebuild.Path)
}

func TestParseRebuildFlagsMatchBuild(t *testing.T) {
	cli, kctx := parse(t, "rebuild", "-o", "public", "--pretty-urls", "_docs/intro.md")
	assert.Equal(t, "rebuild <path>", kctx.Command())

	o := cli.Rebuild.Overrides()
	assert.Equal(t, "public", o.OutputDir)
	require.NotNil(t, o.PrettyURLs)
	assert.True(t, *o.PrettyURLs)
	assert.Equal(t, (&BuildCmd{Output: "public", PrettyURLs: true}).Overrides(), o)
	assert.True(t, (&RebuildCmd{}).Overrides().IsZero())
}

func TestParseLogLevel(t *testing.T) {
	t.Setenv(LogLevelEnv, "")
	assert.Equal(t, slog.LevelInfo, parseLogLevel(false))
	assert.Equal(t, slog.LevelDebug, parseLogLevel(true))

	t.Setenv(LogLevelEnv, "warn")
	assert.Equal(t, slog.LevelWarn, parseLogLevel(true))

	t.Setenv(LogLevelEnv, "bogus")
	assert.Equal(t, slog.LevelDebug, parseLogLevel(true))
}

func TestWriteRoutes(t *testing.T) {
	entries := []routes.Entry{
		{Key: "index", Type: "markdown-page", Identifier: "index", SourcePath: "_pages/index.md", OutputPath: "index.html", URI: "/"},
		{Key: "docs/intro", Type: "documentation", Identifier: "01-intro", SourcePath: "_docs/01-intro.md", OutputPath: "docs/intro.html", URI: "/docs/intro.html"},
	}

	var js bytes.Buffer
	require.NoError(t, writeRoutesJSON(&js, entries))
	var decoded []routes.Entry
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, entries, decoded)

	var table bytes.Buffer
	require.NoError(t, writeRoutesTable(&table, entries))
	assert.Contains(t, table.String(), "Route")
	assert.Contains(t, table.String(), "docs/intro")
	assert.Contains(t, table.String(), "/docs/intro.html")
}

func TestInitRefusesExistingConfig(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	cfgPath := filepath.Join(dir, "sitegen.yaml")
	require.NoError(t, RunInit(&out, cfgPath, false))
	assert.Contains(t, out.String(), "Initialized successfully")

	err := RunInit(&out, cfgPath, false)
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryConfig))
	require.NoError(t, RunInit(&out, cfgPath, true))
}

func TestInitThenBuild(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sitegen.yaml")
	var out bytes.Buffer
	require.NoError(t, (&InitCmd{out: &out}).Run(nil, &CLI{Config: cfgPath}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "_pages", "index.md"), []byte("---\ntitle: Home\n---\nHi.\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_docs", "01-intro.md"), []byte("# Intro\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_posts", "2024-01-02-first.md"), []byte("# First\n"), 0o600))

	root := &CLI{Config: cfgPath}
	g := &Global{Context: context.Background()}

	out.Reset()
	require.NoError(t, (&DiscoverCmd{out: &out}).Run(g, root))
	assert.Contains(t, out.String(), "01-intro")
	assert.Contains(t, out.String(), "2024-01-02-first")

	require.Error(t, (&DiscoverCmd{Type: "nope", out: &out}).Run(g, root))

	metricsFile := filepath.Join(dir, "metrics.prom")
	out.Reset()
	build := &BuildCmd{MetricsFile: metricsFile, out: &out}
	require.NoError(t, build.Run(g, root))
	assert.Contains(t, out.String(), "Build complete")

	testutils.NewFileAssertions(t, filepath.Join(dir, "_site")).
		Exists("index.html", "docs/intro.html", "posts/2024-01-02-first.html", "feed.xml").
		Contains("sitemap.xml", "https://example.com/docs/intro.html")
	assert.FileExists(t, metricsFile)

	out.Reset()
	require.NoError(t, (&RouteListCmd{JSON: true, out: &out}).Run(g, root))
	var entries []routes.Entry
	require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
	assert.Len(t, entries, 3)

	out.Reset()
	require.NoError(t, (&RebuildCmd{Path: "_docs/01-intro.md", out: &out}).Run(g, root))
	assert.Contains(t, out.String(), "Rebuilt _docs/01-intro.md")
}

func TestRebuildHonoursBuildFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sitegen.yaml")
	var out bytes.Buffer
	require.NoError(t, (&InitCmd{out: &out}).Run(nil, &CLI{Config: cfgPath}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_docs", "01-intro.md"), []byte("# Intro\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_docs", "02-next.md"), []byte("# Next\n"), 0o600))

	root := &CLI{Config: cfgPath}
	g := &Global{Context: context.Background()}
	require.NoError(t, (&BuildCmd{Output: "public", PrettyURLs: true, out: &out}).Run(g, root))

	target := filepath.Join(dir, "public", "docs", "intro.html")
	// #nosec G304 -- test fixture path.
	want, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(want), `href="/docs/next"`)
	require.NoError(t, os.Remove(target))

	out.Reset()
	require.NoError(t, (&RebuildCmd{Path: "_docs/01-intro.md", Output: "public", PrettyURLs: true, out: &out}).Run(g, root))
	assert.Contains(t, out.String(), target)
	// #nosec G304 -- test fixture path.
	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}
