package writer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/pages"
	"git.home.luguber.info/inful/sitegen/internal/pagetype"
	"git.home.luguber.info/inful/sitegen/internal/render"
	"git.home.luguber.info/inful/sitegen/internal/routes"
)

type stubRenderer struct {
	calls []string
	out   string
	err   error
}

func (s *stubRenderer) Render(templateID string, data render.Data) (string, error) {
	s.calls = append(s.calls, templateID+":"+data.Title)
	return s.out + string(data.Content), s.err
}

func buildTable(t *testing.T, files map[string]string) *routes.Table {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	cfg, err := config.Default(root)
	require.NoError(t, err)
	types := pagetype.FromConfig(cfg)
	reg := pages.NewRegistry(types, pages.Options{NumericalOrdering: true})
	for rel := range files {
		d, id, err := types.ForSourcePath(rel)
		require.NoError(t, err)
		_, err = reg.Add(d.Type, id)
		require.NoError(t, err)
	}
	table, err := routes.Build(types, reg.All(), routes.Options{FlattenDocs: true, NumericalOrdering: true})
	require.NoError(t, err)
	return table
}

func TestWriteCreatesParentsAndOverwrites(t *testing.T) {
	table := buildTable(t, map[string]string{"_docs/guide/01-intro.md": "# Intro\n"})
	route, err := table.Get("docs/intro")
	require.NoError(t, err)

	out := t.TempDir()
	stub := &stubRenderer{out: "first:"}
	w := New(out, stub, render.NewGoldmark(), Site{Table: table})

	path, err := w.Write(route)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(out, "docs", "intro.html"), path)
	require.Equal(t, []string{"docs:Intro"}, stub.calls)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(got), "first:")
	require.Contains(t, string(got), `<h1 id="intro">Intro</h1>`)

	stub.out = "second:"
	_, err = w.Write(route)
	require.NoError(t, err)
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(got), "first:")
}

func TestWritePropagatesRendererError(t *testing.T) {
	table := buildTable(t, map[string]string{"_pages/about.gohtml": "<h1>About</h1>"})
	route, err := table.Get("about")
	require.NoError(t, err)

	boom := errors.New("template exploded")
	out := t.TempDir()
	w := New(out, &stubRenderer{err: boom}, render.NewGoldmark(), Site{Table: table})

	_, err = w.Write(route)
	require.Same(t, boom, err)
	require.NoFileExists(t, filepath.Join(out, "about.html"))
}

func TestTargetRejectsEscapes(t *testing.T) {
	w := New(t.TempDir(), &stubRenderer{}, render.NewGoldmark(), Site{})
	_, err := w.target("../evil.html")
	require.ErrorIs(t, err, ErrOutsideOutput)
}
