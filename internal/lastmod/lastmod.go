// Package lastmod answers when a source file last changed, for sitemaps.
package lastmod

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// Source reports the last modification time of a project-relative path.
type Source interface {
	LastModified(sourcePath string) (time.Time, bool)
}

// New returns the Source for strategy. The git strategy falls back to file
// modification times when root is not inside a repository.
func New(strategy config.LastmodStrategy, root string) Source {
	switch strategy {
	case config.LastmodNone:
		return None{}
	case config.LastmodGit:
		g, err := OpenGit(root)
		if err != nil {
			slog.Warn("Git lastmod unavailable; using file times", logfields.Path(root), logfields.Error(err))
			return Mtime{Root: root}
		}
		return g
	default:
		return Mtime{Root: root}
	}
}

// None never reports a time.
type None struct{}

func (None) LastModified(string) (time.Time, bool) { return time.Time{}, false }

// Mtime uses filesystem modification times.
type Mtime struct {
	Root string
}

func (m Mtime) LastModified(sourcePath string) (time.Time, bool) {
	info, err := os.Stat(filepath.Join(m.Root, filepath.FromSlash(sourcePath)))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime().UTC(), true
}

// Git uses the committer time of the last commit touching a file.
type Git struct {
	repo    *git.Repository
	root    string
	workdir string
	cache   map[string]time.Time
}

// OpenGit opens the repository containing root.
func OpenGit(root string) (*Git, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	return &Git{repo: repo, root: root, workdir: wt.Filesystem.Root(), cache: make(map[string]time.Time)}, nil
}

func (g *Git) LastModified(sourcePath string) (time.Time, bool) {
	if t, ok := g.cache[sourcePath]; ok {
		return t, !t.IsZero()
	}

	abs, err := filepath.Abs(filepath.Join(g.root, filepath.FromSlash(sourcePath)))
	if err != nil {
		return time.Time{}, false
	}
	rel, err := filepath.Rel(g.workdir, abs)
	if err != nil {
		return time.Time{}, false
	}
	rel = filepath.ToSlash(rel)

	iter, err := g.repo.Log(&git.LogOptions{FileName: &rel})
	if err != nil {
		g.cache[sourcePath] = time.Time{}
		return time.Time{}, false
	}
	defer iter.Close()

	var when time.Time
	_ = iter.ForEach(func(c *object.Commit) error {
		when = c.Committer.When.UTC()
		return storer.ErrStop
	})
	g.cache[sourcePath] = when
	return when, !when.IsZero()
}
