package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// SetupTestGitRepo initializes a git repository in a temporary directory and
// returns it with its worktree and path.
func SetupTestGitRepo(t *testing.T) (*git.Repository, *git.Worktree, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return repo, wt, dir
}

// CommitFile writes rel below the worktree root and commits it with the
// given author time.
func CommitFile(t *testing.T, wt *git.Worktree, root, rel, content string, when time.Time) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	_, err := wt.Add(rel)
	require.NoError(t, err)
	sig := &object.Signature{Name: "tester", Email: "tester@example.com", When: when}
	_, err = wt.Commit("update "+rel, &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
}
