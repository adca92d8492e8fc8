// Package testutils holds fixtures shared by package tests: project trees on
// disk, output assertions and throwaway git repositories.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFiles writes files (slash-separated path -> content) below root.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
}

// WriteProject writes files into a fresh temporary project root.
func WriteProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	WriteFiles(t, root, files)
	return root
}

// FileAssertions checks files below a base directory, typically a build output.
type FileAssertions struct {
	t       *testing.T
	baseDir string
}

// NewFileAssertions creates assertions rooted at baseDir.
func NewFileAssertions(t *testing.T, baseDir string) *FileAssertions {
	return &FileAssertions{t: t, baseDir: baseDir}
}

func (fa *FileAssertions) path(rel string) string {
	return filepath.Join(fa.baseDir, filepath.FromSlash(rel))
}

// Exists asserts that every rel exists.
func (fa *FileAssertions) Exists(rels ...string) *FileAssertions {
	fa.t.Helper()
	for _, rel := range rels {
		require.FileExists(fa.t, fa.path(rel))
	}
	return fa
}

// Missing asserts that no rel exists.
func (fa *FileAssertions) Missing(rels ...string) *FileAssertions {
	fa.t.Helper()
	for _, rel := range rels {
		require.NoFileExists(fa.t, fa.path(rel))
	}
	return fa
}

// Contains asserts that rel contains every fragment.
func (fa *FileAssertions) Contains(rel string, fragments ...string) *FileAssertions {
	fa.t.Helper()
	content := fa.Read(rel)
	for _, f := range fragments {
		require.Contains(fa.t, content, f, rel)
	}
	return fa
}

// Read returns the content of rel.
func (fa *FileAssertions) Read(rel string) string {
	fa.t.Helper()
	data, err := os.ReadFile(fa.path(rel))
	require.NoError(fa.t, err)
	return string(data)
}
