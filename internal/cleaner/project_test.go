package cleaner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lumipallolabs/sweeper/internal/model"
	"github.com/lumipallolabs/sweeper/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
}

// createWorkspace lays out a cargo project, an npm project, a python venv
// and a .git directory holding a stray Cargo.toml
func createWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "rust", "Cargo.toml"), 10)
	writeFile(t, filepath.Join(root, "rust", "target", "debug", "app"), 4000)
	writeFile(t, filepath.Join(root, "web", "package.json"), 10)
	writeFile(t, filepath.Join(root, "web", "node_modules", "left-pad", "index.js"), 2000)
	writeFile(t, filepath.Join(root, "tools", ".venv", "bin", "python"), 1000)
	writeFile(t, filepath.Join(root, ".git", "hooks", "Cargo.toml"), 1)
	writeFile(t, filepath.Join(root, ".git", "hooks", "target", "x"), 1)
	return root
}

func TestFind(t *testing.T) {
	root := createWorkspace(t)
	scan := scanner.DefaultOptions()
	scan.Exclude = []string{".git"}

	projects, tree, err := Find(context.Background(), root, NewRegistry(), scan, FindOptions{MaxDepth: 10})
	require.NoError(t, err)
	require.NotNil(t, tree)
	require.Len(t, projects, 3)

	assert.Equal(t, "cargo", projects[0].Type)
	assert.Equal(t, filepath.Join(tree.Path, "rust"), projects[0].Path)
	assert.Equal(t, int64(4000), projects[0].Size)
	assert.Equal(t, []string{filepath.Join(tree.Path, "rust", "target")}, projects[0].Artifacts)

	assert.Equal(t, "npm", projects[1].Type)
	assert.Equal(t, int64(2000), projects[1].Size)

	// hidden entries are always scanned
	assert.Equal(t, "python", projects[2].Type)
	assert.Equal(t, int64(1000), projects[2].Size)

	size, _ := Total(projects)
	assert.Equal(t, int64(7000), size)
}

func TestFindWithoutExclude(t *testing.T) {
	root := createWorkspace(t)

	projects, _, err := Find(context.Background(), root, NewRegistry(), scanner.DefaultOptions(), FindOptions{MaxDepth: 10})
	require.NoError(t, err)
	assert.Len(t, projects, 4)
}

func TestFindMissingRoot(t *testing.T) {
	_, _, err := Find(context.Background(), filepath.Join(t.TempDir(), "nope"), NewRegistry(), scanner.DefaultOptions(), FindOptions{MaxDepth: 10})
	assert.ErrorIs(t, err, scanner.ErrPathNotFound)
}

func TestSourceModTimeSkipsArtifacts(t *testing.T) {
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	tree := memTree(map[string]int64{"Cargo.toml": 1, "src/main.rs": 1, "target/debug/app": 1})
	tree.ModTime = old
	tree.Walk(func(e *model.Entry) bool {
		e.ModTime = old
		return true
	})
	target := tree.Find(filepath.Join(testRoot, "target", "debug", "app"))
	require.NotNil(t, target)
	target.ModTime = recent

	p := findAll(tree)
	require.Len(t, p, 1)
	assert.Equal(t, old, p[0].LastModified)

	src := tree.Find(filepath.Join(testRoot, "src", "main.rs"))
	src.ModTime = recent
	assert.Equal(t, recent, sourceModTime(tree))
}

func TestFilterByAge(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	projects := []Project{
		{Path: "/fresh", LastModified: now.Add(-2 * day)},
		{Path: "/stale", LastModified: now.Add(-40 * day)},
		{Path: "/edge", LastModified: now.Add(-30 * day)},
		{Path: "/unknown"},
	}

	kept := FilterByAge(projects, 30*day, now)
	var paths []string
	for _, p := range kept {
		paths = append(paths, p.Path)
	}
	assert.Equal(t, []string{"/stale", "/unknown"}, paths)

	assert.Len(t, FilterByAge(projects, 0, now), 4)
}
