package cleaner

import (
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/lumipallolabs/sweeper/internal/model"
	"github.com/lumipallolabs/sweeper/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRoot = filepath.FromSlash("/src")

// memTree builds a tree under testRoot from slash separated relative paths.
// A trailing slash makes an empty directory; files get the given size.
func memTree(files map[string]int64) *model.Entry {
	root := model.NewDir(testRoot, time.Time{})
	nodes := map[string]*model.Entry{"": root}

	var ensureDir func(rel string) *model.Entry
	ensureDir = func(rel string) *model.Entry {
		if n, ok := nodes[rel]; ok {
			return n
		}
		parent := ensureDir(parentOf(rel))
		n := model.NewDir(filepath.Join(testRoot, filepath.FromSlash(rel)), time.Time{})
		parent.Children = append(parent.Children, n)
		nodes[rel] = n
		return n
	}

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if strings.HasSuffix(p, "/") {
			ensureDir(strings.TrimSuffix(p, "/"))
			continue
		}
		parent := ensureDir(parentOf(p))
		f := model.NewFile(filepath.Join(testRoot, filepath.FromSlash(p)), files[p], files[p], time.Time{})
		parent.Children = append(parent.Children, f)
	}
	root.ComputeTotals()
	return root
}

func parentOf(rel string) string {
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		return rel[:i]
	}
	return ""
}

func findAll(tree *model.Entry) []Project {
	return Detect(tree, NewRegistry(), FindOptions{MaxDepth: 10})
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, []string{"bazel", "cargo", "cmake", "dotnet", "go", "gradle", "maven", "npm", "python"}, reg.IDs())
	assert.Equal(t, 9, reg.Len())

	d, ok := reg.Get("npm")
	require.True(t, ok)
	assert.Equal(t, "npm/Node.js", d.Name)
	_, ok = reg.Get("cobol")
	assert.False(t, ok)

	sel, err := reg.Select([]string{"npm", "cargo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cargo", "npm"}, sel.IDs())

	all, err := reg.Select(nil)
	require.NoError(t, err)
	assert.Equal(t, 9, all.Len())

	_, err = reg.Select([]string{"npm", "cobol"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cobol")
	assert.Contains(t, err.Error(), "valid: bazel, cargo")

	assert.Equal(t, []string{"bazel", "cmake", "dotnet", "go", "gradle", "maven", "python"},
		reg.Without([]string{"cargo", "npm"}).IDs())
}

func TestDetectProjectTypes(t *testing.T) {
	tests := []struct {
		name      string
		files     map[string]int64
		wantType  string
		artifacts []string
		size      int64
	}{
		{
			name:      "cargo",
			files:     map[string]int64{"Cargo.toml": 10, "src/main.rs": 20, "target/debug/app": 500},
			wantType:  "cargo",
			artifacts: []string{"target"},
			size:      500,
		},
		{
			name:      "npm",
			files:     map[string]int64{"package.json": 10, "node_modules/a/index.js": 300},
			wantType:  "npm",
			artifacts: []string{"node_modules"},
			size:      300,
		},
		{
			name:      "cmake needs a build directory",
			files:     map[string]int64{"CMakeLists.txt": 1, "build/app.o": 70},
			wantType:  "cmake",
			artifacts: []string{"build"},
			size:      70,
		},
		{
			name:      "dotnet by project file extension",
			files:     map[string]int64{"App.csproj": 1, "bin/App.dll": 40, "obj/cache": 2},
			wantType:  "dotnet",
			artifacts: []string{"bin", "obj"},
			size:      42,
		},
		{
			name:      "gradle with nested app build",
			files:     map[string]int64{"gradlew": 1, ".gradle/cache": 5, "app/build/out.apk": 90},
			wantType:  "gradle",
			artifacts: []string{".gradle", "app/build"},
			size:      95,
		},
		{
			name:      "maven",
			files:     map[string]int64{"pom.xml": 1, "target/app.jar": 33},
			wantType:  "maven",
			artifacts: []string{"target"},
			size:      33,
		},
		{
			name:      "python venv and bytecode",
			files:     map[string]int64{".venv/bin/python": 60, "__pycache__/m.pyc": 4, "m.py": 1},
			wantType:  "python",
			artifacts: []string{".venv", "__pycache__"},
			size:      64,
		},
		{
			name:      "first detector with artifacts wins",
			files:     map[string]int64{"Cargo.toml": 1, "package.json": 1, "node_modules/x": 8},
			wantType:  "npm",
			artifacts: []string{"node_modules"},
			size:      8,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects := findAll(memTree(tt.files))
			require.Len(t, projects, 1)
			p := projects[0]
			assert.Equal(t, testRoot, p.Path)
			assert.Equal(t, tt.wantType, p.Type)
			assert.Equal(t, tt.size, p.Size)
			assert.Equal(t, tt.size, p.DiskUsage)

			var want []string
			for _, a := range tt.artifacts {
				want = append(want, filepath.Join(testRoot, filepath.FromSlash(a)))
			}
			assert.Equal(t, want, p.Artifacts)
		})
	}
}

func TestDetectIgnoresProjectsWithoutArtifacts(t *testing.T) {
	tests := map[string]map[string]int64{
		"cmake without build":   {"CMakeLists.txt": 1, "main.c": 1},
		"cmake build is a file": {"CMakeLists.txt": 1, "build": 1},
		"npm before install":    {"package.json": 1},
		"plain directory":       {"README": 1, "docs/": 0},
	}
	for name, files := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, findAll(memTree(files)))
		})
	}
}

func TestDetectCommandOnly(t *testing.T) {
	tree := memTree(map[string]int64{"go.mod": 1, "main.go": 1, "web/package.json": 1, "web/node_modules/x": 12})

	// a Go module is not a project by default, so detection continues below it
	projects := Detect(tree, NewRegistry(), FindOptions{MaxDepth: 10})
	require.Len(t, projects, 1)
	assert.Equal(t, "npm", projects[0].Type)

	projects = Detect(tree, NewRegistry(), FindOptions{MaxDepth: 10, IncludeCommandOnly: true})
	require.Len(t, projects, 1)
	assert.Equal(t, "go", projects[0].Type)
	assert.Empty(t, projects[0].Artifacts)
	assert.Zero(t, projects[0].Size)
}

func TestDetectDoesNotDescendIntoProjects(t *testing.T) {
	tree := memTree(map[string]int64{
		"app/package.json":                    1,
		"app/node_modules/dep/package.json":   1,
		"app/node_modules/dep/node_modules/x": 5,
		"lib/Cargo.toml":                      1,
		"lib/target/x":                        50,
	})
	projects := findAll(tree)
	require.Len(t, projects, 2)
	assert.Equal(t, filepath.Join(testRoot, "lib"), projects[0].Path, "largest first")
	assert.Equal(t, filepath.Join(testRoot, "app"), projects[1].Path)
	assert.Equal(t, int64(6), projects[1].Size)
}

func TestDetectMaxDepth(t *testing.T) {
	tree := memTree(map[string]int64{
		"a/Cargo.toml":     1,
		"a/target/x":       1,
		"b/c/d/Cargo.toml": 1,
		"b/c/d/target/x":   1,
	})
	assert.Len(t, Detect(tree, NewRegistry(), FindOptions{MaxDepth: 3}), 2)
	assert.Len(t, Detect(tree, NewRegistry(), FindOptions{MaxDepth: 2}), 1)
	assert.Len(t, Detect(tree, NewRegistry(), FindOptions{MaxDepth: scanner.NoDepthLimit}), 2)
}

func TestDetectSelectedTypes(t *testing.T) {
	tree := memTree(map[string]int64{
		"a/Cargo.toml":    1,
		"a/target/x":      1,
		"b/package.json":  1,
		"b/node_modules/": 0,
	})
	reg, err := NewRegistry().Select([]string{"cargo"})
	require.NoError(t, err)
	projects := Detect(tree, reg, FindOptions{MaxDepth: 5})
	require.Len(t, projects, 1)
	assert.Equal(t, "cargo", projects[0].Type)
}

func TestDetectSkipsErrorEntries(t *testing.T) {
	tree := memTree(map[string]int64{"ok/Cargo.toml": 1, "ok/target/x": 3})
	tree.Children = append(tree.Children, model.NewError(filepath.Join(testRoot, "denied"), true, assert.AnError))
	projects := findAll(tree)
	require.Len(t, projects, 1)
	assert.Equal(t, filepath.Join(testRoot, "ok"), projects[0].Path)
}
