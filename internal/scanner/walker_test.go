package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/lumipallolabs/sweeper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scanFunc func(ctx context.Context, root string, opts Options) (*model.Entry, error)

var walkers = map[string]scanFunc{
	"sequential": Scan,
	"parallel":   ScanParallel,
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// createTestStructure lays out file1.txt (5), file2.txt (6),
// subdir/nested.txt (15) and .hidden (6)
func createTestStructure(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "file1.txt"), "hello")
	writeFile(t, filepath.Join(tmp, "file2.txt"), "world!")
	writeFile(t, filepath.Join(tmp, "subdir", "nested.txt"), "nested content!")
	writeFile(t, filepath.Join(tmp, ".hidden"), "secret")
	return tmp
}

func childNamed(e *model.Entry, name string) *model.Entry {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// assertAggregated checks every directory's totals against its children
func assertAggregated(t *testing.T, root *model.Entry) {
	t.Helper()
	root.Walk(func(e *model.Entry) bool {
		if !e.IsDir || e.HasError() {
			return true
		}
		var size, usage, files, dirs int64
		for _, c := range e.Children {
			size += c.Size
			usage += c.DiskUsage
			files += c.FileCount
			if c.IsDir {
				dirs += 1 + c.DirCount
			}
		}
		assert.Equal(t, size, e.Size, "size of %s", e.Path)
		assert.Equal(t, usage, e.DiskUsage, "disk usage of %s", e.Path)
		assert.Equal(t, files, e.FileCount, "file count of %s", e.Path)
		assert.Equal(t, dirs, e.DirCount, "dir count of %s", e.Path)
		return true
	})
}

func TestScanScenario(t *testing.T) {
	for name, scan := range walkers {
		t.Run(name, func(t *testing.T) {
			tmp := createTestStructure(t)

			root, err := scan(context.Background(), tmp, DefaultOptions())
			require.NoError(t, err)

			assert.True(t, root.IsDir)
			assert.Equal(t, int64(26), root.Size)
			assert.Equal(t, int64(3), root.FileCount)
			assert.Equal(t, int64(1), root.DirCount)
			assert.Nil(t, childNamed(root, ".hidden"))
			assertAggregated(t, root)

			subdir := childNamed(root, "subdir")
			require.NotNil(t, subdir)
			assert.Equal(t, int64(15), subdir.Size)
			assert.Equal(t, filepath.Join(root.Path, "subdir"), subdir.Path)

			root, err = scan(context.Background(), tmp, DefaultOptions().WithHidden(true))
			require.NoError(t, err)
			assert.Equal(t, int64(32), root.Size)
			assert.Equal(t, int64(4), root.FileCount)
			assert.NotNil(t, childNamed(root, ".hidden"))
		})
	}
}

func TestScanHiddenRootIsKept(t *testing.T) {
	tmp := t.TempDir()
	hiddenRoot := filepath.Join(tmp, ".config")
	writeFile(t, filepath.Join(hiddenRoot, "app.yaml"), "key: value")
	writeFile(t, filepath.Join(hiddenRoot, ".state"), "x")

	for name, scan := range walkers {
		t.Run(name, func(t *testing.T) {
			root, err := scan(context.Background(), hiddenRoot, DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, ".config", root.Name)
			assert.Equal(t, int64(1), root.FileCount)
			root.Walk(func(e *model.Entry) bool {
				if e != root {
					assert.False(t, strings.HasPrefix(e.Name, "."), e.Path)
				}
				return true
			})
		})
	}
}

func TestScanMaxDepth(t *testing.T) {
	for name, scan := range walkers {
		t.Run(name, func(t *testing.T) {
			tmp := createTestStructure(t)

			root, err := scan(context.Background(), tmp, DefaultOptions().WithMaxDepth(0))
			require.NoError(t, err)
			assert.Empty(t, root.Children)
			assert.Zero(t, root.Size)

			root, err = scan(context.Background(), tmp, DefaultOptions().WithMaxDepth(1))
			require.NoError(t, err)
			subdir := childNamed(root, "subdir")
			require.NotNil(t, subdir)
			assert.True(t, subdir.IsDir)
			assert.Empty(t, subdir.Children)
			assert.Equal(t, int64(11), root.Size)
			assert.Equal(t, int64(1), root.DirCount)
		})
	}
}

func TestScanSortedBySize(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "small.txt"), "a")
	writeFile(t, filepath.Join(tmp, "large.txt"), strings.Repeat("x", 1000))
	writeFile(t, filepath.Join(tmp, "medium.txt"), strings.Repeat("y", 100))

	for name, scan := range walkers {
		t.Run(name, func(t *testing.T) {
			root, err := scan(context.Background(), tmp, DefaultOptions())
			require.NoError(t, err)
			require.Len(t, root.Children, 3)
			assert.Equal(t, "large.txt", root.Children[0].Name)
			assert.Equal(t, "medium.txt", root.Children[1].Name)
			assert.Equal(t, "small.txt", root.Children[2].Name)
		})
	}
}

func TestScanSizesAccumulate(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "subdir", "file1.txt"), strings.Repeat("a", 100))
	writeFile(t, filepath.Join(tmp, "subdir", "file2.txt"), strings.Repeat("b", 200))

	root, err := Scan(context.Background(), tmp, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, int64(300), root.Size)
	assert.Equal(t, int64(300), childNamed(root, "subdir").Size)
}

func TestScanNonexistentRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nonexistent", "path")
	for name, scan := range walkers {
		t.Run(name, func(t *testing.T) {
			root, err := scan(context.Background(), missing, DefaultOptions())
			require.Error(t, err)
			assert.Nil(t, root)
			assert.True(t, errors.Is(err, ErrPathNotFound))

			var scanErr *ScanError
			require.True(t, errors.As(err, &scanErr))
			assert.Equal(t, KindNotFound, scanErr.Kind)
		})
	}
}

func TestScanFileRoot(t *testing.T) {
	tmp := t.TempDir()
	file := filepath.Join(tmp, "only.txt")
	writeFile(t, file, "content")

	for name, scan := range walkers {
		t.Run(name, func(t *testing.T) {
			root, err := scan(context.Background(), file, DefaultOptions())
			require.NoError(t, err)
			assert.False(t, root.IsDir)
			assert.Equal(t, int64(7), root.Size)
			assert.Equal(t, int64(1), root.FileCount)
		})
	}
}

func TestScanErrorIsolation(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root can read any directory")
	}

	tmp := createTestStructure(t)
	locked := filepath.Join(tmp, "locked")
	writeFile(t, filepath.Join(locked, "secret.txt"), "top secret")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	for name, scan := range walkers {
		t.Run(name, func(t *testing.T) {
			root, err := scan(context.Background(), tmp, DefaultOptions())
			require.NoError(t, err)

			node := childNamed(root, "locked")
			require.NotNil(t, node)
			assert.True(t, node.HasError())
			assert.True(t, node.IsDir)
			assert.Zero(t, node.Size)
			assert.Empty(t, node.Children)

			assert.Equal(t, int64(26), root.Size)
			assert.Equal(t, int64(3), root.FileCount)
			assert.Equal(t, int64(2), root.DirCount)
			assertAggregated(t, root)
		})
	}
}

func TestBuildTreeDropsChildrenOfFailedListing(t *testing.T) {
	root := filepath.FromSlash("/data")
	broken := filepath.Join(root, "broken")
	early := filepath.Join(broken, "early.txt")
	ok := filepath.Join(root, "ok.txt")
	// the listing of broken failed after early.txt was recorded
	entries := map[string]*model.Entry{
		root:   model.NewDir(root, time.Time{}),
		broken: model.NewError(broken, true, fs.ErrPermission),
		early:  model.NewFile(early, 40, 40, time.Time{}),
		ok:     model.NewFile(ok, 7, 7, time.Time{}),
	}

	tree := buildTree(root, entries)

	node := childNamed(tree, "broken")
	require.NotNil(t, node)
	assert.True(t, node.HasError())
	assert.Empty(t, node.Children)
	assert.Equal(t, int64(7), tree.Size)
	assertAggregated(t, tree)
}

func TestSequentialParallelEquivalence(t *testing.T) {
	tmp := t.TempDir()
	for i := 0; i < 10; i++ {
		dir := filepath.Join(tmp, "dir"+string(rune('a'+i)))
		for j := 0; j < 10; j++ {
			writeFile(t, filepath.Join(dir, "file"+string(rune('0'+j))+".txt"), strings.Repeat("c", i*10+j))
		}
		writeFile(t, filepath.Join(dir, "deep", "er", "leaf.bin"), strings.Repeat("z", i*100))
	}
	writeFile(t, filepath.Join(tmp, ".cache", "blob"), "hidden bytes")

	opts := []Options{
		DefaultOptions(),
		DefaultOptions().WithHidden(true),
		DefaultOptions().WithMaxDepth(2),
		{MaxDepth: NoDepthLimit, Threads: 1},
		{MaxDepth: NoDepthLimit, OneFileSystem: true, Exclude: []string{"*.bin"}},
	}
	for _, o := range opts {
		seq, err := Scan(context.Background(), tmp, o)
		require.NoError(t, err)
		par, err := ScanParallel(context.Background(), tmp, o)
		require.NoError(t, err)

		assertSameTree(t, seq, par)
		assertAggregated(t, seq)
		assertAggregated(t, par)
	}

	root, err := ScanParallel(context.Background(), tmp, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, int64(110), root.FileCount)
	assert.Equal(t, int64(30), root.DirCount)
}

func assertSameTree(t *testing.T, a, b *model.Entry) {
	t.Helper()
	assert.Equal(t, a.Path, b.Path)
	assert.Equal(t, a.IsDir, b.IsDir, a.Path)
	assert.Equal(t, a.Size, b.Size, a.Path)
	assert.Equal(t, a.DiskUsage, b.DiskUsage, a.Path)
	assert.Equal(t, a.FileCount, b.FileCount, a.Path)
	assert.Equal(t, a.DirCount, b.DirCount, a.Path)
	require.Equal(t, len(a.Children), len(b.Children), a.Path)
	for i := range a.Children {
		assertSameTree(t, a.Children[i], b.Children[i])
	}
}

func TestScanExcludePatterns(t *testing.T) {
	tmp := createTestStructure(t)
	writeFile(t, filepath.Join(tmp, "build.tmp"), "temporary")
	writeFile(t, filepath.Join(tmp, "node_modules", "pkg", "index.js"), "module.exports = {}")

	opts := DefaultOptions()
	opts.Exclude = []string{"*.tmp", "node_modules"}
	for name, scan := range walkers {
		t.Run(name, func(t *testing.T) {
			root, err := scan(context.Background(), tmp, opts)
			require.NoError(t, err)
			assert.Nil(t, childNamed(root, "build.tmp"))
			assert.Nil(t, childNamed(root, "node_modules"))
			assert.Equal(t, int64(26), root.Size)
		})
	}
}

func TestScanSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	tmp := t.TempDir()
	target := filepath.Join(tmp, "target")
	writeFile(t, filepath.Join(target, "data.bin"), strings.Repeat("d", 64))
	root := filepath.Join(tmp, "root")
	writeFile(t, filepath.Join(root, "real.txt"), "1234")
	require.NoError(t, os.Symlink(target, filepath.Join(root, "linkdir")))
	require.NoError(t, os.Symlink(filepath.Join(target, "data.bin"), filepath.Join(root, "linkfile")))
	require.NoError(t, os.Symlink(filepath.Join(tmp, "missing"), filepath.Join(root, "dangling")))
	// Points back at its own parent
	require.NoError(t, os.Symlink(root, filepath.Join(root, "loop")))

	for name, scan := range walkers {
		t.Run(name, func(t *testing.T) {
			tree, err := scan(context.Background(), root, DefaultOptions())
			require.NoError(t, err)
			for _, link := range []string{"linkdir", "linkfile", "dangling", "loop"} {
				node := childNamed(tree, link)
				require.NotNil(t, node, link)
				assert.False(t, node.IsDir, link)
				assert.Zero(t, node.Size, link)
				assert.Equal(t, int64(1), node.FileCount, link)
			}
			assert.Equal(t, int64(4), tree.Size)

			opts := DefaultOptions()
			opts.FollowSymlinks = true
			tree, err = scan(context.Background(), root, opts)
			require.NoError(t, err)

			linkdir := childNamed(tree, "linkdir")
			require.NotNil(t, linkdir)
			assert.True(t, linkdir.IsDir)
			require.Len(t, linkdir.Children, 1)
			assert.Equal(t, filepath.Join(tree.Path, "linkdir", "data.bin"), linkdir.Children[0].Path)
			assert.Equal(t, int64(64), linkdir.Size)

			assert.Equal(t, int64(64), childNamed(tree, "linkfile").Size)
			assert.True(t, childNamed(tree, "dangling").HasError())
			assert.False(t, childNamed(tree, "loop").IsDir)
			assert.Equal(t, int64(4+64+64), tree.Size)
			assertAggregated(t, tree)
		})
	}
}

func TestScanCancelled(t *testing.T) {
	tmp := createTestStructure(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, scan := range walkers {
		t.Run(name, func(t *testing.T) {
			_, err := scan(ctx, tmp, DefaultOptions())
			require.Error(t, err)
			assert.True(t, errors.Is(err, context.Canceled))
		})
	}
}

func TestWalkersImplementScanner(t *testing.T) {
	tmp := createTestStructure(t)
	for _, s := range []Scanner{NewWalker(DefaultOptions()), NewParallelWalker(DefaultOptions())} {
		root, err := s.Scan(context.Background(), tmp)
		require.NoError(t, err)
		assert.Equal(t, int64(26), root.Size)
	}
}
