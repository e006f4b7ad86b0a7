package scanner

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsVirtualFS(t *testing.T) {
	for _, path := range []string{"/proc", "/proc/1/status", "/dev", "/dev/sda", "/sys", "/sys/class/net", "/run", "/run/user/1000"} {
		assert.True(t, IsVirtualFS(path), path)
	}
	for _, path := range []string{"/home", "/home/user", "/tmp", "/var/log", "/usr/bin", "/devices", "/running", "/home/proc"} {
		assert.False(t, IsVirtualFS(path), path)
	}
}

func TestAdmit(t *testing.T) {
	sc := newScanContext("/data", Options{MaxDepth: NoDepthLimit, Exclude: []string{"*.log", "target"}})

	assert.True(t, sc.admit("/data/readme.md", "readme.md"))
	assert.False(t, sc.admit("/data/.git", ".git"))
	assert.False(t, sc.admit("/data/app.log", "app.log"))
	assert.False(t, sc.admit("/data/target", "target"))
	assert.False(t, sc.admit("/proc/cpuinfo", "cpuinfo"))

	sc = newScanContext("/data", Options{MaxDepth: NoDepthLimit, IncludeHidden: true})
	assert.True(t, sc.admit("/data/.git", ".git"))
}

func TestLinkChainLoops(t *testing.T) {
	var chain linkChain
	assert.True(t, chain.loops("/a", "/a"))
	assert.True(t, chain.loops("/a", "/a/b/c"))
	assert.False(t, chain.loops("/x", "/a/b"))

	chain = chain.with("/a/b")
	assert.True(t, chain.loops("/a", "/x/y"))
	assert.False(t, chain.loops("/a/b/c", "/x/y"))
	assert.False(t, chain.loops("/ab", "/x/y"))
}

func TestOptionsDefaults(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, NoDepthLimit, opts.MaxDepth)
	assert.False(t, opts.IncludeHidden)
	assert.False(t, opts.OneFileSystem)
	assert.False(t, opts.FollowSymlinks)
	assert.Zero(t, opts.Threads)
	assert.Empty(t, opts.Exclude)
	assert.Equal(t, runtime.NumCPU(), opts.workers())

	opts.Threads = 3
	assert.Equal(t, 3, opts.workers())
	assert.False(t, opts.limited(100))
	assert.True(t, opts.WithMaxDepth(2).limited(2))
}

func TestScanVirtualFSRoot(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("virtual filesystems are linux only")
	}
	for name, scan := range walkers {
		t.Run(name, func(t *testing.T) {
			root, err := scan(context.Background(), "/proc", DefaultOptions())
			require.NoError(t, err)
			assert.True(t, root.IsDir)
			assert.Empty(t, root.Children)
		})
	}
}

func TestScanSkipsVirtualFS(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("virtual filesystems are linux only")
	}
	for name, scan := range walkers {
		t.Run(name, func(t *testing.T) {
			root, err := scan(context.Background(), "/", DefaultOptions().WithMaxDepth(1))
			require.NoError(t, err)
			for _, child := range root.Children {
				assert.False(t, IsVirtualFS(child.Path), child.Path)
			}
		})
	}
}

func TestScanOneFileSystemKeepsSameDevice(t *testing.T) {
	tmp := createTestStructure(t)
	opts := DefaultOptions()
	opts.OneFileSystem = true

	root, err := ScanParallel(context.Background(), tmp, opts)
	require.NoError(t, err)
	assert.Equal(t, int64(26), root.Size)
	assert.NotNil(t, childNamed(root, "subdir"))
	assert.Equal(t, filepath.Base(root.Path), root.Name)
}

func TestScanErrorMessages(t *testing.T) {
	err := rootError("/nope", &fs.PathError{Op: "lstat", Path: "/nope", Err: fs.ErrNotExist})
	assert.Equal(t, KindNotFound, err.Kind)
	assert.Equal(t, "path not found: /nope", err.Error())
	assert.True(t, errors.Is(err, ErrPathNotFound))
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	err = rootError("/secret", &fs.PathError{Op: "lstat", Path: "/secret", Err: fs.ErrPermission})
	assert.Equal(t, KindIO, err.Kind)
	assert.False(t, errors.Is(err, ErrPathNotFound))
	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.Contains(t, err.Error(), "io error at path '/secret'")
}
