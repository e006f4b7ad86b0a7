package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *Entry {
	nested := NewDir("/root/sub/deep", time.Time{})
	nested.Children = []*Entry{NewFile("/root/sub/deep/c.bin", 40, 4096, time.Time{})}

	sub := NewDir("/root/sub", time.Time{})
	sub.Children = []*Entry{
		NewFile("/root/sub/b.txt", 15, 4096, time.Time{}),
		nested,
	}

	root := NewDir("/root", time.Time{})
	root.Children = []*Entry{
		NewFile("/root/a.txt", 5, 4096, time.Time{}),
		sub,
		NewError("/root/locked", true, errors.New("permission denied")),
	}
	root.ComputeTotals()
	return root
}

func TestEntryComputeTotals(t *testing.T) {
	root := sampleTree()

	assert.Equal(t, int64(60), root.Size)
	assert.Equal(t, int64(3*4096), root.DiskUsage)
	assert.Equal(t, int64(3), root.FileCount)
	// sub, sub/deep and the unreadable dir
	assert.Equal(t, int64(3), root.DirCount)

	sub := root.Find("/root/sub")
	require.NotNil(t, sub)
	assert.Equal(t, int64(55), sub.Size)
	assert.Equal(t, int64(2), sub.FileCount)
	assert.Equal(t, int64(1), sub.DirCount)
}

func TestEntryAggregationInvariant(t *testing.T) {
	root := sampleTree()
	root.Walk(func(e *Entry) bool {
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
		assert.Equal(t, size, e.Size, e.Path)
		assert.Equal(t, usage, e.DiskUsage, e.Path)
		assert.Equal(t, files, e.FileCount, e.Path)
		assert.Equal(t, dirs, e.DirCount, e.Path)
		return true
	})
}

func TestErrorEntryStaysZero(t *testing.T) {
	e := NewError("/x", true, errors.New("boom"))
	e.Children = []*Entry{NewFile("/x/y", 10, 10, time.Time{})}
	e.RecalculateTotals()

	assert.True(t, e.HasError())
	assert.Equal(t, "boom", e.Err)
	assert.Zero(t, e.Size)
	assert.Zero(t, e.FileCount)
}

func TestEntryNames(t *testing.T) {
	assert.Equal(t, "/", NewDir("/", time.Time{}).Name)
	assert.Equal(t, "file.txt", NewFile("/a/b/file.txt", 1, 1, time.Time{}).Name)
	assert.Equal(t, int64(1), NewFile("/a/b/file.txt", 1, 1, time.Time{}).FileCount)
}

func TestFindAndParent(t *testing.T) {
	root := sampleTree()

	found := root.Find("/root/sub/deep/c.bin")
	require.NotNil(t, found)
	assert.Equal(t, "c.bin", found.Name)
	assert.Nil(t, root.Find("/root/missing"))
	assert.Nil(t, root.Find("/elsewhere"))

	parent := root.Parent("/root/sub/deep/c.bin")
	require.NotNil(t, parent)
	assert.Equal(t, "/root/sub/deep", parent.Path)
	assert.Equal(t, root, root.Parent("/root/a.txt"))
	assert.Nil(t, root.Parent("/root"))
}
