package ui

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeffwilliams/squarify"
	"github.com/lumipallolabs/sweeper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRoot = "/data"

func file(parent, name string, size int64) *model.Entry {
	return model.NewFile(filepath.Join(parent, name), size, size, time.Time{})
}

func dir(parent, name string, children ...*model.Entry) *model.Entry {
	d := model.NewDir(filepath.Join(parent, name), time.Time{})
	d.Children = children
	d.ComputeTotals()
	return d
}

// flatRoot builds /data with one directory child per size
func flatRoot(sizes ...int64) *model.Entry {
	root := model.NewDir(testRoot, time.Time{})
	for i, size := range sizes {
		name := fmt.Sprintf("d%02d", i)
		root.Children = append(root.Children, dir(testRoot, name, file(filepath.Join(testRoot, name), "blob", size)))
	}
	root.ComputeTotals()
	root.SortBySize()
	return root
}

func assertInBounds(t *testing.T, panel TreemapPanel) {
	t.Helper()
	contentW, contentH := panel.contentSize()
	for i, block := range panel.Blocks() {
		assert.GreaterOrEqual(t, block.X, 0, "block %d", i)
		assert.GreaterOrEqual(t, block.Y, 0, "block %d", i)
		assert.LessOrEqual(t, block.X+block.Width, contentW, "block %d", i)
		assert.LessOrEqual(t, block.Y+block.Height, contentH, "block %d", i)
	}
}

func TestSquarifyDirect(t *testing.T) {
	items := []*treemapItem{{size: 100}, {size: 100}, {size: 100}}
	blocks := squarifyItems(items, squarify.Rect{W: 76, H: 22})
	assert.Len(t, blocks, 3)
	assert.True(t, allFit(blocks))
}

func TestTreemapLayout(t *testing.T) {
	const mb = 1024 * 1024
	root := flatRoot(100*mb, 80*mb, 50*mb, 30*mb, 10*mb, 5*mb, mb, 500*1024)

	panel := NewTreemapPanel()
	panel.SetSize(80, 24)
	panel.SetRoot(root)

	require.NotEmpty(t, panel.Blocks())
	assertInBounds(t, panel)
	assert.Equal(t, root.Children[0], panel.Blocks()[0].Entry, "largest entry is placed first")
}

func TestTreemapGroupsSmallEntries(t *testing.T) {
	sizes := make([]int64, 20)
	for i := range sizes {
		sizes[i] = int64(1000 - i*40)
	}
	root := flatRoot(sizes...)

	panel := NewTreemapPanel()
	panel.SetSize(90, 50)
	panel.SetRoot(root)
	assertInBounds(t, panel)

	shown := map[*model.Entry]bool{}
	var group *Block
	for i, block := range panel.Blocks() {
		if block.IsGrouped {
			require.Nil(t, group, "only one grouped block")
			group = &panel.Blocks()[i]
			continue
		}
		shown[block.Entry] = true
	}
	require.NotNil(t, group)
	assert.GreaterOrEqual(t, group.GroupCount, 2)
	assert.Equal(t, len(sizes), len(shown)+group.GroupCount)

	var hidden int64
	for _, child := range root.Children {
		if !shown[child] {
			hidden += child.Size
		}
	}
	assert.Equal(t, hidden, group.GroupSize)
}

func TestTreemapBlocksTile(t *testing.T) {
	root := flatRoot(100, 100, 100)

	panel := NewTreemapPanel()
	panel.SetSize(40, 12)
	panel.SetRoot(root)
	require.Len(t, panel.Blocks(), 3)

	contentW, contentH := panel.contentSize()
	area := 0
	for _, block := range panel.Blocks() {
		area += block.Width * block.Height
	}
	assert.GreaterOrEqual(t, float64(area)/float64(contentW*contentH), 0.90)
}

func TestTreemapZoom(t *testing.T) {
	photos := filepath.Join(testRoot, "photos")
	root := model.NewDir(testRoot, time.Time{})
	root.Children = []*model.Entry{
		dir(testRoot, "photos", file(photos, "a.jpg", 4000), file(photos, "b.jpg", 3000)),
		file(testRoot, "notes.txt", 1000),
	}
	root.ComputeTotals()

	panel := NewTreemapPanel()
	panel.SetSize(60, 20)
	panel.SetRoot(root)
	assert.Same(t, root, panel.Focus())

	panel.SetSelected(root.Children[0])
	require.True(t, panel.ZoomIn())
	assert.Equal(t, photos, panel.Focus().Path)
	assert.Equal(t, filepath.Join(photos, "a.jpg"), panel.Selected().Path)

	// files cannot be zoomed into
	assert.False(t, panel.ZoomIn())

	require.True(t, panel.ZoomOut())
	assert.Same(t, root, panel.Focus())
	assert.Equal(t, photos, panel.Selected().Path)
	assert.False(t, panel.ZoomOut())
}

func TestTreemapFocusOnFileShowsParent(t *testing.T) {
	photos := filepath.Join(testRoot, "photos")
	root := model.NewDir(testRoot, time.Time{})
	root.Children = []*model.Entry{dir(testRoot, "photos", file(photos, "a.jpg", 10))}
	root.ComputeTotals()

	panel := NewTreemapPanel()
	panel.SetSize(60, 20)
	panel.SetRoot(root)
	panel.SetFocus(root.Children[0].Children[0])
	assert.Equal(t, photos, panel.Focus().Path)
}

func TestTreemapHiddenEntries(t *testing.T) {
	root := model.NewDir(testRoot, time.Time{})
	root.Children = []*model.Entry{
		file(testRoot, ".cache", 5000),
		file(testRoot, "visible", 100),
	}
	root.ComputeTotals()

	panel := NewTreemapPanel()
	panel.SetSize(60, 20)
	panel.SetRoot(root)
	require.Len(t, panel.Blocks(), 1)
	assert.Equal(t, "visible", panel.Blocks()[0].Entry.Name)

	panel.SetShowHidden(true)
	require.Len(t, panel.Blocks(), 2)
	assert.Equal(t, ".cache", panel.Blocks()[0].Entry.Name)
}

func TestTreemapSetRootKeepsFocusByPath(t *testing.T) {
	build := func(extra int64) *model.Entry {
		photos := filepath.Join(testRoot, "photos")
		root := model.NewDir(testRoot, time.Time{})
		root.Children = []*model.Entry{
			dir(testRoot, "photos", file(photos, "a.jpg", 4000+extra), file(photos, "b.jpg", 10)),
		}
		root.ComputeTotals()
		return root
	}

	panel := NewTreemapPanel()
	panel.SetSize(60, 20)
	panel.SetRoot(build(0))
	panel.SetSelected(panel.Blocks()[0].Entry)
	require.True(t, panel.ZoomIn())

	next := build(500)
	panel.SetRoot(next)
	assert.Same(t, next.Children[0], panel.Focus())
	assert.Same(t, next.Children[0].Children[0], panel.Selected())
}

func TestTreemapView(t *testing.T) {
	root := flatRoot(300, 200, 100)
	panel := NewTreemapPanel()
	panel.SetSize(60, 15)
	panel.SetRoot(root)

	view := panel.View()
	assert.Contains(t, view, "d00")
	assert.Contains(t, view, FormatSize(300))
	assert.Equal(t, view, panel.View(), "cached view is stable")
}
