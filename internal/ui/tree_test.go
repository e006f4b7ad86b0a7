package ui

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/lumipallolabs/sweeper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleTree builds
//
//	/data
//	  src/        main.go 300, util.go 100
//	  .git/       HEAD 50
//	  big.iso     1000
//	  notes.txt   20
func sampleTree() *model.Entry {
	src := filepath.Join(testRoot, "src")
	git := filepath.Join(testRoot, ".git")
	root := model.NewDir(testRoot, time.Time{})
	root.Children = []*model.Entry{
		dir(testRoot, "src", file(src, "main.go", 300), file(src, "util.go", 100)),
		dir(testRoot, ".git", file(git, "HEAD", 50)),
		file(testRoot, "big.iso", 1000),
		file(testRoot, "notes.txt", 20),
	}
	root.Children[3].ModTime = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	root.ComputeTotals()
	return root
}

func rowNames(t TreePanel) []string {
	names := make([]string, 0, len(t.rows))
	for _, row := range t.rows {
		names = append(names, row.entry.Name)
	}
	return names
}

func newTree(root *model.Entry) TreePanel {
	tree := NewTreePanel()
	tree.SetSize(40, 30)
	tree.SetRoot(root, nil)
	return tree
}

func TestTreeRowsSortedAndHiddenFiltered(t *testing.T) {
	tree := newTree(sampleTree())
	assert.Equal(t, []string{"data", "big.iso", "src", "notes.txt"}, rowNames(tree))

	tree.SetShowHidden(true)
	assert.Equal(t, []string{"data", "big.iso", "src", ".git", "notes.txt"}, rowNames(tree))
}

func TestTreeSortOrders(t *testing.T) {
	tree := newTree(sampleTree())

	tree.SetSort(model.SortName)
	assert.Equal(t, []string{"data", "big.iso", "notes.txt", "src"}, rowNames(tree))

	tree.SetSort(model.SortModTime)
	assert.Equal(t, "notes.txt", rowNames(tree)[1])
}

func TestTreeExpandCollapse(t *testing.T) {
	tree := newTree(sampleTree())
	src := filepath.Join(testRoot, "src")

	require.True(t, tree.SelectPath(src))
	path, ok := tree.Expand()
	require.True(t, ok)
	assert.Equal(t, src, path)
	assert.Equal(t, []string{"data", "big.iso", "src", "main.go", "util.go", "notes.txt"}, rowNames(tree))

	// Left on a file jumps to its directory
	tree.MoveDown()
	assert.Equal(t, "main.go", tree.Selected().Name)
	_, ok = tree.Collapse()
	assert.False(t, ok)
	assert.Equal(t, "src", tree.Selected().Name)

	path, ok = tree.Toggle()
	require.True(t, ok)
	assert.Equal(t, src, path)
	assert.Len(t, tree.rows, 4)

	// the root stays open
	tree.GoToTop()
	_, ok = tree.Collapse()
	assert.False(t, ok)
	assert.Len(t, tree.rows, 4)
}

func TestTreeSetRootKeepsSelectionAndExpansion(t *testing.T) {
	tree := newTree(sampleTree())
	src := filepath.Join(testRoot, "src")
	tree.SelectPath(src)
	tree.Expand()
	tree.SelectPath(filepath.Join(src, "util.go"))

	next := sampleTree()
	tree.SetRoot(next, map[string]bool{src: true})
	assert.Same(t, next.Children[0].Children[1], tree.Selected())
	assert.Contains(t, rowNames(tree), "main.go")

	// a selection that disappeared falls back to a valid row
	tree.SetRoot(flatRoot(5), nil)
	require.NotNil(t, tree.Selected())
}

func TestTreeSearch(t *testing.T) {
	tree := newTree(sampleTree())

	tree.SetQuery("UTIL")
	assert.Equal(t, 1, tree.MatchCount())
	assert.Equal(t, []string{"data", "src", "util.go"}, rowNames(tree))

	// hidden entries are not searched unless shown
	tree.SetQuery("head")
	assert.Zero(t, tree.MatchCount())
	assert.Contains(t, tree.View(), "No entries match")
	tree.SetShowHidden(true)
	assert.Equal(t, []string{"data", ".git", "HEAD"}, rowNames(tree))

	tree.SetQuery("")
	assert.Equal(t, []string{"data", "big.iso", "src", ".git", "notes.txt"}, rowNames(tree))
}

func TestTreeExpandTo(t *testing.T) {
	tree := newTree(sampleTree())
	target := filepath.Join(testRoot, "src", "main.go")

	opened := tree.ExpandTo(target)
	assert.Equal(t, []string{filepath.Join(testRoot, "src")}, opened)
	assert.Equal(t, target, tree.Selected().Path)
}

func TestTreeNavigation(t *testing.T) {
	tree := newTree(sampleTree())
	tree.GoToBottom()
	assert.Equal(t, "notes.txt", tree.Selected().Name)
	tree.MoveDown()
	assert.Equal(t, "notes.txt", tree.Selected().Name)
	tree.PageUp()
	tree.PageUp()
	tree.PageUp()
	assert.Equal(t, "data", tree.Selected().Name)
	tree.MoveUp()
	assert.Equal(t, "data", tree.Selected().Name)
	assert.Nil(t, tree.SelectedParent())
}

func TestTreeLine(t *testing.T) {
	tree := newTree(sampleTree())
	require.True(t, tree.SelectPath(filepath.Join(testRoot, "src")))
	row := tree.rows[tree.cursor]

	line := tree.buildLine(row)
	assert.Contains(t, line, "▶ src/")
	assert.Contains(t, line, "[█░░░]")
	assert.Contains(t, line, FormatSize(400))

	errEntry := model.NewError(filepath.Join(testRoot, "locked"), true, assert.AnError)
	assert.Contains(t, tree.buildLine(treeRow{entry: errEntry, parent: tree.Root(), depth: 1}), "locked/ [!]")
}

func TestProportionBar(t *testing.T) {
	assert.Equal(t, "[████]", proportionBar(1, 4))
	assert.Equal(t, "[░░░░]", proportionBar(0, 4))
	assert.Equal(t, "[██░░]", proportionBar(0.5, 4))
	assert.Equal(t, "[██▓░]", proportionBar(0.65, 4))
}
