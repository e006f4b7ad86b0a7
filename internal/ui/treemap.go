package ui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeffwilliams/squarify"
	"github.com/lumipallolabs/sweeper/internal/model"
)

// Block represents a rectangle in the treemap
type Block struct {
	Entry         *model.Entry
	X, Y          int
	Width, Height int

	// "N more" block standing in for the smallest entries (Entry is nil)
	IsGrouped  bool
	GroupCount int
	GroupSize  int64
}

// TreemapPanel displays a treemap of one directory's children
type TreemapPanel struct {
	root     *model.Entry
	focus    *model.Entry
	selected *model.Entry
	blocks   []Block
	width    int
	height   int
	focused  bool
	hidden   bool // show dot entries

	// Render cache
	cachedView     string
	cacheValid     bool
	cachedFocus    *model.Entry
	cachedSelected *model.Entry
	cachedFocused  bool
}

// NewTreemapPanel creates a new treemap panel
func NewTreemapPanel() TreemapPanel {
	return TreemapPanel{}
}

// SetRoot sets the tree. Focus and selection survive by path when the new
// tree still has them.
func (t *TreemapPanel) SetRoot(root *model.Entry) {
	var focusPath, selectedPath string
	if t.focus != nil {
		focusPath = t.focus.Path
	}
	if t.selected != nil {
		selectedPath = t.selected.Path
	}

	t.root = root
	t.focus = root
	t.selected = root
	if root != nil {
		if f := root.Find(focusPath); f != nil && f.IsDir {
			t.focus = f
		}
		if s := root.Find(selectedPath); s != nil {
			t.selected = s
		}
	}
	t.layout()
}

// SetSize sets the panel dimensions
func (t *TreemapPanel) SetSize(w, h int) {
	if t.width != w || t.height != h {
		t.width = w
		t.height = h
		t.layout()
	}
}

// SetFocused sets focus state
func (t *TreemapPanel) SetFocused(focused bool) {
	t.focused = focused
}

// SetShowHidden shows or hides dot entries
func (t *TreemapPanel) SetShowHidden(show bool) {
	if t.hidden != show {
		t.hidden = show
		t.layout()
	}
}

// InvalidateCache marks the render cache as invalid
func (t *TreemapPanel) InvalidateCache() {
	t.cacheValid = false
}

// Focus returns the directory being displayed
func (t TreemapPanel) Focus() *model.Entry {
	return t.focus
}

// SetFocus sets the directory to display. A file shows its parent so the
// file appears among its siblings.
func (t *TreemapPanel) SetFocus(e *model.Entry) {
	if e == nil {
		return
	}
	if !e.IsDir {
		if parent := t.parentOf(e); parent != nil {
			e = parent
		}
	}
	t.focus = e
	t.layout()
}

// SetSelected sets the selected entry (for sync from tree)
func (t *TreemapPanel) SetSelected(e *model.Entry) {
	if e == nil {
		return
	}
	t.selected = e
	t.cacheValid = false
}

// Selected returns the currently selected entry
func (t TreemapPanel) Selected() *model.Entry {
	return t.selected
}

// Blocks returns the current layout
func (t TreemapPanel) Blocks() []Block {
	return t.blocks
}

// SelectFirst selects the first non-grouped block
func (t *TreemapPanel) SelectFirst() {
	for i := range t.blocks {
		if !t.blocks[i].IsGrouped && t.blocks[i].Entry != nil {
			t.selected = t.blocks[i].Entry
			return
		}
	}
}

// ZoomIn focuses on the selected folder
func (t *TreemapPanel) ZoomIn() bool {
	if t.selected != nil && t.selected.IsDir && len(t.selected.Children) > 0 && t.selected != t.focus {
		t.focus = t.selected
		t.layout()
		t.SelectFirst()
		return true
	}
	return false
}

// ZoomOut goes to parent folder and selects the folder it came from
func (t *TreemapPanel) ZoomOut() bool {
	if t.focus == nil {
		return false
	}
	parent := t.parentOf(t.focus)
	if parent == nil {
		return false
	}
	t.selected = t.focus
	t.focus = parent
	t.layout()
	return true
}

func (t TreemapPanel) parentOf(e *model.Entry) *model.Entry {
	if t.root == nil || e == t.root {
		return nil
	}
	return t.root.Parent(e.Path)
}

// MoveToBlock moves selection to the nearest block in direction (dx, dy)
func (t *TreemapPanel) MoveToBlock(dx, dy int) {
	if len(t.blocks) == 0 {
		return
	}

	var current *Block
	for i := range t.blocks {
		if !t.blocks[i].IsGrouped && t.blocks[i].Entry == t.selected {
			current = &t.blocks[i]
			break
		}
	}
	if current == nil {
		t.SelectFirst()
		return
	}

	cx := current.X + current.Width/2
	cy := current.Y + current.Height/2

	var best *Block
	bestDist := -1
	for i := range t.blocks {
		block := &t.blocks[i]
		if block.IsGrouped || block.Entry == nil || block.Entry == t.selected {
			continue
		}
		bx := block.X + block.Width/2
		by := block.Y + block.Height/2
		if (dx > 0 && bx <= cx) || (dx < 0 && bx >= cx) || (dy > 0 && by <= cy) || (dy < 0 && by >= cy) {
			continue
		}
		dist := abs(bx-cx) + abs(by-cy)
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = block
		}
	}
	if best != nil {
		t.selected = best.Entry
	}
}

// treemapItem wraps an entry for the squarify algorithm
type treemapItem struct {
	entry    *model.Entry
	size     float64
	children []*treemapItem
}

// Size implements squarify.TreeSizer
func (t *treemapItem) Size() float64 {
	return t.size
}

// NumChildren implements squarify.TreeSizer
func (t *treemapItem) NumChildren() int {
	return len(t.children)
}

// Child implements squarify.TreeSizer
func (t *treemapItem) Child(i int) squarify.TreeSizer {
	return t.children[i]
}

const (
	minBlockWidth   = 8  // minimum width for any block (fits short label)
	minBlockHeight  = 3  // minimum height for any block (border + 1 line text)
	maxVisibleItems = 15 // max items before grouping remainder into "N more"

	treemapMarginH = 2 // margin for rightmost block borders
)

// contentSize returns the drawable area
func (t TreemapPanel) contentSize() (int, int) {
	w, h := t.width-treemapMarginH, t.height
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// items returns the focus children largest first, as squarify input
func (t TreemapPanel) items() []*treemapItem {
	entries := []*model.Entry{t.focus}
	if t.focus.IsDir && len(t.focus.Children) > 0 {
		entries = entries[:0]
		for _, child := range t.focus.Children {
			if !t.hidden && isHidden(child) {
				continue
			}
			entries = append(entries, child)
		}
	}

	items := make([]*treemapItem, 0, len(entries))
	for _, e := range entries {
		size := float64(e.Size)
		if size < 1 {
			size = 1 // keeps zero-size entries placeable
		}
		items = append(items, &treemapItem{entry: e, size: size})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].size > items[j].size
	})
	return items
}

// squarifyItems lays out items in rect and returns the depth-0 blocks
func squarifyItems(items []*treemapItem, rect squarify.Rect) []squarify.Block {
	root := &treemapItem{children: items}
	for _, child := range items {
		root.size += child.size
	}
	blocks, metas := squarify.Squarify(root, rect, squarify.Options{
		MaxDepth: 1,
		Sort:     true,
	})
	out := blocks[:0]
	for i, block := range blocks {
		if i < len(metas) && metas[i].Depth == 0 {
			out = append(out, block)
		}
	}
	return out
}

// allFit reports whether every block meets the minimum label size
func allFit(blocks []squarify.Block) bool {
	for _, block := range blocks {
		w := int(math.Floor(block.X+block.W)) - int(math.Floor(block.X))
		h := int(math.Floor(block.Y+block.H)) - int(math.Floor(block.Y))
		if w < minBlockWidth || h < minBlockHeight {
			return false
		}
	}
	return true
}

// layout picks the largest number of entries that still fit at minimum
// size and groups the rest into one "N more" strip along the bottom
func (t *TreemapPanel) layout() {
	t.blocks = nil
	t.cacheValid = false

	if t.focus == nil || t.width <= 2 || t.height <= 2 {
		return
	}
	contentW, contentH := t.contentSize()
	items := t.items()
	if len(items) == 0 {
		return
	}

	rect := squarify.Rect{W: float64(contentW), H: float64(contentH)}

	// A single leftover is only grouped when one block is all that fits
	shown := min(len(items), maxVisibleItems)
	var blocks []squarify.Block
	for ; shown >= 1; shown-- {
		if len(items)-shown == 1 && shown > 1 {
			continue
		}
		mainRect := rect
		if shown < len(items) {
			mainRect.H = float64(contentH - minBlockHeight)
		}
		blocks = squarifyItems(items[:shown], mainRect)
		if shown == 1 || allFit(blocks) {
			break
		}
	}

	maxEndY := 0
	for _, block := range blocks {
		item, ok := block.TreeSizer.(*treemapItem)
		if !ok {
			continue
		}

		// Round both edges so neighbours share a boundary
		x := int(math.Round(block.X))
		y := int(math.Round(block.Y))
		w := int(math.Round(block.X+block.W)) - x
		h := int(math.Round(block.Y+block.H)) - y
		if x+w > contentW {
			w = contentW - x
		}
		if y+h > contentH {
			h = contentH - y
		}
		if w < 1 || h < 1 || x >= contentW || y >= contentH {
			continue
		}
		maxEndY = max(maxEndY, y+h)

		t.blocks = append(t.blocks, Block{Entry: item.entry, X: x, Y: y, Width: w, Height: h})
	}

	if rest := items[shown:]; len(rest) > 0 {
		var groupSize int64
		for _, item := range rest {
			groupSize += item.entry.Size
		}
		t.blocks = append(t.blocks, Block{
			X:          0,
			Y:          maxEndY,
			Width:      contentW,
			Height:     max(contentH-maxEndY, 1),
			IsGrouped:  true,
			GroupCount: len(rest),
			GroupSize:  groupSize,
		})
	}
}

// View renders the treemap
func (t *TreemapPanel) View() string {
	if t.focus == nil {
		return TreemapPanelStyle.Render("No data")
	}

	if t.cacheValid &&
		t.cachedFocus == t.focus &&
		t.cachedSelected == t.selected &&
		t.cachedFocused == t.focused {
		return t.cachedView
	}

	_, contentH := t.contentSize()

	// Render each block, then composite line by line
	type renderedBlock struct {
		block Block
		lines []string
	}
	var rendered []renderedBlock
	for _, block := range t.blocks {
		if block.Width < 1 || block.Height < 1 {
			continue
		}
		rendered = append(rendered, renderedBlock{block, strings.Split(t.renderBlock(block), "\n")})
	}

	type segment struct {
		x, width int
		line     string
	}
	outputLines := make([]string, 0, contentH)
	for y := 0; y < contentH; y++ {
		var segments []segment
		for _, rb := range rendered {
			idx := y - rb.block.Y
			if idx >= 0 && idx < len(rb.lines) && idx < rb.block.Height {
				segments = append(segments, segment{rb.block.X, rb.block.Width, rb.lines[idx]})
			}
		}
		sort.Slice(segments, func(i, j int) bool {
			return segments[i].x < segments[j].x
		})

		var line strings.Builder
		x := 0
		for _, seg := range segments {
			if seg.x > x {
				line.WriteString(strings.Repeat(" ", seg.x-x))
			}
			line.WriteString(seg.line)
			x = seg.x + seg.width
		}
		outputLines = append(outputLines, line.String())
	}

	style := lipgloss.NewStyle().Height(t.height).MaxHeight(t.height)
	t.cachedView = style.Render(strings.Join(outputLines, "\n"))
	t.cacheValid = true
	t.cachedFocus = t.focus
	t.cachedSelected = t.selected
	t.cachedFocused = t.focused
	return t.cachedView
}

// renderBlock renders one bordered block
func (t TreemapPanel) renderBlock(block Block) string {
	var fgColor, borderColor lipgloss.Color
	switch {
	case block.IsGrouped:
		fgColor = lipgloss.Color("#6B7280")
		borderColor = lipgloss.Color("#4B5563")
	case block.Entry != nil && block.Entry.HasError():
		fgColor = ColorDanger
		borderColor = ColorDanger
	case block.Entry != nil && block.Entry.IsDir:
		fgColor = ColorDir
		borderColor = ColorDir
	default:
		fgColor = ColorFile
		borderColor = lipgloss.Color("#6B7280")
	}

	isSelected := !block.IsGrouped && block.Entry == t.selected
	if isSelected && t.focused {
		fgColor = lipgloss.Color("#FFFFFF")
		borderColor = ColorPrimary
	} else if isSelected {
		fgColor = lipgloss.Color("#E0E0E0")
		borderColor = lipgloss.Color("#9D7CD8") // dimmer violet
	}

	var label, sizeStr string
	if block.IsGrouped {
		label = fmt.Sprintf("%d more", block.GroupCount)
		sizeStr = FormatSize(block.GroupSize)
	} else if block.Entry != nil {
		label = block.Entry.Name
		sizeStr = FormatSize(block.Entry.Size)
	}

	innerW := max(block.Width-2, 0)
	innerH := max(block.Height-2, 0)
	text := label
	if innerH > 1 && sizeStr != "" {
		text = label + "\n" + sizeStr
	}

	blockStyle := lipgloss.NewStyle().
		Width(innerW).
		Height(innerH).
		MaxWidth(block.Width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Foreground(fgColor)
	if isSelected {
		blockStyle = blockStyle.Bold(true)
	}
	return blockStyle.Render(text)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
