package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lumipallolabs/sweeper/internal/model"
)

const treeSizeBarWidth = 4 // Width of size proportion bar [████]

// treeRow is one visible line of the tree
type treeRow struct {
	entry  *model.Entry
	parent *model.Entry
	depth  int
}

// TreePanel displays the folder tree
type TreePanel struct {
	root       *model.Entry
	rows       []treeRow
	cursor     int
	offset     int // scroll offset
	expanded   map[string]bool
	showHidden bool
	sort       model.SortOrder
	width      int
	height     int
	focused    bool

	// Search filter; matches and onPath are rebuilt with the rows
	query   string
	matches map[string]bool
	onPath  map[string]bool
}

// NewTreePanel creates a new tree panel
func NewTreePanel() TreePanel {
	return TreePanel{
		expanded: make(map[string]bool),
	}
}

// SetRoot replaces the tree. The selection is kept by path when it still
// exists; expanded is the path set to restore.
func (t *TreePanel) SetRoot(root *model.Entry, expanded map[string]bool) {
	selected := ""
	if e := t.Selected(); e != nil {
		selected = e.Path
	}
	t.root = root
	if expanded != nil {
		t.expanded = expanded
	}
	if root != nil {
		t.expanded[root.Path] = true
	}
	t.updateRows()
	if !t.SelectPath(selected) {
		t.clampCursor()
	}
}

// Root returns the displayed tree
func (t TreePanel) Root() *model.Entry {
	return t.root
}

// SetSize sets the panel dimensions
func (t *TreePanel) SetSize(w, h int) {
	t.width = w
	t.height = h
	t.ensureVisible()
}

// SetFocused sets focus state
func (t *TreePanel) SetFocused(focused bool) {
	t.focused = focused
}

// SetShowHidden shows or hides entries whose name starts with a dot
func (t *TreePanel) SetShowHidden(show bool) {
	t.showHidden = show
	t.refresh()
}

// SetSort changes the child order
func (t *TreePanel) SetSort(order model.SortOrder) {
	t.sort = order
	t.refresh()
}

// SetQuery filters the tree to entries whose name contains query,
// case-insensitively, plus their ancestors. An empty query clears it.
func (t *TreePanel) SetQuery(query string) {
	t.query = strings.TrimSpace(query)
	t.refresh()
}

// Query returns the active search filter
func (t TreePanel) Query() string {
	return t.query
}

// MatchCount returns how many entries match the search filter
func (t TreePanel) MatchCount() int {
	return len(t.matches)
}

// refresh rebuilds rows and keeps the cursor on the same entry if possible
func (t *TreePanel) refresh() {
	selected := ""
	if e := t.Selected(); e != nil {
		selected = e.Path
	}
	t.updateRows()
	if !t.SelectPath(selected) {
		t.clampCursor()
	}
}

// Selected returns the currently selected entry
func (t TreePanel) Selected() *model.Entry {
	if t.cursor >= 0 && t.cursor < len(t.rows) {
		return t.rows[t.cursor].entry
	}
	return nil
}

// SelectedParent returns the parent of the selected entry, nil for the root
func (t TreePanel) SelectedParent() *model.Entry {
	if t.cursor >= 0 && t.cursor < len(t.rows) {
		return t.rows[t.cursor].parent
	}
	return nil
}

// SelectPath moves the cursor to the row for path
func (t *TreePanel) SelectPath(path string) bool {
	if path == "" {
		return false
	}
	for i, row := range t.rows {
		if row.entry.Path == path {
			t.cursor = i
			t.ensureVisible()
			return true
		}
	}
	return false
}

// MoveUp moves cursor up
func (t *TreePanel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
		t.ensureVisible()
	}
}

// MoveDown moves cursor down
func (t *TreePanel) MoveDown() {
	if t.cursor < len(t.rows)-1 {
		t.cursor++
		t.ensureVisible()
	}
}

func (t TreePanel) pageSize() int {
	pageSize := (t.height - 4) / 4
	if pageSize < 1 {
		pageSize = 1
	}
	return pageSize
}

// PageUp moves cursor up by quarter page
func (t *TreePanel) PageUp() {
	t.cursor -= t.pageSize()
	t.clampCursor()
}

// PageDown moves cursor down by quarter page
func (t *TreePanel) PageDown() {
	t.cursor += t.pageSize()
	t.clampCursor()
}

// GoToTop moves to first item
func (t *TreePanel) GoToTop() {
	t.cursor = 0
	t.offset = 0
}

// GoToBottom moves to last item
func (t *TreePanel) GoToBottom() {
	t.cursor = len(t.rows) - 1
	t.clampCursor()
}

// Collapse collapses the selected folder, or moves to the parent row when
// there is nothing to collapse. It returns the path whose state changed.
func (t *TreePanel) Collapse() (string, bool) {
	e := t.Selected()
	if e == nil {
		return "", false
	}
	if e.IsDir && t.expanded[e.Path] && e != t.root {
		delete(t.expanded, e.Path)
		t.updateRows()
		return e.Path, true
	}
	if parent := t.SelectedParent(); parent != nil {
		t.SelectPath(parent.Path)
	}
	return "", false
}

// Expand expands the selected folder
func (t *TreePanel) Expand() (string, bool) {
	e := t.Selected()
	if e == nil || !e.IsDir || t.expanded[e.Path] {
		return "", false
	}
	t.expanded[e.Path] = true
	t.updateRows()
	return e.Path, true
}

// Toggle toggles expand/collapse of the selected folder
func (t *TreePanel) Toggle() (string, bool) {
	e := t.Selected()
	if e == nil || !e.IsDir {
		return "", false
	}
	if t.expanded[e.Path] {
		return t.Collapse()
	}
	return t.Expand()
}

// ExpandTo expands every ancestor of path and selects it. It returns the
// paths that were newly expanded.
func (t *TreePanel) ExpandTo(path string) []string {
	if t.root == nil {
		return nil
	}
	var opened []string
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		if !t.expanded[dir] {
			t.expanded[dir] = true
			opened = append(opened, dir)
		}
		if dir == t.root.Path || dir == filepath.Dir(dir) {
			break
		}
	}
	t.updateRows()
	t.SelectPath(path)
	return opened
}

func (t *TreePanel) clampCursor() {
	if t.cursor >= len(t.rows) {
		t.cursor = len(t.rows) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureVisible()
}

func (t *TreePanel) ensureVisible() {
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	maxVisible := t.height - 2 // account for borders
	if maxVisible < 1 {
		maxVisible = 1
	}
	if t.cursor >= t.offset+maxVisible {
		t.offset = t.cursor - maxVisible + 1
	}
}

func (t *TreePanel) updateRows() {
	t.rows = nil
	t.matches, t.onPath = nil, nil
	if t.root == nil {
		return
	}
	if t.query != "" {
		t.buildMatches()
	}
	t.collectRows(t.root, nil, 0)
}

// buildMatches records matching entries and every directory above them
func (t *TreePanel) buildMatches() {
	needle := strings.ToLower(t.query)
	t.matches = make(map[string]bool)
	t.onPath = make(map[string]bool)
	t.root.Walk(func(e *model.Entry) bool {
		if e != t.root && !t.showHidden && isHidden(e) {
			return false
		}
		if e != t.root && strings.Contains(strings.ToLower(e.Name), needle) {
			t.matches[e.Path] = true
			for dir := filepath.Dir(e.Path); ; dir = filepath.Dir(dir) {
				t.onPath[dir] = true
				if dir == t.root.Path || dir == filepath.Dir(dir) {
					break
				}
			}
		}
		return true
	})
}

func (t *TreePanel) collectRows(e, parent *model.Entry, depth int) {
	t.rows = append(t.rows, treeRow{entry: e, parent: parent, depth: depth})

	if !t.isOpen(e) {
		return
	}

	children := make([]*model.Entry, len(e.Children))
	copy(children, e.Children)
	t.sort.Sort(children)

	for _, child := range children {
		if !t.showHidden && isHidden(child) {
			continue
		}
		if t.query != "" && !t.matches[child.Path] && !t.onPath[child.Path] {
			continue
		}
		t.collectRows(child, e, depth+1)
	}
}

// isOpen reports whether e's children are listed. A search opens every
// directory on the way to a match.
func (t TreePanel) isOpen(e *model.Entry) bool {
	if !e.IsDir || len(e.Children) == 0 {
		return false
	}
	if t.query != "" {
		return t.onPath[e.Path] || (t.matches[e.Path] && t.expanded[e.Path])
	}
	return t.expanded[e.Path]
}

func isHidden(e *model.Entry) bool {
	return strings.HasPrefix(e.Name, ".")
}

// RequiredWidth calculates the minimum width needed to display all visible content
func (t TreePanel) RequiredWidth() int {
	if t.root == nil || len(t.rows) == 0 {
		return 30
	}
	maxWidth := 0
	for _, row := range t.rows {
		if w := lipgloss.Width(t.buildLine(row)); w > maxWidth {
			maxWidth = w
		}
	}
	// borders and padding
	return maxWidth + 4
}

// buildLine creates the text content for a row
func (t TreePanel) buildLine(row treeRow) string {
	e := row.entry
	prefix := strings.Repeat("  ", row.depth)
	switch {
	case t.isOpen(e):
		prefix += "▼ "
	case e.IsDir && len(e.Children) > 0:
		prefix += "▶ "
	default:
		prefix += "  "
	}

	name := e.Name
	if e.IsDir && row.parent != nil {
		name += "/"
	}
	if e.HasError() {
		name += " [!]"
	}

	var sizeBar string
	if row.parent != nil && row.parent.Size > 0 {
		sizeBar = " " + proportionBar(float64(e.Size)/float64(row.parent.Size), treeSizeBarWidth)
	}
	return fmt.Sprintf("%s%s%s %s", prefix, name, sizeBar, FormatSize(e.Size))
}

// proportionBar renders pct (0..1) as [██▓░]; ▓ marks a cell at least
// half full
func proportionBar(pct float64, width int) string {
	filledFloat := pct * float64(width)
	filled := int(filledFloat)
	var bar strings.Builder
	for j := 0; j < width; j++ {
		switch {
		case j < filled:
			bar.WriteRune('█')
		case j == filled && filledFloat-float64(filled) >= 0.5:
			bar.WriteRune('▓')
		default:
			bar.WriteRune('░')
		}
	}
	return "[" + bar.String() + "]"
}

// View renders the tree
func (t TreePanel) View() string {
	style := TreePanelStyle.Width(t.width - 2).Height(t.height - 2)
	if t.focused {
		style = style.BorderForeground(ColorPrimary)
	}
	if t.root == nil {
		return style.Render("No data")
	}
	if t.query != "" && len(t.matches) == 0 {
		return style.Render(LabelStyle.Render(fmt.Sprintf("No entries match %q", t.query)))
	}

	var lines []string
	maxVisible := t.height - 2
	if maxVisible < 1 {
		maxVisible = 1
	}
	maxW := t.width - 4
	if maxW < 1 {
		maxW = 1
	}

	for i := t.offset; i < len(t.rows) && len(lines) < maxVisible; i++ {
		row := t.rows[i]
		var itemStyle lipgloss.Style
		switch {
		case i == t.cursor && t.focused:
			itemStyle = TreeItemSelected.Width(maxW)
		case i == t.cursor:
			itemStyle = TreeItemSelectedUnfocused.Width(maxW)
		case row.entry.HasError():
			itemStyle = TreeErrorStyle
		case t.query != "" && t.matches[row.entry.Path]:
			itemStyle = lipgloss.NewStyle().Foreground(ColorWarning)
		case row.entry.IsDir:
			itemStyle = lipgloss.NewStyle().Foreground(ColorDir)
		default:
			itemStyle = lipgloss.NewStyle().Foreground(ColorFile)
		}
		lines = append(lines, itemStyle.MaxWidth(maxW).Render(t.buildLine(row)))
	}

	return style.Render(strings.Join(lines, "\n"))
}
