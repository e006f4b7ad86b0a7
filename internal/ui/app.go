package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gabriel-vasile/mimetype"
	"github.com/lumipallolabs/sweeper/internal/core"
	"github.com/lumipallolabs/sweeper/internal/logging"
	"github.com/lumipallolabs/sweeper/internal/model"
)

// Panel identifies which panel is active
type Panel int

const (
	PanelTree Panel = iota
	PanelTreemap
)

// Message types for Bubble Tea
type (
	scanStartMsg         struct{}
	scanEventMsg         struct{ event core.Event }
	scanCompleteDelayMsg struct{ root *model.Entry }
	watcherEventMsg      struct{ event core.Event }
	deleteDoneMsg        struct {
		path  string
		freed int64
		err   error
	}
	focusDebounceMsg struct {
		version int
		entry   *model.Entry
	}
)

// Timing constants
const (
	focusDebounceTimeout = 300 * time.Millisecond
	completeDisplayDelay = 500 * time.Millisecond
)

// Options configures the App
type Options struct {
	Version    string
	Sort       model.SortOrder
	ShowHidden bool
}

// App is the main TUI application model
type App struct {
	ctx  context.Context
	ctrl *core.Controller

	// UI Components
	header  Header
	tree    TreePanel
	treemap TreemapPanel
	help    HelpOverlay
	keys    KeyMap
	spinner spinner.Model
	search  textinput.Model

	// UI state
	activePanel  Panel
	sort         model.SortOrder
	showHidden   bool
	searching    bool
	confirm      *model.Entry // pending delete
	busy         bool         // delete in flight
	err          error
	focusVersion int // for debouncing
	fileType     fileType

	// Event channels (for continuing to listen after each event)
	scanEventCh    <-chan core.Event
	watcherEventCh <-chan core.Event

	// Dimensions
	width           int
	height          int
	rightPanelWidth int
}

// fileType caches the sniffed MIME type of the selected file
type fileType struct {
	path string
	mime string
	ext  string
}

// NewApp creates a new application instance. ctx cancels scans and deletes.
func NewApp(ctx context.Context, ctrl *core.Controller, opts Options) App {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)),
	)

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "name contains..."
	search.CharLimit = 256
	search.PromptStyle = lipgloss.NewStyle().Foreground(ColorCyan)

	app := App{
		ctx:         ctx,
		ctrl:        ctrl,
		header:      NewHeader(ctrl.RootPath(), opts.Version),
		tree:        NewTreePanel(),
		treemap:     NewTreemapPanel(),
		help:        NewHelpOverlay(opts.Version),
		keys:        DefaultKeyMap(),
		spinner:     sp,
		search:      search,
		activePanel: PanelTree,
		sort:        opts.Sort,
		showHidden:  opts.ShowHidden,
	}

	if opts.ShowHidden != ctrl.State().Tree.ShowHidden {
		ctrl.ToggleHidden()
	}
	ctrl.SetSort(opts.Sort)
	app.tree.SetSort(opts.Sort)
	app.tree.SetShowHidden(opts.ShowHidden)
	app.treemap.SetShowHidden(opts.ShowHidden)
	app.tree.SetFocused(true)
	app.header.SetState(ctrl.State())

	return app
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	return func() tea.Msg {
		return scanStartMsg{}
	}
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case scanStartMsg:
		return a.startScan()

	case scanEventMsg:
		return a.handleScanEvent(msg.event)

	case scanCompleteDelayMsg:
		return a.finalizeScan(msg.root)

	case watcherEventMsg:
		switch e := msg.event.(type) {
		case core.DeletionDetectedEvent:
			a.header.SetStatus(fmt.Sprintf("%s removed outside sweeper", FormatSize(e.Size)))
		case core.TreeStaleEvent:
			logging.Debug.Debug().Str("path", e.Path).Msg("ui: tree is stale")
		}
		a.header.SetState(a.ctrl.State())
		return a, a.listenForWatcherEvents()

	case deleteDoneMsg:
		return a.deleteDone(msg)

	case focusDebounceMsg:
		if msg.version == a.focusVersion && msg.entry != nil {
			a.treemap.SetFocus(msg.entry)
		}
		return a, nil

	case spinner.TickMsg:
		if !a.ctrl.ScanState().IsScanning() && !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		a.header.SetSpinner(a.spinner.View())
		return a, cmd
	}

	if a.searching {
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		return a, cmd
	}
	return a, nil
}

// startScan begins a progressive scan of the root
func (a App) startScan() (tea.Model, tea.Cmd) {
	eventCh, err := a.ctrl.StartScan(a.ctx)
	if err != nil {
		a.err = err
		return a, nil
	}
	a.err = nil
	a.scanEventCh = eventCh
	a.header.SetStatus("")
	a.header.SetState(a.ctrl.State())

	return a, tea.Batch(a.listenForScanEvents(), a.spinner.Tick)
}

// listenForScanEvents creates a command that waits for the next scan event
func (a App) listenForScanEvents() tea.Cmd {
	if a.scanEventCh == nil {
		return nil
	}
	eventCh := a.scanEventCh
	return func() tea.Msg {
		event, ok := <-eventCh
		if !ok {
			return nil
		}
		return scanEventMsg{event: event}
	}
}

// handleScanEvent processes scan events and continues listening
func (a App) handleScanEvent(event core.Event) (tea.Model, tea.Cmd) {
	a.header.SetState(a.ctrl.State())

	switch e := event.(type) {
	case core.ScanProgressEvent:
		a.setTree(e.Tree, nil)
		return a, a.listenForScanEvents()

	case core.ScanCompletedEvent:
		a.scanEventCh = nil
		if e.Err != nil {
			a.err = e.Err
			return a, nil
		}
		// The UI goroutine is the only reader of the tree now
		a.ctrl.SetSort(a.sort)
		root := e.Root
		return a, tea.Tick(completeDisplayDelay, func(time.Time) tea.Msg {
			return scanCompleteDelayMsg{root: root}
		})
	}
	return a, a.listenForScanEvents()
}

// finalizeScan shows the finished tree and starts watching it
func (a App) finalizeScan(root *model.Entry) (tea.Model, tea.Cmd) {
	a.ctrl.FinalizeScan()
	a.setTree(root, a.ctrl.ExpandedPaths())
	a.header.SetState(a.ctrl.State())
	a.err = nil
	a.updateLayout()
	return a, a.startWatcher()
}

// setTree points both panels at root
func (a *App) setTree(root *model.Entry, expanded map[string]bool) {
	a.tree.SetRoot(root, expanded)
	a.treemap.SetRoot(root)
	if a.treemap.Selected() == nil || a.treemap.Selected() == root {
		a.treemap.SetSelected(a.tree.Selected())
	}
	a.updateLayout()
}

// startWatcher starts watching the scanned tree for changes
func (a *App) startWatcher() tea.Cmd {
	eventCh, err := a.ctrl.StartWatching()
	if err != nil || eventCh == nil {
		logging.Debug.Debug().Err(err).Msg("ui: watcher unavailable")
		return nil
	}
	a.watcherEventCh = eventCh
	return a.listenForWatcherEvents()
}

// listenForWatcherEvents creates a command that waits for the next watcher event
func (a App) listenForWatcherEvents() tea.Cmd {
	if a.watcherEventCh == nil {
		return nil
	}
	eventCh := a.watcherEventCh
	return func() tea.Msg {
		event, ok := <-eventCh
		if !ok {
			return nil
		}
		return watcherEventMsg{event: event}
	}
}

// handleKey handles keyboard input
func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.help.IsVisible() {
		a.help.SetVisible(false)
		return a, nil
	}
	if a.searching {
		return a.handleSearchKey(msg)
	}
	if a.confirm != nil {
		return a.handleConfirmKey(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.ctrl.Stop()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.help.Toggle()
		return a, nil

	case key.Matches(msg, a.keys.Tab):
		if a.activePanel == PanelTree {
			a.activePanel = PanelTreemap
			a.tree.SetFocused(false)
			a.treemap.SetFocused(true)
			a.treemap.SelectFirst()
			return a, nil
		}
		a.activePanel = PanelTree
		a.tree.SetFocused(true)
		a.treemap.SetFocused(false)
		return a, a.syncSelection()

	case key.Matches(msg, a.keys.Up):
		if a.activePanel == PanelTree {
			a.tree.MoveUp()
			return a, a.syncSelection()
		}
		a.treemap.MoveToBlock(0, -1)
		return a, nil

	case key.Matches(msg, a.keys.Down):
		if a.activePanel == PanelTree {
			a.tree.MoveDown()
			return a, a.syncSelection()
		}
		a.treemap.MoveToBlock(0, 1)
		return a, nil

	case key.Matches(msg, a.keys.Left):
		if a.activePanel == PanelTree {
			a.collapse()
			return a, a.syncSelection()
		}
		a.treemap.MoveToBlock(-1, 0)
		return a, nil

	case key.Matches(msg, a.keys.Right):
		if a.activePanel == PanelTree {
			if path, ok := a.tree.Expand(); ok {
				a.ctrl.SetExpanded(path, true)
				a.updateLayout()
			}
			return a, nil
		}
		a.treemap.MoveToBlock(1, 0)
		return a, nil

	case key.Matches(msg, a.keys.Top):
		if a.activePanel == PanelTree {
			a.tree.GoToTop()
			return a, a.syncSelection()
		}
		return a, nil

	case key.Matches(msg, a.keys.Bottom):
		if a.activePanel == PanelTree {
			a.tree.GoToBottom()
			return a, a.syncSelection()
		}
		return a, nil

	case key.Matches(msg, a.keys.PageUp):
		if a.activePanel == PanelTree {
			a.tree.PageUp()
			return a, a.syncSelection()
		}
		return a, nil

	case key.Matches(msg, a.keys.PageDown):
		if a.activePanel == PanelTree {
			a.tree.PageDown()
			return a, a.syncSelection()
		}
		return a, nil

	case key.Matches(msg, a.keys.Enter):
		if a.activePanel == PanelTreemap {
			if a.treemap.ZoomIn() {
				for _, path := range a.tree.ExpandTo(a.treemap.Focus().Path) {
					a.ctrl.SetExpanded(path, true)
				}
				a.updateLayout()
			}
			return a, nil
		}
		if path, ok := a.tree.Toggle(); ok {
			a.ctrl.SetExpanded(path, a.tree.expanded[path])
			a.updateLayout()
		}
		return a, a.syncSelection()

	case key.Matches(msg, a.keys.Back):
		if a.tree.Query() != "" {
			a.tree.SetQuery("")
			a.updateLayout()
			return a, a.syncSelection()
		}
		if a.activePanel == PanelTreemap {
			a.treemap.ZoomOut()
			return a, nil
		}
		a.collapse()
		return a, a.syncSelection()

	case key.Matches(msg, a.keys.Hidden):
		a.showHidden = a.ctrl.ToggleHidden()
		a.tree.SetShowHidden(a.showHidden)
		a.treemap.SetShowHidden(a.showHidden)
		a.updateLayout()
		return a, a.syncSelection()

	case key.Matches(msg, a.keys.Sort):
		a.sort = a.sort.Next()
		a.ctrl.SetSort(a.sort)
		a.tree.SetSort(a.sort)
		a.header.SetStatus("sorted by " + a.sort.String())
		return a, nil

	case key.Matches(msg, a.keys.Search):
		a.searching = true
		a.search.SetValue(a.tree.Query())
		a.search.CursorEnd()
		return a, a.search.Focus()

	case key.Matches(msg, a.keys.Rescan):
		if a.ctrl.ScanState().IsScanning() || a.busy {
			return a, nil
		}
		return a.startScan()

	case key.Matches(msg, a.keys.Delete):
		return a.requestDelete()

	case key.Matches(msg, a.keys.OpenExplorer):
		a.openInExplorer()
		return a, nil
	}

	return a, nil
}

// handleSearchKey edits the search box and filters as the user types
func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		a.searching = false
		a.search.Blur()
		return a, a.syncSelection()
	case tea.KeyEsc:
		a.searching = false
		a.search.Blur()
		a.search.SetValue("")
		a.tree.SetQuery("")
		a.updateLayout()
		return a, a.syncSelection()
	}

	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	if a.search.Value() != a.tree.Query() {
		a.tree.SetQuery(a.search.Value())
		a.updateLayout()
	}
	return a, cmd
}

// collapse collapses the selected directory in the tree panel
func (a *App) collapse() {
	if path, ok := a.tree.Collapse(); ok {
		a.ctrl.SetExpanded(path, false)
		a.updateLayout()
	}
}

// selectedEntry returns the entry the active panel points at
func (a App) selectedEntry() *model.Entry {
	if a.activePanel == PanelTreemap {
		return a.treemap.Selected()
	}
	return a.tree.Selected()
}

// requestDelete asks for confirmation before deleting the selection
func (a App) requestDelete() (tea.Model, tea.Cmd) {
	e := a.selectedEntry()
	switch {
	case e == nil:
		return a, nil
	case a.ctrl.ScanState().IsScanning() || a.busy:
		a.header.SetStatus("wait for the scan to finish")
		return a, nil
	case e == a.tree.Root():
		a.header.SetStatus("the scan root cannot be deleted")
		return a, nil
	}
	a.confirm = e
	return a, nil
}

// handleConfirmKey answers the delete prompt
func (a App) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Yes):
		target := a.confirm
		a.confirm = nil
		a.busy = true
		a.header.SetStatus("deleting " + target.Name + "...")
		ctx, ctrl, path := a.ctx, a.ctrl, target.Path
		return a, tea.Batch(a.spinner.Tick, func() tea.Msg {
			freed, err := ctrl.Delete(ctx, path)
			return deleteDoneMsg{path: path, freed: freed, err: err}
		})
	case key.Matches(msg, a.keys.No), key.Matches(msg, a.keys.Quit):
		a.confirm = nil
	}
	return a, nil
}

// deleteDone shows the rescanned tree after a delete
func (a App) deleteDone(msg deleteDoneMsg) (tea.Model, tea.Cmd) {
	a.busy = false
	if msg.err != nil {
		a.err = msg.err
		logging.Debug.Warn().Err(msg.err).Str("path", msg.path).Msg("ui: delete failed")
	} else {
		a.err = nil
	}
	if msg.freed > 0 {
		a.header.SetStatus(fmt.Sprintf("deleted %s, freed %s", filepath.Base(msg.path), FormatSize(msg.freed)))
	} else {
		a.header.SetStatus("")
	}
	if root := a.ctrl.Root(); root != nil {
		a.setTree(root, a.ctrl.ExpandedPaths())
	}
	a.header.SetState(a.ctrl.State())
	return a, a.syncSelection()
}

// syncSelection syncs tree selection to treemap
func (a *App) syncSelection() tea.Cmd {
	e := a.tree.Selected()
	if e == nil {
		return nil
	}
	a.ctrl.Select(e.Path)
	a.treemap.SetSelected(e)
	a.updateFileType(e)

	if e.IsDir {
		if len(e.Children) > 0 {
			a.treemap.SetFocus(e)
		}
		return nil
	}

	// Files: debounce, scrolling past many files would relayout each time
	a.focusVersion++
	version := a.focusVersion
	return tea.Tick(focusDebounceTimeout, func(time.Time) tea.Msg {
		return focusDebounceMsg{version: version, entry: e}
	})
}

// updateFileType sniffs the selected file once per selection
func (a *App) updateFileType(e *model.Entry) {
	if e.IsDir || e.HasError() {
		a.fileType = fileType{}
		return
	}
	if a.fileType.path == e.Path {
		return
	}
	a.fileType = fileType{path: e.Path}
	mtype, err := mimetype.DetectFile(e.Path)
	if err != nil {
		logging.Debug.Trace().Err(err).Str("path", e.Path).Msg("ui: mime detection failed")
		return
	}
	a.fileType.mime = mtype.String()
	a.fileType.ext = strings.ToUpper(strings.TrimPrefix(mtype.Extension(), "."))
}

// openInExplorer reveals the selected entry in the file manager
func (a *App) openInExplorer() {
	e := a.selectedEntry()
	if e == nil {
		return
	}
	logging.Debug.Debug().Str("path", e.Path).Msg("ui: open in file manager")
	if err := openInFileManager(e.Path); err != nil {
		a.err = err
	}
}

// updateLayout calculates component sizes
func (a *App) updateLayout() {
	headerHeight := 2
	bottomHeight := 1
	infoBarHeight := 2

	panelHeight := max(a.height-headerHeight-bottomHeight, 1)

	treeWidth := a.tree.RequiredWidth()
	treeWidth = min(treeWidth, a.width/2)
	treeWidth = max(treeWidth, 20)

	a.header.SetWidth(a.width)
	a.tree.SetSize(treeWidth, panelHeight)
	a.rightPanelWidth = a.width - treeWidth
	a.treemap.SetSize(a.rightPanelWidth, panelHeight-infoBarHeight)
	a.help.SetSize(a.width, a.height)
	a.search.Width = max(a.width-4, 10)
}

// View implements tea.Model
func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Scanning " + a.ctrl.RootPath() + "..."
	}
	if a.help.IsVisible() {
		return a.help.View(a.keys)
	}

	var main string
	if a.tree.Root() == nil {
		main = a.renderScanningPanel()
	} else {
		main = a.renderMainPanels()
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.header.View(), main, a.bottomLine())
}

// bottomLine shows the search box, the delete prompt, an error or key hints
func (a App) bottomLine() string {
	line := lipgloss.NewStyle().Width(a.width).MaxWidth(a.width).MaxHeight(1)
	switch {
	case a.searching:
		return line.Render(a.search.View())
	case a.confirm != nil:
		prompt := fmt.Sprintf("Delete %s (%s)? y/n", a.confirm.Path, FormatSize(a.confirm.DiskUsage))
		return line.Render(ConfirmStyle.Render(prompt))
	case a.err != nil:
		return line.Render(TreeErrorStyle.Padding(0, 1).Render(fmt.Sprintf("Error: %v", a.err)))
	case a.tree.Query() != "":
		hint := fmt.Sprintf(" %d matches for %q  ", a.tree.MatchCount(), a.tree.Query())
		return line.Render(LabelStyle.Render(hint) + KeyHint.Render("esc") + LabelStyle.Render(" clear"))
	}
	return HelpBar(a.keys, a.width)
}

// renderScanningPanel is shown until the first snapshot arrives
func (a App) renderScanningPanel() string {
	panelHeight := max(a.height-3, 1)
	state := a.ctrl.ScanState()

	var lines []string
	title := lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
	if state.Phase == core.PhaseScanning {
		lines = append(lines, a.spinner.View()+" "+title.Render("Scanning"))
	} else {
		lines = append(lines, title.Render("Nothing scanned"))
	}
	lines = append(lines, LabelStyle.Render(a.ctrl.RootPath()))
	if state.Label != "" {
		lines = append(lines, "", StatsStyle.Render(state.Label))
	}
	if elapsed := state.Elapsed(); elapsed > 0 {
		lines = append(lines, LabelStyle.Render(elapsed.String()))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 3).
		Render(strings.Join(lines, "\n"))
	return lipgloss.Place(a.width, panelHeight, lipgloss.Center, lipgloss.Center, box)
}

// renderMainPanels renders the tree and treemap panels
func (a App) renderMainPanels() string {
	var right string
	if selected := a.tree.Selected(); selected != nil && !selected.IsDir && a.activePanel == PanelTree {
		right = a.fileDetailsPanel(selected)
	} else {
		right = a.treemap.View()
	}
	rightPanel := lipgloss.JoinVertical(lipgloss.Left, a.infoBar(), right)
	return lipgloss.JoinHorizontal(lipgloss.Top, a.tree.View(), rightPanel)
}

func (a App) panelBorder() lipgloss.Style {
	if a.activePanel == PanelTreemap {
		return lipgloss.NewStyle().Foreground(ColorCyan)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#2D6A6A"))
}

// infoBar shows metadata for the selection
func (a App) infoBar() string {
	e := a.selectedEntry()
	if e == nil {
		return "\n"
	}
	border := a.panelBorder()
	content := " " + a.entryInfo(e) + " "
	maxW := max(a.rightPanelWidth-2, 1)
	content = lipgloss.NewStyle().MaxWidth(maxW).Render(content)
	w := lipgloss.Width(content)
	return border.Render("╭"+strings.Repeat("─", w)+"╮") + "\n" + border.Render("│") + content + border.Render("│")
}

// entryInfo creates the one-line summary for an entry
func (a App) entryInfo(e *model.Entry) string {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	name := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	sep := dim.Render(" │ ")

	icon := "📄"
	if e.IsDir {
		icon = "📁"
	}
	parts := []string{icon + " " + name.Render(e.Name), dim.Render(FormatSize(e.Size))}
	if e.DiskUsage != e.Size {
		parts = append(parts, dim.Render(FormatSize(e.DiskUsage)+" on disk"))
	}
	if e.IsDir {
		parts = append(parts, dim.Render(fmt.Sprintf("%d files, %d dirs", e.FileCount, e.DirCount)))
	} else if a.fileType.path == e.Path && a.fileType.mime != "" {
		parts = append(parts, dim.Render(a.fileType.mime))
	}
	if t := FormatTime(e.ModTime); t != "" {
		parts = append(parts, dim.Render("M: "+t))
	}
	if e.HasError() {
		parts = append(parts, TreeErrorStyle.Render(e.Err))
	}
	return strings.Join(parts, sep)
}

// fileDetailsPanel renders detailed file information in place of the treemap
func (a App) fileDetailsPanel(e *model.Entry) string {
	panelHeight := a.height - 5
	innerWidth := max(a.rightPanelWidth-4, 1)
	innerHeight := max(panelHeight-2, 1)

	label := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	value := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	pathStyle := lipgloss.NewStyle().Foreground(ColorCyan)

	var lines []string
	if a.fileType.path == e.Path && a.fileType.ext != "" {
		lines = append(lines, label.Render("Type: ")+value.Render(a.fileType.ext))
	}
	if a.fileType.path == e.Path && a.fileType.mime != "" {
		lines = append(lines, label.Render("MIME: ")+value.Render(a.fileType.mime))
	}
	lines = append(lines,
		label.Render("Size: ")+value.Render(FormatSize(e.Size)),
		label.Render("On disk: ")+value.Render(FormatSize(e.DiskUsage)),
	)
	if info, err := os.Lstat(e.Path); err == nil {
		if t := FormatTime(getCreationTime(info)); t != "" {
			lines = append(lines, label.Render("Created: ")+value.Render(t))
		}
		lines = append(lines,
			label.Render("Modified: ")+value.Render(FormatTime(info.ModTime())),
			label.Render("Permissions: ")+value.Render(info.Mode().String()),
		)
	}
	if e.HasError() {
		lines = append(lines, label.Render("Error: ")+TreeErrorStyle.Render(e.Err))
	}
	lines = append(lines, "", label.Render("Path:"), pathStyle.Render(e.Path))

	border := a.panelBorder()
	var out strings.Builder
	out.WriteString(border.Render("╭" + strings.Repeat("─", innerWidth) + "╮"))
	out.WriteString("\n")
	cell := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth)
	for i := 0; i < innerHeight; i++ {
		var line string
		if i < len(lines) {
			line = " " + lines[i]
		}
		out.WriteString(border.Render("│") + cell.Render(line) + border.Render("│"))
		out.WriteString("\n")
	}
	out.WriteString(border.Render("╰" + strings.Repeat("─", innerWidth) + "╯"))
	return out.String()
}
