package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lumipallolabs/sweeper/internal/logging"
	"github.com/lumipallolabs/sweeper/internal/model"
	"github.com/lumipallolabs/sweeper/internal/scanner"
	"github.com/lumipallolabs/sweeper/internal/stats"
	"github.com/lumipallolabs/sweeper/internal/watcher"
)

// MinSignificantSize is the minimum size for a detected deletion to count in freed stats
const MinSignificantSize = 200 * 1024 // 200 KB

var (
	ErrScanInProgress = errors.New("scan already in progress")
	ErrNoTree         = errors.New("nothing scanned yet")
	ErrDeleteRoot     = errors.New("refusing to delete the scan root")
	ErrNotInTree      = errors.New("path is not in the scanned tree")
)

// Controller manages the core application logic without UI dependencies
type Controller struct {
	mu sync.RWMutex

	// State
	rootPath string
	opts     scanner.Options
	root     *model.Entry
	tree     *TreeState
	scan     ScanState
	freed    FreedState
	disk     model.DiskSpace
	stale    bool

	// Paths removed by Delete, so the watcher does not count them twice
	deleted map[string]bool

	// Internal services
	watcher      *watcher.Watcher
	statsManager *stats.Manager
}

// NewController creates a controller for rootPath. statsMgr may be nil.
func NewController(rootPath string, opts scanner.Options, statsMgr *stats.Manager) *Controller {
	if abs, err := filepath.Abs(rootPath); err == nil {
		rootPath = abs
	}
	c := &Controller{
		rootPath:     rootPath,
		opts:         opts,
		tree:         NewTreeState(),
		deleted:      make(map[string]bool),
		statsManager: statsMgr,
	}
	if statsMgr != nil {
		c.freed.Lifetime = statsMgr.FreedLifetime()
	}
	c.refreshDisk()
	return c
}

// State returns a read-only snapshot of the current state
func (c *Controller) State() AppState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return AppState{
		RootPath: c.rootPath,
		Scan:     c.scan,
		Freed:    c.freed,
		Disk:     c.disk,
		Tree:     c.tree,
		Stale:    c.stale,
	}
}

// RootPath returns the directory being scanned
func (c *Controller) RootPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rootPath
}

// Root returns the root node of the scanned tree
func (c *Controller) Root() *model.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.root
}

// Tree returns the navigation state
func (c *Controller) Tree() *TreeState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree
}

// ScanState returns the current scan state
func (c *Controller) ScanState() ScanState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scan
}

// FreedState returns the current freed space state
func (c *Controller) FreedState() FreedState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.freed
}

// StartScan runs a progressive scan of the root in the background. The
// returned channel closes after the ScanCompletedEvent.
func (c *Controller) StartScan(ctx context.Context) (<-chan Event, error) {
	c.mu.Lock()
	if c.scan.Phase == PhaseScanning {
		c.mu.Unlock()
		return nil, ErrScanInProgress
	}

	c.scan = ScanState{
		Phase:     PhaseScanning,
		StartTime: time.Now(),
	}
	path, opts := c.rootPath, c.opts
	c.mu.Unlock()

	// Create event channel for this scan
	eventCh := make(chan Event, 100)

	go c.runScan(ctx, path, opts, eventCh)

	return eventCh, nil
}

// runScan translates scanner updates into controller events
func (c *Controller) runScan(ctx context.Context, path string, opts scanner.Options, eventCh chan Event) {
	defer close(eventCh)

	logging.Debug.Debug().Str("path", path).Msg("controller: starting scan")
	if !emit(ctx, eventCh, ScanStartedEvent{Path: path}) {
		c.finishScan(nil, ctx.Err())
		return
	}

	updates := make(chan scanner.ScanUpdate, 16)
	go scanner.ScanProgressive(ctx, path, opts, updates)

	var done bool
	for update := range updates {
		switch u := update.(type) {
		case scanner.ProgressUpdate:
			c.mu.Lock()
			c.scan.Label = u.Scanning
			c.scan.Index = u.Index
			c.scan.Total = u.Total
			c.root = u.Tree
			c.mu.Unlock()

			emit(ctx, eventCh, ScanProgressEvent{Tree: u.Tree, Label: u.Scanning, Index: u.Index, Total: u.Total})

		case scanner.CompleteUpdate:
			done = true
			c.finishScan(u.Tree, nil)
			c.refreshDisk()
			emit(ctx, eventCh, ScanCompletedEvent{Root: u.Tree})
			logging.Debug.Debug().Str("path", path).Int64("size", u.Tree.Size).Msg("controller: scan complete")

		case scanner.ErrorUpdate:
			done = true
			err := errors.New(u.Message)
			c.finishScan(nil, err)
			emit(ctx, eventCh, ScanCompletedEvent{Err: err})
			logging.Debug.Warn().Str("path", path).Str("error", u.Message).Msg("controller: scan failed")
		}
	}

	// Cancelled before the scanner could report
	if !done {
		err := ctx.Err()
		if err == nil {
			err = errors.New("scan ended without a result")
		}
		c.finishScan(nil, err)
		select {
		case eventCh <- ScanCompletedEvent{Err: err}:
		default:
		}
	}
}

// finishScan stores the result of a scan. On error the previous tree is
// kept.
func (c *Controller) finishScan(root *model.Entry, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.scan.Phase = PhaseIdle
		return
	}
	c.scan.Phase = PhaseComplete
	// Subtrees are shared with progress snapshots the UI may still be
	// drawing, so the tree keeps the scanner's size order until SetSort
	c.setRootLocked(root, false)
	if c.statsManager != nil {
		c.statsManager.RecordScan(c.rootPath, time.Now())
	}
}

func (c *Controller) setRootLocked(root *model.Entry, sort bool) {
	if sort {
		root.SortTree(c.tree.Sort)
	}
	c.root = root
	c.tree.Reroot(root)
	c.stale = false
	c.deleted = make(map[string]bool)
}

// FinalizeScan marks the scan as fully complete (after UI delay)
func (c *Controller) FinalizeScan() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scan.Phase == PhaseComplete {
		c.scan.Phase = PhaseIdle
	}
}

// Rescan runs a blocking sequential scan and replaces the tree
func (c *Controller) Rescan(ctx context.Context) (*model.Entry, error) {
	c.mu.RLock()
	if c.scan.Phase == PhaseScanning {
		c.mu.RUnlock()
		return nil, ErrScanInProgress
	}
	path, opts := c.rootPath, c.opts
	c.mu.RUnlock()

	root, err := scanner.Scan(ctx, path, opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.setRootLocked(root, true)
	c.mu.Unlock()
	c.refreshDisk()
	return root, nil
}

// Delete removes path from disk, records the freed space and rescans.
// It returns the bytes freed.
func (c *Controller) Delete(ctx context.Context, path string) (int64, error) {
	c.mu.Lock()
	if c.root == nil {
		c.mu.Unlock()
		return 0, ErrNoTree
	}
	if c.scan.Phase == PhaseScanning {
		c.mu.Unlock()
		return 0, ErrScanInProgress
	}
	if path == c.root.Path || path == c.rootPath {
		c.mu.Unlock()
		return 0, ErrDeleteRoot
	}
	node := c.root.Find(path)
	if node == nil {
		c.mu.Unlock()
		return 0, fmt.Errorf("%w: %s", ErrNotInTree, path)
	}
	size := node.DiskUsage
	c.deleted[path] = true
	c.mu.Unlock()

	if err := os.RemoveAll(path); err != nil {
		return 0, fmt.Errorf("delete %s: %w", path, err)
	}
	logging.Debug.Info().Str("path", path).Int64("freed", size).Msg("controller: deleted")

	c.recordFreed(size)

	if _, err := c.Rescan(ctx); err != nil {
		return size, fmt.Errorf("rescan after delete: %w", err)
	}
	return size, nil
}

func (c *Controller) recordFreed(size int64) FreedState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.freed.Session += size
	c.freed.Lifetime += size
	if c.statsManager != nil {
		c.statsManager.AddFreed(size)
	}
	return c.freed
}

// SetSort reorders the current tree and remembers the order for rescans.
// Call it from the goroutine that reads the tree.
func (c *Controller) SetSort(order model.SortOrder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tree.Sort = order
	if c.root != nil && c.scan.Phase != PhaseScanning {
		c.root.SortTree(order)
	}
}

// ToggleHidden flips whether hidden entries are displayed
func (c *Controller) ToggleHidden() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tree.ShowHidden = !c.tree.ShowHidden
	return c.tree.ShowHidden
}

// SetExpanded records whether the directory at path is expanded
func (c *Controller) SetExpanded(path string, expanded bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if expanded {
		c.tree.Expanded[path] = true
	} else {
		delete(c.tree.Expanded, path)
	}
}

// ExpandedPaths returns a copy of the expanded set
func (c *Controller) ExpandedPaths() map[string]bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]bool, len(c.tree.Expanded))
	for path := range c.tree.Expanded {
		out[path] = true
	}
	return out
}

// Select records the selected path
func (c *Controller) Select(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tree.Selected = path
}

// SelectedPath returns the last recorded selection
func (c *Controller) SelectedPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree.Selected
}

func (c *Controller) refreshDisk() {
	disk, err := model.GetDiskSpace(c.RootPath())
	if err != nil {
		logging.Debug.Debug().Err(err).Msg("controller: disk space unavailable")
		return
	}
	c.mu.Lock()
	c.disk = disk
	c.mu.Unlock()
}

// StartWatching starts the filesystem watcher for the current scan root
func (c *Controller) StartWatching() (<-chan Event, error) {
	c.mu.Lock()

	watchPath := c.rootPath
	if c.root == nil {
		c.mu.Unlock()
		return nil, ErrNoTree
	}

	// Stop existing watcher
	if c.watcher != nil {
		_ = c.watcher.Stop()
	}

	// Create new watcher
	w, err := watcher.New()
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}

	c.watcher = w
	c.mu.Unlock()

	if err := w.AddRecursive(watchPath); err != nil {
		logging.Debug.Debug().Err(err).Msg("failed to add recursive watch")
	}
	w.Start()
	logging.Debug.Debug().Str("path", watchPath).Msg("filesystem watcher started")

	// Create event channel
	eventCh := make(chan Event, 100)

	go c.watchLoop(w, eventCh)

	return eventCh, nil
}

// watchLoop processes filesystem events
func (c *Controller) watchLoop(w *watcher.Watcher, eventCh chan Event) {
	defer close(eventCh)

	for event := range w.Events() {
		if !c.underRoot(event.Path) {
			continue
		}
		if event.Type == watcher.EventDeleted {
			c.handleDeletion(event.Path, eventCh)
		}
		c.markStale(event.Path, eventCh)
	}
}

func (c *Controller) underRoot(path string) bool {
	root := c.RootPath()
	if path == root {
		return true
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	return strings.HasPrefix(path, root)
}

// markStale emits TreeStaleEvent on the first change after a scan
func (c *Controller) markStale(path string, eventCh chan Event) {
	c.mu.Lock()
	if c.stale || c.scan.Phase == PhaseScanning {
		c.mu.Unlock()
		return
	}
	c.stale = true
	c.mu.Unlock()

	select {
	case eventCh <- TreeStaleEvent{Path: path}:
	default:
	}
}

// handleDeletion counts space freed outside the app, e.g. in a file manager
func (c *Controller) handleDeletion(path string, eventCh chan Event) {
	c.mu.RLock()
	root := c.root
	ours := c.deletedByUs(path)
	c.mu.RUnlock()

	if root == nil || ours {
		return
	}
	node := root.Find(path)
	if node == nil {
		logging.Debug.Trace().Str("path", path).Msg("watcher: delete event for path not in tree")
		return
	}

	size := node.DiskUsage
	if size < MinSignificantSize {
		return
	}

	c.mu.Lock()
	c.deleted[path] = true
	c.mu.Unlock()
	freed := c.recordFreed(size)

	select {
	case eventCh <- DeletionDetectedEvent{
		Path:         path,
		Size:         size,
		SessionFreed: freed.Session,
		TotalFreed:   freed.Lifetime,
	}:
	default:
	}

	logging.Debug.Debug().Str("path", path).Int64("size", size).
		Int64("session", freed.Session).Int64("lifetime", freed.Lifetime).
		Msg("watcher: freed")
}

// deletedByUs reports whether path or one of its parents was already counted
func (c *Controller) deletedByUs(path string) bool {
	for p := path; ; p = filepath.Dir(p) {
		if c.deleted[p] {
			return true
		}
		if parent := filepath.Dir(p); parent == p {
			return false
		}
	}
}

// Stop cleans up resources
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.watcher != nil {
		_ = c.watcher.Stop()
	}
	if c.statsManager != nil {
		_ = c.statsManager.Close()
	}
}

// emit sends an event unless ctx is done first
func emit(ctx context.Context, eventCh chan Event, event Event) bool {
	select {
	case eventCh <- event:
		return true
	case <-ctx.Done():
		return false
	}
}
