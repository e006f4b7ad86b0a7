package core

import (
	"time"

	"github.com/lumipallolabs/sweeper/internal/model"
)

// ScanPhase represents the current phase of scanning
type ScanPhase int

const (
	PhaseIdle ScanPhase = iota
	PhaseScanning
	PhaseComplete
)

// String returns a human-readable phase name
func (p ScanPhase) String() string {
	switch p {
	case PhaseScanning:
		return "Scanning"
	case PhaseComplete:
		return "Complete"
	default:
		return ""
	}
}

// ScanState holds the current scan state
type ScanState struct {
	Phase     ScanPhase
	StartTime time.Time
	Label     string // top-level entry being scanned
	Index     int
	Total     int
}

// IsScanning returns true if a scan is in progress (including the brief "Complete" display)
func (s ScanState) IsScanning() bool {
	return s.Phase == PhaseScanning || s.Phase == PhaseComplete
}

// Elapsed returns time since scan started
func (s ScanState) Elapsed() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	return time.Since(s.StartTime).Truncate(time.Second)
}

// Fraction returns how many top-level entries are done, 0..1
func (s ScanState) Fraction() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Index-1) / float64(s.Total)
}

// FreedState tracks space recovered from deletions
type FreedState struct {
	Session  int64 // Bytes freed this session
	Lifetime int64 // Bytes freed all time
}

// TreeState holds tree navigation state. It is keyed by path so it
// survives a rescan, which replaces every entry.
type TreeState struct {
	Root       *model.Entry
	Selected   string
	Expanded   map[string]bool // Path -> expanded
	ShowHidden bool
	Sort       model.SortOrder
}

// NewTreeState creates a new tree state
func NewTreeState() *TreeState {
	return &TreeState{
		Expanded: make(map[string]bool),
	}
}

// Reroot points the state at a new tree, keeping only expanded paths and
// the selection that still exist in it
func (t *TreeState) Reroot(root *model.Entry) {
	t.Root = root
	if root == nil {
		t.Expanded = make(map[string]bool)
		t.Selected = ""
		return
	}
	for path := range t.Expanded {
		if root.Find(path) == nil {
			delete(t.Expanded, path)
		}
	}
	t.Expanded[root.Path] = true
	if t.Selected != "" && root.Find(t.Selected) == nil {
		t.Selected = ""
	}
}

// AppState holds the complete application state (read-only view)
type AppState struct {
	RootPath string
	Scan     ScanState
	Freed    FreedState
	Disk     model.DiskSpace
	Tree     *TreeState
	Stale    bool
}
