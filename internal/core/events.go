package core

import "github.com/lumipallolabs/sweeper/internal/model"

// Event represents a state change from the controller
type Event interface {
	isEvent()
}

// ScanStartedEvent is emitted when a scan begins
type ScanStartedEvent struct {
	Path string
}

func (ScanStartedEvent) isEvent() {}

// ScanProgressEvent carries the partial tree before each top-level child
type ScanProgressEvent struct {
	Tree  *model.Entry
	Label string // "(i/N) name"
	Index int
	Total int
}

func (ScanProgressEvent) isEvent() {}

// ScanCompletedEvent is emitted when scan finishes
type ScanCompletedEvent struct {
	Root *model.Entry
	Err  error
}

func (ScanCompletedEvent) isEvent() {}

// DeletionDetectedEvent is emitted when a file/folder deletion is detected
type DeletionDetectedEvent struct {
	Path         string
	Size         int64
	SessionFreed int64
	TotalFreed   int64
}

func (DeletionDetectedEvent) isEvent() {}

// TreeStaleEvent is emitted once when the filesystem below the root changes
// after a scan; the next scan clears it
type TreeStaleEvent struct {
	Path string
}

func (TreeStaleEvent) isEvent() {}
