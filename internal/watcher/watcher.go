// Package watcher reports filesystem changes below a scanned root.
package watcher

// EventType represents the type of filesystem event
type EventType int

const (
	EventDeleted EventType = iota
	EventCreated
	EventModified
)

func (t EventType) String() string {
	switch t {
	case EventDeleted:
		return "deleted"
	case EventCreated:
		return "created"
	default:
		return "modified"
	}
}

// Event represents a filesystem change event
type Event struct {
	Type EventType
	Path string
}

// eventBuffer is the size of every watcher's event channel. Events beyond
// it are dropped; consumers only need to learn that the tree went stale.
const eventBuffer = 100
