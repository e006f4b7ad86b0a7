package model

import (
	"path/filepath"
	"time"
)

// Entry represents a file or directory in the scanned tree together with the
// aggregated statistics of everything below it.
type Entry struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	IsDir     bool      `json:"is_dir"`
	Size      int64     `json:"size"`       // apparent bytes (recursive for dirs)
	DiskUsage int64     `json:"disk_usage"` // allocated bytes (recursive for dirs)
	FileCount int64     `json:"file_count"`
	DirCount  int64     `json:"dir_count"` // descendant directories, not counting itself
	ModTime   time.Time `json:"mtime,omitzero"`
	Children  []*Entry  `json:"children"`

	// Err is set when the node could not be fully read. Its sizes and
	// counts are zero in that case.
	Err string `json:"error,omitempty"`
}

// NewFile creates a file leaf
func NewFile(path string, size, diskUsage int64, modTime time.Time) *Entry {
	return &Entry{
		Path:      path,
		Name:      entryName(path),
		Size:      size,
		DiskUsage: diskUsage,
		FileCount: 1,
		ModTime:   modTime,
	}
}

// NewDir creates an empty directory node
func NewDir(path string, modTime time.Time) *Entry {
	return &Entry{
		Path:    path,
		Name:    entryName(path),
		IsDir:   true,
		ModTime: modTime,
	}
}

// NewError creates a placeholder for a node that could not be read
func NewError(path string, isDir bool, err error) *Entry {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &Entry{
		Path:  path,
		Name:  entryName(path),
		IsDir: isDir,
		Err:   msg,
	}
}

// entryName returns the last path element; "/" stays "/".
func entryName(path string) string {
	return filepath.Base(path)
}

// HasError reports whether the node itself failed to read
func (e *Entry) HasError() bool {
	return e.Err != ""
}

// RecalculateTotals recomputes this node's aggregates from its direct
// children. Children must already hold their own totals.
func (e *Entry) RecalculateTotals() {
	if !e.IsDir || e.HasError() {
		return
	}
	var size, usage, files, dirs int64
	for _, child := range e.Children {
		size += child.Size
		usage += child.DiskUsage
		files += child.FileCount
		if child.IsDir {
			dirs += 1 + child.DirCount
		}
	}
	e.Size = size
	e.DiskUsage = usage
	e.FileCount = files
	e.DirCount = dirs
}

// ComputeTotals recalculates aggregates for the entire tree, leaves first
func (e *Entry) ComputeTotals() {
	for _, child := range e.Children {
		child.ComputeTotals()
	}
	e.RecalculateTotals()
}

// Walk visits the node and all descendants in pre-order. Returning false
// from fn stops descent below that node.
func (e *Entry) Walk(fn func(*Entry) bool) {
	if !fn(e) {
		return
	}
	for _, child := range e.Children {
		child.Walk(fn)
	}
}

// Find returns the node with the given path, or nil
func (e *Entry) Find(path string) *Entry {
	if e.Path == path {
		return e
	}
	if !e.IsDir || !isWithin(path, e.Path) {
		return nil
	}
	for _, child := range e.Children {
		if found := child.Find(path); found != nil {
			return found
		}
	}
	return nil
}

// Parent returns the node whose Children contain the node at path
func (e *Entry) Parent(path string) *Entry {
	for _, child := range e.Children {
		if child.Path == path {
			return e
		}
		if child.IsDir && isWithin(path, child.Path) {
			if p := child.Parent(path); p != nil {
				return p
			}
		}
	}
	return nil
}

// isWithin reports whether path lies strictly below dir
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !hasDotDotPrefix(rel)
}

func hasDotDotPrefix(rel string) bool {
	return len(rel) >= 3 && rel[:2] == ".." && rel[2] == filepath.Separator
}
