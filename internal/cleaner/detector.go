// Package cleaner finds software projects with rebuildable build artifacts
// in a scanned tree and removes those artifacts.
package cleaner

import (
	"strings"

	"github.com/lumipallolabs/sweeper/internal/model"
)

// Detector recognises one kind of project from the entries of its directory
type Detector struct {
	// ID is the short name used by --types, e.g. "cargo"
	ID string
	// Name is shown in listings, e.g. "Rust/Cargo"
	Name string
	// Markers are child names whose presence marks a project. Ignored when
	// Match is set.
	Markers []string
	// Artifacts are paths relative to the project that hold build output.
	// They may be nested, e.g. "app/build".
	Artifacts []string
	// Command is the native clean command run in the project directory, nil
	// when artifacts are simply deleted
	Command []string
	// Match replaces the marker check for project kinds that need more than
	// a single file to be recognised
	Match func(dir *model.Entry) bool
}

// Detect reports whether dir is a project of this kind
func (d Detector) Detect(dir *model.Entry) bool {
	if !dir.IsDir || dir.HasError() {
		return false
	}
	if d.Match != nil {
		return d.Match(dir)
	}
	for _, marker := range d.Markers {
		if child(dir, marker) != nil {
			return true
		}
	}
	return false
}

// FindArtifacts returns the artifact entries present below dir
func (d Detector) FindArtifacts(dir *model.Entry) []*model.Entry {
	var found []*model.Entry
	for _, rel := range d.Artifacts {
		if e := lookup(dir, rel); e != nil {
			found = append(found, e)
		}
	}
	return found
}

// CommandOnly reports whether the project kind is cleaned only by its
// native command, without artifact directories to measure
func (d Detector) CommandOnly() bool {
	return len(d.Artifacts) == 0 && len(d.Command) > 0
}

// child returns the direct child of dir called name
func child(dir *model.Entry, name string) *model.Entry {
	for _, c := range dir.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// lookup follows a slash separated relative path below dir
func lookup(dir *model.Entry, rel string) *model.Entry {
	node := dir
	for _, part := range strings.Split(rel, "/") {
		if !node.IsDir {
			return nil
		}
		if node = child(node, part); node == nil {
			return nil
		}
	}
	return node
}
