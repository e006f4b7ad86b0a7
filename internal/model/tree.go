package model

import (
	"sort"
	"strings"
)

// SortOrder selects how children are ordered
type SortOrder int

const (
	SortSize SortOrder = iota
	SortName
	SortModTime
)

// String returns the flag/config spelling of the order
func (o SortOrder) String() string {
	switch o {
	case SortName:
		return "name"
	case SortModTime:
		return "mtime"
	default:
		return "size"
	}
}

// Next cycles size -> name -> mtime -> size
func (o SortOrder) Next() SortOrder {
	switch o {
	case SortSize:
		return SortName
	case SortName:
		return SortModTime
	default:
		return SortSize
	}
}

// ParseSortOrder parses a sort name; anything unknown means size
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name":
		return SortName
	case "mtime":
		return SortModTime
	default:
		return SortSize
	}
}

// ValidSortOrder reports whether s names a known order
func ValidSortOrder(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "size", "name", "mtime":
		return true
	}
	return false
}

// SortBySize sorts nodes by total size descending, then by name ascending
func SortBySize(nodes []*Entry) {
	sort.SliceStable(nodes, func(i, j int) bool {
		si, sj := nodes[i].Size, nodes[j].Size
		if si != sj {
			return si > sj
		}
		return nodes[i].Name < nodes[j].Name
	})
}

// SortByName sorts nodes alphabetically by name
func SortByName(nodes []*Entry) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Name < nodes[j].Name
	})
}

// SortByModTime sorts nodes newest first
func SortByModTime(nodes []*Entry) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].ModTime.After(nodes[j].ModTime)
	})
}

// Sort orders nodes in place according to o
func (o SortOrder) Sort(nodes []*Entry) {
	switch o {
	case SortName:
		SortByName(nodes)
	case SortModTime:
		SortByModTime(nodes)
	default:
		SortBySize(nodes)
	}
}

// SortTree applies o to every Children slice in the tree
func (e *Entry) SortTree(o SortOrder) {
	o.Sort(e.Children)
	for _, child := range e.Children {
		if len(child.Children) > 0 {
			child.SortTree(o)
		}
	}
}

// SortBySize orders the whole tree largest first
func (e *Entry) SortBySize() { e.SortTree(SortSize) }

// SortByName orders the whole tree alphabetically
func (e *Entry) SortByName() { e.SortTree(SortName) }
