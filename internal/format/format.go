// Package format renders scanned trees for the command line.
package format

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lumipallolabs/sweeper/internal/model"
)

// Options controls how much of the tree is rendered
type Options struct {
	MaxDepth   int // -1 = unlimited
	TopN       int // -1 = unlimited
	Colors     bool
	ShowCounts bool
}

// DefaultOptions shows three levels and the 20 largest children per directory
func DefaultOptions() Options {
	return Options{MaxDepth: 3, TopN: 20, Colors: true}
}

// Unlimited renders everything without colour
func Unlimited() Options {
	return Options{MaxDepth: -1, TopN: -1}
}

var (
	dirStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
	sizeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C084FC"))
)

func (o Options) paint(style lipgloss.Style, s string) string {
	if !o.Colors {
		return s
	}
	return style.Render(s)
}

func (o Options) tooDeep(depth int) bool {
	return o.MaxDepth >= 0 && depth > o.MaxDepth
}

// shown returns the children to render and how many were cut
func (o Options) shown(children []*model.Entry) ([]*model.Entry, int) {
	if o.TopN >= 0 && len(children) > o.TopN {
		return children[:o.TopN], len(children) - o.TopN
	}
	return children, 0
}

// Tree renders entry as a box-drawing tree
func Tree(entry *model.Entry, opts Options) string {
	var b strings.Builder
	writeTree(&b, entry, "", true, 0, opts)
	return b.String()
}

func writeTree(b *strings.Builder, entry *model.Entry, prefix string, last bool, depth int, opts Options) {
	if opts.tooDeep(depth) {
		return
	}

	connector := "├── "
	switch {
	case depth == 0:
		connector = ""
	case last:
		connector = "└── "
	}

	name := entry.Name
	if entry.IsDir {
		name = opts.paint(dirStyle, name+"/")
	}

	var counts string
	if opts.ShowCounts && entry.IsDir {
		counts = fmt.Sprintf(" (%d files)", entry.FileCount)
	}

	var marker string
	if entry.HasError() {
		marker = opts.paint(errorStyle, " [!]")
	}

	size := opts.paint(sizeStyle, fmt.Sprintf("%10s", Size(entry.Size)))
	fmt.Fprintf(b, "%s%s%s  %s%s%s\n", prefix, connector, size, name, counts, marker)

	if !entry.IsDir || len(entry.Children) == 0 {
		return
	}

	childPrefix := prefix
	switch {
	case depth == 0:
		childPrefix = ""
	case last:
		childPrefix += "    "
	default:
		childPrefix += "│   "
	}

	children, more := opts.shown(entry.Children)
	for i, child := range children {
		writeTree(b, child, childPrefix, i == len(children)-1 && more == 0, depth+1, opts)
	}
	if more > 0 && !opts.tooDeep(depth+1) {
		fmt.Fprintf(b, "%s└── ... and %d more entries\n", childPrefix, more)
	}
}

// Table renders entry as an indented SIZE/PATH table
func Table(entry *model.Entry, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%12s  %s\n", "SIZE", "PATH")
	fmt.Fprintf(&b, "%s  %s\n", strings.Repeat("-", 12), strings.Repeat("-", 50))
	writeTable(&b, entry, 0, opts)
	return b.String()
}

func writeTable(b *strings.Builder, entry *model.Entry, depth int, opts Options) {
	if opts.tooDeep(depth) {
		return
	}

	fmt.Fprintf(b, "%12s  %s%s\n", Size(entry.Size), strings.Repeat("  ", depth), entry.Name)

	children, more := opts.shown(entry.Children)
	for _, child := range children {
		writeTable(b, child, depth+1, opts)
	}
	if more > 0 && !opts.tooDeep(depth+1) {
		fmt.Fprintf(b, "%12s  %s... %d more\n", "", strings.Repeat("  ", depth+1), more)
	}
}

// JSON serializes the full tree
func JSON(entry *model.Entry, pretty bool) (string, error) {
	return marshal(entry, pretty)
}

// Summary is the reduced per-node view written by JSONSummary
type Summary struct {
	Path      string     `json:"path"`
	Size      int64      `json:"size"`
	SizeHuman string     `json:"size_human"`
	FileCount int64      `json:"file_count"`
	DirCount  int64      `json:"dir_count"`
	Children  []*Summary `json:"children"`
}

// Summarize converts entry and its descendants
func Summarize(entry *model.Entry) *Summary {
	s := &Summary{
		Path:      entry.Path,
		Size:      entry.Size,
		SizeHuman: Size(entry.Size),
		FileCount: entry.FileCount,
		DirCount:  entry.DirCount,
		Children:  make([]*Summary, 0, len(entry.Children)),
	}
	for _, child := range entry.Children {
		s.Children = append(s.Children, Summarize(child))
	}
	return s
}

// JSONSummary serializes the reduced view
func JSONSummary(entry *model.Entry, pretty bool) (string, error) {
	return marshal(Summarize(entry), pretty)
}

func marshal(v any, pretty bool) (string, error) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}
	return string(data), nil
}

// Totals is the footer printed under text output
func Totals(entry *model.Entry) string {
	return fmt.Sprintf("Total: %s in %d files, %d directories", Size(entry.Size), entry.FileCount, entry.DirCount)
}
