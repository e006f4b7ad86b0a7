package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lumipallolabs/sweeper/internal/core"
	"github.com/lumipallolabs/sweeper/internal/model"
)

const headerProgressBarWidth = 20 // Width of disk usage and scan progress bars

// Header displays root, disk and freed stats (2 lines)
type Header struct {
	rootPath     string
	disk         model.DiskSpace
	width        int
	version      string
	scan         core.ScanState
	spinner      string
	stale        bool
	freedSession int64
	freedTotal   int64
	status       string
}

// NewHeader creates a new header component
func NewHeader(rootPath, version string) Header {
	return Header{
		rootPath: rootPath,
		version:  version,
	}
}

// SetState copies what the header shows out of the controller snapshot
func (h *Header) SetState(state core.AppState) {
	h.rootPath = state.RootPath
	h.disk = state.Disk
	h.scan = state.Scan
	h.stale = state.Stale
	h.freedSession = state.Freed.Session
	h.freedTotal = state.Freed.Lifetime
}

// SetSpinner sets the current spinner frame shown while scanning
func (h *Header) SetSpinner(frame string) {
	h.spinner = frame
}

// SetStatus sets a transient message, e.g. the result of a delete
func (h *Header) SetStatus(status string) {
	h.status = status
}

// SetWidth sets the header width
func (h *Header) SetWidth(w int) {
	h.width = w
}

// View renders the header
// Line 1: Sweeper v                          Free: X / Y [bar]
// Line 2: Root: /path  [progress]            Recovered: X session | Y total
func (h Header) View() string {
	nameStyle := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	barFilledStyle := lipgloss.NewStyle().Foreground(ColorPrimary)
	barEmptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	appName := nameStyle.Render("Sweeper")
	if h.version != "" {
		appName += LabelStyle.Render(" " + h.version)
	}

	var freeStats string
	if h.disk.TotalBytes > 0 {
		freeLabel := LabelStyle.Render("Free: ")
		freeValue := StatsStyle.Render(fmt.Sprintf("%s / %s", FormatSize(h.disk.FreeBytes), FormatSize(h.disk.TotalBytes)))
		freeStats = freeLabel + freeValue
		fullWidth := lipgloss.Width(appName) + lipgloss.Width(freeStats) + headerProgressBarWidth + 6
		if h.width >= fullWidth {
			freeStats += "  " + renderBar(h.disk.UsedPercent()/100, headerProgressBarWidth, barFilledStyle, barEmptyStyle)
		}
	}
	line1 := spread(appName, freeStats, h.width)

	var freedStats string
	if h.freedSession > 0 || h.freedTotal > 0 {
		freedStats = LabelStyle.Render("Recovered: ") +
			lipgloss.NewStyle().Foreground(ColorFreed).Render(FormatSize(h.freedSession)+" session") +
			LabelStyle.Render(" | "+FormatSize(h.freedTotal)+" total")
	}

	left := LabelStyle.Render("Root: ") + lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true).Render(h.rootPath)
	switch {
	case h.scan.Phase == core.PhaseScanning:
		progress := " " + lipgloss.NewStyle().Foreground(ColorCyan).Render(h.spinner+" "+h.scan.Label)
		if h.scan.Total > 0 {
			progress += " " + renderBar(h.scan.Fraction(), 10, barFilledStyle, barEmptyStyle)
		}
		left += progress
	case h.status != "":
		left += "  " + LabelStyle.Render(h.status)
	case h.stale:
		left += "  " + StaleBadge.Render("changed on disk") + LabelStyle.Render(" ") + KeyHint.Render("r") + LabelStyle.Render(" rescan")
	}
	if room := h.width - lipgloss.Width(freedStats) - 2; room > 0 && lipgloss.Width(left) > room {
		left = lipgloss.NewStyle().MaxWidth(room).Render(left)
	}
	line2 := spread(left, freedStats, h.width)

	return lipgloss.JoinVertical(lipgloss.Left, line1, line2)
}

// renderBar draws a fraction as a run of filled and empty cells
func renderBar(fraction float64, width int, filled, empty lipgloss.Style) string {
	if fraction < 0 {
		fraction = 0
	}
	n := int(fraction * float64(width))
	if n > width {
		n = width
	}
	return filled.Render(strings.Repeat("▓", n)) + empty.Render(strings.Repeat("░", width-n))
}

// spread places left and right at the edges of a line of width w
func spread(left, right string, w int) string {
	gap := w - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + right
}
