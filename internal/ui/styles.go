package ui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lumipallolabs/sweeper/internal/format"
)

// Colors - neon on dark
var (
	ColorPrimary    = lipgloss.Color("#C084FC") // soft violet
	ColorSuccess    = lipgloss.Color("#39FF14")
	ColorDanger     = lipgloss.Color("#FF5555")
	ColorWarning    = lipgloss.Color("#FBBF24")
	ColorMuted      = lipgloss.Color("#4A5568")
	ColorDim        = lipgloss.Color("#9CA3AF")
	ColorBorder     = lipgloss.Color("#4A5568")
	ColorBackground = lipgloss.Color("#1F1F23")
	ColorCyan       = lipgloss.Color("#00FFFF")
	ColorDir        = lipgloss.Color("#00FFFF")
	ColorFile       = lipgloss.Color("#A0A0A0")
	ColorText       = lipgloss.Color("#E4E4E7")
	ColorFreed      = lipgloss.Color("#34D399")
)

var (
	StatsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorDim)

	// Tree
	TreePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	TreeItemSelected = lipgloss.NewStyle().
				Background(ColorPrimary).
				Foreground(lipgloss.Color("#FFFFFF")).
				Bold(true)

	TreeItemSelectedUnfocused = lipgloss.NewStyle().
					Background(lipgloss.Color("#4A5568")).
					Foreground(lipgloss.Color("#FFFFFF"))

	TreeErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	TreemapPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorder).
				Padding(0, 1)

	// Help bar - dim with bright key highlights
	HelpStyle = lipgloss.NewStyle().
			Padding(0, 1)

	HelpKey = lipgloss.NewStyle().
		Foreground(ColorCyan).
		Background(lipgloss.Color("#1E3A4C"))

	HelpDesc = lipgloss.NewStyle().
			Foreground(ColorDim)

	HelpSep = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3D4555"))

	KeyHint = lipgloss.NewStyle().
		Foreground(ColorCyan).
		Background(lipgloss.Color("#1E3A4C")).
		Padding(0, 1)

	ConfirmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#7F1D1D")).
			Padding(0, 1).
			Bold(true)

	StaleBadge = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(ColorWarning).
			Padding(0, 1)
)

// FormatSize formats bytes for display
func FormatSize(bytes int64) string {
	return format.Size(bytes)
}

// FormatTime formats a time for display, using shorter format for current year
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Year() == time.Now().Year() {
		return t.Format("Jan 2 15:04")
	}
	return t.Format("Jan 2, 2006 15:04")
}
