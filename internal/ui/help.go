package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// newHelpModel returns a help.Model styled to the palette
func newHelpModel() help.Model {
	h := help.New()
	h.ShortSeparator = "  "
	h.FullSeparator = "    "
	h.Styles = help.Styles{
		Ellipsis:       HelpSep,
		ShortKey:       HelpKey,
		ShortDesc:      HelpDesc,
		ShortSeparator: HelpSep,
		FullKey:        lipgloss.NewStyle().Foreground(ColorCyan),
		FullDesc:       lipgloss.NewStyle().Foreground(ColorText),
		FullSeparator:  HelpSep,
	}
	return h
}

// HelpOverlay displays keyboard shortcuts in a centered overlay
type HelpOverlay struct {
	visible bool
	width   int
	height  int
	version string
	model   help.Model
}

// NewHelpOverlay creates a new help overlay component
func NewHelpOverlay(version string) HelpOverlay {
	m := newHelpModel()
	m.ShowAll = true
	return HelpOverlay{
		version: version,
		model:   m,
	}
}

// Toggle toggles the visibility of the help overlay
func (h *HelpOverlay) Toggle() {
	h.visible = !h.visible
}

// SetVisible sets the visibility of the help overlay
func (h *HelpOverlay) SetVisible(visible bool) {
	h.visible = visible
}

// IsVisible returns whether the help overlay is visible
func (h HelpOverlay) IsVisible() bool {
	return h.visible
}

// SetSize sets the dimensions of the help overlay
func (h *HelpOverlay) SetSize(w, ht int) {
	h.width = w
	h.height = ht
}

// View renders the help overlay
func (h HelpOverlay) View(keys KeyMap) string {
	if !h.visible {
		return ""
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 3)
	nameStyle := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	var content strings.Builder
	content.WriteString(nameStyle.Render("Sweeper"))
	if h.version != "" {
		content.WriteString(dimStyle.Render(" " + h.version))
	}
	content.WriteString("\n\n")
	content.WriteString(h.model.View(keys))
	content.WriteString("\n\n")
	content.WriteString(dimStyle.Render("Sizes are apparent bytes. Delete removes from disk, there is no trash."))
	content.WriteString("\n")
	content.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center, boxStyle.Render(content.String()))
}

// HelpBar renders the bottom key hint line
func HelpBar(keys KeyMap, width int) string {
	m := newHelpModel()
	m.Width = width - 2
	return HelpStyle.Width(width).MaxHeight(1).Render(m.View(keys))
}
