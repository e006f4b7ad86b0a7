// Package ui implements the interactive terminal browser on top of
// core.Controller using Bubble Tea: a tree panel, a squarified treemap of
// the focused directory, a header with disk and scan progress, and a help
// overlay.
package ui
