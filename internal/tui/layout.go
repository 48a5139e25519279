package tui

import (
	xansi "github.com/charmbracelet/x/ansi"
)

// truncLine cuts a line to at most width columns, ANSI-aware, appending an
// ellipsis when something was dropped.
func truncLine(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return xansi.Cut(s, 0, 1)
	}
	return xansi.Cut(s, 0, width-1) + "…"
}
