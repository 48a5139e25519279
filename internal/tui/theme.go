package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The TUI must stay readable on both light and dark terminal backgrounds, so
// every color is an AdaptiveColor pair and "faint" styling is reserved for
// dark terminals (faint on light backgrounds often becomes illegible).

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")

	colorPriorityA lipgloss.TerminalColor = ac("160", "203")
	colorPriorityB lipgloss.TerminalColor = ac("172", "214")
	colorPriorityC lipgloss.TerminalColor = ac("28", "115")

	colorHeading lipgloss.TerminalColor = ac("25", "81")
	colorDanger  lipgloss.TerminalColor = ac("160", "203")

	styleHeading  = lipgloss.NewStyle().Bold(true).Foreground(colorHeading)
	styleMuted    = lipgloss.NewStyle().Foreground(colorMuted)
	styleSelected = lipgloss.NewStyle().Background(colorSelectedBg).Foreground(colorSelectedFg)
	styleStatus   = lipgloss.NewStyle().Foreground(colorMuted)
	styleError    = lipgloss.NewStyle().Foreground(colorDanger)
)

func priorityStyle(p string) lipgloss.Style {
	switch p {
	case "A":
		return lipgloss.NewStyle().Bold(true).Foreground(colorPriorityA)
	case "B":
		return lipgloss.NewStyle().Foreground(colorPriorityB)
	default:
		return lipgloss.NewStyle().Foreground(colorPriorityC)
	}
}

// hasColor reports whether the terminal advertises any color support; plain
// output looks better than broken escapes over dumb pipes.
func hasColor() bool {
	return termenv.DefaultOutput().Profile != termenv.Ascii
}
