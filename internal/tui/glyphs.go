package tui

import (
	"os"
	"strings"
	"sync"
)

// Terminal apps can't change the user's actual font. Instead, we choose
// between Unicode and ASCII glyph sets for UI affordances (checkboxes, lane
// markers, arrows). This helps on terminals/fonts that don't render some
// glyphs cleanly.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

func applyGlyphPreference(configured string) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("STRIDE_TUI_GLYPHS")))
	if v == "" {
		v = strings.ToLower(strings.TrimSpace(configured))
	}
	switch v {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	default:
		// Unknown value: ignore.
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

func glyphCheckboxDone() string {
	if glyphs() == glyphSetASCII {
		return "[x]"
	}
	return "☑"
}

func glyphCheckboxOpen() string {
	if glyphs() == glyphSetASCII {
		return "[ ]"
	}
	return "☐"
}

func glyphCheckboxCancelled() string {
	if glyphs() == glyphSetASCII {
		return "[-]"
	}
	return "⊠"
}

func glyphBullet() string {
	if glyphs() == glyphSetASCII {
		return "*"
	}
	return "•"
}

func glyphCursor() string {
	if glyphs() == glyphSetASCII {
		return ">"
	}
	return "❯"
}

func glyphStar() string {
	if glyphs() == glyphSetASCII {
		return "!"
	}
	return "★"
}

func glyphProgressFilled() string {
	if glyphs() == glyphSetASCII {
		return "#"
	}
	return "█"
}

func glyphProgressEmpty() string {
	if glyphs() == glyphSetASCII {
		return "."
	}
	return "░"
}
