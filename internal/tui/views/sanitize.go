package views

import (
	"strings"
	"unicode/utf8"
)

// sanitizeForTerminal drops codepoints that either break tcell cell-width
// accounting or could be interpreted by the terminal. Message text comes
// from the other party, so control characters (including ESC) never reach
// the screen; newlines and tabs are kept.
func sanitizeForTerminal(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r != utf8.RuneError || size > 1 {
			if !isProblematicRune(r) {
				b.WriteRune(r)
			}
		}
		i += size
	}
	return b.String()
}

func isProblematicRune(r rune) bool {
	switch {
	case r == '\n' || r == '\t':
		return false
	// C0 controls, DEL and C1 controls.
	case r < 0x20, r == 0x7F, r >= 0x80 && r <= 0x9F:
		return true
	// Skin tone modifiers.
	case r >= 0x1F3FB && r <= 0x1F3FF:
		return true
	// Zero Width Joiner.
	case r == 0x200D:
		return true
	// Bidi overrides and isolates.
	case r >= 0x202A && r <= 0x202E, r >= 0x2066 && r <= 0x2069:
		return true
	// Variation Selectors.
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	// Variation Selectors Supplement.
	case r >= 0xE0100 && r <= 0xE01EF:
		return true
	default:
		return false
	}
}
