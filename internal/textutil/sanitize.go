package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SanitizeProjectName maps name onto the project-name alphabet [A-Za-z0-9_]:
// every rune outside it becomes one underscore (café -> caf_). Input is
// NFC-composed first so a decomposed é still counts as a single rune. The
// result is never trimmed, so the function is idempotent.
func SanitizeProjectName(name string) string {
	composed := norm.NFC.String(name)
	var b strings.Builder
	b.Grow(len(composed))
	for _, r := range composed {
		if IsProjectNameRune(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}

// IsProjectNameRune reports whether r may appear in a sanitized project name.
func IsProjectNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return true
	default:
		return false
	}
}

// IsProjectName reports whether name is non-empty and already sanitized.
func IsProjectName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !IsProjectNameRune(r) {
			return false
		}
	}
	return true
}
