package util

import "strings"

// SanitizeText strips NUL and other control characters that Postgres text columns
// reject and that garble log lines. Backend error bodies pass through here before
// they are logged or stored.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\x00", "")

	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 {
			continue
		}
		r = append(r, ch)
	}
	return strings.TrimSpace(string(r))
}

// Snippet sanitizes s and cuts it to at most maxRunes runes, marking the cut with an ellipsis.
func Snippet(s string, maxRunes int) string {
	s = SanitizeText(s)
	if maxRunes <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return strings.TrimSpace(string(r[:maxRunes])) + "…"
}
