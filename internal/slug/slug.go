// Package slug derives filesystem-safe filename stems from card titles.
package slug

import "strings"

// maxLen caps slug length so archive date prefixes and collision suffixes
// still fit in portable filename limits.
const maxLen = 80

// Make normalizes title into a slug: lowercase, ASCII letters and digits
// kept, every other run of characters collapsed to a single hyphen.
// An empty result falls back to "card" so a slug is never empty.
func Make(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	s := strings.Trim(b.String(), "-")
	if len(s) > maxLen {
		s = strings.TrimRight(s[:maxLen], "-")
	}
	if s == "" {
		return "card"
	}
	return s
}
