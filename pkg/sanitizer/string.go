package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims s and collapses every run of whitespace into a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeReason is for operator-entered cancellation and vacation reasons. Control
// characters are dropped so that reasons are safe to log on one line.
func NormalizeReason(reason string) string {
	reason = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, reason)
	return TrimAndNormalize(reason)
}

// NormalizeID trims surrounding whitespace. IDs are otherwise opaque.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}
