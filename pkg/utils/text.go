// Package utils provides shared utilities for text, math, and logging.
package utils

// TruncateRunes returns the first maxRunes runes of s. If maxRunes is 0 or
// negative, s is returned unchanged.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}
