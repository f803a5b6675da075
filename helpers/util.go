package helpers

import (
	"strings"
	"unicode/utf8"
)

// Truncate cuts s to at most max runes
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// CollapseSpace trims s and folds every whitespace run into a single space
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RuneLen returns the number of characters in s
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
