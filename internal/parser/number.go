// Package parser turns free-form Turkish campaign copy into typed values.
// Every function is total: on no match it returns the documented default.
package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// numberPattern matches "1.500", "1.500,75", "15,5" and "20".
// Dot-grouped thousands are tried first so "2.000 TL" is read whole.
const numberPattern = `(\d{1,3}(?:\.\d{3})+(?:,\d+)?|\d+(?:[.,]\d+)?)`

var thousandsRe = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+(?:,\d+)?$`)

// ParseNumber reads a numeric literal that may use '.' or ',' as the decimal
// separator. A dot followed by exactly three digits is a thousands separator.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if thousandsRe.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
