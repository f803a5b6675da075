package parser

import "regexp"

var minSpendRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)` + numberPattern + `\s*TL\s*(?:ve\s+)?(?:üzeri|üstü|üzerinde)`),
	regexp.MustCompile(`(?i)(?:minimum|min\.?|en az)\s*` + numberPattern + `\s*TL`),
	regexp.MustCompile(`(?i)` + numberPattern + `\s*TL\s*(?:ve üzeri|ve üstü)`),
}

// MinSpend returns the spending floor named in text, or 0
func MinSpend(text string) float64 {
	if text == "" {
		return 0
	}
	for _, re := range minSpendRes {
		if m := re.FindStringSubmatch(text); m != nil {
			if v, ok := ParseNumber(m[1]); ok {
				return v
			}
		}
	}
	return 0
}
