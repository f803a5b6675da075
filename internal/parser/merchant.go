package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// UnknownMerchant is stored when no merchant can be read from the title
const UnknownMerchant = "Bilinmeyen"

var (
	// "Migros'ta", "Trendyol’da", "Boynerde " ...
	locativeRe = regexp.MustCompile(`(?i)([\p{L}\p{N}_\s&.]+?)['’]?(?:da|de|ta|te|nda|nde)\s`)
	// first run of capitalized words, Turkish capitals included
	capitalRunRe = regexp.MustCompile(`([A-ZĞÜŞÖÇİ][a-zğüşöçı]+(?:\s+[A-ZĞÜŞÖÇİ][a-zğüşöçı]+)*)`)

	patternSuffixRe = regexp.MustCompile(`['’](?:da|de|ta|te|nda|nde)$`)
	domainSuffixRe  = regexp.MustCompile(`\.com(?:\.tr)?$`)
)

// Merchant guesses the merchant a campaign title is about
func Merchant(text string) string {
	if m := locativeRe.FindStringSubmatch(text); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			return name
		}
	}
	if m := capitalRunRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	for _, w := range strings.Fields(text) {
		if utf8.RuneCountInString(w) > 2 && !strings.HasPrefix(w, "%") {
			return w
		}
	}
	return UnknownMerchant
}

// MerchantPattern builds the lower-case key used to match merchants later on
func MerchantPattern(name string) string {
	if name == "" {
		return ""
	}
	p := strings.TrimSpace(strings.ToLowerSpecial(unicode.TurkishCase, name))
	p = patternSuffixRe.ReplaceAllString(p, "")
	p = domainSuffixRe.ReplaceAllString(p, "")
	return strings.Join(strings.Fields(p), " ")
}
