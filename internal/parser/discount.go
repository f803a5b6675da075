package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DiscountType is how a campaign's reward is expressed
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// DiscountResult is the typed reading of a discount phrase.
// Rate is a fraction for percentages and a currency amount for fixed discounts.
type DiscountResult struct {
	Type        DiscountType
	Rate        float64
	MaxDiscount *float64
	// Installments holds "N taksit" when the text only offers installments
	Installments string
}

var (
	percentRe     = regexp.MustCompile(`%(\d+(?:[.,]\d+)?)`)
	capRe         = regexp.MustCompile(`(?i)(?:maks(?:imum)?|en fazla|max|maksimum)\s*[:.]?\s*` + numberPattern + `\s*TL`)
	currencyRe    = regexp.MustCompile(`(?i)` + numberPattern + `\s*TL`)
	installmentRe = regexp.MustCompile(`(?i)(\d+)\s*(?:aya?\s*(?:kadar|varan)\s*)?taksit`)

	percentTextRe  = regexp.MustCompile(`(?i)%\d+[\s,]*(?:indirim|kazanç|bonus|hediye|chip-?para)?`)
	currencyTextRe = regexp.MustCompile(`(?i)[\d.]+\s*TL'?(?:ye|ye\s+varan)?\s*(?:indirim|kazanç|hediye|bonus|maxipuan)?`)
)

// Discount reads a discount from text. Percentages win over currency
// amounts, which win over installment offers.
func Discount(text string) DiscountResult {
	if text == "" {
		return DiscountResult{Type: DiscountPercentage}
	}

	if m := percentRe.FindStringSubmatch(text); m != nil {
		rate, _ := ParseNumber(m[1])
		res := DiscountResult{Type: DiscountPercentage, Rate: rate / 100}
		if c := capRe.FindStringSubmatch(text); c != nil {
			if v, ok := ParseNumber(c[1]); ok {
				res.MaxDiscount = &v
			}
		}
		return res
	}

	if m := currencyRe.FindStringSubmatch(text); m != nil {
		if amount, ok := ParseNumber(m[1]); ok {
			return DiscountResult{Type: DiscountFixed, Rate: amount, MaxDiscount: &amount}
		}
	}

	if n := installments(text); n > 0 {
		return DiscountResult{Type: DiscountPercentage, Installments: strconv.Itoa(n) + " taksit"}
	}

	return DiscountResult{Type: DiscountPercentage}
}

// DiscountText cuts the reward phrase out of a listing text, falling back to
// the first 100 characters when nothing recognisable is present.
func DiscountText(text string) string {
	if m := percentTextRe.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	if m := strings.TrimSpace(currencyTextRe.FindString(text)); m != "" {
		return m
	}
	if n := installments(text); n > 0 {
		return strconv.Itoa(n) + " taksit"
	}
	if utf8.RuneCountInString(text) <= 100 {
		return text
	}
	return string([]rune(text)[:100])
}

func installments(text string) int {
	m := installmentRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
