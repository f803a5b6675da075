package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Keys are lower case with dotless ı folded to i, so "MAYIS", "Mayıs" and
// "NISAN" all land on an entry.
var turkishMonths = map[string]time.Month{
	"ocak": time.January, "şubat": time.February, "subat": time.February,
	"mart": time.March, "nisan": time.April, "mayis": time.May,
	"haziran": time.June, "temmuz": time.July, "ağustos": time.August, "agustos": time.August,
	"eylül": time.September, "eylul": time.September, "ekim": time.October,
	"kasim": time.November, "aralik": time.December,
}

var (
	numericDateRe = regexp.MustCompile(`(\d{1,2})[./](\d{1,2})[./](\d{4})`)
	monthDateRe   = regexp.MustCompile(`(\d{1,2})\s+(ocak|şubat|subat|mart|nisan|mayis|haziran|temmuz|ağustos|agustos|eylül|eylul|ekim|kasim|aralik)(?:\s+(\d{4}))?`)
)

// DateRange reads a campaign validity window from text and returns ISO dates.
// Two or more dates give (first, second); a single date is the end date only.
// Positions are fixed before validation: an impossible date becomes nil in its
// own slot and never shifts its neighbour.
// Numeric "DD.MM.YYYY" dates win over month-name dates such as "1 Şubat 2026".
// A month-name date without a year takes the year of the next date that has one.
func DateRange(text string) (start, end *string) {
	if text == "" {
		return nil, nil
	}

	dates := numericDates(text)
	if !anyValid(dates) {
		dates = monthNameDates(foldMonthCase(text))
	}

	switch {
	case len(dates) >= 2:
		return dates[0], dates[1]
	case len(dates) == 1:
		return nil, dates[0]
	default:
		return nil, nil
	}
}

// foldMonthCase lowers text with Turkish rules and folds ı to i.
// Turkish lowering maps ASCII "I" to "ı", which would miss "NISAN".
func foldMonthCase(text string) string {
	return strings.ReplaceAll(strings.ToLowerSpecial(unicode.TurkishCase, text), "ı", "i")
}

func anyValid(dates []*string) bool {
	for _, d := range dates {
		if d != nil {
			return true
		}
	}
	return false
}

// numericDates returns one slot per matched token, nil where the date is impossible
func numericDates(text string) []*string {
	var out []*string
	for _, m := range numericDateRe.FindAllStringSubmatch(text, -1) {
		out = append(out, isoDate(m[3], m[2], m[1]))
	}
	return out
}

func monthNameDates(lower string) []*string {
	type token struct {
		day   string
		month time.Month
		year  string
	}

	matches := monthDateRe.FindAllStringSubmatch(lower, -1)
	tokens := make([]token, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, token{day: m[1], month: turkishMonths[m[2]], year: m[3]})
	}

	// "1 Şubat - 31 Mart 2026": borrow the year from the right
	for i := len(tokens) - 2; i >= 0; i-- {
		if tokens[i].year == "" {
			tokens[i].year = tokens[i+1].year
		}
	}

	out := make([]*string, 0, len(tokens))
	for _, t := range tokens {
		if t.year == "" {
			out = append(out, nil)
			continue
		}
		out = append(out, isoDate(t.year, strconv.Itoa(int(t.month)), t.day))
	}
	return out
}

// isoDate formats year/month/day as YYYY-MM-DD, or nil for impossible dates
func isoDate(year, month, day string) *string {
	y, errY := strconv.Atoi(year)
	m, errM := strconv.Atoi(month)
	d, errD := strconv.Atoi(day)
	if errY != nil || errM != nil || errD != nil {
		return nil
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return nil
	}
	iso := fmt.Sprintf("%04d-%02d-%02d", y, m, d)
	return &iso
}
