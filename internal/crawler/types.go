package crawler

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Crawler runs one source end to end and reports what happened
type Crawler interface {
	// Crawl renders, extracts, normalizes and reconciles the source. Errors
	// never escape; they are counted in the returned summary.
	Crawl(ctx context.Context) Summary

	// GetName returns the source's display name
	GetName() string

	// GetSourceID returns the configured source identifier
	GetSourceID() string
}

// Summary is the per-source outcome of one run
type Summary struct {
	Source       string        `json:"source"`
	Name         string        `json:"name"`
	Strategy     string        `json:"strategy,omitempty"`
	Scraped      int           `json:"scraped"`
	Saved        int           `json:"saved"`
	Inserted     int           `json:"inserted"`
	Updated      int           `json:"updated"`
	Deactivated  int64         `json:"deactivated"`
	Errors       int           `json:"errors"`
	ErrorDetails []string      `json:"error_details,omitempty"`
	Elapsed      time.Duration `json:"elapsed"`
}

// OK reports whether the source finished without counted errors
func (s Summary) OK() bool {
	return s.Errors == 0
}

// ElementHandler reads one value out of a candidate element
type ElementHandler func(*goquery.Selection) string

// Candidate holds the raw strings one strategy read for one element
type Candidate struct {
	Title       string
	Href        string
	Description string
	// MatchText is scanned for card keywords; defaults to Title
	MatchText string
	// DiscountSource is cut down to a discount hint; defaults to Title
	DiscountSource string
	DateHint       string
}

// CandidateFunc parses one candidate on demand. A panic or error only drops
// that candidate.
type CandidateFunc func() (Candidate, error)

// Strategy finds candidate elements in a rendered page
type Strategy struct {
	Name string
	Find func(doc *goquery.Document) []CandidateFunc
}

// Selectors describes a selector-driven strategy
type Selectors struct {
	// Items selects the candidate elements
	Items string
	// Title handlers are tried in order; the first non-empty value wins
	Title []ElementHandler
	// Link selects the anchor inside an item; empty means the item itself
	Link string
	// RequireLink drops candidates whose href is empty or "#"
	RequireLink bool
	Description ElementHandler
	MatchText   ElementHandler
	Discount    ElementHandler
	Date        ElementHandler
	// Keep filters items before they become candidates
	Keep func(*goquery.Selection) bool
}

// Site binds a configured source to its extraction strategies
type Site struct {
	// Structured strategies always run before Strategies
	Structured []Strategy
	Strategies []Strategy
}
