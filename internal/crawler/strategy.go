package crawler

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kartfirsat/campaignworker/helpers"
	"github.com/tidwall/gjson"
)

// FirstNonEmpty runs steps in order and returns the index and output of the
// first one that produces at least one item. Later steps are never called.
// It returns -1 and nil when every step comes back empty.
func FirstNonEmpty[In, Out any](in In, steps ...func(In) []Out) (int, []Out) {
	for i, step := range steps {
		if step == nil {
			continue
		}
		if out := step(in); len(out) > 0 {
			return i, out
		}
	}
	return -1, nil
}

// applyHandlers returns the first non-empty value produced by handlers
func applyHandlers(s *goquery.Selection, handlers []ElementHandler) string {
	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		if v := strings.TrimSpace(handler(s)); v != "" {
			return v
		}
	}
	return ""
}

// ImageAttr reads attr from the first image inside the element
func ImageAttr(attr string) ElementHandler {
	return func(s *goquery.Selection) string {
		v, _ := s.Find("img").First().Attr(attr)
		return helpers.CollapseSpace(v)
	}
}

// FirstText reads the text of the first element matching selector
func FirstText(selector string) ElementHandler {
	return func(s *goquery.Selection) string {
		return helpers.CollapseSpace(s.Find(selector).First().Text())
	}
}

// OwnText reads the element's whole text
func OwnText(s *goquery.Selection) string {
	return helpers.CollapseSpace(s.Text())
}

// anchor returns the element itself when it is a link, else its first link
func anchor(s *goquery.Selection) *goquery.Selection {
	if goquery.NodeName(s) == "a" {
		return s
	}
	return s.Find("a[href]").First()
}

// AnchorText reads the text of the candidate's link
func AnchorText(s *goquery.Selection) string {
	return helpers.CollapseSpace(anchor(s).Text())
}

// LinkTitle reads the title attribute of the candidate's link
func LinkTitle(s *goquery.Selection) string {
	v, _ := anchor(s).Attr("title")
	return helpers.CollapseSpace(v)
}

// Attr reads an attribute of the element itself
func Attr(name string) ElementHandler {
	return func(s *goquery.Selection) string {
		v, _ := s.Attr(name)
		return helpers.CollapseSpace(v)
	}
}

// Prefix limits a handler's output to n runes
func Prefix(h ElementHandler, n int) ElementHandler {
	return func(s *goquery.Selection) string {
		return helpers.Truncate(h(s), n)
	}
}

// FirstOf combines handlers into one that returns the first non-empty value
func FirstOf(handlers ...ElementHandler) ElementHandler {
	return func(s *goquery.Selection) string {
		return applyHandlers(s, handlers)
	}
}

// LongerThan keeps anchors whose text is longer than n runes
func LongerThan(n int) func(*goquery.Selection) bool {
	return func(s *goquery.Selection) bool {
		return helpers.RuneLen(OwnText(s)) > n
	}
}

// Excluding keeps elements whose text is none of labels
func Excluding(labels ...string) func(*goquery.Selection) bool {
	return func(s *goquery.Selection) bool {
		text := OwnText(s)
		for _, l := range labels {
			if text == l {
				return false
			}
		}
		return true
	}
}

// All combines filters; every one has to keep the element
func All(filters ...func(*goquery.Selection) bool) func(*goquery.Selection) bool {
	return func(s *goquery.Selection) bool {
		for _, f := range filters {
			if f != nil && !f(s) {
				return false
			}
		}
		return true
	}
}

// defaultTitleHandlers is the uniform title order: image alt, image title,
// heading or paragraph text, anchor text, link title attribute.
var defaultTitleHandlers = []ElementHandler{
	ImageAttr("alt"),
	ImageAttr("title"),
	FirstText("h1, h2, h3, h4, p"),
	AnchorText,
	LinkTitle,
}

// SelectorStrategy builds a strategy from CSS selectors
func SelectorStrategy(name string, sel Selectors) Strategy {
	if len(sel.Title) == 0 {
		sel.Title = defaultTitleHandlers
	}

	return Strategy{
		Name: name,
		Find: func(doc *goquery.Document) []CandidateFunc {
			var out []CandidateFunc
			doc.Find(sel.Items).Each(func(_ int, s *goquery.Selection) {
				if sel.Keep != nil && !sel.Keep(s) {
					return
				}
				out = append(out, func() (Candidate, error) {
					return sel.candidate(s)
				})
			})
			return out
		},
	}
}

func (sel Selectors) candidate(s *goquery.Selection) (Candidate, error) {
	c := Candidate{Title: applyHandlers(s, sel.Title)}

	link := s
	if sel.Link != "" {
		link = s.Find(sel.Link).First()
	}
	c.Href = strings.TrimSpace(link.AttrOr("href", ""))
	if sel.RequireLink && (c.Href == "" || c.Href == "#") {
		// dropped like a short title
		return Candidate{}, nil
	}

	if sel.Description != nil {
		c.Description = sel.Description(s)
	}
	if sel.MatchText != nil {
		c.MatchText = sel.MatchText(s)
	}
	if sel.Discount != nil {
		c.DiscountSource = sel.Discount(s)
	}
	if sel.Date != nil {
		c.DateHint = sel.Date(s)
	}
	return c, nil
}

// offerCatalogType is the schema.org type whose items are campaigns
const offerCatalogType = "OfferCatalog"

// JSONLDStrategy reads campaigns from schema.org OfferCatalog blocks
func JSONLDStrategy(name string) Strategy {
	return Strategy{
		Name: name,
		Find: func(doc *goquery.Document) []CandidateFunc {
			var out []CandidateFunc
			doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
				raw := strings.TrimSpace(s.Text())
				if !gjson.Valid(raw) {
					return
				}
				for _, catalog := range offerCatalogs(gjson.Parse(raw)) {
					catalog.Get("itemListElement").ForEach(func(_, item gjson.Result) bool {
						out = append(out, func() (Candidate, error) {
							return jsonLDCandidate(item)
						})
						return true
					})
				}
			})
			return out
		},
	}
}

// offerCatalogs returns the OfferCatalog objects in a JSON-LD document,
// which may be a single object or an array of them.
func offerCatalogs(doc gjson.Result) []gjson.Result {
	var out []gjson.Result
	if doc.IsArray() {
		doc.ForEach(func(_, v gjson.Result) bool {
			out = append(out, offerCatalogs(v)...)
			return true
		})
		return out
	}
	if doc.IsObject() && ldType(doc) == offerCatalogType {
		out = append(out, doc)
	}
	return out
}

// ldType reads "@type". gjson treats a leading '@' in a path as a modifier,
// so the key is found by iteration.
func ldType(obj gjson.Result) string {
	var t string
	obj.ForEach(func(key, value gjson.Result) bool {
		if key.String() == "@type" {
			t = value.String()
			return false
		}
		return true
	})
	return t
}

func jsonLDCandidate(item gjson.Result) (Candidate, error) {
	if !item.IsObject() {
		return Candidate{}, fmt.Errorf("itemListElement entry is %s, not an object", item.Type)
	}
	title := helpers.CollapseSpace(item.Get("name").String())
	if title == "" {
		title = helpers.CollapseSpace(item.Get("description").String())
	}
	return Candidate{
		Title: title,
		Href:  strings.TrimSpace(item.Get("url").String()),
	}, nil
}
