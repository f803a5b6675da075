package crawler

import (
	"fmt"
	"iter"

	"github.com/PuerkitoBio/goquery"
	"github.com/kartfirsat/campaignworker/config"
	"github.com/kartfirsat/campaignworker/helpers"
	"github.com/kartfirsat/campaignworker/internal"
	"github.com/kartfirsat/campaignworker/internal/normalizer"
	"github.com/kartfirsat/campaignworker/internal/parser"
	"github.com/kartfirsat/campaignworker/pkg/errors"
)

// MinTitleLen is the shortest title a candidate may carry
const MinTitleLen = 5

// Extractor runs a site's strategies over one rendered page
type Extractor struct {
	source config.Source
	site   Site
	cards  CardMatcher
	// report receives every per-candidate failure
	report func(error)
}

// NewExtractor creates an extractor for one source run
func NewExtractor(source config.Source, site Site, cards CardMatcher, report func(error)) *Extractor {
	if report == nil {
		report = func(error) {}
	}
	return &Extractor{source: source, site: site, cards: cards, report: report}
}

func (e *Extractor) strategies() []Strategy {
	all := make([]Strategy, 0, len(e.site.Structured)+len(e.site.Strategies))
	all = append(all, e.site.Structured...)
	return append(all, e.site.Strategies...)
}

// Extract picks the first strategy that finds candidates and returns its
// name with a single-use sequence of raw campaigns. It fails only when every
// strategy comes back empty.
func (e *Extractor) Extract(doc *goquery.Document) (string, iter.Seq[internal.RawCampaign], error) {
	strategies := e.strategies()
	steps := make([]func(*goquery.Document) []CandidateFunc, len(strategies))
	for i, s := range strategies {
		steps[i] = s.Find
	}

	idx, candidates := FirstNonEmpty(doc, steps...)
	if idx < 0 {
		return "", nil, errors.NewExtraction(e.source.ID,
			fmt.Sprintf("no strategy found candidates (%d tried)", len(strategies)), nil)
	}

	return strategies[idx].Name, e.sequence(candidates), nil
}

// sequence lazily converts candidates. Iterating it a second time yields nothing.
func (e *Extractor) sequence(candidates []CandidateFunc) iter.Seq[internal.RawCampaign] {
	consumed := false
	return func(yield func(internal.RawCampaign) bool) {
		if consumed {
			return
		}
		consumed = true

		seen := make(map[string]struct{}, len(candidates))
		for i, next := range candidates {
			raw, ok, err := e.convert(next)
			if err != nil {
				e.report(errors.NewExtraction(e.source.ID, fmt.Sprintf("candidate %d skipped", i), err))
				continue
			}
			if !ok {
				continue
			}

			key := raw.SourceURL
			if !raw.ownLink {
				key = "title:" + raw.Title
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			if !yield(raw.RawCampaign) {
				return
			}
		}
	}
}

type converted struct {
	internal.RawCampaign
	// ownLink is false when SourceURL fell back to the listing page
	ownLink bool
}

// convert turns one candidate into a raw campaign. Short titles are dropped
// without an error.
func (e *Extractor) convert(next CandidateFunc) (out converted, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while parsing candidate: %v", r)
			ok = false
		}
	}()

	c, err := next()
	if err != nil {
		return converted{}, false, err
	}

	title := helpers.CollapseSpace(c.Title)
	if helpers.RuneLen(title) < MinTitleLen {
		return converted{}, false, nil
	}

	sourceURL, own := ResolveURL(e.source.BaseURL, c.Href)
	if !own {
		sourceURL = e.source.URL
	}

	description := c.Description
	if description == "" {
		description = title
	}
	matchText := c.MatchText
	if matchText == "" {
		matchText = title
	}
	discountSource := c.DiscountSource
	if discountSource == "" {
		discountSource = title
	}

	return converted{
		RawCampaign: internal.RawCampaign{
			CardID:       e.cards.Match(matchText),
			Title:        helpers.Truncate(title, normalizer.MaxTitleLen),
			Description:  helpers.Truncate(description, normalizer.MaxDescriptionLen),
			MerchantHint: parser.Merchant(title),
			DiscountHint: parser.DiscountText(discountSource),
			SourceURL:    sourceURL,
			DateHint:     c.DateHint,
		},
		ownLink: own,
	}, true, nil
}
