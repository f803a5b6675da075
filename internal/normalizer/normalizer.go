// Package normalizer converts extracted raw fields into storable campaigns.
package normalizer

import (
	"strings"
	"time"

	"github.com/kartfirsat/campaignworker/helpers"
	"github.com/kartfirsat/campaignworker/internal"
	"github.com/kartfirsat/campaignworker/internal/parser"
	"github.com/kartfirsat/campaignworker/services/store"
)

// Length caps applied before storage
const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 500
	MaxConditionsLen  = 500
)

// Normalizer turns RawCampaigns into Campaigns. The zero value uses time.Now.
type Normalizer struct {
	Now func() time.Time
}

// New creates a normalizer with an injectable clock
func New(now func() time.Time) *Normalizer {
	return &Normalizer{Now: now}
}

var defaultNormalizer = &Normalizer{}

// Normalize converts raw with the wall clock
func Normalize(raw internal.RawCampaign) store.Campaign {
	return defaultNormalizer.Normalize(raw)
}

// Normalize converts raw into a campaign ready for upsert. It never fails:
// unparseable text falls back to the parsers' defaults.
func (n *Normalizer) Normalize(raw internal.RawCampaign) store.Campaign {
	discountSource := raw.DiscountHint
	if discountSource == "" {
		discountSource = raw.Title
	}
	discount := parser.Discount(discountSource)
	start, end := parser.DateRange(raw.DateHint)

	merchant := strings.TrimSpace(raw.MerchantHint)
	if merchant == "" {
		merchant = parser.UnknownMerchant
	}

	var conditions *string
	if c := helpers.Truncate(raw.Conditions, MaxConditionsLen); c != "" {
		conditions = &c
	}

	return store.Campaign{
		CardID:          raw.CardID,
		Title:           helpers.Truncate(raw.Title, MaxTitleLen),
		Description:     helpers.Truncate(raw.Description, MaxDescriptionLen),
		MerchantName:    merchant,
		MerchantPattern: parser.MerchantPattern(merchant),
		DiscountType:    string(discount.Type),
		DiscountRate:    discount.Rate,
		MaxDiscount:     discount.MaxDiscount,
		MinSpend:        parser.MinSpend(raw.Description + " " + raw.DiscountHint),
		StartDate:       start,
		EndDate:         end,
		Conditions:      conditions,
		SourceURL:       raw.SourceURL,
		ScrapedAt:       n.now().UTC(),
		IsActive:        true,
	}
}

func (n *Normalizer) now() time.Time {
	if n == nil || n.Now == nil {
		return time.Now()
	}
	return n.Now()
}
