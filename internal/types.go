package internal

import (
	"github.com/kartfirsat/campaignworker/services/cache"
	"github.com/kartfirsat/campaignworker/services/publisher"
	"github.com/kartfirsat/campaignworker/services/store"
)

// RawCampaign holds the unnormalized fields extracted for one candidate element
type RawCampaign struct {
	CardID       int64
	Title        string
	Description  string
	MerchantHint string
	DiscountHint string
	Conditions   string
	SourceURL    string
	DateHint     string
}

// Dependencies holds the services every crawler of one run shares.
// Events carries the run id; a nil Events publishes nothing.
type Dependencies struct {
	Store  store.Store
	Cache  cache.CacheService
	Events *publisher.Events
}
