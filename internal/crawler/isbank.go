package crawler

// isbankCallsToAction are link labels on maximum.com.tr that are not campaigns
var isbankCallsToAction = []string{"Detaylı Bilgi", "Maximum Kart'a Başvur", "Kampanyalar"}

// isbankSite reads maximum.com.tr. The page is server rendered and may embed
// a schema.org OfferCatalog, which wins over any markup heuristics.
func isbankSite() Site {
	return Site{
		Structured: []Strategy{
			JSONLDStrategy("json-ld offer catalog"),
		},
		Strategies: []Strategy{
			SelectorStrategy("h3 links", Selectors{
				Items: `h3 a[href*="/kampanyalar/"]`,
				Title: []ElementHandler{AnchorText},
			}),
			SelectorStrategy("filtered kampanyalar links", Selectors{
				Items: `a[href*="/kampanyalar/"]`,
				Title: []ElementHandler{AnchorText},
				Keep:  All(LongerThan(10), Excluding(isbankCallsToAction...)),
			}),
		},
	}
}
