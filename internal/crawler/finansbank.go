package crawler

// finansbankSite reads qnbcard.com.tr (cardfinans.com.tr redirects there),
// whose campaigns are .box-item cards in a Bootstrap grid.
func finansbankSite() Site {
	return Site{
		Strategies: []Strategy{
			SelectorStrategy("box items", Selectors{
				Items: ".box-item",
				Link:  "a[href]",
			}),
			SelectorStrategy("kampanyalar links", Selectors{
				Items: `a[href*="/kampanyalar/"]`,
				Title: []ElementHandler{AnchorText},
				Keep:  LongerThan(10),
			}),
		},
	}
}
