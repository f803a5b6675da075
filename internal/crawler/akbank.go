package crawler

// akbankSite reads axess.com.tr, a jQuery page whose campaigns are image
// cards in Owl carousels linking to /axess/kampanyadetay/8/{id}/{slug}.
func akbankSite() Site {
	return Site{
		Strategies: []Strategy{
			SelectorStrategy("kampanyadetay links", Selectors{
				Items:       `a[href*="kampanyadetay"]`,
				RequireLink: true,
			}),
			SelectorStrategy("kampanya links", Selectors{
				Items:       `a[href*="kampanya"]`,
				RequireLink: true,
			}),
			SelectorStrategy("owl-item links", Selectors{
				Items:       ".owl-item a[href]",
				RequireLink: true,
			}),
		},
	}
}
