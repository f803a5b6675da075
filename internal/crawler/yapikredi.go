package crawler

// yapikrediSite reads worldcard.com.tr: Bootstrap col-lg-4 cards rendered
// from templates with a picture, a .last-day date and a title paragraph.
func yapikrediSite() Site {
	return Site{
		Strategies: []Strategy{
			SelectorStrategy("grid items", Selectors{
				Items: ".col-lg-4",
				Title: []ElementHandler{ImageAttr("alt"), ImageAttr("title"), FirstText("p")},
				Link:  "a[href]",
				Date:  FirstText(".last-day p"),
			}),
			SelectorStrategy("kampanyalar links", Selectors{
				Items: `a[href*="/kampanyalar/"]`,
				Keep:  LongerThan(10),
			}),
		},
	}
}
