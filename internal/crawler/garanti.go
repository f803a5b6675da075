package crawler

// garantiTitle only trusts headings; bonus.com.tr cards carry decorative
// images whose alt text is the brand name.
var garantiTitle = []ElementHandler{
	FirstText(`h1, h2, h3, h4, .title, [class*="title"]`),
}

// garantiSite reads bonus.com.tr campaign containers. Card keywords and the
// discount hint come from the whole container text, since the brand and
// reward are often outside the heading.
func garantiSite() Site {
	return Site{
		Strategies: []Strategy{
			SelectorStrategy("campaign containers", Selectors{
				Items:       `.campaign-item, .kampanya-item, [class*="campaign"], [class*="kampanya"], article, .card`,
				Title:       garantiTitle,
				Link:        "a[href]",
				Description: FirstOf(FirstText("p, .description"), Prefix(OwnText, 200)),
				MatchText:   OwnText,
				Discount:    OwnText,
			}),
			SelectorStrategy("campaign list links", Selectors{
				Items:       `li a[href*="/kampanyalar/"]`,
				RequireLink: true,
				MatchText:   OwnText,
			}),
		},
	}
}
