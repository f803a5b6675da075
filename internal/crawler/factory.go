package crawler

import (
	"context"
	"sort"

	"github.com/kartfirsat/campaignworker/config"
	"github.com/kartfirsat/campaignworker/internal"
	"github.com/kartfirsat/campaignworker/internal/reconcile"
	"github.com/kartfirsat/campaignworker/logger"
	"github.com/kartfirsat/campaignworker/services/publisher"
	"github.com/kartfirsat/campaignworker/services/store"
)

// sites maps source ids to their strategy tables
var sites = map[string]func() Site{
	"akbank":     akbankSite,
	"garanti":    garantiSite,
	"yapikredi":  yapikrediSite,
	"isbank":     isbankSite,
	"finansbank": finansbankSite,
}

// genericSite serves sources added through a sources file without a
// dedicated strategy table.
func genericSite() Site {
	return Site{
		Structured: []Strategy{
			JSONLDStrategy("json-ld offer catalog"),
		},
		Strategies: []Strategy{
			SelectorStrategy("campaign containers", Selectors{
				Items: `.campaign-item, .kampanya-item, [class*="campaign"], [class*="kampanya"]`,
				Link:  "a[href]",
			}),
			SelectorStrategy("kampanya links", Selectors{
				Items:       `a[href*="kampanya"]`,
				RequireLink: true,
				Keep:        LongerThan(10),
			}),
		},
	}
}

// SiteFor returns the strategy table for a source id
func SiteFor(id string) (Site, bool) {
	if build, ok := sites[id]; ok {
		return build(), true
	}
	return genericSite(), false
}

// KnownSites lists the source ids with a dedicated strategy table
func KnownSites() []string {
	ids := make([]string, 0, len(sites))
	for id := range sites {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CreateCrawlers creates one crawler per configured source. Each crawler
// gets its own renderer so sources never share a browser session.
func CreateCrawlers(cfg *config.Config, sources config.Sources, deps internal.Dependencies) []Crawler {
	log := logger.ForWorker()
	crawlers := make([]Crawler, 0, len(sources))

	for _, src := range sources {
		site, known := SiteFor(src.ID)
		if !known {
			log.Warn().Str("source", src.ID).Msg("No strategy table for source, using generic strategies")
		}

		renderer := newRenderer(cfg, src, deps)
		engine := reconcile.New(deps.Store, reconcile.WithSavedHook(savedHook(src.ID, deps.Events)))

		crawlers = append(crawlers, NewSourceCrawler(src, site, deps.Store, renderer, engine,
			WithTimeouts(cfg.NavigationTimeout, cfg.SelectorTimeout),
			WithUserAgent(cfg.UserAgent),
		))
		log.Debug().
			Str("source", src.ID).
			Str("renderer", renderer.Name()).
			Str("url", src.URL).
			Msg("Created crawler")
	}

	log.Info().Int("crawler_count", len(crawlers)).Msg("Created crawlers")
	return crawlers
}

func newRenderer(cfg *config.Config, src config.Source, deps internal.Dependencies) Renderer {
	var r Renderer
	switch {
	case src.NeedsBrowser && cfg.ChromeAddr != "":
		r = NewBrowserlessRenderer(cfg.ChromeAddr)
	case src.NeedsBrowser:
		logger.ForSource(src.ID).Warn().Msg("CHROME_ADDR is not set, fetching without a browser; lazy-loaded campaigns will be missing")
		r = NewHTTPRenderer()
	default:
		r = NewHTTPRenderer()
	}

	if deps.Cache != nil {
		r = NewCachedRenderer(r, deps.Cache, cfg.SnapshotTTL, cfg.RenderCooldown)
	}
	return r
}

// savedHook publishes every saved campaign as an event. Publishing problems
// are logged and never count against the source.
func savedHook(sourceID string, events *publisher.Events) reconcile.SavedFunc {
	if events == nil {
		return nil
	}
	return func(ctx context.Context, c store.Campaign, outcome store.UpsertOutcome) {
		if err := events.CampaignSaved(ctx, sourceID, c, outcome); err != nil {
			logger.ForPublisher().Warn().Err(err).Str("source", sourceID).Str("title", c.Title).Msg("Failed to publish campaign event")
		}
	}
}
