package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/kartfirsat/campaignworker/config"
	"github.com/kartfirsat/campaignworker/internal"
	"github.com/kartfirsat/campaignworker/internal/normalizer"
	"github.com/kartfirsat/campaignworker/internal/reconcile"
	"github.com/kartfirsat/campaignworker/logger"
	"github.com/kartfirsat/campaignworker/pkg/errors"
	"github.com/kartfirsat/campaignworker/services/store"
)

// SourceCrawler runs one bank's listing through render, extraction,
// normalization and reconciliation.
type SourceCrawler struct {
	source     config.Source
	site       Site
	store      store.Store
	renderer   Renderer
	engine     *reconcile.Engine
	normalizer *normalizer.Normalizer

	navigationTimeout time.Duration
	selectorTimeout   time.Duration
	userAgent         string

	// wait pauses for the source's politeness delay
	wait func(ctx context.Context, d time.Duration) error
}

// Option configures a SourceCrawler
type Option func(*SourceCrawler)

// WithTimeouts sets the navigation and selector deadlines passed to the renderer
func WithTimeouts(navigation, selector time.Duration) Option {
	return func(c *SourceCrawler) {
		c.navigationTimeout = navigation
		c.selectorTimeout = selector
	}
}

// WithUserAgent overrides the browser user agent. Empty keeps the default.
func WithUserAgent(ua string) Option {
	return func(c *SourceCrawler) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithNormalizer overrides the normalizer, mostly to pin its clock
func WithNormalizer(n *normalizer.Normalizer) Option {
	return func(c *SourceCrawler) { c.normalizer = n }
}

// WithWait replaces the politeness delay
func WithWait(wait func(ctx context.Context, d time.Duration) error) Option {
	return func(c *SourceCrawler) { c.wait = wait }
}

// NewSourceCrawler creates a crawler for source
func NewSourceCrawler(source config.Source, site Site, s store.Store, r Renderer, engine *reconcile.Engine, opts ...Option) *SourceCrawler {
	c := &SourceCrawler{
		source:            source,
		site:              site,
		store:             s,
		renderer:          r,
		engine:            engine,
		normalizer:        normalizer.New(time.Now),
		navigationTimeout: 60 * time.Second,
		selectorTimeout:   20 * time.Second,
		userAgent:         config.DefaultUserAgent,
		wait:              sleep,
	}
	if c.engine == nil {
		c.engine = reconcile.New(s)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetName returns the source's display name
func (c *SourceCrawler) GetName() string {
	return c.source.Name
}

// GetSourceID returns the configured source identifier
func (c *SourceCrawler) GetSourceID() string {
	return c.source.ID
}

// Crawl runs the source once. A source without cards fails as a whole;
// everything after that only adds to the error count.
func (c *SourceCrawler) Crawl(ctx context.Context) Summary {
	start := time.Now()
	log := logger.ForSource(c.source.ID)
	errs := errors.NewErrorList(errors.DefaultDetailLimit)
	sum := Summary{Source: c.source.ID, Name: c.source.Name}

	finish := func() Summary {
		sum.Errors = errs.Count()
		sum.ErrorDetails = errs.Details()
		sum.Elapsed = time.Since(start)
		log.Info().
			Int("scraped", sum.Scraped).
			Int("saved", sum.Saved).
			Int("errors", sum.Errors).
			Dur("elapsed", sum.Elapsed).
			Msg("Source finished")
		return sum
	}

	log.Info().Str("url", c.source.URL).Msg("Starting source")

	cards, err := c.store.GetCardsForSource(ctx, c.source.ID)
	if err != nil {
		errs.Add(errors.NewFatal(c.source.ID, "failed to load cards", err))
		return finish()
	}
	cardMap := store.CardMap(cards)
	if len(cardMap) == 0 {
		errs.Add(errors.NewConfiguration(c.source.ID, "no cards found for source", nil))
		return finish()
	}

	campaigns := c.collect(ctx, cardMap, errs, &sum)
	log.Info().Int("scraped", sum.Scraped).Int("normalized", len(campaigns)).Str("strategy", sum.Strategy).Msg("Extraction finished")

	res := c.engine.Reconcile(ctx, c.source.ID, cardMap.IDs(), campaigns)
	for _, err := range res.Errors {
		errs.Add(err)
	}
	sum.Saved = res.Saved
	sum.Inserted = res.Inserted
	sum.Updated = res.Updated
	sum.Deactivated = res.Deactivated
	return finish()
}

// collect renders the listing and turns every extracted candidate into a
// normalized campaign.
func (c *SourceCrawler) collect(ctx context.Context, cards store.CardMap, errs *errors.ErrorList, sum *Summary) []store.Campaign {
	log := logger.ForSource(c.source.ID)

	page, err := c.renderer.Render(ctx, c.renderRequest())
	if err != nil {
		errs.Add(errors.NewNetwork(c.source.ID, "render failed", err))
		return nil
	}
	for _, note := range page.Degraded {
		errs.Add(errors.NewRender(c.source.ID, note, nil))
	}

	if !page.FromCache {
		if err := c.wait(ctx, c.source.RequestDelay); err != nil {
			errs.Add(errors.NewFatal(c.source.ID, "run cancelled", err))
			return nil
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		errs.Add(errors.NewExtraction(c.source.ID, "failed to parse HTML", err))
		return nil
	}

	extractor := NewExtractor(c.source, c.site, NewCardMatcher(cards, c.source.Cards), func(err error) {
		log.Warn().Err(err).Msg("Candidate skipped")
		errs.Add(err)
	})
	strategy, raws, err := extractor.Extract(doc)
	if err != nil {
		log.Warn().Err(err).Msg("No campaigns found")
		errs.Add(err)
		return nil
	}
	sum.Strategy = strategy

	var campaigns []store.Campaign
	for raw := range raws {
		sum.Scraped++
		campaign, err := c.normalize(raw)
		if err != nil {
			log.Warn().Err(err).Str("title", raw.Title).Msg("Normalization failed")
			errs.Add(errors.NewNormalization(c.source.ID, "dropped "+raw.Title, err))
			continue
		}
		campaigns = append(campaigns, campaign)
	}
	return campaigns
}

// normalize converts one raw campaign, turning a panic into an error
func (c *SourceCrawler) normalize(raw internal.RawCampaign) (campaign store.Campaign, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	campaign = c.normalizer.Normalize(raw)
	if campaign.Title == "" {
		return store.Campaign{}, fmt.Errorf("empty title")
	}
	return campaign, nil
}

func (c *SourceCrawler) renderRequest() RenderRequest {
	return RenderRequest{
		SourceID:          c.source.ID,
		URL:               c.source.URL,
		WaitSelector:      c.source.WaitSelector,
		NavigationTimeout: c.navigationTimeout,
		SelectorTimeout:   c.selectorTimeout,
		ScrollPasses:      c.source.ScrollPasses,
		LoadMoreText:      c.source.LoadMoreText,
		LoadMoreClicks:    c.source.LoadMoreClicks,
		UserAgent:         c.userAgent,
	}
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
