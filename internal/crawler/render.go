package crawler

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kartfirsat/campaignworker/logger"
	"github.com/kartfirsat/campaignworker/services/cache"
)

// RenderRequest describes one page load, including the source's lazy-load steps
type RenderRequest struct {
	SourceID          string
	URL               string
	WaitSelector      string
	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration
	ScrollPasses      int
	LoadMoreText      string
	LoadMoreClicks    int
	UserAgent         string
}

// RenderResult is the best-effort HTML of a page
type RenderResult struct {
	HTML string
	// Degraded lists waits that timed out; HTML holds whatever had loaded
	Degraded  []string
	FromCache bool
}

// Renderer obtains the final HTML of a page. Timeouts never produce an error;
// they are reported in RenderResult.Degraded.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (RenderResult, error)
	Name() string
}

// renderBudget is the whole-request deadline for one render
func renderBudget(req RenderRequest) time.Duration {
	budget := req.NavigationTimeout + req.SelectorTimeout + 15*time.Second
	budget += time.Duration(req.ScrollPasses) * time.Second
	budget += time.Duration(req.LoadMoreClicks) * 2 * time.Second
	return budget
}

// timedOut reports whether err is our own render deadline rather than the
// caller cancelling the run.
func timedOut(parent context.Context, err error) bool {
	return stderrors.Is(err, context.DeadlineExceeded) && parent.Err() == nil
}

// CachedRenderer keeps recent snapshots in the cache and blocks a source for
// a cooldown period after a failed render.
type CachedRenderer struct {
	next     Renderer
	cache    cache.CacheService
	ttl      time.Duration
	cooldown time.Duration
}

// NewCachedRenderer wraps next with snapshot and cooldown handling
func NewCachedRenderer(next Renderer, c cache.CacheService, ttl, cooldown time.Duration) *CachedRenderer {
	return &CachedRenderer{next: next, cache: c, ttl: ttl, cooldown: cooldown}
}

// Name returns the wrapped renderer's name
func (r *CachedRenderer) Name() string {
	return r.next.Name()
}

// Render serves a cached snapshot when one exists, otherwise renders and
// stores a complete page.
func (r *CachedRenderer) Render(ctx context.Context, req RenderRequest) (RenderResult, error) {
	log := logger.ForCache()
	snapshotKey := cache.Key("snapshot", req.URL)
	cooldownKey := cache.Key("cooldown", req.URL)

	if r.ttl > 0 {
		if html, err := r.cache.Get(snapshotKey); err == nil && len(html) > 0 {
			log.Debug().Str("source", req.SourceID).Int("bytes", len(html)).Msg("Using cached snapshot")
			return RenderResult{HTML: string(html), FromCache: true}, nil
		} else if err != nil && !cache.IsMiss(err) {
			log.Warn().Err(err).Str("source", req.SourceID).Msg("Snapshot lookup failed")
		}
	}

	if left, err := r.cache.Get(cooldownKey); err == nil {
		return RenderResult{}, fmt.Errorf("%s: blocked for another %ss after a failed render", req.SourceID, string(left))
	}

	res, err := r.next.Render(ctx, req)
	if err != nil {
		if ctx.Err() == nil && r.cooldown > 0 {
			seconds := strconv.Itoa(int(r.cooldown / time.Second))
			if setErr := r.cache.Set(cooldownKey, []byte(seconds), r.cooldown); setErr != nil {
				log.Warn().Err(setErr).Str("source", req.SourceID).Msg("Failed to set render cooldown")
			}
		}
		return res, err
	}

	if r.ttl > 0 && len(res.Degraded) == 0 && res.HTML != "" {
		if setErr := r.cache.Set(snapshotKey, []byte(res.HTML), r.ttl); setErr != nil {
			// memcache rejects items over its size limit; the run goes on
			log.Warn().Err(setErr).Str("source", req.SourceID).Msg("Failed to store snapshot")
		}
	}
	return res, nil
}
