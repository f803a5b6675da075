package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/kartfirsat/campaignworker/helpers"
	"github.com/kartfirsat/campaignworker/logger"
	"github.com/kartfirsat/campaignworker/pkg/metrics"
)

// HTTPRenderer fetches server-rendered pages with a plain GET. It cannot run
// lazy-load steps or wait for selectors.
type HTTPRenderer struct{}

// NewHTTPRenderer creates a renderer for pages that need no browser
func NewHTTPRenderer() *HTTPRenderer {
	return &HTTPRenderer{}
}

// Name identifies the renderer in logs and metrics
func (r *HTTPRenderer) Name() string {
	return "http"
}

// Render fetches req.URL within the navigation timeout
func (r *HTTPRenderer) Render(ctx context.Context, req RenderRequest) (RenderResult, error) {
	start := time.Now()
	timeout := req.NavigationTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := helpers.FetchHTML(rctx, req.URL, req.UserAgent)
	if err != nil {
		if timedOut(ctx, err) {
			logger.ForSource(req.SourceID).Warn().Err(err).Msg("Fetch timed out, continuing with empty page")
			metrics.ObserveRender(r.Name(), time.Since(start), true)
			return RenderResult{Degraded: []string{"navigation timed out"}}, nil
		}
		return RenderResult{}, fmt.Errorf("fetch %s: %w", req.URL, err)
	}

	metrics.ObserveRender(r.Name(), time.Since(start), false)
	return RenderResult{HTML: string(body)}, nil
}
