package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kartfirsat/campaignworker/helpers"
	"github.com/kartfirsat/campaignworker/logger"
	"github.com/kartfirsat/campaignworker/pkg/metrics"
	"github.com/tidwall/gjson"
)

// puppeteerScript runs inside the browserless /function endpoint. Waits that
// time out are recorded in notes and the page content is returned anyway.
const puppeteerScript = `module.exports = async ({ page, context }) => {
	const notes = [];
	const pause = (ms) => new Promise((resolve) => setTimeout(resolve, ms));

	await page.setViewport({ width: 1920, height: 1080 });
	await page.setUserAgent(context.userAgent);
	await page.setExtraHTTPHeaders({ 'Accept-Language': 'tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7' });

	try {
		await page.goto(context.url, { waitUntil: 'domcontentloaded', timeout: context.navigationTimeout });
	} catch (e) {
		notes.push('navigation: ' + e.message);
	}

	if (context.waitSelector) {
		try {
			await page.waitForSelector(context.waitSelector, { timeout: context.selectorTimeout });
		} catch (e) {
			notes.push('selector ' + context.waitSelector + ': ' + e.message);
		}
	}

	for (let i = 0; i < context.scrollPasses; i++) {
		await page.evaluate(() => window.scrollTo(0, document.body.scrollHeight));
		await pause(1000);
	}

	for (let i = 0; context.loadMoreText && i < context.loadMoreClicks; i++) {
		const clicked = await page.evaluate((label) => {
			const el = Array.from(document.querySelectorAll('button, a, span'))
				.find((n) => n.textContent.trim() === label);
			if (!el) return false;
			el.click();
			return true;
		}, context.loadMoreText);
		if (!clicked) break;
		await pause(2000);
	}

	return { data: { content: await page.content(), notes }, type: 'application/json' };
};`

// contentPaths are the response shapes browserless versions answer with
var contentPaths = []string{"data.content", "content", "data", "result", "html"}

// BrowserlessRenderer renders pages through a browserless /function endpoint
type BrowserlessRenderer struct {
	Addr string
}

// NewBrowserlessRenderer creates a renderer for the browserless instance at addr
func NewBrowserlessRenderer(addr string) *BrowserlessRenderer {
	return &BrowserlessRenderer{Addr: strings.TrimRight(addr, "/")}
}

// Name identifies the renderer in logs and metrics
func (r *BrowserlessRenderer) Name() string {
	return "browserless"
}

// Render loads req.URL in a fresh browser page, runs the lazy-load steps and
// returns the final HTML.
func (r *BrowserlessRenderer) Render(ctx context.Context, req RenderRequest) (RenderResult, error) {
	log := logger.ForSource(req.SourceID)
	start := time.Now()

	rctx, cancel := context.WithTimeout(ctx, renderBudget(req))
	defer cancel()

	payload := map[string]interface{}{
		"code": puppeteerScript,
		"context": map[string]interface{}{
			"url":               req.URL,
			"waitSelector":      req.WaitSelector,
			"navigationTimeout": req.NavigationTimeout.Milliseconds(),
			"selectorTimeout":   req.SelectorTimeout.Milliseconds(),
			"scrollPasses":      req.ScrollPasses,
			"loadMoreText":      req.LoadMoreText,
			"loadMoreClicks":    req.LoadMoreClicks,
			"userAgent":         req.UserAgent,
		},
	}

	body, err := helpers.PostJSON(rctx, r.Addr+"/function", payload)
	if err != nil {
		if timedOut(ctx, err) {
			log.Warn().Err(err).Msg("Render deadline exceeded, continuing with empty page")
			metrics.ObserveRender(r.Name(), time.Since(start), true)
			return RenderResult{Degraded: []string{"render deadline exceeded"}}, nil
		}
		return RenderResult{}, fmt.Errorf("browserless render of %s: %w", req.URL, err)
	}

	res := parseBrowserlessResponse(body)
	for _, note := range res.Degraded {
		log.Warn().Str("note", note).Msg("Render degraded, parsing what loaded")
	}
	log.Debug().Int("bytes", len(res.HTML)).Dur("took", time.Since(start)).Msg("Page rendered")
	metrics.ObserveRender(r.Name(), time.Since(start), len(res.Degraded) > 0)
	return res, nil
}

// parseBrowserlessResponse accepts either raw HTML or one of the JSON shapes
// in contentPaths.
func parseBrowserlessResponse(body []byte) RenderResult {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") || !gjson.Valid(trimmed) {
		return RenderResult{HTML: string(body)}
	}

	doc := gjson.Parse(trimmed)
	var res RenderResult
	for _, path := range contentPaths {
		if v := doc.Get(path); v.Type == gjson.String && v.Str != "" {
			res.HTML = v.Str
			break
		}
	}
	for _, path := range []string{"data.notes", "notes"} {
		doc.Get(path).ForEach(func(_, note gjson.Result) bool {
			res.Degraded = append(res.Degraded, note.String())
			return true
		})
	}
	if res.HTML == "" {
		res.Degraded = append(res.Degraded, "no page content in render response")
	}
	return res
}
