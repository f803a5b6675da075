package crawler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kartfirsat/campaignworker/services/cache"
	"github.com/tidwall/gjson"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBrowserlessResponse(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		html     string
		degraded []string
	}{
		{"raw html", "<html><body>ok</body></html>", "<html><body>ok</body></html>", nil},
		{"function shape", `{"data":{"content":"<p>a</p>","notes":["selector .x: timeout"]},"type":"application/json"}`, "<p>a</p>", []string{"selector .x: timeout"}},
		{"flat content", `{"content":"<p>b</p>"}`, "<p>b</p>", nil},
		{"data string", `{"data":"<p>c</p>"}`, "<p>c</p>", nil},
		{"html key", `{"html":"<p>d</p>","notes":["navigation: slow"]}`, "<p>d</p>", []string{"navigation: slow"}},
		{"no content", `{"status":"ok"}`, "", []string{"no page content in render response"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parseBrowserlessResponse([]byte(tt.body))
			assert.Equal(t, tt.html, res.HTML)
			assert.Equal(t, tt.degraded, res.Degraded)
			assert.False(t, res.FromCache)
		})
	}
}

func TestBrowserlessRendererPostsFunction(t *testing.T) {
	var got gjson.Result
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/function", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		got = gjson.ParseBytes(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"content":"<html>ok</html>","notes":[]}}`))
	}))
	defer srv.Close()

	r := NewBrowserlessRenderer(srv.URL + "/")
	assert.Equal(t, "browserless", r.Name())

	res, err := r.Render(context.Background(), RenderRequest{
		SourceID:          "yapikredi",
		URL:               "https://www.worldcard.com.tr/kampanyalar",
		WaitSelector:      ".last-day",
		NavigationTimeout: 60 * time.Second,
		SelectorTimeout:   20 * time.Second,
		ScrollPasses:      5,
		LoadMoreText:      "Daha Fazla Göster",
		LoadMoreClicks:    3,
		UserAgent:         "test-agent",
	})
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", res.HTML)
	assert.Empty(t, res.Degraded)

	assert.Contains(t, got.Get("code").String(), "waitForSelector")
	ctx := got.Get("context")
	assert.Equal(t, "https://www.worldcard.com.tr/kampanyalar", ctx.Get("url").String())
	assert.Equal(t, ".last-day", ctx.Get("waitSelector").String())
	assert.Equal(t, int64(60000), ctx.Get("navigationTimeout").Int())
	assert.Equal(t, int64(20000), ctx.Get("selectorTimeout").Int())
	assert.Equal(t, int64(5), ctx.Get("scrollPasses").Int())
	assert.Equal(t, "Daha Fazla Göster", ctx.Get("loadMoreText").String())
	assert.Equal(t, int64(3), ctx.Get("loadMoreClicks").Int())
	assert.Equal(t, "test-agent", ctx.Get("userAgent").String())
}

func TestBrowserlessRendererServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "browser crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewBrowserlessRenderer(srv.URL).Render(context.Background(), RenderRequest{SourceID: "akbank", URL: "https://example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestRenderBudget(t *testing.T) {
	req := RenderRequest{
		NavigationTimeout: 60 * time.Second,
		SelectorTimeout:   20 * time.Second,
		ScrollPasses:      5,
		LoadMoreClicks:    3,
	}
	assert.Equal(t, 106*time.Second, renderBudget(req))
}

func TestTimedOut(t *testing.T) {
	assert.True(t, timedOut(context.Background(), context.DeadlineExceeded))
	assert.False(t, timedOut(context.Background(), io.EOF))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, timedOut(cancelled, context.DeadlineExceeded), "the caller gave up, not the render")
}

func slowServer(delay time.Duration) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(delay):
			_, _ = w.Write([]byte("<html>late</html>"))
		case <-r.Context().Done():
		}
	}))
}

func TestHTTPRenderer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>Kampanyalar</body></html>"))
	}))
	defer srv.Close()

	r := NewHTTPRenderer()
	assert.Equal(t, "http", r.Name())
	res, err := r.Render(context.Background(), RenderRequest{SourceID: "isbank", URL: srv.URL, UserAgent: "test-agent", NavigationTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "<html><body>Kampanyalar</body></html>", res.HTML)
	assert.Empty(t, res.Degraded)
}

func TestHTTPRendererTimeoutDegrades(t *testing.T) {
	srv := slowServer(2 * time.Second)
	defer srv.Close()

	res, err := NewHTTPRenderer().Render(context.Background(), RenderRequest{SourceID: "isbank", URL: srv.URL, NavigationTimeout: 50 * time.Millisecond})
	require.NoError(t, err)
	assert.Empty(t, res.HTML)
	assert.Equal(t, []string{"navigation timed out"}, res.Degraded)
}

func TestHTTPRendererCancelledRunFails(t *testing.T) {
	srv := slowServer(2 * time.Second)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewHTTPRenderer().Render(ctx, RenderRequest{SourceID: "isbank", URL: srv.URL, NavigationTimeout: time.Minute})
	assert.Error(t, err)
}

func TestHTTPRendererBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPRenderer().Render(context.Background(), RenderRequest{SourceID: "isbank", URL: srv.URL, NavigationTimeout: time.Second})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestCachedRendererStoresCompleteSnapshots(t *testing.T) {
	mc := NewMockCacheService()
	next := &fakeRenderer{html: "<html>listing</html>"}
	r := NewCachedRenderer(next, mc, 5*time.Minute, time.Minute)
	req := RenderRequest{SourceID: "akbank", URL: "https://www.axess.com.tr/kampanyalar"}

	first, err := r.Render(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, 5*time.Minute, mc.ttls[cache.Key("snapshot", req.URL)])

	second, err := r.Render(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, "<html>listing</html>", second.HTML)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, "fake", r.Name())
}

func TestCachedRendererSkipsDegradedPages(t *testing.T) {
	mc := NewMockCacheService()
	next := &fakeRenderer{html: "<html>half</html>", degraded: []string{"selector .owl-item: timeout"}}
	r := NewCachedRenderer(next, mc, 5*time.Minute, time.Minute)
	req := RenderRequest{SourceID: "akbank", URL: "https://www.axess.com.tr/kampanyalar"}

	for i := 0; i < 2; i++ {
		res, err := r.Render(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, res.FromCache)
	}
	assert.Equal(t, 2, next.calls)
}

func TestCachedRendererCooldownAfterFailure(t *testing.T) {
	mc := NewMockCacheService()
	next := &fakeRenderer{err: io.ErrUnexpectedEOF}
	r := NewCachedRenderer(next, mc, 5*time.Minute, 90*time.Second)
	req := RenderRequest{SourceID: "garanti", URL: "https://www.bonus.com.tr/kampanyalar"}

	_, err := r.Render(context.Background(), req)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, 90*time.Second, mc.ttls[cache.Key("cooldown", req.URL)])

	next.err = nil
	next.html = "<html>back</html>"
	_, err = r.Render(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked for another 90s")
	assert.Equal(t, 1, next.calls, "the source is not rendered during the cooldown")

	require.NoError(t, mc.Delete(cache.Key("cooldown", req.URL)))
	res, err := r.Render(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "<html>back</html>", res.HTML)
}

func TestCachedRendererWithoutTTL(t *testing.T) {
	mc := NewMockCacheService()
	next := &fakeRenderer{html: "<html>listing</html>"}
	r := NewCachedRenderer(next, mc, 0, 0)
	req := RenderRequest{SourceID: "akbank", URL: "https://www.axess.com.tr/kampanyalar"}

	for i := 0; i < 2; i++ {
		_, err := r.Render(context.Background(), req)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, next.calls)
	assert.Empty(t, mc.cache)
}
