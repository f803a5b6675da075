package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kartfirsat/campaignworker/helpers"
	"github.com/kartfirsat/campaignworker/internal/crawler"
	"github.com/kartfirsat/campaignworker/services/publisher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockCrawler implements the crawler.Crawler interface for testing
type MockCrawler struct {
	id      string
	name    string
	summary crawler.Summary
	panics  bool
	delay   time.Duration
	running *int32
	peak    *int32
}

// Ensure MockCrawler implements crawler.Crawler
var _ crawler.Crawler = (*MockCrawler)(nil)

func (m *MockCrawler) Crawl(ctx context.Context) crawler.Summary {
	if m.running != nil {
		n := atomic.AddInt32(m.running, 1)
		for {
			p := atomic.LoadInt32(m.peak)
			if n <= p || atomic.CompareAndSwapInt32(m.peak, p, n) {
				break
			}
		}
		defer atomic.AddInt32(m.running, -1)
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.panics {
		panic("selector table broken")
	}
	s := m.summary
	s.Source = m.id
	s.Name = m.name
	return s
}

func (m *MockCrawler) GetName() string {
	return m.name
}

func (m *MockCrawler) GetSourceID() string {
	return m.id
}

// MockPublisher implements the publisher.Publisher interface for testing
type MockPublisher struct {
	mu       sync.Mutex
	messages map[string][][]byte
	trimmed  int
}

// Ensure MockPublisher implements publisher.Publisher
var _ publisher.Publisher = (*MockPublisher)(nil)

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{messages: make(map[string][][]byte)}
}

func (m *MockPublisher) Publish(ctx context.Context, key string, message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	messageCopy := make([]byte, len(message))
	copy(messageCopy, message)
	m.messages[key] = append(m.messages[key], messageCopy)
	return nil
}

func (m *MockPublisher) TrimStreams(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trimmed++
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

// MockLogger implements the helpers.LoggerInterface for testing
type MockLogger struct {
	mu     sync.Mutex
	errors []string
	infos  []string
}

// Ensure MockLogger implements helpers.LoggerInterface
var _ helpers.LoggerInterface = (*MockLogger)(nil)

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) LogError(source string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, source+": "+err.Error())
}

func (m *MockLogger) LogInfo(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, fmt.Sprintf(format, args...))
}

func TestWorkerRun(t *testing.T) {
	mockLogger := NewMockLogger()
	mockPublisher := NewMockPublisher()
	events := publisher.NewEvents(mockPublisher)

	crawlers := []crawler.Crawler{
		&MockCrawler{id: "akbank", name: "Akbank", summary: crawler.Summary{Scraped: 12, Saved: 12, Inserted: 10, Updated: 2}},
		&MockCrawler{id: "garanti", name: "Garanti BBVA", summary: crawler.Summary{Scraped: 4, Saved: 3, Errors: 1, ErrorDetails: []string{"[reconciliation] garanti: failed to save X"}}},
	}

	report := NewWorker(crawlers, events, mockLogger, 2).Run(context.Background())

	require.Len(t, report.Summaries, 2)
	assert.Equal(t, "akbank", report.Summaries[0].Source, "summaries keep source order")
	assert.Equal(t, "garanti", report.Summaries[1].Source)
	assert.Equal(t, events.RunID(), report.RunID)
	assert.False(t, report.Interrupted)
	assert.Equal(t, ExitErrors, report.ExitCode())

	total := report.Totals()
	assert.Equal(t, 16, total.Scraped)
	assert.Equal(t, 15, total.Saved)
	assert.Equal(t, 1, total.Errors)

	require.Len(t, mockLogger.errors, 1)
	assert.Contains(t, mockLogger.errors[0], "garanti: [reconciliation]")

	require.Len(t, mockPublisher.messages[publisher.KeySummary], 2)
	var event publisher.SummaryEvent
	require.NoError(t, json.Unmarshal(mockPublisher.messages[publisher.KeySummary][0], &event))
	assert.Equal(t, report.RunID, event.RunID)
	assert.Equal(t, 1, mockPublisher.trimmed)
}

func TestWorkerRecoversPanics(t *testing.T) {
	mockLogger := NewMockLogger()
	crawlers := []crawler.Crawler{
		&MockCrawler{id: "isbank", name: "İş Bankası", panics: true},
		&MockCrawler{id: "akbank", name: "Akbank", summary: crawler.Summary{Scraped: 1, Saved: 1}},
	}

	report := NewWorker(crawlers, nil, mockLogger, 1).Run(context.Background())

	failed := report.Summaries[0]
	assert.Equal(t, "isbank", failed.Source)
	assert.Equal(t, 0, failed.Scraped)
	assert.Equal(t, 1, failed.Errors)
	require.Len(t, failed.ErrorDetails, 1)
	assert.Contains(t, failed.ErrorDetails[0], "selector table broken")

	assert.True(t, report.Summaries[1].OK(), "other sources still run")
	assert.Equal(t, ExitErrors, report.ExitCode())
}

func TestWorkerBoundsConcurrency(t *testing.T) {
	var running, peak int32
	crawlers := make([]crawler.Crawler, 6)
	for i := range crawlers {
		crawlers[i] = &MockCrawler{
			id:      fmt.Sprintf("source-%d", i),
			delay:   20 * time.Millisecond,
			running: &running,
			peak:    &peak,
		}
	}

	report := NewWorker(crawlers, nil, NewMockLogger(), 2).Run(context.Background())
	assert.Len(t, report.Summaries, 6)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.Equal(t, ExitOK, report.ExitCode())
}

func TestWorkerInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := NewWorker([]crawler.Crawler{&MockCrawler{id: "akbank", name: "Akbank"}}, nil, NewMockLogger(), 1).Run(ctx)
	assert.True(t, report.Interrupted)
	assert.Equal(t, ExitInterrupted, report.ExitCode())
	assert.Equal(t, 1, report.Summaries[0].Errors)
	assert.Contains(t, report.Summaries[0].ErrorDetails[0], "interrupted")
}

func TestWorkerRunInfoDependsOnEnvironment(t *testing.T) {
	crawlers := []crawler.Crawler{&MockCrawler{id: "akbank", name: "Akbank"}}

	devLogger := NewMockLogger()
	NewWorker(crawlers, nil, devLogger, 1, WithEnvironment("development")).Run(context.Background())
	require.Len(t, devLogger.infos, 1)
	assert.Contains(t, devLogger.infos[0], "finished in")

	prodLogger := NewMockLogger()
	NewWorker(crawlers, nil, prodLogger, 1, WithEnvironment("production")).Run(context.Background())
	assert.Empty(t, prodLogger.infos)
}

func TestWorkerPushesMetrics(t *testing.T) {
	var paths []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	events := publisher.NewEvents(nil)
	crawlers := []crawler.Crawler{&MockCrawler{id: "akbank", name: "Akbank"}}
	NewWorker(crawlers, events, NewMockLogger(), 1, WithPushgateway(srv.URL)).Run(context.Background())

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, paths)
	assert.Contains(t, paths[0], "/run_id/"+events.RunID())
}

func TestReportPrint(t *testing.T) {
	report := Report{
		Summaries: []crawler.Summary{
			{Source: "akbank", Name: "Akbank", Scraped: 12, Saved: 12, Elapsed: 4500 * time.Millisecond},
			{Source: "garanti", Name: "Garanti BBVA", Scraped: 3, Saved: 2, Errors: 5, Elapsed: 2 * time.Second, ErrorDetails: []string{
				"first", "second", "third", "fourth", "fifth",
			}},
		},
		Elapsed: 7 * time.Second,
	}

	var buf bytes.Buffer
	report.Print(&buf)
	out := buf.String()

	assert.Contains(t, out, "Akbank           |      12 |    12 |    4.5 | ok")
	assert.Contains(t, out, "Garanti BBVA     |       3 |     2 |    2.0 | 5 errors")
	assert.Contains(t, out, "    - third\n")
	assert.NotContains(t, out, "fourth")
	assert.Contains(t, out, "TOTAL            |      15 |    14 |    7.0 | 5 errors")
	assert.NotContains(t, out, "interrupted")
}

func TestReportExitCodes(t *testing.T) {
	assert.Equal(t, ExitOK, Report{}.ExitCode())
	assert.Equal(t, ExitOK, Report{Summaries: []crawler.Summary{{Source: "a"}}}.ExitCode())
	assert.Equal(t, ExitErrors, Report{Summaries: []crawler.Summary{{Source: "a", Errors: 2}}}.ExitCode())
	assert.Equal(t, ExitInterrupted, Report{Interrupted: true}.ExitCode())
}
