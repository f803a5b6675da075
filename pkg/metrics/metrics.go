// Package metrics provides Prometheus metrics for campaign runs.
package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "campaignworker"

var (
	// SourceRunsTotal tracks source runs by outcome
	SourceRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "runs_total",
			Help:      "Total number of source runs by status",
		},
		[]string{"source", "status"},
	)

	// SourceRunDuration tracks how long one source takes end to end
	SourceRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "run_duration_seconds",
			Help:      "Duration of source runs in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 90, 120, 180, 300},
		},
		[]string{"source"},
	)

	// SourceErrorsTotal tracks counted errors per source
	SourceErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "errors_total",
			Help:      "Total number of counted errors per source",
		},
		[]string{"source"},
	)

	// CampaignsScrapedTotal tracks raw campaigns extracted
	CampaignsScrapedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "campaigns",
			Name:      "scraped_total",
			Help:      "Total number of raw campaigns extracted",
		},
		[]string{"source"},
	)

	// CampaignsSavedTotal tracks upserts by outcome
	CampaignsSavedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "campaigns",
			Name:      "saved_total",
			Help:      "Total number of campaigns saved by outcome",
		},
		[]string{"source", "outcome"},
	)

	// CampaignsDeactivatedTotal tracks expired campaigns switched off
	CampaignsDeactivatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "campaigns",
			Name:      "deactivated_total",
			Help:      "Total number of expired campaigns deactivated",
		},
		[]string{"source"},
	)

	// RenderDuration tracks page render time by renderer
	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Duration of page renders in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 90},
		},
		[]string{"renderer", "degraded"},
	)
)

// Run is the subset of a source summary the counters need
type Run struct {
	Source      string
	Scraped     int
	Inserted    int
	Updated     int
	Deactivated int64
	Errors      int
	Elapsed     time.Duration
}

// ObserveRun records one finished source run
func ObserveRun(r Run) {
	status := "ok"
	if r.Errors > 0 {
		status = "error"
	}
	SourceRunsTotal.WithLabelValues(r.Source, status).Inc()
	SourceRunDuration.WithLabelValues(r.Source).Observe(r.Elapsed.Seconds())
	SourceErrorsTotal.WithLabelValues(r.Source).Add(float64(r.Errors))
	CampaignsScrapedTotal.WithLabelValues(r.Source).Add(float64(r.Scraped))
	CampaignsSavedTotal.WithLabelValues(r.Source, "inserted").Add(float64(r.Inserted))
	CampaignsSavedTotal.WithLabelValues(r.Source, "updated").Add(float64(r.Updated))
	CampaignsDeactivatedTotal.WithLabelValues(r.Source).Add(float64(r.Deactivated))
}

// ObserveRender records one page render
func ObserveRender(renderer string, d time.Duration, degraded bool) {
	RenderDuration.WithLabelValues(renderer, strconv.FormatBool(degraded)).Observe(d.Seconds())
}

// Push sends the default registry to a Prometheus pushgateway. A run is a
// batch job, so nothing scrapes the process directly.
func Push(ctx context.Context, url, runID string) error {
	err := push.New(url, namespace).
		Gatherer(prometheus.DefaultGatherer).
		Grouping("run_id", runID).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
