package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/kartfirsat/campaignworker/helpers"
	"github.com/kartfirsat/campaignworker/internal/crawler"
	"github.com/kartfirsat/campaignworker/logger"
	"github.com/kartfirsat/campaignworker/pkg/errors"
	"github.com/kartfirsat/campaignworker/pkg/metrics"
	"github.com/kartfirsat/campaignworker/services/publisher"
	"golang.org/x/sync/errgroup"
)

// Worker runs a set of source crawlers once and aggregates their summaries
type Worker struct {
	crawlers    []crawler.Crawler
	events      *publisher.Events
	logger      helpers.LoggerInterface
	concurrency int
	pushURL     string
	environment string
}

// Option configures a Worker
type Option func(*Worker)

// WithPushgateway pushes run metrics to url after every run
func WithPushgateway(url string) Option {
	return func(w *Worker) { w.pushURL = url }
}

// WithEnvironment sets the deployment environment. Production runs skip the
// plain-text run summary in the info log.
func WithEnvironment(env string) Option {
	return func(w *Worker) { w.environment = env }
}

// NewWorker creates a new worker
func NewWorker(
	crawlers []crawler.Crawler,
	events *publisher.Events,
	logger helpers.LoggerInterface,
	concurrency int,
	opts ...Option,
) *Worker {
	if events == nil {
		events = publisher.NewEvents(nil)
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	w := &Worker{
		crawlers:    crawlers,
		events:      events,
		logger:      logger,
		concurrency: concurrency,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run crawls every source on a bounded pool. Source failures never abort the
// run; they only show up in the returned report.
func (w *Worker) Run(ctx context.Context) Report {
	start := time.Now()
	log := logger.ForWorker()
	summaries := make([]crawler.Summary, len(w.crawlers))

	var g errgroup.Group
	g.SetLimit(w.concurrency)
	for i, c := range w.crawlers {
		g.Go(func() error {
			summaries[i] = w.crawl(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	// events go out even after an interrupt, so they get their own deadline
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := w.events.Trim(flushCtx); err != nil {
		w.logger.LogError("StreamTrimming", err)
	}
	if w.pushURL != "" {
		if err := metrics.Push(flushCtx, w.pushURL, w.events.RunID()); err != nil {
			log.Warn().Err(err).Msg("Failed to push metrics")
		}
	}

	report := Report{
		RunID:       w.events.RunID(),
		Summaries:   summaries,
		Interrupted: ctx.Err() != nil,
		Elapsed:     time.Since(start),
	}
	if w.environment != "production" {
		w.logger.LogInfo("Run %s finished in %s", report.RunID, report.Elapsed)
	}
	return report
}

// crawl runs one source. A panic becomes a zero-scraped, one-error summary.
func (w *Worker) crawl(ctx context.Context, c crawler.Crawler) (sum crawler.Summary) {
	source := c.GetSourceID()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err := errors.NewFatal(source, "crawler panicked", fmt.Errorf("%v", r))
			sum = crawler.Summary{
				Source:       source,
				Name:         c.GetName(),
				Errors:       1,
				ErrorDetails: []string{err.Error()},
				Elapsed:      time.Since(start),
			}
		}
		w.finish(ctx, sum)
	}()

	if err := ctx.Err(); err != nil {
		return crawler.Summary{
			Source:       source,
			Name:         c.GetName(),
			Errors:       1,
			ErrorDetails: []string{errors.NewFatal(source, "run interrupted before source started", err).Error()},
		}
	}
	return c.Crawl(ctx)
}

// finish records a finished source in metrics, the error log and the event stream
func (w *Worker) finish(ctx context.Context, sum crawler.Summary) {
	metrics.ObserveRun(metrics.Run{
		Source:      sum.Source,
		Scraped:     sum.Scraped,
		Inserted:    sum.Inserted,
		Updated:     sum.Updated,
		Deactivated: sum.Deactivated,
		Errors:      sum.Errors,
		Elapsed:     sum.Elapsed,
	})

	for _, detail := range sum.ErrorDetails {
		w.logger.LogError(sum.Source, fmt.Errorf("%s", detail))
	}

	if err := w.events.SourceFinished(context.WithoutCancel(ctx), sum.Source, sum); err != nil {
		logger.ForPublisher().Warn().Err(err).Str("source", sum.Source).Msg("Failed to publish run summary")
	}
}
