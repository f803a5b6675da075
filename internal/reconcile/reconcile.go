// Package reconcile applies a source's normalized campaigns to the store.
package reconcile

import (
	"context"
	"time"

	"github.com/kartfirsat/campaignworker/logger"
	"github.com/kartfirsat/campaignworker/pkg/errors"
	"github.com/kartfirsat/campaignworker/services/store"
)

// Result summarises one source's reconciliation
type Result struct {
	Saved       int
	Inserted    int
	Updated     int
	Deactivated int64
	Errors      []error
}

// SavedFunc is called after every successful upsert
type SavedFunc func(ctx context.Context, c store.Campaign, outcome store.UpsertOutcome)

// Engine upserts campaigns one by one and then expires stale ones
type Engine struct {
	store   store.Store
	now     func() time.Time
	onSaved SavedFunc
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the clock that defines "today" for deactivation
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSavedHook registers fn to observe every saved campaign
func WithSavedHook(fn SavedFunc) Option {
	return func(e *Engine) { e.onSaved = fn }
}

// New creates a reconciliation engine over s
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{store: s, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reconcile upserts campaigns in order, continuing past per-record failures,
// then issues one bulk deactivation for cardIDs.
func (e *Engine) Reconcile(ctx context.Context, source string, cardIDs []int64, campaigns []store.Campaign) Result {
	log := logger.ForSource(source)
	var res Result

	for i := range campaigns {
		if err := ctx.Err(); err != nil {
			res.Errors = append(res.Errors, errors.NewReconciliation(source, "run cancelled before all campaigns were saved", err))
			break
		}

		c := campaigns[i]
		outcome, err := e.store.UpsertCampaign(ctx, &c)
		if err != nil {
			log.Error().Err(err).Str("title", c.Title).Msg("Failed to save campaign")
			res.Errors = append(res.Errors, errors.NewReconciliation(source, "failed to save "+c.Title, err))
			continue
		}

		res.Saved++
		switch outcome {
		case store.Inserted:
			res.Inserted++
		case store.Updated:
			res.Updated++
		}
		log.Debug().Str("title", c.Title).Str("outcome", outcome.String()).Msg("Campaign saved")

		if e.onSaved != nil {
			e.onSaved(ctx, c, outcome)
		}
	}

	if ctx.Err() == nil {
		n, err := e.store.DeactivateExpired(ctx, cardIDs, e.now())
		if err != nil {
			log.Error().Err(err).Msg("Failed to deactivate expired campaigns")
			res.Errors = append(res.Errors, errors.NewReconciliation(source, "failed to deactivate expired campaigns", err))
		}
		res.Deactivated = n
	}

	log.Info().
		Int("saved", res.Saved).
		Int("total", len(campaigns)).
		Int("inserted", res.Inserted).
		Int("updated", res.Updated).
		Int64("deactivated", res.Deactivated).
		Msg("Reconciliation finished")
	return res
}
