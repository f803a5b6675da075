package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kartfirsat/campaignworker/services/store"
)

// Stream keys
const (
	KeyCampaign = "campaign"
	KeySummary  = "summary"
)

// CampaignEvent announces one saved campaign
type CampaignEvent struct {
	RunID           string    `json:"run_id"`
	Source          string    `json:"source"`
	Outcome         string    `json:"outcome"`
	CardID          int64     `json:"card_id"`
	Title           string    `json:"title"`
	MerchantName    string    `json:"merchant_name"`
	MerchantPattern string    `json:"merchant_pattern"`
	DiscountType    string    `json:"discount_type"`
	DiscountRate    float64   `json:"discount_rate"`
	MaxDiscount     *float64  `json:"max_discount,omitempty"`
	MinSpend        float64   `json:"min_spend"`
	StartDate       *string   `json:"start_date,omitempty"`
	EndDate         *string   `json:"end_date,omitempty"`
	SourceURL       string    `json:"source_url"`
	ScrapedAt       time.Time `json:"scraped_at"`
}

// SummaryEvent announces one finished source run
type SummaryEvent struct {
	RunID      string      `json:"run_id"`
	Source     string      `json:"source"`
	FinishedAt time.Time   `json:"finished_at"`
	Summary    interface{} `json:"summary"`
}

// Events stamps messages of one run with a shared run id
type Events struct {
	pub   Publisher
	runID string
}

// NewEvents creates an event stream for a new run
func NewEvents(pub Publisher) *Events {
	if pub == nil {
		pub = NopPublisher{}
	}
	return &Events{pub: pub, runID: uuid.NewString()}
}

// RunID returns the id stamped on every event of this run
func (e *Events) RunID() string {
	return e.runID
}

// CampaignSaved publishes a campaign upsert
func (e *Events) CampaignSaved(ctx context.Context, source string, c store.Campaign, outcome store.UpsertOutcome) error {
	return e.publish(ctx, KeyCampaign, CampaignEvent{
		RunID:           e.runID,
		Source:          source,
		Outcome:         outcome.String(),
		CardID:          c.CardID,
		Title:           c.Title,
		MerchantName:    c.MerchantName,
		MerchantPattern: c.MerchantPattern,
		DiscountType:    c.DiscountType,
		DiscountRate:    c.DiscountRate,
		MaxDiscount:     c.MaxDiscount,
		MinSpend:        c.MinSpend,
		StartDate:       c.StartDate,
		EndDate:         c.EndDate,
		SourceURL:       c.SourceURL,
		ScrapedAt:       c.ScrapedAt,
	})
}

// SourceFinished publishes a source's run summary
func (e *Events) SourceFinished(ctx context.Context, source string, summary interface{}) error {
	return e.publish(ctx, KeySummary, SummaryEvent{
		RunID:      e.runID,
		Source:     source,
		FinishedAt: time.Now().UTC(),
		Summary:    summary,
	})
}

// Trim trims the underlying streams
func (e *Events) Trim(ctx context.Context) error {
	return e.pub.TrimStreams(ctx)
}

func (e *Events) publish(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", key, err)
	}
	return e.pub.Publish(ctx, key, data)
}
