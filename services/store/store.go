package store

import (
	"context"
	"time"
)

// UpsertOutcome tells whether an upsert created or overwrote a row
type UpsertOutcome int

const (
	// Inserted means no row existed for (card_id, title)
	Inserted UpsertOutcome = iota + 1
	// Updated means an existing row was overwritten in place
	Updated
)

func (o UpsertOutcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	default:
		return "unknown"
	}
}

// Store represents the persistence capability the pipeline depends on
type Store interface {
	// GetCardsForSource returns the cards owned by the bank behind sourceID, ordered by id
	GetCardsForSource(ctx context.Context, sourceID string) ([]Card, error)

	// UpsertCampaign inserts c or overwrites the row with the same (card_id, title).
	// An update never touches is_active.
	UpsertCampaign(ctx context.Context, c *Campaign) (UpsertOutcome, error)

	// DeactivateExpired flips is_active to false for rows of cardIDs whose end_date is before asOf
	DeactivateExpired(ctx context.Context, cardIDs []int64, asOf time.Time) (int64, error)
}

// Bank is the institution that owns a set of cards; its slug equals the source id
type Bank struct {
	ID   int64  `gorm:"primaryKey"`
	Slug string `gorm:"size:50;not null;uniqueIndex"`
	Name string `gorm:"size:100;not null"`
}

// Card is read-only reference data for the pipeline
type Card struct {
	ID     int64  `gorm:"primaryKey"`
	BankID int64  `gorm:"not null;index"`
	Bank   Bank   `gorm:"constraint:OnDelete:RESTRICT"`
	Slug   string `gorm:"size:100;not null;uniqueIndex"`
	Name   string `gorm:"size:100;not null"`
}

// Campaign is one normalized offer. (card_id, title) is its natural key.
// Dates are ISO YYYY-MM-DD strings so they compare correctly as text.
type Campaign struct {
	ID              int64   `gorm:"primaryKey"`
	CardID          int64   `gorm:"not null;uniqueIndex:idx_campaigns_card_title,priority:1"`
	Title           string  `gorm:"size:200;not null;uniqueIndex:idx_campaigns_card_title,priority:2"`
	Description     string  `gorm:"size:500"`
	MerchantName    string  `gorm:"size:200;not null"`
	MerchantPattern string  `gorm:"size:200;index"`
	DiscountType    string  `gorm:"size:20;not null"`
	DiscountRate    float64 `gorm:"not null"`
	MaxDiscount     *float64
	MinSpend        float64 `gorm:"not null"`
	StartDate       *string `gorm:"type:varchar(10)"`
	EndDate         *string `gorm:"type:varchar(10);index"`
	Conditions      *string `gorm:"size:500"`
	SourceURL       string  `gorm:"size:1000"`
	ScrapedAt       time.Time
	IsActive        bool `gorm:"not null;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CardActivity is the number of active campaigns stored for one card
type CardActivity struct {
	BankSlug string
	CardSlug string
	CardName string
	Active   int64
}

// CardMap is the ordered slug → id table a source run resolves once
type CardMap []Card

// First returns the card a campaign falls back to when no keyword matches
func (m CardMap) First() (Card, bool) {
	if len(m) == 0 {
		return Card{}, false
	}
	return m[0], true
}

// IDs returns the card ids in order
func (m CardMap) IDs() []int64 {
	ids := make([]int64, len(m))
	for i, c := range m {
		ids[i] = c.ID
	}
	return ids
}

// Lookup returns the id of the card with slug
func (m CardMap) Lookup(slug string) (int64, bool) {
	for _, c := range m {
		if c.Slug == slug {
			return c.ID, true
		}
	}
	return 0, false
}
