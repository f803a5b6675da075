package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kartfirsat/campaignworker/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// dateLayout is how start_date and end_date are stored
const dateLayout = "2006-01-02"

// mutableColumns are overwritten when a campaign is re-discovered.
// is_active is deliberately absent.
var mutableColumns = []string{
	"description",
	"merchant_name",
	"merchant_pattern",
	"discount_type",
	"discount_rate",
	"max_discount",
	"min_spend",
	"start_date",
	"end_date",
	"conditions",
	"source_url",
	"scraped_at",
	"updated_at",
}

// GormStore implements Store on top of gorm
type GormStore struct {
	db  *gorm.DB
	log *logger.Logger
}

// gormWriter routes gorm's own warnings into zerolog
type gormWriter struct {
	log *logger.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warn().Msgf(format, args...)
}

// Open connects to the database with the given driver ("postgres" or "sqlite")
func Open(driver, dsn string) (*GormStore, error) {
	log := logger.ForStore()

	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	gormLog := gormLogger.New(
		gormWriter{log: log},
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	if driver == "sqlite" {
		// one connection keeps an in-memory database alive and serializes writers
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Debug().Str("driver", driver).Msg("Database connected")
	return &GormStore{db: db, log: log}, nil
}

// DB exposes the underlying handle
func (s *GormStore) DB() *gorm.DB { return s.db }

// Close releases the connection pool
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates or updates the banks, cards and campaigns tables,
// including the unique (card_id, title) index.
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Bank{}, &Card{}, &Campaign{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// GetCardsForSource returns the source's cards ordered by id
func (s *GormStore) GetCardsForSource(ctx context.Context, sourceID string) ([]Card, error) {
	var cards []Card
	err := s.db.WithContext(ctx).
		Joins("JOIN banks ON banks.id = cards.bank_id").
		Where("banks.slug = ?", sourceID).
		Order("cards.id").
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cards for %s: %w", sourceID, err)
	}
	return cards, nil
}

// UpsertCampaign looks the campaign up by (card_id, title) and updates or inserts it
func (s *GormStore) UpsertCampaign(ctx context.Context, c *Campaign) (UpsertOutcome, error) {
	if c == nil {
		return 0, errors.New("nil campaign")
	}

	var outcome UpsertOutcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Campaign
		err := tx.Select("id").
			Where("card_id = ? AND title = ?", c.CardID, c.Title).
			Take(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.ID = 0
			c.IsActive = true
			if err := tx.Create(c).Error; err != nil {
				return err
			}
			outcome = Inserted
			return nil
		case err != nil:
			return err
		}

		c.ID = existing.ID
		if err := tx.Model(c).Select(mutableColumns).Updates(c).Error; err != nil {
			return err
		}
		outcome = Updated
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert campaign %q: %w", c.Title, err)
	}
	return outcome, nil
}

// DeactivateExpired marks active campaigns of cardIDs whose end_date has passed
func (s *GormStore) DeactivateExpired(ctx context.Context, cardIDs []int64, asOf time.Time) (int64, error) {
	if len(cardIDs) == 0 {
		return 0, nil
	}

	today := asOf.Format(dateLayout)
	res := s.db.WithContext(ctx).
		Model(&Campaign{}).
		Where("card_id IN ?", cardIDs).
		Where("is_active = ?", true).
		Where("end_date IS NOT NULL AND end_date < ?", today).
		Update("is_active", false)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to deactivate expired campaigns: %w", res.Error)
	}

	if res.RowsAffected > 0 {
		s.log.Info().Int64("count", res.RowsAffected).Str("as_of", today).Msg("Deactivated expired campaigns")
	}
	return res.RowsAffected, nil
}

// ActiveCampaignCount returns the number of active campaigns across all cards
func (s *GormStore) ActiveCampaignCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Campaign{}).Where("is_active = ?", true).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active campaigns: %w", err)
	}
	return n, nil
}

// ActiveCampaignsByCard returns the active campaign count for every card, ordered by card id
func (s *GormStore) ActiveCampaignsByCard(ctx context.Context) ([]CardActivity, error) {
	var rows []CardActivity
	err := s.db.WithContext(ctx).
		Table("cards").
		Select("banks.slug AS bank_slug, cards.slug AS card_slug, cards.name AS card_name, COUNT(campaigns.id) AS active").
		Joins("JOIN banks ON banks.id = cards.bank_id").
		Joins("LEFT JOIN campaigns ON campaigns.card_id = cards.id AND campaigns.is_active = ?", true).
		Group("cards.id, banks.slug, cards.slug, cards.name").
		Order("cards.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count campaigns per card: %w", err)
	}
	return rows, nil
}

// SeedCard describes one card to create when seeding reference data
type SeedCard struct {
	Slug string
	Name string
}

// SeedBank describes one bank and its cards
type SeedBank struct {
	Slug  string
	Name  string
	Cards []SeedCard
}

// Seed creates any missing banks and cards; existing rows are left alone
func (s *GormStore) Seed(ctx context.Context, banks []SeedBank) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, b := range banks {
			bank := Bank{Slug: b.Slug, Name: b.Name}
			if err := tx.Where(Bank{Slug: b.Slug}).FirstOrCreate(&bank).Error; err != nil {
				return fmt.Errorf("failed to seed bank %s: %w", b.Slug, err)
			}
			for _, c := range b.Cards {
				card := Card{BankID: bank.ID, Slug: c.Slug, Name: c.Name}
				if err := tx.Where(Card{Slug: c.Slug}).FirstOrCreate(&card).Error; err != nil {
					return fmt.Errorf("failed to seed card %s: %w", c.Slug, err)
				}
			}
		}
		return nil
	})
}
