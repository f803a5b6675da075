package main

import (
	"context"
	"fmt"

	"github.com/kartfirsat/campaignworker/config"
	"github.com/kartfirsat/campaignworker/internal"
	"github.com/kartfirsat/campaignworker/logger"
	"github.com/kartfirsat/campaignworker/services/cache"
	"github.com/kartfirsat/campaignworker/services/publisher"
	"github.com/kartfirsat/campaignworker/services/store"
)

// Services holds all the initialized services. Events stamps everything
// published during this process with one run id.
type Services struct {
	Store     *store.GormStore
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Events    *publisher.Events
}

// Dependencies returns the services as the crawler factory expects them
func (s *Services) Dependencies() internal.Dependencies {
	return internal.Dependencies{
		Store:  s.Store,
		Cache:  s.Cache,
		Events: s.Events,
	}
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			logger.ForPublisher().Warn().Err(err).Msg("Failed to close publisher")
		}
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			logger.ForStore().Warn().Err(err).Msg("Failed to close database")
		}
	}
}

// openStore connects to the database and makes sure the schema exists
func openStore(ctx context.Context, cfg *config.Config) (*store.GormStore, error) {
	st, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// initializeServices initializes all required services. The database is
// required; memcache and Redis are optional and skipped when unreachable.
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{Publisher: publisher.NopPublisher{}}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	services.Store = st
	logger.Info("Connected to %s database", cfg.DatabaseDriver)

	// Initialize cache service
	if cfg.MemcacheAddr != "" {
		mc := cache.NewMemcacheService(cfg.MemcacheAddr)
		if err := mc.Ping(); err != nil {
			logger.ForCache().Warn().Err(err).Str("addr", cfg.MemcacheAddr).Msg("Memcache unavailable, rendering without snapshots")
		} else {
			services.Cache = mc
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}

	// Initialize publisher
	if cfg.RedisAddr != "" {
		rp := publisher.NewRedisPublisher(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLength)
		if err := rp.Ping(ctx); err != nil {
			logger.ForPublisher().Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, events are not published")
			rp.Close()
		} else {
			services.Publisher = rp
			logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
				cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		}
	}

	services.Events = publisher.NewEvents(services.Publisher)
	return services, nil
}

// seedBanks turns the configured sources into bank and card reference rows
func seedBanks(sources config.Sources) []store.SeedBank {
	banks := make([]store.SeedBank, 0, len(sources))
	for _, src := range sources {
		bank := store.SeedBank{Slug: src.ID, Name: src.Name}
		if bank.Name == "" {
			bank.Name = src.ID
		}
		for _, c := range src.Cards {
			name := c.Name
			if name == "" {
				name = c.Slug
			}
			bank.Cards = append(bank.Cards, store.SeedCard{Slug: c.Slug, Name: name})
		}
		banks = append(banks, bank)
	}
	return banks
}
