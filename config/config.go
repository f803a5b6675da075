package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Database configuration
	DatabaseURL    string
	DatabaseDriver string

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int64

	// Memcache configuration
	MemcacheAddr string
	SnapshotTTL  time.Duration
	// RenderCooldown blocks a source after a failed render
	RenderCooldown time.Duration

	// Rendering configuration
	ChromeAddr        string
	UserAgent         string
	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration

	// Worker configuration
	WorkerConcurrency int
	SourcesFile       string

	// Metrics
	PushgatewayURL string

	// Error file written by the run reporter
	ErrorLogFile string

	// Environment
	Environment string
}

// DefaultUserAgent is presented to every source unless USER_AGENT is set
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamMax, _ := strconv.ParseInt(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"), 10, 64)
	snapshotTTL, _ := strconv.Atoi(getEnv("SNAPSHOT_TTL_SECONDS", "300"))
	cooldown, _ := strconv.Atoi(getEnv("RENDER_COOLDOWN_SECONDS", "300"))
	navTimeout, _ := strconv.Atoi(getEnv("NAVIGATION_TIMEOUT_MS", "60000"))
	selTimeout, _ := strconv.Atoi(getEnv("SELECTOR_TIMEOUT_MS", "20000"))
	concurrency, _ := strconv.Atoi(getEnv("WORKER_CONCURRENCY", "3"))

	return &Config{
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		DatabaseDriver:       getEnv("DATABASE_DRIVER", "postgres"),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "campaign-runs"),
		RedisStreamMaxLength: streamMax,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		SnapshotTTL:          time.Duration(snapshotTTL) * time.Second,
		RenderCooldown:       time.Duration(cooldown) * time.Second,
		ChromeAddr:           getEnv("CHROME_ADDR", ""),
		UserAgent:            getEnv("USER_AGENT", DefaultUserAgent),
		NavigationTimeout:    time.Duration(navTimeout) * time.Millisecond,
		SelectorTimeout:      time.Duration(selTimeout) * time.Millisecond,
		WorkerConcurrency:    concurrency,
		SourcesFile:          getEnv("SOURCES_FILE", ""),
		PushgatewayURL:       getEnv("PUSHGATEWAY_URL", ""),
		ErrorLogFile:         getEnv("ERROR_LOG_FILE", "campaign_errors.log"),
		Environment:          getEnv("CAMPAIGN_ENVIRONMENT", "development"),
	}
}

// Validate checks the settings every command depends on
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q (want postgres or sqlite)", c.DatabaseDriver)
	}
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("NAVIGATION_TIMEOUT_MS must be positive")
	}
	if c.SelectorTimeout <= 0 {
		return fmt.Errorf("SELECTOR_TIMEOUT_MS must be positive")
	}
	if c.WorkerConcurrency <= 0 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
