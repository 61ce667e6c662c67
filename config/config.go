package config

import (
	"os"
	"strconv"
	"time"

	"partspulse/pricetracker/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Postgres connection string for the offer/link store
	DatabaseURL string

	// Redis configuration for the offer-change stream
	RedisAddr         string
	RedisDB           int
	RedisStream       string
	RedisStreamMaxLen int64

	// Memcache configuration for the per-host fetch block cache
	MemcacheAddr string

	// Fetcher configuration
	FetchTimeout time.Duration
	HostBlockTTL time.Duration

	// Scheduler configuration
	LinkDelay time.Duration
	BatchCron string

	// Reconciliation retry configuration
	ReconcileAttempts int
	ReconcileBackoff  time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamMaxLen, _ := strconv.ParseInt(getEnv("REDIS_STREAM_MAX_LEN", "1000"), 10, 64)
	fetchTimeout, _ := strconv.Atoi(getEnv("FETCH_TIMEOUT_MS", "45000"))
	blockSeconds, _ := strconv.Atoi(getEnv("HOST_BLOCK_SECONDS", "500"))
	linkDelay, _ := strconv.Atoi(getEnv("LINK_DELAY_MS", "3000"))
	attempts, _ := strconv.Atoi(getEnv("RECONCILE_ATTEMPTS", "3"))
	backoff, _ := strconv.Atoi(getEnv("RECONCILE_BACKOFF_MS", "2000"))

	return Config{
		DatabaseURL:       getEnv("DATABASE_URL", "postgres://localhost:5432/pricetracker?sslmode=disable"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisDB:           redisDB,
		RedisStream:       getEnv("REDIS_STREAM", "offers"),
		RedisStreamMaxLen: streamMaxLen,
		MemcacheAddr:      getEnv("MEMCACHE_ADDR", ""),
		FetchTimeout:      time.Duration(fetchTimeout) * time.Millisecond,
		HostBlockTTL:      time.Duration(blockSeconds) * time.Second,
		LinkDelay:         time.Duration(linkDelay) * time.Millisecond,
		BatchCron:         getEnv("BATCH_CRON", "@every 6h"),
		ReconcileAttempts: attempts,
		ReconcileBackoff:  time.Duration(backoff) * time.Millisecond,
		Environment:       getEnv("TRACKER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the tracker cannot run with
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.NewConfiguration("DATABASE_URL must be set", nil)
	}
	if c.FetchTimeout <= 0 {
		return errors.NewConfiguration("FETCH_TIMEOUT_MS must be positive", nil)
	}
	if c.ReconcileAttempts < 1 {
		return errors.NewConfiguration("RECONCILE_ATTEMPTS must be at least 1", nil)
	}
	if c.LinkDelay < 0 {
		return errors.NewConfiguration("LINK_DELAY_MS must not be negative", nil)
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
