package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"partspulse/pricetracker/config"
	"partspulse/pricetracker/internal/scraper"
	"partspulse/pricetracker/internal/storage/postgres"
	"partspulse/pricetracker/internal/tracker"
	"partspulse/pricetracker/logger"
	"partspulse/pricetracker/services/cache"
	"partspulse/pricetracker/services/publisher"
)

func main() {
	godotenv.Load()

	logger.Init()
	log := logger.Default

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("batch_cron", cfg.BatchCron).
		Dur("link_delay", cfg.LinkDelay).
		Msg("Starting price tracker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	store, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}
	defer store.Close()
	log.Info().Msg("Connected to Postgres")

	var blockCache cache.CacheService
	if cfg.MemcacheAddr != "" {
		blockCache = cache.NewMemcacheService(cfg.MemcacheAddr)
		log.Info().Str("addr", cfg.MemcacheAddr).Msg("Connected to Memcache")
	}

	var pub publisher.Publisher
	if cfg.RedisAddr != "" {
		redisPub := publisher.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLen)
		defer redisPub.Close()
		pub = redisPub
		log.Info().Str("addr", cfg.RedisAddr).Str("stream", cfg.RedisStream).Msg("Connected to Redis")
	}

	fetcher := scraper.NewPageFetcher(cfg.FetchTimeout, cfg.HostBlockTTL, blockCache)
	processor := tracker.NewProcessor(store, fetcher, scraper.DefaultRegistry(), pub, cfg.ReconcileAttempts, cfg.ReconcileBackoff)
	scheduler := tracker.NewScheduler(store, processor, cfg.LinkDelay)

	runBatch := func() {
		summary, err := scheduler.RunBatch(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Batch failed to load tracked links")
			return
		}
		log.Info().
			Int("processed", summary.Processed).
			Int("succeeded", summary.Succeeded).
			Int("failed", summary.Failed).
			Int("skipped", summary.Skipped).
			Msg("Scheduled batch complete")
	}

	// The tracker only executes batches; the cadence lives out here.
	c := cron.New()
	if _, err := c.AddFunc(cfg.BatchCron, runBatch); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.BatchCron).Msg("Invalid batch cron spec")
	}
	c.Start()

	// One batch right away so a fresh deploy does not sit idle until
	// the first cron tick.
	go runBatch()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	cancel()
	cronCtx := c.Stop()
	<-cronCtx.Done()

	log.Info().Msg("Shut down gracefully")
}
