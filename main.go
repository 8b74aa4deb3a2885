package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sjsage522/newsscraper/config"
	"sjsage522/newsscraper/internal"
	"sjsage522/newsscraper/internal/browser"
	"sjsage522/newsscraper/internal/scraper"
	"sjsage522/newsscraper/logger"
	"sjsage522/newsscraper/services/cache"
	"sjsage522/newsscraper/services/images"
	"sjsage522/newsscraper/services/publisher"
	"sjsage522/newsscraper/services/report"
	"sjsage522/newsscraper/services/worker"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	os.Exit(execute())
}

func execute() int {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	log := logger.FromEnv()

	// Load and validate configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("browser_mode", cfg.BrowserMode).
		Msg("Starting application")

	// Cancel the run on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run, err := scraper.NewRunContext(scraper.RunParams{
		SiteURL:      cfg.SiteURL,
		SearchPhrase: cfg.SearchPhrase,
		Category:     cfg.Category,
		Headless:     cfg.Headless,
	}, cfg.OutputRoot, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize run")
		return 1
	}

	services := initializeServices(ctx, cfg, log)
	defer services.Cleanup()

	fetcher := images.NewFetcher(run.ImagesDir, run.Prefix, run.Timestamp, log,
		images.WithClient(&http.Client{Timeout: cfg.ImageTimeout}),
		images.WithLimiter(rate.NewLimiter(rate.Limit(cfg.ImageRatePerSec), 1)),
		images.WithHostBlocker(cache.NewHostBlocker(services.Cache, cfg.ImageBlockTime)),
		images.WithMaxBytes(cfg.ImageMaxBytes),
	)

	s := scraper.New(newBrowser(cfg, log), run, fetcher, log,
		scraper.WithTiming(scraper.Timing{
			ScrollPause: cfg.ScrollPause,
			WaitTimeout: cfg.WaitTimeout,
		}),
	)

	w := worker.NewWorker(run, s, report.NewWriter(run, log), services.Publisher, log)

	result, err := w.Run(ctx)
	if err != nil {
		log.Error().Err(err).Str("output_dir", run.OutputDir).Msg("Scrape run aborted")
		return 1
	}

	log.Info().
		Int("records", len(result.Records)).
		Int("report_errors", len(result.ReportErrors)).
		Int("publish_errors", len(result.PublishErrors)).
		Dur("elapsed", result.Elapsed).
		Msg("Done")
	return 0
}

func newBrowser(cfg *config.Config, log *logger.Logger) browser.Browser {
	if cfg.BrowserMode == config.BrowserModeStatic {
		return browser.NewStatic(&http.Client{Timeout: 30 * time.Second}, log)
	}

	chrome := browser.NewChrome(log)
	if cfg.WaitTimeout > chrome.ActionTimeout {
		chrome.ActionTimeout = cfg.WaitTimeout
	}
	return chrome
}

// initializeServices connects the optional external services. An
// unreachable memcached or Redis downgrades to the in-process fallback.
func initializeServices(ctx context.Context, cfg *config.Config, log *logger.Logger) *internal.Dependencies {
	services := &internal.Dependencies{
		Cache:     cache.NewMemoryCache(),
		Publisher: publisher.Nop{},
	}

	if cfg.MemcacheAddr != "" {
		mc := cache.NewMemcacheService(cfg.MemcacheAddr, "newsscraper:")
		if err := mc.Ping(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.MemcacheAddr).Msg("Memcache unavailable, using in-memory cache")
		} else {
			services.Cache = mc
			log.Info().Str("addr", cfg.MemcacheAddr).Msg("Connected to Memcache")
		}
	}

	if cfg.RedisAddr != "" {
		rp := publisher.NewRedisPublisher(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLength)
		if err := rp.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, records will not be published")
			rp.Close()
		} else {
			services.Publisher = rp
			log.Info().
				Str("addr", cfg.RedisAddr).
				Int("db", cfg.RedisDB).
				Str("stream", cfg.RedisStream).
				Msg("Connected to Redis")
		}
	}

	return services
}
