package scraper

import (
	"time"

	"sjsage522/newsscraper/internal/browser"
	"sjsage522/newsscraper/logger"
)

// Scraper drives one browser session through a single news run
type Scraper struct {
	browser   browser.Browser
	run       *RunContext
	images    ImageDownloader
	selectors Selectors
	timing    Timing
	log       *logger.Logger
	now       func() time.Time
}

// Option configures a Scraper
type Option func(*Scraper)

// WithSelectors overrides the default selectors
func WithSelectors(selectors Selectors) Option {
	return func(s *Scraper) { s.selectors = selectors }
}

// WithTiming overrides the default pauses and wait bounds
func WithTiming(timing Timing) Option {
	return func(s *Scraper) { s.timing = timing }
}

// WithClock sets the clock used to date records
func WithClock(now func() time.Time) Option {
	return func(s *Scraper) { s.now = now }
}

// New creates a scraper for run using b as its browser session
func New(b browser.Browser, run *RunContext, images ImageDownloader, log *logger.Logger, opts ...Option) *Scraper {
	s := &Scraper{
		browser:   b,
		run:       run,
		images:    images,
		selectors: DefaultSelectors(),
		timing:    DefaultTiming(),
		log: log.WithFields(logger.Fields{
			"component": "scraper",
			"category":  run.Category,
			"run_id":    run.RunID,
		}),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.log.Info().
		Str("url", run.SiteURL).
		Str("search_phrase", run.SearchPhrase).
		Str("output_dir", run.OutputDir).
		Msg("Initialized news scraper")
	return s
}

// Close releases the browser session
func (s *Scraper) Close() error {
	s.log.Info().Msg("Closing all browsers")
	return s.browser.Close()
}
