package worker

import (
	"context"
	"encoding/json"
	"time"

	"sjsage522/newsscraper/internal/scraper"
	"sjsage522/newsscraper/logger"
	apperrors "sjsage522/newsscraper/pkg/errors"
	"sjsage522/newsscraper/services/publisher"
	"sjsage522/newsscraper/services/report"
)

// MessageKey is the stream field carrying a published record
const MessageKey = "b64_news"

// Result summarizes a completed run
type Result struct {
	Records       []scraper.NewsRecord
	ReportErrors  []error
	PublishErrors []error
	Elapsed       time.Duration
}

// Message is the published form of one record
type Message struct {
	RunID        string `json:"run_id"`
	SiteURL      string `json:"site_url"`
	Category     string `json:"category"`
	SearchPhrase string `json:"search_phrase"`
	scraper.NewsRecord
}

// Worker runs the scrape pipeline once: open, filter, load, extract,
// report, publish.
type Worker struct {
	run       *scraper.RunContext
	scraper   *scraper.Scraper
	reports   *report.Writer
	publisher publisher.Publisher
	log       *logger.Logger
}

// NewWorker creates a new worker. A nil publisher disables publishing.
func NewWorker(run *scraper.RunContext, s *scraper.Scraper, reports *report.Writer, pub publisher.Publisher, log *logger.Logger) *Worker {
	if pub == nil {
		pub = publisher.Nop{}
	}
	return &Worker{
		run:       run,
		scraper:   s,
		reports:   reports,
		publisher: pub,
		log:       log.ForComponent("worker"),
	}
}

// Run executes the pipeline. The browser session is closed on every return
// path. Errors returned are fatal to the run; report and publish failures
// are logged and collected in the result instead.
func (w *Worker) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	defer func() {
		if err := w.scraper.Close(); err != nil {
			w.log.WithError(err).Error().Msg("Failed to close browser")
		}
	}()

	if err := w.scraper.OpenSite(ctx); err != nil {
		return nil, err
	}
	if err := w.scraper.FilterByCategory(ctx); err != nil {
		return nil, err
	}

	records, err := w.scraper.ExtractNewsData(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Records:       records,
		ReportErrors:  w.reports.Save(records),
		PublishErrors: w.publishRecords(ctx, records),
	}

	result.Elapsed = time.Since(start)
	w.log.Info().
		Int("records", len(records)).
		Dur("elapsed", result.Elapsed).
		Str("output_dir", w.run.OutputDir).
		Msg("Scrape run finished")
	return result, nil
}

// publishRecords sends every record to the publisher. Failures are logged
// and returned; they never abort the run.
func (w *Worker) publishRecords(ctx context.Context, records []scraper.NewsRecord) []error {
	var errs []error
	for _, record := range records {
		data, err := json.Marshal(Message{
			RunID:        w.run.RunID,
			SiteURL:      w.run.SiteURL,
			Category:     w.run.Category,
			SearchPhrase: w.run.SearchPhrase,
			NewsRecord:   record,
		})
		if err != nil {
			errs = append(errs, apperrors.NewPublisher("failed to encode record", err))
			w.log.Error().Err(err).Str("title", record.Title).Msg("Failed to encode record")
			continue
		}

		if err := w.publisher.Publish(ctx, MessageKey, data); err != nil {
			errs = append(errs, apperrors.NewPublisher("failed to publish record", err))
			w.log.Error().Err(err).Str("title", record.Title).Msg("Failed to publish record")
		}
	}
	return errs
}
