package report

import (
	"time"

	"sjsage522/newsscraper/internal/scraper"
	"sjsage522/newsscraper/logger"
	apperrors "sjsage522/newsscraper/pkg/errors"
)

// Writer produces a run's spreadsheet and scrape log
type Writer struct {
	run *scraper.RunContext
	log *logger.Logger
	now func() time.Time
}

// NewWriter creates a report writer for run
func NewWriter(run *scraper.RunContext, log *logger.Logger) *Writer {
	return &Writer{
		run: run,
		log: log.ForComponent("report"),
		now: time.Now,
	}
}

// Save writes the spreadsheet and then the scrape log. Both writes are
// best-effort: a failure is logged and returned, and never prevents the
// other file from being attempted.
func (w *Writer) Save(records []scraper.NewsRecord) []error {
	var errs []error

	spreadsheet := w.run.SpreadsheetPath()
	if err := WriteSpreadsheet(spreadsheet, records); err != nil {
		w.log.Error().Err(err).Str("path", spreadsheet).Msg("Failed to save spreadsheet")
		errs = append(errs, apperrors.NewReport("spreadsheet", err))
	} else {
		w.log.Info().Str("path", spreadsheet).Int("rows", len(records)).Msg("Data saved")
	}

	header := Header{
		GeneratedAt:     w.now(),
		RunID:           w.run.RunID,
		SiteURL:         w.run.SiteURL,
		Category:        w.run.Category,
		SearchPhrase:    w.run.SearchPhrase,
		SpreadsheetPath: spreadsheet,
	}

	logPath := w.run.LogPath()
	if err := SaveScrapeLog(logPath, header, records); err != nil {
		w.log.Error().Err(err).Str("path", logPath).Msg("Failed to save scraping log")
		errs = append(errs, apperrors.NewReport("scrape log", err))
	} else {
		w.log.Info().Str("path", logPath).Msg("Scraping log saved")
	}

	return errs
}
