package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"sjsage522/newsscraper/internal/scraper"
)

// Header is the metadata written at the top of a scrape log
type Header struct {
	GeneratedAt     time.Time
	RunID           string
	SiteURL         string
	Category        string
	SearchPhrase    string
	SpreadsheetPath string
}

// WriteScrapeLog renders the human readable run summary to w
func WriteScrapeLog(w io.Writer, h Header, records []scraper.NewsRecord) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Scraping Report - %s\n\n", h.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(bw, "Run ID: %s\n", h.RunID)
	fmt.Fprintf(bw, "URL: %s\n", h.SiteURL)
	fmt.Fprintf(bw, "Category: %s\n", h.Category)
	fmt.Fprintf(bw, "Search Phrase: %s\n", h.SearchPhrase)
	fmt.Fprintf(bw, "Excel File: %s\n\n", h.SpreadsheetPath)
	fmt.Fprintf(bw, "Extracted News Articles:\n")

	for _, r := range records {
		fmt.Fprintf(bw, "- Title: %s\n", r.Title)
		fmt.Fprintf(bw, "  Description: %s\n", r.Description)
		fmt.Fprintf(bw, "  Date: %s\n", r.Date)
		fmt.Fprintf(bw, "  Picture Filename: %s\n", r.PictureFilename)
		fmt.Fprintf(bw, "  Search Phrase Count: %d\n\n", r.SearchPhraseCount)
	}

	return bw.Flush()
}

// SaveScrapeLog writes the scrape log to path
func SaveScrapeLog(path string, h Header, records []scraper.NewsRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create scrape log: %w", err)
	}

	if err := WriteScrapeLog(f, h, records); err != nil {
		f.Close()
		return fmt.Errorf("failed to write scrape log: %w", err)
	}
	return f.Close()
}
