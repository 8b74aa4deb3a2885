package scraper

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sjsage522/newsscraper/helpers"

	"github.com/google/uuid"
)

// TimestampLayout formats the run timestamp shared by every output file
const TimestampLayout = "20060102150405"

// RunParams are the resolved run parameters
type RunParams struct {
	SiteURL      string
	SearchPhrase string
	Category     string
	Headless     bool
}

// RunContext is the immutable per-run configuration. All artifacts of one run
// share its Prefix and Timestamp.
type RunContext struct {
	RunParams

	RunID     string
	Prefix    string
	Timestamp string
	OutputDir string
	ImagesDir string
}

// NewRunContext fixes the run timestamp at now and creates
// <root>/<PREFIX>_<timestamp>/images. Existing directories are reused.
func NewRunContext(params RunParams, root string, now time.Time) (*RunContext, error) {
	prefix := helpers.NormalizeCategory(params.Category)
	timestamp := now.UTC().Format(TimestampLayout)

	outputDir := filepath.Join(root, fmt.Sprintf("%s_%s", prefix, timestamp))
	imagesDir := filepath.Join(outputDir, "images")

	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", imagesDir, err)
	}

	return &RunContext{
		RunParams: params,
		RunID:     uuid.NewString(),
		Prefix:    prefix,
		Timestamp: timestamp,
		OutputDir: outputDir,
		ImagesDir: imagesDir,
	}, nil
}

// SpreadsheetPath returns the path of the run's spreadsheet
func (r *RunContext) SpreadsheetPath() string {
	return filepath.Join(r.OutputDir, fmt.Sprintf("%s_news_data_%s.xlsx", r.Prefix, r.Timestamp))
}

// LogPath returns the path of the run's plain-text scrape log
func (r *RunContext) LogPath() string {
	return filepath.Join(r.OutputDir, fmt.Sprintf("%s_scrape_log_%s.txt", r.Prefix, r.Timestamp))
}
