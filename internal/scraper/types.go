package scraper

import (
	"context"
	"time"
)

const (
	// MaxArticles caps how many article cards one run reads
	MaxArticles = 20

	// NoDescription is recorded when an article card has no summary
	NoDescription = "No description available"

	// DateLayout formats NewsRecord.Date
	DateLayout = "2006-01-02"
)

// NewsRecord is the extracted, owned form of one article card
type NewsRecord struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	Date              string `json:"date"`
	PictureFilename   string `json:"picture_filename"`
	SearchPhraseCount int    `json:"search_phrase_count"`
}

// Selectors contains CSS selectors for the elements the scraper reads
type Selectors struct {
	ArticleList  string
	Title        string
	Description  string
	Image        string
	CategoryTag  string
	ReloadMarker string
}

// DefaultSelectors returns the selectors for the stream layout the scraper targets
func DefaultSelectors() Selectors {
	return Selectors{
		ArticleList:  "li.stream-item",
		Title:        "h3.stream-item-title",
		Description:  "p[data-test-locator='stream-item-summary']",
		Image:        "img",
		CategoryTag:  "span",
		ReloadMarker: "h3",
	}
}

// Timing holds the fixed pauses and wait bounds
type Timing struct {
	ScrollPause time.Duration
	WaitTimeout time.Duration
}

// DefaultTiming returns a 4s scroll settle and 10s element waits
func DefaultTiming() Timing {
	return Timing{
		ScrollPause: 4 * time.Second,
		WaitTimeout: 10 * time.Second,
	}
}

// ImageDownloader stores an article image and returns the filename to record.
// It never fails; unusable images map to a placeholder name.
type ImageDownloader interface {
	Download(ctx context.Context, imageURL, title string) string
}
