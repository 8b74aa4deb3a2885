package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeConfiguration represents missing or malformed run parameters
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeNavigation represents failures opening or driving the site
	ErrorTypeNavigation ErrorType = "navigation"
	// ErrorTypeCategoryNotFound represents a missing category filter control
	ErrorTypeCategoryNotFound ErrorType = "category_not_found"
	// ErrorTypeWaitTimeout represents a bounded element wait that expired
	ErrorTypeWaitTimeout ErrorType = "wait_timeout"
	// ErrorTypeExtraction represents a failure reading one article card
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeDownload represents image fetch or write errors
	ErrorTypeDownload ErrorType = "download"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeReport represents spreadsheet or log write errors
	ErrorTypeReport ErrorType = "report"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
)

// ScrapeError represents a scrape-run error
type ScrapeError struct {
	Type    ErrorType
	Site    string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Site == "" {
		if e.Err != nil {
			return fmt.Sprintf("[%s] %s - %v", e.Type, e.Message, e.Err)
		}
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Site, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Site, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// New creates a new ScrapeError
func New(errType ErrorType, site, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Site:    site,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// IsType reports whether any error in err's chain is a ScrapeError of type t
func IsType(err error, t ErrorType) bool {
	var se *ScrapeError
	if stderrors.As(err, &se) {
		return se.Type == t
	}
	return false
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// NewNavigation creates a new navigation error
func NewNavigation(site, message string, err error) *ScrapeError {
	return New(ErrorTypeNavigation, site, message, err)
}

// NewCategoryNotFound creates the error raised when no control carries the category text
func NewCategoryNotFound(site, category string) *ScrapeError {
	return New(ErrorTypeCategoryNotFound, site, fmt.Sprintf("category '%s' not found", category), nil)
}

// NewWaitTimeout creates a new wait timeout error
func NewWaitTimeout(site, message string, err error) *ScrapeError {
	return New(ErrorTypeWaitTimeout, site, message, err)
}

// NewExtraction creates a new extraction error
func NewExtraction(site, message string, err error) *ScrapeError {
	return New(ErrorTypeExtraction, site, message, err)
}

// NewDownload creates a new download error
func NewDownload(site, message string, err error) *ScrapeError {
	return New(ErrorTypeDownload, site, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(site string, retryAfter string) *ScrapeError {
	message := "rate limited"
	if retryAfter != "" {
		message = fmt.Sprintf("rate limited; retry after %s", retryAfter)
	}
	return New(ErrorTypeRateLimit, site, message, nil)
}

// NewReport creates a new report error
func NewReport(message string, err error) *ScrapeError {
	return New(ErrorTypeReport, "", message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(message string, err error) *ScrapeError {
	return New(ErrorTypePublisher, "", message, err)
}
