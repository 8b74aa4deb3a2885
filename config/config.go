package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "sjsage522/newsscraper/pkg/errors"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultWorkItemPath is used when ROBOT_CONFIG is not set
	DefaultWorkItemPath = "devdata/workitems/work-item.json"

	BrowserModeChrome = "chrome"
	BrowserModeStatic = "static"
)

// WorkItem is the structured run record. JSON work items parse as YAML.
type WorkItem struct {
	SiteURL      string `yaml:"site_url"`
	SearchPhrase string `yaml:"search_phrase"`
	Category     string `yaml:"category"`
	Headless     *bool  `yaml:"headless"`
}

// Config represents the application configuration
type Config struct {
	// Run parameters
	SiteURL      string
	SearchPhrase string
	Category     string
	Headless     bool

	// Output
	OutputRoot string

	// Browser configuration
	BrowserMode string
	ScrollPause time.Duration
	WaitTimeout time.Duration

	// Image download configuration
	ImageTimeout    time.Duration
	ImageRatePerSec float64
	ImageBlockTime  time.Duration
	ImageMaxBytes   int64
	MemcacheAddr    string

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Environment
	Environment string
}

// LoadConfig reads the work item named by ROBOT_CONFIG and applies
// environment overrides and defaults. Without ROBOT_CONFIG a missing default
// work item is tolerated and Validate reports any required field that is
// still empty. A work item named explicitly must exist.
func LoadConfig() (*Config, error) {
	path, explicit := os.Getenv("ROBOT_CONFIG"), true
	if path == "" {
		path, explicit = DefaultWorkItemPath, false
	}

	item, err := LoadWorkItem(path)
	if err != nil && (explicit || !os.IsNotExist(err)) {
		return nil, apperrors.NewConfiguration(fmt.Sprintf("failed to load work item %s", path), err)
	}
	if item == nil {
		item = &WorkItem{}
	}

	headless := true
	if item.Headless != nil {
		headless = *item.Headless
	}
	if v := os.Getenv("HEADLESS"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, apperrors.NewConfiguration("invalid HEADLESS value", err)
		}
		headless = parsed
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	maxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"))
	ratePerSec, _ := strconv.ParseFloat(getEnv("IMAGE_RATE_PER_SECOND", "5"), 64)
	maxBytes, _ := strconv.ParseInt(getEnv("IMAGE_MAX_BYTES", "10485760"), 10, 64)

	return &Config{
		SiteURL:              getEnv("SITE_URL", item.SiteURL),
		SearchPhrase:         getEnv("SEARCH_PHRASE", item.SearchPhrase),
		Category:             getEnv("CATEGORY", item.Category),
		Headless:             headless,
		OutputRoot:           getEnv("OUTPUT_ROOT", "output"),
		BrowserMode:          strings.ToLower(getEnv("BROWSER_MODE", BrowserModeChrome)),
		ScrollPause:          getSeconds("SCROLL_PAUSE_SECONDS", 4),
		WaitTimeout:          getSeconds("WAIT_TIMEOUT_SECONDS", 10),
		ImageTimeout:         getSeconds("IMAGE_TIMEOUT_SECONDS", 15),
		ImageRatePerSec:      ratePerSec,
		ImageBlockTime:       getSeconds("IMAGE_BLOCK_SECONDS", 300),
		ImageMaxBytes:        maxBytes,
		MemcacheAddr:         os.Getenv("MEMCACHE_ADDR"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "news"),
		RedisStreamMaxLength: maxLength,
		Environment:          getEnv("SCRAPER_ENVIRONMENT", "development"),
	}, nil
}

// LoadWorkItem parses a work item file
func LoadWorkItem(path string) (*WorkItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var item WorkItem
	if err := yaml.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("failed to parse work item: %w", err)
	}
	return &item, nil
}

// Validate checks that the required run parameters are present and sane
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.SiteURL) == "" {
		missing = append(missing, "site_url")
	}
	if strings.TrimSpace(c.SearchPhrase) == "" {
		missing = append(missing, "search_phrase")
	}
	if strings.TrimSpace(c.Category) == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return apperrors.NewConfiguration("missing required fields: "+strings.Join(missing, ", "), nil)
	}

	u, err := url.Parse(c.SiteURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.NewConfiguration(fmt.Sprintf("site_url %q is not an absolute http(s) URL", c.SiteURL), err)
	}

	switch c.BrowserMode {
	case BrowserModeChrome, BrowserModeStatic:
	default:
		return apperrors.NewConfiguration(fmt.Sprintf("unknown BROWSER_MODE %q", c.BrowserMode), nil)
	}

	if c.ImageRatePerSec <= 0 {
		return apperrors.NewConfiguration("IMAGE_RATE_PER_SECOND must be positive", nil)
	}
	if c.ImageMaxBytes <= 0 {
		return apperrors.NewConfiguration("IMAGE_MAX_BYTES must be positive", nil)
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

func getSeconds(key string, defaultValue int) time.Duration {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil || n < 0 {
		n = defaultValue
	}
	return time.Duration(n) * time.Second
}
