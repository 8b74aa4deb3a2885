package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"sjsage522/newsscraper/helpers"
	"sjsage522/newsscraper/logger"
	apperrors "sjsage522/newsscraper/pkg/errors"
	"sjsage522/newsscraper/services/cache"

	"golang.org/x/time/rate"
)

const (
	// Placeholder is the filename recorded when no image could be stored
	Placeholder = "placeholder.png"

	// DefaultMaxBytes caps a single image download
	DefaultMaxBytes int64 = 10 << 20

	titlePrefixLength = 15
)

// Fetcher downloads article images into one run's images directory
type Fetcher struct {
	Dir       string
	Prefix    string
	Timestamp string

	client   *http.Client
	limiter  *rate.Limiter
	blocker  *cache.HostBlocker
	maxBytes int64
	log      *logger.Logger
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithClient sets the HTTP client used for downloads
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

// WithLimiter paces downloads
func WithLimiter(limiter *rate.Limiter) Option {
	return func(f *Fetcher) { f.limiter = limiter }
}

// WithHostBlocker skips hosts that recently rate limited us
func WithHostBlocker(blocker *cache.HostBlocker) Option {
	return func(f *Fetcher) { f.blocker = blocker }
}

// WithMaxBytes caps the size of a downloaded image. Larger images are
// discarded.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// NewFetcher creates a fetcher writing into dir. prefix is the normalized
// category and timestamp the run timestamp.
func NewFetcher(dir, prefix, timestamp string, log *logger.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		Dir:       dir,
		Prefix:    prefix,
		Timestamp: timestamp,
		maxBytes:  DefaultMaxBytes,
		log:       log.ForComponent("images"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Filename returns the deterministic image filename for an article title
func (f *Fetcher) Filename(title string) string {
	return fmt.Sprintf("%s_%s_%s.jpg", f.Prefix, helpers.SanitizeTitlePrefix(title, titlePrefixLength), f.Timestamp)
}

// Download stores the image at imageURL and returns its filename. Any
// failure is logged and yields Placeholder; an empty URL returns it without
// touching the network.
func (f *Fetcher) Download(ctx context.Context, imageURL, title string) string {
	if imageURL == "" {
		return Placeholder
	}

	filename := f.Filename(title)
	if err := f.fetch(ctx, imageURL, filepath.Join(f.Dir, filename)); err != nil {
		f.log.Error().Err(err).Str("url", imageURL).Msg("Failed to download image")
		return Placeholder
	}
	return filename
}

func (f *Fetcher) fetch(ctx context.Context, imageURL, path string) error {
	u, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewDownload(imageURL, "invalid image URL", err)
	}

	if f.blocker.Blocked(u.Host) {
		return apperrors.NewRateLimit(u.Host, "block window")
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return apperrors.NewDownload(u.Host, "download pacing interrupted", err)
		}
	}

	body, err := helpers.FetchSimply(ctx, f.client, imageURL)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeRateLimit) {
			if blockErr := f.blocker.Block(u.Host); blockErr != nil {
				f.log.Warn().Err(blockErr).Str("host", u.Host).Msg("Failed to store rate limit block")
			}
		}
		return err
	}
	defer body.Close()

	if err := writeFile(path, body, f.maxBytes); err != nil {
		return apperrors.NewDownload(u.Host, "failed to write image", err)
	}

	f.log.Info().Str("path", path).Msg("Downloaded image")
	return nil
}

// writeFile copies at most limit bytes from r to path. A read or write
// failure, or a body longer than limit, removes the partial file.
func writeFile(path string, r io.Reader, limit int64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	n, err := io.Copy(file, io.LimitReader(r, limit+1))
	if err == nil && n > limit {
		err = fmt.Errorf("image exceeds %d bytes", limit)
	}
	if err != nil {
		file.Close()
		os.Remove(path)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
