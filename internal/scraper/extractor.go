package scraper

import (
	"context"
	"errors"

	"sjsage522/newsscraper/helpers"
	"sjsage522/newsscraper/internal/browser"
	apperrors "sjsage522/newsscraper/pkg/errors"
)

// ExtractNewsData loads the article cards and extracts a record from each
func (s *Scraper) ExtractNewsData(ctx context.Context) ([]NewsRecord, error) {
	s.log.Info().Msg("Extracting news data")

	articles, err := s.LoadArticles(ctx)
	if err != nil {
		return nil, err
	}
	return s.ExtractArticles(ctx, articles)
}

// ExtractArticles turns each card into a NewsRecord in page order. A card
// that cannot be read is logged and skipped. Only cancellation of ctx stops
// the loop early.
func (s *Scraper) ExtractArticles(ctx context.Context, articles []browser.Element) ([]NewsRecord, error) {
	records := make([]NewsRecord, 0, len(articles))

	for i, article := range articles {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		record, err := s.extractArticle(ctx, article)
		if err != nil {
			s.log.WithError(err).Error().Int("index", i).Msg("Error extracting article")
			continue
		}

		records = append(records, record)
		s.log.Info().
			Int("index", i).
			Str("title", record.Title).
			Str("picture_filename", record.PictureFilename).
			Int("search_phrase_count", record.SearchPhraseCount).
			Msg("Extracted news item")
	}

	s.log.Info().Int("extracted", len(records)).Int("loaded", len(articles)).Msg("Extraction finished")
	return records, nil
}

func (s *Scraper) extractArticle(ctx context.Context, article browser.Element) (NewsRecord, error) {
	titleEl, err := article.Find(ctx, s.selectors.Title)
	if err != nil {
		return NewsRecord{}, apperrors.NewExtraction(s.run.SiteURL, "title not found", err)
	}
	title, err := titleEl.Text(ctx)
	if err != nil {
		return NewsRecord{}, apperrors.NewExtraction(s.run.SiteURL, "failed to read title", err)
	}

	description, found, err := s.extractDescription(ctx, article)
	if err != nil {
		return NewsRecord{}, err
	}

	shown := description
	if !found {
		shown = NoDescription
	}

	imageURL := s.extractImageURL(ctx, article)

	return NewsRecord{
		Title:             title,
		Description:       shown,
		Date:              s.now().Format(DateLayout),
		PictureFilename:   s.images.Download(ctx, imageURL, title),
		SearchPhraseCount: s.SearchPhraseCount(title, description),
	}, nil
}

// extractDescription waits for the summary element. A summary that never
// appears is reported as not found so the record keeps NoDescription.
func (s *Scraper) extractDescription(ctx context.Context, article browser.Element) (string, bool, error) {
	el, err := article.WaitFor(ctx, s.selectors.Description, s.timing.WaitTimeout)
	if err != nil {
		if errors.Is(err, browser.ErrWaitTimeout) || errors.Is(err, browser.ErrNotFound) {
			s.log.Warn().Err(err).Msg("Description not found, using fallback")
			return "", false, nil
		}
		return "", false, apperrors.NewExtraction(s.run.SiteURL, "failed to locate description", err)
	}

	text, err := el.Text(ctx)
	if err != nil {
		return "", false, apperrors.NewExtraction(s.run.SiteURL, "failed to read description", err)
	}
	return text, true, nil
}

// extractImageURL returns the card image's absolute source, or "" when the
// card has none.
func (s *Scraper) extractImageURL(ctx context.Context, article browser.Element) string {
	img, err := article.Find(ctx, s.selectors.Image)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to extract image URL")
		return ""
	}

	src, ok, err := img.Attribute(ctx, "src")
	if err != nil || !ok || src == "" {
		s.log.Warn().Err(err).Msg("Image has no source")
		return ""
	}

	imageURL := helpers.ResolveURL(s.run.SiteURL, src)
	s.log.Debug().Str("url", imageURL).Msg("Extracted image URL")
	return imageURL
}

// SearchPhraseCount counts the search phrase in title and description
// independently, ignoring case.
func (s *Scraper) SearchPhraseCount(title, description string) int {
	return helpers.CountPhrase(title, s.run.SearchPhrase) + helpers.CountPhrase(description, s.run.SearchPhrase)
}
