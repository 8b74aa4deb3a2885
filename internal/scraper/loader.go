package scraper

import (
	"context"
	"time"

	"sjsage522/newsscraper/internal/browser"
	apperrors "sjsage522/newsscraper/pkg/errors"
)

const scrollScript = "window.scrollBy(0, document.body.scrollHeight/3)"

// LoadArticles scrolls until MaxArticles cards are present or a poll finds
// no more cards than the previous one, and returns at most MaxArticles
// handles in page order.
func (s *Scraper) LoadArticles(ctx context.Context) ([]browser.Element, error) {
	s.log.Info().Msg("Scrolling and loading news articles")

	var articles []browser.Element
	previous := 0

	for len(articles) < MaxArticles {
		if err := s.browser.Execute(ctx, scrollScript); err != nil {
			return nil, apperrors.NewNavigation(s.run.SiteURL, "failed to scroll", err)
		}

		if err := sleep(ctx, s.timing.ScrollPause); err != nil {
			return nil, err
		}

		current, err := s.browser.Elements(ctx, s.selectors.ArticleList)
		if err != nil {
			return nil, apperrors.NewNavigation(s.run.SiteURL, "failed to query articles", err)
		}
		articles = current
		s.log.Info().Int("count", len(articles)).Msg("Loaded articles")

		if len(articles) == previous {
			s.log.Info().Msg("No more articles loaded, exiting scroll loop")
			break
		}
		previous = len(articles)
	}

	if len(articles) > MaxArticles {
		articles = articles[:MaxArticles]
	}
	return articles, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
