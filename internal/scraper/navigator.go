package scraper

import (
	"context"
	"errors"

	"sjsage522/newsscraper/internal/browser"
	apperrors "sjsage522/newsscraper/pkg/errors"
)

// OpenSite starts the browser session at the run's site URL
func (s *Scraper) OpenSite(ctx context.Context) error {
	s.log.Info().
		Str("url", s.run.SiteURL).
		Bool("headless", s.run.Headless).
		Msg("Opening site")

	err := s.browser.Open(ctx, s.run.SiteURL, browser.OpenOptions{Headless: s.run.Headless})
	if err != nil {
		return apperrors.NewNavigation(s.run.SiteURL, "failed to open site", err)
	}
	return nil
}

// FilterByCategory clicks the control whose text equals the run category and
// waits for the filtered page to show a heading.
func (s *Scraper) FilterByCategory(ctx context.Context) error {
	category := s.run.Category
	loc := browser.WithText(s.selectors.CategoryTag, category)

	s.log.Info().Msg("Filtering news by category")

	visible, err := s.browser.IsVisible(ctx, loc)
	if err != nil {
		return apperrors.NewNavigation(s.run.SiteURL, "failed to look up category control", err)
	}
	if !visible {
		s.log.Error().Msg("Category not found on the site. Please check the category name.")
		return apperrors.NewCategoryNotFound(s.run.SiteURL, category)
	}

	if err := s.browser.Click(ctx, loc); err != nil {
		return apperrors.NewNavigation(s.run.SiteURL, "failed to click category control", err)
	}

	if err := s.browser.WaitPresent(ctx, s.selectors.ReloadMarker, s.timing.WaitTimeout); err != nil {
		if errors.Is(err, browser.ErrWaitTimeout) {
			return apperrors.NewWaitTimeout(s.run.SiteURL, "filtered page did not load", err)
		}
		return apperrors.NewNavigation(s.run.SiteURL, "failed waiting for filtered page", err)
	}
	return nil
}
