package scraper

import (
	"context"
	"fmt"
	"time"

	"sjsage522/newsscraper/internal/browser"
)

// fakeArticle is an article card with optional parts
type fakeArticle struct {
	title       *string
	description *string
	image       *string
}

func str(s string) *string { return &s }

func article(title, description, image string) *fakeArticle {
	a := &fakeArticle{title: str(title), description: str(description)}
	if image != "" {
		a.image = str(image)
	}
	return a
}

func (a *fakeArticle) Text(context.Context) (string, error) {
	return "", nil
}

func (a *fakeArticle) Attribute(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (a *fakeArticle) Find(_ context.Context, selector string) (browser.Element, error) {
	sel := DefaultSelectors()
	switch selector {
	case sel.Title:
		if a.title != nil {
			return fakeNode{text: *a.title}, nil
		}
	case sel.Image:
		if a.image != nil {
			return fakeNode{attrs: map[string]string{"src": *a.image}}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
}

func (a *fakeArticle) WaitFor(_ context.Context, selector string, _ time.Duration) (browser.Element, error) {
	if selector == DefaultSelectors().Description && a.description != nil {
		return fakeNode{text: *a.description}, nil
	}
	return nil, fmt.Errorf("%w: %s", browser.ErrWaitTimeout, selector)
}

type fakeNode struct {
	text  string
	attrs map[string]string
}

func (n fakeNode) Text(context.Context) (string, error) { return n.text, nil }

func (n fakeNode) Attribute(_ context.Context, name string) (string, bool, error) {
	v, ok := n.attrs[name]
	return v, ok, nil
}

func (n fakeNode) Find(_ context.Context, selector string) (browser.Element, error) {
	return nil, fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
}

func (n fakeNode) WaitFor(_ context.Context, selector string, _ time.Duration) (browser.Element, error) {
	return nil, fmt.Errorf("%w: %s", browser.ErrWaitTimeout, selector)
}

// fakeBrowser answers the nth article poll with the first counts[n] cards
type fakeBrowser struct {
	articles   []browser.Element
	counts     []int
	categories map[string]bool
	noReload   bool

	opened   bool
	closed   bool
	headless bool
	clicked  []browser.Locator
	scrolls  int
	polls    int
}

func newFakeBrowser(n int, counts ...int) *fakeBrowser {
	articles := make([]browser.Element, n)
	for i := range articles {
		articles[i] = article(fmt.Sprintf("Article %d", i+1), "Summary", fmt.Sprintf("/img/%d.jpg", i+1))
	}
	return &fakeBrowser{
		articles:   articles,
		counts:     counts,
		categories: map[string]bool{"World": true},
	}
}

func (b *fakeBrowser) Open(_ context.Context, _ string, opts browser.OpenOptions) error {
	b.opened = true
	b.headless = opts.Headless
	return nil
}

func (b *fakeBrowser) IsVisible(_ context.Context, loc browser.Locator) (bool, error) {
	return loc.CSS == "span" && b.categories[loc.Text], nil
}

func (b *fakeBrowser) Click(_ context.Context, loc browser.Locator) error {
	b.clicked = append(b.clicked, loc)
	return nil
}

func (b *fakeBrowser) Execute(context.Context, string) error {
	b.scrolls++
	return nil
}

func (b *fakeBrowser) Elements(context.Context, string) ([]browser.Element, error) {
	i := b.polls
	if i >= len(b.counts) {
		i = len(b.counts) - 1
	}
	b.polls++
	return b.articles[:b.counts[i]], nil
}

func (b *fakeBrowser) WaitPresent(_ context.Context, selector string, _ time.Duration) error {
	if b.noReload {
		return fmt.Errorf("%w: %s", browser.ErrWaitTimeout, selector)
	}
	return nil
}

func (b *fakeBrowser) Close() error {
	b.closed = true
	return nil
}

// fakeImages records downloads without touching the network
type fakeImages struct {
	urls []string
}

func (f *fakeImages) Download(_ context.Context, imageURL, title string) string {
	f.urls = append(f.urls, imageURL)
	if imageURL == "" {
		return "placeholder.png"
	}
	return "IMG_" + title + ".jpg"
}
