package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sjsage522/newsscraper/helpers"
	"sjsage522/newsscraper/logger"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Static serves the browser contract from server-rendered HTML. Scripts are
// not run, so scrolling never loads more content and clicking a control
// follows the nearest link.
type Static struct {
	Client *http.Client

	log *logger.Logger
	doc *goquery.Document
	url *url.URL
}

// NewStatic creates a static HTML browser
func NewStatic(client *http.Client, log *logger.Logger) *Static {
	return &Static{
		Client: client,
		log:    log.ForComponent("static_browser"),
	}
}

// Open fetches url and parses it. Headless has no meaning here.
func (s *Static) Open(ctx context.Context, rawURL string, _ OpenOptions) error {
	return s.load(ctx, rawURL)
}

func (s *Static) load(ctx context.Context, rawURL string) error {
	body, finalURL, err := helpers.FetchPage(ctx, s.Client, rawURL)
	if err != nil {
		return err
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return fmt.Errorf("HTML parsing error: %w", err)
	}

	s.doc, s.url = doc, finalURL
	s.log.Debug().Str("url", finalURL.String()).Msg("Loaded page")
	return nil
}

func (s *Static) match(loc Locator) (*goquery.Selection, error) {
	if s.doc == nil {
		return nil, ErrNotOpen
	}

	sel := s.doc.Find(loc.CSS)
	if loc.Text != "" {
		sel = sel.FilterFunction(func(_ int, el *goquery.Selection) bool {
			return hasTextNode(el, loc.Text)
		})
	}
	return sel, nil
}

// IsVisible reports whether any element matches loc. Without a renderer
// presence stands in for visibility.
func (s *Static) IsVisible(_ context.Context, loc Locator) (bool, error) {
	sel, err := s.match(loc)
	if err != nil {
		return false, err
	}
	return sel.Length() > 0, nil
}

// Click follows the href of the first match or of its closest link ancestor
func (s *Static) Click(ctx context.Context, loc Locator) error {
	sel, err := s.match(loc)
	if err != nil {
		return err
	}
	if sel.Length() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, loc)
	}

	target := sel.First()
	href, ok := target.Attr("href")
	if !ok {
		href, ok = target.Closest("a[href]").Attr("href")
	}
	if !ok || strings.TrimSpace(href) == "" {
		return fmt.Errorf("element %s is not a link", loc)
	}

	return s.load(ctx, helpers.ResolveURL(s.url.String(), href))
}

// Execute is a no-op; static pages do not run scripts
func (s *Static) Execute(_ context.Context, script string) error {
	if s.doc == nil {
		return ErrNotOpen
	}
	s.log.Debug().Str("script", script).Msg("Skipping script on static page")
	return nil
}

// Elements returns every element matching selector
func (s *Static) Elements(_ context.Context, selector string) ([]Element, error) {
	sel, err := s.match(CSS(selector))
	if err != nil {
		return nil, err
	}

	elements := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, el *goquery.Selection) {
		elements = append(elements, &staticElement{sel: el, base: s.url})
	})
	return elements, nil
}

// WaitPresent succeeds immediately when selector matches; a static page never
// changes, so a miss is reported as a timeout without waiting.
func (s *Static) WaitPresent(_ context.Context, selector string, _ time.Duration) error {
	sel, err := s.match(CSS(selector))
	if err != nil {
		return err
	}
	if sel.Length() == 0 {
		return fmt.Errorf("%w: %s", ErrWaitTimeout, selector)
	}
	return nil
}

// Close drops the parsed page
func (s *Static) Close() error {
	s.doc, s.url = nil, nil
	return nil
}

// hasTextNode reports whether one of el's direct text children equals text
// exactly, matching XPath's [text()='...'] predicate.
func hasTextNode(el *goquery.Selection, text string) bool {
	for _, n := range el.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode && c.Data == text {
				return true
			}
		}
	}
	return false
}

type staticElement struct {
	sel  *goquery.Selection
	base *url.URL
}

func (e *staticElement) Text(_ context.Context) (string, error) {
	return strings.TrimSpace(e.sel.Text()), nil
}

// Attribute resolves src and href against the page URL, as a live DOM
// property read would.
func (e *staticElement) Attribute(_ context.Context, name string) (string, bool, error) {
	v, ok := e.sel.Attr(name)
	if ok && e.base != nil && (name == "src" || name == "href") && v != "" {
		v = helpers.ResolveURL(e.base.String(), v)
	}
	return v, ok, nil
}

func (e *staticElement) Find(_ context.Context, selector string) (Element, error) {
	found := e.sel.Find(selector)
	if found.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return &staticElement{sel: found.First(), base: e.base}, nil
}

func (e *staticElement) WaitFor(_ context.Context, selector string, _ time.Duration) (Element, error) {
	found := e.sel.Find(selector)
	if found.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrWaitTimeout, selector)
	}
	return &staticElement{sel: found.First(), base: e.base}, nil
}
