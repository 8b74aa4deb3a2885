package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a lookup matches no element
	ErrNotFound = errors.New("element not found")
	// ErrWaitTimeout is returned when a bounded wait expires before an element appears
	ErrWaitTimeout = errors.New("timed out waiting for element")
	// ErrNotOpen is returned when an operation runs before Open or after Close
	ErrNotOpen = errors.New("browser session is not open")
)

// Locator selects page elements by CSS selector and, optionally, by exact
// visible text.
type Locator struct {
	CSS  string
	Text string
}

// CSS returns a locator matching a CSS selector
func CSS(selector string) Locator {
	return Locator{CSS: selector}
}

// WithText returns a locator matching tag elements whose text equals text
func WithText(tag, text string) Locator {
	return Locator{CSS: tag, Text: text}
}

func (l Locator) String() string {
	if l.Text == "" {
		return l.CSS
	}
	return fmt.Sprintf("%s[text()=%s]", l.CSS, XPathLiteral(l.Text))
}

// XPath renders a text locator as an XPath expression. CSS must be a plain
// element name for text locators.
func (l Locator) XPath() string {
	tag := l.CSS
	if tag == "" {
		tag = "*"
	}
	return fmt.Sprintf("//%s[text()=%s]", tag, XPathLiteral(l.Text))
}

// XPathLiteral quotes s for use inside an XPath expression
func XPathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}

	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if p != "" {
			quoted = append(quoted, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

// OpenOptions configures a new browser session
type OpenOptions struct {
	Headless bool
}

// Element is a handle to one node of the live page. Handles are only valid
// while the session that produced them is open.
type Element interface {
	// Text returns the element's visible text
	Text(ctx context.Context) (string, error)

	// Attribute returns the named attribute and whether it was present
	Attribute(ctx context.Context, name string) (string, bool, error)

	// Find returns the first descendant matching selector or ErrNotFound
	Find(ctx context.Context, selector string) (Element, error)

	// WaitFor blocks up to timeout for a descendant matching selector.
	// It returns an error wrapping ErrWaitTimeout when none appears.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) (Element, error)
}

// Browser is the web automation contract the scraper drives
type Browser interface {
	// Open starts a session pointed at url
	Open(ctx context.Context, url string, opts OpenOptions) error

	// IsVisible reports whether an element matching the locator is shown
	IsVisible(ctx context.Context, loc Locator) (bool, error)

	// Click clicks the first element matching the locator
	Click(ctx context.Context, loc Locator) error

	// Execute runs a script in the page, discarding its result
	Execute(ctx context.Context, script string) error

	// Elements returns every element currently matching selector
	Elements(ctx context.Context, selector string) ([]Element, error)

	// WaitPresent blocks up to timeout for an element matching selector
	WaitPresent(ctx context.Context, selector string, timeout time.Duration) error

	// Close releases the session. It is safe to call more than once.
	Close() error
}
