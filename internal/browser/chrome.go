package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"sjsage522/newsscraper/helpers"
	"sjsage522/newsscraper/logger"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// Chrome drives a local Chrome through the DevTools protocol
type Chrome struct {
	// ActionTimeout bounds clicks, queries and reads
	ActionTimeout time.Duration
	// PageLoadTimeout bounds the initial navigation
	PageLoadTimeout time.Duration

	log *logger.Logger

	allocCancel context.CancelFunc
	tabCancel   context.CancelFunc
	tabCtx      context.Context
}

// NewChrome creates a Chrome browser. No process is started until Open.
func NewChrome(log *logger.Logger) *Chrome {
	return &Chrome{
		ActionTimeout:   30 * time.Second,
		PageLoadTimeout: 60 * time.Second,
		log:             log.ForComponent("chrome"),
	}
}

// Open launches Chrome and navigates to url
func (c *Chrome) Open(ctx context.Context, url string, opts OpenOptions) error {
	if c.tabCtx != nil {
		return fmt.Errorf("browser session already open")
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.WindowSize(1280, 800),
		chromedp.UserAgent(helpers.RandomUserAgent()),
	)
	// Chrome refuses to start its sandbox as root
	if os.Geteuid() == 0 {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}

	var ctxOpts []chromedp.ContextOption
	if c.log.IsDebugEnabled() {
		ctxOpts = append(ctxOpts, chromedp.WithLogf(func(format string, args ...interface{}) {
			c.log.Debug().Msgf(format, args...)
		}))
	}

	// The session outlives ctx; Close ends it.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, ctxOpts...)
	c.allocCancel, c.tabCancel, c.tabCtx = allocCancel, tabCancel, tabCtx

	c.log.Info().Str("url", url).Bool("headless", opts.Headless).Msg("Launching Chrome")

	// The first Run starts the process bound to the context it is given, so
	// it must be the session context and not a bounded action context.
	if err := chromedp.Run(tabCtx); err != nil {
		c.Close()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	runCtx, cancel, err := c.actionContext(ctx, c.PageLoadTimeout)
	if err != nil {
		c.Close()
		return err
	}
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		c.Close()
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

// actionContext derives a bounded context from the tab that is also
// cancelled when ctx is.
func (c *Chrome) actionContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	if c.tabCtx == nil {
		return nil, nil, ErrNotOpen
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	runCtx, cancel := context.WithTimeout(c.tabCtx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}, nil
}

// IsVisible reports whether the first match has a rendered box
func (c *Chrome) IsVisible(ctx context.Context, loc Locator) (bool, error) {
	runCtx, cancel, err := c.actionContext(ctx, c.ActionTimeout)
	if err != nil {
		return false, err
	}
	defer cancel()

	script, err := visibilityScript(loc)
	if err != nil {
		return false, err
	}

	var visible bool
	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, &visible)); err != nil {
		return false, fmt.Errorf("failed to check visibility of %s: %w", loc, err)
	}
	return visible, nil
}

// Click clicks the first element matching loc once it is visible
func (c *Chrome) Click(ctx context.Context, loc Locator) error {
	runCtx, cancel, err := c.actionContext(ctx, c.ActionTimeout)
	if err != nil {
		return err
	}
	defer cancel()

	var action chromedp.QueryAction
	if loc.Text != "" {
		action = chromedp.Click(loc.XPath(), chromedp.BySearch)
	} else {
		action = chromedp.Click(loc.CSS, chromedp.ByQuery)
	}

	if err := chromedp.Run(runCtx, action); err != nil {
		return c.waitError(ctx, err, loc.String())
	}
	return nil
}

// Execute evaluates script in the page
func (c *Chrome) Execute(ctx context.Context, script string) error {
	runCtx, cancel, err := c.actionContext(ctx, c.ActionTimeout)
	if err != nil {
		return err
	}
	defer cancel()

	// Scripts such as window.scrollBy evaluate to undefined, which cannot be
	// decoded; a trailing expression gives the evaluation a value.
	var done bool
	if err := chromedp.Run(runCtx, chromedp.Evaluate(script+";\ntrue", &done)); err != nil {
		return fmt.Errorf("failed to execute script: %w", err)
	}
	return nil
}

// Elements returns the nodes currently matching selector without waiting
func (c *Chrome) Elements(ctx context.Context, selector string) ([]Element, error) {
	runCtx, cancel, err := c.actionContext(ctx, c.ActionTimeout)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var nodes []*cdp.Node
	if err := chromedp.Run(runCtx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", selector, err)
	}

	elements := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		elements = append(elements, &chromeElement{chrome: c, node: n})
	}
	return elements, nil
}

// WaitPresent blocks until selector matches at least one node
func (c *Chrome) WaitPresent(ctx context.Context, selector string, timeout time.Duration) error {
	runCtx, cancel, err := c.actionContext(ctx, timeout)
	if err != nil {
		return err
	}
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return c.waitError(ctx, err, selector)
	}
	return nil
}

// Close shuts the tab and the Chrome process
func (c *Chrome) Close() error {
	if c.tabCtx == nil {
		return nil
	}

	c.log.Info().Msg("Closing browser")
	err := chromedp.Cancel(c.tabCtx)
	c.tabCancel()
	c.allocCancel()
	c.tabCtx, c.tabCancel, c.allocCancel = nil, nil, nil

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

// waitError maps an expired action deadline to ErrWaitTimeout. Cancellation
// by the caller is returned as is.
func (c *Chrome) waitError(ctx context.Context, err error, what string) error {
	if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrWaitTimeout, what)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func visibilityScript(loc Locator) (string, error) {
	var lookup string
	if loc.Text != "" {
		xpath, err := json.Marshal(loc.XPath())
		if err != nil {
			return "", err
		}
		lookup = fmt.Sprintf("document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue", xpath)
	} else {
		css, err := json.Marshal(loc.CSS)
		if err != nil {
			return "", err
		}
		lookup = fmt.Sprintf("document.querySelector(%s)", css)
	}

	return fmt.Sprintf(`(() => {
	const el = %s;
	return !!el && el.getClientRects().length > 0 && getComputedStyle(el).visibility !== "hidden";
})()`, lookup), nil
}

type chromeElement struct {
	chrome *Chrome
	node   *cdp.Node
}

func (e *chromeElement) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

func (e *chromeElement) Text(ctx context.Context) (string, error) {
	runCtx, cancel, err := e.chrome.actionContext(ctx, e.chrome.ActionTimeout)
	if err != nil {
		return "", err
	}
	defer cancel()

	var text string
	if err := chromedp.Run(runCtx, chromedp.Text(e.ids(), &text, chromedp.ByNodeID)); err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return text, nil
}

func (e *chromeElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	runCtx, cancel, err := e.chrome.actionContext(ctx, e.chrome.ActionTimeout)
	if err != nil {
		return "", false, err
	}
	defer cancel()

	var (
		value string
		ok    bool
	)
	if err := chromedp.Run(runCtx, chromedp.AttributeValue(e.ids(), name, &value, &ok, chromedp.ByNodeID)); err != nil {
		return "", false, fmt.Errorf("failed to read attribute %s: %w", name, err)
	}
	return value, ok, nil
}

func (e *chromeElement) Find(ctx context.Context, selector string) (Element, error) {
	runCtx, cancel, err := e.chrome.actionContext(ctx, e.chrome.ActionTimeout)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var nodes []*cdp.Node
	err = chromedp.Run(runCtx, chromedp.Nodes(selector, &nodes,
		chromedp.ByQueryAll, chromedp.FromNode(e.node), chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", selector, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return &chromeElement{chrome: e.chrome, node: nodes[0]}, nil
}

func (e *chromeElement) WaitFor(ctx context.Context, selector string, timeout time.Duration) (Element, error) {
	runCtx, cancel, err := e.chrome.actionContext(ctx, timeout)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var nodes []*cdp.Node
	if err := chromedp.Run(runCtx, chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.FromNode(e.node))); err != nil {
		return nil, e.chrome.waitError(ctx, err, selector)
	}
	return &chromeElement{chrome: e.chrome, node: nodes[0]}, nil
}
