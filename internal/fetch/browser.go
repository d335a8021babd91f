package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Renderer loads a page in a browser and returns the rendered markup and the
// URL the browser ended up on.
type Renderer interface {
	Render(ctx context.Context, url string) (markup string, finalURL string, err error)
}

// ChromeRenderer renders pages with headless Chrome through chromedp.
type ChromeRenderer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	settle      time.Duration
}

// ChromeOption configures a ChromeRenderer.
type ChromeOption func(*chromeSettings)

type chromeSettings struct {
	settle   time.Duration
	execPath string
	proxy    string
}

// WithSettleTime sets how long to wait after the body is ready so scripts
// can finish building the page. The default is one second.
func WithSettleTime(d time.Duration) ChromeOption {
	return func(s *chromeSettings) {
		s.settle = d
	}
}

// WithExecPath sets the Chrome binary to launch.
func WithExecPath(path string) ChromeOption {
	return func(s *chromeSettings) {
		s.execPath = path
	}
}

// WithBrowserProxy routes browser traffic through a proxy such as
// socks5://127.0.0.1:9050.
func WithBrowserProxy(proxy string) ChromeOption {
	return func(s *chromeSettings) {
		s.proxy = proxy
	}
}

// NewChromeRenderer creates a renderer. Chrome is started lazily on the first
// Render call. Call Close to shut it down.
func NewChromeRenderer(opts ...ChromeOption) *ChromeRenderer {
	settings := chromeSettings{settle: time.Second}
	for _, opt := range opts {
		opt(&settings)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if settings.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(settings.execPath))
	}
	if settings.proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(settings.proxy))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	return &ChromeRenderer{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		settle:      settings.settle,
	}
}

// Render navigates to url and returns the outer HTML of the document.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, string, error) {
	tabCtx, cancel := chromedp.NewContext(r.allocCtx)
	defer cancel()

	// Tie the tab to the caller's deadline and cancellation.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var markup, location string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.settle),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", "", ctxErr
		}
		return "", "", fmt.Errorf("render %s: %w", url, err)
	}
	return markup, location, nil
}

// Close shuts down the browser.
func (r *ChromeRenderer) Close() {
	if r.allocCancel != nil {
		r.allocCancel()
	}
}
