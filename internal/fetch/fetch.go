package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "storyscraper/1.0 (+https://github.com/nao1215/storyscraper)"

	// DefaultMaxBodySize caps how much of a response body is read.
	DefaultMaxBodySize int64 = 32 << 20

	defaultTimeout = 60 * time.Second
	acceptHeader   = "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8"
)

// Fetcher retrieves pages and returns them as parsed, link-absolutized trees.
// A Fetcher is safe for sequential reuse across crawls.
//
// A fetch checks robots.txt when a policy is set, sends the request with the
// configured user agent, reads at most maxBodySize bytes of the body and
// decodes it to UTF-8 before parsing. When a Renderer is set the page is
// loaded through the browser instead and the rendered DOM is parsed.
//
// Design decision: the Fetcher does not build its own transport. Proxying,
// timeouts, cookies and redirect policy all live in the *http.Client passed
// with WithClient, so the same Fetcher works over a direct connection, a
// SOCKS5 proxy or an embedded Tor daemon.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	detect      bool
	robots      *robotsPolicy
	browser     Renderer
	logger      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets the HTTP client. The client decides proxying, timeouts and
// redirect policy.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum number of body bytes read per response.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithCharsetDetection enables statistical charset detection for responses
// that do not declare their encoding.
func WithCharsetDetection(enabled bool) Option {
	return func(f *Fetcher) {
		f.detect = enabled
	}
}

// WithRobots makes the Fetcher honor robots.txt for the given agent.
func WithRobots(agent string) Option {
	return func(f *Fetcher) {
		f.robots = newRobotsPolicy(agent)
	}
}

// WithBrowser renders pages with r instead of a plain GET.
func WithBrowser(r Renderer) Option {
	return func(f *Fetcher) {
		f.browser = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: defaultTimeout},
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.robots != nil && f.robots.agent == "" {
		f.robots.agent = f.userAgent
	}
	return f
}

// Fetch retrieves rawURL and returns the parsed document with every link
// made absolute against the final response URL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	u, err := parseTarget(rawURL)
	if err != nil {
		return nil, &Error{Kind: ErrInvalidURL, URL: rawURL, Err: err}
	}

	if f.robots != nil && !f.robots.allowed(ctx, f.client, u) {
		return nil, &Error{Kind: ErrDisallowed, URL: rawURL}
	}

	var doc *Document
	if f.browser != nil {
		doc, err = f.render(ctx, u.String())
	} else {
		doc, err = f.get(ctx, u.String())
	}
	if err != nil {
		return nil, err
	}

	doc.BaseURL = MakeLinksAbsolute(doc.Root, doc.URL)

	f.logger.Debug("fetched page",
		"url", rawURL,
		"final_url", doc.URL,
		"status", doc.StatusCode,
	)
	return doc, nil
}

func (f *Fetcher) get(ctx context.Context, target string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, URL: target, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, &Error{Kind: ErrTransport, URL: target, Err: fmt.Errorf("read body: %w", err)}
	}

	final := target
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}

	decoded, err := decodeBody(body, resp.Header.Get("Content-Type"), f.detect)
	if err != nil {
		return nil, &Error{Kind: ErrMalformed, URL: target, Err: fmt.Errorf("decode body: %w", err)}
	}
	root, err := html.Parse(decoded)
	if err != nil {
		return nil, &Error{Kind: ErrMalformed, URL: target, Err: err}
	}

	return &Document{
		Root:       root,
		URL:        final,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	}, nil
}

func (f *Fetcher) render(ctx context.Context, target string) (*Document, error) {
	markup, final, err := f.browser.Render(ctx, target)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, URL: target, Err: err}
	}
	if final == "" {
		final = target
	}

	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, &Error{Kind: ErrMalformed, URL: target, Err: err}
	}

	return &Document{
		Root:       root,
		URL:        final,
		StatusCode: http.StatusOK,
	}, nil
}

func parseTarget(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("missing host")
	}
	return u, nil
}

// ParseString parses markup as if it had been fetched from base. It is
// useful for spiders that receive HTML from somewhere other than the web.
func ParseString(markup, base string) (*Document, error) {
	root, err := html.Parse(bytes.NewBufferString(markup))
	if err != nil {
		return nil, &Error{Kind: ErrMalformed, URL: base, Err: err}
	}
	doc := &Document{Root: root, URL: base, StatusCode: http.StatusOK}
	doc.BaseURL = MakeLinksAbsolute(root, base)
	return doc, nil
}
