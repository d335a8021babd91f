package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/proxy"
)

const (
	// MaxRedirects is the number of redirects a client follows before failing.
	MaxRedirects = 10

	// DefaultTimeout bounds a whole request, body included.
	DefaultTimeout = 60 * time.Second

	checkProxyTimeout = 2 * time.Second
)

// Option configures a client built by NewHTTPClient.
type Option func(*settings)

type settings struct {
	timeout   time.Duration
	proxyAddr string
	cookie    string
	headers   map[string]string
	siteHost  string
}

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithSOCKS5 routes all connections through the SOCKS5 proxy at addr
// (host:port).
func WithSOCKS5(addr string) Option {
	return func(s *settings) {
		s.proxyAddr = addr
	}
}

// WithCookie sends cookie (for example "session=abc") with requests to the
// site host.
func WithCookie(cookie string) Option {
	return func(s *settings) {
		s.cookie = cookie
	}
}

// WithHeaders sets extra headers on requests to the site host.
func WithHeaders(headers map[string]string) Option {
	return func(s *settings) {
		s.headers = headers
	}
}

// WithSiteHost sets the host the cookie and extra headers belong to. A
// leading "www." is ignored. Without it the host of the first request is
// used.
func WithSiteHost(host string) Option {
	return func(s *settings) {
		s.siteHost = host
	}
}

// NewHTTPClient builds an HTTP client.
func NewHTTPClient(opts ...Option) (*http.Client, error) {
	s := settings{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&s)
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	if s.proxyAddr != "" {
		dial, err := socksDialContext(s.proxyAddr)
		if err != nil {
			return nil, err
		}
		base.Proxy = nil
		base.DialContext = dial
		// Each connection holds a proxy circuit.
		base.MaxIdleConns = 10
		base.MaxIdleConnsPerHost = 2
		base.IdleConnTimeout = 30 * time.Second
	}

	var rt http.RoundTripper = base
	if s.cookie != "" || len(s.headers) > 0 {
		rt = &headerInjectingTransport{
			base:    base,
			cookie:  s.cookie,
			headers: s.headers,
			origin:  siteHostOf(s.siteHost),
		}
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport:     rt,
		Timeout:       s.timeout,
		Jar:           jar,
		CheckRedirect: checkRedirect,
	}, nil
}

func checkRedirect(_ *http.Request, via []*http.Request) error {
	if len(via) >= MaxRedirects {
		return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, MaxRedirects)
	}
	return nil
}

func socksDialContext(addr string) (func(ctx context.Context, network, addr string) (net.Conn, error), error) {
	if !IsValidProxyAddress(addr) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, addr)
	}
	dialer, err := proxy.SOCKS5("tcp", addr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return dialer.Dial(network, addr)
	}, nil
}

// IsValidProxyAddress reports whether address is host:port with a non-empty
// host and a port in 1-65535.
func IsValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

const (
	socks5Version  = 0x05
	socks5AuthNone = 0x00
)

// CheckProxy performs a SOCKS5 greeting against addr and reports whether it
// accepts unauthenticated clients.
func CheckProxy(ctx context.Context, addr string) ProxyStatus {
	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return ProxyStatusCannotConnect
	}

	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}
	if resp[0] != socks5Version || resp[1] != socks5AuthNone {
		return ProxyStatusWrongType
	}
	return ProxyStatusOK
}

// headerInjectingTransport adds a cookie and fixed headers to requests for
// the site's host. Redirects to any other host go out without them.
type headerInjectingTransport struct {
	base    http.RoundTripper
	cookie  string
	headers map[string]string

	mu     sync.Mutex
	origin string
}

// siteHostOf reduces a host or host:port to the form hosts are compared in.
func siteHostOf(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

func (t *headerInjectingTransport) sameSite(req *http.Request) bool {
	host := siteHostOf(req.URL.Hostname())

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.origin == "" {
		t.origin = host
	}
	return host == t.origin
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.sameSite(req) {
		return t.base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())

	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
