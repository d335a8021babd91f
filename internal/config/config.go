package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "storyscraper"

	// DefaultTimeout bounds each HTTP request, body included.
	DefaultTimeout = 60 * time.Second

	// DefaultUserAgent identifies storyscraper in HTTP requests.
	DefaultUserAgent = "storyscraper/1.0 (+https://github.com/nao1215/storyscraper)"

	// DefaultMaxBodySize caps how many bytes of a response are read.
	DefaultMaxBodySize = 32 * 1024 * 1024 // 32MB

	// DefaultTorStartupTimeout is how long to wait for the embedded Tor
	// daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// Config holds the options of one storyscraper run. It is populated from
// CLI flags and the config file and passed down explicitly.
type Config struct {
	// Spider is the name of the spider to run.
	Spider string

	// URL is the page to crawl. Empty means the spider's sample URL.
	URL string

	// Output is the file the document is written to. Empty means stdout.
	Output string

	// AutoName derives the output file name from the URL.
	AutoName bool

	// ConfigFilePath is an explicit path to the config file.
	ConfigFilePath string

	// Sites holds the loaded config file, if any.
	Sites *File

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// UserAgent is sent with every request unless a site overrides it.
	UserAgent string

	// MaxBodySize caps how many bytes of a response are read.
	MaxBodySize int64

	// ProxyAddress routes requests through a SOCKS5 proxy at host:port.
	ProxyAddress string

	// UseTor starts an embedded Tor daemon and routes requests through it.
	UseTor bool

	// TorStartupTimeout bounds the embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// Browser renders pages in headless Chrome.
	Browser bool

	// Robots honors robots.txt.
	Robots bool

	// DetectCharset guesses the encoding of pages that do not declare one.
	DetectCharset bool

	// Filters overrides the spider's filter chain with built-in filters.
	Filters []string

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON writes logs as JSON.
	LogJSON bool
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		TorStartupTimeout: DefaultTorStartupTimeout,
	}
}

// XDGConfigDir returns the XDG config directory for storyscraper.
// On Linux: ~/.config/storyscraper
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Spider == "" {
		return ErrNoSpider
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.Output != "" && c.AutoName {
		return ErrConflictingOutputs
	}
	if c.ProxyAddress != "" && c.UseTor {
		return ErrConflictingProxies
	}
	if c.UseTor && c.TorStartupTimeout <= 0 {
		return ErrInvalidTorStartupTimeout
	}
	return nil
}

// Site returns the effective site configuration for domain. Flags set on
// the Config take precedence over the file: a non-empty Filters list
// replaces the site's filters, and the site's user agent applies only when
// UserAgent was left at its default.
func (c *Config) Site(domain string) SiteConfig {
	var site SiteConfig
	if c.Sites != nil {
		site = c.Sites.GetSiteConfig(domain)
	}
	if len(c.Filters) > 0 {
		site.Filters = c.Filters
	}
	if site.UserAgent == "" || (c.UserAgent != "" && c.UserAgent != DefaultUserAgent) {
		site.UserAgent = c.UserAgent
	}
	site.Browser = site.Browser || c.Browser
	return site
}
