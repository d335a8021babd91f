package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kennygrant/sanitize"
	"github.com/spf13/cobra"

	"github.com/nao1215/storyscraper/internal/config"
	"github.com/nao1215/storyscraper/internal/fetch"
	"github.com/nao1215/storyscraper/internal/filter"
	"github.com/nao1215/storyscraper/internal/log"
	"github.com/nao1215/storyscraper/internal/report"
	"github.com/nao1215/storyscraper/internal/spider"
	"github.com/nao1215/storyscraper/internal/spiders"
	"github.com/nao1215/storyscraper/internal/transport"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <spider|url> [url]",
		Short: "Crawl a story into an HTML document",
		Long: `Crawl runs a spider over a story and writes the cleaned HTML5 document.

The first argument names the spider. If it is a URL instead, the spider is
chosen by the URL's domain. Without a URL the spider crawls its sample story.

Examples:
  # Crawl a work from the Archive of Our Own to stdout
  storyscraper crawl ao3 https://archiveofourown.org/works/4370

  # Pick the spider from the URL and name the file after it
  storyscraper crawl https://www.gutenberg.org/cache/epub/11/pg11-images.html -O

  # Write to a file, keeping only two filters
  storyscraper crawl ao3 https://archiveofourown.org/works/4370 \
    -o out/story.html --filters strip-scripts,strip-comments

  # Crawl through Tor
  storyscraper crawl --tor ao3 https://archiveofourown.org/works/4370 -O`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Write the document to this file (creates directories if needed)")
	cmd.Flags().BoolP("auto-name", "O", false,
		"Write the document to a file named after the URL")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .storyscraper in current, XDG config or home directory)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum number of bytes read from a response")
	cmd.Flags().String("proxy", "",
		"Route requests through a SOCKS5 proxy at host:port")
	cmd.Flags().Bool("tor", false,
		"Route requests through an embedded Tor daemon")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")
	cmd.Flags().Bool("browser", false,
		"Render pages in headless Chrome before extraction")
	cmd.Flags().Bool("robots", false,
		"Honor robots.txt")
	cmd.Flags().Bool("detect-charset", false,
		"Guess the encoding of pages that do not declare one")
	cmd.Flags().StringSlice("filters", nil,
		"Comma-separated built-in filters replacing the spider's chain ("+strings.Join(filter.BuiltinNames(), ", ")+")")
	cmd.Flags().String("format", "",
		"Print a crawl summary in this format (text, json, markdown)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	registry := spiders.Default()

	cfg, err := buildConfig(cmd, args, registry)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.New(cmd.ErrOrStderr(), log.Options{Verbose: cfg.Verbose, JSON: cfg.LogJSON})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	return runCrawl(ctx, cfg, registry, logger, crawlOutput{
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
		format: report.Format(format),
	})
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string, registry *spiders.Registry) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	if isURL(args[0]) {
		sp, err := registry.Match(args[0])
		if err != nil {
			return nil, err
		}
		if len(args) > 1 {
			return nil, fmt.Errorf("unexpected argument %q after URL", args[1])
		}
		cfg.Spider = sp.Name()
		cfg.URL = args[0]
	} else {
		cfg.Spider = args[0]
		if len(args) > 1 {
			cfg.URL = args[1]
		}
	}

	var err error
	if cfg.Output, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.AutoName, err = flags.GetBool("auto-name"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
		return nil, err
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return nil, err
	}
	if cfg.Browser, err = flags.GetBool("browser"); err != nil {
		return nil, err
	}
	if cfg.Robots, err = flags.GetBool("robots"); err != nil {
		return nil, err
	}
	if cfg.DetectCharset, err = flags.GetBool("detect-charset"); err != nil {
		return nil, err
	}
	if cfg.Filters, err = flags.GetStringSlice("filters"); err != nil {
		return nil, err
	}
	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.LogJSON = getBoolFlag(cmd, "log-json")

	// An explicit config path must exist; otherwise a missing file just
	// means no site settings.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.Sites, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.Sites = &config.File{Sites: make(map[string]config.SiteConfig)}
	}

	return cfg, nil
}

// getBoolFlag reads a flag from the command or the root's persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

func isURL(arg string) bool {
	return strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")
}

// crawlOutput holds where runCrawl writes.
type crawlOutput struct {
	stdout io.Writer
	stderr io.Writer
	format report.Format
}

// runCrawl executes one crawl described by cfg.
func runCrawl(ctx context.Context, cfg *config.Config, registry *spiders.Registry, logger *slog.Logger, out crawlOutput) error {
	sp, err := registry.Lookup(cfg.Spider)
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(registry.Names(), ", "))
	}

	target := cfg.URL
	if target == "" {
		target = sp.SampleURL()
	}
	domain := siteDomain(target, sp)
	site := cfg.Site(domain)

	opts := []spider.Option{spider.WithLogger(logger)}
	if len(site.Filters) > 0 {
		chain, err := filter.Resolve(site.Filters)
		if err != nil {
			return err
		}
		opts = append(opts, spider.WithFilters(chain))
	}

	fetcher, cleanup, err := newFetcher(ctx, cfg, domain, site, logger)
	if err != nil {
		return err
	}
	defer cleanup()
	opts = append(opts, spider.WithFetcher(fetcher))

	scraper := spider.New(sp, opts...)

	output := cfg.Output
	if cfg.AutoName {
		output = autoName(target, sp.Name())
	}

	logger.Info("starting crawl", "spider", sp.Name(), "url", target, "output", output)
	start := time.Now()

	var written int64
	if output != "" {
		written, err = scraper.CrawlToFile(ctx, target, output)
	} else {
		written, err = scraper.CrawlTo(ctx, target, out.stdout)
	}
	if err != nil {
		return err
	}

	summary := newSummary(scraper, target, output, written, time.Since(start))
	return writeSummary(out, summary, output)
}

// siteDomain returns the domain site settings are looked up under.
func siteDomain(target string, sp spider.Spider) string {
	if u, err := url.Parse(target); err == nil && u.Hostname() != "" {
		return spider.NormalizeDomain(u.Hostname())
	}
	return spider.NormalizeDomain(sp.Domain())
}

// newFetcher builds the fetcher for one crawl. The site cookie and headers
// are only sent to domain. The returned cleanup releases the embedded Tor
// daemon and the browser, if any.
func newFetcher(ctx context.Context, cfg *config.Config, domain string, site config.SiteConfig, logger *slog.Logger) (*fetch.Fetcher, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	clientOpts := []transport.Option{
		transport.WithTimeout(cfg.Timeout),
		transport.WithCookie(site.Cookie),
		transport.WithHeaders(site.Headers),
		transport.WithSiteHost(domain),
	}

	var client *http.Client
	var proxyAddr string
	var err error
	switch {
	case cfg.UseTor:
		logger.Info("starting embedded Tor daemon; this may take a few minutes")
		tor := transport.NewEmbeddedTor(transport.WithStartupTimeout(cfg.TorStartupTimeout))
		if err := tor.Start(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to start embedded Tor: %w", err)
		}
		cleanups = append(cleanups, func() {
			logger.Info("stopping embedded Tor daemon")
			if err := tor.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		})
		proxyAddr = tor.SocksAddr()
		logger.Info("embedded Tor daemon started", "socksAddr", proxyAddr)
		client, err = tor.NewHTTPClient(clientOpts...)
	case cfg.ProxyAddress != "":
		if !transport.IsValidProxyAddress(cfg.ProxyAddress) {
			return nil, nil, fmt.Errorf("%w: %s", transport.ErrInvalidProxyAddress, cfg.ProxyAddress)
		}
		if status := transport.CheckProxy(ctx, cfg.ProxyAddress); status != transport.ProxyStatusOK {
			return nil, nil, fmt.Errorf("proxy check failed for %s: %w", cfg.ProxyAddress, status.Err())
		}
		logger.Info("proxy connection verified", "address", cfg.ProxyAddress)
		proxyAddr = cfg.ProxyAddress
		client, err = transport.NewHTTPClient(append(clientOpts, transport.WithSOCKS5(proxyAddr))...)
	default:
		client, err = transport.NewHTTPClient(clientOpts...)
	}
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	fetchOpts := []fetch.Option{
		fetch.WithClient(client),
		fetch.WithUserAgent(site.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithCharsetDetection(cfg.DetectCharset),
		fetch.WithLogger(logger),
	}
	if cfg.Robots {
		fetchOpts = append(fetchOpts, fetch.WithRobots(""))
	}
	if site.Browser {
		var chromeOpts []fetch.ChromeOption
		if proxyAddr != "" {
			chromeOpts = append(chromeOpts, fetch.WithBrowserProxy("socks5://"+proxyAddr))
		}
		renderer := fetch.NewChromeRenderer(chromeOpts...)
		cleanups = append(cleanups, renderer.Close)
		fetchOpts = append(fetchOpts, fetch.WithBrowser(renderer))
	}

	return fetch.New(fetchOpts...), cleanup, nil
}

// autoName derives an output file name from target's host and path.
func autoName(target, fallback string) string {
	name := ""
	if u, err := url.Parse(target); err == nil {
		name = strings.TrimPrefix(u.Hostname(), "www.") + u.Path
		name = strings.TrimSuffix(strings.TrimSuffix(name, ".html"), ".htm")
		name = sanitize.BaseName(strings.ReplaceAll(name, "/", "-"))
	}
	name = strings.Trim(name, "-")
	if name == "" {
		name = sanitize.BaseName(fallback)
	}
	return name + ".html"
}

func newSummary(scraper *spider.Scraper, target, output string, written int64, elapsed time.Duration) *report.CrawlSummary {
	summary := &report.CrawlSummary{
		Spider:   scraper.Spider().Name(),
		URL:      target,
		Output:   output,
		Bytes:    written,
		Duration: elapsed,
	}
	for k, v := range scraper.Metadata().All() {
		summary.Metadata = append(summary.Metadata, report.Entry{Key: k, Value: v})
	}
	return summary
}

// writeSummary prints the crawl summary. When the document went to stdout
// the summary goes to stderr, and only if a format was requested.
func writeSummary(out crawlOutput, summary *report.CrawlSummary, output string) error {
	dst := out.stdout
	if output == "" {
		if out.format == "" {
			return nil
		}
		dst = out.stderr
	}

	w, err := report.NewWriter(out.format, dst)
	if err != nil {
		return err
	}
	if _, err := w.WriteSummary(summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
