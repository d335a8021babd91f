package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"golang.org/x/net/html"

	"github.com/nao1215/storyscraper/internal/config"
	"github.com/nao1215/storyscraper/internal/fetch"
	"github.com/nao1215/storyscraper/internal/log"
	"github.com/nao1215/storyscraper/internal/report"
	"github.com/nao1215/storyscraper/internal/spider"
	"github.com/nao1215/storyscraper/internal/spiders"
)

// pageSpider extracts <main> from whatever page it is given.
type pageSpider struct {
	spider.Descriptor
}

func (p *pageSpider) Parse(ctx context.Context, s *spider.Session, url string) ([]*html.Node, error) {
	doc, err := s.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	s.SetMeta("title", doc.Title())
	return fetch.Clone(doc.Find("main")), nil
}

const testPage = `<html><head><title>Test Story</title></head>
<body><nav>menu</nav><main><p>Once <a href="/next">upon</a> a time.</p><script>x()</script></main></body></html>`

// seenRequest records the last request a test server received.
type seenRequest struct {
	mu     sync.Mutex
	path   string
	header http.Header
}

func (s *seenRequest) get() (string, http.Header) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path, s.header
}

func newTestServer(t *testing.T) (*httptest.Server, *seenRequest) {
	t.Helper()

	seen := &seenRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.mu.Lock()
		seen.path = r.URL.Path
		seen.header = r.Header.Clone()
		seen.mu.Unlock()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(testPage))
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func testRegistry(t *testing.T, srv *httptest.Server) *spiders.Registry {
	t.Helper()

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("failed to parse server URL: %v", err)
	}
	r := spiders.NewRegistry()
	err = r.Register(func() spider.Spider {
		return &pageSpider{Descriptor: spider.Descriptor{
			SpiderName:      "page",
			SpiderDomain:    u.Hostname(),
			SpiderSampleURL: srv.URL + "/sample",
		}}
	})
	if err != nil {
		t.Fatalf("failed to register spider: %v", err)
	}
	return r
}

func testConfig(url string) *config.Config {
	cfg := config.NewConfig()
	cfg.Spider = "page"
	cfg.URL = url
	cfg.Sites = &config.File{Sites: make(map[string]config.SiteConfig)}
	return cfg
}

// TestNewCrawlCmd tests the crawl command flags.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()
	tests := []struct {
		name      string
		shorthand string
	}{
		{"output", "o"},
		{"auto-name", "O"},
		{"config", "c"},
		{"timeout", "t"},
		{"user-agent", ""},
		{"max-body-size", ""},
		{"proxy", ""},
		{"tor", ""},
		{"tor-timeout", ""},
		{"browser", ""},
		{"robots", ""},
		{"detect-charset", ""},
		{"filters", ""},
		{"format", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
		})
	}
}

// TestBuildConfig tests turning arguments and flags into a Config.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("spider and url", func(t *testing.T) {
		t.Parallel()
		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-o", "out.html", "--filters", "strip-scripts,strip-comments", "-t", "5s"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		cfg, err := buildConfig(cmd, []string{"ao3", "https://archiveofourown.org/works/1"}, spiders.Default())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Spider != "ao3" || cfg.URL != "https://archiveofourown.org/works/1" {
			t.Errorf("unexpected spider %q and url %q", cfg.Spider, cfg.URL)
		}
		if cfg.Output != "out.html" {
			t.Errorf("expected output out.html, got %q", cfg.Output)
		}
		if len(cfg.Filters) != 2 || cfg.Filters[1] != "strip-comments" {
			t.Errorf("unexpected filters %v", cfg.Filters)
		}
		if cfg.Timeout.String() != "5s" {
			t.Errorf("expected timeout 5s, got %s", cfg.Timeout)
		}
	})

	t.Run("spider from url", func(t *testing.T) {
		t.Parallel()
		cmd := NewCrawlCmd()
		cfg, err := buildConfig(cmd, []string{"https://www.gutenberg.org/ebooks/11"}, spiders.Default())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Spider != "gutenberg" || cfg.URL != "https://www.gutenberg.org/ebooks/11" {
			t.Errorf("unexpected spider %q and url %q", cfg.Spider, cfg.URL)
		}
	})

	t.Run("unknown domain", func(t *testing.T) {
		t.Parallel()
		_, err := buildConfig(NewCrawlCmd(), []string{"https://example.com/"}, spiders.Default())
		if !errors.Is(err, spiders.ErrUnknownSpider) {
			t.Errorf("expected ErrUnknownSpider, got %v", err)
		}
	})

	t.Run("missing explicit config", func(t *testing.T) {
		t.Parallel()
		cmd := NewCrawlCmd()
		missing := filepath.Join(t.TempDir(), "missing.yaml")
		if err := cmd.ParseFlags([]string{"-c", missing}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		_, err := buildConfig(cmd, []string{"ao3"}, spiders.Default())
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("explicit config", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "config.yaml")
		data := "sites:\n  archiveofourown.org:\n    cookie: \"session=abc\"\n"
		if err := os.WriteFile(path, []byte(data), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-c", path}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		cfg, err := buildConfig(cmd, []string{"ao3"}, spiders.Default())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := cfg.Site("www.archiveofourown.org").Cookie; got != "session=abc" {
			t.Errorf("expected cookie from config, got %q", got)
		}
	})
}

// TestRunCrawl tests complete crawls against a local server.
func TestRunCrawl(t *testing.T) {
	t.Parallel()

	t.Run("to stdout", func(t *testing.T) {
		t.Parallel()
		srv, _ := newTestServer(t)

		var stdout, stderr bytes.Buffer
		err := runCrawl(context.Background(), testConfig(srv.URL+"/story"), testRegistry(t, srv), log.Discard(),
			crawlOutput{stdout: &stdout, stderr: &stderr})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := stdout.String()
		if !strings.HasPrefix(out, "<!doctype html>\n") {
			t.Errorf("expected a document on stdout, got:\n%s", out)
		}
		for _, want := range []string{"<title>Test Story</title>", `href="` + srv.URL + `/next"`} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "x()") || strings.Contains(out, "menu") {
			t.Errorf("unexpected content in output:\n%s", out)
		}
		if stderr.Len() != 0 {
			t.Errorf("expected no summary without a format, got %q", stderr.String())
		}
	})

	t.Run("to file with summary", func(t *testing.T) {
		t.Parallel()
		srv, _ := newTestServer(t)
		cfg := testConfig(srv.URL + "/story")
		cfg.Output = filepath.Join(t.TempDir(), "out", "story.html")

		var stdout bytes.Buffer
		err := runCrawl(context.Background(), cfg, testRegistry(t, srv), log.Discard(),
			crawlOutput{stdout: &stdout, stderr: &bytes.Buffer{}, format: report.FormatJSON})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(cfg.Output)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}

		var summary report.CrawlSummary
		if err := json.Unmarshal(stdout.Bytes(), &summary); err != nil {
			t.Fatalf("invalid summary %q: %v", stdout.String(), err)
		}
		if summary.Bytes != int64(len(content)) {
			t.Errorf("expected %d bytes in summary, got %d", len(content), summary.Bytes)
		}
		if summary.Spider != "page" || summary.Output != cfg.Output {
			t.Errorf("unexpected summary %+v", summary)
		}
		if summary.Title() != "Test Story" {
			t.Errorf("expected title in summary, got %q", summary.Title())
		}
	})

	t.Run("sample url", func(t *testing.T) {
		t.Parallel()
		srv, last := newTestServer(t)

		err := runCrawl(context.Background(), testConfig(""), testRegistry(t, srv), log.Discard(),
			crawlOutput{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if path, _ := last.get(); path != "/sample" {
			t.Errorf("expected sample URL to be crawled, got %q", path)
		}
	})

	t.Run("site settings", func(t *testing.T) {
		t.Parallel()
		srv, last := newTestServer(t)
		u, _ := url.Parse(srv.URL)

		cfg := testConfig(srv.URL + "/story")
		cfg.Sites.Sites[u.Hostname()] = config.SiteConfig{
			Cookie:    "session=abc",
			Headers:   map[string]string{"X-Test": "yes"},
			UserAgent: "site-agent",
			Filters:   []string{"strip-comments"},
		}

		var stdout bytes.Buffer
		err := runCrawl(context.Background(), cfg, testRegistry(t, srv), log.Discard(),
			crawlOutput{stdout: &stdout, stderr: &bytes.Buffer{}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, header := last.get()
		if got := header.Get("Cookie"); got != "session=abc" {
			t.Errorf("expected cookie, got %q", got)
		}
		if got := header.Get("X-Test"); got != "yes" {
			t.Errorf("expected header, got %q", got)
		}
		if got := header.Get("User-Agent"); got != "site-agent" {
			t.Errorf("expected site user agent, got %q", got)
		}
		if !strings.Contains(stdout.String(), "x()") {
			t.Errorf("expected scripts to survive a chain without strip-scripts:\n%s", stdout.String())
		}
	})

	t.Run("unknown spider", func(t *testing.T) {
		t.Parallel()
		srv, _ := newTestServer(t)
		cfg := testConfig(srv.URL)
		cfg.Spider = "nope"

		err := runCrawl(context.Background(), cfg, testRegistry(t, srv), log.Discard(),
			crawlOutput{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}})
		if !errors.Is(err, spiders.ErrUnknownSpider) {
			t.Errorf("expected ErrUnknownSpider, got %v", err)
		}
	})

	t.Run("unknown filter", func(t *testing.T) {
		t.Parallel()
		srv, _ := newTestServer(t)
		cfg := testConfig(srv.URL)
		cfg.Filters = []string{"nope"}

		err := runCrawl(context.Background(), cfg, testRegistry(t, srv), log.Discard(),
			crawlOutput{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}})
		if err == nil || !strings.Contains(err.Error(), "nope") {
			t.Errorf("expected unknown filter error, got %v", err)
		}
	})

	t.Run("failed crawl writes nothing", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Error("expected a hijacker")
				return
			}
			conn, _, _ := hj.Hijack()
			conn.Close()
		}))
		defer srv.Close()

		cfg := testConfig(srv.URL)
		cfg.Output = filepath.Join(t.TempDir(), "story.html")
		var stdout bytes.Buffer
		err := runCrawl(context.Background(), cfg, testRegistry(t, srv), log.Discard(),
			crawlOutput{stdout: &stdout, stderr: &bytes.Buffer{}, format: report.FormatText})

		var stageErr *spider.StageError
		if !errors.As(err, &stageErr) {
			t.Fatalf("expected *spider.StageError, got %v", err)
		}
		if !errors.Is(err, fetch.ErrTransport) {
			t.Errorf("expected a transport error, got %v", err)
		}
		if _, statErr := os.Stat(cfg.Output); !os.IsNotExist(statErr) {
			t.Errorf("expected no output file, got %v", statErr)
		}
		if stdout.Len() != 0 {
			t.Errorf("expected no summary, got %q", stdout.String())
		}
	})

	t.Run("invalid proxy", func(t *testing.T) {
		t.Parallel()
		srv, _ := newTestServer(t)
		cfg := testConfig(srv.URL)
		cfg.ProxyAddress = "no-port"

		err := runCrawl(context.Background(), cfg, testRegistry(t, srv), log.Discard(),
			crawlOutput{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}})
		if err == nil || !strings.Contains(err.Error(), "invalid proxy address") {
			t.Errorf("expected invalid proxy address error, got %v", err)
		}
	})
}

// TestCrawlCmdExecute tests the crawl command end to end through cobra.
func TestCrawlCmdExecute(t *testing.T) {
	t.Parallel()

	t.Run("validation error", func(t *testing.T) {
		t.Parallel()
		cmd := NewRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"crawl", "ao3", "-o", "x.html", "-O"})
		err := cmd.Execute()
		if !errors.Is(err, config.ErrConflictingOutputs) {
			t.Errorf("expected ErrConflictingOutputs, got %v", err)
		}
	})

	t.Run("argument count", func(t *testing.T) {
		t.Parallel()
		cmd := NewRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"crawl"})
		if err := cmd.Execute(); err == nil {
			t.Error("expected an error without arguments")
		}
	})
}

// TestAutoName tests deriving output file names from URLs.
func TestAutoName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url      string
		contains string
	}{
		{"https://archiveofourown.org/works/4370", "4370"},
		{"https://www.gutenberg.org/cache/epub/11/pg11-images.html", "pg11"},
		{"https://archiveofourown.org/", "archiveofourown"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			got := autoName(tt.url, "fallback")
			if !strings.HasSuffix(got, ".html") {
				t.Errorf("expected .html suffix, got %q", got)
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("expected %q to contain %q", got, tt.contains)
			}
			if strings.ContainsAny(got, "/:?") {
				t.Errorf("expected a safe file name, got %q", got)
			}
			if strings.Count(got, ".html") != 1 {
				t.Errorf("expected a single .html extension, got %q", got)
			}
			if strings.HasPrefix(got, "www") {
				t.Errorf("expected www. to be stripped, got %q", got)
			}
		})
	}

	if got := autoName("::", "page"); got != "page.html" {
		t.Errorf("expected fallback name, got %q", got)
	}
}
