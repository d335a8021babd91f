package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/story/1", http.StatusFound)
	})
	mux.HandleFunc("/story/1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title>  Chapter
 One </title></head><body>`+
			`<a href="/story/2">next</a>`+
			`<img src="img/a.png" srcset="a.png 1x, /b.png 2x">`+
			`<div style="background: url('bg.png')"></div>`+
			`<a id="empty" href="">self</a>`+
			`</body></html>`)
	})
	mux.HandleFunc("/based", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><head><base href="/other/"></head><body><a href="x">x</a></body></html>`)
	})
	mux.HandleFunc("/latin1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<html><body><p>caf\xe9</p></body></html>"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `<html><body><p>gone</p></body></html>`)
	})
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
	})
	mux.HandleFunc("/private/page", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><p>secret</p></body></html>`)
	})
	mux.HandleFunc("/agent", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><p>%s</p></body></html>`, r.Header.Get("User-Agent"))
	})
	mux.HandleFunc("/big", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<p>abcdef</p>`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// TestFetch tests retrieving and absolutizing pages.
func TestFetch(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	t.Run("redirect target becomes the base for relative links", func(t *testing.T) {
		t.Parallel()

		doc, err := New(WithClient(srv.Client())).Fetch(context.Background(), srv.URL+"/start")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.URL != srv.URL+"/story/1" {
			t.Errorf("URL = %q, expected %q", doc.URL, srv.URL+"/story/1")
		}
		if doc.BaseURL != doc.URL {
			t.Errorf("BaseURL = %q, expected %q", doc.BaseURL, doc.URL)
		}
		if doc.StatusCode != http.StatusOK {
			t.Errorf("StatusCode = %d, expected 200", doc.StatusCode)
		}

		tests := []struct {
			selector string
			attr     string
			want     string
		}{
			{"a[href]:not(#empty)", "href", srv.URL + "/story/2"},
			{"img", "src", srv.URL + "/story/img/a.png"},
			{"img", "srcset", srv.URL + "/story/a.png 1x, " + srv.URL + "/b.png 2x"},
			{"div", "style", "background: url('" + srv.URL + "/story/bg.png')"},
			{"#empty", "href", ""},
		}
		for _, tt := range tests {
			got := doc.Find(tt.selector).AttrOr(tt.attr, "<missing>")
			if got != tt.want {
				t.Errorf("%s[%s] = %q, expected %q", tt.selector, tt.attr, got, tt.want)
			}
		}
		if got := doc.Title(); got != "Chapter One" {
			t.Errorf("Title() = %q, expected %q", got, "Chapter One")
		}
	})

	t.Run("base element is resolved, used and removed", func(t *testing.T) {
		t.Parallel()

		doc, err := New(WithClient(srv.Client())).Fetch(context.Background(), srv.URL+"/based")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.BaseURL != srv.URL+"/other/" {
			t.Errorf("BaseURL = %q, expected %q", doc.BaseURL, srv.URL+"/other/")
		}
		if got := doc.Find("a").AttrOr("href", ""); got != srv.URL+"/other/x" {
			t.Errorf("href = %q, expected %q", got, srv.URL+"/other/x")
		}
		if doc.Find("base").Length() != 0 {
			t.Error("expected base element to be removed")
		}
	})

	t.Run("declared charset is decoded to UTF-8", func(t *testing.T) {
		t.Parallel()

		doc, err := New(WithClient(srv.Client())).Fetch(context.Background(), srv.URL+"/latin1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := doc.Find("p").Text(); got != "café" {
			t.Errorf("text = %q, expected %q", got, "café")
		}
	})

	t.Run("non-2xx status is not an error", func(t *testing.T) {
		t.Parallel()

		doc, err := New(WithClient(srv.Client())).Fetch(context.Background(), srv.URL+"/missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.StatusCode != http.StatusNotFound {
			t.Errorf("StatusCode = %d, expected 404", doc.StatusCode)
		}
		if doc.OK() {
			t.Error("expected OK() to be false")
		}
		err = doc.CheckStatus()
		if !errors.Is(err, ErrStatus) {
			t.Errorf("expected ErrStatus, got %v", err)
		}
		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.Code != http.StatusNotFound {
			t.Errorf("expected *StatusError with code 404, got %v", err)
		}
	})

	t.Run("robots.txt disallow is enforced", func(t *testing.T) {
		t.Parallel()

		f := New(WithClient(srv.Client()), WithRobots("storyscraper"))
		_, err := f.Fetch(context.Background(), srv.URL+"/private/page")
		if !errors.Is(err, ErrDisallowed) {
			t.Fatalf("expected ErrDisallowed, got %v", err)
		}
		if _, err := f.Fetch(context.Background(), srv.URL+"/story/1"); err != nil {
			t.Errorf("unexpected error for allowed path: %v", err)
		}
	})

	t.Run("robots.txt is ignored unless enabled", func(t *testing.T) {
		t.Parallel()

		if _, err := New(WithClient(srv.Client())).Fetch(context.Background(), srv.URL+"/private/page"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("user agent is sent", func(t *testing.T) {
		t.Parallel()

		doc, err := New(WithClient(srv.Client()), WithUserAgent("test-agent/2")).Fetch(context.Background(), srv.URL+"/agent")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := doc.Find("p").Text(); got != "test-agent/2" {
			t.Errorf("User-Agent = %q, expected %q", got, "test-agent/2")
		}
	})

	t.Run("body is truncated at the size limit", func(t *testing.T) {
		t.Parallel()

		doc, err := New(WithClient(srv.Client()), WithMaxBodySize(5)).Fetch(context.Background(), srv.URL+"/big")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := doc.Find("p").Text(); got != "ab" {
			t.Errorf("text = %q, expected %q", got, "ab")
		}
	})
}

// TestFetchErrors tests the error taxonomy of Fetch.
func TestFetchErrors(t *testing.T) {
	t.Parallel()

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		target := srv.URL + "/story"
		srv.Close()

		_, err := New().Fetch(context.Background(), target)
		if !errors.Is(err, ErrTransport) {
			t.Fatalf("expected ErrTransport, got %v", err)
		}
		var fetchErr *Error
		if !errors.As(err, &fetchErr) {
			t.Fatalf("expected *Error, got %T", err)
		}
		if fetchErr.URL != target {
			t.Errorf("URL = %q, expected %q", fetchErr.URL, target)
		}
	})

	t.Run("invalid URLs", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"", "/relative/path", "ftp://example.com/file", "http://"} {
			_, err := New().Fetch(context.Background(), raw)
			if !errors.Is(err, ErrInvalidURL) {
				t.Errorf("Fetch(%q): expected ErrInvalidURL, got %v", raw, err)
			}
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New(WithClient(srv.Client())).Fetch(ctx, srv.URL)
		if !errors.Is(err, ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled in chain, got %v", err)
		}
	})
}

type fakeRenderer struct {
	markup string
	final  string
	err    error
	calls  []string
}

func (r *fakeRenderer) Render(_ context.Context, url string) (string, string, error) {
	r.calls = append(r.calls, url)
	return r.markup, r.final, r.err
}

// TestFetchWithBrowser tests fetching through a Renderer.
func TestFetchWithBrowser(t *testing.T) {
	t.Parallel()

	t.Run("rendered markup is parsed against the final location", func(t *testing.T) {
		t.Parallel()

		r := &fakeRenderer{
			markup: `<html><body><a href="next">next</a></body></html>`,
			final:  "https://example.com/works/1/",
		}
		doc, err := New(WithBrowser(r)).Fetch(context.Background(), "https://example.com/works/1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(r.calls) != 1 || r.calls[0] != "https://example.com/works/1" {
			t.Errorf("renderer calls = %v", r.calls)
		}
		if got := doc.Find("a").AttrOr("href", ""); got != "https://example.com/works/1/next" {
			t.Errorf("href = %q, expected %q", got, "https://example.com/works/1/next")
		}
		if doc.StatusCode != http.StatusOK {
			t.Errorf("StatusCode = %d, expected 200", doc.StatusCode)
		}
	})

	t.Run("renderer failure is a transport error", func(t *testing.T) {
		t.Parallel()

		r := &fakeRenderer{err: errors.New("chrome crashed")}
		_, err := New(WithBrowser(r)).Fetch(context.Background(), "https://example.com/")
		if !errors.Is(err, ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
	})
}

// TestMakeLinksAbsolute tests reference resolution edge cases.
func TestMakeLinksAbsolute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "relative path",
			input: `<a href="../up">`,
			want:  "https://example.com/up",
		},
		{
			name:  "query only",
			input: `<a href="?page=2">`,
			want:  "https://example.com/a/b?page=2",
		},
		{
			name:  "fragment only",
			input: `<a href="#top">`,
			want:  "https://example.com/a/b#top",
		},
		{
			name:  "already absolute",
			input: `<a href="http://other.example/x">`,
			want:  "http://other.example/x",
		},
		{
			name:  "protocol relative",
			input: `<a href="//cdn.example/x.js">`,
			want:  "https://cdn.example/x.js",
		},
		{
			name:  "unparseable reference is unchanged",
			input: `<a href="http://[::1">`,
			want:  "http://[::1",
		},
		{
			name:  "empty reference is unchanged",
			input: `<a href="">`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := ParseString(tt.input, "https://example.com/a/b")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := doc.Find("a").AttrOr("href", "<missing>"); got != tt.want {
				t.Errorf("href = %q, expected %q", got, tt.want)
			}
		})
	}

	t.Run("style element urls", func(t *testing.T) {
		t.Parallel()

		doc, err := ParseString(`<style>p { background: url("p.png") } q { background: url(data:image/png;base64,AA) }</style>`, "https://example.com/a/b")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := doc.Find("style").Text()
		if !strings.Contains(got, `url("https://example.com/a/p.png")`) {
			t.Errorf("style = %q, expected absolute url", got)
		}
		if !strings.Contains(got, `url(data:image/png;base64,AA)`) {
			t.Errorf("style = %q, expected data url unchanged", got)
		}
	})
}

// TestDocumentHelpers tests the selection helpers on Document.
func TestDocumentHelpers(t *testing.T) {
	t.Parallel()

	doc, err := ParseString(`<html><head><title>T</title></head><body><div id="c"><p>one</p><p>two</p></div></body></html>`, "https://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nodes, err := doc.XPath("//div[@id='c']/p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 2 {
		t.Errorf("XPath matched %d nodes, expected 2", len(nodes))
	}

	if _, err := doc.XPath("//p["); err == nil {
		t.Error("expected error for invalid XPath")
	}

	clones := Clone(doc.Find("#c"))
	if len(clones) != 1 {
		t.Fatalf("Clone returned %d nodes, expected 1", len(clones))
	}
	if clones[0].Parent != nil {
		t.Error("expected cloned node to be detached")
	}
	if doc.Find("#c").Length() != 1 {
		t.Error("expected original node to stay in the document")
	}
}
