package fetch

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// robotsPolicy caches robots.txt per scheme and host.
type robotsPolicy struct {
	agent string

	mu    sync.Mutex
	hosts map[string]*robotstxt.RobotsData
}

func newRobotsPolicy(agent string) *robotsPolicy {
	return &robotsPolicy{
		agent: agent,
		hosts: make(map[string]*robotstxt.RobotsData),
	}
}

// allowed reports whether u may be fetched. robots.txt files that cannot be
// retrieved allow everything; 5xx responses disallow everything, following
// robotstxt.FromResponse.
func (p *robotsPolicy) allowed(ctx context.Context, client *http.Client, u *url.URL) bool {
	key := u.Scheme + "://" + u.Host

	p.mu.Lock()
	data, ok := p.hosts[key]
	p.mu.Unlock()

	if !ok {
		data = p.load(ctx, client, key)
		p.mu.Lock()
		p.hosts[key] = data
		p.mu.Unlock()
	}
	if data == nil {
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return data.TestAgent(path, p.agent)
}

func (p *robotsPolicy) load(ctx context.Context, client *http.Client, origin string) *robotstxt.RobotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", p.agent)

	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data
}
