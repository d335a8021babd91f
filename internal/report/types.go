package report

import "time"

// SpiderInfo describes a registered spider.
type SpiderInfo struct {
	Name      string   `json:"name"`
	Domain    string   `json:"domain"`
	SampleURL string   `json:"sample_url"`
	Filters   []string `json:"filters"`
}

// Entry is one metadata entry of a crawled document.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CrawlSummary describes a finished crawl.
type CrawlSummary struct {
	Spider   string        `json:"spider"`
	URL      string        `json:"url"`
	Output   string        `json:"output"`
	Bytes    int64         `json:"bytes"`
	Duration time.Duration `json:"duration_ns"`
	Metadata []Entry       `json:"metadata"`
}

// Title returns the "title" metadata entry, if any.
func (s *CrawlSummary) Title() string {
	for _, e := range s.Metadata {
		if e.Key == "title" {
			return e.Value
		}
	}
	return ""
}
