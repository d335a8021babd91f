package model

import (
	"time"

	"golang.org/x/net/html"

	"github.com/nao1215/storyscraper/internal/meta"
)

// Crawl carries the state of one crawl invocation through the pipeline.
// It is created at the start of a crawl and discarded after serialization.
// A Crawl is not safe for concurrent use.
type Crawl struct {
	// URL is the address handed to the spider's parse step.
	URL string

	// Spider is the name of the spider running the crawl.
	Spider string

	// State is the current position in the crawl state machine.
	State State

	// FailedStage is the stage that failed. Empty unless State is StateFailed.
	FailedStage Stage

	// Body is the <body> element holding the parsed nodes.
	// Filters mutate it in place.
	Body *html.Node

	// Metadata is the snapshot taken once parsing completed.
	Metadata *meta.Metadata

	// Head holds the projected head elements.
	Head []*html.Node

	// Document is the assembled document node.
	Document *html.Node

	// Output is the serialized document. It stays empty when the document
	// was written straight to a sink.
	Output []byte

	// Written is the number of bytes written to a sink.
	Written int64

	// StartedAt is when the crawl began.
	StartedAt time.Time
}

// NewCrawl creates an idle crawl for the given spider and URL.
func NewCrawl(spider, url string) *Crawl {
	return &Crawl{
		URL:       url,
		Spider:    spider,
		State:     StateIdle,
		StartedAt: time.Now(),
	}
}

// Advance moves the crawl into the given state.
// Transitions out of a terminal state are ignored.
func (c *Crawl) Advance(s State) {
	if c.State.Terminal() {
		return
	}
	c.State = s
}

// Fail marks the crawl as failed in the given stage.
func (c *Crawl) Fail(stage Stage) {
	if c.State.Terminal() {
		return
	}
	c.State = StateFailed
	c.FailedStage = stage
}
