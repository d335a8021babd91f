// Package pipeline runs the stages of a crawl in sequence over a
// model.Crawl.
//
// Each Step is named after the model.Stage it implements. Execute moves the
// crawl into the stage's state before running it, checks for cancellation
// between steps, and stops at the first failure, marking the crawl failed in
// that stage. A crawl that completes every step ends in StateSerialized.
package pipeline
