// Package model defines the data structures shared by the crawl pipeline.
//
// This package contains the following main types:
//   - Crawl: the per-invocation record threaded through every pipeline step
//   - State: the position in the crawl state machine
//   - Stage: the name of the pipeline stage an error is attributed to
//
// Models live in their own package so that pipeline, spider and the CLI can
// share them without import cycles.
package model
