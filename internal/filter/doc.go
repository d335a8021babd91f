// Package filter provides the ordered filter chain applied to a story body
// after parsing.
//
// A Filter mutates the descendants of a <body> element in place. Filters run
// exactly once each, in chain order, and every filter sees the cumulative
// result of the filters before it. The first error aborts the chain; no
// filter after it runs.
//
// Filters must not replace the body itself. Apply checks the body after each
// filter and fails with ErrBodyReplaced if it was detached or renamed.
//
// # Default chain
//
// Default returns a fresh copy of the built-in chain:
//
//	strip-scripts, strip-comments, strip-event-handlers, normalize-text, remove-empty
//
// Spiders that need something else replace the whole chain; chains are never
// merged.
package filter
