// Package document assembles the final story document and serializes it as
// pretty-printed HTML5.
//
// Render and String share one formatter, so writing to a sink and rendering
// to memory produce byte-identical output. Output always starts with
// "<!doctype html>" and is UTF-8 encoded.
//
// # Formatting
//
// Block-level elements start on their own line, indented by two spaces per
// nesting level. Runs of inline content are written on a single line exactly
// as golang.org/x/net/html renders them. Whitespace-only text between block
// elements is dropped. Preformatted and raw-text elements (pre, textarea,
// script, style) are rendered verbatim.
package document
