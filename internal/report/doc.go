// Package report writes the listings and summaries storyscraper prints:
// the registered spiders, and a summary of a finished crawl.
//
// Three formats are available: plain text for terminals, JSON for tools
// and GitHub-flavored Markdown (rendered with nao1215/markdown).
package report
