// Package main provides the entry point for the storyscraper CLI.
//
// storyscraper crawls a story with a site-specific spider, cleans it with a
// chain of filters and writes it as a single self-contained HTML5 document.
//
// Usage:
//
//	storyscraper crawl ao3 https://archiveofourown.org/works/4370 -o story.html
//	storyscraper crawl https://www.gutenberg.org/cache/epub/11/pg11-images.html -O
//	storyscraper spiders
//
// See --help for all available options.
package main

func main() {
	Execute()
}
