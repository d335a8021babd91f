// Package spider runs site-specific spiders through the crawl pipeline.
//
// A Spider knows one site: it describes itself and, in Parse, fetches pages
// through the Session it is given, picks out the story content, and records
// metadata such as the title and author. A Scraper wraps a Spider and turns
// what Parse produced into a complete HTML5 document:
//
//	parse → filter → metadata → assembly → serialize
//
// Parse must return every node before the Scraper looks at the metadata,
// so metadata written during Parse is always complete when the head is
// built. The filter chain runs over a <body> holding the parsed nodes. The
// head holds a charset declaration, a <title> for the "title" entry and a
// <meta name content> for every other entry.
//
// A crawl either produces the whole document or fails with a *StageError
// naming the stage that failed; nothing is returned or written on failure.
//
// A Scraper is meant to be reused across crawls but not shared between
// goroutines. Use one Scraper per concurrent crawl.
package spider
