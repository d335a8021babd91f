// Package spiders holds the concrete spiders shipped with storyscraper and
// the registry the command line resolves them from.
package spiders
