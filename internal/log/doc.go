// Package log builds the slog loggers used across storyscraper.
//
// Every logger is wrapped in a RedactingHandler, which masks values that
// must not end up in logs: cookies and authorization headers copied from
// site configuration, and passwords embedded in proxy URLs.
//
// The package adds LevelCritical above slog.LevelError for failures that end
// a crawl. Handlers built by New print it as CRITICAL.
//
//	logger := log.New(os.Stderr, log.Options{Verbose: true})
//	logger.Info("request sent", "cookie", "session=abc123") // cookie=***REDACTED***
package log
