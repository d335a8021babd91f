package spider

import (
	"context"
	"log/slog"

	"github.com/nao1215/storyscraper/internal/log"
)

// Logger is the logging surface shared by Scraper and Session. Every record
// carries the spider name.
type Logger struct {
	logger *slog.Logger
}

// Debug logs at debug level.
func (l Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Info logs at info level.
func (l Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Warning logs at warn level.
func (l Logger) Warning(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Critical logs at log.LevelCritical.
func (l Logger) Critical(msg string, args ...any) {
	l.logger.Log(context.Background(), log.LevelCritical, msg, args...)
}

// Log logs at an arbitrary level.
func (l Logger) Log(level slog.Level, msg string, args ...any) {
	l.logger.Log(context.Background(), level, msg, args...)
}

// Slog returns the underlying logger.
func (l Logger) Slog() *slog.Logger {
	return l.logger
}
