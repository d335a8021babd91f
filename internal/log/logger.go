package log

import (
	"io"
	"log/slog"
)

// LevelCritical is for failures that abort a crawl.
const LevelCritical = slog.Level(12)

// Options configures New.
type Options struct {
	// Verbose lowers the level to debug. The default level is info.
	Verbose bool

	// JSON selects JSON output instead of text.
	JSON bool
}

// New returns a redacting logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevel,
	}

	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(w, handlerOpts)
	} else {
		h = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(NewRedactingHandler(h))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// LevelName returns the display name of level, CRITICAL included.
func LevelName(level slog.Level) string {
	if level >= LevelCritical {
		return "CRITICAL"
	}
	return level.String()
}

func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		if level, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(LevelName(level))
		}
	}
	return a
}
