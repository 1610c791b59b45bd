package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide logger: JSON lines on stdout, debug level
// in dev, trace ids attached whenever a span is active.
func NewLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	if env == "dev" {
		opts.Level = slog.LevelDebug
	}

	return slog.New(NewTraceHandler(slog.NewJSONHandler(os.Stdout, opts)))
}
