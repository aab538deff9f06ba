package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger writes JSON records to stdout. dev logs at debug level; every
// other environment logs at info.
func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFor(env)}
	return slog.New(NewTraceHandler(slog.NewJSONHandler(w, opts)))
}

func levelFor(env string) slog.Level {
	if env == "dev" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
