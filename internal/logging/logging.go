package logging

import (
	"log/slog"
	"os"
)

// New returns a logger with a text handler writing to STDERR, so log lines
// never interleave with telemetry printed on STDOUT.
func New(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
