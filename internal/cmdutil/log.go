// internal/cmdutil/log.go
package cmdutil

import (
	"io"
	"log/slog"
)

// NewLogger builds the process logger. Quiet keeps errors only;
// otherwise progress lines from the aggregator show at debug level.
func NewLogger(w io.Writer, quiet bool) *slog.Logger {
	level := slog.LevelDebug
	if quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
