package logger

import (
	"log"
	"log/slog"
)

// New returns a stdlib *log.Logger that forwards every line to slog at the given
// level, tagged with the component name. Used where libraries insist on *log.Logger.
func New(base *slog.Logger, component string, level slog.Level) *log.Logger {
	if base == nil {
		base = slog.Default()
	}
	return slog.NewLogLogger(base.With("component", component).Handler(), level)
}
