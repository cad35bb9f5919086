package game

import (
	"log/slog"
	"sync/atomic"
)

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(slog.DiscardHandler))
}

// SetLogger configures the logger used by the frame loop. Passing nil
// silences it again.
//
// Levels used:
//   - Debug: state transitions, resizes
//   - Info: pause toggles, wireframe toggles
//   - Warn: slow frames, per-frame render warnings
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	loggerPtr.Store(l)
}

// Logger returns the logger currently used by the frame loop.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
