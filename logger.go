package facekit

import (
	"log/slog"

	"github.com/gogpu/facekit/internal/logging"
)

// SetLogger configures the logger for facekit and all its sub-packages.
// By default, facekit produces no log output. Call SetLogger to enable it.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by facekit:
//   - [slog.LevelDebug]: internal diagnostics (dirty-bit reconciliation,
//     timeline selection)
//   - [slog.LevelInfo]: lifecycle events (context pool entry created or
//     torn down, instance registered)
//   - [slog.LevelWarn]: transient, non-fatal issues (unknown slot id in a
//     payload update, tap dispatch failure)
//
// Example:
//
//	// Enable info-level logging to stderr:
//	facekit.SetLogger(slog.Default())
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by facekit.
// Sub-packages (render/, complication/, registry/) share the same logger
// configuration.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Get()
}
