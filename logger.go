package framepace

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip attribute formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called while the scheduler goroutine is logging.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for framepace and all its sub-packages.
// By default framepace produces no log output.
//
// Pass nil to restore the default silent behavior.
//
// Log levels used by framepace:
//   - [slog.LevelDebug]: frame statistics commits, no-op reconfigures
//   - [slog.LevelInfo]: lifecycle events (adapter selected, surface configured, loop closed)
//   - [slog.LevelWarn]: recovered surface loss, resource release errors
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by framepace.
// Sub-packages (device, program, internal/...) call this to share the
// same configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
