package batch2d

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/batch2d/handle"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

var (
	driversMu sync.Mutex
	drivers   []loggerSetter
)

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for batch2d and its sub-packages.
// By default, batch2d produces no log output. Call SetLogger to enable
// logging.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior.
//
// Log levels used by batch2d:
//   - [slog.LevelDebug]: dropped shapes, per-frame statistics
//   - [slog.LevelInfo]: lifecycle events (renderer created, device selected)
//   - [slog.LevelWarn]: exhausted tables, creation timeouts, driver errors
//
// Example:
//
//	batch2d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	handle.SetLogger(l)

	driversMu.Lock()
	ds := drivers
	driversMu.Unlock()
	for _, d := range ds {
		d.SetLogger(l)
	}
}

// Logger returns the current logger used by batch2d.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by drivers that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger hands the current logger to d if it accepts one, and
// remembers d for later SetLogger calls.
func propagateLogger(d Driver) {
	ls, ok := d.(loggerSetter)
	if !ok {
		return
	}
	ls.SetLogger(Logger())

	driversMu.Lock()
	for _, x := range drivers {
		if x == ls {
			driversMu.Unlock()
			return
		}
	}
	drivers = append(drivers, ls)
	driversMu.Unlock()
}

// forgetDriver stops propagating loggers to d.
func forgetDriver(d Driver) {
	ls, ok := d.(loggerSetter)
	if !ok {
		return
	}
	driversMu.Lock()
	defer driversMu.Unlock()
	for i, x := range drivers {
		if x == ls {
			drivers = append(drivers[:i:i], drivers[i+1:]...)
			return
		}
	}
}
