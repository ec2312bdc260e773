// Package logging holds the debug logger shared by the kinderstats packages.
package logging

import (
	"io"
	"log/slog"
	"sync/atomic"
)

// logger is nil until SetLogger is called; Logger then hands out a discard logger.
var logger atomic.Pointer[slog.Logger]

// SetLogger installs the package-level logger. Passing nil restores the
// discard logger. Safe for concurrent use.
func SetLogger(sl *slog.Logger) {
	if sl == nil {
		sl = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger.Store(sl)
}

// Logger returns the package-level logger.
func Logger() *slog.Logger {
	l := logger.Load()
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
		logger.Store(l)
	}
	return l
}

// EnableDebug routes debug output as text to w.
func EnableDebug(w io.Writer) {
	SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})))
}
