// FILE: lixenwraith/sqllog/compat/gnet.go
package compat

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/lixenwraith/sqllog"
)

const gnetSource = "gnet"

// GnetAdapter implements gnet's logging.Logger on top of sqllog.Diagnostics,
// so engine events land in the same sink as rotation records
type GnetAdapter struct {
	diag    sqllog.Diagnostics
	onFatal func(msg string)
	fatals  atomic.Uint64
}

// GnetOption customizes a GnetAdapter
type GnetOption func(*GnetAdapter)

// WithFatalHandler replaces the default os.Exit(1) on Fatalf
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.onFatal = handler
	}
}

// NewGnetAdapter creates the adapter; a nil diag discards everything
func NewGnetAdapter(diag sqllog.Diagnostics, opts ...GnetOption) *GnetAdapter {
	if diag == nil {
		diag = sqllog.NopDiagnostics()
	}
	a := &GnetAdapter{
		diag:    diag,
		onFatal: func(string) { os.Exit(1) },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *GnetAdapter) Debugf(format string, args ...any) {
	emitAt(a.diag, sqllog.LevelDebug, gnetSource, fmt.Sprintf(format, args...))
}

func (a *GnetAdapter) Infof(format string, args ...any) {
	emitAt(a.diag, sqllog.LevelInfo, gnetSource, fmt.Sprintf(format, args...))
}

func (a *GnetAdapter) Warnf(format string, args ...any) {
	emitAt(a.diag, sqllog.LevelWarn, gnetSource, fmt.Sprintf(format, args...))
}

func (a *GnetAdapter) Errorf(format string, args ...any) {
	emitAt(a.diag, sqllog.LevelError, gnetSource, fmt.Sprintf(format, args...))
}

// Fatalf records the message with a running fatal count, then hands off to
// the fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	n := a.fatals.Add(1)
	emitAt(a.diag, sqllog.LevelError, gnetSource, msg, "fatal", true, "fatal_count", n)

	if a.onFatal != nil {
		a.onFatal(msg)
	}
}

// Fatals returns how many fatal records the engine has reported
func (a *GnetAdapter) Fatals() uint64 {
	return a.fatals.Load()
}
