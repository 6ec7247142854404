// FILE: lixenwraith/sqllog/compat/fasthttp.go
package compat

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/sqllog"
)

const fasthttpSource = "fasthttp"

// LevelDetector classifies a library message; ok is false when it has no opinion
type LevelDetector func(msg string) (level int64, ok bool)

// FastHTTPAdapter implements fasthttp's Logger on top of sqllog.Diagnostics.
// fasthttp logs through a single Printf, so the level is inferred from the text.
type FastHTTPAdapter struct {
	diag         sqllog.Diagnostics
	defaultLevel int64
	detect       LevelDetector
}

// FastHTTPOption customizes a FastHTTPAdapter
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the level used when detection has no opinion
func WithDefaultLevel(level int64) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector replaces DetectLogLevel; nil disables detection
func WithLevelDetector(detector LevelDetector) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.detect = detector
	}
}

// NewFastHTTPAdapter creates the adapter; a nil diag discards everything
func NewFastHTTPAdapter(diag sqllog.Diagnostics, opts ...FastHTTPOption) *FastHTTPAdapter {
	if diag == nil {
		diag = sqllog.NopDiagnostics()
	}
	a := &FastHTTPAdapter{
		diag:         diag,
		defaultLevel: sqllog.LevelInfo,
		detect:       DetectLogLevel,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Printf implements fasthttp.Logger
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := a.defaultLevel
	if a.detect != nil {
		if detected, ok := a.detect(msg); ok {
			level = detected
		}
	}
	emitAt(a.diag, level, fasthttpSource, msg)
}

// levelKeywords is checked in order; the first matching group wins
var levelKeywords = []struct {
	level    int64
	keywords []string
}{
	{sqllog.LevelError, []string{"error", "failed", "fatal", "panic", "cannot"}},
	{sqllog.LevelWarn, []string{"warn", "deprecated", "timeout", "too many"}},
	{sqllog.LevelDebug, []string{"debug", "trace"}},
}

// DetectLogLevel infers a level from common fasthttp message wording
func DetectLogLevel(msg string) (int64, bool) {
	lower := strings.ToLower(msg)
	for _, group := range levelKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.level, true
			}
		}
	}
	return sqllog.LevelInfo, false
}
