// FILE: lixenwraith/sqllog/compat/compat_test.go
package compat

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lixenwraith/sqllog"
)

// recordedCall is one captured diagnostics call
type recordedCall struct {
	level string
	msg   string
	args  []any
}

// recorder is a Diagnostics sink that keeps every call
type recorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *recorder) add(level string, args []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	call := recordedCall{level: level, args: args}
	if len(args) > 0 {
		call.msg = fmt.Sprint(args[0])
	}
	r.calls = append(r.calls, call)
}

func (r *recorder) Debug(args ...any) { r.add("debug", args) }
func (r *recorder) Info(args ...any)  { r.add("info", args) }
func (r *recorder) Warn(args ...any)  { r.add("warn", args) }
func (r *recorder) Error(args ...any) { r.add("error", args) }

func (r *recorder) last() recordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return recordedCall{}
	}
	return r.calls[len(r.calls)-1]
}

func (r *recorder) count(msg string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.msg == msg {
			n++
		}
	}
	return n
}

var _ sqllog.Diagnostics = (*recorder)(nil)

func TestGnetAdapter(t *testing.T) {
	rec := &recorder{}
	var fatalMsg string
	adapter := NewGnetAdapter(rec, WithFatalHandler(func(msg string) {
		fatalMsg = msg
	}))

	adapter.Debugf("debug %d", 1)
	assert.Equal(t, recordedCall{level: "debug", msg: "debug 1", args: []any{"debug 1", "source", "gnet"}}, rec.last())

	adapter.Infof("info %s", "x")
	assert.Equal(t, "info", rec.last().level)

	adapter.Warnf("warn")
	assert.Equal(t, "warn", rec.last().level)

	adapter.Errorf("error %v", true)
	assert.Equal(t, "error true", rec.last().msg)

	assert.Equal(t, uint64(0), adapter.Fatals())
	adapter.Fatalf("fatal %s", "boom")
	assert.Equal(t, "fatal boom", fatalMsg)
	assert.Equal(t, []any{"fatal boom", "source", "gnet", "fatal", true, "fatal_count", uint64(1)}, rec.last().args)

	adapter.Fatalf("again")
	assert.Equal(t, uint64(2), adapter.Fatals())
	assert.Equal(t, "error", rec.last().level)
}

func TestGnetAdapterSanitizesPeerInput(t *testing.T) {
	rec := &recorder{}
	adapter := NewGnetAdapter(rec, WithFatalHandler(func(string) {}))

	adapter.Errorf("read from %s: %s", "1.2.3.4", "bad\x00line\n")
	assert.Equal(t, "read from 1.2.3.4: bad\\u0000line\\n", rec.last().msg)

	adapter.Warnf("%s", strings.Repeat("x", maxMessageRunes+10))
	assert.Equal(t, strings.Repeat("x", maxMessageRunes)+"...", rec.last().msg)
}

func TestGnetAdapterNilDiagnostics(t *testing.T) {
	adapter := NewGnetAdapter(nil, WithFatalHandler(func(string) {}))
	assert.NotPanics(t, func() {
		adapter.Infof("ok")
		adapter.Fatalf("down")
	})
	assert.Equal(t, uint64(1), adapter.Fatals())
}

func TestFastHTTPAdapter(t *testing.T) {
	rec := &recorder{}
	adapter := NewFastHTTPAdapter(rec)

	adapter.Printf("request %s served", "/sql/a")
	assert.Equal(t, "info", rec.last().level)

	adapter.Printf("error when serving connection: %s", "reset")
	assert.Equal(t, "error", rec.last().level)

	adapter.Printf("deprecated option")
	assert.Equal(t, "warn", rec.last().level)

	adapter.Printf("trace id=%d", 7)
	assert.Equal(t, "debug", rec.last().level)
	assert.Equal(t, []any{"trace id=7", "source", "fasthttp"}, rec.last().args)
}

func TestFastHTTPAdapterSanitizesRequestEcho(t *testing.T) {
	rec := &recorder{}
	adapter := NewFastHTTPAdapter(rec)

	adapter.Printf("cannot parse request line %s", "GET /\r\n")
	assert.Equal(t, "error", rec.last().level)
	assert.Equal(t, "cannot parse request line GET /\\r\\n", rec.last().msg)

	adapter.Printf("header %s", "a\tb\x01")
	assert.Equal(t, "header a\\tb\\u0001", rec.last().msg)
}

func TestFastHTTPAdapterOptions(t *testing.T) {
	rec := &recorder{}
	adapter := NewFastHTTPAdapter(rec,
		WithDefaultLevel(sqllog.LevelWarn),
		WithLevelDetector(func(string) (int64, bool) { return 0, false }),
	)
	adapter.Printf("anything")
	assert.Equal(t, "warn", rec.last().level)

	// An explicit Info verdict overrides the default
	adapter = NewFastHTTPAdapter(rec,
		WithDefaultLevel(sqllog.LevelWarn),
		WithLevelDetector(func(string) (int64, bool) { return sqllog.LevelInfo, true }),
	)
	adapter.Printf("anything")
	assert.Equal(t, "info", rec.last().level)

	adapter = NewFastHTTPAdapter(rec, WithDefaultLevel(sqllog.LevelDebug), WithLevelDetector(nil))
	adapter.Printf("error everywhere")
	assert.Equal(t, "debug", rec.last().level)
}

func TestDetectLogLevel(t *testing.T) {
	tests := []struct {
		msg  string
		want int64
		ok   bool
	}{
		{"listening on :8080", sqllog.LevelInfo, false},
		{"Panic recovered", sqllog.LevelError, true},
		{"write failed", sqllog.LevelError, true},
		{"WARNING: slow", sqllog.LevelWarn, true},
		{"read timeout", sqllog.LevelWarn, true},
		{"debug: buffer", sqllog.LevelDebug, true},
	}
	for _, tt := range tests {
		level, ok := DetectLogLevel(tt.msg)
		assert.Equal(t, tt.want, level, tt.msg)
		assert.Equal(t, tt.ok, ok, tt.msg)
	}
}
