// FILE: lixenwraith/sqllog/logger.go
package sqllog

import (
	"sync"
	"sync/atomic"
	"time"
)

// Logger appends query text for one target to size-rotated files.
// It is safe for concurrent use; the common write path takes no lock.
type Logger struct {
	target  Target
	cfg     *Config
	diag    Diagnostics
	metrics *Metrics
	clock   func() time.Time

	current atomic.Pointer[fileHandle]

	// mu is the rotation lock: it serializes every change of current,
	// the generation counter and the naming state
	mu     sync.Mutex
	gen    uint64
	naming namingState

	pool  chan *Writer // Idle writers for Write/WriteString, nil when pooling is disabled
	state State
}

// Option customizes a Logger at construction
type Option func(*Logger)

// WithDiagnostics sets the sink for rotation, failure and race records
func WithDiagnostics(d Diagnostics) Option {
	return func(l *Logger) {
		if d != nil {
			l.diag = d
		}
	}
}

// WithMetrics sets the Prometheus counters updated by the logger
func WithMetrics(m *Metrics) Option {
	return func(l *Logger) {
		l.metrics = m
	}
}

// withClock overrides the time source used for file names
func withClock(fn func() time.Time) Option {
	return func(l *Logger) {
		l.clock = fn
	}
}

// New creates a logger for target. No file is opened until the first write.
// A nil cfg selects DefaultConfig.
func New(target Target, cfg *Config, opts ...Option) (*Logger, error) {
	if err := target.validate(); err != nil {
		return nil, err
	}

	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		cfg = cfg.Clone()
	}
	if err := cfg.validate(); err != nil {
		return nil, fmtErrorf("invalid configuration: %w", err)
	}

	l := &Logger{
		target: target,
		cfg:    cfg,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.diag == nil {
		l.diag = defaultDiagnostics(cfg)
	}
	if cfg.WriterPoolSize > 0 {
		l.pool = make(chan *Writer, cfg.WriterPoolSize)
	}

	l.current.Store(&fileHandle{gen: genUnopened})
	return l, nil
}

// Target returns the target this logger serves
func (l *Logger) Target() Target {
	return l.target
}

// GetConfig returns a copy of the logger's configuration
func (l *Logger) GetConfig() *Config {
	return l.cfg.Clone()
}

// Write appends p verbatim using a pooled cached handle
func (l *Logger) Write(p []byte) (int, error) {
	w := l.acquireWriter()
	n, err := w.Write(p)
	l.releaseWriter(w)
	return n, err
}

// WriteString appends s verbatim using a pooled cached handle
func (l *Logger) WriteString(s string) (int, error) {
	w := l.acquireWriter()
	n, err := w.WriteString(s)
	l.releaseWriter(w)
	return n, err
}

// Close closes the current file. Writers still holding duplicates fail with
// ErrClosed on their next write. Safe to call multiple times and concurrently
// with writes and rotation.
func (l *Logger) Close() error {
	if !l.state.ShutdownCalled.CompareAndSwap(false, true) {
		return nil
	}

	l.mu.Lock()
	prev := l.current.Load()
	l.gen++
	l.current.Store(&fileHandle{gen: l.gen, path: prev.path, closed: true})
	l.mu.Unlock()

	var finalErr error
	if prev.file != nil {
		if err := prev.file.Sync(); err != nil {
			finalErr = combineErrors(finalErr, fmtErrorf("failed to sync log file '%s' during close: %w", prev.path, err))
		}
		if err := prev.file.Close(); err != nil {
			finalErr = combineErrors(finalErr, fmtErrorf("failed to close log file '%s': %w", prev.path, err))
		}
	}

	l.drainPool()

	l.diag.Info("sql log closed",
		"target", l.target,
		"path", prev.path,
		"rotations", l.state.TotalRotations.Load(),
		"writes", l.state.TotalWrites.Load())

	return finalErr
}

// acquireWriter takes an idle writer or creates one
func (l *Logger) acquireWriter() *Writer {
	select {
	case w := <-l.pool:
		return w
	default:
		return l.NewWriter()
	}
}

// releaseWriter parks w for reuse, releasing it when the pool is full or closed
func (l *Logger) releaseWriter(w *Writer) {
	if l.state.ShutdownCalled.Load() {
		_ = w.Close()
		return
	}

	select {
	case l.pool <- w:
	default:
		_ = w.Close()
		return
	}

	// Close may have drained the pool between the check above and the send
	if l.state.ShutdownCalled.Load() {
		l.drainPool()
	}
}

// drainPool releases every idle writer
func (l *Logger) drainPool() {
	for {
		select {
		case w := <-l.pool:
			_ = w.Close()
		default:
			return
		}
	}
}

// recordFailure counts a failed write
func (l *Logger) recordFailure() {
	l.state.FailedWrites.Add(1)
	l.metrics.observeFailure(l.target.Alias)
}
