package sqllog

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Registry owns one Logger per target alias, creating them on first use
type Registry struct {
	cfg  *Config
	opts []Option
	diag Diagnostics

	mu      sync.RWMutex
	loggers map[string]*Logger

	closed atomic.Bool
	done   chan struct{}
	wg     sync.WaitGroup // Heartbeat goroutines
}

// NewRegistry validates cfg and returns an empty registry. Options are applied
// to every logger it creates; a nil cfg selects DefaultConfig.
func NewRegistry(cfg *Config, opts ...Option) (*Registry, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		cfg = cfg.Clone()
	}
	if err := cfg.validate(); err != nil {
		return nil, fmtErrorf("invalid configuration: %w", err)
	}

	// Resolve diagnostics once so all loggers share a sink
	scratch := &Logger{}
	for _, opt := range opts {
		opt(scratch)
	}
	diag := scratch.diag
	if diag == nil {
		diag = defaultDiagnostics(cfg)
		opts = append(opts, WithDiagnostics(diag))
	}

	return &Registry{
		cfg:     cfg,
		opts:    opts,
		diag:    diag,
		loggers: make(map[string]*Logger),
		done:    make(chan struct{}),
	}, nil
}

// Logger returns the logger for target, creating it if needed.
// The first Target seen for an alias is the one retained.
func (r *Registry) Logger(target Target) (*Logger, error) {
	if err := target.validate(); err != nil {
		return nil, err
	}
	if r.closed.Load() {
		return nil, ErrClosed
	}

	r.mu.RLock()
	l, ok := r.loggers[target.Alias]
	r.mu.RUnlock()
	if ok {
		return l, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed.Load() {
		return nil, ErrClosed
	}
	if l, ok := r.loggers[target.Alias]; ok {
		return l, nil
	}

	l, err := New(target, r.cfg, r.opts...)
	if err != nil {
		return nil, err
	}
	r.loggers[target.Alias] = l
	r.diag.Debug("sql logger created", "target", target)
	return l, nil
}

// Write appends sql verbatim to target's log
func (r *Registry) Write(target Target, sql string) error {
	l, err := r.Logger(target)
	if err != nil {
		return err
	}
	_, err = l.WriteString(sql)
	return err
}

// Stats returns one snapshot per logger, ordered by target alias
func (r *Registry) Stats() []Stats {
	r.mu.RLock()
	stats := make([]Stats, 0, len(r.loggers))
	for _, l := range r.loggers {
		stats = append(stats, l.Stats())
	}
	r.mu.RUnlock()

	sort.Slice(stats, func(i, j int) bool { return stats[i].Target < stats[j].Target })
	return stats
}

// Close stops heartbeats and closes every logger. Safe to call multiple times.
func (r *Registry) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}

	r.mu.Lock()
	loggers := r.loggers
	r.loggers = make(map[string]*Logger)
	r.mu.Unlock()

	close(r.done)
	r.wg.Wait()

	var finalErr error
	for _, l := range loggers {
		if err := l.Close(); err != nil {
			finalErr = combineErrors(finalErr, err)
		}
	}
	return finalErr
}
