package sqllog

import (
	"os"
)

// Writer is a per-goroutine cache of a duplicate of the logger's current file.
// Appends through the duplicate need no lock while its generation is current.
// A Writer must not be used by more than one goroutine at a time.
type Writer struct {
	logger *Logger
	file   *os.File
	gen    uint64
}

// NewWriter returns a writer with an empty cache for the calling goroutine
func (l *Logger) NewWriter() *Writer {
	return &Writer{logger: l}
}

// WriteString appends s verbatim
func (w *Writer) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Write appends p verbatim to the target's current file, rotating when the
// byte threshold is crossed. Returns len(p) only if every byte was written;
// if the rotation this write triggered fails, the bytes stay written and the
// rotation error is returned with n == len(p).
func (w *Writer) Write(p []byte) (int, error) {
	l := w.logger

	if len(p) == 0 {
		if l.state.ShutdownCalled.Load() {
			return 0, ErrClosed
		}
		return 0, nil
	}

	// Lock-free hint; refresh re-validates under the rotation lock
	if w.file == nil || w.gen != l.current.Load().gen {
		if err := w.refresh(); err != nil {
			l.recordFailure()
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	if err != nil || n != len(p) {
		l.recordFailure()
		l.diag.Error("sql log write failed",
			"target", l.target,
			"path", w.file.Name(),
			"bytes_written", n,
			"bytes_expected", len(p),
			"error", err)
		if err == nil {
			return n, fmtErrorf("%w: '%s' took %d of %d bytes", ErrShortWrite, w.file.Name(), n, len(p))
		}
		return n, fmtErrorf("%w: '%s' took %d of %d bytes: %w", ErrShortWrite, w.file.Name(), n, len(p), err)
	}

	total := l.state.CurrentSize.Add(int64(n))
	l.state.TotalWrites.Add(1)
	l.state.TotalBytes.Add(uint64(n))
	l.metrics.observeWrite(l.target.Alias, n)

	if limit := l.cfg.RotateSize; limit > 0 && total > limit {
		// The bytes are on disk; a failed rotation still fails this call
		if err := l.rotateOnCrossing(w, total); err != nil {
			return n, err
		}
	}

	return n, nil
}

// Close releases the cached duplicate. The writer may be reused afterwards.
func (w *Writer) Close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	w.gen = genUnopened
	return err
}

// refresh brings the cache up to date under the rotation lock
func (w *Writer) refresh() error {
	l := w.logger
	l.mu.Lock()
	defer l.mu.Unlock()
	return w.refreshLocked()
}

// refreshLocked replaces the cached duplicate with one of the current file,
// opening the first file if none exists yet. Caller holds l.mu.
func (w *Writer) refreshLocked() error {
	l := w.logger

	cur := l.current.Load()
	if cur.closed {
		_ = w.Close()
		return ErrClosed
	}
	if cur.file == nil {
		l.diag.Info("sql log opening first file", "target", l.target)
		if err := l.rotateLocked(); err != nil {
			return err
		}
		cur = l.current.Load()
	}
	if w.file != nil && w.gen == cur.gen {
		return nil
	}

	_ = w.Close()
	dup, err := dupFile(cur.file)
	if err != nil {
		l.diag.Error("sql log handle duplication failed",
			"target", l.target,
			"path", cur.path,
			"error", err)
		return fmtErrorf("failed to duplicate handle for '%s': %w", cur.path, err)
	}
	w.file = dup
	w.gen = cur.gen
	l.state.Refreshes.Add(1)

	l.diag.Debug("sql log handle refreshed",
		"target", l.target,
		"path", cur.path,
		"generation", cur.gen)
	return nil
}
