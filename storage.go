// FILE: storage.go
package sqllog

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// rotateOnCrossing decides, after a write pushed the counter to observed,
// whether w rotates or adopts a rotation another writer already performed.
// Only a failed rotation is returned; the next crossing retries it.
func (l *Logger) rotateOnCrossing(w *Writer, observed int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.current.Load()
	if cur.closed {
		return nil
	}
	fresh := l.state.CurrentSize.Load()

	// Unchanged generation and a counter that did not drop mean nobody rotated
	// since this writer's crossing; this writer is the sole rotator
	if cur.gen == w.gen && fresh >= observed {
		l.diag.Info("sql log rotation triggered",
			"target", l.target,
			"path", cur.path,
			"bytes_written", observed,
			"current_bytes", fresh,
			"rotate_size", l.cfg.RotateSize)
		if err := l.rotateLocked(); err != nil {
			return err
		}
		if err := w.refreshLocked(); err != nil {
			l.diag.Warn("sql log handle refresh after rotation failed", "target", l.target, "error", err)
		}
		return nil
	}

	l.state.RotationRaces.Add(1)
	l.metrics.observeRace(l.target.Alias)
	l.diag.Info("sql log rotated by other writer",
		"target", l.target,
		"bytes_written", observed,
		"current_bytes", fresh,
		"observed_generation", w.gen,
		"current_generation", cur.gen)
	if err := w.refreshLocked(); err != nil {
		l.diag.Warn("sql log handle refresh after race failed", "target", l.target, "error", err)
	}
	return nil
}

// rotateLocked creates the next log file and makes it current. Caller holds l.mu.
// The new handle is stored before the previous one is closed.
func (l *Logger) rotateLocked() error {
	prev := l.current.Load()
	if prev.closed {
		return ErrClosed
	}

	file, path, err := l.createNewLogFile()
	if err != nil {
		l.diag.Error("sql log rotation failed",
			"target", l.target,
			"previous_path", prev.path,
			"error", err)
		return fmtErrorf("failed to rotate log file: %w", err)
	}

	// Non-zero only when resuming against a pre-existing path
	var size int64
	if fi, errStat := file.Stat(); errStat == nil {
		size = fi.Size()
	} else {
		l.diag.Warn("sql log stat failed after create", "path", path, "error", errStat)
	}
	l.state.CurrentSize.Store(size)

	l.gen++
	l.current.Store(&fileHandle{gen: l.gen, file: file, path: path})

	if prev.file != nil {
		if err := prev.file.Close(); err != nil {
			l.diag.Warn("failed to close previous sql log", "path", prev.path, "error", err)
		}
	}

	l.state.TotalRotations.Add(1)
	l.metrics.observeRotation(l.target.Alias)
	l.diag.Info("sql log rotated",
		"target", l.target,
		"path", path,
		"previous_path", prev.path,
		"generation", l.gen,
		"file_size", size)
	return nil
}

// createNewLogFile derives the next unique name and creates it exclusively,
// moving to the next suffix when a name is already taken
func (l *Logger) createNewLogFile() (*os.File, string, error) {
	dir, err := l.ensureLogDir()
	if err != nil {
		return nil, "", err
	}

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		path, err := logFilePath(l.cfg.Directory, l.target.Alias, l.naming.next(l.clock(), l.cfg.FilePrefix))
		if err != nil {
			return nil, "", err
		}

		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND|os.O_EXCL, filePerm)
		if err == nil {
			return file, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmtErrorf("failed to create log file '%s': %w", path, err)
		}
		l.diag.Warn("sql log file already exists, trying next suffix", "target", l.target, "path", path)
	}

	return nil, "", fmtErrorf("%w in '%s' after %d attempts", ErrNameExhausted, dir, maxCreateAttempts)
}

// ensureLogDir creates the base and per-target directories if missing
func (l *Logger) ensureLogDir() (string, error) {
	if l.target.Alias == "" {
		return "", ErrEmptyTarget
	}

	base := l.cfg.Directory
	dir := filepath.Join(base, l.target.Alias)
	for _, d := range []string{base, dir} {
		if _, err := os.Stat(d); err == nil {
			continue
		}
		l.diag.Info("creating sql log directory", "target", l.target, "directory", d)
		if err := os.MkdirAll(d, dirPerm); err != nil {
			return "", fmtErrorf("failed to create log directory '%s': %w", d, err)
		}
	}
	return dir, nil
}
