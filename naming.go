package sqllog

import (
	"fmt"
	"path/filepath"
	"time"
)

// namingState remembers the last rotation second so same-second rotations get
// increasing suffixes. Guarded by the logger's rotation lock.
type namingState struct {
	lastUnix int64
	suffix   int
	used     bool
}

// next advances the state and returns the file name for a rotation at now
func (n *namingState) next(now time.Time, prefix string) string {
	sec := now.Unix()
	if n.used && sec == n.lastUnix {
		n.suffix++
	} else {
		n.lastUnix = sec
		n.suffix = 0
		n.used = true
	}
	return logFileName(prefix, sec, n.suffix)
}

// logFileName formats <prefix>.<unix-seconds>.<zero-padded suffix>
func logFileName(prefix string, unixSec int64, suffix int) string {
	return fmt.Sprintf("%s.%d."+suffixFormat, prefix, unixSec, suffix)
}

// logFilePath joins the base directory, target alias and file name
func logFilePath(base, alias, name string) (string, error) {
	if alias == "" {
		return "", ErrEmptyTarget
	}
	return filepath.Join(base, alias, name), nil
}
