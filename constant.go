// FILE: lixenwraith/sqllog/constant.go
package sqllog

import (
	"os"
	"time"
)

// Diagnostic levels
const (
	LevelDebug int64 = -4
	LevelInfo  int64 = 0
	LevelWarn  int64 = 4
	LevelError int64 = 8
)

// File layout
const (
	// Zero-padded suffix keeps same-second rotations in lexical creation order
	suffixFormat = "%06d"
	// Upper bound on exclusive-create retries when a derived name already exists
	maxCreateAttempts = 1000

	filePerm os.FileMode = 0644
	dirPerm  os.FileMode = 0755
)

// Generations
const (
	// Generation of the unopened sentinel; real handles start at 1
	genUnopened uint64 = 0
)

// Timers
const (
	// Minimum heartbeat interval accepted by the registry
	minHeartbeatInterval = 100 * time.Millisecond
)
