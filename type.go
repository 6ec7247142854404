// FILE: lixenwraith/sqllog/type.go
package sqllog

import (
	"errors"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// Sentinel errors returned by write and lifecycle operations
var (
	ErrEmptyTarget   = errors.New("sqllog: target alias cannot be empty")
	ErrInvalidTarget = errors.New("sqllog: target alias is not a valid directory name")
	ErrClosed        = errors.New("sqllog: logger is closed")
	ErrShortWrite    = errors.New("sqllog: short write")
	ErrNameExhausted = errors.New("sqllog: no free log file name")
)

// Target identifies the destination a logger records queries for.
// Alias names the per-target directory; Identity is opaque and only rendered in diagnostics.
type Target struct {
	Alias    string
	Identity any
}

// validate reports a configuration error for an unusable target
func (t Target) validate() error {
	if strings.TrimSpace(t.Alias) == "" {
		return ErrEmptyTarget
	}
	if strings.ContainsAny(t.Alias, `/\`) || t.Alias == "." || t.Alias == ".." {
		return fmtErrorf("%w: '%s'", ErrInvalidTarget, t.Alias)
	}
	return nil
}

// String renders the target for diagnostics
func (t Target) String() string {
	if t.Identity == nil {
		return t.Alias
	}
	return t.Alias + " " + identityDumper.Sprintf("%v", t.Identity)
}

// identityDumper renders opaque identities compactly
var identityDumper = &spew.ConfigState{
	Indent:                  " ",
	MaxDepth:                4,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// fileHandle is a logger's current file together with its generation.
// Sentinels carry a nil file: unopened has generation 0, closed has closed set.
type fileHandle struct {
	gen    uint64
	file   *os.File
	path   string
	closed bool
}

// Stats is a point-in-time snapshot of a logger's counters
type Stats struct {
	Target       string
	CurrentPath  string
	CurrentSize  int64
	Generation   uint64
	TotalWrites  uint64
	TotalBytes   uint64
	FailedWrites uint64
	Rotations    uint64
	RotationRace uint64
	Refreshes    uint64
}
