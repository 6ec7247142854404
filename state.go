package sqllog

import (
	"sync/atomic"
)

// State encapsulates the runtime counters of a logger
type State struct {
	ShutdownCalled atomic.Bool

	CurrentSize atomic.Int64 // Bytes written since the last rotation

	TotalWrites    atomic.Uint64 // Successful non-empty writes
	TotalBytes     atomic.Uint64 // Bytes appended across all files
	FailedWrites   atomic.Uint64 // Writes that failed or were short
	TotalRotations atomic.Uint64 // Successful file creations, including the first
	RotationRaces  atomic.Uint64 // Threshold crossings resolved by another writer
	Refreshes      atomic.Uint64 // Cached handle refreshes
}

// Stats returns a snapshot of the logger's counters
func (l *Logger) Stats() Stats {
	cur := l.current.Load()
	return Stats{
		Target:       l.target.Alias,
		CurrentPath:  cur.path,
		CurrentSize:  l.state.CurrentSize.Load(),
		Generation:   cur.gen,
		TotalWrites:  l.state.TotalWrites.Load(),
		TotalBytes:   l.state.TotalBytes.Load(),
		FailedWrites: l.state.FailedWrites.Load(),
		Rotations:    l.state.TotalRotations.Load(),
		RotationRace: l.state.RotationRaces.Load(),
		Refreshes:    l.state.Refreshes.Load(),
	}
}
