// FILE: lixenwraith/sqllog/heartbeat.go
package sqllog

import (
	"context"
	"time"
)

// StartHeartbeat emits one stats record per logger every interval until ctx
// is cancelled or the registry is closed. An interval <= 0 disables it.
func (r *Registry) StartHeartbeat(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	if interval < minHeartbeatInterval {
		interval = minHeartbeatInterval
	}

	// Close takes mu after marking closed, so Add cannot race its Wait
	r.mu.Lock()
	if r.closed.Load() {
		r.mu.Unlock()
		return ErrClosed
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var sequence uint64
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.done:
				return
			case <-ticker.C:
				sequence++
				r.logHeartbeat(sequence)
			}
		}
	}()
	return nil
}

// logHeartbeat logs the counters of every logger
func (r *Registry) logHeartbeat(sequence uint64) {
	for _, s := range r.Stats() {
		r.diag.Info("sql log heartbeat",
			"sequence", sequence,
			"target", s.Target,
			"path", s.CurrentPath,
			"current_bytes", s.CurrentSize,
			"generation", s.Generation,
			"writes", s.TotalWrites,
			"bytes", s.TotalBytes,
			"failed_writes", s.FailedWrites,
			"rotations", s.Rotations,
			"rotation_races", s.RotationRace,
			"refreshes", s.Refreshes)
	}
}
