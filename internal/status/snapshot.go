// internal/status/snapshot.go
package status

// Snapshot is the health of one device as seen by the orchestrator.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16
}

// Tracker owns the health snapshot of one device.
// It is driven by poll outcomes and a 1 Hz tick; it is not safe for
// concurrent use and is meant to live in a single orchestrator goroutine.
type Tracker struct {
	snap Snapshot
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot { return t.snap }

// Observe folds one poll cycle outcome into the snapshot and reports whether
// anything changed. code is the extracted error code (ignored when ok).
//
//   - ok:      health OK, error code and seconds in error cleared
//   - partial: health stale, error code set, counter continues
//   - failed:  health error, error code set
func (t *Tracker) Observe(ok, partial bool, code uint16) bool {
	prev := t.snap

	switch {
	case ok:
		t.snap = Snapshot{Health: HealthOK}
	case partial:
		t.snap.Health = HealthStale
		t.snap.LastErrorCode = code
	default:
		t.snap.Health = HealthError
		t.snap.LastErrorCode = code
	}

	// NOTE: seconds_in_error increments on the 1Hz ticker only.
	return t.snap != prev
}

// Tick advances seconds-in-error while the device is not OK.
// It reports whether the counter moved.
func (t *Tracker) Tick() bool {
	if t.snap.Health == HealthOK || t.snap.Health == HealthUnknown {
		return false
	}
	if t.snap.SecondsInError >= MaxSecondsInError {
		return false
	}
	t.snap.SecondsInError++
	return true
}
