// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/bms-poller/internal/device"
)

// Target is one device polled on a bus.
type Target struct {
	Node     *device.Node
	Commands []string

	// ResetBeforePoll zeroes the snapshot before each cycle.
	ResetBeforePoll bool
}

// PollResult is what one device produced in one poll cycle.
type PollResult struct {
	Bus    string
	Device string
	Type   string
	At     time.Time

	// Snapshot is the device state after the cycle. On failure it still
	// holds the last good values.
	Snapshot *device.Snapshot
	Commands []device.CommandResult

	Err     error // non-nil means at least one command failed
	Partial bool  // Err != nil but some blocks were decoded
}
