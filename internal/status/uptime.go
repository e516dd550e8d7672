// internal/status/uptime.go
package status

import (
	"fmt"
	"time"
)

// SameSessionWindow is how close a persisted startup must be to this
// process's boot for the record to belong to the current session.
const SameSessionWindow = 60 * time.Second

// MachineRecord is the persisted uptime state, one row per poll cycle.
type MachineRecord struct {
	Startup       time.Time
	Update        time.Time
	TotalUptime   time.Duration
	Downtime      time.Duration
	TotalDowntime time.Duration
}

// Uptime is the bookkeeping result for one cycle.
type Uptime struct {
	Uptime        time.Duration
	TotalUptime   time.Duration
	Downtime      time.Duration
	TotalDowntime time.Duration
}

// Clock carries the process boot time explicitly.
type Clock struct {
	Boot time.Time
}

// Compute derives the uptime figures at now from the previous persisted
// record (nil when there is none) and returns the record to persist next.
//
// A previous startup within SameSessionWindow of Boot continues the session:
// the time since its last update is added to the total uptime. Otherwise the
// gap between that last update and Boot counts as downtime.
func (c Clock) Compute(now time.Time, prev *MachineRecord) (Uptime, MachineRecord) {
	last := MachineRecord{Startup: c.Boot, Update: now}
	if prev != nil {
		last = *prev
	}

	u := Uptime{
		Uptime:        now.Sub(c.Boot),
		TotalUptime:   last.TotalUptime,
		Downtime:      last.Downtime,
		TotalDowntime: last.TotalDowntime,
	}

	if abs(c.Boot.Sub(last.Startup)) < SameSessionWindow {
		u.TotalUptime += abs(now.Sub(last.Update))
	} else {
		u.Downtime = abs(c.Boot.Sub(last.Update))
		u.TotalDowntime += u.Downtime
	}

	return u, MachineRecord{
		Startup:       c.Boot,
		Update:        now,
		TotalUptime:   u.TotalUptime,
		Downtime:      u.Downtime,
		TotalDowntime: u.TotalDowntime,
	}
}

func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// MachineStore persists uptime records.
type MachineStore interface {
	LastMachine() (*MachineRecord, error)
	SaveMachine(MachineRecord) error
}

// Update loads the previous record, computes the figures at now and
// persists the next record.
func (c Clock) Update(store MachineStore, now time.Time) (Uptime, error) {
	prev, err := store.LastMachine()
	if err != nil {
		return Uptime{}, fmt.Errorf("uptime: load: %w", err)
	}
	u, next := c.Compute(now, prev)
	if err := store.SaveMachine(next); err != nil {
		return Uptime{}, fmt.Errorf("uptime: save: %w", err)
	}
	return u, nil
}
