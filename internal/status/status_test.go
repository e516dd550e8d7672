// internal/status/status_test.go
package status

import (
	"testing"
	"time"
)

func TestTracker_Transitions(t *testing.T) {
	var tr Tracker

	if tr.Snapshot().Health != HealthUnknown {
		t.Fatalf("initial health=%d", tr.Snapshot().Health)
	}
	if tr.Tick() {
		t.Fatalf("tick must not count while unknown")
	}

	if !tr.Observe(false, false, 2) {
		t.Fatalf("error observe should change")
	}
	s := tr.Snapshot()
	if s.Health != HealthError || s.LastErrorCode != 2 {
		t.Fatalf("got %+v", s)
	}

	tr.Tick()
	tr.Tick()
	if tr.Snapshot().SecondsInError != 2 {
		t.Fatalf("seconds=%d", tr.Snapshot().SecondsInError)
	}

	// repeated identical failure: no change, counter preserved
	if tr.Observe(false, false, 2) {
		t.Fatalf("identical error should not report change")
	}

	if !tr.Observe(false, true, 1) {
		t.Fatalf("partial should change")
	}
	s = tr.Snapshot()
	if s.Health != HealthStale || s.LastErrorCode != 1 || s.SecondsInError != 2 {
		t.Fatalf("got %+v", s)
	}

	if !tr.Observe(true, false, 0) {
		t.Fatalf("recovery should change")
	}
	if tr.Snapshot() != (Snapshot{Health: HealthOK}) {
		t.Fatalf("got %+v", tr.Snapshot())
	}
	if tr.Tick() {
		t.Fatalf("tick must not count while ok")
	}
}

func TestTracker_Saturates(t *testing.T) {
	tr := Tracker{snap: Snapshot{Health: HealthError, SecondsInError: MaxSecondsInError - 1}}

	if !tr.Tick() {
		t.Fatalf("expected last increment")
	}
	if tr.Tick() {
		t.Fatalf("expected saturation")
	}
	if tr.Snapshot().SecondsInError != MaxSecondsInError {
		t.Fatalf("seconds=%d", tr.Snapshot().SecondsInError)
	}
}

func TestClock_FirstRun(t *testing.T) {
	boot := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := boot.Add(5 * time.Second)

	u, rec := Clock{Boot: boot}.Compute(now, nil)

	if u.Uptime != 5*time.Second {
		t.Fatalf("uptime=%s", u.Uptime)
	}
	if u.TotalUptime != 0 || u.Downtime != 0 || u.TotalDowntime != 0 {
		t.Fatalf("got %+v", u)
	}
	if !rec.Startup.Equal(boot) || !rec.Update.Equal(now) {
		t.Fatalf("record=%+v", rec)
	}
}

func TestClock_SameSession(t *testing.T) {
	boot := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prev := &MachineRecord{
		Startup:       boot.Add(-30 * time.Second),
		Update:        boot.Add(10 * time.Second),
		TotalUptime:   time.Hour,
		Downtime:      time.Minute,
		TotalDowntime: 2 * time.Minute,
	}
	now := boot.Add(20 * time.Second)

	u, rec := Clock{Boot: boot}.Compute(now, prev)

	if u.TotalUptime != time.Hour+10*time.Second {
		t.Fatalf("total uptime=%s", u.TotalUptime)
	}
	if u.Downtime != time.Minute || u.TotalDowntime != 2*time.Minute {
		t.Fatalf("downtime changed: %+v", u)
	}
	if rec.TotalUptime != u.TotalUptime || !rec.Startup.Equal(boot) {
		t.Fatalf("record=%+v", rec)
	}
}

func TestClock_NewSession(t *testing.T) {
	boot := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	prev := &MachineRecord{
		Startup:       boot.Add(-24 * time.Hour),
		Update:        boot.Add(-2 * time.Hour),
		TotalUptime:   22 * time.Hour,
		TotalDowntime: time.Hour,
	}
	now := boot.Add(time.Minute)

	u, _ := Clock{Boot: boot}.Compute(now, prev)

	if u.Downtime != 2*time.Hour {
		t.Fatalf("downtime=%s", u.Downtime)
	}
	if u.TotalDowntime != 3*time.Hour {
		t.Fatalf("total downtime=%s", u.TotalDowntime)
	}
	if u.TotalUptime != 22*time.Hour {
		t.Fatalf("total uptime=%s", u.TotalUptime)
	}
}

type memStore struct {
	recs []MachineRecord
}

func (m *memStore) LastMachine() (*MachineRecord, error) {
	if len(m.recs) == 0 {
		return nil, nil
	}
	r := m.recs[len(m.recs)-1]
	return &r, nil
}

func (m *memStore) SaveMachine(r MachineRecord) error {
	m.recs = append(m.recs, r)
	return nil
}

func TestClock_UpdateAccumulates(t *testing.T) {
	boot := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Clock{Boot: boot}
	store := &memStore{}

	for i := 1; i <= 3; i++ {
		if _, err := c.Update(store, boot.Add(time.Duration(i)*10*time.Second)); err != nil {
			t.Fatalf("Update err=%v", err)
		}
	}

	if len(store.recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(store.recs))
	}
	// first cycle starts the session; the next two add 10s each
	if got := store.recs[2].TotalUptime; got != 20*time.Second {
		t.Fatalf("total uptime=%s", got)
	}

	// restart two minutes after the last update
	later := Clock{Boot: boot.Add(30*time.Second + 2*time.Minute)}
	u, err := later.Update(store, later.Boot.Add(time.Second))
	if err != nil {
		t.Fatalf("Update err=%v", err)
	}
	if u.Downtime != 2*time.Minute || u.TotalDowntime != 2*time.Minute {
		t.Fatalf("got %+v", u)
	}
}
