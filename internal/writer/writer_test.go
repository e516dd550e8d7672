// internal/writer/writer_test.go
package writer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tamzrod/bms-poller/internal/device"
	"github.com/tamzrod/bms-poller/internal/status"
)

// ---- fake sinks ----

type fakeSink struct {
	name    string
	fail    error
	records []Record
	closed  bool
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Write(rec Record) error {
	f.records = append(f.records, rec)
	return f.fail
}

func (f *fakeSink) Close() error {
	f.closed = true
	return nil
}

type fakeStatusSink struct {
	fakeSink
	status []status.Snapshot
}

func (f *fakeStatusSink) WriteStatus(_ string, s status.Snapshot) error {
	f.status = append(f.status, s)
	return nil
}

// ---- tests ----

func TestWriter_FanOut(t *testing.T) {
	a := &fakeSink{name: "a"}
	b := &fakeSink{name: "b"}
	w := New(a, b)

	rec := Record{
		Device: "bms1",
		At:     time.Now(),
		Values: []device.Value{{Name: "SOC", Field: "SOC", Unit: "%", Value: 80}},
	}
	if err := w.Write(rec); err != nil {
		t.Fatalf("Write err=%v", err)
	}
	if len(a.records) != 1 || len(b.records) != 1 {
		t.Fatalf("expected one record per sink, got a=%d b=%d", len(a.records), len(b.records))
	}
}

func TestWriter_FailingSinkDoesNotStopOthers(t *testing.T) {
	a := &fakeSink{name: "a", fail: errors.New("disk full")}
	b := &fakeSink{name: "b"}
	c := &fakeSink{name: "c", fail: errors.New("locked")}
	w := New(a, b, c)

	err := w.Write(Record{Device: "bms1"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(b.records) != 1 || len(c.records) != 1 {
		t.Fatalf("remaining sinks must still receive the record")
	}
	msg := err.Error()
	if !strings.Contains(msg, "sink=a") || !strings.Contains(msg, "sink=c") || !strings.Contains(msg, " | ") {
		t.Fatalf("unexpected error text: %s", msg)
	}
}

func TestWriter_StatusOnlyToStatusSinks(t *testing.T) {
	plain := &fakeSink{name: "plain"}
	st := &fakeStatusSink{fakeSink: fakeSink{name: "st"}}
	w := New(plain, st)

	snap := status.Snapshot{Health: status.HealthError, LastErrorCode: 2, SecondsInError: 3}
	if err := w.WriteStatus("bms1", snap); err != nil {
		t.Fatalf("WriteStatus err=%v", err)
	}
	if len(st.status) != 1 || st.status[0] != snap {
		t.Fatalf("status sink got %+v", st.status)
	}
	if len(plain.records) != 0 {
		t.Fatalf("plain sink must not receive status as a record")
	}
}

func TestWriter_CloseAll(t *testing.T) {
	a := &fakeSink{name: "a"}
	b := &fakeSink{name: "b"}
	if err := New(a, b).Close(); err != nil {
		t.Fatalf("Close err=%v", err)
	}
	if !a.closed || !b.closed {
		t.Fatalf("all sinks must be closed")
	}
}
