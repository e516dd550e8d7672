// internal/writer/types.go
package writer

import (
	"time"

	"github.com/tamzrod/bms-poller/internal/device"
	"github.com/tamzrod/bms-poller/internal/status"
)

// Record is one device reading delivered to every sink.
type Record struct {
	Bus    string
	Device string
	Type   string
	At     time.Time

	// Values is the flattened snapshot, plus host values such as CPU_Temp.
	Values []device.Value
	Health status.Snapshot
	Err    error
}

// Sink persists or displays records.
type Sink interface {
	Name() string
	Write(rec Record) error
	Close() error
}

// StatusSink is implemented by sinks that also track device health.
// It receives a snapshot and writes it verbatim.
// No logic, no state, no interpretation.
type StatusSink interface {
	WriteStatus(device string, s status.Snapshot) error
}

// Writer delivers records and status changes to its sinks.
type Writer interface {
	Write(rec Record) error
	WriteStatus(device string, s status.Snapshot) error
	Close() error
}
