// internal/writer/writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/bms-poller/internal/status"
)

type writerImpl struct {
	sinks []Sink
}

// New fans records out to sinks in order.
func New(sinks ...Sink) Writer {
	return &writerImpl{sinks: sinks}
}

// Write delivers rec to every sink. A failing sink does not stop delivery to
// the remaining sinks; failures are joined into one error.
func (w *writerImpl) Write(rec Record) error {
	var errs []string

	for _, s := range w.sinks {
		if err := s.Write(rec); err != nil {
			errs = append(errs, fmt.Sprintf(
				"writer: sink=%s device=%s err=%v",
				s.Name(), rec.Device, err,
			))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}

// WriteStatus delivers a health snapshot to the sinks that track status.
func (w *writerImpl) WriteStatus(device string, s status.Snapshot) error {
	var errs []string

	for _, sink := range w.sinks {
		ss, ok := sink.(StatusSink)
		if !ok {
			continue
		}
		if err := ss.WriteStatus(device, s); err != nil {
			errs = append(errs, fmt.Sprintf(
				"writer: status sink=%s device=%s err=%v",
				sink.Name(), device, err,
			))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}

// Close closes every sink and returns the last error.
func (w *writerImpl) Close() error {
	var last error
	for _, s := range w.sinks {
		if err := s.Close(); err != nil {
			last = err
		}
	}
	return last
}
