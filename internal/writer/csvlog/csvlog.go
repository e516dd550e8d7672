// internal/writer/csvlog/csvlog.go
package csvlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tamzrod/bms-poller/internal/status"
	"github.com/tamzrod/bms-poller/internal/writer"
)

// TimeLayout is the timestamp format of the first column.
const TimeLayout = "2006-01-02 15:04:05"

var header = []string{"DateTime", "Bus", "Device", "Type", "Health", "Name", "Value", "Unit"}

type Config struct {
	Path          string
	RetentionDays int
}

// Logger appends one row per value to a local CSV backup file.
// When the oldest row is older than the retention window the file is
// cleared and restarted with a header.
type Logger struct {
	path      string
	retention int

	open func(name string, flag int, perm os.FileMode) (io.WriteCloser, error)
}

func openFile(name string, flag int, perm os.FileMode) (io.WriteCloser, error) {
	return os.OpenFile(name, flag, perm)
}

// Open creates the file (and its directory) with a header if needed.
func Open(cfg Config) (*Logger, error) {
	if cfg.Path == "" {
		return nil, errors.New("csvlog: path required")
	}
	if cfg.RetentionDays < 0 {
		return nil, errors.New("csvlog: retention_days must be >= 0")
	}
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("csvlog: %w", err)
		}
	}

	l := &Logger{path: cfg.Path, retention: cfg.RetentionDays, open: openFile}

	st, err := os.Stat(cfg.Path)
	switch {
	case errors.Is(err, os.ErrNotExist) || (err == nil && st.Size() == 0):
		if err := l.restart(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("csvlog: %w", err)
	}
	return l, nil
}

func (l *Logger) Name() string { return "csv" }

func (l *Logger) Close() error { return nil }

// Write appends rec, purging the file first if it is past retention.
func (l *Logger) Write(rec writer.Record) error {
	if err := l.purge(rec.At); err != nil {
		return err
	}

	ts := rec.At.Format(TimeLayout)
	health := status.HealthName(rec.Health.Health)

	rows := make([][]string, 0, len(rec.Values))
	for _, v := range rec.Values {
		rows = append(rows, []string{
			ts, rec.Bus, rec.Device, rec.Type, health,
			v.Name, strconv.FormatFloat(v.Value, 'f', -1, 64), v.Unit,
		})
	}
	return l.writeRows(os.O_APPEND|os.O_WRONLY|os.O_CREATE, rows)
}

// writeRows opens the file with flag, writes rows and closes it.
// A failed close is reported like a failed write.
func (l *Logger) writeRows(flag int, rows [][]string) (err error) {
	f, err := l.open(l.path, flag, 0o644)
	if err != nil {
		return fmt.Errorf("csvlog: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("csvlog: close: %w", cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("csvlog: %w", err)
	}
	return nil
}

// purge clears the file when its first dated row is more than retention
// days older than now. Retention 0 keeps everything.
func (l *Logger) purge(now time.Time) error {
	if l.retention == 0 {
		return nil
	}

	first, ok, err := l.firstTimestamp()
	if err != nil || !ok {
		return err
	}
	if int(now.Sub(first).Hours()/24) > l.retention {
		return l.restart()
	}
	return nil
}

func (l *Logger) firstTimestamp() (time.Time, bool, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("csvlog: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	for {
		row, err := r.Read()
		if err == io.EOF {
			return time.Time{}, false, nil
		}
		if err != nil {
			return time.Time{}, false, fmt.Errorf("csvlog: %w", err)
		}
		if len(row) == 0 {
			continue
		}
		ts, err := time.ParseInLocation(TimeLayout, row[0], time.Local)
		if err != nil {
			continue // header
		}
		return ts, true, nil
	}
}

func (l *Logger) restart() error {
	return l.writeRows(os.O_RDWR|os.O_CREATE|os.O_TRUNC, [][]string{header})
}
