// internal/writer/sqlite/store.go
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tamzrod/bms-poller/internal/status"
	"github.com/tamzrod/bms-poller/internal/writer"
)

const timeLayout = "2006-01-02 15:04:05.000"

const createReadingsSQL = `
CREATE TABLE IF NOT EXISTS readings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TEXT NOT NULL,
    bus TEXT NOT NULL,
    device TEXT NOT NULL,
    device_type TEXT NOT NULL,
    name TEXT NOT NULL,
    value REAL NOT NULL,
    units TEXT
);`

const createDeviceStatusSQL = `
CREATE TABLE IF NOT EXISTS device_status (
    device TEXT PRIMARY KEY,
    health INTEGER NOT NULL,
    last_error_code INTEGER NOT NULL,
    seconds_in_error INTEGER NOT NULL,
    updated TEXT NOT NULL
);`

const createMachineDataSQL = `
CREATE TABLE IF NOT EXISTS machine_data (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    startup TEXT NOT NULL,
    last_update TEXT NOT NULL,
    total_uptime_ms INTEGER NOT NULL,
    downtime_ms INTEGER NOT NULL,
    total_downtime_ms INTEGER NOT NULL
);`

// Store is the SQLite sink: readings, device status and machine uptime.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite: path required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// one writer; avoids SQLITE_BUSY between sinks and uptime updates
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{createReadingsSQL, createDeviceStatusSQL, createMachineDataSQL} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: create schema: %w", err)
		}
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Name() string { return "sqlite" }

func (s *Store) Close() error { return s.db.Close() }

// Write inserts every value of rec in one transaction.
func (s *Store) Write(rec writer.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO readings(timestamp, bus, device, device_type, name, value, units) VALUES(?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	ts := rec.At.Format(timeLayout)
	for _, v := range rec.Values {
		if _, err := stmt.Exec(ts, rec.Bus, rec.Device, rec.Type, v.Name, v.Value, v.Unit); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite: insert %s: %w", v.Name, err)
		}
	}
	return tx.Commit()
}

// WriteStatus upserts the health row of one device.
func (s *Store) WriteStatus(device string, st status.Snapshot) error {
	_, err := s.db.Exec(`
INSERT INTO device_status(device, health, last_error_code, seconds_in_error, updated) VALUES(?, ?, ?, ?, ?)
ON CONFLICT(device) DO UPDATE SET
    health = excluded.health,
    last_error_code = excluded.last_error_code,
    seconds_in_error = excluded.seconds_in_error,
    updated = excluded.updated`,
		device, st.Health, st.LastErrorCode, st.SecondsInError, s.now().Format(timeLayout))
	return err
}

// Status reads back the stored health of one device.
func (s *Store) Status(device string) (status.Snapshot, bool, error) {
	var st status.Snapshot
	err := s.db.QueryRow(
		"SELECT health, last_error_code, seconds_in_error FROM device_status WHERE device = ?", device,
	).Scan(&st.Health, &st.LastErrorCode, &st.SecondsInError)
	if errors.Is(err, sql.ErrNoRows) {
		return status.Snapshot{}, false, nil
	}
	if err != nil {
		return status.Snapshot{}, false, err
	}
	return st, true, nil
}

// LastMachine returns the most recent uptime record, nil if there is none.
func (s *Store) LastMachine() (*status.MachineRecord, error) {
	var (
		startup, update                  string
		totalUp, downtime, totalDowntime int64
	)
	err := s.db.QueryRow(
		"SELECT startup, last_update, total_uptime_ms, downtime_ms, total_downtime_ms FROM machine_data ORDER BY id DESC LIMIT 1",
	).Scan(&startup, &update, &totalUp, &downtime, &totalDowntime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	st, err := time.ParseInLocation(timeLayout, startup, time.Local)
	if err != nil {
		return nil, fmt.Errorf("sqlite: machine_data startup: %w", err)
	}
	up, err := time.ParseInLocation(timeLayout, update, time.Local)
	if err != nil {
		return nil, fmt.Errorf("sqlite: machine_data last_update: %w", err)
	}

	return &status.MachineRecord{
		Startup:       st,
		Update:        up,
		TotalUptime:   time.Duration(totalUp) * time.Millisecond,
		Downtime:      time.Duration(downtime) * time.Millisecond,
		TotalDowntime: time.Duration(totalDowntime) * time.Millisecond,
	}, nil
}

// SaveMachine appends one uptime record.
func (s *Store) SaveMachine(rec status.MachineRecord) error {
	_, err := s.db.Exec(
		"INSERT INTO machine_data(startup, last_update, total_uptime_ms, downtime_ms, total_downtime_ms) VALUES(?, ?, ?, ?, ?)",
		rec.Startup.Format(timeLayout), rec.Update.Format(timeLayout),
		rec.TotalUptime.Milliseconds(), rec.Downtime.Milliseconds(), rec.TotalDowntime.Milliseconds(),
	)
	return err
}
