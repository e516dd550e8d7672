// internal/config/load_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sample = `
poller:
  buses:
    - id: rs485
      transport:
        mode: rtu
        endpoint: /dev/ttyUSB0
        parity: e
      poll:
        interval_ms: 5000
      devices:
        - name: BMS
          type: kyuden_bms_72kwh
          unit_id: 1
outputs:
  csv:
    path: save/modbus_log.csv
logging:
  level: DEBUG
`

func TestLoadValidateNormalize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	Normalize(cfg)

	b := cfg.Poller.Buses[0]
	if b.Transport.BaudRate != DefaultBaudRate || b.Transport.DataBits != 8 || b.Transport.StopBits != 1 {
		t.Fatalf("serial defaults not applied: %+v", b.Transport)
	}
	if b.Transport.Parity != "E" {
		t.Fatalf("parity not normalized: %q", b.Transport.Parity)
	}
	if b.Transport.TimeoutMs != DefaultTimeoutMs {
		t.Fatalf("timeout default: got %d", b.Transport.TimeoutMs)
	}
	if b.Poll.IntervalMs != 5000 {
		t.Fatalf("interval overwritten: got %d", b.Poll.IntervalMs)
	}

	d := b.Devices[0]
	if d.DelayMs != DefaultDelayMs {
		t.Fatalf("delay default: got %d", d.DelayMs)
	}
	if len(d.Commands) != 1 || d.Commands[0] != DefaultCommand {
		t.Fatalf("commands default: got %v", d.Commands)
	}

	if cfg.Outputs.CSV.RetentionDays != DefaultRetentionDays {
		t.Fatalf("retention default: got %d", cfg.Outputs.CSV.RetentionDays)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level not lowercased: %q", cfg.Logging.Level)
	}
}

func TestParse_UnknownKeyRejected(t *testing.T) {
	if _, err := Parse([]byte("poller:\n  busses: []\n")); err == nil {
		t.Fatalf("expected unknown key error, got nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error, got nil")
	}
}
