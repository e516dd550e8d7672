// internal/config/normalize.go
package config

import "strings"

const (
	DefaultDelayMs       = 300
	DefaultTimeoutMs     = 1000
	DefaultIntervalMs    = 10000
	DefaultBaudRate      = 9600
	DefaultDataBits      = 8
	DefaultStopBits      = 1
	DefaultRetentionDays = 31
	DefaultCommand       = "read_measurement"
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	for bi := range cfg.Poller.Buses {
		b := &cfg.Poller.Buses[bi]

		t := &b.Transport
		if t.Mode == "" {
			t.Mode = "tcp"
		}
		if t.TimeoutMs == 0 {
			t.TimeoutMs = DefaultTimeoutMs
		}
		if t.Mode == "rtu" {
			if t.BaudRate == 0 {
				t.BaudRate = DefaultBaudRate
			}
			if t.DataBits == 0 {
				t.DataBits = DefaultDataBits
			}
			if t.StopBits == 0 {
				t.StopBits = DefaultStopBits
			}
			t.Parity = strings.ToUpper(t.Parity)
			if t.Parity == "" {
				t.Parity = "N"
			}
		}

		if b.Poll.IntervalMs == 0 {
			b.Poll.IntervalMs = DefaultIntervalMs
		}

		for di := range b.Devices {
			d := &b.Devices[di]
			if d.DelayMs == 0 {
				d.DelayMs = DefaultDelayMs
			}
			if len(d.Commands) == 0 {
				d.Commands = []string{DefaultCommand}
			}
		}
	}

	if cfg.Outputs.CSV.RetentionDays == 0 {
		cfg.Outputs.CSV.RetentionDays = DefaultRetentionDays
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
