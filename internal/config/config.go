// internal/config/config.go
package config

type Config struct {
	Poller   PollerConfig    `yaml:"poller"`
	Profiles []ProfileConfig `yaml:"profiles"`
	Outputs  OutputsConfig   `yaml:"outputs"`
	Logging  LoggingConfig   `yaml:"logging"`
}

type PollerConfig struct {
	Buses []BusConfig `yaml:"buses"`
}

// ---- BUS ----

// BusConfig is one Modbus link. Devices on one bus are polled sequentially.
type BusConfig struct {
	ID        string          `yaml:"id"`
	Transport TransportConfig `yaml:"transport"`
	Poll      PollConfig      `yaml:"poll"`
	Devices   []DeviceConfig  `yaml:"devices"`
}

type TransportConfig struct {
	Mode      string `yaml:"mode"`     // tcp | rtu
	Endpoint  string `yaml:"endpoint"` // host:port or serial device
	TimeoutMs int    `yaml:"timeout_ms"`

	// RTU only
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"` // N | E | O
	StopBits int    `yaml:"stop_bits"`
}

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	UnitID   uint8    `yaml:"unit_id"`
	DelayMs  int      `yaml:"delay_ms"`
	Commands []string `yaml:"commands"`

	// ResetBeforePoll zeroes the snapshot before each cycle.
	ResetBeforePoll bool `yaml:"reset_before_poll"`
}

// ---- DECLARATIVE PROFILES ----

type ProfileConfig struct {
	Type      string           `yaml:"type"`
	Fields    []FieldConfig    `yaml:"fields"`
	Sequences []SequenceConfig `yaml:"sequences"`
	Writes    []WriteConfig    `yaml:"writes"`
}

type FieldConfig struct {
	Name  string `yaml:"name"`
	Unit  string `yaml:"unit"`
	Shape []int  `yaml:"shape"` // empty => scalar
}

type SequenceConfig struct {
	Name   string        `yaml:"name"`
	Blocks []BlockConfig `yaml:"blocks"`
}

type BlockConfig struct {
	FC      uint8         `yaml:"fc"`
	Address uint16        `yaml:"address"`
	Count   uint16        `yaml:"count"`
	Alias   bool          `yaml:"alias"`
	Values  []ValueConfig `yaml:"values"`
}

// ValueConfig maps one word of a block onto a snapshot field.
type ValueConfig struct {
	Word     int     `yaml:"word"`
	Field    string  `yaml:"field"`
	Index    []int   `yaml:"index"`
	Div      float64 `yaml:"div"`
	Offset   float64 `yaml:"offset"`
	Unsigned bool    `yaml:"unsigned"`
}

// WriteConfig sets at most one of Param (fixed) or Scale.
type WriteConfig struct {
	Name    string   `yaml:"name"`
	FC      uint8    `yaml:"fc"`
	Address uint16   `yaml:"address"`
	Param   *uint32  `yaml:"param"`
	Scale   *float64 `yaml:"scale"`
}

// ---- OUTPUTS ----

type OutputsConfig struct {
	Console ConsoleConfig `yaml:"console"`
	CSV     CSVConfig     `yaml:"csv"`
	SQLite  SQLiteConfig  `yaml:"sqlite"`
	Metrics MetricsConfig `yaml:"metrics"`

	// CPUTemp adds the host CPU temperature to every record.
	CPUTemp bool `yaml:"cpu_temp"`
}

type ConsoleConfig struct {
	Enabled bool `yaml:"enabled"`
}

type CSVConfig struct {
	Path          string `yaml:"path"` // empty => disabled
	RetentionDays int    `yaml:"retention_days"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"` // empty => disabled
}

type MetricsConfig struct {
	Listen string `yaml:"listen"` // empty => disabled
}

// ---- LOGGING ----

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}
