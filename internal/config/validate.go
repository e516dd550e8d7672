// internal/config/validate.go
package config

import (
	"fmt"
	"strings"

	"github.com/tamzrod/bms-poller/internal/register"
)

// BuiltinTypes are device types that declared profiles must not shadow.
// Kept here so validation stays free of profile imports.
var BuiltinTypes = []string{"kyuden_bms_72kwh"}

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}
	if len(cfg.Poller.Buses) == 0 {
		return fmt.Errorf("poller: at least one bus required")
	}

	// ------------------------------------------------------------
	// BUS + DEVICE IDENTITY
	// ------------------------------------------------------------

	busIDs := make(map[string]struct{})
	deviceNames := make(map[string]string) // name -> bus

	for _, b := range cfg.Poller.Buses {
		if b.ID == "" {
			return fmt.Errorf("bus: id required")
		}
		if _, dup := busIDs[b.ID]; dup {
			return fmt.Errorf("bus %q: duplicate id", b.ID)
		}
		busIDs[b.ID] = struct{}{}

		if err := validateTransport(b.ID, b.Transport); err != nil {
			return err
		}
		if b.Poll.IntervalMs < 0 {
			return fmt.Errorf("bus %q: interval_ms must be >= 0", b.ID)
		}
		if len(b.Devices) == 0 {
			return fmt.Errorf("bus %q: at least one device required", b.ID)
		}

		units := make(map[uint8]string)
		for _, d := range b.Devices {
			if d.Name == "" {
				return fmt.Errorf("bus %q: device name required", b.ID)
			}
			if prev, dup := deviceNames[d.Name]; dup {
				return fmt.Errorf("device %q: duplicate name (buses %q and %q)", d.Name, prev, b.ID)
			}
			deviceNames[d.Name] = b.ID

			if d.Type == "" {
				return fmt.Errorf("device %q: type required", d.Name)
			}
			if d.UnitID < 1 || d.UnitID > 247 {
				return fmt.Errorf("device %q: unit_id %d outside 1..247", d.Name, d.UnitID)
			}
			if prev, dup := units[d.UnitID]; dup {
				return fmt.Errorf(
					"unit_id collision: bus=%s unit_id=%d used by devices %q and %q",
					b.ID, d.UnitID, prev, d.Name,
				)
			}
			units[d.UnitID] = d.Name

			if d.DelayMs < 0 {
				return fmt.Errorf("device %q: delay_ms must be >= 0", d.Name)
			}
			for _, c := range d.Commands {
				if c == "" {
					return fmt.Errorf("device %q: empty command name", d.Name)
				}
			}
		}
	}

	// ------------------------------------------------------------
	// DECLARED PROFILES
	// ------------------------------------------------------------

	types := make(map[string]struct{})
	for _, t := range BuiltinTypes {
		types[t] = struct{}{}
	}
	for _, p := range cfg.Profiles {
		if p.Type == "" {
			return fmt.Errorf("profile: type required")
		}
		if _, dup := types[p.Type]; dup {
			return fmt.Errorf("profile %q: type already defined", p.Type)
		}
		types[p.Type] = struct{}{}

		if err := validateProfile(p); err != nil {
			return err
		}
	}

	// ------------------------------------------------------------
	// OUTPUTS + LOGGING
	// ------------------------------------------------------------

	if cfg.Outputs.CSV.RetentionDays < 0 {
		return fmt.Errorf("outputs.csv: retention_days must be >= 0")
	}
	switch strings.ToLower(cfg.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging: unknown level %q", cfg.Logging.Level)
	}

	return nil
}

func validateTransport(bus string, t TransportConfig) error {
	switch t.Mode {
	case "", "tcp", "rtu":
	default:
		return fmt.Errorf("bus %q: transport mode %q: want tcp or rtu", bus, t.Mode)
	}
	if t.Endpoint == "" {
		return fmt.Errorf("bus %q: transport endpoint required", bus)
	}
	if t.TimeoutMs < 0 {
		return fmt.Errorf("bus %q: timeout_ms must be >= 0", bus)
	}
	switch strings.ToUpper(t.Parity) {
	case "", "N", "E", "O":
	default:
		return fmt.Errorf("bus %q: parity %q: want N, E or O", bus, t.Parity)
	}
	if t.BaudRate < 0 || t.DataBits < 0 || t.StopBits < 0 {
		return fmt.Errorf("bus %q: serial settings must be >= 0", bus)
	}
	return nil
}

func validateProfile(p ProfileConfig) error {
	if len(p.Fields) == 0 {
		return fmt.Errorf("profile %q: at least one field required", p.Type)
	}
	fields := make(map[string]int) // name -> dimensions
	for _, f := range p.Fields {
		if f.Name == "" {
			return fmt.Errorf("profile %q: field name required", p.Type)
		}
		if _, dup := fields[f.Name]; dup {
			return fmt.Errorf("profile %q: duplicate field %q", p.Type, f.Name)
		}
		fields[f.Name] = len(f.Shape)
	}

	var seqs []register.Sequence
	commands := make(map[string]struct{})

	for _, s := range p.Sequences {
		if s.Name == "" {
			return fmt.Errorf("profile %q: sequence name required", p.Type)
		}
		if _, dup := commands[s.Name]; dup {
			return fmt.Errorf("profile %q: duplicate command %q", p.Type, s.Name)
		}
		commands[s.Name] = struct{}{}

		seq := register.Sequence{Name: s.Name}
		for i, b := range s.Blocks {
			if b.FC != 3 && b.FC != 4 {
				return fmt.Errorf("profile %q: %s block %d: fc %d: want 3 or 4", p.Type, s.Name, i+1, b.FC)
			}
			if b.Count == 0 {
				return fmt.Errorf("profile %q: %s block %d: count required", p.Type, s.Name, i+1)
			}
			for _, v := range b.Values {
				if v.Word < 0 || v.Word >= int(b.Count) {
					return fmt.Errorf("profile %q: %s block %d: word %d outside block", p.Type, s.Name, i+1, v.Word)
				}
				dims, ok := fields[v.Field]
				if !ok {
					return fmt.Errorf("profile %q: %s block %d: unknown field %q", p.Type, s.Name, i+1, v.Field)
				}
				if dims != len(v.Index) {
					return fmt.Errorf("profile %q: %s block %d: field %q takes %d indices", p.Type, s.Name, i+1, v.Field, dims)
				}
			}

			rb := register.Block(register.FunctionCode(b.FC), b.Address, b.Count, BlockTarget(s.Name, i))
			rb.Alias = b.Alias
			seq.Blocks = append(seq.Blocks, rb)
		}
		seqs = append(seqs, seq)
	}

	if err := register.CheckOverlap(seqs); err != nil {
		return fmt.Errorf("profile %q: %w", p.Type, err)
	}

	for _, w := range p.Writes {
		if w.Name == "" {
			return fmt.Errorf("profile %q: write name required", p.Type)
		}
		if _, dup := commands[w.Name]; dup {
			return fmt.Errorf("profile %q: duplicate command %q", p.Type, w.Name)
		}
		commands[w.Name] = struct{}{}

		if w.FC != 6 && w.FC != 16 {
			return fmt.Errorf("profile %q: write %q: fc %d: want 6 or 16", p.Type, w.Name, w.FC)
		}
		if w.Param != nil && w.Scale != nil {
			return fmt.Errorf("profile %q: write %q: param and scale are exclusive", p.Type, w.Name)
		}
	}

	return nil
}

// BlockTarget names the decode target of block i (0-based) of a declared sequence.
func BlockTarget(seq string, i int) string {
	return fmt.Sprintf("%s#%d", seq, i+1)
}
