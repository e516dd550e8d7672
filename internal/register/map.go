// internal/register/map.go
package register

import (
	"fmt"
	"sort"
)

// Map is the declarative register layout of one device type:
// named read sequences and named write commands.
// It is immutable after NewMap.
type Map struct {
	sequences map[string]Sequence
	writes    map[string]WriteCommand
}

// NewMap validates and indexes a register layout.
// Command names are shared between sequences and writes and must be unique.
func NewMap(seqs []Sequence, writes []WriteCommand) (*Map, error) {
	m := &Map{
		sequences: make(map[string]Sequence, len(seqs)),
		writes:    make(map[string]WriteCommand, len(writes)),
	}

	for _, s := range seqs {
		if s.Name == "" {
			return nil, fmt.Errorf("register map: sequence name required")
		}
		if _, dup := m.sequences[s.Name]; dup {
			return nil, fmt.Errorf("register map: duplicate command %q", s.Name)
		}
		if len(s.Blocks) == 0 {
			return nil, fmt.Errorf("register map: sequence %q has no blocks", s.Name)
		}

		for i, b := range s.Blocks {
			if !b.FC.IsRead() {
				return nil, fmt.Errorf("register map: sequence %q block %d: fc 0x%02X is not a register read", s.Name, i+1, uint8(b.FC))
			}
			if b.Count == 0 || b.Count > MaxReadCount {
				return nil, fmt.Errorf("register map: sequence %q block %d: count %d outside 1..%d", s.Name, i+1, b.Count, MaxReadCount)
			}
			if b.End() > 0xFFFF {
				return nil, fmt.Errorf("register map: sequence %q block %d: range exceeds address space", s.Name, i+1)
			}
			if b.Target == "" {
				return nil, fmt.Errorf("register map: sequence %q block %d: decode target required", s.Name, i+1)
			}
		}

		blocks := make([]ReadBlock, len(s.Blocks))
		copy(blocks, s.Blocks)
		m.sequences[s.Name] = Sequence{Name: s.Name, Blocks: blocks}
	}

	if err := CheckOverlap(seqs); err != nil {
		return nil, err
	}

	for _, w := range writes {
		if w.Name == "" {
			return nil, fmt.Errorf("register map: write name required")
		}
		if _, dup := m.sequences[w.Name]; dup {
			return nil, fmt.Errorf("register map: duplicate command %q", w.Name)
		}
		if _, dup := m.writes[w.Name]; dup {
			return nil, fmt.Errorf("register map: duplicate command %q", w.Name)
		}
		if !w.FC.IsWrite() {
			return nil, fmt.Errorf("register map: write %q: fc 0x%02X is not a register write", w.Name, uint8(w.FC))
		}
		if w.Kind == ScaledWrite && w.Factor == 0 {
			return nil, fmt.Errorf("register map: write %q: scale factor must be non-zero", w.Name)
		}
		if w.Kind == FixedWrite && w.FC == FcWriteSingleRegister && w.Fixed > 0xFFFF {
			return nil, fmt.Errorf("register map: write %q: fixed value 0x%X exceeds one register", w.Name, w.Fixed)
		}
		m.writes[w.Name] = w
	}

	return m, nil
}

// CheckOverlap rejects read blocks that share registers under the same
// function code. Blocks marked Alias are exempt, as is an identical block
// reused by another sequence.
func CheckOverlap(seqs []Sequence) error {
	var all []ReadBlock
	var owner []string

	for _, s := range seqs {
		for _, b := range s.Blocks {
			for j, o := range all {
				if b.Alias || o.Alias {
					continue
				}
				if b.sameGeometry(o) && owner[j] != s.Name {
					continue
				}
				if b.overlaps(o) {
					return fmt.Errorf(
						"register map: overlap: sequence %q block (%s) overlaps sequence %q block (%s)",
						s.Name, b, owner[j], o,
					)
				}
			}
			all = append(all, b)
			owner = append(owner, s.Name)
		}
	}
	return nil
}

// Sequence returns the named read sequence.
func (m *Map) Sequence(name string) (Sequence, bool) {
	s, ok := m.sequences[name]
	return s, ok
}

// Write returns the named write command.
func (m *Map) Write(name string) (WriteCommand, bool) {
	w, ok := m.writes[name]
	return w, ok
}

// Sequences returns all read sequences sorted by name.
func (m *Map) Sequences() []Sequence {
	out := make([]Sequence, 0, len(m.sequences))
	for _, s := range m.sequences {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Commands returns every command name (reads and writes), sorted.
func (m *Map) Commands() []string {
	out := make([]string, 0, len(m.sequences)+len(m.writes))
	for n := range m.sequences {
		out = append(out, n)
	}
	for n := range m.writes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
