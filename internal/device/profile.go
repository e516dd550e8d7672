// internal/device/profile.go
package device

import (
	"errors"
	"fmt"

	"github.com/tamzrod/bms-poller/internal/register"
)

// DecodeFunc writes sign-corrected register values into a snapshot.
// index is the block's array index, register.NoIndex if it has none.
type DecodeFunc func(s *Snapshot, regs []int32, index int) error

// Target is a decode routine referenced by read blocks.
type Target struct {
	// Words is the exact register count the routine consumes.
	Words int
	// Indexed targets require a block index.
	Indexed bool
	Decode  DecodeFunc
}

// Profile binds a device type to its snapshot schema, decode targets and register map.
type Profile struct {
	Type    string
	Schema  *Schema
	Targets map[string]Target
	Map     *register.Map
}

// NewProfile checks that every read block resolves to a target whose
// word count matches the block count.
func NewProfile(typ string, schema *Schema, targets map[string]Target, m *register.Map) (*Profile, error) {
	if typ == "" {
		return nil, errors.New("profile: type required")
	}
	if schema == nil {
		return nil, fmt.Errorf("profile %s: schema required", typ)
	}
	if m == nil {
		return nil, fmt.Errorf("profile %s: register map required", typ)
	}

	for name, t := range targets {
		if t.Decode == nil {
			return nil, fmt.Errorf("profile %s: target %q has no decode routine", typ, name)
		}
	}

	for _, seq := range m.Sequences() {
		for i, b := range seq.Blocks {
			t, ok := targets[b.Target]
			if !ok {
				return nil, fmt.Errorf("profile %s: %s block %d: unknown decode target %q", typ, seq.Name, i+1, b.Target)
			}
			if int(b.Count) != t.Words {
				return nil, fmt.Errorf("profile %s: %s block %d: count %d does not match target %q (%d words)",
					typ, seq.Name, i+1, b.Count, b.Target, t.Words)
			}
			if t.Indexed != (b.Index != register.NoIndex) {
				return nil, fmt.Errorf("profile %s: %s block %d: index use does not match target %q", typ, seq.Name, i+1, b.Target)
			}
		}
	}

	return &Profile{Type: typ, Schema: schema, Targets: targets, Map: m}, nil
}
