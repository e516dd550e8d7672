// internal/profile/declarative.go
package profile

import (
	"fmt"

	"github.com/tamzrod/bms-poller/internal/config"
	"github.com/tamzrod/bms-poller/internal/device"
	"github.com/tamzrod/bms-poller/internal/register"
)

type wordValue struct {
	word     int
	field    string
	index    []int
	scale    register.Scale
	unsigned bool
}

func decodeWords(values []wordValue) device.DecodeFunc {
	return func(s *device.Snapshot, regs []int32, _ int) error {
		for _, v := range values {
			if v.word >= len(regs) {
				return fmt.Errorf("word %d outside %d registers", v.word, len(regs))
			}
			raw := regs[v.word]
			if v.unsigned {
				raw = int32(uint16(raw))
			}
			if err := s.Set(v.field, v.scale.Apply(raw), v.index...); err != nil {
				return err
			}
		}
		return nil
	}
}

// FromConfig builds a profile from a declarative YAML description.
// Each block gets its own decode target named "<sequence>#<n>".
func FromConfig(pc config.ProfileConfig) (*device.Profile, error) {
	fields := make([]device.Field, 0, len(pc.Fields))
	for _, f := range pc.Fields {
		fields = append(fields, device.Field{Name: f.Name, Unit: f.Unit, Shape: f.Shape})
	}
	schema, err := device.NewSchema(fields...)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", pc.Type, err)
	}

	targets := make(map[string]device.Target)
	seqs := make([]register.Sequence, 0, len(pc.Sequences))

	for _, sc := range pc.Sequences {
		seq := register.Sequence{Name: sc.Name}

		for i, bc := range sc.Blocks {
			target := config.BlockTarget(sc.Name, i)

			values := make([]wordValue, 0, len(bc.Values))
			for _, vc := range bc.Values {
				if vc.Word < 0 || vc.Word >= int(bc.Count) {
					return nil, fmt.Errorf("profile %s: %s block %d: word %d outside block of %d", pc.Type, sc.Name, i+1, vc.Word, bc.Count)
				}
				values = append(values, wordValue{
					word:     vc.Word,
					field:    vc.Field,
					index:    vc.Index,
					scale:    register.Scale{Div: vc.Div, Offset: vc.Offset},
					unsigned: vc.Unsigned,
				})
			}
			targets[target] = device.Target{Words: int(bc.Count), Decode: decodeWords(values)}

			b := register.Block(register.FunctionCode(bc.FC), bc.Address, bc.Count, target)
			b.Alias = bc.Alias
			seq.Blocks = append(seq.Blocks, b)
		}
		seqs = append(seqs, seq)
	}

	writes := make([]register.WriteCommand, 0, len(pc.Writes))
	for _, wc := range pc.Writes {
		fc := register.FunctionCode(wc.FC)
		switch {
		case wc.Param != nil && wc.Scale != nil:
			return nil, fmt.Errorf("profile %s: write %q: param and scale are exclusive", pc.Type, wc.Name)
		case wc.Param != nil:
			writes = append(writes, register.Fixed(wc.Name, fc, wc.Address, *wc.Param))
		case wc.Scale != nil:
			writes = append(writes, register.Scaled(wc.Name, fc, wc.Address, *wc.Scale))
		default:
			writes = append(writes, register.Raw(wc.Name, fc, wc.Address))
		}
	}

	m, err := register.NewMap(seqs, writes)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", pc.Type, err)
	}

	return device.NewProfile(pc.Type, schema, targets, m)
}
