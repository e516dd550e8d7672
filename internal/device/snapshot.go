// internal/device/snapshot.go
package device

import (
	"fmt"
	"strconv"
	"strings"
)

// Snapshot holds the latest decoded values of one device.
// Its shape is fixed by the schema; only values change.
type Snapshot struct {
	schema *Schema
	values [][]float64 // one flat slice per schema field
}

// NewSnapshot allocates a zero-filled snapshot for schema.
func NewSnapshot(schema *Schema) *Snapshot {
	s := &Snapshot{
		schema: schema,
		values: make([][]float64, len(schema.fields)),
	}
	for i, f := range schema.fields {
		s.values[i] = make([]float64, f.Len())
	}
	return s
}

// Schema returns the layout the snapshot was built from.
func (s *Snapshot) Schema() *Schema { return s.schema }

// Reset zeroes every field in place. Dimensions never change.
func (s *Snapshot) Reset() {
	for i := range s.schema.fields {
		v := s.values[i]
		for j := range v {
			v[j] = 0
		}
	}
}

// Clone returns an independent copy.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		schema: s.schema,
		values: make([][]float64, len(s.values)),
	}
	for i, v := range s.values {
		c.values[i] = append([]float64(nil), v...)
	}
	return c
}

func (s *Snapshot) offset(name string, idx []int) (int, int, error) {
	fi, ok := s.schema.index[name]
	if !ok {
		return 0, 0, fmt.Errorf("snapshot: unknown field %q", name)
	}
	f := s.schema.fields[fi]
	if len(idx) != len(f.Shape) {
		return 0, 0, fmt.Errorf("snapshot: field %q takes %d indices, got %d", name, len(f.Shape), len(idx))
	}

	off := 0
	for d, i := range idx {
		if i < 0 || i >= f.Shape[d] {
			return 0, 0, fmt.Errorf("snapshot: field %q index %d out of range [0,%d)", name, i, f.Shape[d])
		}
		off = off*f.Shape[d] + i
	}
	return fi, off, nil
}

// Set stores v into field name at idx (no indices for scalars).
func (s *Snapshot) Set(name string, v float64, idx ...int) error {
	fi, off, err := s.offset(name, idx)
	if err != nil {
		return err
	}
	s.values[fi][off] = v
	return nil
}

// Get reads field name at idx.
func (s *Snapshot) Get(name string, idx ...int) (float64, error) {
	fi, off, err := s.offset(name, idx)
	if err != nil {
		return 0, err
	}
	return s.values[fi][off], nil
}

// Scalar returns a scalar field value, 0 when the name is unknown.
func (s *Snapshot) Scalar(name string) float64 {
	v, _ := s.Get(name)
	return v
}

// At returns an array element, 0 when the name or index is invalid.
func (s *Snapshot) At(name string, idx ...int) float64 {
	v, _ := s.Get(name, idx...)
	return v
}

// Flat returns a copy of a field's values in row-major order and its shape.
func (s *Snapshot) Flat(name string) ([]float64, []int, bool) {
	fi, ok := s.schema.index[name]
	if !ok {
		return nil, nil, false
	}
	f := s.schema.fields[fi]
	return append([]float64(nil), s.values[fi]...), append([]int(nil), f.Shape...), true
}

// Value is one flattened snapshot entry.
type Value struct {
	Name  string
	Field string
	Unit  string
	Index []int
	Value float64
}

// Values flattens the snapshot in schema order.
// Array elements are named like Cell_Voltage[3][11].
func (s *Snapshot) Values() []Value {
	var out []Value
	for fi, f := range s.schema.fields {
		if !f.IsArray() {
			out = append(out, Value{Name: f.Name, Field: f.Name, Unit: f.Unit, Value: s.values[fi][0]})
			continue
		}
		idx := make([]int, len(f.Shape))
		for _, v := range s.values[fi] {
			out = append(out, Value{
				Name:  indexedName(f.Name, idx),
				Field: f.Name,
				Unit:  f.Unit,
				Index: append([]int(nil), idx...),
				Value: v,
			})
			for d := len(idx) - 1; d >= 0; d-- {
				idx[d]++
				if idx[d] < f.Shape[d] {
					break
				}
				idx[d] = 0
			}
		}
	}
	return out
}

func indexedName(name string, idx []int) string {
	var b strings.Builder
	b.WriteString(name)
	for _, i := range idx {
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(i))
		b.WriteByte(']')
	}
	return b.String()
}
