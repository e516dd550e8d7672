// internal/device/schema.go
package device

import (
	"errors"
	"fmt"
)

// Field declares one measurement slot of a device snapshot.
// A nil Shape is a scalar; otherwise the field is an array of that shape.
type Field struct {
	Name  string
	Unit  string
	Shape []int
}

// Scalar declares a scalar field.
func Scalar(name, unit string) Field {
	return Field{Name: name, Unit: unit}
}

// Array declares an array field with a fixed shape (one or more dimensions).
func Array(name, unit string, shape ...int) Field {
	return Field{Name: name, Unit: unit, Shape: shape}
}

// IsArray reports whether the field is an array.
func (f Field) IsArray() bool { return len(f.Shape) > 0 }

// Len is the number of values stored by the field.
func (f Field) Len() int {
	n := 1
	for _, d := range f.Shape {
		n *= d
	}
	return n
}

// Schema is the fixed, ordered measurement layout of a device type.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema validates field declarations.
func NewSchema(fields ...Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, errors.New("schema: at least one field required")
	}

	s := &Schema{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}

	for _, f := range fields {
		if f.Name == "" {
			return nil, errors.New("schema: field name required")
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("schema: duplicate field %q", f.Name)
		}
		for _, d := range f.Shape {
			if d <= 0 {
				return nil, fmt.Errorf("schema: field %q: dimensions must be > 0", f.Name)
			}
		}

		shape := append([]int(nil), f.Shape...)
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, Field{Name: f.Name, Unit: f.Unit, Shape: shape})
	}

	return s, nil
}

// MustSchema is NewSchema for static declarations.
func MustSchema(fields ...Field) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns the declared fields in order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}
