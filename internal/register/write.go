// internal/register/write.go
package register

import (
	"errors"
	"math"
)

var (
	// ErrMissingParam is returned when a write has no value to send.
	ErrMissingParam = errors.New("missing parameter")
	// ErrParamRange is returned when a value does not fit the register encoding.
	ErrParamRange = errors.New("parameter out of range")
)

// Param is an optional caller-supplied write value.
type Param struct {
	value float64
	set   bool
}

// NoParam is the absent parameter.
var NoParam = Param{}

// ParamOf wraps v as a present parameter.
func ParamOf(v float64) Param {
	return Param{value: v, set: true}
}

// Value returns the parameter and whether it is present.
func (p Param) Value() (float64, bool) {
	return p.value, p.set
}

// WriteKind selects how a write command resolves its value.
type WriteKind uint8

const (
	// RawWrite sends the caller parameter unmodified.
	RawWrite WriteKind = iota
	// FixedWrite always sends the literal from the map, ignoring the caller.
	FixedWrite
	// ScaledWrite multiplies the caller parameter by Factor.
	ScaledWrite
)

func (k WriteKind) String() string {
	switch k {
	case FixedWrite:
		return "fixed"
	case ScaledWrite:
		return "scaled"
	default:
		return "raw"
	}
}

// WriteCommand is a write descriptor from a register map.
type WriteCommand struct {
	Name    string
	FC      FunctionCode
	Address uint16

	Kind   WriteKind
	Fixed  uint32
	Factor float64
}

// Fixed builds a write that always transmits v.
func Fixed(name string, fc FunctionCode, addr uint16, v uint32) WriteCommand {
	return WriteCommand{Name: name, FC: fc, Address: addr, Kind: FixedWrite, Fixed: v}
}

// Scaled builds a write that transmits caller*factor.
func Scaled(name string, fc FunctionCode, addr uint16, factor float64) WriteCommand {
	return WriteCommand{Name: name, FC: fc, Address: addr, Kind: ScaledWrite, Factor: factor}
}

// Raw builds a write that transmits the caller parameter as given.
func Raw(name string, fc FunctionCode, addr uint16) WriteCommand {
	return WriteCommand{Name: name, FC: fc, Address: addr, Kind: RawWrite}
}

// Resolve applies the descriptor to the caller parameter.
// The result may still be NoParam; encoding rejects it.
func (w WriteCommand) Resolve(p Param) Param {
	switch w.Kind {
	case FixedWrite:
		return ParamOf(float64(w.Fixed))
	case ScaledWrite:
		if !p.set {
			return NoParam
		}
		return ParamOf(p.value * w.Factor)
	default:
		return p
	}
}

func integral(p Param, max float64) (uint32, error) {
	if !p.set {
		return 0, ErrMissingParam
	}
	v := math.Round(p.value)
	if math.IsNaN(v) || v < 0 || v > max {
		return 0, ErrParamRange
	}
	return uint32(v), nil
}

// EncodeSingle encodes p as one register value (FC 0x06).
func EncodeSingle(p Param) (uint16, error) {
	v, err := integral(p, math.MaxUint16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

// Split32 returns the big-endian 16-bit halves of v.
func Split32(v uint32) (hi, lo uint16) {
	return uint16(v >> 16), uint16(v)
}

// EncodeMulti encodes p for a multi-register write (FC 0x10).
// The value is split into two halves and only the low half is returned;
// devices on this map accept a single register. The high half is dropped.
func EncodeMulti(p Param) ([]uint16, error) {
	v, err := integral(p, math.MaxUint32)
	if err != nil {
		return nil, err
	}
	_, lo := Split32(v)
	return []uint16{lo}, nil
}
