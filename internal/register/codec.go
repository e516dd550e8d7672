// internal/register/codec.go
package register

// DecodeSigned converts raw register words to signed values using
// 16-bit two's complement. Pure: raw is not modified.
func DecodeSigned(raw []uint16) []int32 {
	out := make([]int32, len(raw))
	for i, w := range raw {
		if w >= 0x8000 {
			out[i] = -(int32(w^0xFFFF) + 1)
		} else {
			out[i] = int32(w)
		}
	}
	return out
}

// Scale maps a sign-corrected register value onto a physical unit.
// Value = v/Div - Offset. A zero Div is treated as 1.
type Scale struct {
	Div    float64
	Offset float64
}

var (
	Unity = Scale{Div: 1}
	Deci  = Scale{Div: 10}
	Centi = Scale{Div: 100}
	Milli = Scale{Div: 1000}

	// Celsius55 maps the BMS temperature encoding (raw - 55) to degC.
	Celsius55 = Scale{Div: 1, Offset: 55}
)

// Apply scales one decoded value.
func (s Scale) Apply(v int32) float64 {
	div := s.Div
	if div == 0 {
		div = 1
	}
	return float64(v)/div - s.Offset
}
