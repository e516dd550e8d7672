// internal/register/codec_test.go
package register

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSigned_FullRange(t *testing.T) {
	for w := 0; w <= 0xFFFF; w++ {
		got := DecodeSigned([]uint16{uint16(w)})[0]
		want := int32(w)
		if w >= 0x8000 {
			want = int32(w) - 0x10000
		}
		if got != want {
			t.Fatalf("DecodeSigned(0x%04X) = %d, want %d", w, got, want)
		}
		if got < -32768 || got > 32767 {
			t.Fatalf("DecodeSigned(0x%04X) = %d out of int16 range", w, got)
		}
	}
}

func TestDecodeSigned_PreservesOrderAndInput(t *testing.T) {
	raw := []uint16{0x0001, 0xFFFF, 0x8000, 0x7FFF}
	got := DecodeSigned(raw)

	assert.Equal(t, []int32{1, -1, -32768, 32767}, got)
	assert.Equal(t, []uint16{0x0001, 0xFFFF, 0x8000, 0x7FFF}, raw)
}

func TestScaleApply(t *testing.T) {
	tests := []struct {
		name  string
		scale Scale
		in    int32
		want  float64
	}{
		{"unity", Unity, 42, 42},
		{"deci", Deci, 5234, 523.4},
		{"centi", Centi, -150, -1.5},
		{"milli", Milli, 3301, 3.301},
		{"celsius", Celsius55, 80, 25},
		{"celsius below zero", Celsius55, 40, -15},
		{"zero div", Scale{}, 7, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.scale.Apply(tt.in), 1e-9)
		})
	}
}

func TestFunctionCodeClasses(t *testing.T) {
	require.True(t, FcReadHoldingRegisters.IsRead())
	require.True(t, FcReadInputRegisters.IsRead())
	require.False(t, FcWriteSingleRegister.IsRead())
	require.True(t, FcWriteMultipleRegisters.IsWrite())
	require.Equal(t, "FC_0x2B", FunctionCode(0x2B).String())
}
