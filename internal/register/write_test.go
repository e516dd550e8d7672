// internal/register/write_test.go
package register

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_FixedIgnoresCaller(t *testing.T) {
	w := Fixed("w", FcWriteSingleRegister, 0xFFFF, 0x0700)

	for _, p := range []Param{NoParam, ParamOf(0), ParamOf(5), ParamOf(-3), ParamOf(0x1234)} {
		v, err := EncodeSingle(w.Resolve(p))
		require.NoError(t, err)
		assert.Equal(t, uint16(0x0700), v)
	}
}

func TestResolve_ScaledMultiplies(t *testing.T) {
	w := Scaled("w", FcWriteMultipleRegisters, 0x200C, 10)

	got, ok := w.Resolve(ParamOf(5)).Value()
	require.True(t, ok)
	assert.Equal(t, 50.0, got)

	regs, err := EncodeMulti(w.Resolve(ParamOf(5)))
	require.NoError(t, err)
	assert.Equal(t, []uint16{50}, regs)
}

func TestResolve_MissingParam(t *testing.T) {
	for _, w := range []WriteCommand{
		Raw("raw", FcWriteMultipleRegisters, 0x200C),
		Scaled("scaled", FcWriteMultipleRegisters, 0x200C, 10),
	} {
		_, err := EncodeMulti(w.Resolve(NoParam))
		assert.ErrorIs(t, err, ErrMissingParam, w.Name)

		_, err = EncodeSingle(w.Resolve(NoParam))
		assert.ErrorIs(t, err, ErrMissingParam, w.Name)
	}
}

func TestResolve_RawPassesThrough(t *testing.T) {
	w := Raw("raw", FcWriteSingleRegister, 1)
	v, err := EncodeSingle(w.Resolve(ParamOf(1234)))
	require.NoError(t, err)
	assert.Equal(t, uint16(1234), v)
}

func TestEncodeMulti_SendsLowHalfOnly(t *testing.T) {
	regs, err := EncodeMulti(ParamOf(0x00012345))
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x2345}, regs)

	hi, lo := Split32(0xABCD1234)
	assert.Equal(t, uint16(0xABCD), hi)
	assert.Equal(t, uint16(0x1234), lo)
}

func TestEncode_Range(t *testing.T) {
	_, err := EncodeSingle(ParamOf(0x10000))
	assert.ErrorIs(t, err, ErrParamRange)

	_, err = EncodeSingle(ParamOf(-1))
	assert.ErrorIs(t, err, ErrParamRange)

	_, err = EncodeMulti(ParamOf(float64(1 << 33)))
	assert.ErrorIs(t, err, ErrParamRange)

	v, err := EncodeSingle(ParamOf(12.6))
	require.NoError(t, err)
	assert.Equal(t, uint16(13), v)
}
