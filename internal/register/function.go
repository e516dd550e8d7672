// internal/register/function.go
package register

import "fmt"

// FunctionCode is the Modbus operation selector used by a register map entry.
type FunctionCode uint8

const (
	FcReadHoldingRegisters   FunctionCode = 0x03
	FcReadInputRegisters     FunctionCode = 0x04
	FcWriteSingleRegister    FunctionCode = 0x06
	FcWriteMultipleRegisters FunctionCode = 0x10
)

// IsRead reports whether fc is one of the register read codes.
func (fc FunctionCode) IsRead() bool {
	return fc == FcReadHoldingRegisters || fc == FcReadInputRegisters
}

// IsWrite reports whether fc is one of the register write codes.
func (fc FunctionCode) IsWrite() bool {
	return fc == FcWriteSingleRegister || fc == FcWriteMultipleRegisters
}

func (fc FunctionCode) String() string {
	switch fc {
	case FcReadHoldingRegisters:
		return "Read_Holding_Registers"
	case FcReadInputRegisters:
		return "Read_Input_Registers"
	case FcWriteSingleRegister:
		return "Write_Single_Register"
	case FcWriteMultipleRegisters:
		return "Write_Multiple_Registers"
	default:
		return fmt.Sprintf("FC_0x%02X", uint8(fc))
	}
}
