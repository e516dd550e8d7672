// internal/transport/errors.go
package transport

import (
	"errors"

	"github.com/goburrow/modbus"
)

// ErrorCode extracts a best-effort uint16 code from an error.
// Modbus exceptions yield their exception code; anything else that does not
// expose a code returns 1 (generic error). nil returns 0.
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	var me *modbus.ModbusError
	if errors.As(err, &me) {
		return uint16(me.ExceptionCode)
	}

	type coder interface{ Code() uint16 }
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}

	return 1
}
