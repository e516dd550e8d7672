// internal/device/errors.go
package device

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/bms-poller/internal/register"
)

var (
	// ErrUnknownCommand is returned for a command name not in the profile.
	ErrUnknownCommand = errors.New("unrecognized command")
	// ErrTransport matches every TransportError.
	ErrTransport = errors.New("transport error")
	// ErrMalformedResponse is a response whose register count is wrong.
	ErrMalformedResponse = errors.New("malformed response")

	ErrMissingParam = register.ErrMissingParam
	ErrParamRange   = register.ErrParamRange
)

// TransportError is a failed Transport Port call.
type TransportError struct {
	Op      register.FunctionCode
	Unit    uint8
	Address uint16
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s unit=%d addr=0x%04X: %v", e.Op, e.Unit, e.Address, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTransport) true for any TransportError.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// BlockFailure records one failed block of a read sequence.
type BlockFailure struct {
	// Ordinal is the 1-based position of the block in its sequence.
	Ordinal int
	Block   register.ReadBlock
	Err     error
}

// ReadSequenceError reports the failed blocks of a composite read.
// Blocks not listed were read and decoded.
type ReadSequenceError struct {
	Command  string
	Total    int
	Failures []BlockFailure
}

func (e *ReadSequenceError) Error() string {
	kind := "partial read failure"
	if !e.Partial() {
		kind = "read failure"
	}

	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("block %d: %v", f.Ordinal, f.Err))
	}
	return fmt.Sprintf("%s: %s (%d/%d blocks failed): %s",
		e.Command, kind, len(e.Failures), e.Total, strings.Join(parts, " | "))
}

// Partial reports whether at least one block succeeded.
func (e *ReadSequenceError) Partial() bool {
	return len(e.Failures) < e.Total
}

// Failed returns the ordinals of the failed blocks.
func (e *ReadSequenceError) Failed() []int {
	out := make([]int, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Ordinal
	}
	return out
}

func (e *ReadSequenceError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Err
	}
	return out
}
