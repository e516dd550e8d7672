// internal/device/command.go
package device

import (
	"fmt"

	"github.com/tamzrod/bms-poller/internal/register"
)

// CommandKind tells which branch a command took.
type CommandKind uint8

const (
	KindRead CommandKind = iota + 1
	KindWrite
)

func (k CommandKind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindWrite:
		return "write"
	default:
		return "unknown"
	}
}

// CommandResult is the outcome of RunCommand.
type CommandResult struct {
	Command string
	Kind    CommandKind

	// Read sequences
	Blocks int
	Failed []int

	// Writes
	Ack *WriteAck
}

// RunCommand dispatches name to a read sequence or a write command.
//
// Read sequences attempt every block in order; a failed block never stops the
// blocks after it. If any block failed the error is a *ReadSequenceError and
// the result still lists the failed ordinals.
func (n *Node) RunCommand(name string, p register.Param) (CommandResult, error) {
	res := CommandResult{Command: name}

	if seq, ok := n.profile.Map.Sequence(name); ok {
		res.Kind = KindRead
		res.Blocks = len(seq.Blocks)

		var failures []BlockFailure
		for i, b := range seq.Blocks {
			if err := n.ExecuteRead(b); err != nil {
				failures = append(failures, BlockFailure{Ordinal: i + 1, Block: b, Err: err})
			}
		}

		if len(failures) == 0 {
			return res, nil
		}
		rerr := &ReadSequenceError{Command: name, Total: len(seq.Blocks), Failures: failures}
		res.Failed = rerr.Failed()
		return res, rerr
	}

	if w, ok := n.profile.Map.Write(name); ok {
		res.Kind = KindWrite
		ack, err := n.ExecuteWrite(w.FC, w.Address, w.Resolve(p))
		if err != nil {
			return res, fmt.Errorf("%s: %w", name, err)
		}
		res.Ack = &ack
		return res, nil
	}

	return res, fmt.Errorf("device %s: %w: %q", n.cfg.Name, ErrUnknownCommand, name)
}
