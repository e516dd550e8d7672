// internal/device/node.go
package device

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/bms-poller/internal/register"
)

// DefaultDelay is the settling time enforced after every bus transaction.
const DefaultDelay = 300 * time.Millisecond

// Port is the Modbus transport a node issues transactions through.
// Callers sharing one Port between nodes must serialize access.
type Port interface {
	ReadHoldingRegisters(unit uint8, addr, qty uint16) ([]uint16, error)
	ReadInputRegisters(unit uint8, addr, qty uint16) ([]uint16, error)
	WriteRegister(unit uint8, addr, value uint16) error
	WriteRegisters(unit uint8, addr uint16, values []uint16) error
}

// Config is the identity and timing of one node.
type Config struct {
	UnitID uint8
	Name   string
	Delay  time.Duration
}

// WriteAck describes a write the device acknowledged.
type WriteAck struct {
	FC      register.FunctionCode
	Address uint16
	Values  []uint16
}

// Node is one device on a Modbus link.
// It is not safe for concurrent use: the bus is half-duplex.
type Node struct {
	cfg     Config
	profile *Profile
	port    Port
	snap    *Snapshot
	log     zerolog.Logger

	sleep func(time.Duration)
}

// New creates a node with a zeroed snapshot.
func New(cfg Config, profile *Profile, port Port, log zerolog.Logger) (*Node, error) {
	if cfg.UnitID < 1 || cfg.UnitID > 247 {
		return nil, fmt.Errorf("device: unit id %d outside 1..247", cfg.UnitID)
	}
	if cfg.Name == "" {
		return nil, errors.New("device: name required")
	}
	if profile == nil {
		return nil, errors.New("device: profile required")
	}
	if port == nil {
		return nil, errors.New("device: port required")
	}
	if cfg.Delay < 0 {
		return nil, errors.New("device: delay must be >= 0")
	}
	if cfg.Delay == 0 {
		cfg.Delay = DefaultDelay
	}

	return &Node{
		cfg:     cfg,
		profile: profile,
		port:    port,
		snap:    NewSnapshot(profile.Schema),
		log: log.With().
			Str("device", cfg.Name).
			Uint8("unit", cfg.UnitID).
			Str("type", profile.Type).
			Logger(),
		sleep: time.Sleep,
	}, nil
}

func (n *Node) Name() string { return n.cfg.Name }
func (n *Node) UnitID() uint8 { return n.cfg.UnitID }
func (n *Node) Type() string { return n.profile.Type }
func (n *Node) Profile() *Profile { return n.profile }
func (n *Node) Delay() time.Duration { return n.cfg.Delay }

// Snapshot returns a copy of the latest known values.
func (n *Node) Snapshot() *Snapshot { return n.snap.Clone() }

// Reset zeroes the snapshot without changing its shape.
func (n *Node) Reset() { n.snap.Reset() }

// ExecuteRead performs one register read and decodes it into the snapshot.
// On any failure the snapshot is left as it was.
// The configured delay follows every transaction, successful or not.
func (n *Node) ExecuteRead(b register.ReadBlock) error {
	t, ok := n.profile.Targets[b.Target]
	if !ok {
		return fmt.Errorf("device %s: unknown decode target %q", n.cfg.Name, b.Target)
	}

	var read func(uint8, uint16, uint16) ([]uint16, error)
	switch b.FC {
	case register.FcReadHoldingRegisters:
		read = n.port.ReadHoldingRegisters
	case register.FcReadInputRegisters:
		read = n.port.ReadInputRegisters
	default:
		return fmt.Errorf("device %s: fc 0x%02X is not a register read", n.cfg.Name, uint8(b.FC))
	}

	start := time.Now()
	raw, err := read(n.cfg.UnitID, b.Address, b.Count)
	defer n.sleep(n.cfg.Delay)

	if err != nil {
		n.log.Debug().Err(err).Str("block", b.String()).Msg("read failed")
		return &TransportError{Op: b.FC, Unit: n.cfg.UnitID, Address: b.Address, Err: err}
	}
	if len(raw) != int(b.Count) {
		err := fmt.Errorf("%w: got %d registers, want %d", ErrMalformedResponse, len(raw), b.Count)
		return &TransportError{Op: b.FC, Unit: n.cfg.UnitID, Address: b.Address, Err: err}
	}

	next := n.snap.Clone()
	if err := t.Decode(next, register.DecodeSigned(raw), b.Index); err != nil {
		return fmt.Errorf("device %s: decode %s: %w", n.cfg.Name, b.Target, err)
	}
	n.snap = next

	n.log.Debug().Str("block", b.String()).Dur("rtt", time.Since(start)).Msg("read")
	return nil
}

// ExecuteWrite sends p to addr with a single (0x06) or multi (0x10) register write.
// A missing or unencodable parameter fails before any transport call.
func (n *Node) ExecuteWrite(fc register.FunctionCode, addr uint16, p register.Param) (WriteAck, error) {
	var values []uint16

	switch fc {
	case register.FcWriteSingleRegister:
		v, err := register.EncodeSingle(p)
		if err != nil {
			return WriteAck{}, fmt.Errorf("device %s: write 0x%04X: %w", n.cfg.Name, addr, err)
		}
		values = []uint16{v}
	case register.FcWriteMultipleRegisters:
		v, err := register.EncodeMulti(p)
		if err != nil {
			return WriteAck{}, fmt.Errorf("device %s: write 0x%04X: %w", n.cfg.Name, addr, err)
		}
		values = v
	default:
		return WriteAck{}, fmt.Errorf("device %s: fc 0x%02X is not a register write", n.cfg.Name, uint8(fc))
	}

	var err error
	if fc == register.FcWriteSingleRegister {
		err = n.port.WriteRegister(n.cfg.UnitID, addr, values[0])
	} else {
		err = n.port.WriteRegisters(n.cfg.UnitID, addr, values)
	}
	defer n.sleep(n.cfg.Delay)

	if err != nil {
		n.log.Debug().Err(err).Uint16("addr", addr).Msg("write failed")
		return WriteAck{}, &TransportError{Op: fc, Unit: n.cfg.UnitID, Address: addr, Err: err}
	}

	n.log.Debug().Uint16("addr", addr).Interface("values", values).Msg("write")
	return WriteAck{FC: fc, Address: addr, Values: values}, nil
}
