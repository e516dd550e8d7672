// internal/poller/poller.go
package poller

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/bms-poller/internal/device"
	"github.com/tamzrod/bms-poller/internal/register"
)

// Config is the minimal runtime config the poller needs.
type Config struct {
	BusID    string
	Interval time.Duration
	Targets  []Target
}

// Poller is a clock-driven reader for one bus.
// Devices on the bus are polled strictly one after another.
type Poller struct {
	cfg Config
	log zerolog.Logger
}

// New creates a poller with immutable config.
func New(cfg Config, log zerolog.Logger) (*Poller, error) {
	if cfg.BusID == "" {
		return nil, errors.New("poller: bus id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if len(cfg.Targets) == 0 {
		return nil, errors.New("poller: at least one device required")
	}
	for i, t := range cfg.Targets {
		if t.Node == nil {
			return nil, fmt.Errorf("poller: device %d: node required", i)
		}
		if len(t.Commands) == 0 {
			return nil, fmt.Errorf("poller: device %s: at least one command required", t.Node.Name())
		}
	}
	return &Poller{cfg: cfg, log: log.With().Str("bus", cfg.BusID).Logger()}, nil
}

// BusID returns the bus this poller owns.
func (p *Poller) BusID() string { return p.cfg.BusID }

// Device returns the node with the given name.
func (p *Poller) Device(name string) (*device.Node, bool) {
	for _, t := range p.cfg.Targets {
		if t.Node.Name() == name {
			return t.Node, true
		}
	}
	return nil, false
}

// PollOnce performs exactly one poll cycle over every device on the bus.
func (p *Poller) PollOnce() []PollResult {
	out := make([]PollResult, 0, len(p.cfg.Targets))
	for _, t := range p.cfg.Targets {
		out = append(out, p.pollTarget(t))
	}
	return out
}

// Every command runs even if an earlier one failed.
func (p *Poller) pollTarget(t Target) PollResult {
	n := t.Node
	res := PollResult{
		Bus:    p.cfg.BusID,
		Device: n.Name(),
		Type:   n.Type(),
		At:     time.Now(),
	}

	if t.ResetBeforePoll {
		n.Reset()
	}

	var errs []error
	decoded := false

	for _, cmd := range t.Commands {
		cr, err := n.RunCommand(cmd, register.NoParam)
		res.Commands = append(res.Commands, cr)

		if err == nil {
			decoded = decoded || cr.Kind == device.KindRead
			continue
		}
		errs = append(errs, err)

		var rerr *device.ReadSequenceError
		if errors.As(err, &rerr) && rerr.Partial() {
			decoded = true
		}
	}

	res.Snapshot = n.Snapshot()
	if len(errs) > 0 {
		res.Err = errors.Join(errs...)
		res.Partial = decoded
		p.log.Debug().Err(res.Err).Str("device", n.Name()).Bool("partial", res.Partial).Msg("poll failed")
	}
	return res
}
