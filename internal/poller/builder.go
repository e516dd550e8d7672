// internal/poller/builder.go
package poller

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	cfg "github.com/tamzrod/bms-poller/internal/config"
	"github.com/tamzrod/bms-poller/internal/device"
	"github.com/tamzrod/bms-poller/internal/profile"
	"github.com/tamzrod/bms-poller/internal/transport"
)

// TransportConfig converts a bus transport section for the transport package.
func TransportConfig(t cfg.TransportConfig) transport.Config {
	return transport.Config{
		Mode:     t.Mode,
		Endpoint: t.Endpoint,
		Timeout:  time.Duration(t.TimeoutMs) * time.Millisecond,
		BaudRate: t.BaudRate,
		DataBits: t.DataBits,
		Parity:   t.Parity,
		StopBits: t.StopBits,
	}
}

// Build opens the bus link and constructs its Poller.
// The returned closer releases the link.
func Build(b cfg.BusConfig, reg *profile.Registry, log zerolog.Logger) (*Poller, func() error, error) {
	client, err := transport.New(TransportConfig(b.Transport), log.With().Str("bus", b.ID).Logger())
	if err != nil {
		return nil, nil, fmt.Errorf("bus %s: %w", b.ID, err)
	}

	p, err := Assemble(b, reg, client, log)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return p, client.Close, nil
}

// Assemble builds the nodes of one bus on an existing port.
// Assumes config has already passed Validate and Normalize.
func Assemble(b cfg.BusConfig, reg *profile.Registry, port device.Port, log zerolog.Logger) (*Poller, error) {
	targets := make([]Target, 0, len(b.Devices))

	for _, d := range b.Devices {
		prof, err := reg.Lookup(d.Type)
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", d.Name, err)
		}

		n, err := device.New(device.Config{
			UnitID: d.UnitID,
			Name:   d.Name,
			Delay:  time.Duration(d.DelayMs) * time.Millisecond,
		}, prof, port, log)
		if err != nil {
			return nil, err
		}

		for _, c := range d.Commands {
			_, isRead := prof.Map.Sequence(c)
			_, isWrite := prof.Map.Write(c)
			if !isRead && !isWrite {
				return nil, fmt.Errorf("device %s: %w: %q", d.Name, device.ErrUnknownCommand, c)
			}
		}

		targets = append(targets, Target{
			Node:            n,
			Commands:        d.Commands,
			ResetBeforePoll: d.ResetBeforePoll,
		})
	}

	return New(Config{
		BusID:    b.ID,
		Interval: time.Duration(b.Poll.IntervalMs) * time.Millisecond,
		Targets:  targets,
	}, log)
}
