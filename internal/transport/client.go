// internal/transport/client.go
package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"github.com/rs/zerolog"
)

const (
	ModeTCP = "tcp"
	ModeRTU = "rtu"
)

type Config struct {
	Mode     string
	Endpoint string
	Timeout  time.Duration

	// RTU only
	BaudRate int
	DataBits int
	Parity   string
	StopBits int
}

// Client is one Modbus link (TCP socket or RTU serial line).
// It serializes requests because it mutates the slave id per request.
type Client struct {
	mu      sync.Mutex
	handler io.Closer
	setUnit func(uint8)
	client  modbus.Client
	log     zerolog.Logger
}

// New opens a Modbus link and implements device.Port on it.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("transport: endpoint required")
	}

	c := &Client{
		log: log.With().Str("endpoint", cfg.Endpoint).Str("mode", cfg.Mode).Logger(),
	}

	switch cfg.Mode {
	case ModeTCP, "":
		h := modbus.NewTCPClientHandler(cfg.Endpoint)
		h.Timeout = cfg.Timeout
		if err := h.Connect(); err != nil {
			return nil, fmt.Errorf("transport: connect %s: %w", cfg.Endpoint, err)
		}
		c.handler = h
		c.setUnit = func(u uint8) { h.SlaveId = u }
		c.client = modbus.NewClient(h)

	case ModeRTU:
		h := modbus.NewRTUClientHandler(cfg.Endpoint)
		h.Timeout = cfg.Timeout
		h.BaudRate = cfg.BaudRate
		h.DataBits = cfg.DataBits
		h.Parity = cfg.Parity
		h.StopBits = cfg.StopBits
		if err := h.Connect(); err != nil {
			return nil, fmt.Errorf("transport: open %s: %w", cfg.Endpoint, err)
		}
		c.handler = h
		c.setUnit = func(u uint8) { h.SlaveId = u }
		c.client = modbus.NewClient(h)

	default:
		return nil, fmt.Errorf("transport: unknown mode %q", cfg.Mode)
	}

	c.log.Info().Msg("link open")
	return c, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// ---- device.Port ----

func (c *Client) ReadHoldingRegisters(unit uint8, addr, qty uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setUnit(unit)
	data, err := c.client.ReadHoldingRegisters(addr, qty)
	if err != nil {
		return nil, err
	}
	return unpackRegisters(data)
}

func (c *Client) ReadInputRegisters(unit uint8, addr, qty uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setUnit(unit)
	data, err := c.client.ReadInputRegisters(addr, qty)
	if err != nil {
		return nil, err
	}
	return unpackRegisters(data)
}

func (c *Client) WriteRegister(unit uint8, addr, value uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setUnit(unit)
	_, err := c.client.WriteSingleRegister(addr, value)
	return err
}

func (c *Client) WriteRegisters(unit uint8, addr uint16, regs []uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setUnit(unit)
	qty := uint16(len(regs))
	_, err := c.client.WriteMultipleRegisters(addr, qty, packRegisters(regs))
	return err
}

// ---- helpers (pure geometry) ----

func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}

func unpackRegisters(data []byte) ([]uint16, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("transport: odd register payload length %d", len(data))
	}
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out, nil
}
