// cmd/bmspoller/exec.go
package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/bms-poller/internal/config"
	"github.com/tamzrod/bms-poller/internal/device"
	"github.com/tamzrod/bms-poller/internal/logging"
	"github.com/tamzrod/bms-poller/internal/poller"
	"github.com/tamzrod/bms-poller/internal/profile"
	"github.com/tamzrod/bms-poller/internal/register"
	"github.com/tamzrod/bms-poller/internal/writer"
	"github.com/tamzrod/bms-poller/internal/writer/console"
)

type execFlags struct {
	config  string
	device  string
	command string
	param   float64
}

func newExecCmd() *cobra.Command {
	flags := &execFlags{}

	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Run one command against one configured device",
		Long: `Run a single read sequence or write command on one device and print
the resulting snapshot. Writes that take a value need --param.`,
		Example: `  # Read all measurements from the BMS
  bmspoller exec -c bms.yaml --device bms1 --command read_measurement

  # Scaled write: 5 is sent as 50
  bmspoller exec -c bms.yaml --device bms1 --command write_something_registers --param 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := register.NoParam
			if cmd.Flags().Changed("param") {
				p = register.ParamOf(flags.param)
			}
			return runExec(cmd, flags, p)
		},
	}

	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "Path to YAML config (required)")
	cmd.Flags().StringVar(&flags.device, "device", "", "Device name (required)")
	cmd.Flags().StringVar(&flags.command, "command", "", "Command name (required)")
	cmd.Flags().Float64Var(&flags.param, "param", 0, "Write parameter")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("device")
	_ = cmd.MarkFlagRequired("command")

	return cmd
}

func runExec(cmd *cobra.Command, flags *execFlags, p register.Param) error {
	cfg, err := loadConfig(flags.config)
	if err != nil {
		return err
	}

	bus, ok := findDevice(cfg, flags.device)
	if !ok {
		return fmt.Errorf("device %q not found in config", flags.device)
	}

	log, closeLog, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()

	reg, err := profile.NewRegistry(cfg.Profiles)
	if err != nil {
		return err
	}

	pl, closeBus, err := poller.Build(bus, reg, log)
	if err != nil {
		return err
	}
	defer closeBus()

	node, _ := pl.Device(flags.device)
	return execute(cmd, node, bus.ID, flags.command, p)
}

// findDevice returns the bus holding name, trimmed to that one device.
func findDevice(cfg *config.Config, name string) (config.BusConfig, bool) {
	for _, b := range cfg.Poller.Buses {
		for _, d := range b.Devices {
			if d.Name == name {
				b.Devices = []config.DeviceConfig{d}
				return b, true
			}
		}
	}
	return config.BusConfig{}, false
}

// execute runs one command on node and prints the outcome.
// A failed read still prints the snapshot, which keeps the last good values.
func execute(cmd *cobra.Command, node *device.Node, bus, command string, p register.Param) error {
	out := cmd.OutOrStdout()

	res, err := node.RunCommand(command, p)

	switch res.Kind {
	case device.KindWrite:
		if err == nil {
			fmt.Fprintf(out, "%s: %s addr=0x%04X values=%v\n", command, res.Ack.FC, res.Ack.Address, res.Ack.Values)
		}
	case device.KindRead:
		rec := writer.Record{
			Bus:    bus,
			Device: node.Name(),
			Type:   node.Type(),
			At:     time.Now(),
			Values: node.Snapshot().Values(),
			Err:    err,
		}
		if perr := console.New(out).Write(rec); perr != nil {
			return errors.Join(err, perr)
		}
	}

	return err
}
