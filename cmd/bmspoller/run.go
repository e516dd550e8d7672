// cmd/bmspoller/run.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tamzrod/bms-poller/internal/config"
	"github.com/tamzrod/bms-poller/internal/device"
	"github.com/tamzrod/bms-poller/internal/logging"
	"github.com/tamzrod/bms-poller/internal/poller"
	"github.com/tamzrod/bms-poller/internal/profile"
	"github.com/tamzrod/bms-poller/internal/status"
	"github.com/tamzrod/bms-poller/internal/sysinfo"
	"github.com/tamzrod/bms-poller/internal/transport"
	"github.com/tamzrod/bms-poller/internal/writer"
)

type runFlags struct {
	config string
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll every configured device until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPoller(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "Path to YAML config (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runPoller(ctx context.Context, flags *runFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := loadConfig(flags.config)
	if err != nil {
		return err
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

	w, store, err := buildWriter(cfg.Outputs, log)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Build per-bus pollers
	// --------------------

	out := make(chan poller.PollResult)

	for _, b := range cfg.Poller.Buses {
		p, closeBus, err := poller.Build(b, reg, log)
		if err != nil {
			return err
		}
		defer closeBus()

		log.Info().Str("bus", b.ID).Int("devices", len(b.Devices)).Msg("bus started")
		go p.Run(ctx, out)
	}

	o := &orchestrator{
		w:           w,
		log:         log,
		cpuTemp:     cfg.Outputs.CPUTemp,
		clock:       status.Clock{Boot: time.Now()},
		uptimeEvery: shortestInterval(cfg.Poller.Buses),
	}
	if store != nil {
		o.machine = store
	}

	o.loop(ctx, out)
	log.Info().Msg("shutting down")
	return nil
}

// orchestrator owns per-device health state and feeds the writer.
// It runs in a single goroutine.
type orchestrator struct {
	w       writer.Writer
	log     zerolog.Logger
	cpuTemp bool

	clock       status.Clock
	machine     status.MachineStore
	uptimeEvery time.Duration

	trackers map[string]*status.Tracker
	order    []string

	readTemp func() (float64, error)
}

func (o *orchestrator) loop(ctx context.Context, out <-chan poller.PollResult) {
	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	// nil channel blocks forever when uptime is not persisted
	var uptimeC <-chan time.Time
	if o.machine != nil && o.uptimeEvery > 0 {
		t := time.NewTicker(o.uptimeEvery)
		defer t.Stop()
		uptimeC = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case res := <-out:
			o.handle(res)
		case <-secTicker.C:
			o.tick()
		case now := <-uptimeC:
			o.uptime(now)
		}
	}
}

// shortestInterval is the fastest poll cycle across buses.
func shortestInterval(buses []config.BusConfig) time.Duration {
	var d time.Duration
	for _, b := range buses {
		iv := time.Duration(b.Poll.IntervalMs) * time.Millisecond
		if iv > 0 && (d == 0 || iv < d) {
			d = iv
		}
	}
	return d
}

func (o *orchestrator) tracker(dev string) *status.Tracker {
	if o.trackers == nil {
		o.trackers = make(map[string]*status.Tracker)
	}
	tr, ok := o.trackers[dev]
	if !ok {
		tr = &status.Tracker{}
		o.trackers[dev] = tr
		o.order = append(o.order, dev)
	}
	return tr
}

func (o *orchestrator) handle(res poller.PollResult) {
	tr := o.tracker(res.Device)
	changed := tr.Observe(res.Err == nil, res.Partial, transport.ErrorCode(res.Err))

	if res.Err != nil {
		o.log.Warn().Err(res.Err).
			Str("device", res.Device).
			Bool("partial", res.Partial).
			Msg("poll failed")
	}

	rec := writer.Record{
		Bus:    res.Bus,
		Device: res.Device,
		Type:   res.Type,
		At:     res.At,
		Health: tr.Snapshot(),
		Err:    res.Err,
	}
	if res.Snapshot != nil {
		rec.Values = res.Snapshot.Values()
	}
	if o.cpuTemp {
		read := o.readTemp
		if read == nil {
			read = sysinfo.CPUTemperature
		}
		if t, err := read(); err != nil {
			o.log.Debug().Err(err).Msg("cpu temperature unavailable")
		} else {
			rec.Values = append(rec.Values, device.Value{Name: "CPU_Temp", Field: "CPU_Temp", Unit: "degC", Value: t})
		}
	}

	// --- data delivery ---
	if err := o.w.Write(rec); err != nil {
		o.log.Error().Err(err).Str("device", res.Device).Msg("writer error")
	}

	// --- status update (device-level truth) ---
	if changed {
		if err := o.w.WriteStatus(res.Device, tr.Snapshot()); err != nil {
			o.log.Error().Err(err).Str("device", res.Device).Msg("status write failed")
		}
	}
}

// uptime persists one machine record per poll cycle.
func (o *orchestrator) uptime(now time.Time) {
	if o.machine == nil {
		return
	}
	if _, err := o.clock.Update(o.machine, now); err != nil {
		o.log.Error().Err(err).Msg("uptime update failed")
	}
}

// tick advances seconds-in-error on the 1 Hz ticker only.
func (o *orchestrator) tick() {
	for _, dev := range o.order {
		tr := o.trackers[dev]
		if !tr.Tick() {
			continue
		}
		if err := o.w.WriteStatus(dev, tr.Snapshot()); err != nil {
			o.log.Error().Err(err).Str("device", dev).Msg("status seconds tick write failed")
		}
	}
}
