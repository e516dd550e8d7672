// cmd/bmspoller/cli_test.go
package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tamzrod/bms-poller/internal/config"
	"github.com/tamzrod/bms-poller/internal/device"
	"github.com/tamzrod/bms-poller/internal/poller"
	"github.com/tamzrod/bms-poller/internal/profile"
	"github.com/tamzrod/bms-poller/internal/register"
	"github.com/tamzrod/bms-poller/internal/status"
	"github.com/tamzrod/bms-poller/internal/writer"
)

func TestRequiredFlagsErrors(t *testing.T) {
	tests := []struct {
		name    string
		cmd     func() *cobra.Command
		args    []string
		wantErr string
	}{
		{
			name:    "run missing config",
			cmd:     newRunCmd,
			args:    []string{},
			wantErr: `required flag(s) "config" not set`,
		},
		{
			name:    "exec missing device",
			cmd:     newExecCmd,
			args:    []string{"-c", "x.yaml", "--command", "read_measurement"},
			wantErr: `required flag(s) "device" not set`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := tt.cmd()
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)
			cmd.SetArgs(tt.args)
			err := cmd.Execute()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error: got %q want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version err=%v", err)
	}
	if !strings.Contains(buf.String(), "bmspoller version dev") {
		t.Fatalf("output %q", buf.String())
	}
}

func TestProfilesListsBuiltin(t *testing.T) {
	reg, err := profile.NewRegistry(nil)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	if err := printProfiles(cmd, reg); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"kyuden_bms_72kwh", "read_measurement", "19 blocks", "write_something_registers2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestFindDevice(t *testing.T) {
	cfg := &config.Config{Poller: config.PollerConfig{Buses: []config.BusConfig{
		{ID: "a", Devices: []config.DeviceConfig{{Name: "bms1"}, {Name: "bms2"}}},
		{ID: "b", Devices: []config.DeviceConfig{{Name: "inv1"}}},
	}}}

	b, ok := findDevice(cfg, "bms2")
	if !ok || b.ID != "a" || len(b.Devices) != 1 || b.Devices[0].Name != "bms2" {
		t.Fatalf("got %+v ok=%v", b, ok)
	}
	if len(cfg.Poller.Buses[0].Devices) != 2 {
		t.Fatalf("config must not be modified")
	}
	if _, ok := findDevice(cfg, "nope"); ok {
		t.Fatalf("expected not found")
	}
}

// ---- fakes ----

type memPort struct {
	fail   bool
	writes [][]uint16
}

func (p *memPort) ReadHoldingRegisters(unit uint8, addr, qty uint16) ([]uint16, error) {
	return p.ReadInputRegisters(unit, addr, qty)
}

func (p *memPort) ReadInputRegisters(_ uint8, _, qty uint16) ([]uint16, error) {
	if p.fail {
		return nil, errors.New("timeout")
	}
	out := make([]uint16, qty)
	for i := range out {
		out[i] = 80
	}
	return out, nil
}

func (p *memPort) WriteRegister(_ uint8, _, v uint16) error {
	p.writes = append(p.writes, []uint16{v})
	return nil
}

func (p *memPort) WriteRegisters(_ uint8, _ uint16, v []uint16) error {
	p.writes = append(p.writes, v)
	return nil
}

type fakeWriter struct {
	records []writer.Record
	status  []status.Snapshot
}

func (f *fakeWriter) Write(rec writer.Record) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeWriter) WriteStatus(_ string, s status.Snapshot) error {
	f.status = append(f.status, s)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

type memMachine struct {
	saved []status.MachineRecord
}

func (m *memMachine) LastMachine() (*status.MachineRecord, error) {
	if len(m.saved) == 0 {
		return nil, nil
	}
	r := m.saved[len(m.saved)-1]
	return &r, nil
}

func (m *memMachine) SaveMachine(r status.MachineRecord) error {
	m.saved = append(m.saved, r)
	return nil
}

func kyudenNode(t *testing.T, port device.Port) *device.Node {
	t.Helper()
	reg, err := profile.NewRegistry(nil)
	if err != nil {
		t.Fatal(err)
	}
	p, err := reg.Lookup(profile.KyudenBMS72kWh)
	if err != nil {
		t.Fatal(err)
	}
	n, err := device.New(device.Config{UnitID: 1, Name: "bms1", Delay: time.Nanosecond}, p, port, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return n
}

// ---- orchestrator ----

func TestOrchestrator_HealthAndRecords(t *testing.T) {
	w := &fakeWriter{}
	m := &memMachine{}
	o := &orchestrator{
		w:        w,
		log:      zerolog.Nop(),
		cpuTemp:  true,
		clock:    status.Clock{Boot: time.Now()},
		machine:  m,
		readTemp: func() (float64, error) { return 48.3, nil },
	}

	snap := device.NewSnapshot(device.MustSchema(device.Scalar("SOC", "%")))

	o.handle(poller.PollResult{Device: "bms1", At: time.Now(), Snapshot: snap, Err: errors.New("timeout")})
	if len(w.status) != 1 || w.status[0].Health != status.HealthError || w.status[0].LastErrorCode != 1 {
		t.Fatalf("status=%+v", w.status)
	}

	o.tick()
	o.tick()
	if got := w.status[len(w.status)-1].SecondsInError; got != 2 {
		t.Fatalf("seconds in error=%d", got)
	}

	o.handle(poller.PollResult{Device: "bms1", At: time.Now(), Snapshot: snap})
	if last := w.status[len(w.status)-1]; last != (status.Snapshot{Health: status.HealthOK}) {
		t.Fatalf("recovery status=%+v", last)
	}

	// unchanged health: no extra status write
	n := len(w.status)
	o.handle(poller.PollResult{Device: "bms1", At: time.Now(), Snapshot: snap})
	if len(w.status) != n {
		t.Fatalf("unexpected status write")
	}

	if len(w.records) != 3 {
		t.Fatalf("records=%d", len(w.records))
	}
	vals := w.records[0].Values
	if len(vals) != 2 || vals[0].Name != "SOC" || vals[1].Name != "CPU_Temp" || vals[1].Value != 48.3 {
		t.Fatalf("values=%+v", vals)
	}
	if len(m.saved) != 0 {
		t.Fatalf("poll results must not write machine records, got %d", len(m.saved))
	}
}

func TestOrchestrator_UptimeOncePerCycle(t *testing.T) {
	m := &memMachine{}
	boot := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	o := &orchestrator{
		w:       &fakeWriter{},
		log:     zerolog.Nop(),
		clock:   status.Clock{Boot: boot},
		machine: m,
	}

	snap := device.NewSnapshot(device.MustSchema(device.Scalar("SOC", "%")))
	for _, dev := range []string{"bms1", "bms2", "inv1"} {
		o.handle(poller.PollResult{Device: dev, At: boot, Snapshot: snap})
	}
	o.uptime(boot.Add(10 * time.Second))
	o.uptime(boot.Add(20 * time.Second))

	if len(m.saved) != 2 {
		t.Fatalf("machine records=%d", len(m.saved))
	}
	if got := m.saved[1].TotalUptime; got != 10*time.Second {
		t.Fatalf("total uptime=%v", got)
	}
}

func TestShortestInterval(t *testing.T) {
	buses := []config.BusConfig{
		{Poll: config.PollConfig{IntervalMs: 10000}},
		{Poll: config.PollConfig{IntervalMs: 2500}},
		{},
	}
	if got := shortestInterval(buses); got != 2500*time.Millisecond {
		t.Fatalf("interval=%v", got)
	}
	if got := shortestInterval(nil); got != 0 {
		t.Fatalf("interval=%v", got)
	}
}

func TestSourceFilesCarryPathHeader(t *testing.T) {
	files, err := filepath.Glob("*.go")
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			t.Fatal(err)
		}
		want := "// cmd/bmspoller/" + f + "\n"
		if !strings.HasPrefix(string(data), want) {
			t.Fatalf("%s: missing header %q", f, strings.TrimSpace(want))
		}
	}
}

// ---- exec ----

func TestExecute_ReadPrintsSnapshot(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	n := kyudenNode(t, &memPort{})
	if err := execute(cmd, n, "bus1", "read_measurement", register.NoParam); err != nil {
		t.Fatalf("execute err=%v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "bms1 MEASUREMENTS") || !strings.Contains(out, "Cell_Voltage[15]") {
		t.Fatalf("output:\n%s", out)
	}
}

func TestExecute_ScaledWrite(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	port := &memPort{}
	n := kyudenNode(t, port)
	if err := execute(cmd, n, "bus1", "write_something_registers", register.ParamOf(5)); err != nil {
		t.Fatalf("execute err=%v", err)
	}
	if len(port.writes) != 1 || port.writes[0][0] != 50 {
		t.Fatalf("writes=%v", port.writes)
	}
	if !strings.Contains(buf.String(), "values=[50]") {
		t.Fatalf("output %q", buf.String())
	}
}

func TestExecute_Errors(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetOut(io.Discard)

	port := &memPort{}
	n := kyudenNode(t, port)

	if err := execute(cmd, n, "bus1", "write_something_registers2", register.NoParam); !errors.Is(err, device.ErrMissingParam) {
		t.Fatalf("expected ErrMissingParam, got %v", err)
	}
	if len(port.writes) != 0 {
		t.Fatalf("no write expected")
	}
	if err := execute(cmd, n, "bus1", "read_others", register.NoParam); !errors.Is(err, device.ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}

	port.fail = true
	var rerr *device.ReadSequenceError
	if err := execute(cmd, n, "bus1", "read_measurement", register.NoParam); !errors.As(err, &rerr) || rerr.Partial() {
		t.Fatalf("expected full read failure, got %v", err)
	}
}
