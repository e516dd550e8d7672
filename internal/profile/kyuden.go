// internal/profile/kyuden.go
package profile

import (
	"fmt"

	"github.com/tamzrod/bms-poller/internal/device"
	"github.com/tamzrod/bms-poller/internal/register"
)

// KyudenBMS72kWh is the Kyuden 72 kWh battery management system.
const KyudenBMS72kWh = "kyuden_bms_72kwh"

const (
	kyudenModules        = 16
	kyudenCellsPerModule = 12
	kyudenTempSlots      = 3
)

// Decode targets.
const (
	targetCounts     = "counts"
	targetSummary    = "summary"
	targetModule     = "module"
	targetModuleTemp = "module_temp"
)

var kyudenSchema = device.MustSchema(
	device.Scalar("Count_Module", ""),
	device.Scalar("Count_Module_Series", ""),
	device.Scalar("Count_Module_Parallel", ""),
	device.Scalar("Count_CMU", ""),
	device.Scalar("Status", ""),
	device.Scalar("Error", ""),
	device.Scalar("SOC", "%"),
	device.Scalar("Total_Voltage", "V"),
	device.Scalar("Cell_Voltage_max", "V"),
	device.Scalar("Cell_Voltage_min", "V"),
	device.Scalar("Cell_Voltage_avg", "V"),
	device.Scalar("Temperature_max", "degC"),
	device.Scalar("Temperature_min", "degC"),
	device.Scalar("Temperature_avg", "degC"),
	device.Scalar("Balance_Voltage", "V"),
	device.Scalar("Balance_Voltage_diff", "V"),
	device.Scalar("Mode", ""),
	device.Array("Module_Voltage", "V", kyudenModules),
	device.Array("Cell_Voltage", "V", kyudenModules, kyudenCellsPerModule),
	device.Array("Module_Temperature", "degC", kyudenModules, kyudenTempSlots),
)

// scalarField maps one summary word, by position, onto a field.
type scalarField struct {
	name  string
	scale register.Scale
}

var kyudenCounts = []scalarField{
	{"Count_Module", register.Unity},
	{"Count_Module_Series", register.Unity},
	{"Count_Module_Parallel", register.Unity},
	{"Count_CMU", register.Unity},
}

var kyudenSummary = []scalarField{
	{"Status", register.Unity},
	{"Error", register.Unity},
	{"SOC", register.Unity},
	{"Total_Voltage", register.Deci},
	{"Cell_Voltage_max", register.Milli},
	{"Cell_Voltage_min", register.Milli},
	{"Cell_Voltage_avg", register.Milli},
	{"Temperature_max", register.Celsius55},
	{"Temperature_min", register.Celsius55},
	{"Temperature_avg", register.Celsius55},
	{"Balance_Voltage", register.Milli},
	{"Balance_Voltage_diff", register.Milli},
	{"Mode", register.Unity},
}

func decodeScalars(fields []scalarField) device.DecodeFunc {
	return func(s *device.Snapshot, regs []int32, _ int) error {
		for i, f := range fields {
			if err := s.Set(f.name, f.scale.Apply(regs[i])); err != nil {
				return err
			}
		}
		return nil
	}
}

// Module block layout: [0] module voltage, [1..12] cells, [13] temp0, [14] temp1, [15] unused.
func decodeModule(s *device.Snapshot, regs []int32, m int) error {
	if err := s.Set("Module_Voltage", register.Milli.Apply(regs[0]), m); err != nil {
		return err
	}
	for c := 0; c < kyudenCellsPerModule; c++ {
		if err := s.Set("Cell_Voltage", register.Milli.Apply(regs[c+1]), m, c); err != nil {
			return err
		}
	}
	if err := s.Set("Module_Temperature", register.Celsius55.Apply(regs[13]), m, 0); err != nil {
		return err
	}
	return s.Set("Module_Temperature", register.Celsius55.Apply(regs[14]), m, 1)
}

// One flat block carries the third temperature slot of every module.
func decodeModuleTemp(s *device.Snapshot, regs []int32, _ int) error {
	for m := 0; m < kyudenModules; m++ {
		if err := s.Set("Module_Temperature", register.Celsius55.Apply(regs[m]), m, 2); err != nil {
			return err
		}
	}
	return nil
}

func newKyuden() (*device.Profile, error) {
	fc := register.FcReadInputRegisters

	blocks := []register.ReadBlock{
		register.Block(fc, 0x1003, 4, targetCounts),
		register.Block(fc, 0x1010, 13, targetSummary),
	}
	for m := 0; m < kyudenModules; m++ {
		addr := uint16(0x1100 + 0x10*m)
		blocks = append(blocks, register.IndexedBlock(fc, addr, 16, targetModule, m))
	}
	blocks = append(blocks, register.Block(fc, 0x1200, 16, targetModuleTemp))

	m, err := register.NewMap(
		[]register.Sequence{{Name: "read_measurement", Blocks: blocks}},
		[]register.WriteCommand{
			register.Fixed("write_something_register", register.FcWriteSingleRegister, 0xFFFF, 0x0700),
			register.Scaled("write_something_registers", register.FcWriteMultipleRegisters, 0x200C, 10),
			register.Raw("write_something_registers2", register.FcWriteMultipleRegisters, 0x200C),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KyudenBMS72kWh, err)
	}

	targets := map[string]device.Target{
		targetCounts:     {Words: len(kyudenCounts), Decode: decodeScalars(kyudenCounts)},
		targetSummary:    {Words: len(kyudenSummary), Decode: decodeScalars(kyudenSummary)},
		targetModule:     {Words: 16, Indexed: true, Decode: decodeModule},
		targetModuleTemp: {Words: kyudenModules, Decode: decodeModuleTemp},
	}

	return device.NewProfile(KyudenBMS72kWh, kyudenSchema, targets, m)
}
