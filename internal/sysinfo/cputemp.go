// internal/sysinfo/cputemp.go
package sysinfo

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// ThermalZone0 is the Linux thermal sysfs node read by CPUTemperature.
const ThermalZone0 = "/sys/class/thermal/thermal_zone0/temp"

// CPUTemperature reads ThermalZone0 in degC, rounded to 0.1.
func CPUTemperature() (float64, error) {
	return ReadTemperature(ThermalZone0)
}

// ReadTemperature parses a sysfs millidegree file.
func ReadTemperature(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("sysinfo: %w", err)
	}
	milli, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, fmt.Errorf("sysinfo: parse %s: %w", path, err)
	}
	return math.Round(milli/100) / 10, nil
}
