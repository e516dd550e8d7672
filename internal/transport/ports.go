// internal/transport/ports.go
package transport

import (
	"sort"

	"go.bug.st/serial"
)

// ListPorts returns the serial devices usable as RTU endpoints.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}
	sort.Strings(ports)
	return ports, nil
}
