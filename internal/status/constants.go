// internal/status/constants.go
package status

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a healthy device.
const HealthOK uint16 = 1

// HealthError represents a device error state.
const HealthError uint16 = 2

// HealthStale represents a partially refreshed snapshot.
const HealthStale uint16 = 3

// ---- LIMITS ----

// MaxSecondsInError is where the seconds-in-error counter saturates.
const MaxSecondsInError = 65535

// HealthName returns the label used by logs and sinks.
func HealthName(h uint16) string {
	switch h {
	case HealthOK:
		return "ok"
	case HealthError:
		return "error"
	case HealthStale:
		return "stale"
	default:
		return "unknown"
	}
}
