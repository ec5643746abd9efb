package muxer

import (
	"log/slog"
)

// clockPreference is walked in order; the first clock the kernel advertises
// wins.
var clockPreference = []string{"boot", "global", "local"}

// clockFromName maps a kernel clock name to the value reported downstream.
// boot is the expected default and maps to ClockUnspecified so it can be
// omitted from downstream messages.
func clockFromName(name string) Clock {
	switch name {
	case "boot":
		return ClockUnspecified
	case "global":
		return ClockGlobal
	case "local":
		return ClockLocal
	default:
		return ClockUnknown
	}
}

// setupClock selects the preferred available trace clock for a session.
// Failures are logged and otherwise best-effort: readers can cope with any
// clock as long as the selection is recorded.
func (m *Muxer) setupClock() {
	current, err := m.fs.GetClock()
	if err != nil {
		slog.Warn("trace_clock read failed", "error", err)
		m.state.clock = ClockUnknown
		return
	}

	available, err := m.fs.AvailableClocks()
	if err != nil {
		slog.Warn("trace_clock enumeration failed", "error", err)
		m.state.clock = clockFromName(current)
		return
	}

	availableSet := make(map[string]struct{}, len(available))
	for _, clock := range available {
		availableSet[clock] = struct{}{}
	}

	selected := current
	for _, preferred := range clockPreference {
		if _, ok := availableSet[preferred]; !ok {
			continue
		}
		if preferred != current {
			if err := m.fs.SetClock(preferred); err != nil {
				slog.Warn("trace_clock write failed", "clock", preferred, "error", err)
				break
			}
		}
		selected = preferred
		break
	}

	m.state.clock = clockFromName(selected)
}
