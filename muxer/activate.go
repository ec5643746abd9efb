package muxer

import (
	"log/slog"
	"strconv"

	cerrors "ftracemux/errors"
	"ftracemux/logging"
)

// ActivateConfig turns tracing on for a previously set-up config. The first
// activation of a session flips the global tracing_on switch; later ones
// only join the active set.
func (m *Muxer) ActivateConfig(id ConfigID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Id 0 is the Setup failure sentinel and is never allocated.
	if _, ok := m.configs[id]; !ok {
		return &cerrors.OpError{
			Op:     "activate",
			Target: "config " + strconv.FormatUint(uint64(id), 10),
			Err:    cerrors.ErrConfigNotFound,
		}
	}

	if len(m.active) == 0 {
		// Nothing of ours is active, so tracing_on must still be off.
		// Anything else means external interference.
		if m.fs.IsTracingEnabled() && !m.atrace.IsOldAtrace() {
			return &cerrors.OpError{Op: "activate", Err: cerrors.ErrTracingInUse}
		}
		if err := m.fs.EnableTracing(); err != nil {
			return &cerrors.OpError{Op: "activate", Target: "tracing_on", Err: err}
		}
	}

	m.active[id] = struct{}{}
	slog.Info("config activated", logging.Session(uint64(id)))
	return nil
}
