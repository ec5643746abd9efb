package muxer

import (
	"context"
	"log/slog"

	"ftracemux/config"
	cerrors "ftracemux/errors"
	"ftracemux/ftrace"
	"ftracemux/logging"
)

// SetupConfig registers a new configuration and reconciles the kernel state
// to cover it. It returns the allocated config id; id 0 and a non-nil error
// signal failure with no registry change.
//
// Setup is deliberately separate from Activate: clients pay the possibly
// slow procfs and atrace work here, before the "go" signal.
func (m *Muxer) SetupConfig(ctx context.Context, req *config.TraceConfig) (ConfigID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	legacy := m.atrace.IsOldAtrace()

	if len(m.configs) == 0 {
		// First config. If something else already turned tracing on, a
		// non-cooperating party owns ftrace; back off without touching
		// anything. Legacy atrace flips tracing_on itself, so the guard
		// does not apply there.
		if m.fs.IsTracingEnabled() && !legacy {
			return 0, &cerrors.OpError{Op: "setup", Err: cerrors.ErrTracingInUse}
		}
		m.setupClock()
		m.setupBufferSize(req.BufferSizeKB)
	} else if len(m.active) > 0 && !m.fs.IsTracingEnabled() && !legacy {
		// A session is live but tracing_on went off behind our back.
		return 0, &cerrors.OpError{Op: "setup", Err: cerrors.ErrTracingTampered}
	}

	events := m.resolveEvents(req)

	if requiresAtrace(req) {
		if legacy && len(m.configs) > 0 {
			return 0, &cerrors.OpError{Op: "setup", Err: cerrors.ErrLegacyAtraceBusy}
		}
		// A failed helper run is not fatal: the record below still carries
		// the requested sets, so a later successful update picks them up.
		if err := m.updateAtrace(ctx, req); err != nil {
			slog.Warn("atrace update failed", "error", err)
		}
	}

	var filter EventFilter
	for pair := range events {
		event, ok := m.table.GetOrCreateEvent(pair)
		if !ok {
			slog.Debug("event unknown to translation table, skipping",
				logging.Event(pair.Group, pair.Name))
			continue
		}

		// Events already on in the kernel, and the synthetic ftrace group
		// which is always on, need no procfs write.
		if m.state.events.Contains(event.ID) || event.Group == ftrace.FtraceGroupName {
			filter.Add(event.ID)
			continue
		}

		if err := m.fs.EnableEvent(event.Group, event.Name); err != nil {
			// The config simply will not see this event. Global state must
			// keep matching what the kernel actually has on.
			m.logEnableFailure(pair, err)
			continue
		}
		m.state.events.Add(event.ID)
		filter.Add(event.ID)
	}

	compactSched := config.CompactSchedConfig{}
	if req.CompactSched != nil {
		format := m.table.CompactSchedFormat()
		compactSched.Enabled = req.CompactSched.Enabled &&
			format.SwitchAvailable && format.WakingAvailable
	}

	m.lastID++
	id := m.lastID
	m.configs[id] = &DataSourceConfig{
		filter:         filter,
		compactSched:   compactSched,
		atraceApps:     append([]string(nil), req.AtraceApps...),
		atraceCats:     append([]string(nil), req.AtraceCategories...),
		symbolizeKsyms: req.SymbolizeKsyms,
	}

	slog.Info("config set up", logging.Session(uint64(id)),
		"events", filter.Size(), "atrace", requiresAtrace(req))

	return id, nil
}
