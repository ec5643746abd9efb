package muxer

import (
	"context"
	"log/slog"
	"strconv"

	cerrors "ftracemux/errors"
	"ftracemux/logging"
)

// RemoveConfig destroys a configuration and shrinks the kernel state back to
// the union of whatever remains. The reconciliation never diffs against the
// removed config alone: it recomputes the full expected union from the live
// registry, so concurrent configs compose correctly and no per-event
// refcounts are needed.
func (m *Muxer) RemoveConfig(ctx context.Context, id ConfigID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.configs[id]; !ok {
		return &cerrors.OpError{
			Op:     "remove",
			Target: "config " + strconv.FormatUint(uint64(id), 10),
			Err:    cerrors.ErrConfigNotFound,
		}
	}
	delete(m.configs, id)

	// Expected state after removal, recomputed from scratch.
	var expectedEvents EventFilter
	var expectedApps, expectedCategories []string
	for _, cfg := range m.configs {
		expectedEvents.UnionFrom(&cfg.filter)
		expectedApps = unionStrings(expectedApps, cfg.atraceApps)
		expectedCategories = unionStrings(expectedCategories, cfg.atraceCats)
	}

	// We can only turn off what we previously turned on successfully. An
	// app or category that was requested but never made it into atrace must
	// not reappear as a diff target.
	expectedApps = intersectStrings(expectedApps, m.state.atraceApps)
	expectedCategories = intersectStrings(expectedCategories, m.state.atraceCategories)

	for _, eventID := range m.state.events.Enumerate() {
		if expectedEvents.Contains(eventID) {
			continue
		}
		event, ok := m.table.GetEventByID(eventID)
		if !ok {
			// Enabled event no longer in the translation table: the table
			// only ever grows, so this cannot happen short of corruption.
			slog.Error("enabled event missing from translation table", "id", eventID)
			continue
		}
		if err := m.fs.DisableEvent(event.Group, event.Name); err != nil {
			// Leave the id in global state: it must keep matching what is
			// actually on in the kernel, even across failed writes.
			slog.Warn("event disable failed",
				logging.Event(event.Group, event.Name), "error", err)
			continue
		}
		m.state.events.Disable(eventID)
	}

	if _, wasActive := m.active[id]; wasActive {
		delete(m.active, id)
		if len(m.active) == 0 {
			if err := m.fs.DisableTracing(); err != nil {
				slog.Warn("tracing_on disable failed", "error", err)
			}
		}
	}

	if len(m.configs) == 0 {
		m.teardown()
	}

	if m.state.atraceOn {
		if len(expectedApps) == 0 && len(expectedCategories) == 0 {
			m.disableAtrace(ctx)
		} else if len(expectedApps) != len(m.state.atraceApps) ||
			len(expectedCategories) != len(m.state.atraceCategories) {
			// Something went away but atrace is still needed: re-run it
			// with the reduced union. State is replaced only on success.
			if err := m.startAtrace(ctx, expectedApps, expectedCategories); err != nil {
				slog.Warn("atrace restart with reduced set failed", "error", err)
			} else {
				m.state.atraceApps = expectedApps
				m.state.atraceCategories = expectedCategories
			}
		}
	}

	slog.Info("config removed", logging.Session(uint64(id)), "remaining", len(m.configs))
	return nil
}

// teardown releases the kernel facility once the registry is empty: shrink
// the per-CPU buffers to a single page, bulk-disable every event, and clear
// the ring buffer.
func (m *Muxer) teardown() {
	if err := m.fs.SetCpuBufferSizeInPages(1); err != nil {
		slog.Warn("buffer shrink failed", "error", err)
	} else {
		m.state.cpuBufferSizePages = 1
	}

	if err := m.fs.DisableAllEvents(); err != nil {
		slog.Warn("bulk event disable failed", "error", err)
	} else {
		m.state.events = EventFilter{}
	}

	if err := m.fs.ClearTrace(); err != nil {
		slog.Warn("trace clear failed", "error", err)
	}
}
