// Package muxer reconciles concurrent tracing configurations onto the
// single, globally shared kernel ftrace facility.
//
// Clients submit a TraceConfig via SetupConfig, flip it live with
// ActivateConfig, and tear it down with RemoveConfig. The muxer keeps the
// kernel's event set equal to the union over all live configs, drives the
// atrace helper with the union of all apps and categories, and guards
// against third parties toggling ftrace behind its back.
package muxer

import (
	"context"
	"log/slog"
	"sync"

	"ftracemux/config"
	"ftracemux/ftrace"
	"ftracemux/logging"
)

// Procfs is the capability surface of the tracing filesystem the muxer
// depends on. *ftrace.Tracefs implements it.
type Procfs interface {
	IsTracingEnabled() bool
	EnableTracing() error
	DisableTracing() error
	SetCpuBufferSizeInPages(n int) error
	DisableAllEvents() error
	ClearTrace() error
	GetClock() (string, error)
	AvailableClocks() ([]string, error)
	SetClock(clock string) error
	EnableEvent(group, name string) error
	DisableEvent(group, name string) error
	GetEventNamesForGroup(group string) ([]string, error)
}

// EventTable translates event names and pairs to numeric ids.
// *ftrace.Table implements it.
type EventTable interface {
	GetEventByName(name string) (ftrace.Event, bool)
	GetEventByID(id uint32) (ftrace.Event, bool)
	GetEvent(gn ftrace.GroupAndName) (ftrace.Event, bool)
	GetEventsByGroup(group string) []ftrace.Event
	GetOrCreateEvent(gn ftrace.GroupAndName) (ftrace.Event, bool)
	CompactSchedFormat() ftrace.CompactSchedFormat
}

// AtraceRunner invokes the external atrace helper. *atrace.Runner
// implements it.
type AtraceRunner interface {
	RunAtrace(ctx context.Context, args []string) error
	IsOldAtrace() bool
}

// ConfigID identifies a live configuration. Zero is reserved to signal
// Setup failure and is never allocated.
type ConfigID uint64

// Clock is the trace clock reported to downstream readers.
type Clock int

const (
	// ClockUnspecified is the expected default (boot), omitted downstream.
	ClockUnspecified Clock = iota
	// ClockGlobal is the global trace clock.
	ClockGlobal
	// ClockLocal is the per-CPU local trace clock.
	ClockLocal
	// ClockUnknown is any other clock the kernel selected.
	ClockUnknown
)

// String returns the clock name.
func (c Clock) String() string {
	switch c {
	case ClockUnspecified:
		return "boot"
	case ClockGlobal:
		return "global"
	case ClockLocal:
		return "local"
	default:
		return "unknown"
	}
}

// DataSourceConfig is the per-config record created by SetupConfig.
// It is immutable after creation.
type DataSourceConfig struct {
	filter         EventFilter
	compactSched   config.CompactSchedConfig
	atraceApps     []string
	atraceCats     []string
	symbolizeKsyms bool
}

// Filter returns a copy of the event ids this config will actually see:
// the subset of its request that the kernel accepted.
func (c *DataSourceConfig) Filter() *EventFilter {
	return c.filter.Clone()
}

// CompactSched returns the compact-sched encoder hints.
func (c *DataSourceConfig) CompactSched() config.CompactSchedConfig {
	return c.compactSched
}

// SymbolizeKsyms reports whether kernel symbolization was requested.
func (c *DataSourceConfig) SymbolizeKsyms() bool {
	return c.symbolizeKsyms
}

// globalState mirrors what the muxer has successfully told the kernel and
// the atrace helper. Invariant: an id is in events iff the kernel's enable
// file for it holds 1 (synthetic ftrace group events aside).
type globalState struct {
	events             EventFilter
	atraceOn           bool
	atraceApps         []string
	atraceCategories   []string
	cpuBufferSizePages int
	clock              Clock
}

// Muxer owns the process-wide view of the kernel tracing facility.
// All mutators serialize on one mutex held for the entire operation.
type Muxer struct {
	mu sync.Mutex

	fs     Procfs
	table  EventTable
	atrace AtraceRunner

	// vendor maps extra categories to event lists, merged in after the
	// hard-coded table.
	vendor map[string][]ftrace.GroupAndName

	lastID  ConfigID
	configs map[ConfigID]*DataSourceConfig
	active  map[ConfigID]struct{}

	state globalState
}

// Option configures a Muxer.
type Option func(*Muxer)

// WithVendorCategories registers additional category expansions. They are
// merged after the built-in table, so a vendor can extend but not shadow it.
func WithVendorCategories(vendor map[string][]ftrace.GroupAndName) Option {
	return func(m *Muxer) {
		m.vendor = vendor
	}
}

// New creates a Muxer over the given procfs, translation table and atrace
// runner. The muxer assumes cooperative exclusive ownership of the kernel
// facility while any config is live.
func New(fs Procfs, table EventTable, runner AtraceRunner, opts ...Option) *Muxer {
	m := &Muxer{
		fs:      fs,
		table:   table,
		atrace:  runner,
		configs: make(map[ConfigID]*DataSourceConfig),
		active:  make(map[ConfigID]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the record for a live config id.
func (m *Muxer) Config(id ConfigID) (*DataSourceConfig, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.configs[id]
	return c, ok
}

// EnabledEvents returns a copy of the ids currently enabled in the kernel.
func (m *Muxer) EnabledEvents() *EventFilter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.events.Clone()
}

// AtraceState returns what the muxer last successfully told atrace.
func (m *Muxer) AtraceState() (on bool, apps, categories []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.atraceOn,
		append([]string(nil), m.state.atraceApps...),
		append([]string(nil), m.state.atraceCategories...)
}

// GetClock returns the clock selected for the current tracing session.
func (m *Muxer) GetClock() Clock {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clock
}

// CpuBufferSizePages returns the per-CPU buffer size last written.
func (m *Muxer) CpuBufferSizePages() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.cpuBufferSizePages
}

// NumConfigs returns the number of live configs.
func (m *Muxer) NumConfigs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.configs)
}

// requiresAtrace mirrors config.RequiresAtrace for the muxer's own checks.
func requiresAtrace(req *config.TraceConfig) bool {
	return len(req.AtraceCategories) > 0 || len(req.AtraceApps) > 0
}

func (m *Muxer) logEnableFailure(gn ftrace.GroupAndName, err error) {
	slog.Warn("event enable failed, skipping",
		logging.Event(gn.Group, gn.Name), "error", err)
}
