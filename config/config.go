// Package config defines the trace configuration document.
// A TraceConfig describes one client's view of what the kernel tracing
// facility should record; the muxer reconciles many of them at once.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// TraceConfig is one client's tracing request.
type TraceConfig struct {
	// Events are ftrace event specifiers: "group/name", "group/*" or a
	// bare "name" to be resolved through the translation table.
	Events []string `json:"events,omitempty"`

	// AtraceCategories are atrace category names from the fixed taxonomy.
	AtraceCategories []string `json:"atrace_categories,omitempty"`

	// AtraceApps are app names whose userspace trace markers should be
	// captured.
	AtraceApps []string `json:"atrace_apps,omitempty"`

	// BufferSizeKB is the requested per-CPU ring buffer size. Zero selects
	// the default.
	BufferSizeKB int `json:"buffer_size_kb,omitempty"`

	// SymbolizeKsyms requests kernel symbolization downstream.
	SymbolizeKsyms bool `json:"symbolize_ksyms,omitempty"`

	// CompactSched carries hints for the compact sched encoder.
	CompactSched *CompactSchedConfig `json:"compact_sched,omitempty"`
}

// CompactSchedConfig enables the compact encoding of sched events.
type CompactSchedConfig struct {
	Enabled bool `json:"enabled"`
}

// KnownCategories is the fixed atrace category taxonomy.
var KnownCategories = []string{
	"gfx", "ion", "sched", "irq", "irqoff", "preemptoff", "i2c", "freq",
	"membus", "idle", "disk", "mmc", "load", "sync", "workq", "memreclaim",
	"regulators", "binder_driver", "binder_lock", "pagecache", "memory",
	"thermal",
}

// IsKnownCategory reports whether the category belongs to the taxonomy.
func IsKnownCategory(category string) bool {
	for _, c := range KnownCategories {
		if c == category {
			return true
		}
	}
	return false
}

// RequiresAtrace reports whether the request needs the atrace helper.
func (c *TraceConfig) RequiresAtrace() bool {
	return len(c.AtraceCategories) > 0 || len(c.AtraceApps) > 0
}

// Validate checks the request for malformed fields. Unknown categories are
// not an error: the expansion silently ignores them, matching atrace itself.
func (c *TraceConfig) Validate() error {
	if c.BufferSizeKB < 0 {
		return fmt.Errorf("buffer_size_kb must not be negative: %d", c.BufferSizeKB)
	}

	for _, spec := range c.Events {
		if spec == "" {
			return fmt.Errorf("empty event specifier")
		}
		if strings.HasPrefix(spec, "/") || strings.HasSuffix(spec, "/") {
			return fmt.Errorf("malformed event specifier %q", spec)
		}
	}

	for _, app := range c.AtraceApps {
		if strings.ContainsAny(app, ", \t\n") {
			return fmt.Errorf("atrace app name %q contains separators", app)
		}
	}

	for _, category := range c.AtraceCategories {
		if category == "" {
			return fmt.Errorf("empty atrace category")
		}
	}

	return nil
}

// Load reads and validates a TraceConfig from a JSON file.
func Load(path string) (*TraceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg TraceConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}

	return &cfg, nil
}

// Default returns a minimal scheduling-focused configuration.
func Default() *TraceConfig {
	return &TraceConfig{
		Events: []string{
			"sched/sched_switch",
			"sched/sched_waking",
		},
		BufferSizeKB: 4096,
		CompactSched: &CompactSchedConfig{Enabled: true},
	}
}
