package muxer

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"ftracemux/config"
)

// updateAtrace drives the helper toward the union of what is already
// running and what the request adds. atrace can only be invoked
// monolithically, so the full combined set is passed every time.
// Global state is replaced only on success.
func (m *Muxer) updateAtrace(ctx context.Context, req *config.TraceConfig) error {
	combinedApps := unionStrings(m.state.atraceApps, req.AtraceApps)
	combinedCategories := unionStrings(m.state.atraceCategories, req.AtraceCategories)

	if m.state.atraceOn &&
		len(combinedApps) == len(m.state.atraceApps) &&
		len(combinedCategories) == len(m.state.atraceCategories) {
		return nil
	}

	if err := m.startAtrace(ctx, combinedApps, combinedCategories); err != nil {
		return err
	}

	m.state.atraceOn = true
	m.state.atraceApps = combinedApps
	m.state.atraceCategories = combinedCategories
	return nil
}

// startAtrace runs atrace --async_start with the full app and category set.
func (m *Muxer) startAtrace(ctx context.Context, apps, categories []string) error {
	args := []string{"--async_start"}
	if !m.atrace.IsOldAtrace() {
		args = append(args, "--only_userspace")
	}
	args = append(args, categories...)
	if len(apps) > 0 {
		args = append(args, "-a", strings.Join(apps, ","))
	}
	return m.atrace.RunAtrace(ctx, args)
}

// disableAtrace stops the helper and clears the atrace state on success.
func (m *Muxer) disableAtrace(ctx context.Context) {
	args := []string{"--async_stop"}
	if !m.atrace.IsOldAtrace() {
		args = append(args, "--only_userspace")
	}
	if err := m.atrace.RunAtrace(ctx, args); err != nil {
		slog.Warn("atrace stop failed", "error", err)
		return
	}

	m.state.atraceOn = false
	m.state.atraceApps = nil
	m.state.atraceCategories = nil
}

// unionStrings merges two string sets, sorted and deduplicated.
func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, s := range a {
		seen[s] = struct{}{}
	}
	for _, s := range b {
		seen[s] = struct{}{}
	}
	merged := make([]string, 0, len(seen))
	for s := range seen {
		merged = append(merged, s)
	}
	sort.Strings(merged)
	return merged
}

// intersectStrings keeps the elements of a that are also in b, sorted.
func intersectStrings(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[s] = struct{}{}
	}
	var kept []string
	for _, s := range a {
		if _, ok := inB[s]; ok {
			kept = append(kept, s)
		}
	}
	sort.Strings(kept)
	return kept
}
