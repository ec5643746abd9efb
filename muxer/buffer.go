package muxer

import (
	"log/slog"

	"golang.org/x/sys/unix"
)

const (
	// defaultBufferSizeKB sizes each per-CPU buffer when the request left
	// it unset.
	defaultBufferSizeKB = 2048

	// maxBufferSizeKB caps each per-CPU buffer at 64 MiB.
	maxBufferSizeKB = 64 * 1024
)

// ComputeCpuBufferSizeInPages converts a requested per-CPU buffer size in
// KiB into ring-buffer pages. Zero selects the default, oversized requests
// are capped, and the result is always at least one page.
func ComputeCpuBufferSizeInPages(requestKB int) int {
	return computeCpuBufferSizeInPages(requestKB, unix.Getpagesize())
}

func computeCpuBufferSizeInPages(requestKB, pageSize int) int {
	if requestKB == 0 {
		requestKB = defaultBufferSizeKB
	}
	if requestKB > maxBufferSizeKB {
		slog.Warn("requested buffer size exceeds cap, clamping",
			"request_kb", requestKB, "cap_kb", maxBufferSizeKB)
		requestKB = maxBufferSizeKB
	}

	pages := requestKB * 1024 / pageSize
	if pages == 0 {
		return 1
	}
	return pages
}

// setupBufferSize sizes the per-CPU buffers for the first config of a
// session. Failures are logged and otherwise best-effort.
func (m *Muxer) setupBufferSize(requestKB int) {
	pages := ComputeCpuBufferSizeInPages(requestKB)
	if err := m.fs.SetCpuBufferSizeInPages(pages); err != nil {
		slog.Warn("buffer size write failed", "pages", pages, "error", err)
		return
	}
	m.state.cpuBufferSizePages = pages
}
