package muxer

import (
	"testing"
)

func TestComputeCpuBufferSizeInPages(t *testing.T) {
	const pageSize = 4096

	tests := []struct {
		name      string
		requestKB int
		expected  int
	}{
		{"zero selects the 2 MiB default", 0, 512},
		{"one KiB rounds up to one page", 1, 1},
		{"below one page rounds up", 3, 1},
		{"exactly one page", 4, 1},
		{"typical request", 4096, 1024},
		{"at the cap", 64 * 1024, 16384},
		{"above the cap is clamped", 64*1024 + 1, 16384},
		{"far above the cap is clamped", 10 * 1024 * 1024, 16384},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeCpuBufferSizeInPages(tt.requestKB, pageSize)
			if got != tt.expected {
				t.Errorf("computeCpuBufferSizeInPages(%d) = %d, want %d",
					tt.requestKB, got, tt.expected)
			}
			if got < 1 {
				t.Errorf("result must always be at least one page, got %d", got)
			}
		})
	}
}

func TestComputeCpuBufferSizeInPages_LargePages(t *testing.T) {
	// On 64 KiB pages a small request still returns one page.
	if got := computeCpuBufferSizeInPages(16, 64*1024); got != 1 {
		t.Errorf("computeCpuBufferSizeInPages(16) on 64 KiB pages = %d, want 1", got)
	}
	// The default shrinks proportionally.
	if got := computeCpuBufferSizeInPages(0, 64*1024); got != 32 {
		t.Errorf("default on 64 KiB pages = %d, want 32", got)
	}
}
