package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestOpError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *OpError
		expected string
	}{
		{
			name: "with target",
			err: &OpError{
				Op:     "setup",
				Target: "sched/sched_switch",
				Err:    fmt.Errorf("write: permission denied"),
			},
			expected: "setup sched/sched_switch: write: permission denied",
		},
		{
			name: "config id target",
			err: &OpError{
				Op:     "remove",
				Target: "config 3",
				Err:    ErrConfigNotFound,
			},
			expected: "remove config 3: config not found",
		},
		{
			name: "without target",
			err: &OpError{
				Op:  "setup",
				Err: ErrTracingInUse,
			},
			expected: "setup: ftrace is in use by another process",
		},
		{
			name: "helper command line target",
			err: &OpError{
				Op:     "atrace",
				Target: "--async_start gfx",
				Err:    fmt.Errorf("exit status 1"),
			},
			expected: "atrace --async_start gfx: exit status 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestOpError_UnwrapChain(t *testing.T) {
	err := &OpError{Op: "activate", Target: "config 1", Err: ErrTracingInUse}

	if !errors.Is(err, ErrTracingInUse) {
		t.Error("the wrapped sentinel should be reachable via errors.Is")
	}
	if errors.Is(err, ErrConfigNotFound) {
		t.Error("an unrelated sentinel must not match")
	}

	var opErr *OpError
	outer := fmt.Errorf("run session: %w", err)
	if !errors.As(outer, &opErr) {
		t.Fatal("OpError should be recoverable through further wrapping")
	}
	if opErr.Op != "activate" || opErr.Target != "config 1" {
		t.Errorf("recovered OpError = %+v", opErr)
	}
}

func TestIsBusy(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"in use", ErrTracingInUse, true},
		{"tampered", ErrTracingTampered, true},
		{"legacy atrace", ErrLegacyAtraceBusy, true},
		{"wrapped in OpError", &OpError{Op: "setup", Err: ErrTracingInUse}, true},
		{"wrapped with fmt", fmt.Errorf("setup: %w", ErrTracingTampered), true},
		{"not found", ErrConfigNotFound, false},
		{"plain error", fmt.Errorf("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBusy(tt.err); got != tt.expected {
				t.Errorf("IsBusy(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}
