package ftrace

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// writeTestTracefs lays out a minimal tracing filesystem in a temp dir.
func writeTestTracefs(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"tracing_on":     "0\n",
		"buffer_size_kb": "1408 (expanded: 1408)\n",
		"trace_clock":    "[local] global counter uptime perf mono mono_raw boot\n",
		"trace":          "# tracer: nop\n",
		"events/enable":  "0\n",
	}

	events := map[string]uint32{
		"sched/sched_switch":  316,
		"sched/sched_waking":  314,
		"power/cpu_idle":      402,
		"power/cpu_frequency": 403,
	}

	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	for spec, id := range events {
		gn := ParseGroupAndName(spec)
		dir := filepath.Join(root, "events", gn.Group, gn.Name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("mkdir %s: %v", spec, err)
		}
		if err := os.WriteFile(filepath.Join(dir, "enable"), []byte("0\n"), 0644); err != nil {
			t.Fatalf("write %s/enable: %v", spec, err)
		}
		if err := os.WriteFile(filepath.Join(dir, "id"), []byte(strconv.Itoa(int(id))+"\n"), 0644); err != nil {
			t.Fatalf("write %s/id: %v", spec, err)
		}
	}

	return root
}

func openTestTracefs(t *testing.T) *Tracefs {
	t.Helper()
	fs, err := NewTracefs(writeTestTracefs(t))
	if err != nil {
		t.Fatalf("NewTracefs: %v", err)
	}
	return fs
}

func TestNewTracefs_RejectsNonTracefs(t *testing.T) {
	if _, err := NewTracefs(t.TempDir()); err == nil {
		t.Error("a directory without tracing_on should be rejected")
	}
}

func TestTracingOnRoundTrip(t *testing.T) {
	fs := openTestTracefs(t)

	if fs.IsTracingEnabled() {
		t.Error("tracing should start off")
	}
	if err := fs.EnableTracing(); err != nil {
		t.Fatalf("EnableTracing: %v", err)
	}
	if !fs.IsTracingEnabled() {
		t.Error("tracing should be on after EnableTracing")
	}
	if err := fs.DisableTracing(); err != nil {
		t.Fatalf("DisableTracing: %v", err)
	}
	if fs.IsTracingEnabled() {
		t.Error("tracing should be off after DisableTracing")
	}
}

func TestClockParsing(t *testing.T) {
	fs := openTestTracefs(t)

	clock, err := fs.GetClock()
	if err != nil {
		t.Fatalf("GetClock: %v", err)
	}
	if clock != "local" {
		t.Errorf("GetClock = %q, want %q", clock, "local")
	}

	clocks, err := fs.AvailableClocks()
	if err != nil {
		t.Fatalf("AvailableClocks: %v", err)
	}
	want := []string{"local", "global", "counter", "uptime", "perf", "mono", "mono_raw", "boot"}
	if len(clocks) != len(want) {
		t.Fatalf("AvailableClocks = %v, want %v", clocks, want)
	}
	for i := range want {
		if clocks[i] != want[i] {
			t.Errorf("clock[%d] = %q, want %q", i, clocks[i], want[i])
		}
	}
}

func TestGetCpuBufferSizeInKb(t *testing.T) {
	fs := openTestTracefs(t)

	kb, err := fs.GetCpuBufferSizeInKb()
	if err != nil {
		t.Fatalf("GetCpuBufferSizeInKb: %v", err)
	}
	if kb != 1408 {
		t.Errorf("GetCpuBufferSizeInKb = %d, want 1408 (the expanded suffix must be dropped)", kb)
	}
}

func TestEnableEvent(t *testing.T) {
	fs := openTestTracefs(t)

	if err := fs.EnableEvent("sched", "sched_switch"); err != nil {
		t.Fatalf("EnableEvent: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(fs.Root(), "events", "sched", "sched_switch", "enable"))
	if err != nil {
		t.Fatalf("read enable: %v", err)
	}
	if string(data) != "1" {
		t.Errorf("enable file = %q, want %q", data, "1")
	}

	if err := fs.DisableEvent("sched", "sched_switch"); err != nil {
		t.Fatalf("DisableEvent: %v", err)
	}
	data, _ = os.ReadFile(filepath.Join(fs.Root(), "events", "sched", "sched_switch", "enable"))
	if string(data) != "0" {
		t.Errorf("enable file = %q, want %q", data, "0")
	}
}

func TestEnableEvent_RejectsTraversal(t *testing.T) {
	fs := openTestTracefs(t)

	tests := []struct {
		group, name string
	}{
		{"..", "tracing_on"},
		{"sched", ".."},
		{"sched/../..", "x"},
		{"", "sched_switch"},
		{"sched", ""},
		{"sched", "a b"},
	}

	for _, tt := range tests {
		if err := fs.EnableEvent(tt.group, tt.name); err == nil {
			t.Errorf("EnableEvent(%q, %q) should be rejected", tt.group, tt.name)
		}
	}
}

func TestGetEventNamesForGroup(t *testing.T) {
	fs := openTestTracefs(t)

	names, err := fs.GetEventNamesForGroup("power")
	if err != nil {
		t.Fatalf("GetEventNamesForGroup: %v", err)
	}
	found := map[string]bool{}
	for _, n := range names {
		found[n] = true
	}
	if !found["cpu_idle"] || !found["cpu_frequency"] {
		t.Errorf("power group = %v, want cpu_idle and cpu_frequency", names)
	}
	if len(names) != 2 {
		t.Errorf("power group has %d entries, want 2 (plain files must be skipped)", len(names))
	}
}

func TestReadEventID(t *testing.T) {
	fs := openTestTracefs(t)

	id, err := fs.ReadEventID("sched", "sched_switch")
	if err != nil {
		t.Fatalf("ReadEventID: %v", err)
	}
	if id != 316 {
		t.Errorf("ReadEventID = %d, want 316", id)
	}
}

func TestClearTrace(t *testing.T) {
	fs := openTestTracefs(t)

	if err := fs.ClearTrace(); err != nil {
		t.Fatalf("ClearTrace: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(fs.Root(), "trace"))
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("trace should be empty after ClearTrace, got %d bytes", len(data))
	}
}

func TestFindTracefs_RealKernel(t *testing.T) {
	// Exercises the Statfs magic check against the live kernel.
	if os.Getuid() != 0 {
		t.Skip("skipping tracefs probe: requires root")
	}
	fs, err := FindTracefs()
	if err != nil {
		t.Skip("skipping tracefs probe: no tracefs mounted")
	}
	if fs.Root() == "" {
		t.Error("FindTracefs returned an empty root")
	}
}
