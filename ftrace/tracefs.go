// Package ftrace drives the kernel tracing facility exposed through the
// tracing procfs (tracefs), normally mounted at /sys/kernel/tracing.
package ftrace

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	cerrors "ftracemux/errors"
)

// validEventName matches valid ftrace group and event names.
// Valid names are like: sched, sched_switch, irq_handler_entry, systrace, 0
var validEventName = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Filesystem magic numbers for tracefs and its debugfs fallback mount.
const (
	tracefsMagic = 0x74726163
	debugfsMagic = 0x64626720
)

// defaultRoots are the mount points probed by FindTracefs, in order.
var defaultRoots = []string{
	"/sys/kernel/tracing",
	"/sys/kernel/debug/tracing",
}

// Tracefs provides read/write access to the tracing control files.
type Tracefs struct {
	root string
}

// NewTracefs opens the tracing filesystem rooted at the given path.
// The path must contain a tracing_on control file.
func NewTracefs(root string) (*Tracefs, error) {
	if root == "" {
		return FindTracefs()
	}

	if _, err := os.Stat(filepath.Join(root, "tracing_on")); err != nil {
		return nil, fmt.Errorf("%s does not look like a tracing filesystem: %w", root, err)
	}

	return &Tracefs{root: root}, nil
}

// FindTracefs probes the well-known tracefs mount points and returns the
// first usable one. The filesystem magic is checked so that a stray
// directory at the same path is not mistaken for the real thing.
func FindTracefs() (*Tracefs, error) {
	for _, root := range defaultRoots {
		var st unix.Statfs_t
		if err := unix.Statfs(root, &st); err != nil {
			continue
		}
		if st.Type != tracefsMagic && st.Type != debugfsMagic {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, "tracing_on")); err != nil {
			continue
		}
		return &Tracefs{root: root}, nil
	}
	return nil, cerrors.ErrNoTracefs
}

// Root returns the filesystem path of the tracing root.
func (t *Tracefs) Root() string {
	return t.root
}

// readFile reads a control file relative to the tracing root.
func (t *Tracefs) readFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(t.root, name))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// writeFile writes a control file relative to the tracing root.
func (t *Tracefs) writeFile(name, value string) error {
	path := filepath.Join(t.root, name)
	if err := os.WriteFile(path, []byte(value), 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// IsTracingEnabled reads tracing_on.
func (t *Tracefs) IsTracingEnabled() bool {
	data, err := t.readFile("tracing_on")
	if err != nil {
		return false
	}
	return strings.TrimSpace(data) == "1"
}

// EnableTracing writes 1 to tracing_on.
func (t *Tracefs) EnableTracing() error {
	return t.writeFile("tracing_on", "1")
}

// DisableTracing writes 0 to tracing_on.
func (t *Tracefs) DisableTracing() error {
	return t.writeFile("tracing_on", "0")
}

// SetCpuBufferSizeInPages sizes every per-CPU ring buffer to n pages.
// The kernel control file takes KiB.
func (t *Tracefs) SetCpuBufferSizeInPages(n int) error {
	if n < 1 {
		return fmt.Errorf("buffer size must be at least one page: %d", n)
	}
	kb := n * unix.Getpagesize() / 1024
	return t.writeFile("buffer_size_kb", strconv.Itoa(kb))
}

// GetCpuBufferSizeInKb reads the current per-CPU ring buffer size.
// A kernel that has never been configured reports an "(expanded: N)" suffix;
// only the leading number is returned.
func (t *Tracefs) GetCpuBufferSizeInKb() (int, error) {
	data, err := t.readFile("buffer_size_kb")
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(data)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty buffer_size_kb")
	}
	return strconv.Atoi(fields[0])
}

// DisableAllEvents writes 0 to the top-level events/enable switch.
func (t *Tracefs) DisableAllEvents() error {
	return t.writeFile(filepath.Join("events", "enable"), "0")
}

// ClearTrace truncates the ring buffer.
func (t *Tracefs) ClearTrace() error {
	path := filepath.Join(t.root, "trace")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("truncate trace: %w", err)
	}
	return f.Close()
}

// GetClock reads trace_clock and returns the currently selected clock.
// The kernel marks the selection with brackets: "[local] global counter".
func (t *Tracefs) GetClock() (string, error) {
	data, err := t.readFile("trace_clock")
	if err != nil {
		return "", err
	}
	start := strings.IndexByte(data, '[')
	end := strings.IndexByte(data, ']')
	if start < 0 || end < start {
		return "", fmt.Errorf("no selected clock in trace_clock: %q", data)
	}
	return data[start+1 : end], nil
}

// AvailableClocks returns every clock advertised by trace_clock.
func (t *Tracefs) AvailableClocks() ([]string, error) {
	data, err := t.readFile("trace_clock")
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(data)
	clocks := make([]string, 0, len(fields))
	for _, f := range fields {
		clocks = append(clocks, strings.Trim(f, "[]"))
	}
	return clocks, nil
}

// SetClock writes the named clock to trace_clock.
func (t *Tracefs) SetClock(clock string) error {
	return t.writeFile("trace_clock", clock)
}

// EnableEvent turns a single event on via events/<group>/<name>/enable.
func (t *Tracefs) EnableEvent(group, name string) error {
	path, err := eventEnablePath(group, name)
	if err != nil {
		return err
	}
	return t.writeFile(path, "1")
}

// DisableEvent turns a single event off.
func (t *Tracefs) DisableEvent(group, name string) error {
	path, err := eventEnablePath(group, name)
	if err != nil {
		return err
	}
	return t.writeFile(path, "0")
}

// GetEventNamesForGroup enumerates the event names under events/<group>/.
// Control files living alongside the event directories are skipped.
func (t *Tracefs) GetEventNamesForGroup(group string) ([]string, error) {
	if err := validateEventName(group); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(t.root, "events", group))
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// GetEventGroups enumerates the groups under events/.
func (t *Tracefs) GetEventGroups() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(t.root, "events"))
	if err != nil {
		return nil, err
	}

	var groups []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		groups = append(groups, entry.Name())
	}
	return groups, nil
}

// ReadEventID reads the numeric id of an event from events/<group>/<name>/id.
func (t *Tracefs) ReadEventID(group, name string) (uint32, error) {
	if err := validateEventName(group); err != nil {
		return 0, err
	}
	if err := validateEventName(name); err != nil {
		return 0, err
	}

	data, err := t.readFile(filepath.Join("events", group, name, "id"))
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(strings.TrimSpace(data), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse id for %s/%s: %w", group, name, err)
	}
	return uint32(id), nil
}

// EventFormat reads the format file of an event.
func (t *Tracefs) EventFormat(group, name string) (string, error) {
	if err := validateEventName(group); err != nil {
		return "", err
	}
	if err := validateEventName(name); err != nil {
		return "", err
	}
	return t.readFile(filepath.Join("events", group, name, "format"))
}

// eventEnablePath builds the enable-file path after validating both parts.
func eventEnablePath(group, name string) (string, error) {
	if err := validateEventName(group); err != nil {
		return "", err
	}
	if err := validateEventName(name); err != nil {
		return "", err
	}
	return filepath.Join("events", group, name, "enable"), nil
}

// validateEventName rejects group or event names that could escape the
// events/ directory via crafted input.
func validateEventName(name string) error {
	if name == "" || !validEventName.MatchString(name) {
		return fmt.Errorf("%w: %q", cerrors.ErrInvalidEventName, name)
	}
	return nil
}
