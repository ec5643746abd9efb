package ftrace

import (
	"sort"
	"strings"
)

// FtraceGroupName is the synthetic group of events the kernel emits without
// an enable switch. Events in this group are implicitly always on and are
// never written to the tracing procfs.
const FtraceGroupName = "ftrace"

// GroupAndName identifies a single kernel ftrace event. An empty Group means
// the caller did not know the group; resolution looks it up by name.
type GroupAndName struct {
	Group string
	Name  string
}

// String returns "group/name".
func (g GroupAndName) String() string {
	return g.Group + "/" + g.Name
}

// Less orders pairs lexicographically, group first.
func (g GroupAndName) Less(other GroupAndName) bool {
	if g.Group != other.Group {
		return g.Group < other.Group
	}
	return g.Name < other.Name
}

// ParseGroupAndName splits an event specifier on its first slash.
// "sched/sched_switch" becomes (sched, sched_switch); a bare "sched_switch"
// becomes ("", sched_switch).
func ParseGroupAndName(spec string) GroupAndName {
	if i := strings.IndexByte(spec, '/'); i >= 0 {
		return GroupAndName{Group: spec[:i], Name: spec[i+1:]}
	}
	return GroupAndName{Name: spec}
}

// Event is one entry of the translation table.
type Event struct {
	Group string
	Name  string
	// ID is the numeric ftrace event id used by filters and parsers.
	ID uint32
}

// GroupAndName returns the event's identifying pair.
func (e Event) GroupAndName() GroupAndName {
	return GroupAndName{Group: e.Group, Name: e.Name}
}

// CompactSchedFormat reports whether the kernel's sched_switch and
// sched_waking formats are laid out the way the compact encoder expects.
type CompactSchedFormat struct {
	SwitchAvailable bool
	WakingAvailable bool
}

// Table translates between event names, (group, name) pairs, and numeric
// event ids. It is built once per process and then read-only, except for
// GetOrCreateEvent which grows it for user-supplied pairs the kernel scan
// did not cover.
type Table struct {
	events      []Event
	byID        map[uint32]Event
	byName      map[string]Event
	byGroupName map[GroupAndName]Event
	byGroup     map[string][]Event

	// nextID hands out ids above anything the kernel reported.
	nextID uint32

	compactSched CompactSchedFormat
}

// NewTable builds a translation table from a fixed event list.
// The first event registered under a bare name wins name-only lookups.
func NewTable(events []Event, compactSched CompactSchedFormat) *Table {
	t := &Table{
		byID:         make(map[uint32]Event, len(events)),
		byName:       make(map[string]Event, len(events)),
		byGroupName:  make(map[GroupAndName]Event, len(events)),
		byGroup:      make(map[string][]Event),
		nextID:       1,
		compactSched: compactSched,
	}
	for _, e := range events {
		t.insert(e)
	}
	return t
}

// ScanTracefs builds a translation table by enumerating every event the
// kernel advertises under events/, reading each numeric id. Groups or
// events whose id file cannot be read are skipped. If the scan did not find
// ftrace/print, it is registered with an allocated id.
func ScanTracefs(fs *Tracefs) (*Table, error) {
	groups, err := fs.GetEventGroups()
	if err != nil {
		return nil, err
	}

	var events []Event
	for _, group := range groups {
		names, err := fs.GetEventNamesForGroup(group)
		if err != nil {
			continue
		}
		for _, name := range names {
			id, err := fs.ReadEventID(group, name)
			if err != nil {
				continue
			}
			events = append(events, Event{Group: group, Name: name, ID: id})
		}
	}

	table := NewTable(events, probeCompactSched(fs))

	// The print marker always exists even though events/ftrace is not
	// enumerable on every kernel.
	if _, ok := table.GetEvent(GroupAndName{Group: FtraceGroupName, Name: "print"}); !ok {
		table.GetOrCreateEvent(GroupAndName{Group: FtraceGroupName, Name: "print"})
	}

	return table, nil
}

// probeCompactSched checks that the fields the compact encoder relies on are
// present in the kernel's formats.
func probeCompactSched(fs *Tracefs) CompactSchedFormat {
	var f CompactSchedFormat
	if format, err := fs.EventFormat("sched", "sched_switch"); err == nil {
		f.SwitchAvailable = strings.Contains(format, "next_pid") &&
			strings.Contains(format, "next_comm")
	}
	if format, err := fs.EventFormat("sched", "sched_waking"); err == nil {
		f.WakingAvailable = strings.Contains(format, "pid") &&
			strings.Contains(format, "target_cpu")
	}
	return f
}

func (t *Table) insert(e Event) {
	t.events = append(t.events, e)
	t.byID[e.ID] = e
	t.byGroupName[e.GroupAndName()] = e
	t.byGroup[e.Group] = append(t.byGroup[e.Group], e)
	if _, ok := t.byName[e.Name]; !ok {
		t.byName[e.Name] = e
	}
	if e.ID >= t.nextID {
		t.nextID = e.ID + 1
	}
}

// GetEventByName looks an event up by bare name. Names are ambiguous across
// groups; the first registered match is returned.
func (t *Table) GetEventByName(name string) (Event, bool) {
	e, ok := t.byName[name]
	return e, ok
}

// GetEventByID looks an event up by numeric id.
func (t *Table) GetEventByID(id uint32) (Event, bool) {
	e, ok := t.byID[id]
	return e, ok
}

// GetEvent looks an event up by its (group, name) pair.
func (t *Table) GetEvent(gn GroupAndName) (Event, bool) {
	e, ok := t.byGroupName[gn]
	return e, ok
}

// GetEventsByGroup returns every known event of a group, sorted by name.
func (t *Table) GetEventsByGroup(group string) []Event {
	events := append([]Event(nil), t.byGroup[group]...)
	sort.Slice(events, func(i, j int) bool { return events[i].Name < events[j].Name })
	return events
}

// GetOrCreateEvent returns the event for a pair, registering it with a fresh
// id when the table has never seen it. This is the generic passthrough for
// events the user named explicitly. Pairs with an empty group or name are
// rejected.
func (t *Table) GetOrCreateEvent(gn GroupAndName) (Event, bool) {
	if gn.Group == "" || gn.Name == "" {
		return Event{}, false
	}
	if e, ok := t.byGroupName[gn]; ok {
		return e, true
	}
	e := Event{Group: gn.Group, Name: gn.Name, ID: t.nextID}
	t.insert(e)
	return e, true
}

// Len returns the number of known events.
func (t *Table) Len() int {
	return len(t.events)
}

// CompactSchedFormat returns the compact-sched encoder configuration probed
// at table build time.
func (t *Table) CompactSchedFormat() CompactSchedFormat {
	return t.compactSched
}
