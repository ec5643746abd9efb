package muxer

import (
	"log/slog"

	"ftracemux/config"
	"ftracemux/ftrace"
	"ftracemux/logging"
)

// resolveEvents expands a request into the concrete set of (group, name)
// pairs it selects: explicit specifiers, wildcard groups, bare names looked
// up through the translation table, and the atrace category expansion.
func (m *Muxer) resolveEvents(req *config.TraceConfig) map[ftrace.GroupAndName]struct{} {
	events := make(map[ftrace.GroupAndName]struct{})

	for _, spec := range req.Events {
		pair := ftrace.ParseGroupAndName(spec)
		switch {
		case pair.Name == "*":
			names, err := m.fs.GetEventNamesForGroup(pair.Group)
			if err != nil {
				slog.Debug("wildcard group not enumerable, skipping",
					"group", pair.Group, "error", err)
				continue
			}
			for _, name := range names {
				events[ftrace.GroupAndName{Group: pair.Group, Name: name}] = struct{}{}
			}
		case pair.Group == "":
			// A bare name is resolved through the table; never guess a
			// group. The user is responsible for namespacing.
			e, ok := m.table.GetEventByName(pair.Name)
			if !ok {
				slog.Debug("bare event name not in table, dropping", "name", pair.Name)
				continue
			}
			events[e.GroupAndName()] = struct{}{}
		default:
			// The user named the pair explicitly; the table may later mark
			// it unknown but it is inserted verbatim.
			events[pair] = struct{}{}
		}
	}

	if requiresAtrace(req) {
		events[ftrace.GroupAndName{Group: ftrace.FtraceGroupName, Name: "print"}] = struct{}{}
		for _, category := range req.AtraceCategories {
			m.expandCategory(category, events)
		}
	}

	return events
}

// expandCategory inserts the hard-coded expansion of one category, then any
// vendor-registered additions. Unknown categories are silently ignored.
func (m *Muxer) expandCategory(category string, events map[ftrace.GroupAndName]struct{}) {
	expansion, known := atraceCategoryTable[category]
	if known {
		for _, group := range expansion.groups {
			m.addGroup(group, events)
		}
		for _, pair := range expansion.events {
			events[pair] = struct{}{}
		}
	}

	vendorEvents, vendorKnown := m.vendor[category]
	if vendorKnown {
		for _, pair := range vendorEvents {
			events[pair] = struct{}{}
		}
	}

	if !known && !vendorKnown {
		slog.Debug("unknown atrace category, ignoring", logging.Category(category))
	}
}

// addGroup inserts every event the translation table knows for a group.
// Groups absent on this kernel expand to nothing.
func (m *Muxer) addGroup(group string, events map[ftrace.GroupAndName]struct{}) {
	for _, e := range m.table.GetEventsByGroup(group) {
		events[e.GroupAndName()] = struct{}{}
	}
}
