package muxer

import (
	"testing"

	"ftracemux/config"
	"ftracemux/ftrace"
)

func TestCategoryTable_CoversTaxonomy(t *testing.T) {
	for _, category := range config.KnownCategories {
		if _, ok := atraceCategoryTable[category]; !ok {
			t.Errorf("category %q is in the taxonomy but not in the expansion table", category)
		}
	}
	for category := range atraceCategoryTable {
		if !config.IsKnownCategory(category) {
			t.Errorf("expansion table has %q which is not in the taxonomy", category)
		}
	}
}

func TestCategoryTable_SelectedEntries(t *testing.T) {
	tests := []struct {
		category   string
		wantGroups []string
		wantEvents []ftrace.GroupAndName
	}{
		{
			category:   "sched",
			wantGroups: []string{"cgroup", "systrace", "scm"},
			wantEvents: []ftrace.GroupAndName{
				gn("sched", "sched_switch"),
				gn("sched", "sched_waking"),
				gn("sched", "sched_blocked_reason"),
				gn("oom", "oom_score_adj_update"),
				gn("task", "task_rename"),
				gn("systrace", "0"),
				gn("scm", "scm_call_start"),
			},
		},
		{
			category:   "irq",
			wantGroups: []string{"irq", "ipi"},
			wantEvents: []ftrace.GroupAndName{
				gn("irq", "irq_handler_entry"),
				gn("irq", "softirq_raise"),
				gn("ipi", "ipi_raise"),
			},
		},
		{
			category:   "freq",
			wantGroups: []string{"msm_bus"},
			wantEvents: []ftrace.GroupAndName{
				gn("power", "cpu_frequency"),
				gn("power", "suspend_resume"),
				gn("clk", "clk_set_rate"),
				gn("cpuhp", "cpuhp_enter"),
			},
		},
		{
			category:   "idle",
			wantEvents: []ftrace.GroupAndName{gn("power", "cpu_idle")},
		},
		{
			category:   "membus",
			wantGroups: []string{"memory_bus"},
		},
		{
			category:   "thermal",
			wantEvents: []ftrace.GroupAndName{
				gn("thermal", "thermal_temperature"),
				gn("thermal", "cdev_update"),
			},
		},
		{
			category:   "binder_lock",
			wantEvents: []ftrace.GroupAndName{
				gn("binder", "binder_lock"),
				gn("binder", "binder_locked"),
				gn("binder", "binder_unlock"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			groups := CategoryGroups(tt.category)
			groupSet := make(map[string]bool, len(groups))
			for _, g := range groups {
				groupSet[g] = true
			}
			for _, want := range tt.wantGroups {
				if !groupSet[want] {
					t.Errorf("category %q missing group %q", tt.category, want)
				}
			}

			events := CategoryEvents(tt.category)
			eventSet := make(map[ftrace.GroupAndName]bool, len(events))
			for _, e := range events {
				eventSet[e] = true
			}
			for _, want := range tt.wantEvents {
				if !eventSet[want] {
					t.Errorf("category %q missing event %s", tt.category, want)
				}
			}
		})
	}
}

func TestCategoryTable_SchedExcludesWakeup(t *testing.T) {
	// sched_waking supersedes sched_wakeup at lower volume; the category
	// must not pull the old event in.
	for _, e := range CategoryEvents("sched") {
		if e.Name == "sched_wakeup" {
			t.Error("sched category must not include sched/sched_wakeup")
		}
	}
}

func TestCategories_SortedAndComplete(t *testing.T) {
	names := Categories()
	if len(names) != len(atraceCategoryTable) {
		t.Fatalf("Categories returned %d names, table has %d", len(names), len(atraceCategoryTable))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Error("Categories should be sorted and free of duplicates")
		}
	}
}

func TestCategoryAccessors_ReturnCopies(t *testing.T) {
	events := CategoryEvents("idle")
	if len(events) == 0 {
		t.Fatal("idle should expand to at least one event")
	}
	events[0] = gn("bogus", "bogus")

	if CategoryEvents("idle")[0] == gn("bogus", "bogus") {
		t.Error("CategoryEvents must return a copy, not the table slice")
	}
}
