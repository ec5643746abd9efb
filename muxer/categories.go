package muxer

import (
	"sort"

	"ftracemux/ftrace"
)

// categoryExpansion lists what one atrace category turns on: whole groups
// (every event the kernel advertises under them) and individual events.
type categoryExpansion struct {
	groups []string
	events []ftrace.GroupAndName
}

func gn(group, name string) ftrace.GroupAndName {
	return ftrace.GroupAndName{Group: group, Name: name}
}

// atraceCategoryTable is the hard-coded expansion of each atrace category
// into concrete ftrace events. Encoded as data so tests can iterate it and
// vendor tables can extend it.
//
// sched_wakeup is deliberately absent from "sched": sched_waking supersedes
// it at lower volume. Users can still enable it explicitly.
var atraceCategoryTable = map[string]categoryExpansion{
	"gfx": {
		groups: []string{"mdss", "mali", "sde", "dpu", "g2d"},
		events: []ftrace.GroupAndName{
			gn("mdss", "rotator_bw_ao_as_context"),
			gn("mdss", "mdp_trace_counter"),
			gn("mdss", "tracing_mark_write"),
			gn("mdss", "mdp_cmd_wait_pingpong"),
			gn("mdss", "mdp_cmd_kickoff"),
			gn("mdss", "mdp_cmd_release_bw"),
			gn("mdss", "mdp_cmd_readptr_done"),
			gn("mdss", "mdp_cmd_pingpong_done"),
			gn("mdss", "mdp_misr_crc"),
			gn("mdss", "mdp_compare_bw"),
			gn("mdss", "mdp_perf_prefill_calc"),
			gn("mdss", "mdp_perf_set_ot"),
			gn("mdss", "mdp_perf_set_wm_levels"),
			gn("mdss", "mdp_perf_set_panic_luts"),
			gn("mdss", "mdp_perf_set_qos_luts"),
			gn("mdss", "mdp_perf_update_bus"),
			gn("mdss", "mdp_video_underrun_done"),
			gn("mdss", "mdp_commit"),
			gn("mdss", "mdp_mixer_update"),
			gn("mdss", "mdp_sspp_change"),
			gn("mdss", "mdp_sspp_set"),
			gn("sde", "tracing_mark_write"),
			gn("sde", "sde_evtlog"),
			gn("sde", "sde_perf_calc_crtc"),
			gn("sde", "sde_perf_crtc_update"),
			gn("sde", "sde_perf_set_qos_luts"),
			gn("sde", "sde_perf_update_bus"),
			gn("dpu", "tracing_mark_write"),
			gn("g2d", "g2d"),
			gn("g2d", "tracing_mark_write"),
		},
	},
	"ion": {},
	"sched": {
		groups: []string{"cgroup", "systrace", "scm"},
		events: []ftrace.GroupAndName{
			gn("sched", "sched_switch"),
			gn("sched", "sched_waking"),
			gn("sched", "sched_blocked_reason"),
			gn("sched", "sched_cpu_hotplug"),
			gn("sched", "sched_pi_setprio"),
			gn("sched", "sched_process_exit"),
			gn("oom", "oom_score_adj_update"),
			gn("task", "task_rename"),
			gn("task", "task_newtask"),
			gn("systrace", "0"),
			gn("scm", "scm_call_start"),
			gn("scm", "scm_call_end"),
		},
	},
	"irq": {
		groups: []string{"irq", "ipi"},
		events: []ftrace.GroupAndName{
			gn("irq", "tasklet_entry"),
			gn("irq", "tasklet_exit"),
			gn("irq", "softirq_entry"),
			gn("irq", "softirq_exit"),
			gn("irq", "softirq_raise"),
			gn("irq", "irq_handler_entry"),
			gn("irq", "irq_handler_exit"),
			gn("ipi", "ipi_entry"),
			gn("ipi", "ipi_exit"),
			gn("ipi", "ipi_raise"),
		},
	},
	"irqoff": {
		events: []ftrace.GroupAndName{
			gn("preemptirq", "irq_enable"),
			gn("preemptirq", "irq_disable"),
		},
	},
	"preemptoff": {
		events: []ftrace.GroupAndName{
			gn("preemptirq", "preempt_enable"),
			gn("preemptirq", "preempt_disable"),
		},
	},
	"i2c": {
		groups: []string{"i2c"},
		events: []ftrace.GroupAndName{
			gn("i2c", "i2c_read"),
			gn("i2c", "i2c_write"),
			gn("i2c", "i2c_result"),
			gn("i2c", "i2c_reply"),
			gn("i2c", "smbus_read"),
			gn("i2c", "smbus_write"),
			gn("i2c", "smbus_result"),
			gn("i2c", "smbus_reply"),
		},
	},
	"freq": {
		groups: []string{"msm_bus"},
		events: []ftrace.GroupAndName{
			gn("power", "cpu_frequency"),
			gn("power", "gpu_frequency"),
			gn("power", "clock_set_rate"),
			gn("power", "clock_disable"),
			gn("power", "clock_enable"),
			gn("clk", "clk_set_rate"),
			gn("clk", "clk_disable"),
			gn("clk", "clk_enable"),
			gn("power", "cpu_frequency_limits"),
			gn("power", "suspend_resume"),
			gn("cpuhp", "cpuhp_enter"),
			gn("cpuhp", "cpuhp_exit"),
			gn("cpuhp", "cpuhp_pause"),
		},
	},
	"membus": {
		groups: []string{"memory_bus"},
	},
	"idle": {
		events: []ftrace.GroupAndName{
			gn("power", "cpu_idle"),
		},
	},
	"disk": {
		events: []ftrace.GroupAndName{
			gn("f2fs", "f2fs_sync_file_enter"),
			gn("f2fs", "f2fs_sync_file_exit"),
			gn("f2fs", "f2fs_write_begin"),
			gn("f2fs", "f2fs_write_end"),
			gn("ext4", "ext4_da_write_begin"),
			gn("ext4", "ext4_da_write_end"),
			gn("ext4", "ext4_sync_file_enter"),
			gn("ext4", "ext4_sync_file_exit"),
			gn("block", "block_rq_issue"),
			gn("block", "block_rq_complete"),
		},
	},
	"mmc": {
		groups: []string{"mmc"},
	},
	"load": {
		groups: []string{"cpufreq_interactive"},
	},
	"sync": {
		groups: []string{"sync", "fence", "dma_fence"},
		events: []ftrace.GroupAndName{
			gn("sync", "sync_pt"),
			gn("sync", "sync_timeline"),
			gn("sync", "sync_wait"),
			gn("fence", "fence_annotate_wait_on"),
			gn("fence", "fence_destroy"),
			gn("fence", "fence_emit"),
			gn("fence", "fence_enable_signal"),
			gn("fence", "fence_init"),
			gn("fence", "fence_signaled"),
			gn("fence", "fence_wait_end"),
			gn("fence", "fence_wait_start"),
		},
	},
	"workq": {
		groups: []string{"workqueue"},
		events: []ftrace.GroupAndName{
			gn("workqueue", "workqueue_queue_work"),
			gn("workqueue", "workqueue_execute_start"),
			gn("workqueue", "workqueue_execute_end"),
			gn("workqueue", "workqueue_activate_work"),
		},
	},
	"memreclaim": {
		groups: []string{"lowmemorykiller"},
		events: []ftrace.GroupAndName{
			gn("vmscan", "mm_vmscan_direct_reclaim_begin"),
			gn("vmscan", "mm_vmscan_direct_reclaim_end"),
			gn("vmscan", "mm_vmscan_kswapd_wake"),
			gn("vmscan", "mm_vmscan_kswapd_sleep"),
			gn("lowmemorykiller", "lowmemory_kill"),
		},
	},
	"regulators": {
		groups: []string{"regulator"},
		events: []ftrace.GroupAndName{
			gn("regulator", "regulator_enable"),
			gn("regulator", "regulator_enable_delay"),
			gn("regulator", "regulator_enable_complete"),
			gn("regulator", "regulator_disable"),
			gn("regulator", "regulator_disable_complete"),
			gn("regulator", "regulator_set_voltage"),
			gn("regulator", "regulator_set_voltage_complete"),
		},
	},
	"binder_driver": {
		events: []ftrace.GroupAndName{
			gn("binder", "binder_transaction"),
			gn("binder", "binder_transaction_received"),
			gn("binder", "binder_transaction_alloc_buf"),
			gn("binder", "binder_set_priority"),
		},
	},
	"binder_lock": {
		events: []ftrace.GroupAndName{
			gn("binder", "binder_lock"),
			gn("binder", "binder_locked"),
			gn("binder", "binder_unlock"),
		},
	},
	"pagecache": {
		groups: []string{"filemap"},
		events: []ftrace.GroupAndName{
			gn("filemap", "mm_filemap_add_to_page_cache"),
			gn("filemap", "mm_filemap_delete_from_page_cache"),
			gn("filemap", "filemap_set_wb_err"),
			gn("filemap", "file_check_and_advance_wb_err"),
		},
	},
	"memory": {
		events: []ftrace.GroupAndName{
			gn("kmem", "rss_stat"),
			gn("kmem", "ion_heap_grow"),
			gn("kmem", "ion_heap_shrink"),
			gn("ion", "ion_stat"),
			gn("mm_event", "mm_event_record"),
			gn("dmabuf_heap", "dma_heap_stat"),
		},
	},
	"thermal": {
		events: []ftrace.GroupAndName{
			gn("thermal", "thermal_temperature"),
			gn("thermal", "cdev_update"),
		},
	},
}

// Categories returns the known category names, sorted.
func Categories() []string {
	names := make([]string, 0, len(atraceCategoryTable))
	for name := range atraceCategoryTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CategoryGroups returns the whole groups a category adds.
func CategoryGroups(category string) []string {
	return append([]string(nil), atraceCategoryTable[category].groups...)
}

// CategoryEvents returns the individual events a category adds.
func CategoryEvents(category string) []ftrace.GroupAndName {
	return append([]ftrace.GroupAndName(nil), atraceCategoryTable[category].events...)
}
