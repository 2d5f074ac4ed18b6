// Copyright 2014 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package muxer

// categoryExpansion describes what one atrace category expands to: whole
// event groups (every event in the group is added) plus a handful of
// individual events, some of which duplicate entries the whole-group add
// would already cover — the original keeps them anyway for groups that
// don't exist on every kernel version, so this table does too.
type categoryExpansion struct {
	wholeGroups []string
	events      []GroupAndName
}

func gn(group, name string) GroupAndName {
	return GroupAndName{Group: group, Name: name}
}

// categoryTable is the hard-coded atrace-category expansion, reproduced
// bit-for-bit from ftrace_config_muxer.cc's GetFtraceEvents. It is a data
// table, not branching code, so tests can iterate it and vendors can
// extend it through Muxer's vendor events map.
var categoryTable = map[string]categoryExpansion{
	"gfx": {
		wholeGroups: []string{"mdss", "mali", "sde", "dpu", "g2d"},
		events: []GroupAndName{
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
			gn("mdss", "mdp_perf_update_bus"),
			gn("mdss", "mdp_video_underrun_done"),
			gn("mdss", "mdp_commit"),
			gn("mdss", "mdp_mixer_update"),
			gn("mdss", "mdp_perf_prefill_calc"),
			gn("mdss", "mdp_perf_set_ot"),
			gn("mdss", "mdp_perf_set_wm_levels"),
			gn("mdss", "mdp_perf_set_panic_luts"),
			gn("mdss", "mdp_perf_set_qos_luts"),
			gn("mdss", "mdp_sspp_change"),
			gn("mdss", "mdp_sspp_set"),
			gn("mali", "tracing_mark_write"),
			gn("sde", "tracing_mark_write"),
			gn("sde", "sde_perf_update_bus"),
			gn("sde", "sde_perf_set_qos_luts"),
			gn("sde", "sde_perf_set_ot"),
			gn("sde", "sde_perf_set_danger_luts"),
			gn("sde", "sde_perf_crtc_update"),
			gn("sde", "sde_perf_calc_crtc"),
			gn("sde", "sde_evtlog"),
			gn("sde", "sde_encoder_underrun"),
			gn("sde", "sde_cmd_release_bw"),
			gn("dpu", "tracing_mark_write"),
			gn("g2d", "tracing_mark_write"),
			gn("g2d", "g2d_perf_update_qos"),
		},
	},
	"ion": {
		events: []GroupAndName{
			gn("kmem", "ion_alloc_buffer_start"),
		},
	},
	// sched_wakeup is intentionally not added: sched_waking supersedes it
	// and is lower volume. The user may still enable it explicitly.
	"sched": {
		wholeGroups: []string{"cgroup", "systrace", "scm"},
		events: []GroupAndName{
			gn("sched", "sched_switch"),
			gn("sched", "sched_waking"),
			gn("sched", "sched_blocked_reason"),
			gn("sched", "sched_cpu_hotplug"),
			gn("sched", "sched_pi_setprio"),
			gn("sched", "sched_process_exit"),
			gn("cgroup", "cgroup_transfer_tasks"),
			gn("cgroup", "cgroup_setup_root"),
			gn("cgroup", "cgroup_rmdir"),
			gn("cgroup", "cgroup_rename"),
			gn("cgroup", "cgroup_remount"),
			gn("cgroup", "cgroup_release"),
			gn("cgroup", "cgroup_mkdir"),
			gn("cgroup", "cgroup_destroy_root"),
			gn("cgroup", "cgroup_attach_task"),
			gn("oom", "oom_score_adj_update"),
			gn("task", "task_rename"),
			gn("task", "task_newtask"),
			gn("systrace", "0"),
			gn("scm", "scm_call_start"),
			gn("scm", "scm_call_end"),
		},
	},
	"irq": {
		wholeGroups: []string{"irq", "ipi"},
		events: []GroupAndName{
			gn("irq", "tasklet_hi_exit"),
			gn("irq", "tasklet_hi_entry"),
			gn("irq", "tasklet_exit"),
			gn("irq", "tasklet_entry"),
			gn("irq", "softirq_raise"),
			gn("irq", "softirq_exit"),
			gn("irq", "softirq_entry"),
			gn("irq", "irq_handler_exit"),
			gn("irq", "irq_handler_entry"),
			gn("ipi", "ipi_raise"),
			gn("ipi", "ipi_exit"),
			gn("ipi", "ipi_entry"),
		},
	},
	"irqoff": {
		events: []GroupAndName{
			gn("preemptirq", "irq_enable"),
			gn("preemptirq", "irq_disable"),
		},
	},
	"preemptoff": {
		events: []GroupAndName{
			gn("preemptirq", "preempt_enable"),
			gn("preemptirq", "preempt_disable"),
		},
	},
	"i2c": {
		wholeGroups: []string{"i2c"},
		events: []GroupAndName{
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
		wholeGroups: []string{"msm_bus"},
		events: []GroupAndName{
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
			gn("msm_bus", "bus_update_request_end"),
			gn("msm_bus", "bus_update_request"),
			gn("msm_bus", "bus_rules_matches"),
			gn("msm_bus", "bus_max_votes"),
			gn("msm_bus", "bus_client_status"),
			gn("msm_bus", "bus_bke_params"),
			gn("msm_bus", "bus_bimc_config_limiter"),
			gn("msm_bus", "bus_avail_bw"),
			gn("msm_bus", "bus_agg_bw"),
		},
	},
	"membus": {
		wholeGroups: []string{"memory_bus"},
	},
	"idle": {
		events: []GroupAndName{
			gn("power", "cpu_idle"),
		},
	},
	"disk": {
		events: []GroupAndName{
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
		wholeGroups: []string{"mmc"},
	},
	"load": {
		wholeGroups: []string{"cpufreq_interactive"},
	},
	"sync": {
		wholeGroups: []string{"sync", "fence", "dma_fence"},
		events: []GroupAndName{
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
		wholeGroups: []string{"workqueue"},
		events: []GroupAndName{
			gn("workqueue", "workqueue_queue_work"),
			gn("workqueue", "workqueue_execute_start"),
			gn("workqueue", "workqueue_execute_end"),
			gn("workqueue", "workqueue_activate_work"),
		},
	},
	"memreclaim": {
		wholeGroups: []string{"lowmemorykiller"},
		events: []GroupAndName{
			gn("vmscan", "mm_vmscan_direct_reclaim_begin"),
			gn("vmscan", "mm_vmscan_direct_reclaim_end"),
			gn("vmscan", "mm_vmscan_kswapd_wake"),
			gn("vmscan", "mm_vmscan_kswapd_sleep"),
			gn("lowmemorykiller", "lowmemory_kill"),
		},
	},
	"regulators": {
		wholeGroups: []string{"regulator"},
		events: []GroupAndName{
			gn("regulator", "regulator_set_voltage_complete"),
			gn("regulator", "regulator_set_voltage"),
			gn("regulator", "regulator_enable_delay"),
			gn("regulator", "regulator_enable_complete"),
			gn("regulator", "regulator_enable"),
			gn("regulator", "regulator_disable_complete"),
			gn("regulator", "regulator_disable"),
		},
	},
	"binder_driver": {
		events: []GroupAndName{
			gn("binder", "binder_transaction"),
			gn("binder", "binder_transaction_received"),
			gn("binder", "binder_transaction_alloc_buf"),
			gn("binder", "binder_set_priority"),
		},
	},
	"binder_lock": {
		events: []GroupAndName{
			gn("binder", "binder_lock"),
			gn("binder", "binder_locked"),
			gn("binder", "binder_unlock"),
		},
	},
	"pagecache": {
		wholeGroups: []string{"filemap"},
		events: []GroupAndName{
			gn("filemap", "mm_filemap_delete_from_page_cache"),
			gn("filemap", "mm_filemap_add_to_page_cache"),
			gn("filemap", "filemap_set_wb_err"),
			gn("filemap", "file_check_and_advance_wb_err"),
		},
	},
	"memory": {
		events: []GroupAndName{
			gn("kmem", "rss_stat"),
			gn("kmem", "ion_heap_grow"),
			gn("kmem", "ion_heap_shrink"),
			// ion_stat supersedes ion_heap_grow/shrink for kernel 4.19+.
			gn("ion", "ion_stat"),
			gn("mm_event", "mm_event_record"),
			gn("dmabuf_heap", "dma_heap_stat"),
		},
	},
	"thermal": {
		events: []GroupAndName{
			gn("thermal", "thermal_temperature"),
			gn("thermal", "cdev_update"),
		},
	},
}
