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

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tracehost/ftracemux/atrace"
	"github.com/tracehost/ftracemux/eventtable"
)

// fakeProcfs is a minimal in-memory stand-in for procfs.Procfs, letting
// tests assert on exactly which events get enabled/disabled without a
// real kernel, the way the teacher's testFileProvider fakes the
// filesystem.
type fakeProcfs struct {
	tracingOn       bool
	bufferPages     int
	clock           string
	clocks          map[string]bool
	enabled         map[string]bool
	disableAllCalls int
	clearCalls      int
	groupNames      map[string][]string

	failEnable  map[string]bool
	failDisable map[string]bool
}

func newFakeProcfs() *fakeProcfs {
	return &fakeProcfs{
		clock:      "local",
		clocks:     map[string]bool{"local": true, "global": true, "boot": true},
		enabled:    make(map[string]bool),
		groupNames: make(map[string][]string),
	}
}

func key(group, name string) string { return group + "/" + name }

func (f *fakeProcfs) IsTracingEnabled() bool { return f.tracingOn }
func (f *fakeProcfs) EnableTracing() bool    { f.tracingOn = true; return true }
func (f *fakeProcfs) DisableTracing() bool   { f.tracingOn = false; return true }
func (f *fakeProcfs) SetCpuBufferSizeInPages(pages int) bool {
	f.bufferPages = pages
	return true
}
func (f *fakeProcfs) DisableAllEvents() bool { f.disableAllCalls++; return true }
func (f *fakeProcfs) ClearTrace() bool       { f.clearCalls++; return true }
func (f *fakeProcfs) GetClock() string       { return f.clock }
func (f *fakeProcfs) AvailableClocks() map[string]bool {
	return f.clocks
}
func (f *fakeProcfs) SetClock(clock string) bool { f.clock = clock; return true }
func (f *fakeProcfs) EnableEvent(group, name string) bool {
	if f.failEnable[key(group, name)] {
		return false
	}
	f.enabled[key(group, name)] = true
	return true
}
func (f *fakeProcfs) DisableEvent(group, name string) bool {
	if f.failDisable[key(group, name)] {
		return false
	}
	delete(f.enabled, key(group, name))
	return true
}
func (f *fakeProcfs) GetEventNamesForGroup(group string) []string {
	names := append([]string(nil), f.groupNames[group]...)
	sort.Strings(names)
	return names
}

// fakeTable is a minimal TranslationTable backed by fixed data.
type fakeTable struct {
	byName  map[string]*eventtable.Event
	byGroup map[string][]*eventtable.Event
	byID    map[int]*eventtable.Event
	nextID  int
}

func newFakeTable() *fakeTable {
	return &fakeTable{
		byName:  make(map[string]*eventtable.Event),
		byGroup: make(map[string][]*eventtable.Event),
		byID:    make(map[int]*eventtable.Event),
		nextID:  1,
	}
}

func (t *fakeTable) define(group, name string) *eventtable.Event {
	if e, ok := t.byName[group+"/"+name]; ok {
		return e
	}
	e := &eventtable.Event{Group: group, Name: name, ID: t.nextID}
	t.nextID++
	t.byName[group+"/"+name] = e
	t.byGroup[group] = append(t.byGroup[group], e)
	t.byID[e.ID] = e
	return e
}

func (t *fakeTable) GetEventByName(name string) *eventtable.Event {
	for k, e := range t.byName {
		if e.Name == name {
			_ = k
			return e
		}
	}
	return nil
}
func (t *fakeTable) GetEventByID(id int) *eventtable.Event { return t.byID[id] }
func (t *fakeTable) GetEventsByGroup(group string) []*eventtable.Event {
	return t.byGroup[group]
}
func (t *fakeTable) GetOrCreateEvent(group, name string) *eventtable.Event {
	if e, ok := t.byName[group+"/"+name]; ok {
		return e
	}
	return t.define(group, name)
}
func (t *fakeTable) CompactSchedFormat() eventtable.CompactSchedFormat {
	return eventtable.CompactSchedFormat{}
}

// fakeLauncher records atrace invocations.
type fakeLauncher struct {
	old     bool
	succeed bool
	calls   [][]string
}

func (l *fakeLauncher) IsOldAtrace() bool { return l.old }
func (l *fakeLauncher) RunAtrace(argv []string) bool {
	l.calls = append(l.calls, append([]string(nil), argv...))
	return l.succeed
}

var _ atrace.Launcher = (*fakeLauncher)(nil)

func newHarness() (*fakeProcfs, *fakeTable, *fakeLauncher, *Muxer) {
	pfs := newFakeProcfs()
	table := newFakeTable()
	launcher := &fakeLauncher{succeed: true}
	m := New(pfs, table, launcher, 4, nil)
	return pfs, table, launcher, m
}

func TestSingleSchedRequest(t *testing.T) {
	pfs, table, _, m := newHarness()
	table.define("sched", "sched_switch")

	id := m.SetupConfig(FtraceConfig{
		Events:       []string{"sched/sched_switch"},
		BufferSizeKB: 4096,
	})
	if id == 0 {
		t.Fatalf("SetupConfig returned 0")
	}
	if pfs.bufferPages != 1024 {
		t.Errorf("buffer pages = %d, want 1024", pfs.bufferPages)
	}
	if pfs.clock != "boot" {
		t.Errorf("clock = %q, want boot", pfs.clock)
	}
	if m.GlobalStateSnapshot().FtraceClock != ClockUnspecified {
		t.Errorf("FtraceClock = %v, want ClockUnspecified", m.GlobalStateSnapshot().FtraceClock)
	}
	if !pfs.enabled[key("sched", "sched_switch")] {
		t.Errorf("sched_switch not enabled in kernel")
	}

	if !m.ActivateConfig(id) {
		t.Fatalf("ActivateConfig failed")
	}
	if !pfs.tracingOn {
		t.Errorf("tracing_on not set after Activate")
	}

	if !m.RemoveConfig(id) {
		t.Fatalf("RemoveConfig failed")
	}
	if pfs.enabled[key("sched", "sched_switch")] {
		t.Errorf("sched_switch still enabled after Remove")
	}
	if pfs.bufferPages != 1 {
		t.Errorf("buffer pages after remove = %d, want 1", pfs.bufferPages)
	}
	if pfs.tracingOn {
		t.Errorf("tracing_on still set after Remove")
	}
}

func TestWildcardExpansion(t *testing.T) {
	pfs, table, _, m := newHarness()
	pfs.groupNames["power"] = []string{"cpu_idle", "cpu_frequency", "clock_set_rate"}
	for _, n := range pfs.groupNames["power"] {
		table.define("power", n)
	}

	id := m.SetupConfig(FtraceConfig{Events: []string{"power/*"}})
	if id == 0 {
		t.Fatalf("SetupConfig returned 0")
	}
	want := []string{"cpu_frequency", "cpu_idle", "clock_set_rate"}
	sort.Strings(want)
	var got []string
	for k := range pfs.enabled {
		got = append(got, k[len("power/"):])
	}
	sort.Strings(got)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("enabled power events mismatch (-want +got):\n%s", diff)
	}
}

func TestTwoOverlappingConfigs(t *testing.T) {
	pfs, table, _, m := newHarness()
	table.define("sched", "sched_switch")
	table.define("sched", "sched_waking")

	id1 := m.SetupConfig(FtraceConfig{Events: []string{"sched/sched_switch"}})
	id2 := m.SetupConfig(FtraceConfig{Events: []string{"sched/sched_switch", "sched/sched_waking"}})
	if id1 == 0 || id2 == 0 {
		t.Fatalf("setup failed: id1=%d id2=%d", id1, id2)
	}
	if !pfs.enabled[key("sched", "sched_switch")] || !pfs.enabled[key("sched", "sched_waking")] {
		t.Fatalf("expected both events enabled, got %v", pfs.enabled)
	}

	if !m.RemoveConfig(id1) {
		t.Fatalf("RemoveConfig(id1) failed")
	}
	if !pfs.enabled[key("sched", "sched_switch")] || !pfs.enabled[key("sched", "sched_waking")] {
		t.Fatalf("removing id1 should leave both events enabled (still referenced by id2), got %v", pfs.enabled)
	}

	if !m.RemoveConfig(id2) {
		t.Fatalf("RemoveConfig(id2) failed")
	}
	if len(pfs.enabled) != 0 {
		t.Fatalf("removing id2 should disable both events, got %v", pfs.enabled)
	}
}

func TestAtraceGfxCategory(t *testing.T) {
	pfs, table, launcher, m := newHarness()
	pfs.groupNames["mdss"] = []string{"mdp_commit"}
	pfs.groupNames["mali"] = nil
	pfs.groupNames["sde"] = nil
	pfs.groupNames["dpu"] = nil
	pfs.groupNames["g2d"] = nil
	table.define("mdss", "mdp_commit")

	id := m.SetupConfig(FtraceConfig{AtraceCategories: []string{"gfx"}})
	if id == 0 {
		t.Fatalf("SetupConfig returned 0")
	}
	cfg := m.GetDataSourceConfig(id)
	if cfg == nil {
		t.Fatalf("GetDataSourceConfig returned nil")
	}
	printEvent := table.GetOrCreateEvent("ftrace", "print")
	if !cfg.EventFilter.Contains(printEvent.ID) {
		t.Errorf("ftrace/print not recorded in config filter")
	}

	if len(launcher.calls) != 1 {
		t.Fatalf("expected exactly one atrace invocation, got %d calls: %v", len(launcher.calls), launcher.calls)
	}
	got := launcher.calls[0]
	want := []string{"atrace", "--async_start", "--only_userspace", "gfx"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("atrace argv mismatch (-want +got):\n%s", diff)
	}
}

func TestInterferenceGuard(t *testing.T) {
	pfs, _, _, m := newHarness()
	pfs.tracingOn = true

	id := m.SetupConfig(FtraceConfig{Events: []string{"sched/sched_switch"}})
	if id != 0 {
		t.Fatalf("SetupConfig = %d, want 0 (interference guard should fire)", id)
	}
	if len(pfs.enabled) != 0 {
		t.Errorf("no events should have been enabled, got %v", pfs.enabled)
	}
}

func TestLegacyAtraceConcurrency(t *testing.T) {
	pfs, _, launcher, m := newHarness()
	launcher.old = true
	_ = pfs

	id1 := m.SetupConfig(FtraceConfig{AtraceCategories: []string{"sched"}})
	if id1 == 0 {
		t.Fatalf("first legacy-atrace setup should succeed")
	}

	id2 := m.SetupConfig(FtraceConfig{AtraceCategories: []string{"gfx"}})
	if id2 != 0 {
		t.Fatalf("second concurrent legacy-atrace setup should fail, got id %d", id2)
	}
	if m.GetDataSourceConfig(id1) == nil {
		t.Fatalf("first config should remain untouched")
	}
}

func TestLegacyAtraceAllowsConcurrentNonAtraceConfig(t *testing.T) {
	_, table, launcher, m := newHarness()
	launcher.old = true
	table.define("sched", "sched_switch")

	id1 := m.SetupConfig(FtraceConfig{AtraceCategories: []string{"sched"}})
	if id1 == 0 {
		t.Fatalf("first legacy-atrace setup should succeed")
	}

	id2 := m.SetupConfig(FtraceConfig{Events: []string{"sched/sched_switch"}})
	if id2 == 0 {
		t.Fatalf("a concurrent non-atrace config should be permitted even under legacy atrace")
	}
}

func TestRemoveUnknownIdFails(t *testing.T) {
	_, _, _, m := newHarness()
	if m.RemoveConfig(999) {
		t.Errorf("RemoveConfig on unknown id should return false")
	}
	if m.RemoveConfig(0) {
		t.Errorf("RemoveConfig(0) should return false")
	}
}

func TestIdsStrictlyIncreasing(t *testing.T) {
	_, table, _, m := newHarness()
	table.define("sched", "sched_switch")

	var ids []ConfigId
	for i := 0; i < 3; i++ {
		id := m.SetupConfig(FtraceConfig{Events: []string{"sched/sched_switch"}})
		if id == 0 {
			t.Fatalf("setup %d failed", i)
		}
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Errorf("ids not strictly increasing: %v", ids)
		}
	}
}

func TestFailedEventEnableIsOmittedNotFatal(t *testing.T) {
	pfs, table, _, m := newHarness()
	table.define("sched", "sched_switch")
	pfs.failEnable = map[string]bool{key("sched", "sched_switch"): true}

	id := m.SetupConfig(FtraceConfig{Events: []string{"sched/sched_switch"}})
	if id == 0 {
		t.Fatalf("setup should still succeed even if one event fails to enable")
	}
	cfg := m.GetDataSourceConfig(id)
	e := table.GetOrCreateEvent("sched", "sched_switch")
	if cfg.EventFilter.Contains(e.ID) {
		t.Errorf("failed event should not be recorded in the config's filter")
	}
}
