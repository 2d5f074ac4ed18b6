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

// Package muxer reconciles multiple concurrent tracing configurations
// onto the single, globally shared Linux kernel ftrace facility. See
// SPEC_FULL.md for the full contract; this file is the reconciler
// (Muxer.SetupConfig/ActivateConfig/RemoveConfig).
package muxer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tracehost/ftracemux/atrace"
	"github.com/tracehost/ftracemux/compactsched"
)

// Muxer is the process-wide singleton that owns GlobalState. The kernel's
// ftrace facility is naturally singleton, so exactly one Muxer should be
// constructed per process and shared by reference among callers (spec §9).
type Muxer struct {
	procfs   ProcfsCapability
	table    TranslationTable
	launcher atrace.Launcher

	pageSizeKB int

	vendorEvents map[string][]GroupAndName

	state   GlobalState
	configs map[ConfigId]*FtraceDataSourceConfig
	active  map[ConfigId]bool
	lastID  ConfigId
}

// New constructs a Muxer. vendorEvents lets a vendor register additional
// category -> events mappings merged in after the hard-coded table (spec
// §4.1). pageSizeKB is the system page size in KiB, used for buffer math.
func New(procfsCap ProcfsCapability, table TranslationTable, launcher atrace.Launcher, pageSizeKB int, vendorEvents map[string][]GroupAndName) *Muxer {
	return &Muxer{
		procfs:       procfsCap,
		table:        table,
		launcher:     launcher,
		pageSizeKB:   pageSizeKB,
		vendorEvents: vendorEvents,
		state: GlobalState{
			FtraceEvents: NewEventFilter(),
		},
		configs: make(map[ConfigId]*FtraceDataSourceConfig),
		active:  make(map[ConfigId]bool),
	}
}

// SetupConfig implements spec §4.2.1.
func (m *Muxer) SetupConfig(request FtraceConfig) ConfigId {
	isFtraceEnabled := m.procfs.IsTracingEnabled()

	if len(m.configs) == 0 {
		if isFtraceEnabled && !m.launcher.IsOldAtrace() {
			logrus.Warn("ftrace in use by a non-cooperating party, refusing setup")
			return 0
		}
		m.setupClock(request)
		m.setupBufferSize(request)
	} else if len(m.active) > 0 && !isFtraceEnabled && !m.launcher.IsOldAtrace() {
		logrus.Warn("ftrace was disabled behind our back during a live session, refusing setup")
		return 0
	}

	events := GetFtraceEvents(request, m.procfs, m.table)
	for _, category := range request.AtraceCategories {
		for _, e := range m.vendorEvents[category] {
			events.insertGN(e)
		}
	}

	if RequiresAtrace(request) {
		if m.launcher.IsOldAtrace() && len(m.configs) > 0 {
			logrus.Warn("concurrent atrace sessions are not supported on legacy atrace, refusing setup")
			return 0
		}
		m.updateAtrace(request)
	}

	filter := NewEventFilter()
	for e := range events {
		event := m.table.GetOrCreateEvent(e.Group, e.Name)
		if event == nil {
			logrus.WithField("event", e.String()).Debug("event not known, dropping")
			continue
		}
		if m.state.FtraceEvents.Contains(event.ID) || event.Group == syntheticGroup {
			filter.Add(event.ID)
			continue
		}
		if m.procfs.EnableEvent(event.Group, event.Name) {
			m.state.FtraceEvents.Add(event.ID)
			filter.Add(event.ID)
		} else {
			logrus.WithField("event", e.String()).Warn("failed to enable event")
		}
	}

	compact := compactsched.Create(request.CompactSched, m.table.CompactSchedFormat())

	m.lastID++
	id := m.lastID
	m.configs[id] = &FtraceDataSourceConfig{
		EventFilter:      filter,
		CompactSched:     compact,
		AtraceApps:       append([]string(nil), request.AtraceApps...),
		AtraceCategories: append([]string(nil), request.AtraceCategories...),
		SymbolizeKsyms:   request.SymbolizeKsyms,
	}
	return id
}

// ActivateConfig implements spec §4.2.2.
func (m *Muxer) ActivateConfig(id ConfigId) bool {
	if id == 0 {
		return false
	}
	if _, ok := m.configs[id]; !ok {
		logrus.WithField("config_id", id).Warn("ActivateConfig: unknown config id")
		return false
	}

	if len(m.active) == 0 {
		if m.procfs.IsTracingEnabled() && !m.launcher.IsOldAtrace() {
			logrus.Warn("ftrace in use by a non-cooperating party, refusing activate")
			return false
		}
		if !m.procfs.EnableTracing() {
			logrus.Warn("failed to enable ftrace")
			return false
		}
	}

	m.active[id] = true
	return true
}

// RemoveConfig implements spec §4.2.3.
func (m *Muxer) RemoveConfig(id ConfigId) bool {
	if id == 0 {
		return false
	}
	if _, ok := m.configs[id]; !ok {
		return false
	}
	delete(m.configs, id)

	expectedEvents := NewEventFilter()
	var expectedApps, expectedCategories []string
	for _, cfg := range m.configs {
		expectedEvents.UnionFrom(cfg.EventFilter)
		expectedApps = unionStrings(expectedApps, cfg.AtraceApps)
		expectedCategories = unionStrings(expectedCategories, cfg.AtraceCategories)
	}
	// We can only turn off what we previously turned on successfully, so
	// intersect the leftover configs' wants with what atrace actually has
	// running.
	expectedApps = intersectStrings(expectedApps, m.state.AtraceApps)
	expectedCategories = intersectStrings(expectedCategories, m.state.AtraceCategories)

	atraceChanged := len(expectedApps) != len(m.state.AtraceApps) ||
		len(expectedCategories) != len(m.state.AtraceCategories)

	for _, eid := range m.state.FtraceEvents.Enumerate() {
		if expectedEvents.Contains(eid) {
			continue
		}
		event := m.table.GetEventByID(eid)
		if event == nil {
			panic(fmt.Sprintf("ftracemux: event id %d enabled in global state but no longer known to the translation table", eid))
		}
		if m.procfs.DisableEvent(event.Group, event.Name) {
			m.state.FtraceEvents.Disable(eid)
		}
	}

	if m.active[id] {
		delete(m.active, id)
		if len(m.active) == 0 {
			if !m.procfs.DisableTracing() {
				logrus.Warn("failed to disable ftrace")
			}
		}
	}

	if len(m.configs) == 0 {
		if m.procfs.SetCpuBufferSizeInPages(1) {
			m.state.CpuBufferSizePages = 1
		}
		m.procfs.DisableAllEvents()
		m.procfs.ClearTrace()
	}

	if m.state.AtraceOn {
		if len(expectedApps) == 0 && len(expectedCategories) == 0 {
			m.disableAtrace()
		} else if atraceChanged {
			if m.startAtrace(expectedApps, expectedCategories) {
				m.state.AtraceApps = expectedApps
				m.state.AtraceCategories = expectedCategories
			}
		}
	}

	return true
}

// GetDataSourceConfig returns the per-config record for id, or nil if no
// such config is live. Callers use this to see which of their requested
// events actually made it into the kernel (spec §9, Open Question 1).
func (m *Muxer) GetDataSourceConfig(id ConfigId) *FtraceDataSourceConfig {
	return m.configs[id]
}

// GetPerCpuBufferSizePages reports the currently configured per-CPU ring
// buffer size.
func (m *Muxer) GetPerCpuBufferSizePages() int {
	return m.state.CpuBufferSizePages
}

// GlobalStateSnapshot returns a copy of the muxer's current global state,
// valid until the next Setup/Activate/Remove call (spec §5).
func (m *Muxer) GlobalStateSnapshot() GlobalState {
	return m.state
}

func (m *Muxer) setupBufferSize(request FtraceConfig) {
	pages, capped := ComputeCpuBufferSizeInPages(request.BufferSizeKB, m.pageSizeKB)
	if capped {
		logrus.WithField("requested_kb", request.BufferSizeKB).Warn("requested ftrace buffer size too big, capping")
	}
	if m.procfs.SetCpuBufferSizeInPages(pages) {
		m.state.CpuBufferSizePages = pages
	} else {
		logrus.WithField("pages", pages).Warn("failed to set ftrace buffer size")
	}
}

func (m *Muxer) updateAtrace(request FtraceConfig) {
	combinedCategories := unionStrings(m.state.AtraceCategories, request.AtraceCategories)
	combinedApps := unionStrings(m.state.AtraceApps, request.AtraceApps)

	if m.state.AtraceOn &&
		len(combinedApps) == len(m.state.AtraceApps) &&
		len(combinedCategories) == len(m.state.AtraceCategories) {
		return
	}

	if m.startAtrace(combinedApps, combinedCategories) {
		m.state.AtraceApps = combinedApps
		m.state.AtraceCategories = combinedCategories
		m.state.AtraceOn = true
	}
}

func (m *Muxer) startAtrace(apps, categories []string) bool {
	argv := []string{"atrace", "--async_start"}
	if !m.launcher.IsOldAtrace() {
		argv = append(argv, "--only_userspace")
	}
	argv = append(argv, categories...)
	if len(apps) > 0 {
		argv = append(argv, "-a", strings.Join(apps, ","))
	}
	return m.launcher.RunAtrace(argv)
}

func (m *Muxer) disableAtrace() {
	argv := []string{"atrace", "--async_stop"}
	if !m.launcher.IsOldAtrace() {
		argv = append(argv, "--only_userspace")
	}
	if m.launcher.RunAtrace(argv) {
		m.state.AtraceApps = nil
		m.state.AtraceCategories = nil
		m.state.AtraceOn = false
	}
}

// unionStrings returns the sorted, deduplicated union of a and b, mirroring
// the original's UnionInPlace (sort + std::set_union).
func unionStrings(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		set[s] = struct{}{}
	}
	return sortedKeys(set)
}

// intersectStrings returns the sorted intersection of a and b, mirroring
// the original's IntersectInPlace.
func intersectStrings(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[s] = struct{}{}
	}
	set := make(map[string]struct{})
	for _, s := range a {
		if _, ok := inB[s]; ok {
			set[s] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
