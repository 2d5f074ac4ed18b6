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

import "github.com/tracehost/ftracemux/eventtable"

// ProcfsCapability is the subset of the ftrace procfs driver the muxer
// depends on (spec §6). procfs.Procfs satisfies it.
type ProcfsCapability interface {
	IsTracingEnabled() bool
	EnableTracing() bool
	DisableTracing() bool
	SetCpuBufferSizeInPages(pages int) bool
	DisableAllEvents() bool
	ClearTrace() bool
	GetClock() string
	AvailableClocks() map[string]bool
	SetClock(clock string) bool
	EnableEvent(group, name string) bool
	DisableEvent(group, name string) bool
	GetEventNamesForGroup(group string) []string
}

// TranslationTable is the opaque event-name-to-id provider (spec §6).
// eventtable.Table satisfies it.
type TranslationTable interface {
	GetEventByName(name string) *eventtable.Event
	GetEventByID(id int) *eventtable.Event
	GetEventsByGroup(group string) []*eventtable.Event
	GetOrCreateEvent(group, name string) *eventtable.Event
	CompactSchedFormat() eventtable.CompactSchedFormat
}
