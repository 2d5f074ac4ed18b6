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

import "github.com/tracehost/ftracemux/compactsched"

// ConfigId identifies one live FtraceDataSourceConfig. Zero signals a
// failed Setup and is never assigned to a real config.
type ConfigId uint64

// FtraceConfig is the external, caller-supplied request driving one
// SetupConfig call (spec §3).
type FtraceConfig struct {
	// Events holds unresolved specifiers: "group/name", "group/*", or a
	// bare "name".
	Events []string

	// AtraceCategories are strings from the fixed atrace taxonomy (see
	// spec §3); unknown categories are silently ignored.
	AtraceCategories []string

	// AtraceApps are atrace app names to trace.
	AtraceApps []string

	// BufferSizeKB is the requested per-CPU ring buffer size; 0 selects
	// the default.
	BufferSizeKB int

	SymbolizeKsyms bool

	CompactSched compactsched.Hints
}

// RequiresAtrace reports whether request needs the atrace helper started
// at all: it has categories, apps, or both.
func RequiresAtrace(request FtraceConfig) bool {
	return len(request.AtraceCategories) > 0 || len(request.AtraceApps) > 0
}

// FtraceDataSourceConfig is the immutable per-config record created by
// SetupConfig and destroyed by RemoveConfig (spec §3).
type FtraceDataSourceConfig struct {
	EventFilter      EventFilter
	CompactSched     compactsched.Config
	AtraceApps       []string
	AtraceCategories []string
	SymbolizeKsyms   bool
}

// FtraceClock reports which trace clock is active downstream, so readers
// can timestamp events correctly (spec §3).
type FtraceClock int

const (
	// ClockUnspecified is "boot", the expected default, omitted from
	// downstream messages the way the original leaves
	// FTRACE_CLOCK_UNSPECIFIED unset.
	ClockUnspecified FtraceClock = iota
	ClockGlobal
	ClockLocal
	ClockUnknown
)

func (c FtraceClock) String() string {
	switch c {
	case ClockUnspecified:
		return "unspecified"
	case ClockGlobal:
		return "global"
	case ClockLocal:
		return "local"
	default:
		return "unknown"
	}
}

// GlobalState is the muxer's process-local singleton state (spec §3).
type GlobalState struct {
	FtraceEvents       EventFilter
	AtraceOn           bool
	AtraceApps         []string
	AtraceCategories   []string
	CpuBufferSizePages int
	FtraceClock        FtraceClock
}
