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

package procfs

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Procfs is the capability the muxer depends on: reading and writing the
// handful of ftrace control files described in spec §6. It never inspects
// event payloads; it only flips switches and enumerates names.
type Procfs struct {
	fp FileProvider
}

// New wraps a FileProvider as a Procfs capability provider.
func New(fp FileProvider) *Procfs {
	return &Procfs{fp: fp}
}

// PageSize returns the system's page size in bytes, used to convert a
// requested KiB buffer size into a page count.
func PageSize() int {
	return unix.Getpagesize()
}

func (p *Procfs) IsTracingEnabled() bool {
	return p.readBool("tracing_on")
}

func (p *Procfs) EnableTracing() bool {
	return p.writeBool("tracing_on", true)
}

func (p *Procfs) DisableTracing() bool {
	return p.writeBool("tracing_on", false)
}

// SetCpuBufferSizeInPages writes the per-CPU ring buffer size, expressed in
// pages, converting to the KiB unit the kernel file expects.
func (p *Procfs) SetCpuBufferSizeInPages(pages int) bool {
	kb := pages * (PageSize() / 1024)
	return p.fp.WriteFtraceFile("buffer_size_kb", []byte(strconv.Itoa(kb))) == nil
}

// DisableAllEvents flips the group-wide events/enable switch off.
func (p *Procfs) DisableAllEvents() bool {
	return p.fp.WriteFtraceFile("events/enable", []byte("0")) == nil
}

// ClearTrace truncates the ring buffer.
func (p *Procfs) ClearTrace() bool {
	return p.fp.WriteFtraceFile("trace", []byte("")) == nil
}

// GetClock returns the currently selected trace clock, parsed out of the
// bracketed entry in trace_clock (e.g. "local [global] boot" -> "global").
func (p *Procfs) GetClock() string {
	data, err := p.fp.ReadFtraceFile("trace_clock")
	if err != nil {
		return ""
	}
	for _, field := range strings.Fields(string(data)) {
		if strings.HasPrefix(field, "[") && strings.HasSuffix(field, "]") {
			return strings.Trim(field, "[]")
		}
	}
	return ""
}

// AvailableClocks returns the set of clock names trace_clock advertises.
func (p *Procfs) AvailableClocks() map[string]bool {
	data, err := p.fp.ReadFtraceFile("trace_clock")
	if err != nil {
		return nil
	}
	clocks := make(map[string]bool)
	for _, field := range strings.Fields(string(data)) {
		clocks[strings.Trim(field, "[]")] = true
	}
	return clocks
}

// SetClock selects a trace clock by name.
func (p *Procfs) SetClock(clock string) bool {
	return p.fp.WriteFtraceFile("trace_clock", []byte(clock)) == nil
}

// EnableEvent flips events/<group>/<name>/enable on.
func (p *Procfs) EnableEvent(group, name string) bool {
	return p.writeEventFile(group, name, true)
}

// DisableEvent flips events/<group>/<name>/enable off.
func (p *Procfs) DisableEvent(group, name string) bool {
	return p.writeEventFile(group, name, false)
}

func (p *Procfs) writeEventFile(group, name string, enable bool) bool {
	value := "0"
	if enable {
		value = "1"
	}
	filename := path.Join("events", group, name, "enable")
	return p.fp.WriteFtraceFile(filename, []byte(value)) == nil
}

// GetEventNamesForGroup enumerates the event directories under
// events/<group>, used to expand a "<group>/*" wildcard event specifier.
func (p *Procfs) GetEventNamesForGroup(group string) []string {
	names, err := p.fp.ListFtraceDir(path.Join("events", group))
	if err != nil {
		return nil
	}
	return names
}

func (p *Procfs) readBool(name string) bool {
	data, err := p.fp.ReadFtraceFile(name)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == "1"
}

func (p *Procfs) writeBool(name string, on bool) bool {
	value := "0"
	if on {
		value = "1"
	}
	return p.fp.WriteFtraceFile(name, []byte(value)) == nil
}

func (p *Procfs) String() string {
	return fmt.Sprintf("procfs.Procfs{tracing_on=%v}", p.IsTracingEnabled())
}
