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

// Package compactsched carries the compact-sched encoder configuration
// hints through the muxer as an opaque value. Spec §3 and §6 both treat
// this as a pass-through: the muxer never inspects it, only stores and
// returns it as part of a data source's config record.
package compactsched

// Hints are the caller-supplied compact-sched encoder hints from a
// FtraceConfig request. The muxer passes them through unexamined.
type Hints struct {
	Enabled bool
}

// Config is the resolved, opaque compact-sched configuration attached to
// a data source once a config has been set up.
type Config struct {
	Hints  Hints
	Format interface{}
}

// Create builds a Config from the request's hints and the translation
// table's opaque format handle, mirroring the original's
// CreateCompactSchedConfig(request, table->compact_sched_format()).
func Create(hints Hints, format interface{}) Config {
	return Config{Hints: hints, Format: format}
}
