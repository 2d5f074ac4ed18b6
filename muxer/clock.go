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

import "github.com/sirupsen/logrus"

// clockPreference lists trace_clock values in preference order (spec
// §4.3). If this changes, FtraceClock's mapping below must change too.
var clockPreference = []string{"boot", "global", "local"}

// setupClock selects the best available trace clock in preference order
// and records the result on m.state.FtraceClock. request is accepted for
// symmetry with the original (which takes it but presently ignores it);
// a future vendor clock preference would read it here.
func (m *Muxer) setupClock(_ FtraceConfig) {
	current := m.procfs.GetClock()
	available := m.procfs.AvailableClocks()

	for _, clock := range clockPreference {
		if !available[clock] {
			continue
		}
		if current != clock {
			if !m.procfs.SetClock(clock) {
				logrus.WithField("clock", clock).Warn("failed to set trace clock")
			}
			current = clock
		}
		break
	}

	switch current {
	case "boot":
		m.state.FtraceClock = ClockUnspecified
	case "global":
		m.state.FtraceClock = ClockGlobal
	case "local":
		m.state.FtraceClock = ClockLocal
	default:
		m.state.FtraceClock = ClockUnknown
	}
}
