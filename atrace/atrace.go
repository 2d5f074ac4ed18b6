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

// Package atrace launches the atrace helper binary the way
// other_examples/intel-memtierd__tracker_damon.go shells out to bpftrace
// and perf: build an argv, run it, and report success as a bool. The
// muxer never parses atrace's output; it only cares whether the process
// exited cleanly.
package atrace

import (
	"os/exec"

	"github.com/sirupsen/logrus"
)

// Launcher is the seam spec §6 calls out: "RunAtrace(argv) → bool" plus
// the IsOldAtrace() predicate that tells the muxer whether the
// --only_userspace flag and incremental multiplexing are available.
type Launcher interface {
	RunAtrace(argv []string) bool
	IsOldAtrace() bool
}

// execLauncher runs the real atrace binary via os/exec.
type execLauncher struct {
	oldAtrace bool
}

// NewLauncher returns a Launcher that shells out to the real atrace
// binary. oldAtrace should be true only on pre-Android-P images where
// atrace predates --only_userspace and incremental configuration.
func NewLauncher(oldAtrace bool) Launcher {
	return &execLauncher{oldAtrace: oldAtrace}
}

func (l *execLauncher) IsOldAtrace() bool {
	return l.oldAtrace
}

func (l *execLauncher) RunAtrace(argv []string) bool {
	if len(argv) == 0 {
		return false
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Run(); err != nil {
		logrus.WithError(err).WithField("argv", argv).Warn("atrace invocation failed")
		return false
	}
	return true
}
