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

// Command ftracemuxd sets up a single ftrace configuration from the
// command line, activates it, waits for SIGINT, then tears it down. It
// exists to exercise the muxer end to end against a real kernel without
// bringing in the rest of the probes host.
package main

import (
	"flag"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/tracehost/ftracemux/atrace"
	"github.com/tracehost/ftracemux/eventtable"
	"github.com/tracehost/ftracemux/muxer"
	"github.com/tracehost/ftracemux/procfs"
)

var (
	cpuProfile string
	events     string
	categories string
	apps       string
	bufferKB   int
	oldAtrace  bool
)

func init() {
	flag.StringVar(&cpuProfile, "cpuprofile", "", "write cpu profile to file")
	flag.StringVar(&events, "events", "", "comma-separated event specifiers, e.g. sched/sched_switch,power/*")
	flag.StringVar(&categories, "categories", "", "comma-separated atrace categories")
	flag.StringVar(&apps, "apps", "", "comma-separated atrace app names")
	flag.IntVar(&bufferKB, "buffer-kb", 0, "requested per-CPU buffer size in KiB (0 = default)")
	flag.BoolVar(&oldAtrace, "old-atrace", false, "target a pre-Android-P atrace binary")
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func doMain() error {
	flag.Parse()

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			return err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer f.Close()
		defer pprof.StopCPUProfile()
	}

	fp := procfs.NewLocalFileProvider()
	pc := procfs.New(fp)
	table := eventtable.New(fp)
	launcher := atrace.NewLauncher(oldAtrace)

	m := muxer.New(pc, table, launcher, procfs.PageSize()/1024, nil)

	request := muxer.FtraceConfig{
		Events:           splitCSV(events),
		AtraceCategories: splitCSV(categories),
		AtraceApps:       splitCSV(apps),
		BufferSizeKB:     bufferKB,
	}

	id := m.SetupConfig(request)
	if id == 0 {
		logrus.Fatal("SetupConfig failed")
	}
	logrus.WithField("config_id", id).Info("config set up")

	if !m.ActivateConfig(id) {
		logrus.Fatal("ActivateConfig failed")
	}
	logrus.Info("tracing active, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	if !m.RemoveConfig(id) {
		logrus.Warn("RemoveConfig reported failure")
	}
	logrus.Info("tracing torn down")

	return nil
}

func main() {
	if err := doMain(); err != nil {
		logrus.WithError(err).Fatal("ftracemuxd failed")
	}
}
