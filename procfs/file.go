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

// Package procfs is the muxer's one dependency on the outside world: it
// reads and writes the ftrace control files under /sys/kernel/tracing (or
// the legacy /sys/kernel/debug/tracing path) and the whitelisted /proc
// files the muxer needs. Everything above this package talks to a
// FileProvider or a Procfs, never to the filesystem directly.
package procfs

import (
	"errors"
	"io/ioutil"
	"os"
	"path"
	"strings"

	"github.com/sirupsen/logrus"
)

// FileProvider abstracts the raw file operations the muxer needs against
// the tracing pseudo-filesystem and /proc. Swapping in a TestFileProvider
// lets the muxer and its callers be tested without a real kernel.
type FileProvider interface {
	ReadFtraceFile(name string) ([]byte, error)
	WriteFtraceFile(name string, data []byte) error
	ReadProcFile(name string) ([]byte, error)
	ListFtraceDir(dir string) ([]string, error)
}

const ftracePath = "/sys/kernel/tracing"
const debugFtracePath = "/sys/kernel/debug/tracing"
const procPath = "/proc"

// BadFtraceFileName is returned when a path escapes the tracing directory.
var BadFtraceFileName = errors.New("procfs: bad ftrace file name")

// BadProcFileName is returned when a /proc path isn't on the whitelist.
var BadProcFileName = errors.New("procfs: bad proc file name")

type localFileProvider struct {
	root string
}

// NewLocalFileProvider returns a FileProvider that reads and writes the
// real kernel tracing filesystem. It prefers /sys/kernel/tracing, falling
// back to the legacy /sys/kernel/debug/tracing mount point.
func NewLocalFileProvider() FileProvider {
	root := ftracePath
	if _, err := os.Stat(root); err != nil {
		root = debugFtracePath
	}
	return &localFileProvider{root: root}
}

func (fp *localFileProvider) ReadFtraceFile(name string) ([]byte, error) {
	if !SafeFtracePath(name) {
		logrus.WithField("name", name).Warn("rejected ftrace read: path escapes tracing root")
		return nil, BadFtraceFileName
	}
	return ioutil.ReadFile(path.Join(fp.root, name))
}

func (fp *localFileProvider) WriteFtraceFile(name string, data []byte) error {
	if !SafeFtracePath(name) {
		logrus.WithField("name", name).Warn("rejected ftrace write: path escapes tracing root")
		return BadFtraceFileName
	}
	return ioutil.WriteFile(path.Join(fp.root, name), data, 0)
}

func (fp *localFileProvider) ReadProcFile(name string) ([]byte, error) {
	if !SafeProcPath(name) {
		logrus.WithField("name", name).Warn("rejected proc read: not on the whitelist")
		return nil, BadProcFileName
	}
	return ioutil.ReadFile(path.Join(procPath, name))
}

// ListFtraceDir enumerates entry names within a directory under the
// tracing root, used to expand "<group>/*" wildcard event specifiers.
func (fp *localFileProvider) ListFtraceDir(dir string) ([]string, error) {
	if !SafeFtracePath(dir) {
		logrus.WithField("dir", dir).Warn("rejected ftrace dir listing: path escapes tracing root")
		return nil, BadFtraceFileName
	}
	entries, err := ioutil.ReadDir(path.Join(fp.root, dir))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// TestFileProvider serves file contents out of an in-memory map, keyed by
// the same relative names a localFileProvider would be given. Writes are
// recorded so tests can assert on them, and individual files can be made
// to fail writes to exercise the muxer's best-effort failure paths.
type TestFileProvider struct {
	files   map[string]string
	dirs    map[string][]string
	writes  map[string]string
	failing map[string]bool
}

// NewTestFileProvider returns a FileProvider backed by the given fixed
// file contents and directory listings, for use in tests. dirs maps a
// directory name (e.g. "events/power") to the entry names within it.
func NewTestFileProvider(files map[string]string, dirs map[string][]string) *TestFileProvider {
	return &TestFileProvider{
		files:  files,
		dirs:   dirs,
		writes: make(map[string]string),
	}
}

func (fp *TestFileProvider) ListFtraceDir(dir string) ([]string, error) {
	if !SafeFtracePath(dir) {
		return nil, BadFtraceFileName
	}
	return fp.dirs[dir], nil
}

func (fp *TestFileProvider) ReadFtraceFile(name string) ([]byte, error) {
	if !SafeFtracePath(name) {
		return nil, BadFtraceFileName
	}
	if v, ok := fp.writes[name]; ok {
		return []byte(v), nil
	}
	return []byte(fp.files[name]), nil
}

func (fp *TestFileProvider) WriteFtraceFile(name string, data []byte) error {
	if !SafeFtracePath(name) {
		return BadFtraceFileName
	}
	if fp.failing[name] {
		return errors.New("procfs: simulated write failure")
	}
	fp.writes[name] = string(data)
	return nil
}

func (fp *TestFileProvider) ReadProcFile(name string) ([]byte, error) {
	if !SafeProcPath(name) {
		return nil, BadProcFileName
	}
	return []byte(fp.files[name]), nil
}

// Written returns the last value written to name, and whether anything was
// ever written to it.
func (fp *TestFileProvider) Written(name string) (string, bool) {
	v, ok := fp.writes[name]
	return v, ok
}

// FailWrites causes subsequent writes to the given file to fail, to
// exercise the muxer's "logged, best-effort" failure paths.
func (fp *TestFileProvider) FailWrites(name string) {
	if fp.failing == nil {
		fp.failing = make(map[string]bool)
	}
	fp.failing[name] = true
}

// SafeFtracePath reports whether name is safe to join under the tracing
// root: it must not contain a ".." component.
func SafeFtracePath(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}

// SafeProcPath reports whether name is on the /proc read whitelist.
func SafeProcPath(name string) bool {
	return procFileWhitelist[name]
}

var procFileWhitelist = map[string]bool{
	"kallsyms": true,
}
