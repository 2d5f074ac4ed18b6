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

import "fmt"

// GroupAndName identifies a single kernel ftrace event: its containing
// group directory and its event name (spec §3). An empty Group means the
// caller only supplied a bare name and resolution must look up the group.
type GroupAndName struct {
	Group string
	Name  string
}

func (gn GroupAndName) String() string {
	return fmt.Sprintf("%s/%s", gn.Group, gn.Name)
}

// Less orders GroupAndName lexicographically by (group, name), matching
// spec §3's "Equality and ordering are lexicographic."
func (gn GroupAndName) Less(other GroupAndName) bool {
	if gn.Group != other.Group {
		return gn.Group < other.Group
	}
	return gn.Name < other.Name
}

// syntheticGroup is the group ftrace events that are implicitly always
// enabled belong to; it is never written to procfs.
const syntheticGroup = "ftrace"
