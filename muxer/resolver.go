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

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// eventSet is a plain set of GroupAndName, used only while resolving one
// request; the registry stores numeric ids thereafter so event identity
// is decoupled from string lifetime.
type eventSet map[GroupAndName]struct{}

func (s eventSet) insert(group, name string) {
	s[GroupAndName{Group: group, Name: name}] = struct{}{}
}

func (s eventSet) insertGN(gn GroupAndName) {
	s[gn] = struct{}{}
}

func addEventGroup(table TranslationTable, group string, to eventSet) {
	events := table.GetEventsByGroup(group)
	for _, e := range events {
		to.insert(group, e.Name)
	}
}

func eventToGroupAndName(specifier string) (group, name string) {
	if slash := strings.IndexByte(specifier, '/'); slash != -1 {
		return specifier[:slash], specifier[slash+1:]
	}
	return "", specifier
}

// GetFtraceEvents resolves a request's event specifiers and atrace
// category list into the set of concrete kernel events it names (spec
// §4.1). It never touches GlobalState or the registry; SetupConfig merges
// in vendor category events and reconciles against the kernel afterward.
func GetFtraceEvents(request FtraceConfig, procfsCap ProcfsCapability, table TranslationTable) eventSet {
	events := make(eventSet)

	for _, specifier := range request.Events {
		group, name := eventToGroupAndName(specifier)
		switch {
		case name == "*":
			for _, n := range procfsCap.GetEventNamesForGroup(group) {
				events.insert(group, n)
			}
		case group == "":
			e := table.GetEventByName(name)
			if e == nil {
				logrus.WithField("event", name).Debug(
					"event doesn't exist; include the group in the config to allow it as a generic event")
				continue
			}
			events.insert(e.Group, e.Name)
		default:
			events.insert(group, name)
		}
	}

	if RequiresAtrace(request) {
		events.insert(syntheticGroup, "print")

		for _, category := range request.AtraceCategories {
			expansion, ok := categoryTable[category]
			if !ok {
				continue
			}
			for _, group := range expansion.wholeGroups {
				addEventGroup(table, group, events)
			}
			for _, e := range expansion.events {
				events.insertGN(e)
			}
		}
	}

	return events
}
