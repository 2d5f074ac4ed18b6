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

const (
	defaultPerCPUBufferSizeKB = 2 * 1024
	maxPerCPUBufferSizeKB     = 64 * 1024
)

// ComputeCpuBufferSizeInPages converts a requested per-CPU buffer size in
// KiB into a page count, per spec §4.4's post-conditions: the result is
// always at least 1 page, and the request is capped at 64 MiB before
// conversion. pageSizeKB is the system page size in KiB (typically 4).
// The second return value reports whether the request was capped, so
// callers can log it.
func ComputeCpuBufferSizeInPages(requestedKB int, pageSizeKB int) (pages int, capped bool) {
	if requestedKB == 0 {
		requestedKB = defaultPerCPUBufferSizeKB
	}
	if requestedKB > maxPerCPUBufferSizeKB {
		requestedKB = maxPerCPUBufferSizeKB
		capped = true
	}
	if pageSizeKB <= 0 {
		pageSizeKB = 4
	}
	pages = requestedKB / pageSizeKB
	if pages == 0 {
		pages = 1
	}
	return pages, capped
}
