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

import "testing"

func TestComputeCpuBufferSizeInPagesDefault(t *testing.T) {
	pages, capped := ComputeCpuBufferSizeInPages(0, 4)
	if capped {
		t.Errorf("default request should never be reported as capped")
	}
	if want := defaultPerCPUBufferSizeKB / 4; pages != want {
		t.Errorf("pages = %d, want %d", pages, want)
	}
}

func TestComputeCpuBufferSizeInPagesCapped(t *testing.T) {
	pages, capped := ComputeCpuBufferSizeInPages(1<<30, 4)
	if !capped {
		t.Errorf("oversized request should be reported as capped")
	}
	if want := maxPerCPUBufferSizeKB / 4; pages != want {
		t.Errorf("pages = %d, want %d", pages, want)
	}
}

func TestComputeCpuBufferSizeInPagesAlwaysAtLeastOne(t *testing.T) {
	for _, requestedKB := range []int{0, 1, 2, 3, 4, 4095, 4096, 100000, 1 << 20} {
		for _, pageSizeKB := range []int{0, 1, 4, 16, 64} {
			pages, _ := ComputeCpuBufferSizeInPages(requestedKB, pageSizeKB)
			if pages < 1 {
				t.Errorf("ComputeCpuBufferSizeInPages(%d, %d) = %d, want >= 1", requestedKB, pageSizeKB, pages)
			}
		}
	}
}

func TestComputeCpuBufferSizeInPagesNeverExceedsCap(t *testing.T) {
	for _, requestedKB := range []int{0, 4096, maxPerCPUBufferSizeKB, maxPerCPUBufferSizeKB + 1, 1 << 24} {
		pages, _ := ComputeCpuBufferSizeInPages(requestedKB, 4)
		if max := maxPerCPUBufferSizeKB / 4; pages > max {
			t.Errorf("ComputeCpuBufferSizeInPages(%d, 4) = %d pages, exceeds cap of %d", requestedKB, pages, max)
		}
	}
}
