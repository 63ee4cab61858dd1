// Copyright 2025 The Rivaas Authors
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

package body

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitTracker_Add(t *testing.T) {
	tests := []struct {
		name   string
		limit  int64
		chunks []int64
		ok     []bool
	}{
		{
			name:   "within limit",
			limit:  100,
			chunks: []int64{50, 40},
			ok:     []bool{true, true},
		},
		{
			name:   "exact limit",
			limit:  100,
			chunks: []int64{60, 40},
			ok:     []bool{true, true},
		},
		{
			name:   "one byte over",
			limit:  100,
			chunks: []int64{100, 1},
			ok:     []bool{true, false},
		},
		{
			name:   "second chunk breaches",
			limit:  100,
			chunks: []int64{60, 60},
			ok:     []bool{true, false},
		},
		{
			name:   "unlimited never breaches",
			limit:  Unlimited,
			chunks: []int64{1 << 30, 1 << 30},
			ok:     []bool{true, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := limitTracker{limit: tt.limit}
			for i, n := range tt.chunks {
				assert.Equal(t, tt.ok[i], tr.add(n), "chunk %d", i)
			}
		})
	}
}

func TestLimitTracker_TotalKeepsCountingPastBreach(t *testing.T) {
	tr := limitTracker{limit: 10}
	tr.add(8)
	tr.add(8)
	assert.Equal(t, int64(16), tr.total())
}

func TestLimitTracker_Precheck(t *testing.T) {
	tests := []struct {
		name     string
		limit    int64
		consumed int64
		declared int64
		ok       bool
	}{
		{name: "fits", limit: 100, consumed: 40, declared: 60, ok: true},
		{name: "over", limit: 100, consumed: 40, declared: 61, ok: false},
		{name: "unknown size passes", limit: 100, consumed: 99, declared: -1, ok: true},
		{name: "unlimited passes", limit: Unlimited, consumed: 0, declared: 1 << 40, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := limitTracker{limit: tt.limit, n: tt.consumed}
			assert.Equal(t, tt.ok, tr.precheck(tt.declared))
		})
	}
}
