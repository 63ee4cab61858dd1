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

// Unlimited disables the submission size limit.
const Unlimited int64 = -1

// limitTracker counts bytes consumed by a session against the configured
// limit. It is pure bookkeeping: only the session's pump loop mutates it,
// so no synchronization is needed.
type limitTracker struct {
	limit int64
	n     int64
}

// add records n consumed bytes and reports whether the running total is
// still within the limit. The total keeps counting past a breach so the
// caller can report how much arrived.
func (t *limitTracker) add(n int64) bool {
	t.n += n
	if t.limit == Unlimited {
		return true
	}
	return t.n <= t.limit
}

// precheck reports whether a part declaring the given size could still fit.
// A negative declared size means unknown and always passes; the definitive
// check happens in add as the bytes are actually observed.
func (t *limitTracker) precheck(declared int64) bool {
	if t.limit == Unlimited || declared < 0 {
		return true
	}
	return t.n+declared <= t.limit
}

// total returns the number of bytes consumed so far.
func (t *limitTracker) total() int64 {
	return t.n
}
