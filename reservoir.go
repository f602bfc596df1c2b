// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

// reservoir is the parser's bounded pending-integer queue (spec §4.4,
// §9). When two adjacent integer literals turn out not to be followed by
// "obj" or "R", parseIntegerLed pushes both, returns the first at once,
// and leaves the second here; NextObject (and parseArray) hand out
// pending integers, oldest first, as plain Integer objects before
// reading further tokens.
type reservoir struct {
	vals [2]int64
	wide [2]bool
	n    int
}

func (r *reservoir) full() bool { return r.n == peekCapacity }

func (r *reservoir) empty() bool { return r.n == 0 }

// push adds an integer literal. The caller must ensure the reservoir is
// not already full; pushing past capacity is an internal invariant
// violation (spec §4.4).
func (r *reservoir) push(v int64, wide bool) error {
	if r.full() {
		return newErr(InvalidState, -1, "reservoir: push exceeds capacity 2")
	}
	r.vals[r.n], r.wide[r.n] = v, wide
	r.n++
	return nil
}

// clear discards any pending integers without returning them, the path
// taken when the reservoir never completes a recognized production.
func (r *reservoir) clear() {
	r.n = 0
}

// takeOne removes and returns the oldest pending integer as a plain
// Object (Integer or Integer64 depending on width).
func (r *reservoir) takeOne() Object {
	v, wide := r.vals[0], r.wide[0]
	r.vals[0], r.wide[0] = r.vals[1], r.wide[1]
	r.n--
	if wide {
		return Integer64(v)
	}
	return Integer(int32(v))
}

// drain flushes every pending integer, oldest first, as plain Objects.
func (r *reservoir) drain() []Object {
	out := make([]Object, 0, r.n)
	for !r.empty() {
		out = append(out, r.takeOne())
	}
	return out
}
