// File: sched/counter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Completion counter: an atomic "N outstanding children" gate shared by
// every job that names it as parent. Released back to its pool exactly
// once, by whichever worker observes the zero transition.

package sched

import "sync/atomic"

// Counter tracks how many jobs must still finish before dependents may
// proceed. Counters are pooled; hold a Handle, not a *Counter, across
// completion.
type Counter struct {
	count atomic.Int32
	gen   atomic.Uint32 // bumped by the pool on recycle
	slot  uint32        // index of this record in the counter pool
}

// Load returns the current outstanding count.
func (c *Counter) Load() int32 {
	return c.count.Load()
}

// add adjusts the outstanding count and reports the new value. The
// zero transition is observed by exactly one caller; that caller owns
// the release.
func (c *Counter) add(delta int32) int32 {
	return c.count.Add(delta)
}
