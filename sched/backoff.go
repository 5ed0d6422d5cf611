// File: sched/backoff.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Escalating idle backoff: busy spins, then scheduler yields, then
// short sleeps. Finding work resets the ladder.

package sched

import (
	"runtime"
	"time"
)

type backoff struct {
	spins  int
	yields int

	spinLimit  int
	yieldLimit int
	sleep      time.Duration
}

func newBackoff(spinLimit, yieldLimit int, sleep time.Duration) *backoff {
	return &backoff{spinLimit: spinLimit, yieldLimit: yieldLimit, sleep: sleep}
}

// wait burns one rung of the ladder.
func (b *backoff) wait() {
	switch {
	case b.spins < b.spinLimit:
		b.spins++
		spin(32)
	case b.yields < b.yieldLimit:
		b.yields++
		runtime.Gosched()
	default:
		time.Sleep(b.sleep)
	}
}

// reset returns to the start of the ladder.
func (b *backoff) reset() {
	b.spins = 0
	b.yields = 0
}

// spin busy-loops briefly without touching shared state.
//
//go:noinline
func spin(n int) {
	for i := 0; i < n; i++ {
		_ = i
	}
}
