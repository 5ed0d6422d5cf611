// File: sched/deque.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Chase-Lev work-stealing deque. The owning worker pushes and pops at
// the bottom; any thread may steal from the top. top and bottom grow
// monotonically, the live range is [top, bottom), and only the owner
// ever grows the ring. Go's sync/atomic operations are sequentially
// consistent, which covers every acquire/release and full-fence point
// the algorithm needs.

package sched

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

const minDequeCapacity = 64

// dequeRing is the circular backing store. Immutable once published;
// growth allocates a replacement and copies the live range.
type dequeRing struct {
	mask int64 // capacity-1, capacity is a power of two
	jobs []*Job
}

func newDequeRing(capacity int64) *dequeRing {
	return &dequeRing{mask: capacity - 1, jobs: make([]*Job, capacity)}
}

func (r *dequeRing) at(i int64) *Job { return r.jobs[i&r.mask] }

func (r *dequeRing) put(i int64, j *Job) { r.jobs[i&r.mask] = j }

func (r *dequeRing) capacity() int64 { return r.mask + 1 }

// deque is one worker's queue. top and bottom sit on separate cache
// lines; stealers hammer top while the owner works bottom.
type deque struct {
	_      cpu.CacheLinePad
	top    atomic.Int64
	_      cpu.CacheLinePad
	bottom atomic.Int64
	_      cpu.CacheLinePad
	ring   atomic.Pointer[dequeRing]
}

func newDeque(capacity int64) *deque {
	c := int64(minDequeCapacity)
	for c < capacity {
		c <<= 1
	}
	d := &deque{}
	d.ring.Store(newDequeRing(c))
	return d
}

// push appends a job at the bottom. Owner only. The bottom store
// publishes the slot write, so a concurrent stealer can never observe
// the index before the job.
func (d *deque) push(j *Job) {
	b := d.bottom.Load()
	t := d.top.Load()
	r := d.ring.Load()
	if b-t >= r.capacity() {
		r = d.grow(t, b, r)
		d.ring.Store(r)
	}
	r.put(b, j)
	d.bottom.Store(b + 1)
}

// pop takes the newest job from the bottom. Owner only. The last
// remaining element races against concurrent stealers and is resolved
// with one CAS on top; the loser walks away empty.
func (d *deque) pop() *Job {
	b := d.bottom.Load() - 1
	r := d.ring.Load()
	d.bottom.Store(b)
	t := d.top.Load()
	if t > b {
		// Already empty; undo the speculative decrement.
		d.bottom.Store(b + 1)
		return nil
	}
	j := r.at(b)
	if t == b {
		if !d.top.CompareAndSwap(t, t+1) {
			// A stealer claimed the last element first.
			j = nil
		}
		d.bottom.Store(b + 1)
	}
	return j
}

// steal takes the oldest job from the top. Safe from any thread.
// Returns nil when empty or when another thread wins the race; the
// caller decides whether to probe a different victim.
func (d *deque) steal() *Job {
	t := d.top.Load()
	b := d.bottom.Load()
	if t >= b {
		return nil
	}
	r := d.ring.Load()
	j := r.at(t)
	if !d.top.CompareAndSwap(t, t+1) {
		return nil
	}
	return j
}

// grow doubles the ring, copying exactly the live range [top, bottom).
// Owner only; a stealer mid-read keeps the old ring reachable through
// its own loaded pointer, so its indices stay coherent.
func (d *deque) grow(t, b int64, old *dequeRing) *dequeRing {
	next := newDequeRing(old.capacity() << 1)
	for i := t; i < b; i++ {
		next.put(i, old.at(i))
	}
	return next
}

// size is a racy snapshot for diagnostics.
func (d *deque) size() int64 {
	s := d.bottom.Load() - d.top.Load()
	if s < 0 {
		return 0
	}
	return s
}
