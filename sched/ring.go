// File: sched/ring.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bounded MPMC ring of job pointers with per-cell sequence numbers.
// Backs the two queues that cannot be Chase-Lev deques because their
// producers are not the owning thread: the main-thread queue (any
// thread enqueues, only the main thread drains, so pinned jobs are
// structurally unstealable) and the foreign-submission inbox (threads
// that are not scheduler workers enqueue, any worker drains).

package sched

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

type ringCell struct {
	sequence atomic.Uint64
	job      *Job
}

// jobRing is a bounded lock-free MPMC queue.
type jobRing struct {
	_     cpu.CacheLinePad
	head  atomic.Uint64
	_     cpu.CacheLinePad
	tail  atomic.Uint64
	_     cpu.CacheLinePad
	mask  uint64
	cells []ringCell
}

// newJobRing allocates a ring with size rounded up to a power of two.
func newJobRing(size int) *jobRing {
	n := uint64(2)
	for n < uint64(size) {
		n <<= 1
	}
	r := &jobRing{
		mask:  n - 1,
		cells: make([]ringCell, n),
	}
	for i := range r.cells {
		r.cells[i].sequence.Store(uint64(i))
	}
	return r
}

// Enqueue adds a job; returns false if the ring is full.
func (r *jobRing) Enqueue(j *Job) bool {
	for {
		tail := r.tail.Load()
		c := &r.cells[tail&r.mask]
		seq := c.sequence.Load()
		dif := int64(seq) - int64(tail)
		switch {
		case dif == 0:
			if r.tail.CompareAndSwap(tail, tail+1) {
				c.job = j
				c.sequence.Store(tail + 1)
				return true
			}
		case dif < 0:
			return false // full
		default:
			// tail moved, retry
		}
	}
}

// Dequeue removes the oldest job; ok is false when empty.
func (r *jobRing) Dequeue() (*Job, bool) {
	for {
		head := r.head.Load()
		c := &r.cells[head&r.mask]
		seq := c.sequence.Load()
		dif := int64(seq) - int64(head+1)
		switch {
		case dif == 0:
			if r.head.CompareAndSwap(head, head+1) {
				j := c.job
				c.job = nil
				c.sequence.Store(head + r.mask + 1)
				return j, true
			}
		case dif < 0:
			return nil, false // empty
		default:
			// head moved, retry
		}
	}
}

// Len is a racy snapshot for diagnostics.
func (r *jobRing) Len() int {
	t := r.tail.Load()
	h := r.head.Load()
	if t < h {
		return 0
	}
	return int(t - h)
}
