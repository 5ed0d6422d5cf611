// File: sched/worker.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Worker loop: pop the own deque, drain the shared inbox, then probe
// the other workers in a pseudo-randomly rotated order. Idle workers
// walk the spin/yield/sleep ladder until work appears or shutdown is
// observed. Background workers lock their goroutine to an OS thread so
// the thread id keeps identifying the worker for submissions made from
// inside running jobs.

package sched

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-jobs/internal/osthread"
)

type worker struct {
	id    int
	sched *Scheduler
	deque *deque

	// rngState drives steal-victim rotation; owner-thread only.
	rngState uint32

	executed atomic.Int64
	stolen   atomic.Int64
}

func newWorker(id int, s *Scheduler, dequeCapacity int64) *worker {
	return &worker{
		id:       id,
		sched:    s,
		deque:    newDeque(dequeCapacity),
		rngState: uint32(id+1) * 0x9e3779b9,
	}
}

// run is the background loop for workers 1..N-1. Worker 0 never runs
// it; the main thread participates through Update and Wait instead.
func (w *worker) run() {
	defer w.sched.wg.Done()

	runtime.LockOSThread()
	w.sched.tids[w.id].Store(osthread.CurrentID())
	if w.sched.pinWorkers {
		if err := osthread.Pin(w.id % runtime.NumCPU()); err != nil {
			w.sched.logger.Warn("worker pin failed", "worker", w.id, "err", err)
		}
	}
	w.sched.ready.Done()

	b := newBackoff(w.sched.spinLimit, w.sched.yieldLimit, w.sched.sleepInterval)
	for !w.sched.closed.Load() {
		if j := w.next(); j != nil {
			w.sched.execute(w, j)
			b.reset()
			continue
		}
		b.wait()
	}
}

// next finds one runnable job: own deque first, then the foreign
// inbox, then a steal sweep.
func (w *worker) next() *Job {
	if j := w.deque.pop(); j != nil {
		return j
	}
	if j, ok := w.sched.inbox.Dequeue(); ok {
		return j
	}
	return w.trySteal()
}

// trySteal probes every other worker once, starting from a freshly
// randomized offset so victims do not see synchronized stampedes.
func (w *worker) trySteal() *Job {
	peers := w.sched.workers
	n := len(peers)
	if n <= 1 {
		return nil
	}
	offset := int(w.nextRand() % uint32(n))
	for i := 0; i < n; i++ {
		victim := peers[(offset+i)%n]
		if victim == w {
			continue
		}
		if j := victim.deque.steal(); j != nil {
			w.stolen.Add(1)
			return j
		}
	}
	return nil
}

// nextRand is a per-worker xorshift32; never shared across threads.
func (w *worker) nextRand() uint32 {
	x := w.rngState
	if x == 0 {
		x = uint32(time.Now().UnixNano()) | 1
	}
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	w.rngState = x
	return x
}
