// File: sched/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package sched implements a fixed-thread work-stealing job scheduler.
// Each worker owns a Chase-Lev deque: the owner pushes and pops at the
// bottom, idle workers steal from the top. Jobs and completion counters
// are recycled through fixed-capacity lock-free pools; Handle values
// are generation-guarded weak references to counters, safe to hold past
// recycling.
//
// Worker 0 is the thread that called New. It never runs a background
// loop; the embedder pumps it once per frame with Update, and the
// blocking Wait/WaitAll calls execute pending work cooperatively
// instead of parking the thread. Main-thread-only jobs (GPU-affine
// work) are drained exclusively by that thread.
//
// The scheduler is an explicit value: construct it once at the
// composition root and pass it to every subsystem that submits work.
package sched
