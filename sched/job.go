// File: sched/job.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Job record. Sized to stay within one cache line; pooled and recycled,
// never individually heap-allocated after scheduler construction.

package sched

import (
	"sync/atomic"

	"github.com/momentics/hioload-jobs/api"
)

// JobFunc is the unit of schedulable work. The argument is whatever was
// captured at submission time; it is retained inline in the job record
// and dropped when the record is recycled.
type JobFunc func(arg any)

type jobFlags uint8

const (
	flagMainThreadOnly jobFlags = 1 << iota
	flagContinuation
)

// Job is a pooled work record. Mutated only by the scheduler during
// submission and by the worker currently executing it.
type Job struct {
	fn           JobFunc
	arg          any
	parent       *Counter
	continuation *Job
	priority     api.Priority
	flags        jobFlags
	slot         uint32        // index of this record in the job pool
	gen          atomic.Uint32 // bumped by the pool on recycle
}

// reset clears captured state before the record re-enters the free
// chain. Keeping arg referenced past execution would pin the payload
// for the GC.
func (j *Job) reset() {
	j.fn = nil
	j.arg = nil
	j.parent = nil
	j.continuation = nil
	j.priority = 0
	j.flags = 0
}
