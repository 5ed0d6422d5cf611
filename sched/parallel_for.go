// File: sched/parallel_for.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ParallelFor: contiguous-batch fan-out over an index range with one
// shared completion counter.

package sched

import "github.com/momentics/hioload-jobs/api"

// ForOption tunes a ParallelFor call.
type ForOption func(*forRequest)

type forRequest struct {
	batchSize int
}

// WithBatchSize overrides the computed batch size. Values below 1 keep
// the default.
func WithBatchSize(n int) ForOption {
	return func(r *forRequest) { r.batchSize = n }
}

type batchRange struct {
	start, end int
	fn         func(index int)
}

func runBatch(arg any) {
	r := arg.(batchRange)
	for i := r.start; i < r.end; i++ {
		r.fn(i)
	}
}

// ParallelFor partitions [0, count) into contiguous batches and
// submits one job per batch, all sharing a single counter initialized
// to the batch total. The default batch size is count/(workers*4),
// floor 1. Batches run in no particular order relative to each other;
// fn must tolerate concurrent calls on disjoint indices. The returned
// handle completes when every batch has run.
func (s *Scheduler) ParallelFor(count int, fn func(index int), opts ...ForOption) (Handle, error) {
	if s.closed.Load() {
		return Handle{}, api.WrapError(api.ErrCodeClosed, api.ErrSchedulerClosed)
	}
	if count <= 0 {
		// Nothing to do: the zero handle reports done.
		return Handle{}, nil
	}
	var req forRequest
	for _, opt := range opts {
		opt(&req)
	}
	batch := req.batchSize
	if batch < 1 {
		batch = count / (len(s.workers) * 4)
		if batch < 1 {
			batch = 1
		}
	}
	batches := (count + batch - 1) / batch

	c, err := s.allocCounter(int32(batches))
	if err != nil {
		return Handle{}, err
	}
	h := Handle{counter: c, gen: c.gen.Load()}

	submitted := 0
	for start := 0; start < count; start += batch {
		end := start + batch
		if end > count {
			end = count
		}
		j, err := s.newJob(runBatch, batchRange{start: start, end: end, fn: fn}, c, nil)
		if err == nil {
			err = s.dispatch(j)
			if err != nil {
				s.recycleUnrun(j)
			}
		}
		if err != nil {
			// Settle the counter for the batches that will never run;
			// already-submitted ones proceed normally.
			if c.add(int32(submitted-batches)) == 0 {
				s.counters.Put(c.slot)
			}
			return Handle{}, err
		}
		submitted++
	}
	return h, nil
}
