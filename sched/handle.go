// File: sched/handle.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Handle is a copyable weak reference to a completion counter. The
// generation captured at submission time guards against the counter
// slot having been recycled for an unrelated dependency group.

package sched

// Handle refers weakly to a Counter. The zero Handle is invalid and
// therefore reports done.
type Handle struct {
	counter *Counter
	gen     uint32
}

// Valid reports whether the referenced counter still belongs to the
// dependency group this handle was issued for. A recycled slot shows a
// newer generation and invalidates the handle.
func (h Handle) Valid() bool {
	return h.counter != nil && h.counter.gen.Load() == h.gen
}

// Done reports completion. An invalid handle is done: its group
// finished before the slot was recycled.
func (h Handle) Done() bool {
	if !h.Valid() {
		return true
	}
	return h.counter.count.Load() <= 0
}
