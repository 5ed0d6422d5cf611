// File: pool/freelist.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Lock-free free-list over a fixed slab. Get/Put are CAS loops over a
// packed {tag, index} head; neither takes a lock and neither blocks.
// The tag increments on every successful transition, so a pop/push
// cycle returning the same index can never satisfy a stale CAS (the
// ABA hazard on raw-pointer free-lists).

package pool

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/momentics/hioload-jobs/api"
)

// NilIndex is the terminator of the free chain. No valid slot ever has
// this index.
const NilIndex = ^uint32(0)

// pack combines a head tag and a slot index into one CAS word.
func pack(tag, index uint32) uint64 {
	return uint64(tag)<<32 | uint64(index)
}

// FreeList hands out slots of a fixed slab of T. The slab is allocated
// once and never shrinks, so slot addresses stay stable for the process
// lifetime. The zero value is not usable; construct with NewFreeList.
type FreeList[T any] struct {
	_    cpu.CacheLinePad
	head atomic.Uint64 // {tag:32, index:32}
	_    cpu.CacheLinePad

	slab    []T
	next    []atomic.Uint32 // free chain, indexed by slot
	recycle func(*T)        // runs before a slot becomes reachable again

	totalAlloc atomic.Int64
	totalFree  atomic.Int64
}

// NewFreeList allocates a slab of capacity slots, all initially free.
// recycle, if non-nil, runs on every Put before the slot re-enters the
// free chain; records use it to bump their generation counter so that
// previously issued weak references become provably stale.
func NewFreeList[T any](capacity int, recycle func(*T)) *FreeList[T] {
	if capacity <= 0 {
		capacity = 1
	}
	f := &FreeList[T]{
		slab:    make([]T, capacity),
		next:    make([]atomic.Uint32, capacity),
		recycle: recycle,
	}
	for i := 0; i < capacity-1; i++ {
		f.next[i].Store(uint32(i + 1))
	}
	f.next[capacity-1].Store(NilIndex)
	f.head.Store(pack(0, 0))
	return f
}

// Get pops one free slot. ok is false when the list is empty; the
// caller decides how to surface exhaustion. Never retried internally.
func (f *FreeList[T]) Get() (node *T, index uint32, ok bool) {
	for {
		h := f.head.Load()
		idx := uint32(h)
		if idx == NilIndex {
			return nil, 0, false
		}
		nxt := f.next[idx].Load()
		if f.head.CompareAndSwap(h, pack(uint32(h>>32)+1, nxt)) {
			f.totalAlloc.Add(1)
			return &f.slab[idx], idx, true
		}
	}
}

// Put returns a slot to the free chain.
func (f *FreeList[T]) Put(index uint32) {
	if f.recycle != nil {
		f.recycle(&f.slab[index])
	}
	for {
		h := f.head.Load()
		f.next[index].Store(uint32(h))
		if f.head.CompareAndSwap(h, pack(uint32(h>>32)+1, index)) {
			f.totalFree.Add(1)
			return
		}
	}
}

// At returns the slot at index. The pointer stays valid for the process
// lifetime regardless of allocation state.
func (f *FreeList[T]) At(index uint32) *T {
	return &f.slab[index]
}

// Capacity reports the fixed slot count.
func (f *FreeList[T]) Capacity() int {
	return len(f.slab)
}

// Stats returns allocation counters.
func (f *FreeList[T]) Stats() api.FreeListStats {
	alloc := f.totalAlloc.Load()
	free := f.totalFree.Load()
	return api.FreeListStats{
		Capacity:   len(f.slab),
		TotalAlloc: alloc,
		TotalFree:  free,
		InUse:      alloc - free,
	}
}
