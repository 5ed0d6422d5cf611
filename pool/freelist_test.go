// File: pool/freelist_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/momentics/hioload-jobs/pool"
)

type record struct {
	gen   atomic.Uint32
	value int
}

func TestFreeListExhaustion(t *testing.T) {
	f := pool.NewFreeList[record](4, nil)
	for i := 0; i < 4; i++ {
		if _, _, ok := f.Get(); !ok {
			t.Fatalf("allocation %d failed before capacity", i)
		}
	}
	if _, _, ok := f.Get(); ok {
		t.Error("expected exhaustion after capacity allocations")
	}
}

func TestFreeListRecycle(t *testing.T) {
	f := pool.NewFreeList[record](2, nil)
	r1, idx1, ok := f.Get()
	if !ok {
		t.Fatal("first Get failed")
	}
	r1.value = 7
	f.Put(idx1)
	r2, idx2, ok := f.Get()
	if !ok {
		t.Fatal("Get after Put failed")
	}
	if idx2 != idx1 {
		t.Errorf("expected LIFO reuse of slot %d, got %d", idx1, idx2)
	}
	if r2 != f.At(idx2) {
		t.Error("At must return the slab slot")
	}
}

func TestFreeListRecycleHookBumpsGeneration(t *testing.T) {
	f := pool.NewFreeList[record](2, func(r *record) { r.gen.Add(1) })
	r, idx, _ := f.Get()
	before := r.gen.Load()
	f.Put(idx)
	if got := f.At(idx).gen.Load(); got != before+1 {
		t.Errorf("generation not bumped on Put: before %d after %d", before, got)
	}
}

func TestFreeListStats(t *testing.T) {
	f := pool.NewFreeList[record](8, nil)
	_, i1, _ := f.Get()
	f.Get()
	f.Put(i1)
	st := f.Stats()
	if st.Capacity != 8 || st.TotalAlloc != 2 || st.TotalFree != 1 || st.InUse != 1 {
		t.Errorf("unexpected stats: %+v", st)
	}
}

// TestFreeListConcurrent hammers Get/Put from many goroutines; every
// successful Get must observe a slot no other holder currently owns.
func TestFreeListConcurrent(t *testing.T) {
	const slots = 64
	const iters = 10000

	f := pool.NewFreeList[record](slots, nil)
	var owners [slots]atomic.Int32

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iters; i++ {
				_, idx, ok := f.Get()
				if !ok {
					continue
				}
				if owners[idx].Add(1) != 1 {
					t.Error("slot handed to two holders at once")
				}
				owners[idx].Add(-1)
				f.Put(idx)
			}
		}()
	}
	wg.Wait()

	st := f.Stats()
	if st.InUse != 0 {
		t.Errorf("expected all slots returned, in use: %d", st.InUse)
	}
}
