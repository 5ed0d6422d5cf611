// File: sched/deque_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package sched

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestDequePopIsLIFO(t *testing.T) {
	d := newDeque(4)
	a, b := &Job{}, &Job{}
	d.push(a)
	d.push(b)

	if got := d.pop(); got != b {
		t.Errorf("first pop: want the newest job")
	}
	if got := d.pop(); got != a {
		t.Errorf("second pop: want the older job")
	}
	if got := d.pop(); got != nil {
		t.Errorf("pop on empty deque returned %v", got)
	}
}

func TestDequeStealIsFIFO(t *testing.T) {
	d := newDeque(4)
	a, b := &Job{}, &Job{}
	d.push(a)
	d.push(b)

	if got := d.steal(); got != a {
		t.Errorf("first steal: want the oldest job")
	}
	if got := d.steal(); got != b {
		t.Errorf("second steal: want the next job")
	}
	if got := d.steal(); got != nil {
		t.Errorf("steal on empty deque returned %v", got)
	}
}

func TestDequeGrowthPreservesLiveRange(t *testing.T) {
	d := newDeque(minDequeCapacity)
	jobs := make([]*Job, minDequeCapacity*4)
	for i := range jobs {
		jobs[i] = &Job{}
		d.push(jobs[i])
	}
	if d.size() != int64(len(jobs)) {
		t.Fatalf("size after growth: got %d want %d", d.size(), len(jobs))
	}
	// Steals drain in push order.
	for i := range jobs {
		if got := d.steal(); got != jobs[i] {
			t.Fatalf("steal %d returned the wrong job", i)
		}
	}
}

func TestDequeInterleavedGrowthAndPop(t *testing.T) {
	d := newDeque(minDequeCapacity)
	for round := 0; round < 8; round++ {
		n := minDequeCapacity + round*37
		for i := 0; i < n; i++ {
			d.push(&Job{})
		}
		for i := 0; i < n; i++ {
			if d.pop() == nil {
				t.Fatalf("round %d: pop %d lost a job", round, i)
			}
		}
	}
}

// TestDequeOwnerStealerRace runs an owner pushing/popping against
// concurrent stealers and checks every job is claimed exactly once.
func TestDequeOwnerStealerRace(t *testing.T) {
	const total = 20000
	const stealers = 4

	d := newDeque(minDequeCapacity)
	jobs := make([]Job, total)
	claims := make([]atomic.Int32, total)

	var claimed atomic.Int64
	var done atomic.Bool

	var wg sync.WaitGroup
	for s := 0; s < stealers; s++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !done.Load() || d.size() > 0 {
				if j := d.steal(); j != nil {
					claims[j.slot].Add(1)
					claimed.Add(1)
				}
			}
		}()
	}

	// Owner: push everything, popping intermittently.
	for i := range jobs {
		jobs[i].slot = uint32(i)
		d.push(&jobs[i])
		if i%3 == 0 {
			if j := d.pop(); j != nil {
				claims[j.slot].Add(1)
				claimed.Add(1)
			}
		}
	}
	for {
		j := d.pop()
		if j == nil {
			break
		}
		claims[j.slot].Add(1)
		claimed.Add(1)
	}
	done.Store(true)
	wg.Wait()

	// Stragglers the owner's final pop lost to a stealer are already
	// counted; nothing may be claimed twice or not at all.
	for {
		j := d.steal()
		if j == nil {
			break
		}
		claims[j.slot].Add(1)
		claimed.Add(1)
	}
	if claimed.Load() != total {
		t.Fatalf("claimed %d of %d jobs", claimed.Load(), total)
	}
	for i := range claims {
		if c := claims[i].Load(); c != 1 {
			t.Fatalf("job %d claimed %d times", i, c)
		}
	}
}
