// File: sched/ring_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package sched

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestJobRingEnqueueDequeue(t *testing.T) {
	r := newJobRing(4)
	j := &Job{}
	if !r.Enqueue(j) {
		t.Fatal("Enqueue on empty ring failed")
	}
	got, ok := r.Dequeue()
	if !ok || got != j {
		t.Errorf("Dequeue returned %v, %v", got, ok)
	}
	if _, ok := r.Dequeue(); ok {
		t.Error("Dequeue on empty ring succeeded")
	}
}

func TestJobRingFull(t *testing.T) {
	r := newJobRing(4)
	for i := 0; i < 4; i++ {
		if !r.Enqueue(&Job{}) {
			t.Fatalf("Enqueue %d failed below capacity", i)
		}
	}
	if r.Enqueue(&Job{}) {
		t.Error("Enqueue on full ring succeeded")
	}
	if r.Len() != 4 {
		t.Errorf("Len: got %d want 4", r.Len())
	}
}

func TestJobRingFIFO(t *testing.T) {
	r := newJobRing(8)
	jobs := [3]*Job{{}, {}, {}}
	for _, j := range jobs {
		r.Enqueue(j)
	}
	for i, want := range jobs {
		got, ok := r.Dequeue()
		if !ok || got != want {
			t.Fatalf("Dequeue %d out of order", i)
		}
	}
}

func TestJobRingConcurrent(t *testing.T) {
	const producers = 4
	const perProducer = 5000

	r := newJobRing(128)
	var consumed atomic.Int64
	var wg sync.WaitGroup

	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				j := &Job{}
				for !r.Enqueue(j) {
					// ring full, consumer will catch up
				}
			}
		}()
	}

	var cwg sync.WaitGroup
	for c := 0; c < 2; c++ {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for consumed.Load() < producers*perProducer {
				if _, ok := r.Dequeue(); ok {
					consumed.Add(1)
				}
			}
		}()
	}

	wg.Wait()
	cwg.Wait()
	if consumed.Load() != producers*perProducer {
		t.Fatalf("consumed %d of %d", consumed.Load(), producers*perProducer)
	}
}
