// File: sched/mainthread_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package sched

import (
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-jobs/internal/osthread"
)

func TestSubmitMainThreadRunsOnMainThread(t *testing.T) {
	if !osthread.Supported() {
		t.Skip("no thread identity on this platform")
	}
	s := newTestScheduler(t, WithWorkers(4))
	mainTID := osthread.CurrentID()

	const jobs = 16
	var wrongThread atomic.Int64
	handles := make([]Handle, 0, jobs)
	for i := 0; i < jobs; i++ {
		h, err := s.SubmitMainThread(func(any) {
			if osthread.CurrentID() != mainTID {
				wrongThread.Add(1)
			}
		}, nil)
		require.NoError(t, err)
		handles = append(handles, h)
	}

	// Wait on the main thread pumps pinned jobs itself.
	s.WaitAll(handles)
	assert.Zero(t, wrongThread.Load(), "pinned jobs must only run on worker 0's thread")
}

func TestUpdateBudgetBound(t *testing.T) {
	const budget = 4
	const queued = budget + 3
	s := newTestScheduler(t, WithWorkers(1), WithUpdateBudget(budget))

	var hits atomic.Int64
	for i := 0; i < queued; i++ {
		_, err := s.SubmitMainThread(func(any) { hits.Add(1) }, nil)
		require.NoError(t, err)
	}

	assert.Equal(t, budget, s.Update(), "first pump drains exactly the budget")
	assert.EqualValues(t, budget, hits.Load())
	assert.Equal(t, queued-budget, s.Update(), "second pump drains the rest")
	assert.EqualValues(t, queued, hits.Load())
	assert.Zero(t, s.Update(), "nothing left to pump")
}

func TestUpdateOffMainThreadRefused(t *testing.T) {
	if !osthread.Supported() {
		t.Skip("no thread identity on this platform")
	}
	s := newTestScheduler(t, WithWorkers(1))

	_, err := s.SubmitMainThread(func(any) {}, nil)
	require.NoError(t, err)

	ran := make(chan int)
	go func() {
		runtime.LockOSThread()
		ran <- s.Update()
	}()
	assert.Zero(t, <-ran, "Update off the main thread must drain nothing")

	assert.Equal(t, 1, s.Update())
}

func TestMainQueueFull(t *testing.T) {
	s := newTestScheduler(t, WithWorkers(1), WithMainQueueSize(2))

	for i := 0; i < 2; i++ {
		_, err := s.SubmitMainThread(func(any) {}, nil)
		require.NoError(t, err)
	}
	_, err := s.SubmitMainThread(func(any) {}, nil)
	require.Error(t, err)

	// Draining makes room again.
	for s.Update() > 0 {
	}
	_, err = s.SubmitMainThread(func(any) {}, nil)
	assert.NoError(t, err)
}

func TestMainThreadJobsNotStolen(t *testing.T) {
	if !osthread.Supported() {
		t.Skip("no thread identity on this platform")
	}
	// Plenty of hungry workers, but pinned jobs sit until pumped.
	s := newTestScheduler(t, WithWorkers(8))
	mainTID := osthread.CurrentID()

	var wrongThread, hits atomic.Int64
	const jobs = 32
	for i := 0; i < jobs; i++ {
		_, err := s.SubmitMainThread(func(any) {
			if osthread.CurrentID() != mainTID {
				wrongThread.Add(1)
			}
			hits.Add(1)
		}, nil)
		require.NoError(t, err)
	}

	for hits.Load() < jobs {
		s.Update()
	}
	assert.Zero(t, wrongThread.Load())
}
