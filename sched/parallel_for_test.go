// File: sched/parallel_for_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package sched

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelForSquares(t *testing.T) {
	const n = 64
	s := newTestScheduler(t, WithWorkers(4))

	// Every batch size from 1 to n must produce the same result.
	for batch := 1; batch <= n; batch++ {
		t.Run(fmt.Sprintf("batch_%d", batch), func(t *testing.T) {
			values := make([]int64, n)
			for i := range values {
				values[i] = int64(i)
			}
			h, err := s.ParallelFor(n, func(i int) {
				values[i] *= values[i]
			}, WithBatchSize(batch))
			require.NoError(t, err)
			s.Wait(h)

			for i := range values {
				assert.EqualValues(t, int64(i)*int64(i), values[i])
			}
		})
	}
}

func TestParallelForDefaultBatching(t *testing.T) {
	const n = 1000
	s := newTestScheduler(t, WithWorkers(4))

	var hits atomic.Int64
	h, err := s.ParallelFor(n, func(int) { hits.Add(1) })
	require.NoError(t, err)
	s.Wait(h)
	assert.EqualValues(t, n, hits.Load(), "every index visited exactly once")
}

func TestParallelForSingleItem(t *testing.T) {
	s := newTestScheduler(t, WithWorkers(2))

	var got atomic.Int64
	h, err := s.ParallelFor(1, func(i int) { got.Store(int64(i) + 100) })
	require.NoError(t, err)
	s.Wait(h)
	assert.EqualValues(t, 100, got.Load())
}

func TestParallelForEmpty(t *testing.T) {
	s := newTestScheduler(t, WithWorkers(2))

	h, err := s.ParallelFor(0, func(int) { t.Error("must not run") })
	require.NoError(t, err)
	assert.True(t, h.Done(), "empty range completes immediately")
	s.Wait(h)
}

func TestParallelForOversizedBatch(t *testing.T) {
	const n = 10
	s := newTestScheduler(t, WithWorkers(2))

	var hits atomic.Int64
	h, err := s.ParallelFor(n, func(int) { hits.Add(1) }, WithBatchSize(n*10))
	require.NoError(t, err)
	s.Wait(h)
	assert.EqualValues(t, n, hits.Load())
}
