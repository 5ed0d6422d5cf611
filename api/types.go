// File: api/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Shared value types consumed by scheduler clients.

package api

// Priority tags a job for scheduling preference. The field is carried
// through the pipeline but is advisory only: current scheduling decisions
// do not consult it.
type Priority uint8

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

// FreeListStats reports usage of a fixed-capacity pool.
type FreeListStats struct {
	Capacity   int
	TotalAlloc int64
	TotalFree  int64
	InUse      int64
}

// StatsProvider is implemented by components that expose flat counters,
// the scheduler among them.
type StatsProvider interface {
	Stats() map[string]int64
}
