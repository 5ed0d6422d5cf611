// File: sched/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Functional options for scheduler construction and per-submission
// decoration.

package sched

import (
	"io"
	"log/slog"
	"time"

	"github.com/momentics/hioload-jobs/api"
)

// Defaults established at construction. Pool capacities are fixed for
// the scheduler lifetime; exceeding them surfaces an explicit error
// rather than blocking or growing.
const (
	DefaultMaxWorkers      = 32
	DefaultJobPoolSize     = 4096
	DefaultCounterPoolSize = 4096
	DefaultMainQueueSize   = 1024
	DefaultSubmitQueueSize = 1024
	DefaultUpdateBudget    = 32
	DefaultSpinIterations  = 64
	DefaultYieldIterations = 64
	DefaultSleepInterval   = 100 * time.Microsecond
)

// Option customizes scheduler construction.
type Option func(*settings)

type settings struct {
	workers         int
	maxWorkers      int
	jobPoolSize     int
	counterPoolSize int
	mainQueueSize   int
	submitQueueSize int
	updateBudget    int
	spinIterations  int
	yieldIterations int
	sleepInterval   time.Duration
	pinWorkers      bool
	logger          *slog.Logger
	panicHandler    func(recovered any)
}

func defaultSettings() settings {
	return settings{
		workers:         0, // auto-detect
		maxWorkers:      DefaultMaxWorkers,
		jobPoolSize:     DefaultJobPoolSize,
		counterPoolSize: DefaultCounterPoolSize,
		mainQueueSize:   DefaultMainQueueSize,
		submitQueueSize: DefaultSubmitQueueSize,
		updateBudget:    DefaultUpdateBudget,
		spinIterations:  DefaultSpinIterations,
		yieldIterations: DefaultYieldIterations,
		sleepInterval:   DefaultSleepInterval,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithWorkers fixes the worker count (including the main thread).
// Zero means auto-detect from the CPU count.
func WithWorkers(n int) Option {
	return func(s *settings) { s.workers = n }
}

// WithMaxWorkers caps the auto-detected worker count.
func WithMaxWorkers(n int) Option {
	return func(s *settings) { s.maxWorkers = n }
}

// WithJobPoolSize fixes the job pool capacity.
func WithJobPoolSize(n int) Option {
	return func(s *settings) { s.jobPoolSize = n }
}

// WithCounterPoolSize fixes the counter pool capacity.
func WithCounterPoolSize(n int) Option {
	return func(s *settings) { s.counterPoolSize = n }
}

// WithMainQueueSize fixes the main-thread queue capacity.
func WithMainQueueSize(n int) Option {
	return func(s *settings) { s.mainQueueSize = n }
}

// WithSubmitQueueSize fixes the foreign-submission inbox capacity.
func WithSubmitQueueSize(n int) Option {
	return func(s *settings) { s.submitQueueSize = n }
}

// WithUpdateBudget bounds how many main-thread jobs one Update call
// drains.
func WithUpdateBudget(n int) Option {
	return func(s *settings) { s.updateBudget = n }
}

// WithBackoff tunes the idle ladder: spin iterations, then yield
// iterations, then sleeps of the given interval.
func WithBackoff(spin, yield int, sleep time.Duration) Option {
	return func(s *settings) {
		s.spinIterations = spin
		s.yieldIterations = yield
		s.sleepInterval = sleep
	}
}

// WithPinWorkers binds each background worker to a logical CPU for
// cache locality. Off by default: it trades Go scheduler flexibility
// for locality and only pays off on saturated CPU-bound workloads.
func WithPinWorkers(pin bool) Option {
	return func(s *settings) { s.pinWorkers = pin }
}

// WithLogger routes lifecycle and diagnostic events. Default discards.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithPanicHandler installs a per-job panic hook. The default logs the
// recovered value; either way the worker survives, the parent counter
// is decremented and the job record is recycled, so waiters never hang
// on a faulted job.
func WithPanicHandler(h func(recovered any)) Option {
	return func(s *settings) { s.panicHandler = h }
}

// SubmitOption decorates one submission.
type SubmitOption func(*submitRequest)

type submitRequest struct {
	priority api.Priority
	contFn   JobFunc
	contArg  any
	hasCont  bool
}

// WithPriority tags the job. Advisory only: scheduling order does not
// consult it.
func WithPriority(p api.Priority) SubmitOption {
	return func(r *submitRequest) { r.priority = p }
}

// WithContinuation schedules fn(arg) after the submitted job finishes.
// Placement on the finishing worker is a locality hint, not an
// affinity guarantee; the continuation can still be stolen before it
// runs. Only the ordering is contractual: it never starts before the
// parent's function has returned.
func WithContinuation(fn JobFunc, arg any) SubmitOption {
	return func(r *submitRequest) {
		r.contFn = fn
		r.contArg = arg
		r.hasCont = true
	}
}
