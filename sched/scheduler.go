// File: sched/scheduler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Scheduler: submission surface, cooperative waiting, the bounded
// main-thread pump and lifecycle. Owns the workers and both record
// pools. Construct with New on the thread that will pump Update; that
// thread is worker 0 and is never spawned.

package sched

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-jobs/api"
	"github.com/momentics/hioload-jobs/internal/osthread"
	"github.com/momentics/hioload-jobs/pool"
)

// Scheduler coordinates a fixed set of workers over lock-free queues.
// All methods are safe for concurrent use.
type Scheduler struct {
	workers  []*worker
	jobs     *pool.FreeList[Job]
	counters *pool.FreeList[Counter]

	// mainQueue holds main-thread-only jobs; drained exclusively by
	// worker 0 through Update and Wait. inbox receives submissions
	// from threads that are not scheduler workers and is drained by
	// every worker.
	mainQueue *jobRing
	inbox     *jobRing

	// tids maps worker slot to OS thread id; scanned on submission to
	// route work onto the calling worker's own deque.
	tids    []atomic.Uint64
	mainTID uint64

	closed atomic.Bool
	wg     sync.WaitGroup
	ready  sync.WaitGroup

	updateBudget  int
	spinLimit     int
	yieldLimit    int
	sleepInterval time.Duration
	pinWorkers    bool
	logger        *slog.Logger
	panicHandler  func(recovered any)
}

// New builds a scheduler and spawns its background workers. Call it
// from the thread that will own worker 0 (the frame loop's thread);
// lock that goroutine with runtime.LockOSThread before constructing so
// the recorded thread identity stays stable.
func New(opts ...Option) (*Scheduler, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	workers := cfg.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if cfg.maxWorkers > 0 && workers > cfg.maxWorkers {
		workers = cfg.maxWorkers
	}
	if workers < 1 {
		workers = 1
	}
	if cfg.jobPoolSize <= 0 || cfg.counterPoolSize <= 0 {
		return nil, api.WrapError(api.ErrCodeInvalidArgument, api.ErrInvalidArgument).
			WithContext("job_pool", cfg.jobPoolSize).
			WithContext("counter_pool", cfg.counterPoolSize)
	}

	s := &Scheduler{
		mainQueue:     newJobRing(cfg.mainQueueSize),
		inbox:         newJobRing(cfg.submitQueueSize),
		tids:          make([]atomic.Uint64, workers),
		mainTID:       osthread.CurrentID(),
		updateBudget:  cfg.updateBudget,
		spinLimit:     cfg.spinIterations,
		yieldLimit:    cfg.yieldIterations,
		sleepInterval: cfg.sleepInterval,
		pinWorkers:    cfg.pinWorkers,
		logger:        cfg.logger,
		panicHandler:  cfg.panicHandler,
	}
	s.jobs = pool.NewFreeList[Job](cfg.jobPoolSize, func(j *Job) {
		j.gen.Add(1)
	})
	s.counters = pool.NewFreeList[Counter](cfg.counterPoolSize, func(c *Counter) {
		c.gen.Add(1)
	})
	for i := 0; i < cfg.jobPoolSize; i++ {
		s.jobs.At(uint32(i)).slot = uint32(i)
	}
	for i := 0; i < cfg.counterPoolSize; i++ {
		s.counters.At(uint32(i)).slot = uint32(i)
	}

	dequeCap := int64(cfg.jobPoolSize / workers)
	s.workers = make([]*worker, workers)
	for i := 0; i < workers; i++ {
		s.workers[i] = newWorker(i, s, dequeCap)
	}
	s.tids[0].Store(s.mainTID)

	s.wg.Add(workers - 1)
	s.ready.Add(workers - 1)
	for i := 1; i < workers; i++ {
		go s.workers[i].run()
	}
	s.ready.Wait()

	s.logger.Info("scheduler started",
		"workers", workers,
		"job_pool", cfg.jobPoolSize,
		"counter_pool", cfg.counterPoolSize)
	return s, nil
}

// Close signals shutdown, joins every background worker and logs the
// final execution totals. Idempotent. Queued jobs that no worker
// reached before observing the flag do not run.
func (s *Scheduler) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.wg.Wait()

	var executed, stolen int64
	for _, w := range s.workers {
		executed += w.executed.Load()
		stolen += w.stolen.Load()
	}
	s.logger.Info("scheduler stopped", "executed", executed, "stolen", stolen)
}

// NumWorkers returns the number of scheduling participants, including
// the main thread.
func (s *Scheduler) NumWorkers() int {
	return len(s.workers)
}

// Submit schedules fn(arg) on the calling worker's queue and returns a
// handle tied to a fresh completion counter. Submissions from threads
// that are no worker land in the shared inbox instead.
func (s *Scheduler) Submit(fn JobFunc, arg any, opts ...SubmitOption) (Handle, error) {
	if s.closed.Load() {
		return Handle{}, api.WrapError(api.ErrCodeClosed, api.ErrSchedulerClosed)
	}
	c, err := s.allocCounter(1)
	if err != nil {
		return Handle{}, err
	}
	h := Handle{counter: c, gen: c.gen.Load()}
	j, err := s.newJob(fn, arg, c, opts)
	if err != nil {
		s.counters.Put(c.slot)
		return Handle{}, err
	}
	if err := s.dispatch(j); err != nil {
		s.recycleUnrun(j)
		s.counters.Put(c.slot)
		return Handle{}, err
	}
	return h, nil
}

// SubmitWithCounter schedules fn(arg) against a caller-supplied
// counter, incrementing it first. This is the fan-out path: many jobs
// can share one counter allocated with AllocCounter. The caller must
// keep the counter above zero while submissions are still pending;
// whichever job drives it to zero releases it.
func (s *Scheduler) SubmitWithCounter(c *Counter, fn JobFunc, arg any, opts ...SubmitOption) error {
	if s.closed.Load() {
		return api.WrapError(api.ErrCodeClosed, api.ErrSchedulerClosed)
	}
	c.add(1)
	j, err := s.newJob(fn, arg, c, opts)
	if err != nil {
		c.add(-1)
		return err
	}
	if err := s.dispatch(j); err != nil {
		j.parent = nil
		s.recycleUnrun(j)
		c.add(-1)
		return err
	}
	return nil
}

// SubmitMainThread schedules fn(arg) to run only on worker 0's thread,
// through Update or a main-thread Wait. Typical use is GPU-API work
// that must stay on the render thread.
func (s *Scheduler) SubmitMainThread(fn JobFunc, arg any, opts ...SubmitOption) (Handle, error) {
	if s.closed.Load() {
		return Handle{}, api.WrapError(api.ErrCodeClosed, api.ErrSchedulerClosed)
	}
	c, err := s.allocCounter(1)
	if err != nil {
		return Handle{}, err
	}
	h := Handle{counter: c, gen: c.gen.Load()}
	j, err := s.newJob(fn, arg, c, opts)
	if err != nil {
		s.counters.Put(c.slot)
		return Handle{}, err
	}
	j.flags |= flagMainThreadOnly
	if !s.mainQueue.Enqueue(j) {
		s.recycleUnrun(j)
		s.counters.Put(c.slot)
		return Handle{}, api.WrapError(api.ErrCodeResourceExhausted, api.ErrMainQueueFull).
			WithContext("capacity", s.mainQueue.Len())
	}
	return h, nil
}

// AllocCounter hands out a counter with count zero for fan-out use
// with SubmitWithCounter. It returns to the pool when a completing job
// drives it to zero; a counter that never sees a submission is never
// reclaimed.
func (s *Scheduler) AllocCounter() (*Counter, error) {
	return s.allocCounter(0)
}

// HandleFor captures a weak reference to a caller-owned counter at its
// current generation.
func (s *Scheduler) HandleFor(c *Counter) Handle {
	return Handle{counter: c, gen: c.gen.Load()}
}

// IsComplete is the non-blocking completion poll.
func (s *Scheduler) IsComplete(h Handle) bool {
	return h.Done()
}

// Wait blocks until the handle reports done, executing available jobs
// on the calling thread instead of parking it. On the main thread this
// includes draining main-thread-only jobs, so waiting in the frame
// loop cannot deadlock against pinned work.
func (s *Scheduler) Wait(h Handle) {
	s.waitUntil(func() bool { return h.Done() })
}

// WaitAll blocks until every handle reports done.
func (s *Scheduler) WaitAll(hs []Handle) {
	s.waitUntil(func() bool {
		for _, h := range hs {
			if !h.Done() {
				return false
			}
		}
		return true
	})
}

func (s *Scheduler) waitUntil(done func() bool) {
	w := s.currentWorker()
	onMain := s.onMainThread()
	b := newBackoff(s.spinLimit, s.yieldLimit, s.sleepInterval)
	var waitRand uint32 = 0x9e3779b9
	for !done() {
		if s.runOne(w, onMain, &waitRand) {
			b.reset()
			continue
		}
		b.wait()
	}
}

// runOne executes at most one job on the calling thread. Returns false
// when nothing runnable was found.
func (s *Scheduler) runOne(w *worker, onMain bool, waitRand *uint32) bool {
	if onMain {
		if j, ok := s.mainQueue.Dequeue(); ok {
			s.execute(w, j)
			return true
		}
	}
	if w != nil {
		if j := w.next(); j != nil {
			s.execute(w, j)
			return true
		}
		return false
	}
	// Not a worker thread: help from the inbox and by stealing.
	if j, ok := s.inbox.Dequeue(); ok {
		s.execute(nil, j)
		return true
	}
	n := uint32(len(s.workers))
	*waitRand ^= *waitRand << 13
	*waitRand ^= *waitRand >> 17
	*waitRand ^= *waitRand << 5
	offset := *waitRand % n
	for i := uint32(0); i < n; i++ {
		if j := s.workers[(offset+i)%n].deque.steal(); j != nil {
			s.execute(nil, j)
			return true
		}
	}
	return false
}

// Update drains up to the configured budget of main-thread-only jobs.
// Call once per application frame on the thread that constructed the
// scheduler. Returns how many jobs ran. Calls from any other thread
// are refused.
func (s *Scheduler) Update() int {
	if !s.onMainThread() {
		s.logger.Debug("update called off the main thread; skipping")
		return 0
	}
	w := s.workers[0]
	n := 0
	for n < s.updateBudget {
		j, ok := s.mainQueue.Dequeue()
		if !ok {
			break
		}
		s.execute(w, j)
		n++
	}
	return n
}

// Executor exposes the scheduler as an api.Executor for subsystems
// that only submit plain closures.
func (s *Scheduler) Executor() api.Executor {
	return executorView{s: s}
}

type executorView struct {
	s *Scheduler
}

func (v executorView) Submit(task func()) error {
	_, err := v.s.Submit(func(any) { task() }, nil)
	return err
}

func (v executorView) NumWorkers() int {
	return v.s.NumWorkers()
}

// Stats reports per-scheduler diagnostics: execution and steal totals
// plus pool usage.
func (s *Scheduler) Stats() map[string]int64 {
	var executed, stolen, queued int64
	for _, w := range s.workers {
		executed += w.executed.Load()
		stolen += w.stolen.Load()
		queued += w.deque.size()
	}
	jobStats := s.jobs.Stats()
	counterStats := s.counters.Stats()
	return map[string]int64{
		"executed":        executed,
		"stolen":          stolen,
		"queued":          queued,
		"main_queued":     int64(s.mainQueue.Len()),
		"inbox_queued":    int64(s.inbox.Len()),
		"jobs_in_use":     jobStats.InUse,
		"counters_in_use": counterStats.InUse,
	}
}

// --- internals ---

func (s *Scheduler) allocCounter(initial int32) (*Counter, error) {
	c, _, ok := s.counters.Get()
	if !ok {
		return nil, api.WrapError(api.ErrCodeResourceExhausted, api.ErrCounterPoolExhausted).
			WithContext("capacity", s.counters.Capacity())
	}
	c.count.Store(initial)
	return c, nil
}

// newJob populates a pooled record, including the continuation record
// when the submission asks for one.
func (s *Scheduler) newJob(fn JobFunc, arg any, parent *Counter, opts []SubmitOption) (*Job, error) {
	var req submitRequest
	for _, opt := range opts {
		opt(&req)
	}
	j, _, ok := s.jobs.Get()
	if !ok {
		return nil, api.WrapError(api.ErrCodeResourceExhausted, api.ErrJobPoolExhausted).
			WithContext("capacity", s.jobs.Capacity())
	}
	j.fn = fn
	j.arg = arg
	j.parent = parent
	j.priority = req.priority
	if req.hasCont {
		cont, _, ok := s.jobs.Get()
		if !ok {
			s.recycleUnrun(j)
			return nil, api.WrapError(api.ErrCodeResourceExhausted, api.ErrJobPoolExhausted).
				WithContext("capacity", s.jobs.Capacity())
		}
		cont.fn = req.contFn
		cont.arg = req.contArg
		cont.flags = flagContinuation
		j.continuation = cont
	}
	return j, nil
}

// dispatch routes a populated job onto the calling worker's deque, or
// into the shared inbox when the caller is no worker thread.
func (s *Scheduler) dispatch(j *Job) error {
	if w := s.currentWorker(); w != nil {
		w.deque.push(j)
		return nil
	}
	if !s.inbox.Enqueue(j) {
		return api.WrapError(api.ErrCodeResourceExhausted, api.ErrSubmitQueueFull).
			WithContext("capacity", s.inbox.Len())
	}
	return nil
}

// execute runs one job to completion: invoke, decrement the parent
// counter (releasing it on the zero transition), hand off the
// continuation onto the executing worker's deque, recycle the record.
func (s *Scheduler) execute(w *worker, j *Job) {
	s.invoke(j)
	if c := j.parent; c != nil {
		if c.add(-1) == 0 {
			s.counters.Put(c.slot)
		}
	}
	if cont := j.continuation; cont != nil {
		j.continuation = nil
		if w != nil {
			w.deque.push(cont)
		} else if !s.inbox.Enqueue(cont) {
			// Inbox full on a non-worker thread: run it inline.
			// Ordering is still after the parent, which is the only
			// contract continuations carry.
			s.execute(nil, cont)
		}
	}
	slot := j.slot
	j.reset()
	s.jobs.Put(slot)
	if w != nil {
		w.executed.Add(1)
	}
}

// invoke runs the job function, containing panics so a faulting job
// cannot take down its worker or strand its waiters.
func (s *Scheduler) invoke(j *Job) {
	defer func() {
		if r := recover(); r != nil {
			if s.panicHandler != nil {
				s.panicHandler(r)
				return
			}
			s.logger.Error("job panicked", "recovered", r)
		}
	}()
	j.fn(j.arg)
}

// recycleUnrun returns a populated but never-queued job (and its
// continuation record) to the pool.
func (s *Scheduler) recycleUnrun(j *Job) {
	if cont := j.continuation; cont != nil {
		j.continuation = nil
		s.recycleUnrun(cont)
	}
	slot := j.slot
	j.reset()
	s.jobs.Put(slot)
}

// currentWorker maps the calling OS thread to its worker slot, or nil
// for foreign threads. Only meaningful for goroutines locked to their
// thread, which holds for all workers.
func (s *Scheduler) currentWorker() *worker {
	tid := osthread.CurrentID()
	if tid == 0 {
		return nil
	}
	for i := range s.tids {
		if s.tids[i].Load() == tid {
			return s.workers[i]
		}
	}
	return nil
}

// onMainThread reports whether the caller runs on worker 0's thread.
// On platforms without thread identity this cannot be verified and the
// check is permissive.
func (s *Scheduler) onMainThread() bool {
	if !osthread.Supported() {
		return true
	}
	return osthread.CurrentID() == s.mainTID
}
