// File: api/executor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor contract for fire-and-forget task dispatch. Satisfied by the
// scheduler for subsystems that only need plain closures and no
// completion handles.

package api

// Executor abstracts parallel task execution.
type Executor interface {
	// Submit schedules task for execution.
	Submit(task func()) error

	// NumWorkers returns the number of scheduling participants,
	// including the main thread.
	NumWorkers() int
}
