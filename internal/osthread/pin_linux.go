//go:build linux
// +build linux

// File: internal/osthread/pin_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux CPU pinning via sched_setaffinity(2). The calling goroutine
// must already be locked to its thread.

package osthread

import "golang.org/x/sys/unix"

// Pin binds the calling thread to one logical CPU.
func Pin(cpuID int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	return unix.SchedSetaffinity(0, &set)
}
