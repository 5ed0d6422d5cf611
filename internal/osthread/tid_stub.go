//go:build !linux && !windows
// +build !linux,!windows

// File: internal/osthread/tid_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fallback for platforms without a cheap thread-id syscall binding.
// Callers observing id 0 must treat the thread as unknown and take the
// foreign-submission path.

package osthread

// CurrentID returns 0: thread identity unavailable.
func CurrentID() uint64 { return 0 }

// Supported reports whether thread identity is available on this platform.
func Supported() bool { return false }
