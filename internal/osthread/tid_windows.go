//go:build windows
// +build windows

// File: internal/osthread/tid_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows thread identity via GetCurrentThreadId.

package osthread

import "golang.org/x/sys/windows"

// CurrentID returns the OS thread id of the calling thread.
func CurrentID() uint64 {
	return uint64(windows.GetCurrentThreadId())
}

// Supported reports whether thread identity is available on this platform.
func Supported() bool { return true }
