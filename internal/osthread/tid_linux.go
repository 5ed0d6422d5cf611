//go:build linux
// +build linux

// File: internal/osthread/tid_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux thread identity via gettid(2).

package osthread

import "golang.org/x/sys/unix"

// CurrentID returns the kernel thread id of the calling thread.
func CurrentID() uint64 {
	return uint64(unix.Gettid())
}

// Supported reports whether thread identity is available on this platform.
func Supported() bool { return true }
