//go:build !linux && !windows
// +build !linux,!windows

// File: internal/osthread/pin_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// No-op pinning for platforms without an affinity binding.

package osthread

// Pin is a no-op on this platform.
func Pin(cpuID int) error { return nil }
