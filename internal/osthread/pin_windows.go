//go:build windows
// +build windows

// File: internal/osthread/pin_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows CPU pinning via SetThreadAffinityMask. The calling goroutine
// must already be locked to its thread.
//
// Reference: https://learn.microsoft.com/en-us/windows/win32/api/winbase/nf-winbase-setthreadaffinitymask

package osthread

import (
	"fmt"

	"golang.org/x/sys/windows"
)

var (
	kernel32              = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadAffinity = kernel32.NewProc("SetThreadAffinityMask")
)

// Pin binds the calling thread to one logical CPU. Masks cover the
// first 64 logical processors.
func Pin(cpuID int) error {
	if cpuID < 0 || cpuID >= 64 {
		return fmt.Errorf("osthread: cpu index %d out of mask range", cpuID)
	}
	mask := uintptr(1) << uint(cpuID)
	old, _, callErr := procSetThreadAffinity.Call(uintptr(windows.CurrentThread()), mask)
	if old == 0 {
		return fmt.Errorf("osthread: SetThreadAffinityMask: %w", callErr)
	}
	return nil
}
