// File: internal/osthread/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package osthread resolves the identity of the calling OS thread. The
// scheduler uses it to map a submitting thread back to its worker slot,
// which only holds for goroutines pinned with runtime.LockOSThread.
package osthread
