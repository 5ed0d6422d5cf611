// File: pool/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package pool implements fixed-capacity lock-free slab allocation with
// generation-tagged slots. Slots are addressed by index into a slab that
// is allocated once and never returned to the runtime, so pointers into
// it stay stable for the process lifetime. The free-list head packs a
// monotonically increasing tag next to the slot index in a single CAS
// word, which closes the classic ABA window on concurrent pop/push.
package pool
