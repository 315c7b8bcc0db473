// Package ir provides the foundational types of a world-state compile: the
// SystemCall and the ordered CallBuffer that every category initializer
// appends to.
//
// This package contains type definitions and their canonical serialization
// only. Other internal packages import ir; ir imports nothing internal.
//
// Key constraints:
//   - A CallBuffer is append-only; call order is the correctness contract
//     (later calls may reference entities created by earlier ones)
//   - Canonical JSON (sorted keys, NFC strings, no HTML escaping) is the only
//     serialization used for digests
//   - All JSON tags use snake_case
package ir
