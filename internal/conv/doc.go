// Package conv provides safe integer type conversion utilities.
//
// These functions perform bounds checking to prevent integer overflow
// when converting between Go's int (platform-dependent) and the fixed-width
// types used in wire formats.
//
// Use cases:
//   - Framing lengths and counts into fixed-width snapshot fields
//   - Validating untrusted sizes read back from disk
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices, bounded counters), use direct type casts instead to avoid overhead.
package conv
