// Package mediatime deals with nanosecond-precision media timestamps and
// the intervals between them. The primary types in this package are:
//
//	type TimeOffset struct{ ... }
//
//	and
//
//	type Timestamp struct{ ... }
//
// A TimeOffset is a signed time difference held as fixed-point
// seconds+nanoseconds, and a Timestamp is an absolute point on a
// monotonic TAI-like timeline anchored at the Unix epoch. Unlike
// float-seconds representations these never accumulate rounding drift,
// which matters when frame counts at rational rates such as 30000/1001
// must survive arithmetic exactly.
//
// On top of the two scalar types the package provides TimeRange (an
// interval over Timestamps with per-end inclusivity), CountRange (the
// same interval algebra over integer sample counts) and TimeValue /
// TimeValueRange, which carry an optional rational media rate and move
// between the continuous and discrete representations on demand.
//
// All types are immutable values: every operation returns a new value
// and instances may be shared freely between goroutines. Arithmetic is
// total; out-of-range results saturate rather than wrap or fail. The
// only operations that return errors are the parsers and the
// conversions whose inputs can be structurally invalid, and every such
// error wraps ErrInvalidValue.
package mediatime
