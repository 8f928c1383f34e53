package mediatime

import (
	"strconv"
	"strings"
)

// An OffsetSource is any value that can stand in for a TimeOffset.
// Timestamp satisfies it by reinterpreting its magnitude as a duration.
type OffsetSource interface {
	AsTimeOffset() TimeOffset
}

// A TimeOffset is a signed duration held as an integer count of seconds
// and nanoseconds. It is a value type: all methods return new offsets
// and the zero value is a zero duration.
type TimeOffset struct {
	v fixed
}

// NewTimeOffset builds an offset from a second and nanosecond magnitude
// and an overall sign (negative when sign < 0). Nanosecond overflow
// carries into seconds and negative components fold into the sign, so
// any inputs produce a normalised value.
func NewTimeOffset(sec, ns int64, sign int) TimeOffset {
	return TimeOffset{makeFixed(sec, ns, sign < 0)}
}

// ParseTimeOffset parses either of the two canonical string forms,
// "[-]<sec>:<nsec>" or "[-]<sec>.<fraction>".
func ParseTimeOffset(s string) (TimeOffset, error) {
	if strings.ContainsRune(s, '.') {
		return TimeOffsetFromSecFrac(s)
	}
	return TimeOffsetFromSecNsec(s)
}

// TimeOffsetFromSecNsec parses the "[-]<sec>:<nsec>" form.
func TimeOffsetFromSecNsec(s string) (TimeOffset, error) {
	v, err := parseSecNsec(s)
	return TimeOffset{v}, err
}

// TimeOffsetFromSecFrac parses the "[-]<sec>.<fraction>" form.
func TimeOffsetFromSecFrac(s string) (TimeOffset, error) {
	v, err := parseSecFrac(s)
	return TimeOffset{v}, err
}

// TimeOffsetFromCount returns the duration of count whole sample
// intervals at rate.
func TimeOffsetFromCount(count int64, rate Rational) (TimeOffset, error) {
	v, err := fixedFromCount(count, rate)
	return TimeOffset{v}, err
}

// TimeOffsetFromFloat converts a floating point second count. The
// float is taken via its shortest decimal representation rather than
// its binary expansion, so e.g. 0.1 becomes exactly 100000000 ns.
func TimeOffsetFromFloat(sec float64) (TimeOffset, error) {
	return TimeOffsetFromSecFrac(strconv.FormatFloat(sec, 'f', -1, 64))
}

// TimeOffsetFromMillisec returns an offset of ms milliseconds.
func TimeOffsetFromMillisec(ms int64) TimeOffset {
	return TimeOffset{fixedMul(fixedFromNanoseconds(ms), 1e6)}
}

// TimeOffsetFromMicrosec returns an offset of us microseconds.
func TimeOffsetFromMicrosec(us int64) TimeOffset {
	return TimeOffset{fixedMul(fixedFromNanoseconds(us), 1e3)}
}

// TimeOffsetFromNanosec returns an offset of ns nanoseconds.
func TimeOffsetFromNanosec(ns int64) TimeOffset {
	return TimeOffset{fixedFromNanoseconds(ns)}
}

// Sec returns the whole-second part of the magnitude.
func (t TimeOffset) Sec() int64 { return t.v.sec }

// Ns returns the nanosecond part of the magnitude, always in
// [0, 1e9).
func (t TimeOffset) Ns() int64 { return int64(t.v.ns) }

// Sign returns -1 for negative offsets and 1 otherwise. Zero is always
// positive.
func (t TimeOffset) Sign() int { return t.v.sign() }

func (t TimeOffset) IsZero() bool { return t.v.isZero() }

func (t TimeOffset) Abs() TimeOffset { return TimeOffset{t.v.abs()} }

func (t TimeOffset) Negate() TimeOffset { return TimeOffset{t.v.negate()} }

func (t TimeOffset) Add(o TimeOffset) TimeOffset { return TimeOffset{fixedAdd(t.v, o.v)} }

func (t TimeOffset) Sub(o TimeOffset) TimeOffset { return TimeOffset{fixedSub(t.v, o.v)} }

// Mul scales the offset by an integer, saturating on overflow.
func (t TimeOffset) Mul(n int64) TimeOffset { return TimeOffset{fixedMul(t.v, n)} }

// Div divides the offset by an integer, rounding toward minus
// infinity. Dividing by zero panics, as integer division does.
func (t TimeOffset) Div(n int64) TimeOffset { return TimeOffset{fixedDiv(t.v, n)} }

// Compare returns -1, 0 or 1 as t is less than, equal to or greater
// than o.
func (t TimeOffset) Compare(o TimeOffset) int { return t.v.cmp(o.v) }

func (t TimeOffset) Equal(o TimeOffset) bool { return t.v == o.v }

func (t TimeOffset) Before(o TimeOffset) bool { return t.v.cmp(o.v) < 0 }

func (t TimeOffset) After(o TimeOffset) bool { return t.v.cmp(o.v) > 0 }

// ToCount converts to a whole number of sample intervals at rate,
// rounded in the given direction. Up and Down apply to the magnitude,
// mirroring automatically for negative offsets.
func (t TimeOffset) ToCount(rate Rational, rnd Rounding) (int64, error) {
	return fixedToCount(t.v, rate, rnd)
}

// Normalise snaps the offset onto the sample grid of rate.
func (t TimeOffset) Normalise(rate Rational, rnd Rounding) (TimeOffset, error) {
	count, err := t.ToCount(rate, rnd)
	if err != nil {
		return TimeOffset{}, err
	}
	return TimeOffsetFromCount(count, rate)
}

// ToPhaseOffset returns the distance from the previous sample edge at
// rate, always a non-negative offset smaller than one interval.
func (t TimeOffset) ToPhaseOffset(rate Rational) (TimeOffset, error) {
	norm, err := t.Normalise(rate, RoundDown)
	if err != nil {
		return TimeOffset{}, err
	}
	return t.Sub(norm), nil
}

// ToMillisec converts to whole milliseconds with the given rounding.
func (t TimeOffset) ToMillisec(rnd Rounding) int64 { return fixedToUnit(t.v, 1e6, rnd) }

// ToMicrosec converts to whole microseconds with the given rounding.
func (t TimeOffset) ToMicrosec(rnd Rounding) int64 { return fixedToUnit(t.v, 1e3, rnd) }

// Nanoseconds returns the offset as a single signed nanosecond count,
// saturating at the int64 boundary.
func (t TimeOffset) Nanoseconds() int64 { return t.v.nanoseconds() }

// ToSecNsec renders the canonical "[-]<sec>:<nsec>" form.
func (t TimeOffset) ToSecNsec() string { return t.v.toSecNsec() }

// ToSecFrac renders the "[-]<sec>.<fraction>" form with trailing zeros
// stripped down to a single digit.
func (t TimeOffset) ToSecFrac() string { return t.v.toSecFrac(false) }

func (t TimeOffset) String() string { return t.ToSecNsec() }

func (t TimeOffset) AsTimeOffset() TimeOffset { return t }

// MarshalText lets offsets embed directly into JSON and text configs.
func (t TimeOffset) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOffset) UnmarshalText(data []byte) error {
	parsed, err := ParseTimeOffset(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
