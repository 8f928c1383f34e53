package mediatime

import (
	"strconv"
	"strings"
)

type timeValueKind int

const (
	kindCount timeValueKind = iota
	kindOffset
	kindTimestamp
)

// A TimeValue is a position on a media timeline in one of three
// representations: an integer media unit count, a TimeOffset or a
// Timestamp. An optional media unit rate makes the representations
// interchangeable; when a rate is known, time representations are
// eagerly converted to unit counts.
//
// The zero value is the count 0 with no rate.
type TimeValue struct {
	kind  timeValueKind
	count int64
	time  fixed
	rate  Rational
}

// TimeValueFromCount is the media unit count at an optional rate. A
// zero rate means no rate.
func TimeValueFromCount(count int64, rate Rational) TimeValue {
	return TimeValue{kind: kindCount, count: count, rate: rate}
}

// TimeValueFromOffset holds a TimeOffset, converted to a count when a
// valid rate is given.
func TimeValueFromOffset(off TimeOffset, rate Rational) TimeValue {
	return collapseTime(TimeValue{kind: kindOffset, time: off.v, rate: rate})
}

// TimeValueFromTimestamp holds a Timestamp, converted to a count when
// a valid rate is given.
func TimeValueFromTimestamp(ts Timestamp, rate Rational) TimeValue {
	return collapseTime(TimeValue{kind: kindTimestamp, time: ts.v, rate: rate})
}

// collapseTime applies the eager time-to-count conversion.
func collapseTime(v TimeValue) TimeValue {
	if v.kind != kindCount && v.rate.IsValid() {
		count, err := fixedToCount(v.time, v.rate, RoundNearest)
		if err == nil {
			return TimeValue{kind: kindCount, count: count, rate: v.rate}
		}
	}
	return v
}

// ParseTimeValue parses "<int>", "<sec>:<nsec>" or "<sec>.<fraction>",
// each optionally followed by "@<rate>". A rate in the string takes
// the place of the rate argument.
func ParseTimeValue(s string, rate Rational) (TimeValue, error) {
	val, rateStr, hasRate := strings.Cut(s, "@")
	if hasRate {
		if strings.ContainsRune(rateStr, '@') {
			return TimeValue{}, invalidValuef("multiple '@' in time value %q", s)
		}
		var err error
		if rate, err = ParseRational(rateStr); err != nil {
			return TimeValue{}, err
		}
	}

	if count, err := strconv.ParseInt(val, 10, 64); err == nil {
		return TimeValueFromCount(count, rate), nil
	}
	off, err := ParseTimeOffset(val)
	if err != nil {
		return TimeValue{}, err
	}
	return TimeValueFromOffset(off, rate), nil
}

// Rate returns the media unit rate, zero when none is set.
func (v TimeValue) Rate() Rational { return v.rate }

// IsCount reports whether the underlying representation is an integer
// unit count rather than a time.
func (v TimeValue) IsCount() bool { return v.kind == kindCount }

// WithRate rebinds the value to a new rate. A value holding a time is
// re-counted at the new rate; a value already holding a bare count
// keeps the same count, reinterpreted at the new rate.
func (v TimeValue) WithRate(rate Rational) TimeValue {
	if rate.IsZero() || v.rate == rate {
		return v
	}
	if off, err := v.AsTimeOffset(); err == nil {
		return TimeValueFromOffset(off, rate)
	}
	return TimeValueFromCount(v.count, rate)
}

// AsTimeOffset returns the value as a duration. A count
// representation requires a rate.
func (v TimeValue) AsTimeOffset() (TimeOffset, error) {
	if v.kind != kindCount {
		return TimeOffset{v.time}, nil
	}
	if err := v.requireRate(); err != nil {
		return TimeOffset{}, err
	}
	return TimeOffsetFromCount(v.count, v.rate)
}

// AsTimestamp returns the value as a point in time. A count
// representation requires a rate.
func (v TimeValue) AsTimestamp() (Timestamp, error) {
	if v.kind != kindCount {
		return Timestamp{v.time}, nil
	}
	if err := v.requireRate(); err != nil {
		return Timestamp{}, err
	}
	return TimestampFromCount(v.count, v.rate)
}

// AsTimeRange returns the range containing only this value.
func (v TimeValue) AsTimeRange() (TimeRange, error) {
	ts, err := v.AsTimestamp()
	if err != nil {
		return TimeRange{}, err
	}
	return TimeRangeFromSingle(ts), nil
}

// AsCount returns the value as a media unit count. A time
// representation requires a rate.
func (v TimeValue) AsCount() (int64, error) {
	if v.kind == kindCount {
		return v.count, nil
	}
	if err := v.requireRate(); err != nil {
		return 0, err
	}
	return fixedToCount(v.time, v.rate, RoundNearest)
}

func (v TimeValue) requireRate() error {
	if !v.rate.IsValid() {
		return invalidValue("a valid rate is required for conversion")
	}
	return nil
}

// matchKind converts other to v's representation so the raw values
// can be combined, rebinding to v's rate first.
func (v TimeValue) matchKind(other TimeValue) (TimeValue, error) {
	other = other.WithRate(v.rate)
	switch v.kind {
	case kindOffset:
		off, err := other.AsTimeOffset()
		return TimeValue{kind: kindOffset, time: off.v}, err
	case kindTimestamp:
		ts, err := other.AsTimestamp()
		return TimeValue{kind: kindTimestamp, time: ts.v}, err
	default:
		count, err := other.AsCount()
		return TimeValue{kind: kindCount, count: count}, err
	}
}

// Compare returns -1, 0 or 1 ordering v against other, converting
// other to v's representation first. It errors when a needed rate is
// missing.
func (v TimeValue) Compare(other TimeValue) (int, error) {
	m, err := v.matchKind(other)
	if err != nil {
		return 0, err
	}
	if v.kind == kindCount {
		switch {
		case v.count < m.count:
			return -1, nil
		case v.count > m.count:
			return 1, nil
		}
		return 0, nil
	}
	return v.time.cmp(m.time), nil
}

// Equal reports whether the two values are the same position,
// converting representations where a rate allows it. Values that
// cannot be converted are never equal.
func (v TimeValue) Equal(other TimeValue) bool {
	c, err := v.Compare(other)
	return err == nil && c == 0
}

// Add returns the sum of the two positions in v's representation and
// rate.
func (v TimeValue) Add(other TimeValue) (TimeValue, error) {
	m, err := v.matchKind(other)
	if err != nil {
		return TimeValue{}, err
	}
	out := v
	if v.kind == kindCount {
		out.count += m.count
	} else {
		out.time = fixedAdd(v.time, m.time)
	}
	return out, nil
}

// Sub returns the difference of the two positions in v's
// representation and rate.
func (v TimeValue) Sub(other TimeValue) (TimeValue, error) {
	m, err := v.matchKind(other)
	if err != nil {
		return TimeValue{}, err
	}
	out := v
	if v.kind == kindCount {
		out.count -= m.count
	} else {
		out.time = fixedSub(v.time, m.time)
	}
	return out, nil
}

// AddCount shifts the value by a whole number of media units when it
// holds a count; for time representations n is an error without a
// rate.
func (v TimeValue) AddCount(n int64) (TimeValue, error) {
	return v.Add(TimeValueFromCount(n, v.rate))
}

// Mul scales the value by an integer.
func (v TimeValue) Mul(n int64) TimeValue {
	out := v
	if v.kind == kindCount {
		out.count *= n
	} else {
		out.time = fixedMul(v.time, n)
	}
	return out
}

// Div divides the value by an integer, rounding toward minus infinity.
func (v TimeValue) Div(n int64) TimeValue {
	out := v
	if v.kind == kindCount {
		out.count = floorDiv(v.count, n)
	} else {
		out.time = fixedDiv(v.time, n)
	}
	return out
}

// Abs returns the value with a non-negative magnitude.
func (v TimeValue) Abs() TimeValue {
	out := v
	if v.kind == kindCount {
		if out.count < 0 {
			out.count = -out.count
		}
	} else {
		out.time = v.time.abs()
	}
	return out
}

// ToStr renders the underlying representation, followed by "@<rate>"
// when includeRate is set and a rate is present.
func (v TimeValue) ToStr(includeRate bool) string {
	var s string
	if v.kind == kindCount {
		s = strconv.FormatInt(v.count, 10)
	} else {
		s = v.time.toSecNsec()
	}
	if includeRate && !v.rate.IsZero() {
		s += "@" + v.rate.String()
	}
	return s
}

func (v TimeValue) String() string { return v.ToStr(true) }

func (v TimeValue) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *TimeValue) UnmarshalText(data []byte) error {
	parsed, err := ParseTimeValue(string(data), Rational{})
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
