package mediatime

import (
	"iter"
	"regexp"
	"strings"
)

// A TimeValueRange is a span of TimeValues, optionally unbounded at
// either end, with an optional media unit rate shared by its bounds.
// When a rate is known the bounds collapse to unit counts and the
// range canonicalises to the half-open [start, end+1) form, exactly as
// CountRange does; without a rate the bounds keep their time
// representations and both inclusivity flags are significant.
type TimeValueRange struct {
	start, end       TimeValue
	hasStart, hasEnd bool
	incl             Inclusivity
	rate             Rational
}

func makeTimeValueRange(start TimeValue, hasStart bool, end TimeValue, hasEnd bool, incl Inclusivity, rate Rational) TimeValueRange {
	// the rate may be inherited from either bound
	if hasStart {
		start = start.WithRate(rate)
		if rate.IsZero() {
			rate = start.rate
		}
	}
	if hasEnd {
		end = end.WithRate(rate)
		if rate.IsZero() {
			rate = end.rate
		}
	}
	if !rate.IsZero() && hasStart {
		start = start.WithRate(rate)
	}

	// count-represented bounds canonicalise to half-open form
	if hasStart && start.kind == kindCount && incl&IncludeStart == 0 {
		start.count++
		incl |= IncludeStart
	}
	if hasEnd && end.kind == kindCount && incl&IncludeEnd != 0 {
		end.count++
		incl &^= IncludeEnd
	}

	if hasStart && hasEnd {
		if c := tvCmp(start, end); c > 0 || (c == 0 && incl != Inclusive) {
			zero := TimeValueFromCount(0, rate)
			return TimeValueRange{start: zero, end: zero, hasStart: true, hasEnd: true, incl: Exclusive, rate: rate}
		}
	}
	if !hasStart && !hasEnd {
		incl = Inclusive
	}
	return TimeValueRange{start: start, end: end, hasStart: hasStart, hasEnd: hasEnd, incl: incl, rate: rate}
}

// tvCmp orders two time values for range bookkeeping. Where no rate
// allows a real conversion between a count and a time it falls back to
// comparing the raw magnitudes, so the order is always total.
func tvCmp(a, b TimeValue) int {
	if c, err := a.Compare(b); err == nil {
		return c
	}
	an, bn := tvRawKey(a), tvRawKey(b)
	switch {
	case an < bn:
		return -1
	case an > bn:
		return 1
	}
	return 0
}

func tvRawKey(v TimeValue) int64 {
	if v.kind == kindCount {
		return v.count
	}
	return v.time.nanoseconds()
}

func tvEq(a, b TimeValue) bool { return tvCmp(a, b) == 0 }

// NewTimeValueRange builds the range between two time values, sharing
// rate across the bounds. A zero rate means no rate.
func NewTimeValueRange(start, end TimeValue, incl Inclusivity, rate Rational) TimeValueRange {
	return makeTimeValueRange(start, true, end, true, incl, rate)
}

// TimeValueRangeFromTimeRange converts a TimeRange, rebinding the
// bounds at rate when one is given.
func TimeValueRangeFromTimeRange(tr TimeRange, rate Rational) TimeValueRange {
	var start, end TimeValue
	if ts, ok := tr.Start(); ok {
		start = TimeValueFromTimestamp(ts, Rational{})
	}
	if ts, ok := tr.End(); ok {
		end = TimeValueFromTimestamp(ts, Rational{})
	}
	return makeTimeValueRange(start, tr.BoundedBefore(), end, tr.BoundedAfter(), tr.Inclusivity(), rate)
}

// TimeValueRangeFromCountRange converts a CountRange at rate.
func TimeValueRangeFromCountRange(cr CountRange, rate Rational) TimeValueRange {
	var start, end TimeValue
	if s, ok := cr.Start(); ok {
		start = TimeValueFromCount(s, Rational{})
	}
	if e, ok := cr.End(); ok {
		end = TimeValueFromCount(e, Rational{})
	}
	return makeTimeValueRange(start, cr.BoundedBefore(), end, cr.BoundedAfter(), cr.Inclusivity(), rate)
}

// TimeValueRangeFromStart is the range from start onward with no end.
func TimeValueRangeFromStart(start TimeValue, incl Inclusivity, rate Rational) TimeValueRange {
	return makeTimeValueRange(start, true, TimeValue{}, false, incl, rate)
}

// TimeValueRangeFromEnd is the range up to end with no start.
func TimeValueRangeFromEnd(end TimeValue, incl Inclusivity, rate Rational) TimeValueRange {
	return makeTimeValueRange(TimeValue{}, false, end, true, incl, rate)
}

// TimeValueRangeFromStartLength is the range of the given length
// beginning at start. Negative lengths are rejected.
func TimeValueRangeFromStartLength(start, length TimeValue, incl Inclusivity, rate Rational) (TimeValueRange, error) {
	if tvCmp(length, TimeValueFromCount(0, Rational{})) < 0 {
		return TimeValueRange{}, invalidValue("length must be non-negative")
	}
	end, err := start.WithRate(rate).Add(length)
	if err != nil {
		return TimeValueRange{}, err
	}
	return NewTimeValueRange(start, end, incl, rate), nil
}

// TimeValueEternity is the unbounded range covering all values.
func TimeValueEternity(rate Rational) TimeValueRange {
	return makeTimeValueRange(TimeValue{}, false, TimeValue{}, false, Inclusive, rate)
}

// TimeValueNever is the empty range.
func TimeValueNever(rate Rational) TimeValueRange {
	zero := TimeValueFromCount(0, Rational{})
	return makeTimeValueRange(zero, true, zero, true, Exclusive, rate)
}

// TimeValueRangeFromSingle is the range containing exactly one value.
func TimeValueRangeFromSingle(value TimeValue, rate Rational) TimeValueRange {
	return makeTimeValueRange(value, true, value, true, Inclusive, rate)
}

var timeValueRangeRe = regexp.MustCompile(`^(\[|\()?([^_\)\]]+)?(_([^_\)\]]+)?)?(\]|\))?(@([^\/]+(\/.+)?))?`)

// ParseTimeValueRange parses the same bracketed syntax as
// ParseTimeRange, with time values as bounds and an optional "@<rate>"
// suffix. A rate in the string takes the place of the rate argument.
func ParseTimeValueRange(s string, rate Rational) (TimeValueRange, error) {
	m := timeValueRangeRe.FindStringSubmatch(s)

	incl := Inclusive
	if m[1] == "(" {
		incl &^= IncludeStart
	}
	if m[5] == ")" {
		incl &^= IncludeEnd
	}

	if rate.IsZero() && m[7] != "" {
		var err error
		if rate, err = ParseRational(m[7]); err != nil {
			return TimeValueRange{}, err
		}
	}

	var start, end TimeValue
	var hasStart, hasEnd bool
	var err error
	if m[2] != "" {
		if start, err = ParseTimeValue(m[2], rate); err != nil {
			return TimeValueRange{}, err
		}
		hasStart = true
	}
	if m[4] != "" {
		if end, err = ParseTimeValue(m[4], rate); err != nil {
			return TimeValueRange{}, err
		}
		hasEnd = true
	}

	switch {
	case !hasStart && !hasEnd:
		if m[3] != "" {
			return TimeValueEternity(rate), nil
		}
		return TimeValueNever(rate), nil
	case hasStart && !hasEnd && m[3] == "":
		return TimeValueRangeFromSingle(start, rate), nil
	default:
		return makeTimeValueRange(start, hasStart, end, hasEnd, incl, rate), nil
	}
}

// AsTimeRange converts the bounds to Timestamps. Count bounds require
// a rate.
func (r TimeValueRange) AsTimeRange() (TimeRange, error) {
	var start, end Timestamp
	var err error
	if r.hasStart {
		if start, err = r.start.AsTimestamp(); err != nil {
			return TimeRange{}, err
		}
	}
	if r.hasEnd {
		if end, err = r.end.AsTimestamp(); err != nil {
			return TimeRange{}, err
		}
	}
	return makeTimeRange(start, r.hasStart, end, r.hasEnd, r.incl), nil
}

// AsCountRange converts the bounds to unit counts. Time bounds require
// a rate.
func (r TimeValueRange) AsCountRange() (CountRange, error) {
	var start, end int64
	var err error
	if r.hasStart {
		if start, err = r.start.AsCount(); err != nil {
			return CountRange{}, err
		}
	}
	if r.hasEnd {
		if end, err = r.end.AsCount(); err != nil {
			return CountRange{}, err
		}
	}
	return makeCountRange(start, r.hasStart, end, r.hasEnd, r.incl), nil
}

// Start returns the start bound, if there is one.
func (r TimeValueRange) Start() (TimeValue, bool) { return r.start, r.hasStart }

// End returns the end bound, if there is one.
func (r TimeValueRange) End() (TimeValue, bool) { return r.end, r.hasEnd }

func (r TimeValueRange) Inclusivity() Inclusivity { return r.incl }

// Rate returns the media unit rate, zero when none is set.
func (r TimeValueRange) Rate() Rational { return r.rate }

// LengthAsTimeOffset returns the span between the bounds as a
// duration. ok is false when either end is unbounded.
func (r TimeValueRange) LengthAsTimeOffset() (length TimeOffset, ok bool, err error) {
	tr, err := r.AsTimeRange()
	if err != nil {
		return TimeOffset{}, false, err
	}
	length, ok = tr.Length()
	return length, ok, nil
}

// LengthAsCount returns the number of units in the range. ok is false
// when either end is unbounded.
func (r TimeValueRange) LengthAsCount() (length int64, ok bool, err error) {
	cr, err := r.AsCountRange()
	if err != nil {
		return 0, false, err
	}
	length, ok = cr.Length()
	return length, ok, nil
}

func (r TimeValueRange) BoundedBefore() bool { return r.hasStart }

func (r TimeValueRange) BoundedAfter() bool { return r.hasEnd }

func (r TimeValueRange) Unbounded() bool { return !r.hasStart && !r.hasEnd }

func (r TimeValueRange) Finite() bool { return r.hasStart && r.hasEnd }

func (r TimeValueRange) IncludesStart() bool { return r.incl&IncludeStart != 0 }

func (r TimeValueRange) IncludesEnd() bool { return r.incl&IncludeEnd != 0 }

func (r TimeValueRange) IsEmpty() bool {
	return r.hasStart && r.hasEnd && tvEq(r.start, r.end) && r.incl != Inclusive
}

// withRate rebinds another range to this range's rate before a binary
// operation, so bounds compare in the same units.
func (r TimeValueRange) withRate(rate Rational) TimeValueRange {
	if rate.IsZero() {
		return r
	}
	return makeTimeValueRange(r.start, r.hasStart, r.end, r.hasEnd, r.incl, rate)
}

// Contains reports whether value is within the range, rebinding it to
// the range's rate first.
func (r TimeValueRange) Contains(value TimeValue) bool {
	value = value.WithRate(r.rate)
	if r.hasStart && tvCmp(value, r.start) < 0 {
		return false
	}
	if r.hasEnd && tvCmp(value, r.end) > 0 {
		return false
	}
	if r.hasStart && tvEq(value, r.start) && !r.IncludesStart() {
		return false
	}
	if r.hasEnd && tvEq(value, r.end) && !r.IncludesEnd() {
		return false
	}
	return true
}

func (r TimeValueRange) Equal(other TimeValueRange) bool {
	other = other.withRate(r.rate)
	if r.IsEmpty() && other.IsEmpty() {
		return true
	}
	startEq := (!r.hasStart && !other.hasStart) ||
		(r.hasStart && other.hasStart && tvEq(r.start, other.start) &&
			r.incl&IncludeStart == other.incl&IncludeStart)
	endEq := (!r.hasEnd && !other.hasEnd) ||
		(r.hasEnd && other.hasEnd && tvEq(r.end, other.end) &&
			r.incl&IncludeEnd == other.incl&IncludeEnd)
	return startEq && endEq
}

// ContainsSubrange reports whether other lies entirely inside r.
func (r TimeValueRange) ContainsSubrange(other TimeValueRange) bool {
	other = other.withRate(r.rate)
	if r.IsEmpty() {
		return false
	}
	if other.IsEmpty() {
		return true
	}
	if r.hasStart && (!other.hasStart || tvCmp(r.start, other.start) > 0) {
		return false
	}
	if r.hasEnd && (!other.hasEnd || tvCmp(r.end, other.end) < 0) {
		return false
	}
	if r.hasStart && other.hasStart && tvEq(r.start, other.start) &&
		!r.IncludesStart() && other.IncludesStart() {
		return false
	}
	if r.hasEnd && other.hasEnd && tvEq(r.end, other.end) &&
		!r.IncludesEnd() && other.IncludesEnd() {
		return false
	}
	return true
}

// IntersectWith returns the overlap of the two ranges, empty when they
// do not meet.
func (r TimeValueRange) IntersectWith(other TimeValueRange) TimeValueRange {
	other = other.withRate(r.rate)
	if r.IsEmpty() || other.IsEmpty() {
		return TimeValueNever(r.rate)
	}

	start, hasStart := r.start, r.hasStart
	if other.hasStart && (!hasStart || tvCmp(start, other.start) < 0) {
		start = other.start
		hasStart = true
	}
	end, hasEnd := r.end, r.hasEnd
	if other.hasEnd && (!hasEnd || tvCmp(end, other.end) > 0) {
		end = other.end
		hasEnd = true
	}

	incl := Exclusive
	if !hasStart || (r.Contains(start) && other.Contains(start)) {
		incl |= IncludeStart
	}
	if !hasEnd || (r.Contains(end) && other.Contains(end)) {
		incl |= IncludeEnd
	}

	if hasStart && hasEnd && tvCmp(start, end) > 0 {
		return TimeValueNever(r.rate)
	}
	return makeTimeValueRange(start, hasStart, end, hasEnd, incl, r.rate)
}

// StartsInside reports whether the start of r is located inside other.
func (r TimeValueRange) StartsInside(other TimeValueRange) bool {
	other = other.withRate(r.rate)
	if r.IsEmpty() || other.IsEmpty() {
		return false
	}
	if r.hasStart && other.Contains(r.start) &&
		!(other.hasEnd && tvEq(r.start, other.end) && !r.IncludesStart()) {
		return true
	}
	if r.hasStart && other.hasStart && tvEq(r.start, other.start) &&
		!(r.IncludesStart() && !other.IncludesStart()) {
		return true
	}
	return !r.hasStart && !other.hasStart
}

// EndsInside reports whether the end of r is located inside other.
func (r TimeValueRange) EndsInside(other TimeValueRange) bool {
	other = other.withRate(r.rate)
	if r.IsEmpty() || other.IsEmpty() {
		return false
	}
	if r.hasEnd && other.Contains(r.end) &&
		!(other.hasStart && tvEq(r.end, other.start) && !r.IncludesEnd()) {
		return true
	}
	if r.hasEnd && other.hasEnd && tvEq(r.end, other.end) &&
		!(r.IncludesEnd() && !other.IncludesEnd()) {
		return true
	}
	return !r.hasEnd && !other.hasEnd
}

// IsEarlierThan reports whether r ends before other starts.
func (r TimeValueRange) IsEarlierThan(other TimeValueRange) bool {
	other = other.withRate(r.rate)
	if r.IsEmpty() || other.IsEmpty() || !other.hasStart || !r.hasEnd {
		return false
	}
	return tvCmp(r.end, other.start) < 0 ||
		(tvEq(r.end, other.start) && !(r.IncludesEnd() && other.IncludesStart()))
}

// IsLaterThan reports whether r starts after other ends.
func (r TimeValueRange) IsLaterThan(other TimeValueRange) bool {
	other = other.withRate(r.rate)
	if r.IsEmpty() || other.IsEmpty() || !other.hasEnd || !r.hasStart {
		return false
	}
	return tvCmp(r.start, other.end) > 0 ||
		(tvEq(r.start, other.end) && !(r.IncludesStart() && other.IncludesEnd()))
}

// StartsEarlierThan reports whether r starts before other starts.
func (r TimeValueRange) StartsEarlierThan(other TimeValueRange) bool {
	other = other.withRate(r.rate)
	if r.IsEmpty() || other.IsEmpty() || !other.hasStart {
		return false
	}
	if !r.hasStart {
		return true
	}
	return tvCmp(r.start, other.start) < 0 ||
		(tvEq(r.start, other.start) && r.IncludesStart() && !other.IncludesStart())
}

// StartsLaterThan reports whether r starts after other starts.
func (r TimeValueRange) StartsLaterThan(other TimeValueRange) bool {
	other = other.withRate(r.rate)
	if r.IsEmpty() || other.IsEmpty() || !r.hasStart {
		return false
	}
	if !other.hasStart {
		return true
	}
	return tvCmp(r.start, other.start) > 0 ||
		(tvEq(r.start, other.start) && !r.IncludesStart() && other.IncludesStart())
}

// EndsEarlierThan reports whether r ends before other ends.
func (r TimeValueRange) EndsEarlierThan(other TimeValueRange) bool {
	other = other.withRate(r.rate)
	if r.IsEmpty() || other.IsEmpty() || !r.hasEnd {
		return false
	}
	if !other.hasEnd {
		return true
	}
	return tvCmp(r.end, other.end) < 0 ||
		(tvEq(r.end, other.end) && !r.IncludesEnd() && other.IncludesEnd())
}

// EndsLaterThan reports whether r ends after other ends.
func (r TimeValueRange) EndsLaterThan(other TimeValueRange) bool {
	other = other.withRate(r.rate)
	if r.IsEmpty() || other.IsEmpty() || !other.hasEnd {
		return false
	}
	if !r.hasEnd {
		return true
	}
	return tvCmp(r.end, other.end) > 0 ||
		(tvEq(r.end, other.end) && r.IncludesEnd() && !other.IncludesEnd())
}

// OverlapsWith reports whether the two ranges share any value.
func (r TimeValueRange) OverlapsWith(other TimeValueRange) bool {
	return !r.IsEarlierThan(other) && !r.IsLaterThan(other)
}

// IsContiguousWith reports whether the union of the two ranges would
// itself be a contiguous range.
func (r TimeValueRange) IsContiguousWith(other TimeValueRange) bool {
	other = other.withRate(r.rate)
	if r.OverlapsWith(other) {
		return true
	}
	if r.IsEarlierThan(other) && r.hasEnd && other.hasStart &&
		tvEq(r.end, other.start) && (r.IncludesEnd() || other.IncludesStart()) {
		return true
	}
	if r.IsLaterThan(other) && r.hasStart && other.hasEnd &&
		tvEq(r.start, other.end) && (r.IncludesStart() || other.IncludesEnd()) {
		return true
	}
	return false
}

// UnionWith returns the union of two contiguous ranges, and an error
// when a gap lies between them.
func (r TimeValueRange) UnionWith(other TimeValueRange) (TimeValueRange, error) {
	if !r.IsContiguousWith(other) {
		return TimeValueRange{}, invalidValuef("ranges %s and %s are not contiguous", r, other)
	}
	return r.ExtendToEncompass(other), nil
}

// ExtendToEncompass returns the smallest range covering both ranges,
// including any gap between them.
func (r TimeValueRange) ExtendToEncompass(other TimeValueRange) TimeValueRange {
	other = other.withRate(r.rate)
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}

	incl := Exclusive
	var start TimeValue
	hasStart := true
	switch {
	case !r.hasStart && !other.hasStart,
		r.hasStart && other.hasStart && tvEq(r.start, other.start):
		start, hasStart = r.start, r.hasStart
		incl |= (r.incl | other.incl) & IncludeStart
	case r.StartsEarlierThan(other):
		start, hasStart = r.start, r.hasStart
		incl |= r.incl & IncludeStart
	default:
		start, hasStart = other.start, other.hasStart
		incl |= other.incl & IncludeStart
	}

	var end TimeValue
	hasEnd := true
	switch {
	case !r.hasEnd && !other.hasEnd,
		r.hasEnd && other.hasEnd && tvEq(r.end, other.end):
		end, hasEnd = r.end, r.hasEnd
		incl |= (r.incl | other.incl) & IncludeEnd
	case r.EndsLaterThan(other):
		end, hasEnd = r.end, r.hasEnd
		incl |= r.incl & IncludeEnd
	default:
		end, hasEnd = other.end, other.hasEnd
		incl |= other.incl & IncludeEnd
	}

	return makeTimeValueRange(start, hasStart, end, hasEnd, incl, r.rate)
}

// SplitAt divides the range in two at a value within it. The split
// point always belongs to the second piece, never the first.
func (r TimeValueRange) SplitAt(value TimeValue) (TimeValueRange, TimeValueRange, error) {
	value = value.WithRate(r.rate)
	if !r.Contains(value) {
		return TimeValueRange{}, TimeValueRange{}, invalidValuef("cannot split range %s at %s", r, value)
	}
	left := makeTimeValueRange(r.start, r.hasStart, value, true, r.incl&IncludeStart, r.rate)
	right := makeTimeValueRange(value, true, r.end, r.hasEnd, IncludeStart|(r.incl&IncludeEnd), r.rate)
	return left, right, nil
}

// SplitAfter divides the range in two just past a value within it. The
// split point always belongs to the first piece, never the second.
func (r TimeValueRange) SplitAfter(value TimeValue) (TimeValueRange, TimeValueRange, error) {
	value = value.WithRate(r.rate)
	if !r.Contains(value) {
		return TimeValueRange{}, TimeValueRange{}, invalidValuef("cannot split range %s at %s", r, value)
	}
	left := makeTimeValueRange(r.start, r.hasStart, value, true, IncludeEnd|(r.incl&IncludeStart), r.rate)
	right := makeTimeValueRange(value, true, r.end, r.hasEnd, r.incl&IncludeEnd, r.rate)
	return left, right, nil
}

// ExcludingUpToEndOf returns the portion of r strictly after the end
// of other, or all of r when other ends before it starts.
func (r TimeValueRange) ExcludingUpToEndOf(other TimeValueRange) TimeValueRange {
	other = other.withRate(r.rate)
	if other.IsEmpty() || other.IsEarlierThan(r) {
		return r
	}
	if !other.hasEnd || !r.Contains(other.end) {
		return TimeValueNever(r.rate)
	}
	if other.IncludesEnd() {
		_, right, _ := r.SplitAfter(other.end)
		return right
	}
	_, right, _ := r.SplitAt(other.end)
	return right
}

// ExcludingBeforeStartOf returns the portion of r strictly before the
// start of other, or all of r when other starts after it ends.
func (r TimeValueRange) ExcludingBeforeStartOf(other TimeValueRange) TimeValueRange {
	other = other.withRate(r.rate)
	if other.IsEmpty() || other.IsLaterThan(r) {
		return r
	}
	if !other.hasStart || !r.Contains(other.start) {
		return TimeValueNever(r.rate)
	}
	if other.IncludesStart() {
		left, _, _ := r.SplitAt(other.start)
		return left
	}
	left, _, _ := r.SplitAfter(other.start)
	return left
}

// Between returns the gap separating two ranges, empty when they are
// contiguous.
func (r TimeValueRange) Between(other TimeValueRange) TimeValueRange {
	other = other.withRate(r.rate)
	if r.IsContiguousWith(other) {
		return TimeValueNever(r.rate)
	}
	if r.IsEarlierThan(other) {
		incl := Exclusive
		if !r.IncludesEnd() {
			incl |= IncludeStart
		}
		if !other.IncludesStart() {
			incl |= IncludeEnd
		}
		return makeTimeValueRange(r.end, true, other.start, true, incl, r.rate)
	}
	incl := Exclusive
	if !other.IncludesEnd() {
		incl |= IncludeStart
	}
	if !r.IncludesStart() {
		incl |= IncludeEnd
	}
	return makeTimeValueRange(other.end, true, r.start, true, incl, r.rate)
}

// Values returns a sequence of the unit counts within the range,
// earliest first. It requires a rate and a bounded start. An empty
// range yields nothing.
func (r TimeValueRange) Values() (iter.Seq[TimeValue], error) {
	if r.IsEmpty() {
		return func(func(TimeValue) bool) {}, nil
	}
	if !r.hasStart || !r.rate.IsValid() {
		return nil, invalidValuef("%s is not iterable", r)
	}

	first := r.start.count
	if !r.IncludesStart() {
		first++
	}
	return func(yield func(TimeValue) bool) {
		for c := first; ; c++ {
			if r.hasEnd {
				if c > r.end.count || (c == r.end.count && !r.IncludesEnd()) {
					return
				}
			}
			if !yield(TimeValueFromCount(c, r.rate)) {
				return
			}
		}
	}, nil
}

// ReversedValues is Values starting from the end and moving earlier.
// It requires a rate and a bounded end.
func (r TimeValueRange) ReversedValues() (iter.Seq[TimeValue], error) {
	if r.IsEmpty() {
		return func(func(TimeValue) bool) {}, nil
	}
	if !r.hasEnd || !r.rate.IsValid() {
		return nil, invalidValuef("%s is not reverse iterable", r)
	}

	first := r.end.count
	if !r.IncludesEnd() {
		first--
	}
	return func(yield func(TimeValue) bool) {
		for c := first; ; c-- {
			if r.hasStart {
				if c < r.start.count || (c == r.start.count && !r.IncludesStart()) {
					return
				}
			}
			if !yield(TimeValueFromCount(c, r.rate)) {
				return
			}
		}
	}, nil
}

// Subranges cuts the range into contiguous non-overlapping pieces one
// media unit long, with boundaries at the sample edges of rate (or the
// range's own rate when rate is zero). A range with no usable rate, no
// start bound or no content comes back as a single piece equal to
// itself. The first piece keeps the range's start inclusivity and the
// last its end inclusivity; every other piece is half-open.
func (r TimeValueRange) Subranges(rate Rational) iter.Seq[TimeValueRange] {
	use := rate
	if use.IsZero() {
		use = r.rate
	}
	if !use.IsValid() || r.IsEmpty() || !r.hasStart {
		return func(yield func(TimeValueRange) bool) { yield(r) }
	}

	rb := r.withRate(use)
	origStart, _ := r.start.WithRate(use).AsCount()
	var origEnd int64
	if r.hasEnd {
		origEnd, _ = r.end.WithRate(use).AsCount()
	}

	return func(yield func(TimeValueRange) bool) {
		cur := r.start
		includeStart := r.IncludesStart()

		for c := rb.start.count; !rb.hasEnd || c < rb.end.count; c++ {
			if c == origStart {
				continue
			}
			if r.hasEnd && c == origEnd {
				break
			}
			incl := Exclusive
			if includeStart {
				incl |= IncludeStart
			}
			bound := TimeValueFromCount(c, use)
			if !yield(subrangePiece(cur, bound, incl, r.rate, use)) {
				return
			}
			includeStart = true
			cur = bound
		}

		incl := Exclusive
		if includeStart {
			incl |= IncludeStart
		}
		if r.IncludesEnd() {
			incl |= IncludeEnd
		}
		yield(subrangePiece(cur, r.end, incl, r.rate, use))
	}
}

// subrangePiece rebuilds a piece from its boundary values as a
// timestamp range, rebound at the parent range's own rate. Count
// boundaries with no rate of their own fall back to the cutting rate.
func subrangePiece(start, end TimeValue, incl Inclusivity, rate, use Rational) TimeValueRange {
	return makeTimeValueRange(
		TimeValueFromTimestamp(tvTimestampAt(start, use), Rational{}), true,
		TimeValueFromTimestamp(tvTimestampAt(end, use), Rational{}), true,
		incl, rate)
}

func tvTimestampAt(v TimeValue, use Rational) Timestamp {
	ts, err := v.AsTimestamp()
	if err != nil {
		ts, _ = v.WithRate(use).AsTimestamp()
	}
	return ts
}

// MergeIntoOrderedRanges merges r into a chronologically ordered
// sequence of disjoint non-contiguous ranges, yielding a sequence
// with the same properties that also covers r.
func (r TimeValueRange) MergeIntoOrderedRanges(ranges iter.Seq[TimeValueRange]) iter.Seq[TimeValueRange] {
	return func(yield func(TimeValueRange) bool) {
		merged := r
		for existing := range ranges {
			switch {
			case existing.IsContiguousWith(merged) || existing.OverlapsWith(merged):
				merged = merged.ExtendToEncompass(existing)
			case existing.IsEarlierThan(merged):
				if !yield(existing) {
					return
				}
			case existing.IsLaterThan(merged):
				if !yield(merged) {
					return
				}
				merged = existing
			}
		}
		yield(merged)
	}
}

// ComplementOfOrderedSubranges yields the parts of r not covered by a
// chronologically ordered sequence of disjoint subranges.
func (r TimeValueRange) ComplementOfOrderedSubranges(ranges iter.Seq[TimeValueRange]) iter.Seq[TimeValueRange] {
	return func(yield func(TimeValueRange) bool) {
		current := r
		for existing := range ranges {
			if existing.IsEmpty() {
				continue
			}
			if before := current.ExcludingBeforeStartOf(existing); !before.IsEmpty() {
				if !yield(before) {
					return
				}
			}
			current = current.ExcludingUpToEndOf(existing)
		}
		if !current.IsEmpty() {
			yield(current)
		}
	}
}

// ToStr renders the range in the bracketed syntax, optionally with the
// "@<rate>" suffix.
func (r TimeValueRange) ToStr(withMarkers, includeRate bool) string {
	var body string
	switch {
	case r.IsEmpty():
		if withMarkers {
			body = "()"
		}
	case r.hasStart && r.hasEnd && tvEq(r.start, r.end):
		if withMarkers {
			body = "[" + r.start.ToStr(false) + "]"
		} else {
			body = r.start.ToStr(false)
		}
	default:
		lb, rb := "", ""
		if withMarkers {
			lb, rb = "(", ")"
			if r.IncludesStart() {
				lb = "["
			}
			if r.IncludesEnd() {
				rb = "]"
			}
		}
		var b strings.Builder
		if r.hasStart {
			b.WriteString(lb)
			b.WriteString(r.start.ToStr(false))
		}
		b.WriteByte('_')
		if r.hasEnd {
			b.WriteString(r.end.ToStr(false))
			b.WriteString(rb)
		}
		body = b.String()
	}

	if includeRate && !r.rate.IsZero() {
		body += "@" + r.rate.String()
	}
	return body
}

func (r TimeValueRange) String() string { return r.ToStr(true, true) }

func (r *TimeValueRange) UnmarshalText(data []byte) error {
	parsed, err := ParseTimeValueRange(string(data), Rational{})
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r TimeValueRange) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
