package mediatime

import (
	"strconv"
	"strings"
)

// A CountRange is a span of integer media unit counts, optionally
// unbounded at either end. Unlike TimeRange, counts are discrete, so
// bounded ranges canonicalise to the half-open [start, end+1) form
// with an included start and excluded end; equal ranges therefore
// always have identical representations. The zero value is the empty
// range.
type CountRange struct {
	start, end       int64
	hasStart, hasEnd bool
	incl             Inclusivity
}

func makeCountRange(start int64, hasStart bool, end int64, hasEnd bool, incl Inclusivity) CountRange {
	if hasEnd && incl&IncludeEnd != 0 {
		end++
		incl &^= IncludeEnd
	}
	if hasStart && incl&IncludeStart == 0 {
		start++
		incl |= IncludeStart
	}

	if hasStart && hasEnd {
		if start > end || (start == end && incl != Inclusive) {
			return CountRange{hasStart: true, hasEnd: true, incl: Exclusive}
		}
	}
	if !hasStart && !hasEnd {
		incl = Inclusive
	}
	return CountRange{start: start, end: end, hasStart: hasStart, hasEnd: hasEnd, incl: incl}
}

// NewCountRange builds the range between two counts. A start after the
// end gives the empty range.
func NewCountRange(start, end int64, incl Inclusivity) CountRange {
	return makeCountRange(start, true, end, true, incl)
}

// CountRangeFromStart is the range from start onward with no end.
func CountRangeFromStart(start int64, incl Inclusivity) CountRange {
	return makeCountRange(start, true, 0, false, incl)
}

// CountRangeFromEnd is the range up to end with no start.
func CountRangeFromEnd(end int64, incl Inclusivity) CountRange {
	return makeCountRange(0, false, end, true, incl)
}

// CountRangeFromStartLength is the range of the given length beginning
// at start. Negative lengths are rejected.
func CountRangeFromStartLength(start, length int64, incl Inclusivity) (CountRange, error) {
	if length < 0 {
		return CountRange{}, invalidValue("length must be non-negative")
	}
	return NewCountRange(start, start+length, incl), nil
}

// CountEternity is the unbounded range covering all counts.
func CountEternity() CountRange {
	return makeCountRange(0, false, 0, false, Inclusive)
}

// CountNever is the empty range.
func CountNever() CountRange {
	return makeCountRange(0, true, 0, true, Exclusive)
}

// CountRangeFromSingle is the range containing exactly one count.
func CountRangeFromSingle(count int64) CountRange {
	return NewCountRange(count, count, Inclusive)
}

// ParseCountRange parses the same bracketed syntax as ParseTimeRange,
// with integer counts in place of timestamps.
func ParseCountRange(s string) (CountRange, error) {
	m := timeRangeRe.FindStringSubmatch(s)

	incl := Inclusive
	if m[1] == "(" {
		incl &^= IncludeStart
	}
	if m[5] == ")" {
		incl &^= IncludeEnd
	}

	var start, end int64
	var hasStart, hasEnd bool
	var err error
	if m[2] != "" {
		if start, err = strconv.ParseInt(m[2], 10, 64); err != nil {
			return CountRange{}, invalidValuef("invalid count range %q", s)
		}
		hasStart = true
	}
	if m[4] != "" {
		if end, err = strconv.ParseInt(m[4], 10, 64); err != nil {
			return CountRange{}, invalidValuef("invalid count range %q", s)
		}
		hasEnd = true
	}

	switch {
	case !hasStart && !hasEnd:
		if m[3] != "" {
			return CountEternity(), nil
		}
		return CountNever(), nil
	case hasStart && !hasEnd && m[3] == "":
		return CountRangeFromSingle(start), nil
	default:
		return makeCountRange(start, hasStart, end, hasEnd, incl), nil
	}
}

// Start returns the canonical inclusive start bound, if there is one.
func (cr CountRange) Start() (int64, bool) { return cr.start, cr.hasStart }

// End returns the canonical exclusive end bound, if there is one.
func (cr CountRange) End() (int64, bool) { return cr.end, cr.hasEnd }

func (cr CountRange) Inclusivity() Inclusivity { return cr.incl }

// Length returns the number of counts in the range. ok is false when
// either end is unbounded.
func (cr CountRange) Length() (length int64, ok bool) {
	if !cr.hasStart || !cr.hasEnd {
		return 0, false
	}
	return cr.end - cr.start, true
}

func (cr CountRange) BoundedBefore() bool { return cr.hasStart }

func (cr CountRange) BoundedAfter() bool { return cr.hasEnd }

func (cr CountRange) Unbounded() bool { return !cr.hasStart && !cr.hasEnd }

func (cr CountRange) Finite() bool { return cr.hasStart && cr.hasEnd }

func (cr CountRange) IncludesStart() bool { return cr.incl&IncludeStart != 0 }

func (cr CountRange) IncludesEnd() bool { return cr.incl&IncludeEnd != 0 }

func (cr CountRange) IsEmpty() bool {
	return cr.hasStart && cr.hasEnd && cr.start == cr.end && cr.incl != Inclusive
}

// Contains reports whether count is within the range.
func (cr CountRange) Contains(count int64) bool {
	if cr.hasStart && count < cr.start {
		return false
	}
	if cr.hasEnd && count > cr.end {
		return false
	}
	if cr.hasStart && count == cr.start && !cr.IncludesStart() {
		return false
	}
	if cr.hasEnd && count == cr.end && !cr.IncludesEnd() {
		return false
	}
	return true
}

func (cr CountRange) Equal(other CountRange) bool {
	if cr.IsEmpty() && other.IsEmpty() {
		return true
	}
	startEq := (!cr.hasStart && !other.hasStart) ||
		(cr.hasStart && other.hasStart && cr.start == other.start &&
			cr.incl&IncludeStart == other.incl&IncludeStart)
	endEq := (!cr.hasEnd && !other.hasEnd) ||
		(cr.hasEnd && other.hasEnd && cr.end == other.end &&
			cr.incl&IncludeEnd == other.incl&IncludeEnd)
	return startEq && endEq
}

// ContainsSubrange reports whether other lies entirely inside cr.
func (cr CountRange) ContainsSubrange(other CountRange) bool {
	if cr.IsEmpty() {
		return false
	}
	if other.IsEmpty() {
		return true
	}
	if cr.hasStart && (!other.hasStart || cr.start > other.start) {
		return false
	}
	if cr.hasEnd && (!other.hasEnd || cr.end < other.end) {
		return false
	}
	if cr.hasStart && other.hasStart && cr.start == other.start &&
		!cr.IncludesStart() && other.IncludesStart() {
		return false
	}
	if cr.hasEnd && other.hasEnd && cr.end == other.end &&
		!cr.IncludesEnd() && other.IncludesEnd() {
		return false
	}
	return true
}

// IntersectWith returns the overlap of the two ranges, empty when they
// do not meet.
func (cr CountRange) IntersectWith(other CountRange) CountRange {
	if cr.IsEmpty() || other.IsEmpty() {
		return CountNever()
	}

	start, hasStart := cr.start, cr.hasStart
	if other.hasStart && (!hasStart || start < other.start) {
		start = other.start
		hasStart = true
	}
	end, hasEnd := cr.end, cr.hasEnd
	if other.hasEnd && (!hasEnd || end > other.end) {
		end = other.end
		hasEnd = true
	}

	incl := Exclusive
	if !hasStart || (cr.Contains(start) && other.Contains(start)) {
		incl |= IncludeStart
	}
	if !hasEnd || (cr.Contains(end) && other.Contains(end)) {
		incl |= IncludeEnd
	}

	if hasStart && hasEnd && start > end {
		return CountNever()
	}
	return makeCountRange(start, hasStart, end, hasEnd, incl)
}

// StartsInside reports whether the start of cr is located inside other.
func (cr CountRange) StartsInside(other CountRange) bool {
	if cr.IsEmpty() || other.IsEmpty() {
		return false
	}
	if cr.hasStart && other.Contains(cr.start) &&
		!(other.hasEnd && cr.start == other.end && !cr.IncludesStart()) {
		return true
	}
	if cr.hasStart && other.hasStart && cr.start == other.start &&
		!(cr.IncludesStart() && !other.IncludesStart()) {
		return true
	}
	return !cr.hasStart && !other.hasStart
}

// EndsInside reports whether the end of cr is located inside other.
func (cr CountRange) EndsInside(other CountRange) bool {
	if cr.IsEmpty() || other.IsEmpty() {
		return false
	}
	if cr.hasEnd && other.Contains(cr.end) &&
		!(other.hasStart && cr.end == other.start && !cr.IncludesEnd()) {
		return true
	}
	if cr.hasEnd && other.hasEnd && cr.end == other.end &&
		!(cr.IncludesEnd() && !other.IncludesEnd()) {
		return true
	}
	return !cr.hasEnd && !other.hasEnd
}

// IsEarlierThan reports whether cr ends before other starts.
func (cr CountRange) IsEarlierThan(other CountRange) bool {
	if cr.IsEmpty() || other.IsEmpty() || !other.hasStart || !cr.hasEnd {
		return false
	}
	return cr.end < other.start ||
		(cr.end == other.start && !(cr.IncludesEnd() && other.IncludesStart()))
}

// IsLaterThan reports whether cr starts after other ends.
func (cr CountRange) IsLaterThan(other CountRange) bool {
	if cr.IsEmpty() || other.IsEmpty() || !other.hasEnd || !cr.hasStart {
		return false
	}
	return cr.start > other.end ||
		(cr.start == other.end && !(cr.IncludesStart() && other.IncludesEnd()))
}

// StartsEarlierThan reports whether cr starts before other starts.
func (cr CountRange) StartsEarlierThan(other CountRange) bool {
	if cr.IsEmpty() || other.IsEmpty() || !other.hasStart {
		return false
	}
	if !cr.hasStart {
		return true
	}
	return cr.start < other.start ||
		(cr.start == other.start && cr.IncludesStart() && !other.IncludesStart())
}

// StartsLaterThan reports whether cr starts after other starts.
func (cr CountRange) StartsLaterThan(other CountRange) bool {
	if cr.IsEmpty() || other.IsEmpty() || !cr.hasStart {
		return false
	}
	if !other.hasStart {
		return true
	}
	return cr.start > other.start ||
		(cr.start == other.start && !cr.IncludesStart() && other.IncludesStart())
}

// EndsEarlierThan reports whether cr ends before other ends.
func (cr CountRange) EndsEarlierThan(other CountRange) bool {
	if cr.IsEmpty() || other.IsEmpty() || !cr.hasEnd {
		return false
	}
	if !other.hasEnd {
		return true
	}
	return cr.end < other.end ||
		(cr.end == other.end && !cr.IncludesEnd() && other.IncludesEnd())
}

// EndsLaterThan reports whether cr ends after other ends.
func (cr CountRange) EndsLaterThan(other CountRange) bool {
	if cr.IsEmpty() || other.IsEmpty() || !other.hasEnd {
		return false
	}
	if !cr.hasEnd {
		return true
	}
	return cr.end > other.end ||
		(cr.end == other.end && cr.IncludesEnd() && !other.IncludesEnd())
}

// OverlapsWith reports whether the two ranges share any count.
func (cr CountRange) OverlapsWith(other CountRange) bool {
	return !cr.IsEarlierThan(other) && !cr.IsLaterThan(other)
}

// IsContiguousWith reports whether the union of the two ranges would
// itself be a contiguous range.
func (cr CountRange) IsContiguousWith(other CountRange) bool {
	if cr.OverlapsWith(other) {
		return true
	}
	if cr.IsEarlierThan(other) && cr.hasEnd && other.hasStart &&
		cr.end == other.start && (cr.IncludesEnd() || other.IncludesStart()) {
		return true
	}
	if cr.IsLaterThan(other) && cr.hasStart && other.hasEnd &&
		cr.start == other.end && (cr.IncludesStart() || other.IncludesEnd()) {
		return true
	}
	return false
}

// UnionWith returns the union of two contiguous ranges, and an error
// when a gap lies between them.
func (cr CountRange) UnionWith(other CountRange) (CountRange, error) {
	if !cr.IsContiguousWith(other) {
		return CountRange{}, invalidValuef("ranges %s and %s are not contiguous", cr, other)
	}
	return cr.ExtendToEncompass(other), nil
}

// ExtendToEncompass returns the smallest range covering both ranges,
// including any gap between them.
func (cr CountRange) ExtendToEncompass(other CountRange) CountRange {
	if cr.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return cr
	}

	incl := Exclusive
	var start int64
	hasStart := true
	switch {
	case !cr.hasStart && !other.hasStart,
		cr.hasStart && other.hasStart && cr.start == other.start:
		start, hasStart = cr.start, cr.hasStart
		incl |= (cr.incl | other.incl) & IncludeStart
	case cr.StartsEarlierThan(other):
		start, hasStart = cr.start, cr.hasStart
		incl |= cr.incl & IncludeStart
	default:
		start, hasStart = other.start, other.hasStart
		incl |= other.incl & IncludeStart
	}

	var end int64
	hasEnd := true
	switch {
	case !cr.hasEnd && !other.hasEnd,
		cr.hasEnd && other.hasEnd && cr.end == other.end:
		end, hasEnd = cr.end, cr.hasEnd
		incl |= (cr.incl | other.incl) & IncludeEnd
	case cr.EndsLaterThan(other):
		end, hasEnd = cr.end, cr.hasEnd
		incl |= cr.incl & IncludeEnd
	default:
		end, hasEnd = other.end, other.hasEnd
		incl |= other.incl & IncludeEnd
	}

	return makeCountRange(start, hasStart, end, hasEnd, incl)
}

// SplitAt divides the range in two at a count within it. The split
// point always belongs to the second piece, never the first.
func (cr CountRange) SplitAt(count int64) (CountRange, CountRange, error) {
	if !cr.Contains(count) {
		return CountRange{}, CountRange{}, invalidValuef("cannot split range %s at %d", cr, count)
	}
	left := makeCountRange(cr.start, cr.hasStart, count, true, cr.incl&IncludeStart)
	right := makeCountRange(count, true, cr.end, cr.hasEnd, IncludeStart|(cr.incl&IncludeEnd))
	return left, right, nil
}

// Between returns the gap separating two ranges, empty when they are
// contiguous.
func (cr CountRange) Between(other CountRange) CountRange {
	if cr.IsContiguousWith(other) {
		return CountNever()
	}
	if cr.IsEarlierThan(other) {
		incl := Exclusive
		if !cr.IncludesEnd() {
			incl |= IncludeStart
		}
		if !other.IncludesStart() {
			incl |= IncludeEnd
		}
		return NewCountRange(cr.end, other.start, incl)
	}
	incl := Exclusive
	if !other.IncludesEnd() {
		incl |= IncludeStart
	}
	if !cr.IncludesStart() {
		incl |= IncludeEnd
	}
	return NewCountRange(other.end, cr.start, incl)
}

// ToStr renders the range in the canonical half-open form, so
// "[5_6)" for the single count 5. Without markers the brackets are
// omitted and the empty range renders as "".
func (cr CountRange) ToStr(withMarkers bool) string {
	if cr.IsEmpty() {
		if withMarkers {
			return "()"
		}
		return ""
	}
	if cr.hasStart && cr.hasEnd && cr.start == cr.end {
		if withMarkers {
			return "[" + strconv.FormatInt(cr.start, 10) + "]"
		}
		return strconv.FormatInt(cr.start, 10)
	}

	lb, rb := "", ""
	if withMarkers {
		lb, rb = "(", ")"
		if cr.IncludesStart() {
			lb = "["
		}
		if cr.IncludesEnd() {
			rb = "]"
		}
	}

	var b strings.Builder
	if cr.hasStart {
		b.WriteString(lb)
		b.WriteString(strconv.FormatInt(cr.start, 10))
	}
	b.WriteByte('_')
	if cr.hasEnd {
		b.WriteString(strconv.FormatInt(cr.end, 10))
		b.WriteString(rb)
	}
	return b.String()
}

func (cr CountRange) String() string { return cr.ToStr(true) }

func (cr CountRange) MarshalText() ([]byte, error) {
	return []byte(cr.String()), nil
}

func (cr *CountRange) UnmarshalText(data []byte) error {
	parsed, err := ParseCountRange(string(data))
	if err != nil {
		return err
	}
	*cr = parsed
	return nil
}
