package mediatime

import (
	"iter"
	"testing"

	"github.com/pkg/errors"
)

func mustTimeValueRange(t *testing.T, s string, rate Rational) TimeValueRange {
	t.Helper()
	r, err := ParseTimeValueRange(s, rate)
	if err != nil {
		t.Fatalf("ParseTimeValueRange(%q): %v", s, err)
	}
	return r
}

func rangeSeq(rs ...TimeValueRange) iter.Seq[TimeValueRange] {
	return func(yield func(TimeValueRange) bool) {
		for _, r := range rs {
			if !yield(r) {
				return
			}
		}
	}
}

func collectRanges(seq iter.Seq[TimeValueRange]) []string {
	var out []string
	for r := range seq {
		out = append(out, r.String())
	}
	return out
}

func TestTimeValueRangeConstruction(t *testing.T) {
	tests := []struct {
		name string
		in   TimeValueRange
		want string
	}{
		{
			name: "CountBounds",
			in:   NewTimeValueRange(TimeValueFromCount(0, Rational{}), TimeValueFromCount(10, Rational{}), IncludeStart, Rate(25)),
			want: "[0_10)@25",
		},
		{
			name: "TimestampBoundsCollapse",
			in: NewTimeValueRange(
				TimeValueFromTimestamp(Timestamp{}, Rational{}),
				TimeValueFromTimestamp(NewTimestamp(0, 400000000, 1), Rational{}),
				Inclusive, Rate(25)),
			want: "[0_11)@25",
		},
		{
			name: "NoRateKeepsTimes",
			in: NewTimeValueRange(
				TimeValueFromOffset(TimeOffset{}, Rational{}),
				TimeValueFromOffset(NewTimeOffset(10, 0, 1), Rational{}),
				IncludeStart, Rational{}),
			want: "[0:0_10:0)",
		},
		{
			name: "RateInheritedFromBound",
			in: NewTimeValueRange(
				TimeValueFromCount(0, Rate(25)),
				TimeValueFromCount(10, Rational{}),
				IncludeStart, Rational{}),
			want: "[0_10)@25",
		},
		{
			name: "ReversedIsEmpty",
			in:   NewTimeValueRange(TimeValueFromCount(10, Rational{}), TimeValueFromCount(0, Rational{}), Inclusive, Rate(25)),
			want: "()@25",
		},
		{name: "Never", in: TimeValueNever(Rate(25)), want: "()@25"},
		{name: "Eternity", in: TimeValueEternity(Rational{}), want: "_"},
		{name: "Single", in: TimeValueRangeFromSingle(TimeValueFromCount(5, Rational{}), Rate(25)), want: "[5_6)@25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTimeValueRange(t *testing.T) {
	r := mustTimeValueRange(t, "[0_25)@25", Rational{})
	if r.Rate() != Rate(25) {
		t.Errorf("Rate() = %v, want 25", r.Rate())
	}

	tr, err := r.AsTimeRange()
	if err != nil {
		t.Fatal(err)
	}
	if !tr.Equal(mustTimeRange(t, "[0:0_1:0)")) {
		t.Errorf("AsTimeRange = %v, want [0:0_1:0)", tr)
	}

	cr, err := r.AsCountRange()
	if err != nil {
		t.Fatal(err)
	}
	if !cr.Equal(mustCountRange(t, "[0_25)")) {
		t.Errorf("AsCountRange = %v, want [0_25)", cr)
	}

	if !mustTimeValueRange(t, "()", Rational{}).IsEmpty() {
		t.Error("parsing () should give the empty range")
	}
	if !mustTimeValueRange(t, "_", Rational{}).Unbounded() {
		t.Error("parsing _ should give eternity")
	}
	if _, err := ParseTimeValueRange("[x_10)", Rational{}); err == nil {
		t.Error("ParseTimeValueRange should reject a malformed bound")
	}
}

func TestTimeValueRangeConversionErrors(t *testing.T) {
	r := mustTimeValueRange(t, "[0_10)", Rational{})
	if _, err := r.AsTimeRange(); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("AsTimeRange without a rate: err = %v, want ErrInvalidValue", err)
	}

	r = mustTimeValueRange(t, "[0:0_10:0)", Rational{})
	if _, err := r.AsCountRange(); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("AsCountRange without a rate: err = %v, want ErrInvalidValue", err)
	}
}

func TestTimeValueRangeLengths(t *testing.T) {
	r := mustTimeValueRange(t, "[0_10)@25", Rational{})

	count, ok, err := r.LengthAsCount()
	if err != nil || !ok || count != 10 {
		t.Errorf("LengthAsCount = %d, %v, %v, want 10, true, nil", count, ok, err)
	}

	length, ok, err := r.LengthAsTimeOffset()
	if err != nil || !ok || !length.Equal(NewTimeOffset(0, 400000000, 1)) {
		t.Errorf("LengthAsTimeOffset = %v, %v, %v, want 0:400000000", length, ok, err)
	}
}

func TestTimeValueRangeContains(t *testing.T) {
	r := mustTimeValueRange(t, "[0_10)@25", Rational{})

	if !r.Contains(TimeValueFromCount(0, Rational{})) || !r.Contains(TimeValueFromCount(9, Rational{})) {
		t.Error("[0_10)@25 should contain counts 0 and 9")
	}
	if r.Contains(TimeValueFromCount(10, Rational{})) {
		t.Error("[0_10)@25 should not contain count 10")
	}
	// times rebind through the rate
	if !r.Contains(TimeValueFromOffset(NewTimeOffset(0, 200000000, 1), Rational{})) {
		t.Error("[0_10)@25 should contain 0.2s, which is count 5")
	}
}

func TestTimeValueRangeEqualAcrossRepresentations(t *testing.T) {
	a := mustTimeValueRange(t, "[0_10)@25", Rational{})
	b := mustTimeValueRange(t, "[0:0_0:400000000)", Rational{})
	if !a.Equal(b) {
		t.Errorf("%v should equal %v after rebinding at the rate", a, b)
	}
	if !TimeValueNever(Rate(25)).Equal(TimeValueNever(Rational{})) {
		t.Error("all empty ranges should be equal")
	}
}

func TestTimeValueRangeSplit(t *testing.T) {
	r := mustTimeValueRange(t, "[0_10)@25", Rational{})
	at := TimeValueFromCount(5, Rational{})

	left, right, err := r.SplitAt(at)
	if err != nil {
		t.Fatal(err)
	}
	if left.String() != "[0_5)@25" || right.String() != "[5_10)@25" {
		t.Errorf("SplitAt = %v, %v", left, right)
	}

	left, right, err = r.SplitAfter(at)
	if err != nil {
		t.Fatal(err)
	}
	if left.String() != "[0_6)@25" || right.String() != "[6_10)@25" {
		t.Errorf("SplitAfter = %v, %v", left, right)
	}

	if _, _, err := r.SplitAt(TimeValueFromCount(10, Rational{})); err == nil {
		t.Error("splitting outside the range should fail")
	}
}

func TestTimeValueRangeExcluding(t *testing.T) {
	r := mustTimeValueRange(t, "[0_10)@25", Rational{})

	got := r.ExcludingUpToEndOf(mustTimeValueRange(t, "[0_5)@25", Rational{}))
	if got.String() != "[5_10)@25" {
		t.Errorf("ExcludingUpToEndOf([0_5)) = %v, want [5_10)@25", got)
	}

	got = r.ExcludingBeforeStartOf(mustTimeValueRange(t, "[5_8)@25", Rational{}))
	if got.String() != "[0_5)@25" {
		t.Errorf("ExcludingBeforeStartOf([5_8)) = %v, want [0_5)@25", got)
	}

	// an earlier range removes nothing
	got = r.ExcludingUpToEndOf(mustTimeValueRange(t, "[-5_-2)@25", Rational{}))
	if !got.Equal(r) {
		t.Errorf("ExcludingUpToEndOf(earlier) = %v, want %v", got, r)
	}

	// a range covering the end leaves nothing
	got = r.ExcludingBeforeStartOf(mustTimeValueRange(t, "[-5_-2)@25", Rational{}))
	if !got.IsEmpty() {
		t.Errorf("ExcludingBeforeStartOf(earlier) = %v, want empty", got)
	}
}

func TestTimeValueRangeSetOperations(t *testing.T) {
	a := mustTimeValueRange(t, "[0_10)@25", Rational{})
	b := mustTimeValueRange(t, "[5_15)@25", Rational{})
	c := mustTimeValueRange(t, "[10_20)@25", Rational{})

	if got := a.IntersectWith(b); got.String() != "[5_10)@25" {
		t.Errorf("IntersectWith = %v, want [5_10)@25", got)
	}
	if !a.IsEarlierThan(c) || !c.IsLaterThan(a) || !a.IsContiguousWith(c) {
		t.Error("ordering of [0_10) and [10_20) is wrong")
	}

	union, err := a.UnionWith(c)
	if err != nil {
		t.Fatal(err)
	}
	if union.String() != "[0_20)@25" {
		t.Errorf("UnionWith = %v, want [0_20)@25", union)
	}

	gap := a.Between(mustTimeValueRange(t, "[15_20)@25", Rational{}))
	if gap.String() != "[10_15)@25" {
		t.Errorf("Between = %v, want [10_15)@25", gap)
	}

	if !a.ContainsSubrange(mustTimeValueRange(t, "[2_4)@25", Rational{})) || a.ContainsSubrange(b) {
		t.Error("ContainsSubrange is wrong")
	}
}

func TestTimeValueRangeValues(t *testing.T) {
	r := mustTimeValueRange(t, "[0_3)@25", Rational{})

	seq, err := r.Values()
	if err != nil {
		t.Fatal(err)
	}
	var got []int64
	for v := range seq {
		count, err := v.AsCount()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, count)
	}
	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Errorf("Values = %v, want [0 1 2]", got)
	}

	seq, err = r.ReversedValues()
	if err != nil {
		t.Fatal(err)
	}
	got = got[:0]
	for v := range seq {
		count, _ := v.AsCount()
		got = append(got, count)
	}
	if len(got) != 3 || got[0] != 2 || got[1] != 1 || got[2] != 0 {
		t.Errorf("ReversedValues = %v, want [2 1 0]", got)
	}

	seq, err = TimeValueNever(Rate(25)).Values()
	if err != nil {
		t.Fatal(err)
	}
	for range seq {
		t.Fatal("the empty range should yield no values")
	}

	if _, err := mustTimeValueRange(t, "[0:0_1:0)", Rational{}).Values(); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Values without a rate: err = %v, want ErrInvalidValue", err)
	}
	if _, err := mustTimeValueRange(t, "_10)@25", Rational{}).Values(); err == nil {
		t.Error("Values with no start should fail")
	}

	// a negative rate cannot convert the bounds to counts
	bad := NewTimeValueRange(
		TimeValueFromOffset(TimeOffset{}, Rational{}),
		TimeValueFromOffset(NewTimeOffset(10, 0, 1), Rational{}),
		IncludeStart, RateOf(-25, 1))
	if _, err := bad.Values(); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Values with a negative rate: err = %v, want ErrInvalidValue", err)
	}
	if _, err := bad.ReversedValues(); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("ReversedValues with a negative rate: err = %v, want ErrInvalidValue", err)
	}
}

func TestTimeValueRangeSubranges(t *testing.T) {
	tr := mustTimeRange(t, "[0:0_0:100000000)")
	r := TimeValueRangeFromTimeRange(tr, Rational{})

	got := collectRanges(r.Subranges(Rate(25)))
	want := []string{
		"[0:0_0:40000000)",
		"[0:40000000_0:80000000)",
		"[0:80000000_0:100000000)",
	}
	if len(got) != len(want) {
		t.Fatalf("Subranges = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Subranges[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// with no usable rate the range comes back whole
	got = collectRanges(r.Subranges(Rational{}))
	if len(got) != 1 || got[0] != r.String() {
		t.Errorf("Subranges with no rate = %v, want the range itself", got)
	}
}

func TestTimeValueRangeMergeIntoOrderedRanges(t *testing.T) {
	rate := Rate(25)
	existing := rangeSeq(
		mustTimeValueRange(t, "[0_2)@25", Rational{}),
		mustTimeValueRange(t, "[10_12)@25", Rational{}),
	)

	got := collectRanges(mustTimeValueRange(t, "[5_8)@25", Rational{}).MergeIntoOrderedRanges(existing))
	want := []string{"[0_2)@25", "[5_8)@25", "[10_12)@25"}
	if len(got) != len(want) {
		t.Fatalf("merge = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("merge[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// overlapping ranges coalesce
	existing = rangeSeq(
		mustTimeValueRange(t, "[0_2)@25", Rational{}),
		mustTimeValueRange(t, "[10_12)@25", Rational{}),
	)
	got = collectRanges(NewTimeValueRange(
		TimeValueFromCount(1, Rational{}), TimeValueFromCount(11, Rational{}), IncludeStart, rate,
	).MergeIntoOrderedRanges(existing))
	if len(got) != 1 || got[0] != "[0_12)@25" {
		t.Errorf("overlapping merge = %v, want [0_12)@25", got)
	}
}

func TestTimeValueRangeComplementOfOrderedSubranges(t *testing.T) {
	r := mustTimeValueRange(t, "[0_10)@25", Rational{})
	subs := rangeSeq(
		mustTimeValueRange(t, "[2_4)@25", Rational{}),
		mustTimeValueRange(t, "[6_8)@25", Rational{}),
	)

	got := collectRanges(r.ComplementOfOrderedSubranges(subs))
	want := []string{"[0_2)@25", "[4_6)@25", "[8_10)@25"}
	if len(got) != len(want) {
		t.Fatalf("complement = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("complement[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTimeValueRangeFromStartLength(t *testing.T) {
	r, err := TimeValueRangeFromStartLength(
		TimeValueFromCount(0, Rational{}), TimeValueFromCount(10, Rational{}), IncludeStart, Rate(25))
	if err != nil {
		t.Fatal(err)
	}
	if r.String() != "[0_10)@25" {
		t.Errorf("TimeValueRangeFromStartLength = %v, want [0_10)@25", r)
	}

	_, err = TimeValueRangeFromStartLength(
		TimeValueFromCount(0, Rational{}), TimeValueFromCount(-1, Rational{}), IncludeStart, Rate(25))
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("negative length: err = %v, want ErrInvalidValue", err)
	}
}

func TestTimeValueRangeFromCountRange(t *testing.T) {
	r := TimeValueRangeFromCountRange(CountRangeFromSingle(5), Rate(25))
	if r.String() != "[5_6)@25" {
		t.Errorf("TimeValueRangeFromCountRange = %v, want [5_6)@25", r)
	}

	cr, err := r.AsCountRange()
	if err != nil {
		t.Fatal(err)
	}
	if !cr.Equal(CountRangeFromSingle(5)) {
		t.Errorf("round trip = %v, want [5_6)", cr)
	}
}

func TestTimeValueRangeMarshalText(t *testing.T) {
	r := mustTimeValueRange(t, "[0_10)@25", Rational{})
	data, err := r.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[0_10)@25" {
		t.Errorf("MarshalText = %q", data)
	}

	var got TimeValueRange
	if err := got.UnmarshalText(data); err != nil {
		t.Fatal(err)
	}
	if !got.Equal(r) {
		t.Errorf("UnmarshalText = %v, want %v", got, r)
	}
}
