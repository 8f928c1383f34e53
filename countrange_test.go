package mediatime

import "testing"

func mustCountRange(t *testing.T, s string) CountRange {
	t.Helper()
	cr, err := ParseCountRange(s)
	if err != nil {
		t.Fatalf("ParseCountRange(%q): %v", s, err)
	}
	return cr
}

func TestCountRangeCanonicalForm(t *testing.T) {
	tests := []struct {
		name string
		in   CountRange
		want string
	}{
		{name: "HalfOpenStays", in: NewCountRange(0, 10, IncludeStart), want: "[0_10)"},
		{name: "IncludedEndBecomesNextExcluded", in: NewCountRange(0, 10, Inclusive), want: "[0_11)"},
		{name: "ExcludedStartMovesOn", in: NewCountRange(0, 10, IncludeEnd), want: "[1_11)"},
		{name: "Single", in: CountRangeFromSingle(5), want: "[5_6)"},
		{name: "SinglePointHalfOpenIsEmpty", in: NewCountRange(5, 5, IncludeStart), want: "()"},
		{name: "ReversedIsEmpty", in: NewCountRange(10, 0, Inclusive), want: "()"},
		{name: "FromStart", in: CountRangeFromStart(5, IncludeStart), want: "[5_"},
		{name: "FromEndExclusive", in: CountRangeFromEnd(10, Exclusive), want: "_10)"},
		{name: "Eternity", in: CountEternity(), want: "_"},
		{name: "Never", in: CountNever(), want: "()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseCountRange(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    CountRange
		wantErr bool
	}{
		{name: "HalfOpen", in: "[5_6)", want: CountRangeFromSingle(5)},
		{name: "Single", in: "5", want: CountRangeFromSingle(5)},
		{name: "Inclusive", in: "0_10", want: NewCountRange(0, 10, Inclusive)},
		{name: "Negative", in: "[-10_-5)", want: NewCountRange(-10, -5, IncludeStart)},
		{name: "Eternity", in: "_", want: CountEternity()},
		{name: "Never", in: "()", want: CountNever()},
		{name: "FromStart", in: "5_", want: CountRangeFromStart(5, IncludeStart)},
		{name: "BadCount", in: "[x_10)", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCountRange(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCountRange(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && !got.Equal(tt.want) {
				t.Errorf("ParseCountRange(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCountRangeContains(t *testing.T) {
	cr := NewCountRange(0, 10, IncludeStart)
	for count, want := range map[int64]bool{-1: false, 0: true, 9: true, 10: false} {
		if got := cr.Contains(count); got != want {
			t.Errorf("%v.Contains(%d) = %v, want %v", cr, count, got, want)
		}
	}

	length, ok := cr.Length()
	if !ok || length != 10 {
		t.Errorf("Length() = %d, %v, want 10, true", length, ok)
	}
	if l, _ := CountRangeFromSingle(5).Length(); l != 1 {
		t.Errorf("single count length = %d, want 1", l)
	}
}

func TestCountRangeSetOperations(t *testing.T) {
	a := mustCountRange(t, "[0_10)")
	b := mustCountRange(t, "[5_15)")
	c := mustCountRange(t, "[10_20)")

	if got := a.IntersectWith(b); !got.Equal(mustCountRange(t, "[5_10)")) {
		t.Errorf("IntersectWith = %v, want [5_10)", got)
	}
	if got := a.IntersectWith(c); !got.IsEmpty() {
		t.Errorf("IntersectWith at the meeting point = %v, want empty", got)
	}

	union, err := a.UnionWith(c)
	if err != nil {
		t.Fatal(err)
	}
	if !union.Equal(mustCountRange(t, "[0_20)")) {
		t.Errorf("UnionWith = %v, want [0_20)", union)
	}
	if _, err := a.UnionWith(mustCountRange(t, "[15_20)")); err == nil {
		t.Error("UnionWith should reject ranges with a gap between them")
	}

	if !a.IsEarlierThan(c) || !c.IsLaterThan(a) || !a.IsContiguousWith(c) {
		t.Error("ordering of [0_10) and [10_20) is wrong")
	}
	if !a.OverlapsWith(b) || !b.StartsInside(a) {
		t.Error("overlap of [0_10) and [5_15) is wrong")
	}
	if !a.ContainsSubrange(mustCountRange(t, "[2_4)")) || a.ContainsSubrange(b) {
		t.Error("ContainsSubrange is wrong")
	}
}

func TestCountRangeSplitAndBetween(t *testing.T) {
	cr := mustCountRange(t, "[0_10)")
	left, right, err := cr.SplitAt(5)
	if err != nil {
		t.Fatal(err)
	}
	if !left.Equal(mustCountRange(t, "[0_5)")) || !right.Equal(mustCountRange(t, "[5_10)")) {
		t.Errorf("SplitAt(5) = %v, %v", left, right)
	}
	if _, _, err := cr.SplitAt(10); err == nil {
		t.Error("splitting outside the range should fail")
	}

	gap := mustCountRange(t, "[0_3)").Between(mustCountRange(t, "[5_10)"))
	if !gap.Equal(mustCountRange(t, "[3_5)")) {
		t.Errorf("Between = %v, want [3_5)", gap)
	}
}

func TestCountRangeExtendToEncompass(t *testing.T) {
	got := mustCountRange(t, "[0_3)").ExtendToEncompass(mustCountRange(t, "[7_9)"))
	if !got.Equal(mustCountRange(t, "[0_9)")) {
		t.Errorf("ExtendToEncompass = %v, want [0_9)", got)
	}
}

func TestCountRangeMarshalText(t *testing.T) {
	cr := CountRangeFromSingle(5)
	data, err := cr.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[5_6)" {
		t.Errorf("MarshalText = %q, want %q", data, "[5_6)")
	}

	var got CountRange
	if err := got.UnmarshalText(data); err != nil {
		t.Fatal(err)
	}
	if !got.Equal(cr) {
		t.Errorf("UnmarshalText = %v, want %v", got, cr)
	}
}
