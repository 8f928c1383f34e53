package mediatime

import "testing"

func TestParseRational(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Rational
		wantErr bool
	}{
		{name: "Integer", in: "25", want: Rational{Num: 25, Den: 1}},
		{name: "Fraction", in: "30000/1001", want: Rational{Num: 30000, Den: 1001}},
		{name: "BadNumerator", in: "abc", wantErr: true},
		{name: "BadDenominator", in: "30000/x", wantErr: true},
		{name: "Empty", in: "", wantErr: true},
		{name: "NegativeNumerator", in: "-25", wantErr: true},
		{name: "NegativeDenominator", in: "25/-1", wantErr: true},
		{name: "Zero", in: "0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRational(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRational(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRational(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRationalReduce(t *testing.T) {
	tests := []struct {
		in, want Rational
	}{
		{RateOf(50, 2), Rational{Num: 25, Den: 1}},
		{RateOf(30000, 1001), Rational{Num: 30000, Den: 1001}},
		{RateOf(48000, 1000), Rational{Num: 48, Den: 1}},
		{Rational{}, Rational{}},
	}
	for _, tt := range tests {
		if got := tt.in.Reduce(); got != tt.want {
			t.Errorf("%v.Reduce() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRationalString(t *testing.T) {
	if got := Rate(25).String(); got != "25" {
		t.Errorf("Rate(25).String() = %q, want %q", got, "25")
	}
	if got := RateOf(30000, 1001).String(); got != "30000/1001" {
		t.Errorf("RateOf(30000, 1001).String() = %q, want %q", got, "30000/1001")
	}
}

func TestRationalIsValid(t *testing.T) {
	tests := []struct {
		in   Rational
		want bool
	}{
		{Rate(25), true},
		{RateOf(30000, 1001), true},
		{Rational{}, false},
		{RateOf(-25, 1), false},
		{RateOf(25, 0), false},
	}
	for _, tt := range tests {
		if got := tt.in.IsValid(); got != tt.want {
			t.Errorf("%v.IsValid() = %v, want %v", tt.in, got, tt.want)
		}
	}
}
