package mediatime

import (
	"fmt"
	"strconv"
	"strings"
)

// Rational is an exact num/den pair used for media rates, e.g. 25/1 or
// 30000/1001 Hz. The zero value means "no rate".
type Rational struct {
	Num int64
	Den int64
}

// RateOf builds a Rational from a numerator and denominator without
// reducing it.
func RateOf(num, den int64) Rational {
	return Rational{Num: num, Den: den}
}

// Rate builds an integer rate, num/1.
func Rate(num int64) Rational {
	return Rational{Num: num, Den: 1}
}

// ParseRational parses "num" or "num/den" strings. Rates must be
// positive; zero or negative parts are rejected.
func ParseRational(s string) (Rational, error) {
	numStr, denStr, slash := strings.Cut(s, "/")
	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return Rational{}, invalidValuef("rational numerator %q", s)
	}
	den := int64(1)
	if slash {
		den, err = strconv.ParseInt(denStr, 10, 64)
		if err != nil {
			return Rational{}, invalidValuef("rational denominator %q", s)
		}
	}
	if num <= 0 || den <= 0 {
		return Rational{}, invalidValuef("non-positive rate %q", s)
	}
	return Rational{Num: num, Den: den}, nil
}

// IsZero reports whether r is the "no rate" zero value.
func (r Rational) IsZero() bool {
	return r.Num == 0 && r.Den == 0
}

// IsValid reports whether r is a usable rate: both parts positive.
func (r Rational) IsValid() bool {
	return r.Num > 0 && r.Den > 0
}

// Reduce returns r with the numerator and denominator divided by their
// greatest common divisor. Conversion arithmetic always works on the
// reduced form so that equal rates behave identically.
func (r Rational) Reduce() Rational {
	if !r.IsValid() {
		return r
	}
	g := gcd(r.Num, r.Den)
	return Rational{Num: r.Num / g, Den: r.Den / g}
}

func (r Rational) String() string {
	if r.Den == 1 {
		return strconv.FormatInt(r.Num, 10)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
