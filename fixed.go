package mediatime

import (
	"math"
	"math/big"
	"math/bits"
	"strconv"
	"strings"
)

const (
	// MaxNanosec is the number of nanoseconds in one second.
	MaxNanosec = 1000000000

	// MaxSeconds is one more than the largest representable whole
	// second count (2^48). Arithmetic that would reach it saturates at
	// MaxSeconds-1 seconds and MaxNanosec-1 nanoseconds.
	MaxSeconds = 281474976710656
)

// Rounding selects the direction a value moves when it is snapped to a
// coarser grid. Down always moves toward minus infinity and Up toward
// plus infinity, for negative values as well as positive ones.
//
// RoundIn through RoundEnd only make sense for ranges and are rejected
// by the scalar conversions.
type Rounding int

const (
	RoundDown Rounding = iota
	RoundNearest
	RoundUp
	RoundIn
	RoundOut
	RoundStart
	RoundEnd
)

// fixed is the shared numeric core of TimeOffset and Timestamp: a
// sign-and-magnitude fixed-point count of seconds and nanoseconds.
// The zero value is zero seconds, which is always non-negative.
type fixed struct {
	sec int64 // 0 <= sec < MaxSeconds
	ns  int32 // 0 <= ns < MaxNanosec
	neg bool
}

var satMagnitude = fixed{sec: MaxSeconds - 1, ns: MaxNanosec - 1}

// makeFixed normalises an arbitrary (sec, ns, neg) triple: nanosecond
// overflow rolls into seconds, a negative second count folds into a
// flipped sign, out-of-range magnitudes saturate, and zero is forced
// positive.
func makeFixed(sec, ns int64, neg bool) fixed {
	carry := floorDiv(ns, MaxNanosec)
	ns = floorMod(ns, MaxNanosec)
	switch {
	case carry > 0 && sec > math.MaxInt64-carry:
		sec = math.MaxInt64
	case carry < 0 && sec < math.MinInt64-carry:
		sec = math.MinInt64 + 1
	default:
		sec += carry
	}

	if sec < 0 {
		if sec == math.MinInt64 {
			sec++
		}
		sec = -sec
		ns = -ns
		neg = !neg
		if ns < 0 {
			sec--
			ns += MaxNanosec
		}
	}

	if sec >= MaxSeconds {
		sec = MaxSeconds - 1
		ns = MaxNanosec - 1
	}
	if sec == 0 && ns == 0 {
		neg = false
	}
	return fixed{sec: sec, ns: int32(ns), neg: neg}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}

func (f fixed) sign() int {
	if f.neg {
		return -1
	}
	return 1
}

func (f fixed) signedSec() int64 {
	if f.neg {
		return -f.sec
	}
	return f.sec
}

func (f fixed) signedNs() int64 {
	if f.neg {
		return -int64(f.ns)
	}
	return int64(f.ns)
}

func (f fixed) isZero() bool {
	return f.sec == 0 && f.ns == 0
}

func (f fixed) abs() fixed {
	f.neg = false
	return f
}

func (f fixed) negate() fixed {
	if f.isZero() {
		return f
	}
	f.neg = !f.neg
	return f
}

// cmp orders lexicographically on (sign, sec, ns), negating the
// component comparison when both values are negative.
func (f fixed) cmp(o fixed) int {
	switch {
	case f.neg != o.neg:
		return f.sign()
	case f.sec < o.sec:
		return -f.sign()
	case f.sec > o.sec:
		return f.sign()
	case f.ns < o.ns:
		return -f.sign()
	case f.ns > o.ns:
		return f.sign()
	}
	return 0
}

// fixedAdd and fixedSub work on the signed second and nanosecond
// components separately and let makeFixed resolve the carries and the
// final sign. No intermediate goes through floating point.
func fixedAdd(a, b fixed) fixed {
	return makeFixed(a.signedSec()+b.signedSec(), a.signedNs()+b.signedNs(), false)
}

func fixedSub(a, b fixed) fixed {
	return makeFixed(a.signedSec()-b.signedSec(), a.signedNs()-b.signedNs(), false)
}

// fixedMul scales the magnitude by |n|, flipping the sign when n is
// negative. The second and nanosecond components are multiplied
// separately in 128 bits and re-carried so a large n cannot corrupt
// the nanosecond carry; anything past the representable range
// saturates.
func fixedMul(a fixed, n int64) fixed {
	neg := a.neg != (n < 0)
	nu := uint64(n)
	if n < 0 {
		nu = -nu
	}

	nsHi, nsLo := bits.Mul64(uint64(a.ns), nu)
	carry, rem := bits.Div64(nsHi, nsLo, MaxNanosec)

	secHi, secLo := bits.Mul64(uint64(a.sec), nu)
	if secHi != 0 {
		return fixed{sec: satMagnitude.sec, ns: satMagnitude.ns, neg: neg}
	}
	sec, overflow := bits.Add64(secLo, carry, 0)
	if overflow != 0 || sec >= MaxSeconds {
		return fixed{sec: satMagnitude.sec, ns: satMagnitude.ns, neg: neg}
	}

	out := fixed{sec: int64(sec), ns: int32(rem), neg: neg}
	if out.isZero() {
		out.neg = false
	}
	return out
}

// fixedDiv divides by n rounding toward minus infinity. The remainder
// of the whole-second division is redistributed into the nanosecond
// domain so no precision is lost near the boundary.
func fixedDiv(a fixed, n int64) fixed {
	neg := a.neg != (n < 0)
	nu := uint64(n)
	if n < 0 {
		nu = -nu
	}

	sec := uint64(a.sec) / nu
	secRem := uint64(a.sec) % nu

	hi, lo := bits.Mul64(secRem, MaxNanosec)
	lo, c := bits.Add64(lo, uint64(a.ns), 0)
	hi += c
	ns, nsRem := bits.Div64(hi, lo, nu)

	sec += ns / MaxNanosec
	ns %= MaxNanosec

	if neg && nsRem != 0 {
		ns++
		if ns == MaxNanosec {
			sec++
			ns = 0
		}
	}
	return makeFixed(int64(sec), int64(ns), neg)
}

// intervalFraction returns the duration of 1/factor of a sample
// interval at rate, in integer arithmetic throughout. rate must be
// valid and reduced, factor >= 1.
func intervalFraction(rate Rational, factor int64) fixed {
	div := rate.Num * factor
	sec := rate.Den / div
	rem := rate.Den % div

	hi, lo := bits.Mul64(uint64(rem), MaxNanosec)
	ns, _ := bits.Div64(hi, lo, uint64(div))
	return makeFixed(sec, int64(ns), false)
}

// mirrorRounding flips Up and Down for negative magnitudes so that the
// rounding direction is applied to the absolute value.
func mirrorRounding(rnd Rounding, neg bool) Rounding {
	if !neg {
		return rnd
	}
	switch rnd {
	case RoundUp:
		return RoundDown
	case RoundDown:
		return RoundUp
	}
	return rnd
}

var bigMaxNanosec = big.NewInt(MaxNanosec)

// fixedToCount converts to a sample count at rate. The seconds-derived
// and nanosecond-derived contributions are combined over a common
// nanosecond denominator before the single final division, so counts
// stay exact whenever the represented time is an exact sample multiple
// even if neither component is individually divisible.
func fixedToCount(f fixed, rate Rational, rnd Rounding) (int64, error) {
	if !rate.IsValid() {
		return 0, invalidValuef("invalid rate %s", rate)
	}
	if rnd != RoundDown && rnd != RoundNearest && rnd != RoundUp {
		return 0, invalidValuef("rounding %d is not valid for a scalar conversion", rnd)
	}
	rate = rate.Reduce()

	abs := f.abs()
	switch mirrorRounding(rnd, f.neg) {
	case RoundNearest:
		abs = fixedAdd(abs, intervalFraction(rate, 2))
	case RoundUp:
		if step := fixedSub(intervalFraction(rate, 1), fixed{ns: 1}); !step.neg && !step.isZero() {
			abs = fixedAdd(abs, step)
		}
	}

	// count = (sec*1e9 + ns) * num / (den*1e9)
	v := new(big.Int).SetInt64(abs.sec)
	v.Mul(v, bigMaxNanosec)
	v.Add(v, big.NewInt(int64(abs.ns)))
	v.Mul(v, big.NewInt(rate.Num))
	v.Quo(v, new(big.Int).Mul(big.NewInt(rate.Den), bigMaxNanosec))

	count := clampInt64(v)
	if f.neg {
		count = -count
	}
	return count, nil
}

// fixedFromCount converts a sample count at rate into seconds and
// nanoseconds, flooring the sub-nanosecond remainder.
func fixedFromCount(count int64, rate Rational) (fixed, error) {
	if !rate.IsValid() {
		return fixed{}, invalidValuef("invalid rate %s", rate)
	}
	rate = rate.Reduce()

	neg := count < 0
	abs := uint64(count)
	if neg {
		abs = -abs
	}

	total := new(big.Int).Mul(new(big.Int).SetUint64(abs), big.NewInt(rate.Den))
	sec, rem := new(big.Int).QuoRem(total, big.NewInt(rate.Num), new(big.Int))
	ns := rem.Mul(rem, bigMaxNanosec).Quo(rem, big.NewInt(rate.Num))

	if !sec.IsInt64() || sec.Int64() >= MaxSeconds {
		return fixed{sec: satMagnitude.sec, ns: satMagnitude.ns, neg: neg}, nil
	}
	return makeFixed(sec.Int64(), ns.Int64(), neg), nil
}

func clampInt64(v *big.Int) int64 {
	if v.IsInt64() {
		return v.Int64()
	}
	if v.Sign() < 0 {
		return math.MinInt64
	}
	return math.MaxInt64
}

// fixedToUnit converts to a whole number of nsPerUnit-nanosecond
// units, e.g. nsPerUnit=1e6 for milliseconds.
func fixedToUnit(f fixed, nsPerUnit int64, rnd Rounding) int64 {
	var roundNs int64
	switch mirrorRounding(rnd, f.neg) {
	case RoundNearest:
		roundNs = nsPerUnit / 2
	case RoundUp:
		roundNs = nsPerUnit - 1
	}
	units := f.sec*(MaxNanosec/nsPerUnit) + (int64(f.ns)+roundNs)/nsPerUnit
	if f.neg {
		units = -units
	}
	return units
}

// nanoseconds collapses to a single signed nanosecond count,
// saturating at the int64 boundary for magnitudes beyond +/-2^63 ns.
func (f fixed) nanoseconds() int64 {
	hi, lo := bits.Mul64(uint64(f.sec), MaxNanosec)
	lo, c := bits.Add64(lo, uint64(f.ns), 0)
	hi += c
	if f.neg {
		if hi != 0 || lo > uint64(math.MaxInt64)+1 {
			return math.MinInt64
		}
		return -int64(lo)
	}
	if hi != 0 || lo > uint64(math.MaxInt64) {
		return math.MaxInt64
	}
	return int64(lo)
}

func fixedFromNanoseconds(ns int64) fixed {
	neg := ns < 0
	abs := uint64(ns)
	if neg {
		abs = -abs
	}
	return makeFixed(int64(abs/MaxNanosec), int64(abs%MaxNanosec), neg)
}

// toSecNsec renders the canonical "[-]<sec>:<nsec>" form with the
// nanoseconds un-padded.
func (f fixed) toSecNsec() string {
	var b strings.Builder
	if f.neg {
		b.WriteByte('-')
	}
	b.WriteString(strconv.FormatInt(f.sec, 10))
	b.WriteByte(':')
	b.WriteString(strconv.FormatInt(int64(f.ns), 10))
	return b.String()
}

// toSecFrac renders "[-]<sec>.<fraction>" with trailing zeros stripped
// unless fixedSize is set, in which case the fraction is always nine
// digits.
func (f fixed) toSecFrac(fixedSize bool) string {
	var b strings.Builder
	if f.neg {
		b.WriteByte('-')
	}
	b.WriteString(strconv.FormatInt(f.sec, 10))
	b.WriteByte('.')
	b.WriteString(fractionalSeconds(int64(f.ns), fixedSize))
	return b.String()
}

func fractionalSeconds(ns int64, fixedSize bool) string {
	div := int64(MaxNanosec / 10)
	rem := ns

	var b strings.Builder
	for i := 0; i < 9; i++ {
		if !fixedSize && i > 0 && rem == 0 {
			break
		}
		b.WriteByte(byte('0' + rem/div))
		rem %= div
		div /= 10
	}
	return b.String()
}

// parseSecNsec parses the canonical "[-]<sec>:<nsec>" form, also
// accepting a bare "[-]<sec>".
func parseSecNsec(s string) (fixed, error) {
	secStr, nsStr, hasNs := strings.Cut(s, ":")
	sec, err := strconv.ParseInt(secStr, 10, 64)
	if err != nil {
		return fixed{}, invalidValuef("invalid second:nanosecond format %q", s)
	}
	neg := strings.HasPrefix(secStr, "-")
	if sec < 0 {
		if sec == math.MinInt64 {
			sec = math.MaxInt64
		} else {
			sec = -sec
		}
	}
	var ns int64
	if hasNs {
		ns, err = strconv.ParseInt(nsStr, 10, 64)
		if err != nil {
			return fixed{}, invalidValuef("invalid second:nanosecond format %q", s)
		}
	}
	return makeFixed(sec, ns, neg), nil
}

// parseSecFrac parses the "[-]<sec>.<fraction>" form. Fraction digits
// beyond nanosecond precision are below the representable resolution
// and are dropped.
func parseSecFrac(s string) (fixed, error) {
	secStr, fracStr, hasFrac := strings.Cut(s, ".")
	sec, err := strconv.ParseInt(secStr, 10, 64)
	if err != nil {
		return fixed{}, invalidValuef("invalid second.fraction format %q", s)
	}
	neg := strings.HasPrefix(secStr, "-")
	if sec < 0 {
		if sec == math.MinInt64 {
			sec = math.MaxInt64
		} else {
			sec = -sec
		}
	}
	var ns int64
	if hasFrac {
		ns, err = parseFraction(fracStr)
		if err != nil {
			return fixed{}, invalidValuef("invalid second.fraction format %q", s)
		}
	}
	return makeFixed(sec, ns, neg), nil
}

// parseFraction converts the fractional-second digits to nanoseconds,
// using at most the first nine digits.
func parseFraction(frac string) (int64, error) {
	if frac == "" {
		return 0, invalidValue("empty fraction")
	}
	var ns int64
	mult := int64(MaxNanosec)
	for _, c := range frac {
		if c < '0' || c > '9' {
			return 0, invalidValuef("non-digit %q in fraction", c)
		}
		if mult >= 10 {
			mult /= 10
			ns += mult * int64(c-'0')
		}
	}
	return ns, nil
}
