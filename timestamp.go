package mediatime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// A TimestampSource is any value that can stand in for a Timestamp.
type TimestampSource interface {
	AsTimestamp() Timestamp
}

// A Timestamp is a point in time measured in TAI seconds and
// nanoseconds since the unix epoch. TAI has no leap seconds, so
// timestamp arithmetic is plain fixed-point arithmetic; the leap
// second table is consulted only when converting to or from UTC-based
// representations such as unix time or ISO 8601.
//
// Timestamps before the epoch carry a negative sign. Negative
// timestamps predate the leap second system and convert to UTC with no
// adjustment.
type Timestamp struct {
	v fixed
}

// NewTimestamp builds a timestamp from a second and nanosecond
// magnitude and an overall sign, with the same normalisation as
// NewTimeOffset.
func NewTimestamp(sec, ns int64, sign int) Timestamp {
	return Timestamp{makeFixed(sec, ns, sign < 0)}
}

// ParseTimestamp parses any of the accepted string forms: an SMPTE
// time label, an ISO 8601 UTC time, "<sec>:<nsec>", "<sec>.<fraction>"
// or the literal "now".
func ParseTimestamp(s string) (Timestamp, error) {
	switch {
	case strings.ContainsRune(s, 'F'):
		return TimestampFromSMPTELabel(s)
	case strings.ContainsRune(s, 'T'):
		return TimestampFromISO8601(s)
	case strings.TrimSpace(s) == "now":
		return Now(), nil
	case strings.ContainsRune(s, '.'):
		v, err := parseSecFrac(s)
		return Timestamp{v}, err
	default:
		v, err := parseSecNsec(s)
		return Timestamp{v}, err
	}
}

// TimestampFromCount returns the timestamp of sample count at rate.
func TimestampFromCount(count int64, rate Rational) (Timestamp, error) {
	v, err := fixedFromCount(count, rate)
	return Timestamp{v}, err
}

// TimestampFromUnix converts a UTC-based unix time to TAI. A time
// inside an inserted leap second is given as the preceding unix second
// with isLeap set. Times before the epoch (sign < 0) predate leap
// seconds and convert unadjusted.
func TimestampFromUnix(sec, ns int64, sign int, isLeap bool) Timestamp {
	if sign < 0 {
		return NewTimestamp(sec, ns, -1)
	}
	return NewTimestamp(sec+leapSecondsAtUnix(sec, isLeap), ns, 1)
}

// TimestampFromTime converts a time.Time, applying the leap second
// table. Times inside a leap second cannot be represented by time.Time
// and so cannot arise here.
func TimestampFromTime(t time.Time) Timestamp {
	sec := t.Unix()
	ns := int64(t.Nanosecond())
	sign := 1
	if sec < 0 {
		// time.Time uses floored seconds before the epoch; convert to
		// the sign and magnitude form used here.
		sign = -1
		sec = -sec
		if ns > 0 {
			sec--
			ns = MaxNanosec - ns
		}
	}
	return TimestampFromUnix(sec, ns, sign, false)
}

var smpteLabelRe = regexp.MustCompile(
	`(\d+)-(\d+)-(\d+)T(\d+):(\d+):(\d+)F(\d+) (\d+)/(\d+) UTC([-+])(\d+):(\d+) TAI([-+])(\d+)`)

// TimestampFromSMPTELabel parses an SMPTE ST 12-1 style time label of
// the form "YYYY-MM-DDThh:mm:ssFnn rate_num/rate_den UTC+hh:mm TAI-nn".
// The sample rate and both offsets are taken from the label itself.
func TimestampFromSMPTELabel(label string) (Timestamp, error) {
	m := smpteLabelRe.FindStringSubmatch(label)
	if m == nil {
		return Timestamp{}, invalidValuef("invalid SMPTE time label %q", label)
	}
	f := make([]int64, len(m))
	for i := 1; i < len(m); i++ {
		if m[i] == "-" || m[i] == "+" {
			continue
		}
		v, err := strconv.ParseInt(m[i], 10, 64)
		if err != nil {
			return Timestamp{}, invalidValuef("invalid SMPTE time label %q", label)
		}
		f[i] = v
	}

	var leapSec int64
	if f[6] == 60 {
		leapSec = 1
	}
	localSec := time.Date(int(f[1]), time.Month(f[2]), int(f[3]),
		int(f[4]), int(f[5]), int(f[6]-leapSec), 0, time.UTC).Unix()

	utcSign := int64(1)
	if m[10] == "-" {
		utcSign = -1
	}
	taiSign := int64(1)
	if m[13] == "-" {
		taiSign = -1
	}

	rate := RateOf(f[8], f[9])
	taiSec := localSec + leapSec - utcSign*(f[11]*3600+f[12]*60) - taiSign*f[14]

	count, err := NewTimestamp(taiSec, 0, 1).ToCount(rate, RoundUp)
	if err != nil {
		return Timestamp{}, err
	}
	return TimestampFromCount(count+f[7], rate)
}

// TimestampFromISO8601 parses "YYYY-MM-DDThh:mm:ss.sZ" as a UTC time,
// converting through the leap second table. A seconds field of 60
// denotes an inserted leap second.
func TimestampFromISO8601(s string) (Timestamp, error) {
	if !strings.HasSuffix(s, "Z") {
		return Timestamp{}, invalidValue("missing 'Z' at end of ISO 8601 UTC time")
	}
	year, month, day, hour, min, sec, ns, err := parseISO8601(strings.TrimSuffix(s, "Z"))
	if err != nil {
		return Timestamp{}, err
	}

	isLeap := sec == 60
	if isLeap {
		sec--
	}
	// time.Date normalises out-of-range fields, so a round-trip mismatch
	// means the string named a date that does not exist.
	bd := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
	if bd.Year() != year || bd.Month() != time.Month(month) || bd.Day() != day ||
		bd.Hour() != hour || bd.Minute() != min || bd.Second() != sec {
		return Timestamp{}, invalidValuef("invalid ISO 8601 UTC date %q", s)
	}
	unixSec := bd.Unix()
	sign := 1
	if unixSec < 0 {
		sign = -1
		unixSec = -unixSec
		if ns > 0 {
			// The fraction was parsed from a forward-running clock
			// reading; flip it into the magnitude of a negative time.
			unixSec--
			ns = MaxNanosec - ns
		}
	}
	return TimestampFromUnix(unixSec, ns, sign, isLeap), nil
}

func parseISO8601(s string) (year, month, day, hour, min, sec int, ns int64, err error) {
	datePart, timePart, ok := strings.Cut(s, "T")
	if !ok {
		return 0, 0, 0, 0, 0, 0, 0, invalidValuef("invalid ISO 8601 UTC format %q", s)
	}
	date := strings.Split(datePart, "-")
	clock := strings.Split(timePart, ":")
	if len(date) != 3 || len(clock) != 3 {
		return 0, 0, 0, 0, 0, 0, 0, invalidValuef("invalid ISO 8601 UTC format %q", s)
	}

	secStr, fracStr, hasFrac := strings.Cut(clock[2], ".")
	fields := []string{date[0], date[1], date[2], clock[0], clock[1], secStr}
	nums := make([]int, len(fields))
	for i, f := range fields {
		nums[i], err = strconv.Atoi(f)
		if err != nil {
			return 0, 0, 0, 0, 0, 0, 0, invalidValuef("invalid ISO 8601 UTC format %q", s)
		}
	}
	if hasFrac {
		ns, err = parseFraction(fracStr)
		if err != nil {
			return 0, 0, 0, 0, 0, 0, 0, invalidValuef("invalid ISO 8601 UTC format %q", s)
		}
	}
	return nums[0], nums[1], nums[2], nums[3], nums[4], nums[5], ns, nil
}

// Sec returns the whole TAI second part of the magnitude.
func (t Timestamp) Sec() int64 { return t.v.sec }

// Ns returns the nanosecond part of the magnitude, always in [0, 1e9).
func (t Timestamp) Ns() int64 { return int64(t.v.ns) }

// Sign returns -1 for pre-epoch timestamps and 1 otherwise.
func (t Timestamp) Sign() int { return t.v.sign() }

func (t Timestamp) IsZero() bool { return t.v.isZero() }

// Add shifts the timestamp forward by an offset.
func (t Timestamp) Add(o TimeOffset) Timestamp { return Timestamp{fixedAdd(t.v, o.v)} }

// SubOffset shifts the timestamp backward by an offset.
func (t Timestamp) SubOffset(o TimeOffset) Timestamp { return Timestamp{fixedSub(t.v, o.v)} }

// Sub returns the duration from o to t.
func (t Timestamp) Sub(o Timestamp) TimeOffset { return TimeOffset{fixedSub(t.v, o.v)} }

func (t Timestamp) Mul(n int64) Timestamp { return Timestamp{fixedMul(t.v, n)} }

func (t Timestamp) Div(n int64) Timestamp { return Timestamp{fixedDiv(t.v, n)} }

func (t Timestamp) Compare(o Timestamp) int { return t.v.cmp(o.v) }

func (t Timestamp) Equal(o Timestamp) bool { return t.v == o.v }

func (t Timestamp) Before(o Timestamp) bool { return t.v.cmp(o.v) < 0 }

func (t Timestamp) After(o Timestamp) bool { return t.v.cmp(o.v) > 0 }

// ToCount converts to a whole number of sample intervals at rate.
func (t Timestamp) ToCount(rate Rational, rnd Rounding) (int64, error) {
	return fixedToCount(t.v, rate, rnd)
}

// Normalise snaps the timestamp onto the sample grid of rate.
func (t Timestamp) Normalise(rate Rational, rnd Rounding) (Timestamp, error) {
	count, err := t.ToCount(rate, rnd)
	if err != nil {
		return Timestamp{}, err
	}
	return TimestampFromCount(count, rate)
}

// ToPhaseOffset returns the distance back to the previous sample edge
// at rate.
func (t Timestamp) ToPhaseOffset(rate Rational) (TimeOffset, error) {
	norm, err := t.Normalise(rate, RoundDown)
	if err != nil {
		return TimeOffset{}, err
	}
	return t.Sub(norm), nil
}

// GetLeapSeconds returns the TAI-UTC offset applied when converting
// this timestamp to UTC. Pre-epoch timestamps return zero.
func (t Timestamp) GetLeapSeconds() int64 {
	if t.v.neg {
		return 0
	}
	leap, _ := leapSecondsAtTAI(t.v.sec)
	return leap
}

// ToUnix converts to a UTC-based unix time as a second and nanosecond
// magnitude plus a sign. isLeap is set when the timestamp falls inside
// an inserted leap second, in which case sec holds the preceding unix
// second.
func (t Timestamp) ToUnix() (sec, ns int64, sign int, isLeap bool) {
	if t.v.neg {
		return t.v.sec, int64(t.v.ns), -1, false
	}
	leap, isLeap := leapSecondsAtTAI(t.v.sec)
	return t.v.sec - leap, int64(t.v.ns), 1, isLeap
}

// Time converts to a time.Time in UTC. A timestamp inside an inserted
// leap second maps onto the preceding second, as time.Time cannot
// represent second 60.
func (t Timestamp) Time() time.Time {
	sec, ns, sign, _ := t.ToUnix()
	if sign < 0 {
		sec = -sec
		if ns > 0 {
			sec--
			ns = MaxNanosec - ns
		}
	}
	return time.Unix(sec, ns).UTC()
}

// ToISO8601 renders "YYYY-MM-DDThh:mm:ss.sZ" in UTC with a fixed
// nine-digit fraction. Timestamps inside an inserted leap second render
// with a seconds field of 60.
func (t Timestamp) ToISO8601() string {
	unixSec, ns, sign, isLeap := t.ToUnix()
	if sign < 0 {
		unixSec = -unixSec
		if ns > 0 {
			unixSec--
			ns = MaxNanosec - ns
		}
	}
	bd := time.Unix(unixSec, 0).UTC()
	year, month, day := bd.Date()
	hour, min, sec := bd.Clock()
	if isLeap {
		sec++
	}
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d.%09dZ",
		year, month, day, hour, min, sec, ns)
}

// ToSMPTELabel renders an SMPTE ST 12-1 style time label at rate,
// displayed in the civil timezone utcOffsetSec seconds east of UTC.
// The timestamp is first snapped to the nearest sample edge; the F
// field counts samples since the top of the displayed second.
func (t Timestamp) ToSMPTELabel(rate Rational, utcOffsetSec int64) (string, error) {
	count, err := t.ToCount(rate, RoundNearest)
	if err != nil {
		return "", err
	}
	norm, err := TimestampFromCount(count, rate)
	if err != nil {
		return "", err
	}

	countAtSecond, err := NewTimestamp(norm.Sec(), 0, 1).ToCount(rate, RoundUp)
	if err != nil {
		return "", err
	}
	countWithinSecond := count - countAtSecond

	unixSec, _, _, isLeap := norm.ToUnix()
	var leapSec int64
	if isLeap {
		leapSec = 1
	}

	utcAbs := utcOffsetSec
	utcSign := byte('+')
	if utcAbs < 0 {
		utcAbs = -utcAbs
		utcSign = '-'
	}

	bd := time.Unix(unixSec+utcOffsetSec, 0).UTC()
	year, month, day := bd.Date()
	hour, min, sec := bd.Clock()

	taiOffset := unixSec + leapSec - norm.Sec()
	taiSign := byte('+')
	if taiOffset < 0 {
		taiOffset = -taiOffset
		taiSign = '-'
	}

	r := rate.Reduce()
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02dF%02d %d/%d UTC%c%02d:%02d TAI%c%d",
		year, month, day, hour, min, int64(sec)+leapSec,
		countWithinSecond, r.Num, r.Den,
		utcSign, utcAbs/3600, (utcAbs%3600)/60,
		taiSign, taiOffset), nil
}

// ToMillisec converts to whole milliseconds with the given rounding.
func (t Timestamp) ToMillisec(rnd Rounding) int64 { return fixedToUnit(t.v, 1e6, rnd) }

// ToMicrosec converts to whole microseconds with the given rounding.
func (t Timestamp) ToMicrosec(rnd Rounding) int64 { return fixedToUnit(t.v, 1e3, rnd) }

// Nanoseconds returns the timestamp as a single signed TAI nanosecond
// count, saturating at the int64 boundary.
func (t Timestamp) Nanoseconds() int64 { return t.v.nanoseconds() }

// ToSecNsec renders the canonical TAI "[-]<sec>:<nsec>" form.
func (t Timestamp) ToSecNsec() string { return t.v.toSecNsec() }

// ToSecFrac renders the TAI "[-]<sec>.<fraction>" form.
func (t Timestamp) ToSecFrac() string { return t.v.toSecFrac(false) }

func (t Timestamp) String() string { return t.ToSecNsec() }

// AsTimeOffset reinterprets the timestamp as a duration since the
// epoch.
func (t Timestamp) AsTimeOffset() TimeOffset { return TimeOffset{t.v} }

func (t Timestamp) AsTimestamp() Timestamp { return t }

func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Timestamp) UnmarshalText(data []byte) error {
	parsed, err := ParseTimestamp(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
