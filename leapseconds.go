package mediatime

// leapSecondTable records every UTC leap second since the 1972 epoch of
// the leap-second system, most recent first. utc is the unix second at
// which the new TAI-UTC offset took effect; tai is the TAI second of
// the inserted leap second itself, i.e. one less than the TAI second
// corresponding to utc.
var leapSecondTable = []struct {
	utc, tai int64
}{
	{1483228800, 1483228836},
	{1435708800, 1435708835},
	{1341100800, 1341100834},
	{1230768000, 1230768033},
	{1136073600, 1136073632},
	{915148800, 915148831},
	{867715200, 867715230},
	{820454400, 820454429},
	{773020800, 773020828},
	{741484800, 741484827},
	{709948800, 709948826},
	{662688000, 662688025},
	{631152000, 631152024},
	{567993600, 567993623},
	{489024000, 489024022},
	{425865600, 425865621},
	{394329600, 394329620},
	{362793600, 362793619},
	{315532800, 315532818},
	{283996800, 283996817},
	{252460800, 252460816},
	{220924800, 220924815},
	{189302400, 189302414},
	{157766400, 157766413},
	{126230400, 126230412},
	{94694400, 94694411},
	{78796800, 78796810},
	{63072000, 63072009},
}

// leapSecondsAtUnix returns the TAI-UTC offset in effect at a unix
// second. A time inside an inserted leap second is identified by its
// preceding unix second together with isLeap.
func leapSecondsAtUnix(unixSec int64, isLeap bool) int64 {
	adj := unixSec
	if isLeap {
		adj++
	}
	for _, e := range leapSecondTable {
		if adj >= e.utc {
			return (e.tai + 1) - e.utc
		}
	}
	return 0
}

// leapSecondsAtTAI returns the TAI-UTC offset applying to a TAI second,
// and whether that second is itself an inserted leap second.
func leapSecondsAtTAI(taiSec int64) (leap int64, isLeap bool) {
	for _, e := range leapSecondTable {
		if taiSec >= e.tai {
			return (e.tai + 1) - e.utc, taiSec == e.tai
		}
	}
	return 0, false
}
