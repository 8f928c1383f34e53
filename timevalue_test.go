package mediatime

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeValueEagerConversion(t *testing.T) {
	v := TimeValueFromOffset(NewTimeOffset(0, 200000000, 1), Rate(25))
	assert.True(t, v.IsCount(), "a time with a rate should collapse to a count")

	count, err := v.AsCount()
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	off, err := v.AsTimeOffset()
	require.NoError(t, err)
	assert.True(t, off.Equal(NewTimeOffset(0, 200000000, 1)))
}

func TestTimeValueWithoutRate(t *testing.T) {
	v := TimeValueFromOffset(NewTimeOffset(1, 0, 1), Rational{})
	assert.False(t, v.IsCount())

	_, err := v.AsCount()
	assert.True(t, errors.Is(err, ErrInvalidValue), "count conversion without a rate should fail")

	off, err := v.AsTimeOffset()
	require.NoError(t, err)
	assert.True(t, off.Equal(NewTimeOffset(1, 0, 1)))

	c := TimeValueFromCount(5, Rational{})
	_, err = c.AsTimeOffset()
	assert.True(t, errors.Is(err, ErrInvalidValue), "time conversion of a bare count should fail")
}

func TestTimeValueWithRate(t *testing.T) {
	// a bare count is reinterpreted at the new rate
	v := TimeValueFromCount(5, Rational{}).WithRate(Rate(25))
	off, err := v.AsTimeOffset()
	require.NoError(t, err)
	assert.True(t, off.Equal(NewTimeOffset(0, 200000000, 1)))

	// a count with a rate is recounted through its time
	v = TimeValueFromCount(50, Rate(50)).WithRate(Rate(25))
	count, err := v.AsCount()
	require.NoError(t, err)
	assert.Equal(t, int64(25), count)

	// a zero rate is a no-op
	v = TimeValueFromCount(5, Rate(25)).WithRate(Rational{})
	assert.Equal(t, Rate(25), v.Rate())
}

func TestParseTimeValue(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		rate      Rational
		wantCount bool
		wantErr   bool
	}{
		{name: "BareCount", in: "5", wantCount: true},
		{name: "CountWithRate", in: "5@25", wantCount: true},
		{name: "OffsetNoRate", in: "1:500000000"},
		{name: "OffsetWithRateCollapses", in: "1:0@30000/1001", wantCount: true},
		{name: "SecFrac", in: "1.5"},
		{name: "ArgumentRate", in: "1:0", rate: Rate(25), wantCount: true},
		{name: "MultipleAt", in: "5@25@25", wantErr: true},
		{name: "BadValue", in: "abc", wantErr: true},
		{name: "BadRate", in: "5@x", wantErr: true},
		{name: "NegativeRate", in: "0:0@-25", wantErr: true},
		{name: "ZeroRate", in: "5@0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeValue(tt.in, tt.rate)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, got.IsCount())
		})
	}

	v, err := ParseTimeValue("1:0@30000/1001", Rational{})
	require.NoError(t, err)
	count, err := v.AsCount()
	require.NoError(t, err)
	assert.Equal(t, int64(30), count)
}

func TestTimeValueCompare(t *testing.T) {
	a := TimeValueFromCount(5, Rate(25))
	b := TimeValueFromOffset(NewTimeOffset(0, 200000000, 1), Rational{})

	c, err := a.Compare(b)
	require.NoError(t, err)
	assert.Equal(t, 0, c, "count 5 at 25Hz should equal 0.2s")
	assert.True(t, a.Equal(b))

	c, err = a.Compare(TimeValueFromCount(6, Rational{}))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	// a bare count cannot be ordered against a time
	_, err = TimeValueFromCount(5, Rational{}).Compare(b)
	assert.True(t, errors.Is(err, ErrInvalidValue))
	assert.False(t, TimeValueFromCount(5, Rational{}).Equal(b))
}

func TestTimeValueArithmetic(t *testing.T) {
	a := TimeValueFromCount(5, Rate(25))

	sum, err := a.Add(TimeValueFromCount(3, Rational{}))
	require.NoError(t, err)
	count, _ := sum.AsCount()
	assert.Equal(t, int64(8), count)
	assert.Equal(t, Rate(25), sum.Rate())

	diff, err := a.Sub(TimeValueFromOffset(NewTimeOffset(0, 40000000, 1), Rational{}))
	require.NoError(t, err)
	count, _ = diff.AsCount()
	assert.Equal(t, int64(4), count)

	shifted, err := a.AddCount(2)
	require.NoError(t, err)
	count, _ = shifted.AsCount()
	assert.Equal(t, int64(7), count)

	// AddCount on a rateless time has no meaning
	_, err = TimeValueFromOffset(NewTimeOffset(1, 0, 1), Rational{}).AddCount(1)
	assert.True(t, errors.Is(err, ErrInvalidValue))

	count, _ = a.Mul(3).AsCount()
	assert.Equal(t, int64(15), count)

	count, _ = TimeValueFromCount(-5, Rate(25)).Div(2).AsCount()
	assert.Equal(t, int64(-3), count, "count division floors toward minus infinity")

	count, _ = TimeValueFromCount(-5, Rate(25)).Abs().AsCount()
	assert.Equal(t, int64(5), count)
}

func TestTimeValueOffsetArithmetic(t *testing.T) {
	a := TimeValueFromOffset(NewTimeOffset(1, 0, 1), Rational{})
	sum, err := a.Add(TimeValueFromOffset(NewTimeOffset(0, 500000000, 1), Rational{}))
	require.NoError(t, err)

	off, err := sum.AsTimeOffset()
	require.NoError(t, err)
	assert.True(t, off.Equal(NewTimeOffset(1, 500000000, 1)))
	assert.False(t, sum.IsCount())
}

func TestTimeValueStrings(t *testing.T) {
	v := TimeValueFromCount(5, Rate(25))
	assert.Equal(t, "5@25", v.String())
	assert.Equal(t, "5", v.ToStr(false))

	v = TimeValueFromOffset(NewTimeOffset(1, 500000000, -1), Rational{})
	assert.Equal(t, "-1:500000000", v.String())

	var parsed TimeValue
	require.NoError(t, parsed.UnmarshalText([]byte("0:500000000")))
	assert.False(t, parsed.IsCount())

	data, err := TimeValueFromCount(5, Rate(25)).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "5@25", string(data))
}

func TestTimeValueAsTimestamp(t *testing.T) {
	v := TimeValueFromTimestamp(NewTimestamp(10, 0, 1), Rational{})
	ts, err := v.AsTimestamp()
	require.NoError(t, err)
	assert.True(t, ts.Equal(NewTimestamp(10, 0, 1)))

	tr, err := v.AsTimeRange()
	require.NoError(t, err)
	assert.True(t, tr.Equal(TimeRangeFromSingle(NewTimestamp(10, 0, 1))))

	v = TimeValueFromCount(25, Rate(25))
	ts, err = v.AsTimestamp()
	require.NoError(t, err)
	assert.True(t, ts.Equal(NewTimestamp(1, 0, 1)))
}
