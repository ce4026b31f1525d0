package schema

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) Value {
	t.Helper()

	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return Decimal(d)
}

// Two numbers share an index key exactly when Compare finds them equal.
func TestIndexKeyMatchesNumericEquality(t *testing.T) {
	values := []Value{
		Int(0), Double(math.Copysign(0, -1)), dec(t, "0"),
		Int(5), Float(5), dec(t, "5.00"),
		Int(1 << 53), Double(1 << 53), Int(1<<53 + 1),
		Int(1 << 60), Double(1 << 60), dec(t, "1152921504606846976"),
		Int(math.MaxInt64), Int(math.MinInt64), Double(-(1 << 63)), Double(1 << 63),
		Double(1e20), dec(t, "100000000000000000000"),
		Double(0.1), Float(0.1), dec(t, "0.10"),
		Double(-1.5), dec(t, "-1.5"), Int(-1), Int(-2),
		Double(math.Inf(1)), Double(math.Inf(-1)),
	}

	for _, a := range values {
		for _, b := range values {
			c, ok := Compare(a, b)
			require.True(t, ok, "%v vs %v", a, b)
			assert.Equal(t, c == 0, a.IndexKey() == b.IndexKey(), "%v (%s) vs %v (%s)", a, a.IndexKey(), b, b.IndexKey())
		}
	}
}

func TestCompareIntAgainstFloatIsExact(t *testing.T) {
	cases := []struct {
		a, b Value
		want int
	}{
		{Int(1<<53 + 1), Double(1 << 53), 1},
		{Int(1 << 53), Double(1 << 53), 0},
		{Int(math.MaxInt64), Double(1 << 63), -1},
		{Int(math.MinInt64), Double(-(1 << 63)), 0},
		{Int(-1), Double(-1.5), 1},
		{Int(-2), Double(-1.5), -1},
		{Int(3), Double(math.Inf(1)), -1},
		{dec(t, "7"), Double(math.Inf(-1)), 1},
		{Double(1 << 60), dec(t, "1152921504606846977"), -1},
	}

	for _, tc := range cases {
		c, ok := Compare(tc.a, tc.b)
		require.True(t, ok)
		assert.Equal(t, tc.want, c, "%v vs %v", tc.a, tc.b)

		c, ok = Compare(tc.b, tc.a)
		require.True(t, ok)
		assert.Equal(t, -tc.want, c, "%v vs %v", tc.b, tc.a)
	}
}

func TestNaNComparesToNothing(t *testing.T) {
	nan := Double(math.NaN())
	assert.True(t, nan.IsNaN())
	assert.False(t, Int(1).IsNaN())

	for _, other := range []Value{nan, Int(0), dec(t, "1"), Double(math.Inf(1))} {
		_, ok := Compare(nan, other)
		assert.False(t, ok, "%v", other)
		assert.False(t, Equal(other, nan))
	}
}
