package ops

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func naiveFindFirst(c Cond, arr []int64, v int64, start, end int) int {
	for i := start; i < end; i++ {
		if CompareOrdered(c, arr[i], false, v, false) {
			return i
		}
	}
	return -1
}

func TestFindFirstKernelsMatchNaiveScan(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	arr := make([]int64, 301)
	for i := range arr {
		arr[i] = rnd.Int63n(40)
	}

	for _, c := range []Cond{Equal, NotEqual, Less, LessEqual, Greater, GreaterEqual} {
		t.Run(c.String(), func(t *testing.T) {
			for iter := 0; iter < 200; iter++ {
				start := rnd.Intn(len(arr))
				end := start + rnd.Intn(len(arr)-start+1)
				v := rnd.Int63n(45)

				require.Equal(t, naiveFindFirst(c, arr, v, start, end), FindFirst(c, arr, v, start, end),
					"cond %s v=%d range [%d,%d)", c, v, start, end)
			}
		})
	}
}

func TestFindFirstTail(t *testing.T) {
	input := []uint64{1050, 9000, 2000}

	assert.Equal(t, 1, FindFirstEqual(input, 9000, 0, 3))
	assert.Equal(t, -1, FindFirstEqual(input, 9000, 2, 3))
	assert.Equal(t, 1, FindFirstGreater(input, 1500, 0, 3))
	assert.Equal(t, -1, FindFirstLess(input, 1000, 0, 3))
}

func TestFilterKernels(t *testing.T) {
	input := []float64{0, 0, 0, 1, 0, 0, 0, 7000, 1500}
	out := make([]int32, len(input))

	n := Filter(Greater, input, 1024, out)
	require.Equal(t, 2, n)
	assert.Equal(t, []int32{7, 8}, out[:n])

	n = Filter(Equal, input, 0, out)
	assert.Equal(t, 6, n)

	n = Filter(LessEqual, input, 1, out)
	assert.Equal(t, 7, n)
}

func TestNullOutcome(t *testing.T) {
	cases := []struct {
		c            Cond
		aNull, bNull bool
		want         bool
	}{
		{Equal, true, true, true},
		{Equal, true, false, false},
		{NotEqual, true, false, true},
		{NotEqual, true, true, false},
		{Less, true, true, false},
		{Less, false, true, false},
		{Greater, true, false, false},
		{LessEqual, true, true, true},
		{GreaterEqual, true, true, true},
		{GreaterEqual, true, false, false},
	}

	for _, tc := range cases {
		res, decided := NullOutcome(tc.c, tc.aNull, tc.bNull)
		require.True(t, decided)
		assert.Equal(t, tc.want, res, "%s null=%v/%v", tc.c, tc.aNull, tc.bNull)
	}

	_, decided := NullOutcome(Equal, false, false)
	assert.False(t, decided)
}

func TestBoundsExcludes(t *testing.T) {
	b := GetMaxMin([]int64{10, 20, 30, 20})

	assert.True(t, b.Excludes(Equal, 5))
	assert.False(t, b.Excludes(Equal, 20))
	assert.True(t, b.Excludes(Greater, 30))
	assert.False(t, b.Excludes(GreaterEqual, 30))
	assert.True(t, b.Excludes(Less, 10))
	assert.False(t, b.Excludes(NotEqual, 10))
}

func TestNeedlesSwitchToHashSet(t *testing.T) {
	var n Needles[int64]
	for i := int64(0); i < 30; i++ {
		n.Add(i * 3)
		n.Add(i * 3)
	}

	assert.Equal(t, 30, n.Len())
	assert.NotNil(t, n.set)
	assert.True(t, n.Contains(27))
	assert.False(t, n.Contains(28))

	arr := []int64{1, 2, 4, 5, 33}
	assert.Equal(t, 4, FindFirstHaystack(arr, nil, &n, 0, len(arr)))
}

func TestCondStringRoundTrip(t *testing.T) {
	for c := Equal; c <= LikeIns; c++ {
		parsed, err := ParseCond(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	assert.Equal(t, "CONTAINS[c]", ContainsIns.String())
	assert.Equal(t, Contains, ContainsIns.CaseSensitive())
	assert.Equal(t, GreaterEqual, LessEqual.Swap())
}
