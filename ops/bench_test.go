package ops

import (
	"math/rand"
	"testing"
)

func randomValues(size int) []uint64 {
	input := make([]uint64, size)
	for i := range input {
		input[i] = uint64(rand.Int63n(50000))
	}
	return input
}

func BenchmarkMinMaxRand(b *testing.B) {
	input := randomValues(40000)

	var result Bounds[uint64]
	for b.Loop() {
		result = GetMaxMin(input)
	}

	b.Logf("min : %d, max : %d", result.Min, result.Max)
}

func BenchmarkFindFirstMiss(b *testing.B) {
	input := randomValues(40000)

	for _, c := range []Cond{Equal, Greater, Less} {
		b.Run(c.String(), func(b *testing.B) {
			for b.Loop() {
				FindFirst(c, input, 60000, 0, len(input))
			}
		})
	}
}

func BenchmarkFilter(b *testing.B) {
	input := randomValues(40000)
	out := make([]int32, len(input))

	for b.Loop() {
		Filter(Greater, input, 25000, out)
	}
}
