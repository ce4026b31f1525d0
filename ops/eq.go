package ops

import "golang.org/x/exp/constraints"

// FindFirstEqual returns the first index in [start, end) holding v, -1 if none.
func FindFirstEqual[T comparable](arr []T, v T, start, end int) int {
	i := start

	for ; i+7 < end; i += 8 {
		a0, a1 := arr[i], arr[i+1]
		a2, a3 := arr[i+2], arr[i+3]
		a4, a5 := arr[i+4], arr[i+5]
		a6, a7 := arr[i+6], arr[i+7]

		m0 := a0 == v
		m1 := a1 == v
		m2 := a2 == v
		m3 := a3 == v
		m4 := a4 == v
		m5 := a5 == v
		m6 := a6 == v
		m7 := a7 == v

		if m0 || m1 || m2 || m3 || m4 || m5 || m6 || m7 {
			return i + firstSet(m0, m1, m2, m3, m4, m5, m6, m7)
		}
	}

	// Tail element
	for ; i < end; i++ {
		if arr[i] == v {
			return i
		}
	}
	return -1
}

func FindFirstNotEqual[T comparable](arr []T, v T, start, end int) int {
	i := start

	for ; i+7 < end; i += 8 {
		a0, a1 := arr[i], arr[i+1]
		a2, a3 := arr[i+2], arr[i+3]
		a4, a5 := arr[i+4], arr[i+5]
		a6, a7 := arr[i+6], arr[i+7]

		m0 := a0 != v
		m1 := a1 != v
		m2 := a2 != v
		m3 := a3 != v
		m4 := a4 != v
		m5 := a5 != v
		m6 := a6 != v
		m7 := a7 != v

		if m0 || m1 || m2 || m3 || m4 || m5 || m6 || m7 {
			return i + firstSet(m0, m1, m2, m3, m4, m5, m6, m7)
		}
	}

	for ; i < end; i++ {
		if arr[i] != v {
			return i
		}
	}
	return -1
}

// FilterEqual writes the offsets of every element equal to cmp into out and
// returns how many were written. out must be at least len(arr) long.
func FilterEqual[T constraints.Integer | constraints.Float](arr []T, cmp T, out []int32) int {
	n := len(arr)
	var filled int = 0
	i := 0

	for ; i+7 < n; i += 8 {

		a0 := arr[i+0]
		a1 := arr[i+1]
		a2 := arr[i+2]
		a3 := arr[i+3]
		a4 := arr[i+4]
		a5 := arr[i+5]
		a6 := arr[i+6]
		a7 := arr[i+7]

		im0 := b2i(a0 == cmp)
		im1 := b2i(a1 == cmp)
		im2 := b2i(a2 == cmp)
		im3 := b2i(a3 == cmp)
		im4 := b2i(a4 == cmp)
		im5 := b2i(a5 == cmp)
		im6 := b2i(a6 == cmp)
		im7 := b2i(a7 == cmp)

		out[filled] = int32(i + 0)
		filled += im0
		out[filled] = int32(i + 1)
		filled += im1
		out[filled] = int32(i + 2)
		filled += im2
		out[filled] = int32(i + 3)
		filled += im3
		out[filled] = int32(i + 4)
		filled += im4
		out[filled] = int32(i + 5)
		filled += im5
		out[filled] = int32(i + 6)
		filled += im6
		out[filled] = int32(i + 7)
		filled += im7

	}

	// Tail element
	for ; i < n; i++ {
		if arr[i] == cmp {
			out[filled] = int32(i)
			filled++
		}
	}
	return filled
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func firstSet(m0, m1, m2, m3, m4, m5, m6, m7 bool) int {
	switch {
	case m0:
		return 0
	case m1:
		return 1
	case m2:
		return 2
	case m3:
		return 3
	case m4:
		return 4
	case m5:
		return 5
	case m6:
		return 6
	default:
		return 7
	}
}
