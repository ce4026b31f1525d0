package ops

import "golang.org/x/exp/constraints"

func FindFirstGreater[T constraints.Ordered](arr []T, v T, start, end int) int {
	i := start

	for ; i+7 < end; i += 8 {
		a0, a1 := arr[i], arr[i+1]
		a2, a3 := arr[i+2], arr[i+3]
		a4, a5 := arr[i+4], arr[i+5]
		a6, a7 := arr[i+6], arr[i+7]

		m0 := a0 > v
		m1 := a1 > v
		m2 := a2 > v
		m3 := a3 > v
		m4 := a4 > v
		m5 := a5 > v
		m6 := a6 > v
		m7 := a7 > v

		if m0 || m1 || m2 || m3 || m4 || m5 || m6 || m7 {
			return i + firstSet(m0, m1, m2, m3, m4, m5, m6, m7)
		}
	}

	for ; i < end; i++ {
		if arr[i] > v {
			return i
		}
	}
	return -1
}

func FindFirstGreaterEqual[T constraints.Ordered](arr []T, v T, start, end int) int {
	i := start

	for ; i+7 < end; i += 8 {
		a0, a1 := arr[i], arr[i+1]
		a2, a3 := arr[i+2], arr[i+3]
		a4, a5 := arr[i+4], arr[i+5]
		a6, a7 := arr[i+6], arr[i+7]

		m0 := a0 >= v
		m1 := a1 >= v
		m2 := a2 >= v
		m3 := a3 >= v
		m4 := a4 >= v
		m5 := a5 >= v
		m6 := a6 >= v
		m7 := a7 >= v

		if m0 || m1 || m2 || m3 || m4 || m5 || m6 || m7 {
			return i + firstSet(m0, m1, m2, m3, m4, m5, m6, m7)
		}
	}

	for ; i < end; i++ {
		if arr[i] >= v {
			return i
		}
	}
	return -1
}

func FilterGreater[T constraints.Integer | constraints.Float](arr []T, cmp T, out []int32) int {
	n := len(arr)
	filled := 0
	i := 0

	for ; i+7 < n; i += 8 {
		a0, a1 := arr[i], arr[i+1]
		a2, a3 := arr[i+2], arr[i+3]
		a4, a5 := arr[i+4], arr[i+5]
		a6, a7 := arr[i+6], arr[i+7]

		if a0 > cmp {
			out[filled] = int32(i)
			filled++
		}
		if a1 > cmp {
			out[filled] = int32(i + 1)
			filled++
		}
		if a2 > cmp {
			out[filled] = int32(i + 2)
			filled++
		}
		if a3 > cmp {
			out[filled] = int32(i + 3)
			filled++
		}
		if a4 > cmp {
			out[filled] = int32(i + 4)
			filled++
		}
		if a5 > cmp {
			out[filled] = int32(i + 5)
			filled++
		}
		if a6 > cmp {
			out[filled] = int32(i + 6)
			filled++
		}
		if a7 > cmp {
			out[filled] = int32(i + 7)
			filled++
		}
	}

	for ; i < n; i++ {
		if arr[i] > cmp {
			out[filled] = int32(i)
			filled++
		}
	}
	return filled
}
