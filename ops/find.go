package ops

import "golang.org/x/exp/constraints"

// FindFirst dispatches to the unrolled kernel of an equality or ordering
// condition. Only non-null data may be passed: null handling stays with the
// caller.
func FindFirst[T constraints.Ordered](c Cond, arr []T, v T, start, end int) int {
	switch c {
	case Equal:
		return FindFirstEqual(arr, v, start, end)
	case NotEqual:
		return FindFirstNotEqual(arr, v, start, end)
	case Less:
		return FindFirstLess(arr, v, start, end)
	case LessEqual:
		return FindFirstLessEqual(arr, v, start, end)
	case Greater:
		return FindFirstGreater(arr, v, start, end)
	case GreaterEqual:
		return FindFirstGreaterEqual(arr, v, start, end)
	default:
		return -1
	}
}

// Filter collects the offsets of arr matching `arr[i] c v` into out.
func Filter[T constraints.Integer | constraints.Float](c Cond, arr []T, v T, out []int32) int {
	switch c {
	case Equal:
		return FilterEqual(arr, v, out)
	case Less:
		return FilterLess(arr, v, out)
	case Greater:
		return FilterGreater(arr, v, out)
	}

	filled := 0
	for i, a := range arr {
		if CompareOrdered(c, a, false, v, false) {
			out[filled] = int32(i)
			filled++
		}
	}
	return filled
}
