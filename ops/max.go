package ops

import "golang.org/x/exp/constraints"

type Bounds[T constraints.Ordered] struct {
	Min T
	Max T
}

// Excludes reports whether no value inside the bounds can satisfy
// `value c v`.
func (b Bounds[T]) Excludes(c Cond, v T) bool {
	switch c {
	case Equal:
		return v < b.Min || v > b.Max
	case NotEqual:
		return b.Min == v && b.Max == v
	case Less:
		return b.Min >= v
	case LessEqual:
		return b.Min > v
	case Greater:
		return b.Max <= v
	case GreaterEqual:
		return b.Max < v
	default:
		return false
	}
}

func GetMaxMin[T constraints.Ordered](arr []T) Bounds[T] {

	resultBounds := Bounds[T]{
		Min: arr[0],
		Max: arr[0],
	}

	for _, v := range arr[1:] {
		if v < resultBounds.Min {
			resultBounds.Min = v
		}
		if v > resultBounds.Max {
			resultBounds.Max = v
		}
	}
	return resultBounds
}
