package ops

// LinearSearchThreshold is the needle count below which a linear probe of
// the needle list beats hashing the element.
const LinearSearchThreshold = 22

// Needles is the value set of merged equality conditions.
type Needles[T comparable] struct {
	list    []T
	set     map[T]struct{}
	hasNull bool
}

func (n *Needles[T]) Add(v T) {
	if n.Contains(v) {
		return
	}
	n.list = append(n.list, v)
	if n.set != nil {
		n.set[v] = struct{}{}
	} else if len(n.list) >= LinearSearchThreshold {
		n.set = make(map[T]struct{}, len(n.list))
		for _, it := range n.list {
			n.set[it] = struct{}{}
		}
	}
}

func (n *Needles[T]) AddNull() {
	n.hasNull = true
}

func (n *Needles[T]) Len() int {
	if n.hasNull {
		return len(n.list) + 1
	}
	return len(n.list)
}

func (n *Needles[T]) HasNull() bool {
	return n.hasNull
}

// Values returns the non-null needles in insertion order.
func (n *Needles[T]) Values() []T {
	return n.list
}

func (n *Needles[T]) Contains(v T) bool {
	if n.set != nil {
		_, ok := n.set[v]
		return ok
	}
	for _, it := range n.list {
		if it == v {
			return true
		}
	}
	return false
}

func (n *Needles[T]) Clone() Needles[T] {
	out := Needles[T]{hasNull: n.hasNull}
	for _, it := range n.list {
		out.Add(it)
	}
	return out
}

// FindFirstHaystack returns the first offset in [start, end) whose element is
// one of the needles. isNull may be nil for non-nullable data.
func FindFirstHaystack[T comparable](arr []T, isNull func(int) bool, needles *Needles[T], start, end int) int {
	for i := start; i < end; i++ {
		if isNull != nil && isNull(i) {
			if needles.hasNull {
				return i
			}
			continue
		}
		if needles.Contains(arr[i]) {
			return i
		}
	}
	return -1
}
