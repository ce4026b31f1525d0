package ops

import (
	"golang.org/x/exp/constraints"
)

// NullOutcome decides a comparison when at least one operand is null.
// decided is false when both operands are present and the values have to
// be compared.
//
// Equality holds only between two nulls. Strict ordering never holds
// against a null, the inclusive forms hold when both sides are null.
func NullOutcome(c Cond, aNull, bNull bool) (res bool, decided bool) {
	if !aNull && !bNull {
		return false, false
	}
	both := aNull && bNull

	switch c.CaseSensitive() {
	case Equal, LessEqual, GreaterEqual, Like:
		return both, true
	case NotEqual:
		return !both, true
	default:
		return false, true
	}
}

// Holds translates a three-way comparison result into the outcome of an
// equality or ordering condition.
func Holds(c Cond, cmp int) bool {
	switch c.CaseSensitive() {
	case Equal:
		return cmp == 0
	case NotEqual:
		return cmp != 0
	case Less:
		return cmp < 0
	case LessEqual:
		return cmp <= 0
	case Greater:
		return cmp > 0
	case GreaterEqual:
		return cmp >= 0
	default:
		return false
	}
}

// CompareOrdered evaluates `v c arg` for ordered values with explicit null
// flags.
func CompareOrdered[T constraints.Ordered](c Cond, v T, vNull bool, arg T, argNull bool) bool {
	if res, decided := NullOutcome(c, vNull, argNull); decided {
		return res
	}

	switch c {
	case Equal:
		return v == arg
	case NotEqual:
		return v != arg
	case Less:
		return v < arg
	case LessEqual:
		return v <= arg
	case Greater:
		return v > arg
	case GreaterEqual:
		return v >= arg
	default:
		return false
	}
}

// CompareFunc is CompareOrdered for types ordered by a comparison function.
func CompareFunc[T any](c Cond, cmp func(a, b T) int, v T, vNull bool, arg T, argNull bool) bool {
	if res, decided := NullOutcome(c, vNull, argNull); decided {
		return res
	}
	return Holds(c, cmp(v, arg))
}
