package schema

import (
	"bytes"
	"cmp"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind is the discriminant of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindBool
	KindFloat
	KindDouble
	KindString
	KindBinary
	KindTimestamp
	KindDecimal
	KindUUID
	KindObjectID
	KindLink
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindTimestamp:
		return "timestamp"
	case KindDecimal:
		return "decimal"
	case KindUUID:
		return "uuid"
	case KindObjectID:
		return "objectid"
	case KindLink:
		return "link"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindFloat || k == KindDouble || k == KindDecimal
}

// Value is a tagged variant holding one element of any column type.
// Only the field matching Kind is meaningful.
type Value struct {
	Kind Kind

	I int64 // int, bool, link
	F float64
	S string // string, binary
	T time.Time
	D decimal.Decimal
	U uuid.UUID
	O ObjectID
}

func Null() Value { return Value{Kind: KindNull} }
func Int(v int64) Value { return Value{Kind: KindInt, I: v} }
func Float(v float32) Value { return Value{Kind: KindFloat, F: float64(v)} }
func Double(v float64) Value { return Value{Kind: KindDouble, F: v} }
func String(v string) Value { return Value{Kind: KindString, S: v} }
func Binary(v []byte) Value { return Value{Kind: KindBinary, S: string(v)} }
func Timestamp(v time.Time) Value { return Value{Kind: KindTimestamp, T: v} }
func Decimal(v decimal.Decimal) Value { return Value{Kind: KindDecimal, D: v} }
func UUID(v uuid.UUID) Value { return Value{Kind: KindUUID, U: v} }
func OID(v ObjectID) Value { return Value{Kind: KindObjectID, O: v} }
func Link(key int64) Value { return Value{Kind: KindLink, I: key} }
func BoolValue(v bool) Value { return Value{Kind: KindBool, I: b2i(v)} }

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

func (v Value) Bool() bool {
	return v.I != 0
}

func (v Value) Bytes() []byte {
	return []byte(v.S)
}

// AsFloat64 converts numeric kinds, everything else yields 0.
func (v Value) AsFloat64() float64 {
	switch v.Kind {
	case KindInt:
		return float64(v.I)
	case KindFloat, KindDouble:
		return v.F
	case KindDecimal:
		f, _ := v.D.Float64()
		return f
	default:
		return 0
	}
}

// IsNaN reports a floating point NaN, which compares equal to nothing.
func (v Value) IsNaN() bool {
	return (v.Kind == KindFloat || v.Kind == KindDouble) && math.IsNaN(v.F)
}

// infSign is 1 for +Inf, -1 for -Inf and 0 otherwise.
func (v Value) infSign() int {
	if v.Kind != KindFloat && v.Kind != KindDouble {
		return 0
	}
	switch {
	case math.IsInf(v.F, 1):
		return 1
	case math.IsInf(v.F, -1):
		return -1
	default:
		return 0
	}
}

// asDecimal must not be called on infinities.
func (v Value) asDecimal() decimal.Decimal {
	switch v.Kind {
	case KindInt:
		return decimal.NewFromInt(v.I)
	case KindFloat, KindDouble:
		if i, ok := exactInt(v.F); ok {
			return decimal.NewFromInt(i)
		}
		return decimal.NewFromFloat(v.F)
	default:
		return v.D
	}
}

// int64Bound is 2^63, the int64 range as floats is [-int64Bound, int64Bound).
const int64Bound = 1 << 63

// exactInt returns f as an int64 when f is integral and inside the int64
// range. NaN and infinities fail both tests.
func exactInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < -int64Bound || f >= int64Bound {
		return 0, false
	}
	return int64(f), true
}

// compareIntFloat orders an integer against a float without rounding the
// integer. f must not be NaN.
func compareIntFloat(i int64, f float64) int {
	switch {
	case f >= int64Bound:
		return -1
	case f < -int64Bound:
		return 1
	}
	t := math.Trunc(f)
	if c := cmp.Compare(i, int64(t)); c != 0 {
		return c
	}
	return cmp.Compare(t, f)
}

func compareNumeric(a, b Value) (int, bool) {
	if a.IsNaN() || b.IsNaN() {
		return 0, false
	}

	switch {
	case a.Kind == KindInt && b.Kind == KindInt:
		return cmp.Compare(a.I, b.I), true
	case a.Kind == KindDecimal || b.Kind == KindDecimal:
		if a.infSign() != 0 || b.infSign() != 0 {
			return cmp.Compare(a.infSign(), b.infSign()), true
		}
		return a.asDecimal().Cmp(b.asDecimal()), true
	case a.Kind == KindInt:
		return compareIntFloat(a.I, b.F), true
	case b.Kind == KindInt:
		return -compareIntFloat(b.I, a.F), true
	default:
		return cmp.Compare(a.F, b.F), true
	}
}

func isStringish(k Kind) bool {
	return k == KindString || k == KindBinary
}

// Compare orders two values. ok is false when the kinds are not comparable,
// when either side is null, or when a floating point side is NaN.
func Compare(a, b Value) (c int, ok bool) {
	if a.Kind == KindNull || b.Kind == KindNull {
		return 0, false
	}

	if a.Kind.IsNumeric() && b.Kind.IsNumeric() {
		return compareNumeric(a, b)
	}

	if isStringish(a.Kind) && isStringish(b.Kind) {
		return cmp.Compare(a.S, b.S), true
	}

	if a.Kind != b.Kind {
		return 0, false
	}

	switch a.Kind {
	case KindBool, KindLink:
		return cmp.Compare(a.I, b.I), true
	case KindTimestamp:
		return a.T.Compare(b.T), true
	case KindUUID:
		return bytes.Compare(a.U[:], b.U[:]), true
	case KindObjectID:
		return bytes.Compare(a.O[:], b.O[:]), true
	default:
		return 0, false
	}
}

// Equal reports whether both values are null or both compare equal.
func Equal(a, b Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	c, ok := Compare(a, b)
	return ok && c == 0
}

// IndexKey is the canonical form used as a search index key. Values that
// compare equal share the same key. NaN gets a key of its own although it
// equals nothing.
func (v Value) IndexKey() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindInt:
		return "n:" + strconv.FormatInt(v.I, 10)
	case KindFloat, KindDouble:
		if i, ok := exactInt(v.F); ok {
			return "n:" + strconv.FormatInt(i, 10)
		}
		if math.IsNaN(v.F) || math.IsInf(v.F, 0) {
			return "n:" + strconv.FormatFloat(v.F, 'g', -1, 64)
		}
		return "n:" + decimal.NewFromFloat(v.F).String()
	case KindDecimal:
		// fixed point with trailing zeros trimmed, integers print like FormatInt
		return "n:" + v.D.String()
	case KindString, KindBinary:
		return "s:" + v.S
	case KindBool:
		return "b:" + strconv.FormatInt(v.I, 10)
	case KindTimestamp:
		return "t:" + strconv.FormatInt(v.T.UnixNano(), 10)
	case KindUUID:
		return "u:" + v.U.String()
	case KindObjectID:
		return "o:" + v.O.String()
	case KindLink:
		return "l:" + strconv.FormatInt(v.I, 10)
	default:
		panic(fmt.Sprintf("unknown value kind %v", v.Kind))
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindInt:
		return strconv.FormatInt(v.I, 10)
	case KindBool:
		return strconv.FormatBool(v.Bool())
	case KindFloat:
		return strconv.FormatFloat(v.F, 'g', -1, 32)
	case KindDouble:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.S)
	case KindBinary:
		return fmt.Sprintf("%x", v.S)
	case KindTimestamp:
		return v.T.UTC().Format(time.RFC3339Nano)
	case KindDecimal:
		return v.D.String()
	case KindUUID:
		return v.U.String()
	case KindObjectID:
		return v.O.String()
	case KindLink:
		return "O" + strconv.FormatInt(v.I, 10)
	default:
		return "?"
	}
}
