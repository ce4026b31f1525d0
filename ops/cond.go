package ops

import "fmt"

// Cond is the comparison a condition node applies between a column value
// and its argument.
type Cond uint8

const (
	Equal Cond = iota
	NotEqual
	Less
	LessEqual
	Greater
	GreaterEqual
	BeginsWith
	EndsWith
	Contains
	Like

	EqualIns
	NotEqualIns
	BeginsWithIns
	EndsWithIns
	ContainsIns
	LikeIns
)

func (c Cond) String() string {
	switch c {
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	case Less:
		return "<"
	case LessEqual:
		return "<="
	case Greater:
		return ">"
	case GreaterEqual:
		return ">="
	case BeginsWith:
		return "BEGINSWITH"
	case EndsWith:
		return "ENDSWITH"
	case Contains:
		return "CONTAINS"
	case Like:
		return "LIKE"
	case EqualIns, NotEqualIns, BeginsWithIns, EndsWithIns, ContainsIns, LikeIns:
		return c.CaseSensitive().String() + "[c]"
	default:
		panic(fmt.Sprintf("unknown condition %d", uint8(c)))
	}
}

// IsCaseInsensitive reports whether c is one of the [c] forms.
func (c Cond) IsCaseInsensitive() bool {
	return c >= EqualIns && c <= LikeIns
}

// CaseSensitive maps a [c] form to its case sensitive counterpart.
func (c Cond) CaseSensitive() Cond {
	if c.IsCaseInsensitive() {
		return c - EqualIns + Equal
	}
	return c
}

// CaseInsensitive maps a condition to its [c] form. Ordering conditions
// have no such form and are returned unchanged.
func (c Cond) CaseInsensitive() Cond {
	switch c {
	case Equal:
		return EqualIns
	case NotEqual:
		return NotEqualIns
	case BeginsWith:
		return BeginsWithIns
	case EndsWith:
		return EndsWithIns
	case Contains:
		return ContainsIns
	case Like:
		return LikeIns
	default:
		return c
	}
}

func (c Cond) IsOrdering() bool {
	return c >= Less && c <= GreaterEqual
}

// IsSubstring reports whether c only applies to string and binary data.
func (c Cond) IsSubstring() bool {
	s := c.CaseSensitive()
	return s >= BeginsWith && s <= Like
}

// Swap mirrors an ordering condition so that `a c b` equals `b c.Swap() a`.
func (c Cond) Swap() Cond {
	switch c {
	case Less:
		return Greater
	case LessEqual:
		return GreaterEqual
	case Greater:
		return Less
	case GreaterEqual:
		return LessEqual
	default:
		return c
	}
}

// ParseCond is the inverse of String.
func ParseCond(s string) (Cond, error) {
	for c := Equal; c <= LikeIns; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	if s == "=" {
		return Equal, nil
	}
	if s == "<>" {
		return NotEqual, nil
	}
	return Equal, fmt.Errorf("unknown condition `%s`", s)
}
