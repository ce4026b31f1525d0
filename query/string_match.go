package query

import (
	"fmt"
	"strings"

	"github.com/dot5enko/colquery/ops"
)

// stringMatcher evaluates one string condition against a fixed pattern.
// Case insensitive forms carry the upper and lower case pattern, substring
// forms a precomputed skip table.
type stringMatcher struct {
	cond  ops.Cond
	value string
	null  bool

	ucase string
	lcase string
	skip  *ops.SkipTable
}

func newStringMatcher(cond ops.Cond, value string, null bool) (stringMatcher, error) {
	m := stringMatcher{cond: cond, value: value, null: null}

	if cond.IsCaseInsensitive() {
		upper, ok := ops.CaseMap(value, true)
		if !ok {
			return m, fmt.Errorf("%w: %w", ErrInvalidQuery, ErrMalformedUTF8)
		}
		lower, ok := ops.CaseMap(value, false)
		if !ok {
			return m, fmt.Errorf("%w: %w", ErrInvalidQuery, ErrMalformedUTF8)
		}
		m.ucase, m.lcase = upper, lower
	}

	switch cond {
	case ops.Contains:
		t := ops.NewSkipTable(value)
		m.skip = &t
	case ops.ContainsIns:
		t := ops.NewSkipTableIns(m.ucase, m.lcase)
		m.skip = &t
	}
	return m, nil
}

func (m *stringMatcher) match(text string, textNull bool) bool {
	switch m.cond {
	case ops.Equal, ops.NotEqual, ops.Less, ops.LessEqual, ops.Greater, ops.GreaterEqual:
		if res, decided := ops.NullOutcome(m.cond, textNull, m.null); decided {
			return res
		}
		return ops.Holds(m.cond, strings.Compare(text, m.value))
	case ops.BeginsWith:
		return ops.BeginsWithString(m.value, m.null, text, textNull)
	case ops.EndsWith:
		return ops.EndsWithString(m.value, m.null, text, textNull)
	case ops.Contains:
		return ops.ContainsString(m.value, m.null, m.skip, text, textNull)
	case ops.Like:
		return ops.LikeString(m.value, m.null, text, textNull)
	case ops.EqualIns:
		return ops.EqualStringIns(m.ucase, m.lcase, m.null, text, textNull)
	case ops.NotEqualIns:
		return !ops.EqualStringIns(m.ucase, m.lcase, m.null, text, textNull)
	case ops.BeginsWithIns:
		return ops.BeginsWithStringIns(m.ucase, m.lcase, m.null, text, textNull)
	case ops.EndsWithIns:
		return ops.EndsWithStringIns(m.ucase, m.lcase, m.null, text, textNull)
	case ops.ContainsIns:
		return ops.ContainsStringIns(m.ucase, m.lcase, m.null, m.skip, text, textNull)
	case ops.LikeIns:
		return ops.LikeStringIns(m.lcase, m.null, text, textNull)
	default:
		panic(fmt.Sprintf("unknown string condition %d", uint8(m.cond)))
	}
}
