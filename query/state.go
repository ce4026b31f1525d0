package query

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
)

// State receives the matches of a scan.
type State interface {
	// Match takes a matching page offset and the value of the aggregated
	// column at that offset (null when nothing is aggregated). false stops
	// the scan.
	Match(ndx int, source schema.Value) bool

	// BindPage tells the state which page the following offsets refer to.
	BindPage(p *storage.Page)

	Limit() int
}

type stateBase struct {
	page  *storage.Page
	count int
	limit int
}

func newStateBase(limit int) stateBase {
	if limit <= 0 {
		limit = math.MaxInt
	}
	return stateBase{limit: limit}
}

func (s *stateBase) BindPage(p *storage.Page) {
	s.page = p
}

func (s *stateBase) Limit() int {
	return s.limit
}

// MatchCount is the number of rows seen so far.
func (s *stateBase) MatchCount() int {
	return s.count
}

func (s *stateBase) hit() bool {
	s.count++
	return s.count < s.limit
}

type CountState struct {
	stateBase
}

// NewCountState counts up to limit rows, limit <= 0 means no limit.
func NewCountState(limit int) *CountState {
	return &CountState{stateBase: newStateBase(limit)}
}

func (s *CountState) Match(ndx int, _ schema.Value) bool {
	return s.hit()
}

func (s *CountState) Count() int {
	return s.count
}

// FindAllState collects the keys of matching rows.
type FindAllState struct {
	stateBase
	Keys []storage.RowKey
}

func NewFindAllState(limit int) *FindAllState {
	return &FindAllState{stateBase: newStateBase(limit)}
}

func (s *FindAllState) Match(ndx int, _ schema.Value) bool {
	s.Keys = append(s.Keys, s.page.Key(ndx))
	return s.hit()
}

type FindFirstState struct {
	stateBase
	Key   storage.RowKey
	Found bool
}

func NewFindFirstState() *FindFirstState {
	return &FindFirstState{stateBase: newStateBase(1)}
}

func (s *FindFirstState) Match(ndx int, _ schema.Value) bool {
	s.Key = s.page.Key(ndx)
	s.Found = true
	return s.hit()
}

// SumState adds up the non-null numeric values of the aggregated column.
// Ints stay ints unless a floating or decimal value joins in.
type SumState struct {
	stateBase

	i int64
	f float64
	d decimal.Decimal

	hasFloat   bool
	hasDecimal bool
	items      int
}

func NewSumState() *SumState {
	return &SumState{stateBase: newStateBase(0)}
}

func (s *SumState) Match(ndx int, v schema.Value) bool {
	switch v.Kind {
	case schema.KindInt:
		s.i += v.I
		s.items++
	case schema.KindFloat, schema.KindDouble:
		s.f += v.F
		s.hasFloat = true
		s.items++
	case schema.KindDecimal:
		s.d = s.d.Add(v.D)
		s.hasDecimal = true
		s.items++
	}
	return s.hit()
}

// Items is the number of values that were added.
func (s *SumState) Items() int {
	return s.items
}

func (s *SumState) Result() schema.Value {
	switch {
	case s.hasDecimal:
		return schema.Decimal(s.d.Add(decimal.NewFromInt(s.i)).Add(decimal.NewFromFloat(s.f)))
	case s.hasFloat:
		return schema.Double(s.f + float64(s.i))
	default:
		return schema.Int(s.i)
	}
}

type AverageState struct {
	SumState
}

func NewAverageState() *AverageState {
	return &AverageState{SumState: SumState{stateBase: newStateBase(0)}}
}

// Result is null when no value was seen. Decimal columns average to a
// decimal, everything else to a double.
func (s *AverageState) Result() schema.Value {
	if s.items == 0 {
		return schema.Null()
	}

	sum := s.SumState.Result()
	if sum.Kind == schema.KindDecimal {
		return schema.Decimal(sum.D.Div(decimal.NewFromInt(int64(s.items))))
	}
	return schema.Double(sum.AsFloat64() / float64(s.items))
}

// extremeState keeps the smallest (sign -1) or largest (sign 1) value.
type extremeState struct {
	stateBase
	sign  int
	value schema.Value
	key   storage.RowKey
	found bool
}

func (s *extremeState) Match(ndx int, v schema.Value) bool {
	if !v.IsNull() {
		if !s.found {
			s.value, s.key, s.found = v, s.page.Key(ndx), true
		} else if c, ok := schema.Compare(v, s.value); ok && c*s.sign > 0 {
			s.value, s.key = v, s.page.Key(ndx)
		}
	}
	return s.hit()
}

// Result returns the extreme value and the key of the first row holding
// it. ok is false when only nulls were seen.
func (s *extremeState) Result() (v schema.Value, key storage.RowKey, ok bool) {
	if !s.found {
		return schema.Null(), 0, false
	}
	return s.value, s.key, true
}

type MinState struct {
	extremeState
}

func NewMinState() *MinState {
	return &MinState{extremeState{stateBase: newStateBase(0), sign: -1}}
}

type MaxState struct {
	extremeState
}

func NewMaxState() *MaxState {
	return &MaxState{extremeState{stateBase: newStateBase(0), sign: 1}}
}
