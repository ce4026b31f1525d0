package query

import (
	"fmt"

	"github.com/dot5enko/colquery/ops"
	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
)

func isStringish(v schema.Value) bool {
	return v.Kind == schema.KindString || v.Kind == schema.KindBinary
}

// evalValues evaluates `v c arg` between two dynamically typed values.
// Incomparable kinds are unequal and unordered. String conditions only
// apply to string and binary values.
func evalValues(c ops.Cond, v, arg schema.Value) bool {
	vc := valueComparer{cond: c}
	return vc.eval(v, arg)
}

// valueComparer is evalValues for row by row use. It keeps the matcher of
// the last string pattern, so a constant operand builds it once.
type valueComparer struct {
	cond ops.Cond
	last *stringMatcher
}

func (vc *valueComparer) eval(v, arg schema.Value) bool {
	c := vc.cond
	if c.IsSubstring() || c.IsCaseInsensitive() {
		if (!v.IsNull() && !isStringish(v)) || (!arg.IsNull() && !isStringish(arg)) {
			return c == ops.NotEqualIns
		}
		m := vc.matcher(arg)
		if m == nil {
			return false
		}
		return m.match(v.S, v.IsNull())
	}

	if res, decided := ops.NullOutcome(c, v.IsNull(), arg.IsNull()); decided {
		return res
	}
	r, ok := schema.Compare(v, arg)
	if !ok {
		return c == ops.NotEqual
	}
	return ops.Holds(c, r)
}

// matcher returns nil for a pattern that is not valid UTF-8.
func (vc *valueComparer) matcher(arg schema.Value) *stringMatcher {
	if vc.last != nil && vc.last.null == arg.IsNull() && vc.last.value == arg.S {
		return vc.last
	}
	m, err := newStringMatcher(vc.cond, arg.S, arg.IsNull())
	if err != nil {
		return nil
	}
	vc.last = &m
	return vc.last
}

// MixedNode compares a column of dynamically typed values against a
// literal of any kind.
type MixedNode struct {
	nodeBase

	cond  ops.Cond
	value schema.Value

	// set for string conditions with a string or null literal
	matcher *stringMatcher

	hasIndex bool
	indexed  bool
	probe    indexProbe

	leaf storage.Leaf[schema.Value]
}

func NewMixedNode(col schema.ColKey, cond ops.Cond, v schema.Value) (*MixedNode, error) {
	n := &MixedNode{
		nodeBase: newBase(col, 1),
		cond:     cond,
		value:    v,
	}

	if (cond.IsSubstring() || cond.IsCaseInsensitive()) && (v.IsNull() || isStringish(v)) {
		m, err := newStringMatcher(cond, v.S, v.IsNull())
		if err != nil {
			return nil, err
		}
		n.matcher = &m
	}
	return n, nil
}

func (n *MixedNode) Kind() NodeKind {
	return MixedCondition
}

func (n *MixedNode) Cond() ops.Cond {
	return n.cond
}

func (n *MixedNode) tableChanged() error {
	def := n.table.ColumnInfo(n.col)
	if def.Type != schema.MixedFieldType {
		return fmt.Errorf("%w: mixed condition on %s column `%s`", ErrUnsupportedColumn, def, def.Name)
	}
	n.hasIndex = (n.cond == ops.Equal || n.cond == ops.EqualIns) && n.table.HasIndex(n.col)
	return nil
}

func (n *MixedNode) HasSearchIndex() bool {
	return n.hasIndex
}

func (n *MixedNode) IndexBasedKeys() []storage.RowKey {
	if !n.indexed {
		return nil
	}
	return n.probe.matches
}

func (n *MixedNode) Init(willQueryRanges bool) {
	n.nodeBase.Init(willQueryRanges)

	n.dT = 1
	n.indexed = false
	if !n.hasIndex {
		return
	}

	var keys []storage.RowKey
	var err error
	if n.cond == ops.EqualIns {
		keys, err = n.table.FindAllNoCase(n.col, n.value)
	} else {
		keys, err = n.table.FindAll(n.col, n.value)
	}
	if err == nil {
		n.probe.reset(verifyKeys(n.table, n.col, keys, n.matches))
		n.indexed = true
		n.dT = 0
	}
}

func (n *MixedNode) pageChanged() error {
	if n.indexed {
		return nil
	}
	leaf, err := storage.LeafOf[schema.Value](n.page, n.col)
	if err != nil {
		return err
	}
	n.leaf = leaf
	return nil
}

func (n *MixedNode) matches(v schema.Value) bool {
	if n.matcher == nil {
		return evalValues(n.cond, v, n.value)
	}

	if !v.IsNull() {
		// case insensitive forms only look at values of the literal's kind
		if n.cond.IsCaseInsensitive() && !n.value.IsNull() && v.Kind != n.value.Kind {
			return n.cond == ops.NotEqualIns
		}
		if !isStringish(v) {
			return n.cond == ops.NotEqualIns
		}
	}
	return n.matcher.match(v.S, v.IsNull())
}

func (n *MixedNode) FindFirstLocal(start, end int) int {
	n.checkBound()
	if n.indexed {
		return n.probe.search(n.page, start, end)
	}

	for i := start; i < end; i++ {
		if n.matches(n.leaf.Get(i)) {
			return i
		}
	}
	return NotFound
}

func (n *MixedNode) DescribeCondition() string {
	return n.cond.String()
}

func (n *MixedNode) Describe(st *DescribeState) (string, error) {
	return st.DescribeColumn(n.table, n.col) + " " + n.cond.String() + " " + PrintValue(n.value), nil
}

func (n *MixedNode) Clone() Node {
	c := *n
	c.nodeBase = n.cloneBase()
	c.probe = indexProbe{}
	c.indexed = false
	c.leaf = storage.Leaf[schema.Value]{}
	return &c
}
