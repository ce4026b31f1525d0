package query

import (
	"fmt"

	"github.com/dot5enko/colquery/ops"
	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
)

// IntNode compares an int column against a literal. Equality nodes can
// carry a needle set after merging and use the search index when the
// column has one.
type IntNode struct {
	nodeBase

	cond  ops.Cond
	value int64
	null  bool

	needles ops.Needles[int64]

	hasIndex bool
	indexed  bool
	probe    indexProbe

	leaf storage.Leaf[int64]
	// the page bounds rule out every non-null row
	skip      bool
	nullMatch bool

	filterBuf []int32
}

func NewIntNode(col schema.ColKey, cond ops.Cond, v schema.Value) (*IntNode, error) {
	if !cond.IsOrdering() && cond != ops.Equal && cond != ops.NotEqual {
		return nil, fmt.Errorf("%w: condition %s on an int column", ErrInvalidQuery, cond)
	}
	if !v.IsNull() && v.Kind != schema.KindInt {
		return nil, fmt.Errorf("%w: %s literal for an int column", ErrInvalidQuery, v.Kind)
	}

	n := &IntNode{
		nodeBase: newBase(col, .25),
		cond:     cond,
		value:    v.I,
		null:     v.IsNull(),
	}
	n.nullMatch, _ = ops.NullOutcome(cond, true, n.null)
	return n, nil
}

func (n *IntNode) Kind() NodeKind {
	return IntCondition
}

func (n *IntNode) Cond() ops.Cond {
	return n.cond
}

func (n *IntNode) literal() schema.Value {
	if n.null {
		return schema.Null()
	}
	return schema.Int(n.value)
}

func (n *IntNode) tableChanged() error {
	def := n.table.ColumnInfo(n.col)
	if def.Type != schema.IntFieldType || def.IsCollection() {
		return fmt.Errorf("%w: int condition on %s column `%s`", ErrUnsupportedColumn, def, def.Name)
	}
	n.hasIndex = n.cond == ops.Equal && n.table.HasIndex(n.col)
	return nil
}

func (n *IntNode) HasSearchIndex() bool {
	return n.hasIndex
}

func (n *IntNode) IndexBasedKeys() []storage.RowKey {
	if !n.indexed {
		return nil
	}
	return n.probe.matches
}

func (n *IntNode) Init(willQueryRanges bool) {
	n.nodeBase.Init(willQueryRanges)

	n.dT = .25
	n.indexed = false

	if n.hasIndex && n.needles.Len() == 0 {
		keys, err := n.table.FindAll(n.col, n.literal())
		if err == nil {
			n.probe.reset(keys)
			n.indexed = true
			n.dT = 0
		}
	}
}

func (n *IntNode) pageChanged() error {
	if n.indexed {
		return nil
	}

	leaf, err := storage.LeafOf[int64](n.page, n.col)
	if err != nil {
		return err
	}
	n.leaf = leaf

	n.skip = false
	if n.needles.Len() == 0 && !n.null {
		bounds, ok := n.page.IntBounds(n.col)
		hasNulls := leaf.HasNulls()
		switch {
		case !ok:
			// only nulls on the page
			n.skip = !n.nullMatch
		case !hasNulls || !n.nullMatch:
			n.skip = bounds.Excludes(n.cond, n.value)
		}
	}
	return nil
}

func (n *IntNode) isNull() func(int) bool {
	if !n.leaf.HasNulls() {
		return nil
	}
	return n.leaf.IsNull
}

func (n *IntNode) FindFirstLocal(start, end int) int {
	n.checkBound()
	if start >= end {
		return NotFound
	}

	switch {
	case n.needles.Len() > 0:
		return ops.FindFirstHaystack(n.leaf.Values(), n.isNull(), &n.needles, start, end)
	case n.indexed:
		return n.probe.search(n.page, start, end)
	case n.skip:
		return NotFound
	case n.null || n.leaf.NullsInRange(start, end):
		for i := start; i < end; i++ {
			if ops.CompareOrdered(n.cond, n.leaf.Get(i), n.leaf.IsNull(i), n.value, n.null) {
				return i
			}
		}
		return NotFound
	case end-start == 1:
		if ops.CompareOrdered(n.cond, n.leaf.Get(start), false, n.value, false) {
			return start
		}
		return NotFound
	default:
		return ops.FindFirst(n.cond, n.leaf.Values(), n.value, start, end)
	}
}

// findAllLocal filters whole null free ranges with the offset emitting
// kernels instead of restarting a find per match.
func (n *IntNode) findAllLocal(start, end int) int {
	if n.needles.Len() > 0 || n.indexed || n.null || n.leaf.NullsInRange(start, end) {
		return scanAllLocal(n, start, end)
	}
	if n.skip {
		return end
	}

	if cap(n.filterBuf) < end-start {
		n.filterBuf = make([]int32, end-start)
	}
	buf := n.filterBuf[:end-start]

	cnt := ops.Filter(n.cond, n.leaf.Values()[start:end], n.value, buf)
	for _, off := range buf[:cnt] {
		if !emit(&n.nodeBase, start+int(off)) {
			return NotFound
		}
	}
	return end
}

func (n *IntNode) consume(other Node) bool {
	o := other.(*IntNode)
	if n.cond != ops.Equal || o.cond != ops.Equal {
		return false
	}

	n.hasIndex = false

	if n.needles.Len() == 0 {
		n.addNeedle(n.value, n.null)
	}
	if o.needles.Len() == 0 {
		n.addNeedle(o.value, o.null)
	} else {
		for _, v := range o.needles.Values() {
			n.needles.Add(v)
		}
		if o.needles.HasNull() {
			n.needles.AddNull()
		}
	}
	return true
}

func (n *IntNode) addNeedle(v int64, null bool) {
	if null {
		n.needles.AddNull()
		return
	}
	n.needles.Add(v)
}

func (n *IntNode) DescribeCondition() string {
	return n.cond.String()
}

func (n *IntNode) Describe(st *DescribeState) (string, error) {
	col := st.DescribeColumn(n.table, n.col)
	if n.needles.Len() == 0 {
		return col + " " + n.cond.String() + " " + PrintValue(n.literal()), nil
	}

	var values []schema.Value
	for _, v := range n.needles.Values() {
		values = append(values, schema.Int(v))
	}
	if n.needles.HasNull() {
		values = append(values, schema.Null())
	}
	return describeNeedles(col, values), nil
}

func describeNeedles(col string, values []schema.Value) string {
	s := "("
	for i, v := range values {
		if i > 0 {
			s += " or "
		}
		s += col + " " + ops.Equal.String() + " " + PrintValue(v)
	}
	return s + ")"
}

func (n *IntNode) Clone() Node {
	c := *n
	c.nodeBase = n.cloneBase()
	c.needles = n.needles.Clone()
	c.probe = indexProbe{}
	c.indexed = false
	c.leaf = storage.Leaf[int64]{}
	c.filterBuf = nil
	return &c
}
