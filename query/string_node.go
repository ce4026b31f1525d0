package query

import (
	"fmt"

	"github.com/dot5enko/colquery/ops"
	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
)

func stringLiteral(v schema.Value) (string, bool, error) {
	switch v.Kind {
	case schema.KindNull:
		return "", true, nil
	case schema.KindString, schema.KindBinary:
		return v.S, false, nil
	default:
		return "", false, fmt.Errorf("%w: %s literal for a string condition", ErrInvalidQuery, v.Kind)
	}
}

// stringColumn is the binding shared by the nodes reading a string or
// binary column.
type stringColumn struct {
	ftype schema.FieldType
	leaf  storage.StringLeaf
}

func (sc *stringColumn) check(t *storage.Table, col schema.ColKey) error {
	def := t.ColumnInfo(col)
	if def.Type != sc.ftype || def.IsCollection() {
		return fmt.Errorf("%w: %s condition on %s column `%s`", ErrUnsupportedColumn, sc.ftype, def, def.Name)
	}
	return nil
}

func (sc *stringColumn) bind(p *storage.Page, col schema.ColKey) error {
	leaf, err := p.Strings(col)
	if err != nil {
		return err
	}
	sc.leaf = leaf
	return nil
}

func (sc *stringColumn) literal(s string, null bool) schema.Value {
	switch {
	case null:
		return schema.Null()
	case sc.ftype == schema.BinaryFieldType:
		return schema.Value{Kind: schema.KindBinary, S: s}
	default:
		return schema.String(s)
	}
}

// StringNode runs any string condition by a linear scan. Equality on
// string columns goes through StringEqualNode and StringEqualInsNode.
type StringNode struct {
	nodeBase
	stringColumn

	kind    NodeKind
	matcher stringMatcher
}

func newStringNode(ftype schema.FieldType, col schema.ColKey, cond ops.Cond, v schema.Value) (*StringNode, error) {
	s, null, err := stringLiteral(v)
	if err != nil {
		return nil, err
	}
	m, err := newStringMatcher(cond, s, null)
	if err != nil {
		return nil, err
	}

	n := &StringNode{
		nodeBase:     newBase(col, 10),
		stringColumn: stringColumn{ftype: ftype},
		kind:         StringCondition,
		matcher:      m,
	}

	switch {
	case ftype == schema.BinaryFieldType:
		n.kind = BinaryCondition
		n.dT = 100
	case cond == ops.Contains:
		n.kind = ContainsCondition
		if len(s) > 0 {
			n.dT = 50
		}
	case cond == ops.ContainsIns:
		n.kind = ContainsInsCondition
		if len(s) > 0 {
			n.dT = 75
		}
	}
	return n, nil
}

func NewStringNode(col schema.ColKey, cond ops.Cond, v schema.Value) (*StringNode, error) {
	return newStringNode(schema.StringFieldType, col, cond, v)
}

func NewBinaryNode(col schema.ColKey, cond ops.Cond, v schema.Value) (*StringNode, error) {
	return newStringNode(schema.BinaryFieldType, col, cond, v)
}

func (n *StringNode) Kind() NodeKind {
	return n.kind
}

func (n *StringNode) Cond() ops.Cond {
	return n.matcher.cond
}

func (n *StringNode) tableChanged() error {
	return n.check(n.table, n.col)
}

func (n *StringNode) pageChanged() error {
	return n.bind(n.page, n.col)
}

func (n *StringNode) FindFirstLocal(start, end int) int {
	n.checkBound()

	// a null pattern is contained in every row, null rows included
	if n.matcher.cond == ops.ContainsIns && n.matcher.null && start < end {
		return start
	}

	for i := start; i < end; i++ {
		if n.matcher.match(n.leaf.Get(i), n.leaf.IsNull(i)) {
			return i
		}
	}
	return NotFound
}

func (n *StringNode) DescribeCondition() string {
	return n.matcher.cond.String()
}

func (n *StringNode) Describe(st *DescribeState) (string, error) {
	lit := n.literal(n.matcher.value, n.matcher.null)
	return st.DescribeColumn(n.table, n.col) + " " + n.matcher.cond.String() + " " + PrintValue(lit), nil
}

func (n *StringNode) Clone() Node {
	c := *n
	c.nodeBase = n.cloneBase()
	c.leaf = storage.StringLeaf{}
	return &c
}

// StringEqualNode is string equality. It probes the search index when the
// column has one and holds a needle set once other equalities on the same
// column were merged into it.
type StringEqualNode struct {
	nodeBase
	stringColumn

	value string
	null  bool

	needles ops.Needles[string]

	hasIndex bool
	indexed  bool
	probe    indexProbe
}

func NewStringEqualNode(col schema.ColKey, v schema.Value) (*StringEqualNode, error) {
	s, null, err := stringLiteral(v)
	if err != nil {
		return nil, err
	}
	return &StringEqualNode{
		nodeBase:     newBase(col, 10),
		stringColumn: stringColumn{ftype: schema.StringFieldType},
		value:        s,
		null:         null,
	}, nil
}

func (n *StringEqualNode) Kind() NodeKind {
	return StringEqualCondition
}

func (n *StringEqualNode) Cond() ops.Cond {
	return ops.Equal
}

func (n *StringEqualNode) tableChanged() error {
	if err := n.check(n.table, n.col); err != nil {
		return err
	}
	n.hasIndex = n.needles.Len() == 0 && n.table.HasIndex(n.col)
	return nil
}

func (n *StringEqualNode) HasSearchIndex() bool {
	return n.hasIndex
}

func (n *StringEqualNode) IndexBasedKeys() []storage.RowKey {
	if !n.indexed {
		return nil
	}
	return n.probe.matches
}

func (n *StringEqualNode) Init(willQueryRanges bool) {
	n.nodeBase.Init(willQueryRanges)

	n.dT = 10
	n.indexed = false
	if n.hasIndex {
		keys, err := n.table.FindAll(n.col, n.literal(n.value, n.null))
		if err == nil {
			n.probe.reset(keys)
			n.indexed = true
			n.dT = 0
		}
	}
}

func (n *StringEqualNode) pageChanged() error {
	if n.indexed {
		return nil
	}
	return n.bind(n.page, n.col)
}

func (n *StringEqualNode) FindFirstLocal(start, end int) int {
	n.checkBound()
	if start >= end {
		return NotFound
	}

	switch {
	case n.indexed:
		return n.probe.search(n.page, start, end)
	case n.needles.Len() > 0:
		for i := start; i < end; i++ {
			if n.leaf.IsNull(i) {
				if n.needles.HasNull() {
					return i
				}
				continue
			}
			if n.needles.Contains(n.leaf.Get(i)) {
				return i
			}
		}
	case n.null:
		for i := start; i < end; i++ {
			if n.leaf.IsNull(i) {
				return i
			}
		}
	default:
		// sizes first, the text is only read on a length match
		want := len(n.value)
		for i := start; i < end; i++ {
			if n.leaf.Size(i) == want && !n.leaf.IsNull(i) && n.leaf.Get(i) == n.value {
				return i
			}
		}
	}
	return NotFound
}

func (n *StringEqualNode) consume(other Node) bool {
	o := other.(*StringEqualNode)

	// probing the index per needle loses against one merged scan here
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

func (n *StringEqualNode) addNeedle(v string, null bool) {
	if null {
		n.needles.AddNull()
		return
	}
	n.needles.Add(v)
}

func (n *StringEqualNode) DescribeCondition() string {
	return ops.Equal.String()
}

func (n *StringEqualNode) Describe(st *DescribeState) (string, error) {
	col := st.DescribeColumn(n.table, n.col)
	if n.needles.Len() == 0 {
		return col + " " + ops.Equal.String() + " " + PrintValue(n.literal(n.value, n.null)), nil
	}

	var values []schema.Value
	for _, v := range n.needles.Values() {
		values = append(values, schema.String(v))
	}
	if n.needles.HasNull() {
		values = append(values, schema.Null())
	}
	return describeNeedles(col, values), nil
}

func (n *StringEqualNode) Clone() Node {
	c := *n
	c.nodeBase = n.cloneBase()
	c.needles = n.needles.Clone()
	c.probe = indexProbe{}
	c.indexed = false
	c.leaf = storage.StringLeaf{}
	return &c
}

// StringEqualInsNode is case insensitive string equality, answered from
// the case folded postings of the search index when there is one.
type StringEqualInsNode struct {
	nodeBase
	stringColumn

	matcher stringMatcher

	hasIndex bool
	indexed  bool
	probe    indexProbe
}

func NewStringEqualInsNode(col schema.ColKey, v schema.Value) (*StringEqualInsNode, error) {
	s, null, err := stringLiteral(v)
	if err != nil {
		return nil, err
	}
	m, err := newStringMatcher(ops.EqualIns, s, null)
	if err != nil {
		return nil, err
	}
	return &StringEqualInsNode{
		nodeBase:     newBase(col, 10),
		stringColumn: stringColumn{ftype: schema.StringFieldType},
		matcher:      m,
	}, nil
}

func (n *StringEqualInsNode) Kind() NodeKind {
	return StringEqualInsCondition
}

func (n *StringEqualInsNode) Cond() ops.Cond {
	return ops.EqualIns
}

func (n *StringEqualInsNode) tableChanged() error {
	if err := n.check(n.table, n.col); err != nil {
		return err
	}
	n.hasIndex = n.table.HasIndex(n.col)
	return nil
}

func (n *StringEqualInsNode) HasSearchIndex() bool {
	return n.hasIndex
}

func (n *StringEqualInsNode) IndexBasedKeys() []storage.RowKey {
	if !n.indexed {
		return nil
	}
	return n.probe.matches
}

func (n *StringEqualInsNode) Init(willQueryRanges bool) {
	n.nodeBase.Init(willQueryRanges)

	n.dT = 10
	n.indexed = false
	if n.hasIndex {
		keys, err := n.table.FindAllNoCase(n.col, n.literal(n.matcher.value, n.matcher.null))
		if err == nil {
			keys = verifyKeys(n.table, n.col, keys, func(v schema.Value) bool {
				return n.matcher.match(v.S, v.IsNull())
			})
			n.probe.reset(keys)
			n.indexed = true
			n.dT = 0
		}
	}
}

func (n *StringEqualInsNode) pageChanged() error {
	if n.indexed {
		return nil
	}
	return n.bind(n.page, n.col)
}

func (n *StringEqualInsNode) FindFirstLocal(start, end int) int {
	n.checkBound()
	if n.indexed {
		return n.probe.search(n.page, start, end)
	}

	for i := start; i < end; i++ {
		if n.matcher.match(n.leaf.Get(i), n.leaf.IsNull(i)) {
			return i
		}
	}
	return NotFound
}

func (n *StringEqualInsNode) DescribeCondition() string {
	return ops.EqualIns.String()
}

func (n *StringEqualInsNode) Describe(st *DescribeState) (string, error) {
	lit := n.literal(n.matcher.value, n.matcher.null)
	return st.DescribeColumn(n.table, n.col) + " " + ops.EqualIns.String() + " " + PrintValue(lit), nil
}

func (n *StringEqualInsNode) Clone() Node {
	c := *n
	c.nodeBase = n.cloneBase()
	c.probe = indexProbe{}
	c.indexed = false
	c.leaf = storage.StringLeaf{}
	return &c
}
