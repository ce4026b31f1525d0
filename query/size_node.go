package query

import (
	"cmp"
	"fmt"

	"github.com/dot5enko/colquery/ops"
	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
)

func sizeLiteral(cond ops.Cond, v schema.Value) (int64, error) {
	if !orderedConds(cond) {
		return 0, fmt.Errorf("%w: condition %s on a size", ErrInvalidQuery, cond)
	}
	if v.Kind != schema.KindInt {
		return 0, fmt.Errorf("%w: size compared against %s", ErrInvalidQuery, v.Kind)
	}
	return v.I, nil
}

// SizeNode compares the byte length of string or binary values. Null
// values have no size and never match.
type SizeNode struct {
	nodeBase

	cond  ops.Cond
	value int64
	leaf  storage.StringLeaf
}

func NewSizeNode(col schema.ColKey, cond ops.Cond, v schema.Value) (*SizeNode, error) {
	size, err := sizeLiteral(cond, v)
	if err != nil {
		return nil, err
	}
	return &SizeNode{
		nodeBase: newBase(col, 20),
		cond:     cond,
		value:    size,
	}, nil
}

func (n *SizeNode) Kind() NodeKind {
	return SizeCondition
}

func (n *SizeNode) Cond() ops.Cond {
	return n.cond
}

func (n *SizeNode) tableChanged() error {
	def := n.table.ColumnInfo(n.col)
	if (def.Type != schema.StringFieldType && def.Type != schema.BinaryFieldType) || def.IsCollection() {
		return fmt.Errorf("%w: @size of %s column `%s`", ErrUnsupportedColumn, def, def.Name)
	}
	return nil
}

func (n *SizeNode) pageChanged() error {
	leaf, err := n.page.Strings(n.col)
	if err != nil {
		return err
	}
	n.leaf = leaf
	return nil
}

func (n *SizeNode) FindFirstLocal(start, end int) int {
	n.checkBound()
	for i := start; i < end; i++ {
		if n.leaf.IsNull(i) {
			continue
		}
		if ops.Holds(n.cond, cmp.Compare(int64(n.leaf.Size(i)), n.value)) {
			return i
		}
	}
	return NotFound
}

func (n *SizeNode) DescribeCondition() string {
	return n.cond.String()
}

func (n *SizeNode) Describe(st *DescribeState) (string, error) {
	return st.DescribeColumn(n.table, n.col) + ".@size " + n.cond.String() + " " + PrintValue(schema.Int(n.value)), nil
}

func (n *SizeNode) Clone() Node {
	c := *n
	c.nodeBase = n.cloneBase()
	c.leaf = storage.StringLeaf{}
	return &c
}

// SizeListNode compares the element count of list, set, dictionary and
// link list columns.
type SizeListNode struct {
	nodeBase

	cond  ops.Cond
	value int64
	leaf  storage.ListLeaf
}

func NewSizeListNode(col schema.ColKey, cond ops.Cond, v schema.Value) (*SizeListNode, error) {
	size, err := sizeLiteral(cond, v)
	if err != nil {
		return nil, err
	}
	return &SizeListNode{
		nodeBase: newBase(col, 30),
		cond:     cond,
		value:    size,
	}, nil
}

func (n *SizeListNode) Kind() NodeKind {
	return SizeListCondition
}

func (n *SizeListNode) Cond() ops.Cond {
	return n.cond
}

func (n *SizeListNode) tableChanged() error {
	def := n.table.ColumnInfo(n.col)
	if !def.IsCollection() {
		return fmt.Errorf("%w: @count of single valued column `%s`", ErrUnsupportedColumn, def.Name)
	}
	return nil
}

func (n *SizeListNode) pageChanged() error {
	leaf, err := n.page.Lists(n.col)
	if err != nil {
		return err
	}
	n.leaf = leaf
	return nil
}

func (n *SizeListNode) FindFirstLocal(start, end int) int {
	n.checkBound()
	for i := start; i < end; i++ {
		if ops.Holds(n.cond, cmp.Compare(int64(n.leaf.Size(i)), n.value)) {
			return i
		}
	}
	return NotFound
}

func (n *SizeListNode) DescribeCondition() string {
	return n.cond.String()
}

func (n *SizeListNode) Describe(st *DescribeState) (string, error) {
	return st.DescribeColumn(n.table, n.col) + ".@count " + n.cond.String() + " " + PrintValue(schema.Int(n.value)), nil
}

func (n *SizeListNode) Clone() Node {
	c := *n
	c.nodeBase = n.cloneBase()
	c.leaf = storage.ListLeaf{}
	return &c
}
