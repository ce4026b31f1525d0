package query

import (
	"fmt"

	"github.com/dot5enko/colquery/ops"
	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
)

// TwoColumnsNode compares two columns of the same row.
type TwoColumnsNode struct {
	nodeBase

	col2 schema.ColKey
	cond ops.Cond
	eval valueComparer

	left  storage.Accessor
	right storage.Accessor
}

func NewTwoColumnsNode(col1 schema.ColKey, cond ops.Cond, col2 schema.ColKey) *TwoColumnsNode {
	return &TwoColumnsNode{
		nodeBase: newBase(col1, 100),
		col2:     col2,
		cond:     cond,
		eval:     valueComparer{cond: cond},
	}
}

func (n *TwoColumnsNode) Kind() NodeKind {
	return TwoColumnsCondition
}

func (n *TwoColumnsNode) Cond() ops.Cond {
	return n.cond
}

func (n *TwoColumnsNode) tableChanged() error {
	for _, col := range []schema.ColKey{n.col, n.col2} {
		def := n.table.ColumnInfo(col)
		if def.IsCollection() {
			return fmt.Errorf("%w: comparing two columns is not supported for collection column `%s`", ErrUnsupportedColumn, def.Name)
		}
	}
	return nil
}

func (n *TwoColumnsNode) pageChanged() error {
	left, err := n.page.Accessor(n.col)
	if err != nil {
		return err
	}
	right, err := n.page.Accessor(n.col2)
	if err != nil {
		return err
	}
	n.left, n.right = left, right
	return nil
}

func (n *TwoColumnsNode) FindFirstLocal(start, end int) int {
	n.checkBound()
	for i := start; i < end; i++ {
		if n.eval.eval(n.left.Value(i), n.right.Value(i)) {
			return i
		}
	}
	return NotFound
}

func (n *TwoColumnsNode) DescribeCondition() string {
	return n.cond.String()
}

func (n *TwoColumnsNode) Describe(st *DescribeState) (string, error) {
	return st.DescribeColumn(n.table, n.col) + " " + n.cond.String() + " " + st.DescribeColumn(n.table, n.col2), nil
}

func (n *TwoColumnsNode) Clone() Node {
	return &TwoColumnsNode{
		nodeBase: n.cloneBase(),
		col2:     n.col2,
		cond:     n.cond,
		eval:     valueComparer{cond: n.cond},
	}
}
