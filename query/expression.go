package query

import (
	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
)

// Expression is a predicate evaluated row by row outside the leaf typed
// nodes, such as comparisons between computed values.
type Expression interface {
	SetTable(t *storage.Table) error
	SetPage(p *storage.Page) error
	FindFirst(start, end int) int
	CollectDependencies(tables *[]schema.TableKey)
	Describe(st *DescribeState) (string, error)
	Clone() Expression
}

// ExpressionNode adapts an Expression to the node chain.
type ExpressionNode struct {
	nodeBase
	expr Expression
}

func NewExpressionNode(expr Expression) *ExpressionNode {
	return &ExpressionNode{
		nodeBase: newBase(schema.NoColumn, 50),
		expr:     expr,
	}
}

func (n *ExpressionNode) Kind() NodeKind {
	return ExpressionCondition
}

func (n *ExpressionNode) tableChanged() error {
	return n.expr.SetTable(n.table)
}

func (n *ExpressionNode) pageChanged() error {
	return n.expr.SetPage(n.page)
}

func (n *ExpressionNode) FindFirstLocal(start, end int) int {
	n.checkBound()
	return n.expr.FindFirst(start, end)
}

func (n *ExpressionNode) Describe(st *DescribeState) (string, error) {
	return n.expr.Describe(st)
}

func (n *ExpressionNode) CollectDependencies(tables *[]schema.TableKey) {
	n.expr.CollectDependencies(tables)
}

func (n *ExpressionNode) Clone() Node {
	return &ExpressionNode{
		nodeBase: n.cloneBase(),
		expr:     n.expr.Clone(),
	}
}
