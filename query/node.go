package query

import (
	"fmt"

	"github.com/dot5enko/colquery/ops"
	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
)

// NodeKind discriminates node variants. Two nodes can only be merged when
// their kinds and conditions agree.
type NodeKind uint8

const (
	IntCondition NodeKind = iota
	FloatCondition
	DoubleCondition
	BoolCondition
	TimestampCondition
	DecimalCondition
	UUIDCondition
	ObjectIDCondition
	BinaryCondition
	StringCondition
	StringEqualCondition
	StringEqualInsCondition
	ContainsCondition
	ContainsInsCondition
	SizeCondition
	SizeListCondition
	MixedCondition
	OrCondition
	NotCondition
	TwoColumnsCondition
	LinksToCondition
	ExpressionCondition
)

func (k NodeKind) String() string {
	switch k {
	case IntCondition:
		return "Int"
	case FloatCondition:
		return "Float"
	case DoubleCondition:
		return "Double"
	case BoolCondition:
		return "Bool"
	case TimestampCondition:
		return "Timestamp"
	case DecimalCondition:
		return "Decimal"
	case UUIDCondition:
		return "UUID"
	case ObjectIDCondition:
		return "ObjectID"
	case BinaryCondition:
		return "Binary"
	case StringCondition:
		return "String"
	case StringEqualCondition:
		return "StringEqual"
	case StringEqualInsCondition:
		return "StringEqualIns"
	case ContainsCondition:
		return "Contains"
	case ContainsInsCondition:
		return "ContainsIns"
	case SizeCondition:
		return "Size"
	case SizeListCondition:
		return "SizeList"
	case MixedCondition:
		return "Mixed"
	case OrCondition:
		return "Or"
	case NotCondition:
		return "Not"
	case TwoColumnsCondition:
		return "TwoColumns"
	case LinksToCondition:
		return "LinksTo"
	case ExpressionCondition:
		return "Expression"
	default:
		panic(fmt.Sprintf("unknown node kind %d", uint8(k)))
	}
}

// Node is one predicate of a query. A node owns at most one child, the
// next predicate AND'ed onto it, so a chain of nodes is a conjunction.
//
// Offsets passed to FindFirstLocal are relative to the page bound with
// SetPage and must stay inside it.
type Node interface {
	Column() schema.ColKey
	Kind() NodeKind
	Cond() ops.Cond

	// Overhead is the cost of testing the row right after the last tested
	// one. 0 for index backed nodes.
	Overhead() float64

	// Init prepares a scan. willQueryRanges is false when the node will
	// only be asked about single rows.
	Init(willQueryRanges bool)

	// FindFirstLocal returns the first offset in [start, end) that
	// satisfies this node alone, or NotFound.
	FindFirstLocal(start, end int) int

	Validate() error
	Clone() Node

	Describe(st *DescribeState) (string, error)
	DescribeCondition() string
	CollectDependencies(tables *[]schema.TableKey)

	HasSearchIndex() bool
	IndexBasedKeys() []storage.RowKey

	AddChild(child Node)
	Child() Node

	base() *nodeBase
}

// optional node hooks
type (
	tableChangedHook interface {
		tableChanged() error
	}
	pageChangedHook interface {
		pageChanged() error
	}
	bulkFinder interface {
		findAllLocal(start, end int) int
	}
	conditionConsumer interface {
		consume(other Node) bool
	}
)

// nodeBase carries the state every node shares: its column, its chain
// links and the current table/page binding.
type nodeBase struct {
	col schema.ColKey
	dT  float64

	child    Node
	children []Node

	table *storage.Table
	page  *storage.Page

	state  State
	source storage.Accessor
}

func newBase(col schema.ColKey, dT float64) nodeBase {
	return nodeBase{col: col, dT: dT}
}

func (b *nodeBase) base() *nodeBase {
	return b
}

func (b *nodeBase) Column() schema.ColKey {
	return b.col
}

func (b *nodeBase) Cond() ops.Cond {
	return ops.Equal
}

func (b *nodeBase) Overhead() float64 {
	return b.dT
}

func (b *nodeBase) Init(willQueryRanges bool) {
	if b.child != nil {
		b.child.Init(willQueryRanges)
	}
}

func (b *nodeBase) Validate() error {
	if b.child != nil {
		return b.child.Validate()
	}
	return nil
}

func (b *nodeBase) DescribeCondition() string {
	return "matches"
}

func (b *nodeBase) CollectDependencies(tables *[]schema.TableKey) {}

func (b *nodeBase) HasSearchIndex() bool {
	return false
}

func (b *nodeBase) IndexBasedKeys() []storage.RowKey {
	return nil
}

func (b *nodeBase) AddChild(child Node) {
	if b.child != nil {
		b.child.AddChild(child)
		return
	}
	b.child = child
}

func (b *nodeBase) Child() Node {
	return b.child
}

// cloneBase copies the binding and deep copies the chain below. The page
// is not carried over, a clone has to be bound again before it scans.
func (b *nodeBase) cloneBase() nodeBase {
	c := nodeBase{
		col:   b.col,
		dT:    b.dT,
		table: b.table,
	}
	if b.child != nil {
		c.child = b.child.Clone()
	}
	return c
}

func (b *nodeBase) columnName() string {
	if b.table == nil {
		return fmt.Sprintf("col#%d", b.col)
	}
	return b.table.ColumnName(b.col)
}

func (b *nodeBase) checkBound() {
	if b.page == nil {
		panic(fmt.Sprintf("node on column %s searched without a page", b.columnName()))
	}
}
