package query

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dot5enko/colquery/ops"
	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
)

// ValueNode compares a fixed width column against a literal through a
// null aware comparator.
type ValueNode[T any] struct {
	nodeBase

	kind  NodeKind
	ftype schema.FieldType
	cond  ops.Cond

	lit   schema.Value
	value T
	null  bool

	match func(c ops.Cond, v T, vNull bool, arg T, argNull bool) bool
	// unrolled kernel for null free ranges, nil when the type has none
	kernel func(c ops.Cond, arr []T, v T, start, end int) int

	indexable bool
	hasIndex  bool
	indexed   bool
	probe     indexProbe

	overhead float64
	leaf     storage.Leaf[T]
}

type valueSpec[T any] struct {
	kind      NodeKind
	ftype     schema.FieldType
	dT        float64
	conds     func(ops.Cond) bool
	extract   func(v schema.Value) (T, schema.Value, bool)
	compare   func(a, b T) int
	match     func(c ops.Cond, v T, vNull bool, arg T, argNull bool) bool
	kernel    func(c ops.Cond, arr []T, v T, start, end int) int
	indexable bool
}

func newValueNode[T any](spec valueSpec[T], col schema.ColKey, cond ops.Cond, v schema.Value) (*ValueNode[T], error) {
	if !spec.conds(cond) {
		return nil, fmt.Errorf("%w: condition %s on a %s column", ErrInvalidQuery, cond, spec.ftype)
	}

	n := &ValueNode[T]{
		nodeBase:  newBase(col, spec.dT),
		kind:      spec.kind,
		ftype:     spec.ftype,
		cond:      cond,
		null:      v.IsNull(),
		lit:       schema.Null(),
		match:     spec.match,
		kernel:    spec.kernel,
		indexable: spec.indexable && cond == ops.Equal,
		overhead:  spec.dT,
	}
	if n.match == nil {
		compare := spec.compare
		n.match = func(c ops.Cond, v T, vNull bool, arg T, argNull bool) bool {
			return ops.CompareFunc(c, compare, v, vNull, arg, argNull)
		}
	}

	if !n.null {
		value, lit, ok := spec.extract(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s literal for a %s column", ErrInvalidQuery, v.Kind, spec.ftype)
		}
		n.value, n.lit = value, lit
	}
	return n, nil
}

func equalityOnly(c ops.Cond) bool {
	return c == ops.Equal || c == ops.NotEqual
}

func orderedConds(c ops.Cond) bool {
	return equalityOnly(c) || c.IsOrdering()
}

func floatKernel[T float32 | float64](c ops.Cond, arr []T, v T, start, end int) int {
	return ops.FindFirst(c, arr, v, start, end)
}

func NewFloatNode(col schema.ColKey, cond ops.Cond, v schema.Value) (*ValueNode[float32], error) {
	return newValueNode(valueSpec[float32]{
		kind:  FloatCondition,
		ftype: schema.FloatFieldType,
		dT:    1,
		conds: orderedConds,
		extract: func(v schema.Value) (float32, schema.Value, bool) {
			if !v.Kind.IsNumeric() {
				return 0, v, false
			}
			f := float32(v.AsFloat64())
			return f, schema.Float(f), true
		},
		match:  ops.CompareOrdered[float32],
		kernel: floatKernel[float32],
	}, col, cond, v)
}

func NewDoubleNode(col schema.ColKey, cond ops.Cond, v schema.Value) (*ValueNode[float64], error) {
	return newValueNode(valueSpec[float64]{
		kind:  DoubleCondition,
		ftype: schema.DoubleFieldType,
		dT:    1,
		conds: orderedConds,
		extract: func(v schema.Value) (float64, schema.Value, bool) {
			if !v.Kind.IsNumeric() {
				return 0, v, false
			}
			f := v.AsFloat64()
			return f, schema.Double(f), true
		},
		match:  ops.CompareOrdered[float64],
		kernel: floatKernel[float64],
	}, col, cond, v)
}

func NewBoolNode(col schema.ColKey, cond ops.Cond, v schema.Value) (*ValueNode[bool], error) {
	return newValueNode(valueSpec[bool]{
		kind:  BoolCondition,
		ftype: schema.BoolFieldType,
		dT:    1,
		conds: equalityOnly,
		extract: func(v schema.Value) (bool, schema.Value, bool) {
			return v.Bool(), v, v.Kind == schema.KindBool
		},
		compare: func(a, b bool) int {
			return b2i(a) - b2i(b)
		},
	}, col, cond, v)
}

func NewTimestampNode(col schema.ColKey, cond ops.Cond, v schema.Value) (*ValueNode[time.Time], error) {
	return newValueNode(valueSpec[time.Time]{
		kind:  TimestampCondition,
		ftype: schema.TimestampFieldType,
		dT:    2,
		conds: orderedConds,
		extract: func(v schema.Value) (time.Time, schema.Value, bool) {
			return v.T, v, v.Kind == schema.KindTimestamp
		},
		compare: func(a, b time.Time) int {
			return a.Compare(b)
		},
	}, col, cond, v)
}

func NewDecimalNode(col schema.ColKey, cond ops.Cond, v schema.Value) (*ValueNode[decimal.Decimal], error) {
	return newValueNode(valueSpec[decimal.Decimal]{
		kind:  DecimalCondition,
		ftype: schema.DecimalFieldType,
		dT:    1,
		conds: orderedConds,
		extract: func(v schema.Value) (decimal.Decimal, schema.Value, bool) {
			var d decimal.Decimal
			switch v.Kind {
			case schema.KindDecimal:
				d = v.D
			case schema.KindInt:
				d = decimal.NewFromInt(v.I)
			case schema.KindFloat, schema.KindDouble:
				d = decimal.NewFromFloat(v.F)
			default:
				return d, v, false
			}
			return d, schema.Decimal(d), true
		},
		compare: func(a, b decimal.Decimal) int {
			return a.Cmp(b)
		},
	}, col, cond, v)
}

func NewUUIDNode(col schema.ColKey, cond ops.Cond, v schema.Value) (*ValueNode[uuid.UUID], error) {
	return newValueNode(valueSpec[uuid.UUID]{
		kind:  UUIDCondition,
		ftype: schema.UUIDFieldType,
		dT:    1,
		conds: orderedConds,
		extract: func(v schema.Value) (uuid.UUID, schema.Value, bool) {
			return v.U, v, v.Kind == schema.KindUUID
		},
		compare: func(a, b uuid.UUID) int {
			return bytes.Compare(a[:], b[:])
		},
		indexable: true,
	}, col, cond, v)
}

func NewObjectIDNode(col schema.ColKey, cond ops.Cond, v schema.Value) (*ValueNode[schema.ObjectID], error) {
	return newValueNode(valueSpec[schema.ObjectID]{
		kind:  ObjectIDCondition,
		ftype: schema.ObjectIDFieldType,
		dT:    1,
		conds: orderedConds,
		extract: func(v schema.Value) (schema.ObjectID, schema.Value, bool) {
			return v.O, v, v.Kind == schema.KindObjectID
		},
		compare: func(a, b schema.ObjectID) int {
			return bytes.Compare(a[:], b[:])
		},
		indexable: true,
	}, col, cond, v)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (n *ValueNode[T]) Kind() NodeKind {
	return n.kind
}

func (n *ValueNode[T]) Cond() ops.Cond {
	return n.cond
}

func (n *ValueNode[T]) tableChanged() error {
	def := n.table.ColumnInfo(n.col)
	if def.Type != n.ftype || def.IsCollection() {
		return fmt.Errorf("%w: %s condition on %s column `%s`", ErrUnsupportedColumn, n.ftype, def, def.Name)
	}
	n.hasIndex = n.indexable && n.table.HasIndex(n.col)
	return nil
}

func (n *ValueNode[T]) HasSearchIndex() bool {
	return n.hasIndex
}

func (n *ValueNode[T]) IndexBasedKeys() []storage.RowKey {
	if !n.indexed {
		return nil
	}
	return n.probe.matches
}

func (n *ValueNode[T]) Init(willQueryRanges bool) {
	n.nodeBase.Init(willQueryRanges)

	n.dT = n.overhead
	n.indexed = false
	if n.hasIndex {
		keys, err := n.table.FindAll(n.col, n.lit)
		if err == nil {
			n.probe.reset(keys)
			n.indexed = true
			n.dT = 0
		}
	}
}

func (n *ValueNode[T]) pageChanged() error {
	if n.indexed {
		return nil
	}
	leaf, err := storage.LeafOf[T](n.page, n.col)
	if err != nil {
		return err
	}
	n.leaf = leaf
	return nil
}

func (n *ValueNode[T]) FindFirstLocal(start, end int) int {
	n.checkBound()
	if start >= end {
		return NotFound
	}
	if n.indexed {
		return n.probe.search(n.page, start, end)
	}

	if n.kernel != nil && !n.null && !n.leaf.NullsInRange(start, end) {
		return n.kernel(n.cond, n.leaf.Values(), n.value, start, end)
	}

	for i := start; i < end; i++ {
		if n.match(n.cond, n.leaf.Get(i), n.leaf.IsNull(i), n.value, n.null) {
			return i
		}
	}
	return NotFound
}

func (n *ValueNode[T]) DescribeCondition() string {
	return n.cond.String()
}

func (n *ValueNode[T]) Describe(st *DescribeState) (string, error) {
	return st.DescribeColumn(n.table, n.col) + " " + n.cond.String() + " " + PrintValue(n.lit), nil
}

func (n *ValueNode[T]) Clone() Node {
	c := *n
	c.nodeBase = n.cloneBase()
	c.probe = indexProbe{}
	c.indexed = false
	c.leaf = storage.Leaf[T]{}
	return &c
}
