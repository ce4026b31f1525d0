package query

import (
	"fmt"

	"github.com/dot5enko/colquery/ops"
	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
)

// NewCondition builds the node comparing column col of t against v and
// binds it to t. Combinations without a specialised node fall back to a
// row by row expression.
func NewCondition(t *storage.Table, col schema.ColKey, cond ops.Cond, v schema.Value) (Node, error) {
	n, err := newCondition(t.ColumnInfo(col), col, cond, v)
	if err != nil {
		return nil, err
	}
	if err := SetTable(n, t); err != nil {
		return nil, err
	}
	return n, nil
}

func newCondition(def *schema.SchemaColumn, col schema.ColKey, cond ops.Cond, v schema.Value) (Node, error) {
	if def.IsCollection() && def.Type != schema.LinkListFieldType {
		return nil, fmt.Errorf("%w: `%s` is a collection, only its size can be queried", ErrUnsupportedColumn, def.Name)
	}

	switch def.Type {
	case schema.IntFieldType:
		if v.IsNull() || v.Kind == schema.KindInt {
			return NewIntNode(col, cond, v)
		}
		return compareNode(col, cond, v), nil
	case schema.FloatFieldType:
		return NewFloatNode(col, cond, v)
	case schema.DoubleFieldType:
		return NewDoubleNode(col, cond, v)
	case schema.BoolFieldType:
		return NewBoolNode(col, cond, v)
	case schema.TimestampFieldType:
		return NewTimestampNode(col, cond, v)
	case schema.DecimalFieldType:
		return NewDecimalNode(col, cond, v)
	case schema.UUIDFieldType:
		return NewUUIDNode(col, cond, v)
	case schema.ObjectIDFieldType:
		return NewObjectIDNode(col, cond, v)
	case schema.StringFieldType:
		switch cond {
		case ops.Equal:
			return NewStringEqualNode(col, v)
		case ops.EqualIns:
			return NewStringEqualInsNode(col, v)
		default:
			return NewStringNode(col, cond, v)
		}
	case schema.BinaryFieldType:
		return NewBinaryNode(col, cond, v)
	case schema.MixedFieldType:
		return NewMixedNode(col, cond, v)
	case schema.LinkFieldType, schema.LinkListFieldType:
		if v.Kind == schema.KindLink {
			return NewLinksToNode(col, cond, storage.RowKey(v.I))
		}
		if def.Type == schema.LinkFieldType && v.IsNull() {
			return compareNode(col, cond, v), nil
		}
		return nil, fmt.Errorf("%w: %s literal for link column `%s`", ErrInvalidQuery, v.Kind, def.Name)
	default:
		return nil, fmt.Errorf("%w: `%s` of type %s", ErrUnsupportedColumn, def.Name, def.Type)
	}
}

func compareNode(col schema.ColKey, cond ops.Cond, v schema.Value) Node {
	return NewExpressionNode(NewCompare(NewCol(col), cond, NewConst(v)))
}

// NewSizeCondition compares the size of a string or binary value, or the
// element count of a collection, against v.
func NewSizeCondition(t *storage.Table, col schema.ColKey, cond ops.Cond, v schema.Value) (Node, error) {
	def := t.ColumnInfo(col)

	var n Node
	var err error
	if def.IsCollection() {
		n, err = NewSizeListNode(col, cond, v)
	} else {
		n, err = NewSizeNode(col, cond, v)
	}
	if err != nil {
		return nil, err
	}
	if err := SetTable(n, t); err != nil {
		return nil, err
	}
	return n, nil
}
