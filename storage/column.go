package storage

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dot5enko/colquery/ops"
	"github.com/dot5enko/colquery/schema"
)

// columnData is the storage of one column inside a page. Exactly one of
// fixed, strs and lists is set, matching the column definition.
type columnData struct {
	def *schema.SchemaColumn

	fixed any // *Leaf[T]
	strs  *StringLeaf
	lists *ListLeaf

	// compressed heap of a sealed string column, strs is nil then and
	// strMeta keeps the null flags
	packed  []byte
	strMeta StringLeaf

	// int and link columns of a sealed page
	bounds    ops.Bounds[int64]
	hasBounds bool
}

func newColumnData(def *schema.SchemaColumn, capacity int) *columnData {
	cd := &columnData{def: def}

	if def.IsCollection() {
		cd.lists = newListLeaf(capacity, def.Collection)
		return cd
	}

	switch def.Type {
	case schema.IntFieldType:
		cd.fixed = newLeaf(capacity, schema.Int)
	case schema.LinkFieldType:
		cd.fixed = newLeaf(capacity, schema.Link)
	case schema.BoolFieldType:
		cd.fixed = newLeaf(capacity, schema.BoolValue)
	case schema.FloatFieldType:
		cd.fixed = newLeaf(capacity, schema.Float)
	case schema.DoubleFieldType:
		cd.fixed = newLeaf(capacity, schema.Double)
	case schema.TimestampFieldType:
		cd.fixed = newLeaf(capacity, schema.Timestamp)
	case schema.DecimalFieldType:
		cd.fixed = newLeaf(capacity, schema.Decimal)
	case schema.UUIDFieldType:
		cd.fixed = newLeaf(capacity, schema.UUID)
	case schema.ObjectIDFieldType:
		cd.fixed = newLeaf(capacity, schema.OID)
	case schema.MixedFieldType:
		cd.fixed = newLeaf(capacity, func(v schema.Value) schema.Value { return v })
	case schema.StringFieldType:
		cd.strs = newStringLeaf(capacity, schema.KindString)
	case schema.BinaryFieldType:
		cd.strs = newStringLeaf(capacity, schema.KindBinary)
	default:
		panic(fmt.Sprintf("unsupported column type %s", def.Type))
	}

	return cd
}

// appendValue stores an already coerced value.
func (cd *columnData) appendValue(v schema.Value) {
	null := v.IsNull()

	switch leaf := cd.fixed.(type) {
	case *Leaf[int64]:
		leaf.append(v.I, null)
	case *Leaf[bool]:
		leaf.append(v.Bool(), null)
	case *Leaf[float32]:
		leaf.append(float32(v.F), null)
	case *Leaf[float64]:
		leaf.append(v.F, null)
	case *Leaf[time.Time]:
		leaf.append(v.T, null)
	case *Leaf[decimal.Decimal]:
		leaf.append(v.D, null)
	case *Leaf[uuid.UUID]:
		leaf.append(v.U, null)
	case *Leaf[schema.ObjectID]:
		leaf.append(v.O, null)
	case *Leaf[schema.Value]:
		leaf.append(v, false)
	case nil:
		cd.strs.append(v.S, null)
	default:
		panic(fmt.Sprintf("unexpected leaf %T", cd.fixed))
	}
}

// intBounds computes the range of the non-null values of an int or link
// column.
func (cd *columnData) intBounds() (ops.Bounds[int64], bool) {
	leaf, ok := cd.fixed.(*Leaf[int64])
	if !ok {
		return ops.Bounds[int64]{}, false
	}

	values := leaf.values
	if leaf.HasNulls() {
		values = make([]int64, 0, len(leaf.values))
		for i, v := range leaf.values {
			if !leaf.IsNull(i) {
				values = append(values, v)
			}
		}
	}
	if len(values) == 0 {
		return ops.Bounds[int64]{}, false
	}
	return ops.GetMaxMin(values), true
}

func (cd *columnData) appendList(items []schema.Value) {
	cd.lists.append(items)
}

// coerce checks v against the column definition and converts numeric
// literals to the column representation.
func coerce(def *schema.SchemaColumn, v schema.Value) (schema.Value, error) {
	if v.IsNull() {
		if !def.Nullable && def.Type != schema.MixedFieldType {
			return v, fmt.Errorf("%w: null in non-nullable column `%s`", ErrTypeMismatch, def.Name)
		}
		return v, nil
	}

	if def.Type == schema.MixedFieldType {
		return v, nil
	}

	want := def.Type.Kind()
	if v.Kind == want {
		return v, nil
	}

	switch {
	case want == schema.KindLink && v.Kind == schema.KindInt:
		return schema.Link(v.I), nil
	case want == schema.KindDouble && v.Kind.IsNumeric():
		return schema.Double(v.AsFloat64()), nil
	case want == schema.KindFloat && v.Kind.IsNumeric():
		return schema.Float(float32(v.AsFloat64())), nil
	case want == schema.KindDecimal && v.Kind == schema.KindInt:
		return schema.Decimal(decimal.NewFromInt(v.I)), nil
	case want == schema.KindDecimal && (v.Kind == schema.KindFloat || v.Kind == schema.KindDouble):
		return schema.Decimal(decimal.NewFromFloat(v.F)), nil
	case want == schema.KindInt && (v.Kind == schema.KindFloat || v.Kind == schema.KindDouble) &&
		v.F == math.Trunc(v.F) && math.Abs(v.F) < 1<<63:
		return schema.Int(int64(v.F)), nil
	case want == schema.KindBinary && v.Kind == schema.KindString:
		return schema.Value{Kind: schema.KindBinary, S: v.S}, nil
	}

	return v, fmt.Errorf("%w: %s value for %s column `%s`", ErrTypeMismatch, v.Kind, def.Type, def.Name)
}

// coerceCollection normalizes the elements of a collection cell. Sets are
// deduplicated and kept ordered, dictionaries keep their values ordered by
// key.
func coerceCollection(def *schema.SchemaColumn, cell any) ([]schema.Value, error) {
	elem := *def
	elem.Collection = schema.NoCollection
	elem.Nullable = true
	if elem.Type == schema.LinkListFieldType {
		elem.Type = schema.LinkFieldType
		elem.Nullable = false
	}

	var items []schema.Value

	switch c := cell.(type) {
	case nil:
	case []schema.Value:
		items = make([]schema.Value, 0, len(c))
		for _, it := range c {
			v, err := coerce(&elem, it)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
	case map[string]schema.Value:
		if def.Collection != schema.DictionaryCollection {
			return nil, fmt.Errorf("%w: dictionary for %s column `%s`", ErrTypeMismatch, def.Collection, def.Name)
		}
		keys := make([]string, 0, len(c))
		for k := range c {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		items = make([]schema.Value, 0, len(c))
		for _, k := range keys {
			v, err := coerce(&elem, c[k])
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("%w: %T for collection column `%s`", ErrTypeMismatch, cell, def.Name)
	}

	if def.Collection == schema.SetCollection {
		sort.SliceStable(items, func(i, j int) bool {
			c, ok := schema.Compare(items[i], items[j])
			if !ok {
				return items[i].Kind < items[j].Kind
			}
			return c < 0
		})
		out := items[:0]
		for i, it := range items {
			if i > 0 && schema.Equal(it, out[len(out)-1]) {
				continue
			}
			out = append(out, it)
		}
		items = out
	}

	return items, nil
}
