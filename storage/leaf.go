package storage

import (
	"unsafe"

	"github.com/dot5enko/colquery/bits"
	"github.com/dot5enko/colquery/schema"
)

// Accessor reads any single valued column of a page as schema values.
type Accessor interface {
	Len() int
	Value(ndx int) schema.Value
}

// Leaf is the typed view of one fixed width column of a page.
type Leaf[T any] struct {
	values []T
	nulls  *bits.Bitfield
	conv   func(T) schema.Value
}

func newLeaf[T any](capacity int, conv func(T) schema.Value) *Leaf[T] {
	return &Leaf[T]{
		values: make([]T, 0, capacity),
		nulls:  &bits.Bitfield{},
		conv:   conv,
	}
}

func (l Leaf[T]) Len() int {
	return len(l.values)
}

func (l Leaf[T]) Get(ndx int) T {
	return l.values[ndx]
}

// Values exposes the backing array. Null slots hold the zero value.
func (l Leaf[T]) Values() []T {
	return l.values
}

func (l Leaf[T]) IsNull(ndx int) bool {
	return l.nulls.Get(ndx)
}

func (l Leaf[T]) HasNulls() bool {
	return l.nulls.Any()
}

// NullsInRange reports whether a null sits in [start, end).
func (l Leaf[T]) NullsInRange(start, end int) bool {
	return l.nulls.AnyInRange(start, end)
}

func (l Leaf[T]) Value(ndx int) schema.Value {
	if l.nulls.Get(ndx) {
		return schema.Null()
	}
	return l.conv(l.values[ndx])
}

func (l *Leaf[T]) append(v T, null bool) {
	if null {
		l.nulls.Set(len(l.values))
	}
	l.values = append(l.values, v)
}

// StringLeaf holds a string or binary column of a page as one byte heap
// with an offsets array.
type StringLeaf struct {
	offsets []uint32
	data    []byte
	nulls   *bits.Bitfield
	kind    schema.Kind
}

func newStringLeaf(capacity int, kind schema.Kind) *StringLeaf {
	return &StringLeaf{
		offsets: append(make([]uint32, 0, capacity+1), 0),
		nulls:   &bits.Bitfield{},
		kind:    kind,
	}
}

func (l StringLeaf) Len() int {
	return len(l.offsets) - 1
}

// Get returns the text of row ndx without copying. Null rows yield "".
func (l StringLeaf) Get(ndx int) string {
	from, to := l.offsets[ndx], l.offsets[ndx+1]
	if from == to {
		return ""
	}
	return unsafe.String(&l.data[from], int(to-from))
}

func (l StringLeaf) Size(ndx int) int {
	return int(l.offsets[ndx+1] - l.offsets[ndx])
}

func (l StringLeaf) IsNull(ndx int) bool {
	return l.nulls.Get(ndx)
}

func (l StringLeaf) Value(ndx int) schema.Value {
	if l.nulls.Get(ndx) {
		return schema.Null()
	}
	if l.kind == schema.KindBinary {
		return schema.Value{Kind: schema.KindBinary, S: l.Get(ndx)}
	}
	return schema.String(l.Get(ndx))
}

func (l *StringLeaf) append(s string, null bool) {
	if null {
		l.nulls.Set(l.Len())
	}
	l.data = append(l.data, s...)
	l.offsets = append(l.offsets, uint32(len(l.data)))
}

// ListLeaf holds a collection column of a page. Row i owns
// heap[offsets[i]:offsets[i+1]].
type ListLeaf struct {
	offsets []int32
	heap    []schema.Value
	kind    schema.CollectionType
}

func newListLeaf(capacity int, kind schema.CollectionType) *ListLeaf {
	return &ListLeaf{
		offsets: append(make([]int32, 0, capacity+1), 0),
		kind:    kind,
	}
}

func (l ListLeaf) Len() int {
	return len(l.offsets) - 1
}

// Size is the element count of row ndx, read off the offsets alone.
func (l ListLeaf) Size(ndx int) int {
	return int(l.offsets[ndx+1] - l.offsets[ndx])
}

func (l ListLeaf) Items(ndx int) []schema.Value {
	return l.heap[l.offsets[ndx]:l.offsets[ndx+1]]
}

func (l ListLeaf) Collection() schema.CollectionType {
	return l.kind
}

func (l *ListLeaf) append(items []schema.Value) {
	l.heap = append(l.heap, items...)
	l.offsets = append(l.offsets, int32(len(l.heap)))
}
