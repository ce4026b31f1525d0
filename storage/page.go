package storage

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/dot5enko/colquery/ops"
	"github.com/dot5enko/colquery/schema"
)

// Page is a fixed capacity run of consecutive rows of a table, stored per
// column. Row offsets inside a page start at 0.
type Page struct {
	table  *Table
	ord    int
	offset int

	keys   []RowKey
	cols   []*columnData
	sealed bool
}

func newPage(t *Table, ord, offset int) *Page {
	p := &Page{
		table:  t,
		ord:    ord,
		offset: offset,
		keys:   make([]RowKey, 0, t.opts.pageRows),
		cols:   make([]*columnData, len(t.schema.Columns)),
	}
	for i := range t.schema.Columns {
		p.cols[i] = newColumnData(&t.schema.Columns[i], t.opts.pageRows)
	}
	return p
}

func (p *Page) Table() *Table {
	return p.table
}

// Ord is the position of the page in its table.
func (p *Page) Ord() int {
	return p.ord
}

// Offset is the table wide ordinal of the first row.
func (p *Page) Offset() int {
	return p.offset
}

func (p *Page) Len() int {
	return len(p.keys)
}

func (p *Page) Sealed() bool {
	return p.sealed
}

func (p *Page) Key(ndx int) RowKey {
	return p.keys[ndx]
}

func (p *Page) Keys() []RowKey {
	return p.keys
}

func (p *Page) FirstKey() RowKey {
	return p.keys[0]
}

func (p *Page) LastKey() RowKey {
	return p.keys[len(p.keys)-1]
}

// LowerBound returns the offset of the first row whose key is >= key.
func (p *Page) LowerBound(key RowKey) int {
	return sort.Search(len(p.keys), func(i int) bool { return p.keys[i] >= key })
}

func (p *Page) column(col schema.ColKey) (*columnData, error) {
	if col < 0 || int(col) >= len(p.cols) {
		return nil, fmt.Errorf("%w: key %d in table `%s`", ErrColumnNotFound, col, p.table.schema.Name)
	}
	return p.cols[col], nil
}

// LeafOf returns the typed leaf of a fixed width column.
func LeafOf[T any](p *Page, col schema.ColKey) (Leaf[T], error) {
	cd, err := p.column(col)
	if err != nil {
		return Leaf[T]{}, err
	}

	leaf, ok := cd.fixed.(*Leaf[T])
	if !ok {
		var zero T
		return Leaf[T]{}, fmt.Errorf("%w: column `%s` of type %s has no %T leaf", ErrTypeMismatch, cd.def.Name, cd.def.Type, zero)
	}
	return *leaf, nil
}

// Strings returns the leaf of a string or binary column, decoding the heap
// of sealed pages through the table page cache.
func (p *Page) Strings(col schema.ColKey) (StringLeaf, error) {
	cd, err := p.column(col)
	if err != nil {
		return StringLeaf{}, err
	}

	if cd.strs != nil {
		return *cd.strs, nil
	}
	if cd.packed == nil {
		return StringLeaf{}, fmt.Errorf("%w: column `%s` of type %s is not a string column", ErrTypeMismatch, cd.def.Name, cd.def.Type)
	}

	return p.table.cache.get(heapCacheKey{page: p.ord, col: col}, func() (StringLeaf, error) {
		return decodeStringHeap(cd.packed, p.table.opts.codec, &cd.strMeta)
	})
}

// Lists returns the leaf of a collection column.
func (p *Page) Lists(col schema.ColKey) (ListLeaf, error) {
	cd, err := p.column(col)
	if err != nil {
		return ListLeaf{}, err
	}
	if cd.lists == nil {
		return ListLeaf{}, fmt.Errorf("%w: column `%s` is not a collection", ErrTypeMismatch, cd.def.Name)
	}
	return *cd.lists, nil
}

// Accessor returns a value reader for any single valued column.
func (p *Page) Accessor(col schema.ColKey) (Accessor, error) {
	cd, err := p.column(col)
	if err != nil {
		return nil, err
	}

	switch leaf := cd.fixed.(type) {
	case nil:
		if cd.lists != nil {
			return nil, fmt.Errorf("%w: collection column `%s` has no single value", ErrTypeMismatch, cd.def.Name)
		}
		return p.Strings(col)
	case Accessor:
		return leaf, nil
	default:
		panic(fmt.Sprintf("leaf %T does not implement Accessor", cd.fixed))
	}
}

// IntBounds returns the range of non-null values of an int or link column.
// ok is false when the page holds no such value. Sealed pages keep the
// range computed at seal time, the open page scans its leaf.
func (p *Page) IntBounds(col schema.ColKey) (b ops.Bounds[int64], ok bool) {
	cd, err := p.column(col)
	if err != nil {
		return b, false
	}
	if p.sealed {
		return cd.bounds, cd.hasBounds
	}
	return cd.intBounds()
}

func (p *Page) full() bool {
	return len(p.keys) >= p.table.opts.pageRows
}

// seal compresses the string heaps of a full page.
func (p *Page) seal() error {
	if p.sealed {
		return nil
	}

	codec := p.table.opts.codec
	raw, packed := 0, 0

	for _, cd := range p.cols {
		cd.bounds, cd.hasBounds = cd.intBounds()

		if cd.strs == nil {
			continue
		}

		data, err := encodeStringHeap(cd.strs, codec)
		if err != nil {
			return fmt.Errorf("unable to seal column `%s` of page %d: %w", cd.def.Name, p.ord, err)
		}

		raw += len(cd.strs.data)
		packed += len(data)

		cd.packed = data
		cd.strMeta = StringLeaf{nulls: cd.strs.nulls, kind: cd.strs.kind}
		cd.strs = nil
	}

	p.sealed = true
	slog.Debug("page sealed", "table", p.table.schema.Name, "page", p.ord, "rows", len(p.keys), "codec", codec.Name(), "raw", raw, "packed", packed)

	return nil
}
