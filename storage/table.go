package storage

import (
	"fmt"
	"sync"

	"github.com/dot5enko/colquery/index"
	"github.com/dot5enko/colquery/schema"
)

// RowKey identifies a row. Keys grow strictly with storage order but need
// not be dense.
type RowKey int64

// Table is an in-memory table stored as a sequence of pages.
type Table struct {
	schema schema.Schema
	opts   options
	group  *Group

	lock    sync.RWMutex
	pages   []*Page
	indexes map[schema.ColKey]*index.SearchIndex
	lastKey RowKey
	rows    int

	cache *pageCache
}

// NewTable creates a standalone table. Link columns of such a table can
// only target the table itself.
func NewTable(s schema.Schema, opts ...Option) (*Table, error) {
	return newTable(nil, s, opts...)
}

func newTable(g *Group, s schema.Schema, opts ...Option) (*Table, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema `%s`: %w", s.Name, err)
	}

	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	cache, err := newPageCache(o.pageCacheSize)
	if err != nil {
		return nil, err
	}

	t := &Table{
		schema:  s,
		opts:    o,
		group:   g,
		indexes: map[schema.ColKey]*index.SearchIndex{},
		lastKey: -1,
		cache:   cache,
	}

	for idx, col := range s.Columns {
		if col.Indexed {
			if err := t.AddIndex(schema.ColKey(idx)); err != nil {
				return nil, err
			}
		}
	}

	return t, nil
}

func (t *Table) Name() string {
	return t.schema.Name
}

func (t *Table) Key() schema.TableKey {
	return t.schema.Key
}

func (t *Table) Schema() *schema.Schema {
	return &t.schema
}

// Column resolves a column name.
func (t *Table) Column(name string) (schema.ColKey, error) {
	return t.schema.Column(name)
}

// ColumnInfo returns the definition of col, panicking on an invalid key.
func (t *Table) ColumnInfo(col schema.ColKey) *schema.SchemaColumn {
	return t.schema.ColumnInfo(col)
}

func (t *Table) ColumnName(col schema.ColKey) string {
	return t.schema.ColumnInfo(col).Name
}

func (t *Table) ColumnType(col schema.ColKey) schema.FieldType {
	return t.schema.ColumnInfo(col).Type
}

func (t *Table) IsNullable(col schema.ColKey) bool {
	return t.schema.ColumnInfo(col).Nullable
}

func (t *Table) IsCollection(col schema.ColKey) bool {
	return t.schema.ColumnInfo(col).IsCollection()
}

// Size returns the number of rows.
func (t *Table) Size() int {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.rows
}

// Pages returns a snapshot of the page list.
func (t *Table) Pages() []*Page {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return append([]*Page(nil), t.pages...)
}

// Insert appends a row under the next free key. Cells are given in column
// order: schema.Value (or nil for null) for single valued columns,
// []schema.Value for lists, sets and link lists, map[string]schema.Value for
// dictionaries.
func (t *Table) Insert(cells ...any) (RowKey, error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	key := t.lastKey + 1
	return key, t.insertLocked(key, cells)
}

// InsertWithKey appends a row under an explicit key, which must be larger
// than every key already present.
func (t *Table) InsertWithKey(key RowKey, cells ...any) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if key <= t.lastKey {
		return fmt.Errorf("%w: %d after %d", ErrKeyOrder, key, t.lastKey)
	}
	return t.insertLocked(key, cells)
}

func (t *Table) insertLocked(key RowKey, cells []any) error {
	if len(cells) != len(t.schema.Columns) {
		return fmt.Errorf("%w: %d cells for %d columns of `%s`", ErrTypeMismatch, len(cells), len(t.schema.Columns), t.schema.Name)
	}

	// validate everything before touching the page so a bad cell leaves
	// no partial row behind
	scalars := make([]schema.Value, len(cells))
	lists := make([][]schema.Value, len(cells))

	for idx := range cells {
		def := &t.schema.Columns[idx]

		if def.IsCollection() {
			items, err := coerceCollection(def, cells[idx])
			if err != nil {
				return err
			}
			lists[idx] = items
			continue
		}

		var v schema.Value
		switch c := cells[idx].(type) {
		case nil:
			v = schema.Null()
		case schema.Value:
			v = c
		default:
			return fmt.Errorf("%w: %T for column `%s`", ErrTypeMismatch, cells[idx], def.Name)
		}

		coerced, err := coerce(def, v)
		if err != nil {
			return err
		}
		scalars[idx] = coerced
	}

	page, err := t.writablePageLocked()
	if err != nil {
		return err
	}

	for idx, cd := range page.cols {
		if cd.lists != nil {
			cd.appendList(lists[idx])
		} else {
			cd.appendValue(scalars[idx])
		}
	}
	page.keys = append(page.keys, key)

	for col, ix := range t.indexes {
		ix.Insert(scalars[col], uint64(key))
	}

	t.lastKey = key
	t.rows++

	return nil
}

func (t *Table) writablePageLocked() (*Page, error) {
	if n := len(t.pages); n > 0 {
		last := t.pages[n-1]
		if !last.sealed && !last.full() {
			return last, nil
		}
		if err := last.seal(); err != nil {
			return nil, err
		}
	}

	p := newPage(t, len(t.pages), t.rows)
	t.pages = append(t.pages, p)
	return p, nil
}

// Seal compresses the last page even if it is not full. Further inserts
// start a new page.
func (t *Table) Seal() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if n := len(t.pages); n > 0 {
		return t.pages[n-1].seal()
	}
	return nil
}

// AddIndex installs a search index on a single valued column and fills it
// from the rows already present.
func (t *Table) AddIndex(col schema.ColKey) error {
	def := t.schema.ColumnInfo(col)
	if def.IsCollection() {
		return fmt.Errorf("%w: cannot index collection column `%s`", ErrTypeMismatch, def.Name)
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	if _, ok := t.indexes[col]; ok {
		return nil
	}

	ix := index.New(def.Type == schema.StringFieldType || def.Type == schema.MixedFieldType)
	for _, p := range t.pages {
		acc, err := p.Accessor(col)
		if err != nil {
			return err
		}
		for i := 0; i < p.Len(); i++ {
			ix.Insert(acc.Value(i), uint64(p.keys[i]))
		}
	}

	t.indexes[col] = ix
	return nil
}

func (t *Table) RemoveIndex(col schema.ColKey) {
	t.lock.Lock()
	defer t.lock.Unlock()

	delete(t.indexes, col)
}

func (t *Table) HasIndex(col schema.ColKey) bool {
	t.lock.RLock()
	defer t.lock.RUnlock()

	_, ok := t.indexes[col]
	return ok
}

// FindAll returns the keys of all rows whose col equals v, using the
// search index of the column.
func (t *Table) FindAll(col schema.ColKey, v schema.Value) ([]RowKey, error) {
	ix, err := t.searchIndex(col)
	if err != nil {
		return nil, err
	}
	return toRowKeys(ix.FindAll(v)), nil
}

// FindAllNoCase is FindAll comparing strings case-insensitively.
func (t *Table) FindAllNoCase(col schema.ColKey, v schema.Value) ([]RowKey, error) {
	ix, err := t.searchIndex(col)
	if err != nil {
		return nil, err
	}
	return toRowKeys(ix.FindAllNoCase(v)), nil
}

func (t *Table) searchIndex(col schema.ColKey) (*index.SearchIndex, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()

	ix, ok := t.indexes[col]
	if !ok {
		return nil, fmt.Errorf("%w: `%s`", ErrNoIndex, t.ColumnName(col))
	}
	return ix, nil
}

// LinkTarget returns the table a link column points to.
func (t *Table) LinkTarget(col schema.ColKey) (*Table, error) {
	def := t.schema.ColumnInfo(col)
	if !def.Type.IsLink() {
		return nil, fmt.Errorf("%w: column `%s` is not a link", ErrTypeMismatch, def.Name)
	}

	if def.Target == t.schema.Name {
		return t, nil
	}
	if t.group == nil {
		return nil, fmt.Errorf("%w: `%s` targeted by `%s`", ErrTableNotFound, def.Target, def.Name)
	}
	return t.group.Table(def.Target)
}

// Locate finds the page and page offset of a row key.
func (t *Table) Locate(key RowKey) (*Page, int, bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()

	pi := sortSearchPages(t.pages, key)
	if pi == len(t.pages) {
		return nil, 0, false
	}
	p := t.pages[pi]
	ndx := p.LowerBound(key)
	if ndx == p.Len() || p.keys[ndx] != key {
		return nil, 0, false
	}
	return p, ndx, true
}

func sortSearchPages(pages []*Page, key RowKey) int {
	lo, hi := 0, len(pages)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if pages[mid].LastKey() < key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func toRowKeys(keys []uint64) []RowKey {
	out := make([]RowKey, len(keys))
	for i, k := range keys {
		out[i] = RowKey(k)
	}
	return out
}

// CachedHeaps returns the number of decoded string heaps held in memory.
func (t *Table) CachedHeaps() int {
	return t.cache.len()
}

// DropCaches forgets every decoded string heap.
func (t *Table) DropCaches() {
	t.cache.purge()
}
