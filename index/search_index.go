// Package index provides the search index used to accelerate equality
// conditions. Every distinct column value maps to a Roaring posting list of
// the row keys holding it.
package index

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/dot5enko/colquery/ops"
	"github.com/dot5enko/colquery/schema"
)

// SearchIndex maps column values to the keys of the rows holding them.
//
// Values are bucketed by schema.Value.IndexKey, so numerically equal values
// of different kinds (1, 1.0, decimal 1) share a posting list. NaN equals
// nothing and is never indexed. String and mixed columns additionally keep
// a case folded map serving case-insensitive lookups; strings and binaries
// fold into separate buckets there.
type SearchIndex struct {
	mu sync.RWMutex

	postings map[string]*roaring64.Bitmap
	folded   map[string]*roaring64.Bitmap
}

// New creates an empty index. foldStrings enables case-insensitive lookups.
func New(foldStrings bool) *SearchIndex {
	ix := &SearchIndex{
		postings: make(map[string]*roaring64.Bitmap),
	}
	if foldStrings {
		ix.folded = make(map[string]*roaring64.Bitmap)
	}
	return ix
}

// Insert records that row key holds v.
func (ix *SearchIndex) Insert(v schema.Value, key uint64) {
	if v.IsNaN() {
		return
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	addTo(ix.postings, v.IndexKey(), key)

	if ix.folded != nil && foldable(v) {
		addTo(ix.folded, foldKey(v), key)
	}
}

// Remove forgets that row key holds v.
func (ix *SearchIndex) Remove(v schema.Value, key uint64) {
	if v.IsNaN() {
		return
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	removeFrom(ix.postings, v.IndexKey(), key)

	if ix.folded != nil && foldable(v) {
		removeFrom(ix.folded, foldKey(v), key)
	}
}

// FindAll returns the keys of every row holding v in ascending order.
func (ix *SearchIndex) FindAll(v schema.Value) []uint64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if bm, ok := ix.postings[v.IndexKey()]; ok {
		return bm.ToArray()
	}
	return nil
}

// FindAllNoCase returns the rows holding a string or binary of v's kind
// equal to v up to case folding. The result is a superset of the rows a
// case-insensitive comparison against v accepts. Other values and indexes
// built without folding fall back to FindAll.
func (ix *SearchIndex) FindAllNoCase(v schema.Value) []uint64 {
	if ix.folded == nil || !foldable(v) {
		return ix.FindAll(v)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if bm, ok := ix.folded[foldKey(v)]; ok {
		return bm.ToArray()
	}
	return nil
}

// Count returns the number of rows holding v.
func (ix *SearchIndex) Count(v schema.Value) uint64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if bm, ok := ix.postings[v.IndexKey()]; ok {
		return bm.GetCardinality()
	}
	return 0
}

// Union returns the posting lists of all values merged into one bitmap.
func (ix *SearchIndex) Union(values ...schema.Value) *roaring64.Bitmap {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := roaring64.New()
	for _, v := range values {
		if bm, ok := ix.postings[v.IndexKey()]; ok {
			out.Or(bm)
		}
	}
	return out
}

// Len returns the number of distinct values.
func (ix *SearchIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return len(ix.postings)
}

func addTo(m map[string]*roaring64.Bitmap, k string, key uint64) {
	bm, ok := m[k]
	if !ok {
		bm = roaring64.New()
		m[k] = bm
	}
	bm.Add(key)
}

func removeFrom(m map[string]*roaring64.Bitmap, k string, key uint64) {
	bm, ok := m[k]
	if !ok {
		return
	}
	bm.Remove(key)
	if bm.IsEmpty() {
		delete(m, k)
	}
}

func foldable(v schema.Value) bool {
	return v.Kind == schema.KindString || v.Kind == schema.KindBinary
}

func foldKey(v schema.Value) string {
	if v.Kind == schema.KindBinary {
		return "x:" + ops.FoldCase(v.S)
	}
	return "s:" + ops.FoldCase(v.S)
}
