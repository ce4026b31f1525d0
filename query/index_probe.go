package query

import (
	"sort"

	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
)

// indexProbe walks the sorted key list an index returned for a node and
// maps it onto the offsets of the bound page.
type indexProbe struct {
	matches      []storage.RowKey
	resultGet    int
	actualKey    storage.RowKey
	lastStartKey storage.RowKey
}

func (ip *indexProbe) reset(matches []storage.RowKey) {
	ip.matches = matches
	ip.resultGet = 0
	ip.lastStartKey = -1
	if len(matches) > 0 {
		ip.actualKey = matches[0]
	}
}

// search returns the offset of the first indexed row in [start, end) of
// p. Asking for a range that starts before the previous one rewinds the
// cursor.
func (ip *indexProbe) search(p *storage.Page, start, end int) int {
	if start >= end || len(ip.matches) == 0 {
		return NotFound
	}

	firstKey := p.Key(start)
	if firstKey < ip.lastStartKey {
		ip.resultGet = sort.Search(len(ip.matches), func(i int) bool {
			return ip.matches[i] >= firstKey
		})
		if ip.resultGet < len(ip.matches) {
			ip.actualKey = ip.matches[ip.resultGet]
		}
	}
	ip.lastStartKey = firstKey

	if ip.resultGet >= len(ip.matches) {
		return NotFound
	}

	for firstKey > ip.actualKey {
		ip.resultGet++
		if ip.resultGet == len(ip.matches) {
			return NotFound
		}
		ip.actualKey = ip.matches[ip.resultGet]
	}

	lastKey := firstKey
	if start+1 != end {
		lastKey = p.Key(end - 1)
	}
	if ip.actualKey > lastKey {
		return NotFound
	}

	return p.LowerBound(ip.actualKey)
}

// verifyKeys keeps the index results whose row value passes keep. Folded
// and mixed lookups return candidates that the node's own comparison has
// the final word on.
func verifyKeys(t *storage.Table, col schema.ColKey, keys []storage.RowKey, keep func(schema.Value) bool) []storage.RowKey {
	out := keys[:0]

	var page *storage.Page
	var acc storage.Accessor
	for _, k := range keys {
		p, ndx, ok := t.Locate(k)
		if !ok {
			continue
		}
		if p != page {
			a, err := p.Accessor(col)
			if err != nil {
				continue
			}
			page, acc = p, a
		}
		if keep(acc.Value(ndx)) {
			out = append(out, k)
		}
	}
	return out
}
