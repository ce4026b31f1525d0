package storage

import (
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/dot5enko/colquery/schema"
)

type heapCacheKey struct {
	page int
	col  schema.ColKey
}

// pageCache keeps decoded string heaps of sealed pages. Concurrent scans
// asking for the same heap decode it once.
type pageCache struct {
	items     *lru.Cache[heapCacheKey, StringLeaf]
	loadGroup singleflight.Group
}

func newPageCache(size int) (*pageCache, error) {
	items, err := lru.New[heapCacheKey, StringLeaf](size)
	if err != nil {
		return nil, fmt.Errorf("unable to create page cache: %w", err)
	}
	return &pageCache{items: items}, nil
}

func (c *pageCache) get(key heapCacheKey, load func() (StringLeaf, error)) (StringLeaf, error) {
	if leaf, ok := c.items.Get(key); ok {
		return leaf, nil
	}

	loaded, err, _ := c.loadGroup.Do(fmt.Sprintf("%d/%d", key.page, key.col), func() (any, error) {
		if leaf, ok := c.items.Get(key); ok {
			return leaf, nil
		}

		leaf, err := load()
		if err != nil {
			return nil, err
		}

		c.items.Add(key, leaf)
		slog.Debug("string heap decoded", "page", key.page, "column", key.col, "rows", leaf.Len())
		return leaf, nil
	})
	if err != nil {
		return StringLeaf{}, err
	}

	return loaded.(StringLeaf), nil
}

func (c *pageCache) len() int {
	return c.items.Len()
}

func (c *pageCache) purge() {
	c.items.Purge()
}
