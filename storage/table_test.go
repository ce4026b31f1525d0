package storage

import (
	"fmt"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dot5enko/colquery/compression"
	"github.com/dot5enko/colquery/schema"
)

func peopleSchema() schema.Schema {
	return schema.New("people",
		schema.SchemaColumn{Name: "age", Type: schema.IntFieldType, Nullable: true},
		schema.SchemaColumn{Name: "name", Type: schema.StringFieldType, Nullable: true},
		schema.SchemaColumn{Name: "score", Type: schema.DoubleFieldType},
		schema.SchemaColumn{Name: "tags", Type: schema.StringFieldType, Collection: schema.SetCollection},
	)
}

func TestInsertSplitsIntoPages(t *testing.T) {
	tbl, err := NewTable(peopleSchema(), WithPageRows(4))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		key, err := tbl.Insert(schema.Int(int64(i)), schema.String(fmt.Sprintf("name-%d", i)), schema.Int(int64(i*2)), nil)
		require.NoError(t, err)
		assert.Equal(t, RowKey(i), key)
	}

	pages := tbl.Pages()
	require.Len(t, pages, 3)
	assert.Equal(t, 10, tbl.Size())
	assert.True(t, pages[0].Sealed())
	assert.True(t, pages[1].Sealed())
	assert.False(t, pages[2].Sealed())
	assert.Equal(t, 8, pages[2].Offset())
	assert.Equal(t, 2, pages[2].Len())

	leaf, err := LeafOf[float64](pages[1], 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{8, 10, 12, 14}, leaf.Values(), spew.Sdump(leaf))

	bounds, ok := pages[1].IntBounds(0)
	require.True(t, ok)
	assert.Equal(t, int64(4), bounds.Min)
	assert.Equal(t, int64(7), bounds.Max)
}

func TestIntBoundsSkipNulls(t *testing.T) {
	tbl, err := NewTable(peopleSchema(), WithPageRows(3))
	require.NoError(t, err)

	for _, age := range []any{schema.Int(9), nil, schema.Int(-2), nil, schema.Int(5)} {
		_, err := tbl.Insert(age, nil, schema.Double(0), nil)
		require.NoError(t, err)
	}

	pages := tbl.Pages()
	require.Len(t, pages, 2)
	require.True(t, pages[0].Sealed())

	bounds, ok := pages[0].IntBounds(0)
	require.True(t, ok)
	assert.Equal(t, int64(-2), bounds.Min)
	assert.Equal(t, int64(9), bounds.Max)

	// the open page still tracks inserts
	bounds, ok = pages[1].IntBounds(0)
	require.True(t, ok)
	assert.Equal(t, int64(5), bounds.Min)
	assert.Equal(t, int64(5), bounds.Max)

	_, err = tbl.Insert(schema.Int(11), nil, schema.Double(0), nil)
	require.NoError(t, err)
	bounds, ok = pages[1].IntBounds(0)
	require.True(t, ok)
	assert.Equal(t, int64(11), bounds.Max)

	_, ok = pages[0].IntBounds(1)
	assert.False(t, ok, "string column has no int bounds")
}

func TestSealedStringHeapsDecodeThroughCache(t *testing.T) {
	for _, codec := range []compression.Codec{compression.None, compression.Lz4, compression.Zstd} {
		t.Run(codec.Name(), func(t *testing.T) {
			tbl, err := NewTable(peopleSchema(), WithPageRows(3), WithCodec(codec))
			require.NoError(t, err)

			names := []any{schema.String("Apple"), nil, schema.String(""), schema.String("banana")}
			for i, n := range names {
				_, err := tbl.Insert(schema.Int(int64(i)), n, schema.Double(0), []schema.Value{})
				require.NoError(t, err)
			}

			p := tbl.Pages()[0]
			require.True(t, p.Sealed())

			leaf, err := p.Strings(1)
			require.NoError(t, err)
			require.Equal(t, 3, leaf.Len())
			assert.Equal(t, "Apple", leaf.Get(0))
			assert.True(t, leaf.IsNull(1))
			assert.False(t, leaf.IsNull(2))
			assert.Equal(t, "", leaf.Get(2))
			assert.Equal(t, schema.Null(), leaf.Value(1))
			assert.Equal(t, 1, tbl.CachedHeaps())

			again, err := p.Strings(1)
			require.NoError(t, err)
			assert.Equal(t, leaf.Get(0), again.Get(0))
			assert.Equal(t, 1, tbl.CachedHeaps())

			tbl.DropCaches()
			assert.Equal(t, 0, tbl.CachedHeaps())
		})
	}
}

func TestInsertRejectsBadCells(t *testing.T) {
	tbl, err := NewTable(peopleSchema())
	require.NoError(t, err)

	_, err = tbl.Insert(schema.String("x"), nil, schema.Double(1), nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = tbl.Insert(schema.Int(1), nil, nil, nil)
	assert.ErrorIs(t, err, ErrTypeMismatch, "score is not nullable")

	_, err = tbl.Insert(schema.Int(1), nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	assert.Equal(t, 0, tbl.Size())
	assert.Empty(t, tbl.Pages())

	err = tbl.InsertWithKey(10, schema.Int(1), nil, schema.Int(3), nil)
	require.NoError(t, err)
	err = tbl.InsertWithKey(10, schema.Int(1), nil, schema.Int(3), nil)
	assert.ErrorIs(t, err, ErrKeyOrder)

	leaf, err := LeafOf[float64](tbl.Pages()[0], 2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, leaf.Get(0), "int literal coerced into double column")
}

func TestCollectionsAreNormalized(t *testing.T) {
	tbl, err := NewTable(peopleSchema())
	require.NoError(t, err)

	_, err = tbl.Insert(schema.Int(1), nil, schema.Double(1),
		[]schema.Value{schema.String("b"), schema.String("a"), schema.String("b")})
	require.NoError(t, err)

	lists, err := tbl.Pages()[0].Lists(3)
	require.NoError(t, err)
	assert.Equal(t, 2, lists.Size(0))
	assert.Equal(t, []schema.Value{schema.String("a"), schema.String("b")}, lists.Items(0))

	_, err = tbl.Pages()[0].Accessor(3)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestIndexAndLocate(t *testing.T) {
	tbl, err := NewTable(peopleSchema(), WithPageRows(2))
	require.NoError(t, err)

	for i, age := range []int64{10, 20, 30, 20} {
		require.NoError(t, tbl.InsertWithKey(RowKey(100+i*5), schema.Int(age), nil, schema.Double(0), nil))
	}
	require.NoError(t, tbl.AddIndex(0))
	assert.True(t, tbl.HasIndex(0))

	keys, err := tbl.FindAll(0, schema.Int(20))
	require.NoError(t, err)
	assert.Equal(t, []RowKey{105, 115}, keys)

	p, ndx, ok := tbl.Locate(115)
	require.True(t, ok)
	assert.Equal(t, 1, p.Ord())
	assert.Equal(t, 1, ndx)

	_, _, ok = tbl.Locate(111)
	assert.False(t, ok)

	_, err = tbl.FindAll(1, schema.String("x"))
	assert.ErrorIs(t, err, ErrNoIndex)
}

func TestGroupResolvesLinkTargets(t *testing.T) {
	g := NewGroup()

	_, err := g.CreateTable(schema.New("pets",
		schema.SchemaColumn{Name: "owner", Type: schema.LinkFieldType, Target: "people", Nullable: true},
	))
	assert.ErrorIs(t, err, ErrTableNotFound)

	people, err := g.CreateTable(peopleSchema())
	require.NoError(t, err)

	pets, err := g.CreateTable(schema.New("pets",
		schema.SchemaColumn{Name: "owner", Type: schema.LinkFieldType, Target: "people", Nullable: true},
	))
	require.NoError(t, err)

	target, err := pets.LinkTarget(0)
	require.NoError(t, err)
	assert.Same(t, people, target)

	_, err = g.CreateTable(peopleSchema())
	assert.ErrorIs(t, err, ErrTableExists)

	assert.Len(t, g.Tables(), 2)
	found, ok := g.TableByKey(people.Key())
	require.True(t, ok)
	assert.Same(t, people, found)
}
