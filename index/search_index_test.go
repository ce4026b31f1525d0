package index

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dot5enko/colquery/schema"
)

func TestFindAllReturnsSortedKeys(t *testing.T) {
	ix := New(false)
	ix.Insert(schema.Int(20), 9)
	ix.Insert(schema.Int(10), 2)
	ix.Insert(schema.Int(20), 3)
	ix.Insert(schema.Int(20), 7)

	assert.Equal(t, []uint64{3, 7, 9}, ix.FindAll(schema.Int(20)))
	assert.Equal(t, uint64(3), ix.Count(schema.Int(20)))
	assert.Empty(t, ix.FindAll(schema.Int(30)))
	assert.Equal(t, 2, ix.Len())
}

func TestNumericKindsShareAKey(t *testing.T) {
	ix := New(false)
	ix.Insert(schema.Int(1), 1)
	ix.Insert(schema.Double(1.0), 2)
	ix.Insert(schema.Decimal(decimal.NewFromInt(1)), 3)
	ix.Insert(schema.Double(1.5), 4)

	assert.Equal(t, []uint64{1, 2, 3}, ix.FindAll(schema.Int(1)))
	assert.Equal(t, []uint64{4}, ix.FindAll(schema.Float(1.5)))
}

func TestFindAllNoCase(t *testing.T) {
	ix := New(true)
	ix.Insert(schema.String("Apple"), 0)
	ix.Insert(schema.String("banana"), 1)
	ix.Insert(schema.String("APPLE"), 2)

	assert.Equal(t, []uint64{0, 2}, ix.FindAllNoCase(schema.String("apple")))
	assert.Equal(t, []uint64{2}, ix.FindAll(schema.String("APPLE")))
}

func TestRemoveAndUnion(t *testing.T) {
	ix := New(false)
	ix.Insert(schema.Null(), 1)
	ix.Insert(schema.Int(5), 2)
	ix.Insert(schema.Int(6), 3)

	ix.Remove(schema.Int(5), 2)
	assert.Empty(t, ix.FindAll(schema.Int(5)))
	assert.Equal(t, 2, ix.Len())

	u := ix.Union(schema.Null(), schema.Int(6))
	require.Equal(t, uint64(2), u.GetCardinality())
	assert.Equal(t, []uint64{1, 3}, u.ToArray())
}

func TestLargeIntegersMatchAcrossKinds(t *testing.T) {
	ix := New(true)
	ix.Insert(schema.Int(1<<53), 0)
	ix.Insert(schema.Int(1<<53 + 1), 1)
	ix.Insert(schema.Int(1<<60), 2)

	assert.Equal(t, []uint64{0}, ix.FindAll(schema.Double(1<<53)))
	assert.Equal(t, []uint64{2}, ix.FindAll(schema.Double(1<<60)))
	assert.Equal(t, []uint64{2}, ix.FindAll(schema.Decimal(decimal.NewFromInt(1<<60))))
}

func TestNaNIsNotIndexed(t *testing.T) {
	ix := New(false)
	ix.Insert(schema.Double(math.NaN()), 1)
	ix.Insert(schema.Double(1), 2)

	assert.Empty(t, ix.FindAll(schema.Double(math.NaN())))
	assert.Equal(t, 1, ix.Len())

	ix.Remove(schema.Double(math.NaN()), 1)
	assert.Equal(t, 1, ix.Len())
}

func TestFoldedLookupSeparatesStringsAndBinaries(t *testing.T) {
	ix := New(true)
	ix.Insert(schema.String("one"), 0)
	ix.Insert(schema.Binary([]byte("ONE")), 1)
	ix.Insert(schema.Binary([]byte("one")), 2)
	ix.Insert(schema.Int(1), 3)

	assert.Equal(t, []uint64{1, 2}, ix.FindAllNoCase(schema.Binary([]byte("One"))))
	assert.Equal(t, []uint64{0}, ix.FindAllNoCase(schema.String("oNE")))
	assert.Equal(t, []uint64{3}, ix.FindAllNoCase(schema.Int(1)))
}

func TestFoldedLookupCoversCaseOrbits(t *testing.T) {
	ix := New(true)
	for i, s := range []string{"Σ", "σ", "ς", "ǅ", "Ǆ", "ǆ", "Б"} {
		ix.Insert(schema.String(s), uint64(i))
	}

	// every spelling of the same letter lands in one bucket
	assert.Equal(t, []uint64{0, 1, 2}, ix.FindAllNoCase(schema.String("ς")))
	assert.Equal(t, []uint64{3, 4, 5}, ix.FindAllNoCase(schema.String("ǆ")))
	assert.Empty(t, ix.FindAllNoCase(schema.String("ё")))
}
