package parser

import (
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dot5enko/colquery/query"
	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
)

func itemsTable(t *testing.T, indexed bool) *storage.Table {
	t.Helper()

	tbl, err := storage.NewTable(schema.New("items",
		schema.SchemaColumn{Name: "qty", Type: schema.IntFieldType, Nullable: true, Indexed: indexed},
		schema.SchemaColumn{Name: "name", Type: schema.StringFieldType, Nullable: true, Indexed: indexed},
		schema.SchemaColumn{Name: "price", Type: schema.DecimalFieldType, Nullable: true},
		schema.SchemaColumn{Name: "weight", Type: schema.DoubleFieldType},
		schema.SchemaColumn{Name: "tags", Type: schema.StringFieldType, Collection: schema.ListCollection},
		schema.SchemaColumn{Name: "blob", Type: schema.BinaryFieldType, Nullable: true},
		schema.SchemaColumn{Name: "at", Type: schema.TimestampFieldType},
	), storage.WithPageRows(2))
	require.NoError(t, err)

	strs := func(v ...string) []schema.Value {
		out := []schema.Value{}
		for _, s := range v {
			out = append(out, schema.String(s))
		}
		return out
	}
	dec := func(s string) schema.Value {
		return schema.Decimal(decimal.RequireFromString(s))
	}
	at := func(sec, nsec int64) schema.Value {
		return schema.Timestamp(time.Unix(sec, nsec).UTC())
	}

	for _, r := range [][]any{
		{schema.Int(1), schema.String("apple"), dec("0.10"), schema.Double(1.5), strs("a", "b"), schema.Binary([]byte("xy")), at(100, 0)},
		{schema.Int(5), schema.String("Banana"), dec("2.50"), schema.Double(0.5), strs(), nil, at(200, 0)},
		{nil, schema.String("cherry"), nil, schema.Double(3), strs("a"), schema.Binary([]byte{0, 1}), at(300, 5)},
		{schema.Int(10), nil, dec("1.00"), schema.Double(10), strs("a", "b", "c"), schema.Binary([]byte("xy")), at(400, 0)},
		{schema.Int(5), schema.String("apricot"), dec("0.3"), schema.Double(2.5), strs("c"), nil, at(500, 0)},
	} {
		_, err := tbl.Insert(r...)
		require.NoError(t, err)
	}
	return tbl
}

func run(t *testing.T, q *query.Query) []int64 {
	t.Helper()

	keys, err := q.FindAll(t.Context(), 0)
	require.NoError(t, err)

	out := []int64{}
	for _, k := range keys {
		out = append(out, int64(k))
	}
	return out
}

var queryCases = []struct {
	text string
	want []int64
}{
	{`qty == 5`, []int64{1, 4}},
	{`qty = 5 && name BEGINSWITH 'a'`, []int64{4}},
	{`qty > 1 and qty < 10`, []int64{1, 4}},
	{`qty == NULL`, []int64{2}},
	{`qty > -3`, []int64{0, 1, 3, 4}},
	{`!(qty == 5)`, []int64{0, 2, 3}},
	{`qty == 1 or qty == 10`, []int64{0, 3}},
	{`5 < qty`, []int64{3}},
	{`qty == 5.0`, []int64{1, 4}},
	{`name ==[c] 'BANANA'`, []int64{1}},
	{`name BEGINSWITH[c] "A"`, []int64{0, 4}},
	{`name CONTAINS 'rr'`, []int64{2}},
	{`name LIKE '*an*'`, []int64{1}},
	{`price > 0.2`, []int64{1, 3, 4}},
	{`price == 0.1`, []int64{0}},
	{`weight * 2 > qty`, []int64{0, 3}},
	{`(weight + 1) * 2 >= 7`, []int64{2, 3, 4}},
	{`qty == weight * 2`, []int64{4}},
	{`weight < qty`, []int64{1, 4}},
	{`tags.@count == 0`, []int64{1}},
	{`tags.@size >= 2`, []int64{0, 3}},
	{`name.@size == 6`, []int64{1, 2}},
	{`blob == B64"eHk="`, []int64{0, 3}},
	{`at > T250:0`, []int64{2, 3, 4}},
	{`at == T300:5`, []int64{2}},
	{`TRUEPREDICATE`, []int64{0, 1, 2, 3, 4}},
	{`FALSEPREDICATE`, []int64{}},
	{`qty == 5 or TRUEPREDICATE`, []int64{0, 1, 2, 3, 4}},
	{`NOT TRUEPREDICATE`, []int64{}},
	{`TRUEPREDICATE and qty == 10`, []int64{3}},
	{`(name == "apple" or name == "cherry") and weight > 2`, []int64{2}},
}

func TestParseAndRun(t *testing.T) {
	for _, indexed := range []bool{false, true} {
		tbl := itemsTable(t, indexed)

		for _, tc := range queryCases {
			t.Run(tc.text, func(t *testing.T) {
				q, err := Parse(tbl, tc.text)
				require.NoError(t, err)
				if !assert.Equal(t, tc.want, run(t, q), "indexed=%v", indexed) {
					t.Log(spew.Sdump(q.Root()))
				}
			})
		}
	}
}

func TestDescribeRoundTrip(t *testing.T) {
	tbl := itemsTable(t, false)

	for _, tc := range queryCases {
		t.Run(tc.text, func(t *testing.T) {
			q, err := Parse(tbl, tc.text)
			require.NoError(t, err)
			text, err := q.Describe()
			require.NoError(t, err)

			again, err := Parse(tbl, text)
			require.NoError(t, err, "reparsing %q", text)
			textAgain, err := again.Describe()
			require.NoError(t, err)

			assert.Equal(t, text, textAgain)
			assert.Equal(t, tc.want, run(t, again))
		})
	}
}

func TestDescribeForms(t *testing.T) {
	tbl := itemsTable(t, false)

	for text, want := range map[string]string{
		`qty = 5 && name BEGINSWITH 'a'`: `qty == 5 and name BEGINSWITH "a"`,
		`5 < qty`:                        `qty > 5`,
		`!(qty == 5)`:                    `!(qty == 5)`,
		`(weight + 1) * 2 >= 7`:          `((weight + 1) * 2) >= 7`,
		`price == 0.1`:                   `price == 0.1`,
		`at == T300:5`:                   `at == T300:5`,
		`blob == B64"eHk="`:              `blob == B64"eHk="`,
		`tags.@size >= 2`:                `tags.@count >= 2`,
		`name ==[c] 'BANANA'`:            `name ==[c] "BANANA"`,
		`TRUEPREDICATE`:                  `TRUEPREDICATE`,
		`weight < qty`:                   `weight < qty`,
	} {
		t.Run(text, func(t *testing.T) {
			q, err := Parse(tbl, text)
			require.NoError(t, err)
			got, err := q.Describe()
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	tbl := itemsTable(t, false)

	for _, tc := range []struct {
		text string
		err  error
	}{
		{`missing == 1`, schema.ErrColumnNotFound},
		{`qty == missing`, schema.ErrColumnNotFound},
		{`tags == 'a'`, query.ErrUnsupportedColumn},
		{`tags.@count + 1 > 2`, query.ErrInvalidQuery},
		{`'a' BEGINSWITH name`, query.ErrInvalidQuery},
		{`at > 5`, query.ErrInvalidQuery},
		{`qty BEGINSWITH 1`, query.ErrInvalidQuery},
		{`qty ==`, ErrSyntax},
	} {
		t.Run(tc.text, func(t *testing.T) {
			_, err := Parse(tbl, tc.text)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestParseWithOptions(t *testing.T) {
	tbl := itemsTable(t, false)

	q, err := Parse(tbl, `weight > 1`, query.WithWorkers(2))
	require.NoError(t, err)

	n, err := q.ParallelCount(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
