package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dot5enko/colquery/ops"
	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
)

const (
	colAge schema.ColKey = iota
	colName
	colScore
	colTags
	colMisc
)

func peopleSchema(indexed ...string) schema.Schema {
	s := schema.New("people",
		schema.SchemaColumn{Name: "age", Type: schema.IntFieldType, Nullable: true},
		schema.SchemaColumn{Name: "name", Type: schema.StringFieldType, Nullable: true},
		schema.SchemaColumn{Name: "score", Type: schema.DoubleFieldType, Nullable: true},
		schema.SchemaColumn{Name: "tags", Type: schema.StringFieldType, Collection: schema.ListCollection},
		schema.SchemaColumn{Name: "misc", Type: schema.MixedFieldType},
	)
	for _, name := range indexed {
		for i := range s.Columns {
			if s.Columns[i].Name == name {
				s.Columns[i].Indexed = true
			}
		}
	}
	return s
}

// person is one row of the people table, nil pointers are nulls.
type person struct {
	age   *int64
	name  *string
	score *float64
	tags  []string
	misc  schema.Value
}

func ip(v int64) *int64     { return &v }
func sp(v string) *string   { return &v }
func fp(v float64) *float64 { return &v }

func (p person) cells() []any {
	cells := []any{nil, nil, nil, nil, p.misc}
	if p.age != nil {
		cells[0] = schema.Int(*p.age)
	}
	if p.name != nil {
		cells[1] = schema.String(*p.name)
	}
	if p.score != nil {
		cells[2] = schema.Double(*p.score)
	}
	tags := make([]schema.Value, len(p.tags))
	for i, t := range p.tags {
		tags[i] = schema.String(t)
	}
	cells[3] = tags
	return cells
}

func peopleTable(t *testing.T, pageRows int, rows []person, indexed ...string) *storage.Table {
	t.Helper()

	tbl, err := storage.NewTable(peopleSchema(indexed...), storage.WithPageRows(pageRows))
	require.NoError(t, err)
	for _, r := range rows {
		_, err := tbl.Insert(r.cells()...)
		require.NoError(t, err)
	}
	return tbl
}

func ages(values ...int64) []person {
	rows := make([]person, len(values))
	for i, v := range values {
		rows[i] = person{age: ip(v)}
	}
	return rows
}

func names(values ...string) []person {
	rows := make([]person, len(values))
	for i, v := range values {
		rows[i] = person{name: sp(v)}
	}
	return rows
}

func cond(t *testing.T, tbl *storage.Table, col schema.ColKey, c ops.Cond, v schema.Value) Node {
	t.Helper()

	n, err := NewCondition(tbl, col, c, v)
	require.NoError(t, err)
	return n
}

func findAll(t *testing.T, tbl *storage.Table, root Node, opts ...Option) []storage.RowKey {
	t.Helper()

	q, err := New(tbl, root, opts...)
	require.NoError(t, err)
	keys, err := q.FindAll(t.Context(), 0)
	require.NoError(t, err)
	return keys
}

func keys(v ...int64) []storage.RowKey {
	out := make([]storage.RowKey, len(v))
	for i, k := range v {
		out[i] = storage.RowKey(k)
	}
	return out
}
