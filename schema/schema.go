package schema

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

type TableKey = uuid.UUID

var (
	ErrColumnNotFound  = errors.New("column not found")
	ErrDuplicateColumn = errors.New("duplicate column")
)

type Schema struct {
	Name    string   `json:"name"`
	Key     TableKey `json:"uuid"`
	Columns []SchemaColumn
}

func New(name string, columns ...SchemaColumn) Schema {
	return Schema{
		Name:    name,
		Key:     uuid.New(),
		Columns: columns,
	}
}

func (s *Schema) Column(name string) (ColKey, error) {
	for idx, it := range s.Columns {
		if it.Name == name {
			return ColKey(idx), nil
		}
	}
	return NoColumn, fmt.Errorf("%w: `%v` on schema `%v`", ErrColumnNotFound, name, s.Name)
}

func (s *Schema) ColumnInfo(col ColKey) *SchemaColumn {
	if col < 0 || int(col) >= len(s.Columns) {
		panic(fmt.Sprintf("column key %d out of range for schema `%s`", col, s.Name))
	}
	return &s.Columns[col]
}

// Validate reports every problem of the column list at once.
func (s *Schema) Validate() error {
	var result error

	seen := map[string]struct{}{}
	for _, it := range s.Columns {
		if _, ok := seen[it.Name]; ok {
			result = multierror.Append(result, fmt.Errorf("%w: `%v` on schema `%v`", ErrDuplicateColumn, it.Name, s.Name))
		}
		seen[it.Name] = struct{}{}

		if it.Type.IsLink() && it.Target == "" {
			result = multierror.Append(result, fmt.Errorf("link column `%v` has no target schema", it.Name))
		}
		if it.Type == MixedFieldType && it.Collection != NoCollection {
			result = multierror.Append(result, fmt.Errorf("mixed column `%v` cannot be a collection", it.Name))
		}
	}
	return result
}
