package schema

import "fmt"

// ColKey is the ordinal of a column in its schema.
type ColKey int

const NoColumn ColKey = -1

type SchemaColumn struct {
	Name string
	Type FieldType

	Collection CollectionType
	Nullable   bool
	Indexed    bool

	// name of the linked schema, for Link and LinkList columns
	Target string
}

func (c SchemaColumn) IsCollection() bool {
	return c.Collection != NoCollection || c.Type == LinkListFieldType
}

func (c SchemaColumn) String() string {
	if c.Collection != NoCollection {
		return fmt.Sprintf("%s %s<%s>", c.Name, c.Collection, c.Type)
	}
	return fmt.Sprintf("%s %s", c.Name, c.Type)
}
