package storage

import (
	"errors"

	"github.com/dot5enko/colquery/schema"
)

var (
	ErrColumnNotFound = schema.ErrColumnNotFound
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrKeyOrder       = errors.New("row keys must be strictly increasing")
	ErrTableNotFound  = errors.New("table not found")
	ErrTableExists    = errors.New("table already exists")
	ErrNoIndex        = errors.New("column has no search index")
)
