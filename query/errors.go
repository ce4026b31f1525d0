package query

import "errors"

var (
	ErrInvalidQuery      = errors.New("invalid query")
	ErrMalformedUTF8     = errors.New("malformed UTF-8 string")
	ErrUnsupportedColumn = errors.New("unsupported column")
	ErrSerialization     = errors.New("query cannot be serialized")
)
