package query

import (
	"encoding/base64"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
)

// DescribeState carries what the textual form of a query needs to name
// columns.
type DescribeState struct {
	table *storage.Table
}

func NewDescribeState(t *storage.Table) *DescribeState {
	return &DescribeState{table: t}
}

func (st *DescribeState) DescribeColumn(t *storage.Table, col schema.ColKey) string {
	if t == nil {
		t = st.table
	}
	if t == nil {
		return "col#" + strconv.Itoa(int(col))
	}
	return t.ColumnName(col)
}

// PrintValue renders a literal the way the query parser reads it back.
func PrintValue(v schema.Value) string {
	switch v.Kind {
	case schema.KindNull:
		return "NULL"
	case schema.KindInt:
		return strconv.FormatInt(v.I, 10)
	case schema.KindBool:
		return strconv.FormatBool(v.Bool())
	case schema.KindFloat:
		return strconv.FormatFloat(v.F, 'g', -1, 32)
	case schema.KindDouble:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case schema.KindString:
		if printable(v.S) {
			return strconv.Quote(v.S)
		}
		return `B64"` + base64.StdEncoding.EncodeToString([]byte(v.S)) + `"`
	case schema.KindBinary:
		return `B64"` + base64.StdEncoding.EncodeToString([]byte(v.S)) + `"`
	case schema.KindTimestamp:
		return "T" + strconv.FormatInt(v.T.Unix(), 10) + ":" + strconv.Itoa(v.T.Nanosecond())
	case schema.KindDecimal:
		return v.D.String()
	case schema.KindUUID:
		return "uuid(" + v.U.String() + ")"
	case schema.KindObjectID:
		return "oid(" + v.O.String() + ")"
	case schema.KindLink:
		return "O" + strconv.FormatInt(v.I, 10)
	default:
		return v.String()
	}
}

func printable(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if !unicode.IsPrint(r) && r != ' ' {
			return false
		}
	}
	return true
}
