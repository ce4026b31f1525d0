package query

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dot5enko/colquery/ops"
	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
)

// Subexpr produces one value per row of the bound page.
type Subexpr interface {
	SetTable(t *storage.Table) error
	SetPage(p *storage.Page) error
	Value(ndx int) schema.Value
	Describe(st *DescribeState) string
	Clone() Subexpr
}

// Col reads a single valued column.
type Col struct {
	key   schema.ColKey
	table *storage.Table
	acc   storage.Accessor
}

func NewCol(key schema.ColKey) *Col {
	return &Col{key: key}
}

func (c *Col) SetTable(t *storage.Table) error {
	def := t.ColumnInfo(c.key)
	if def.IsCollection() {
		return fmt.Errorf("%w: collection column `%s` in an expression", ErrUnsupportedColumn, def.Name)
	}
	c.table = t
	return nil
}

func (c *Col) SetPage(p *storage.Page) error {
	acc, err := p.Accessor(c.key)
	if err != nil {
		return err
	}
	c.acc = acc
	return nil
}

func (c *Col) Value(ndx int) schema.Value {
	return c.acc.Value(ndx)
}

func (c *Col) Describe(st *DescribeState) string {
	return st.DescribeColumn(c.table, c.key)
}

func (c *Col) Clone() Subexpr {
	return &Col{key: c.key, table: c.table}
}

// Const is a literal.
type Const struct {
	V schema.Value
}

func NewConst(v schema.Value) *Const {
	return &Const{V: v}
}

func (c *Const) SetTable(*storage.Table) error { return nil }
func (c *Const) SetPage(*storage.Page) error   { return nil }
func (c *Const) Value(int) schema.Value        { return c.V }

func (c *Const) Describe(*DescribeState) string {
	return PrintValue(c.V)
}

func (c *Const) Clone() Subexpr {
	return &Const{V: c.V}
}

// Arith combines two numeric subexpressions with + - * or /.
type Arith struct {
	Op    byte
	Left  Subexpr
	Right Subexpr
}

func NewArith(op byte, left, right Subexpr) (*Arith, error) {
	switch op {
	case '+', '-', '*', '/':
	default:
		return nil, fmt.Errorf("%w: unknown operator `%c`", ErrInvalidQuery, op)
	}
	return &Arith{Op: op, Left: left, Right: right}, nil
}

func (a *Arith) SetTable(t *storage.Table) error {
	if err := a.Left.SetTable(t); err != nil {
		return err
	}
	return a.Right.SetTable(t)
}

func (a *Arith) SetPage(p *storage.Page) error {
	if err := a.Left.SetPage(p); err != nil {
		return err
	}
	return a.Right.SetPage(p)
}

func (a *Arith) Value(ndx int) schema.Value {
	return arith(a.Op, a.Left.Value(ndx), a.Right.Value(ndx))
}

func (a *Arith) Describe(st *DescribeState) string {
	return "(" + a.Left.Describe(st) + " " + string(a.Op) + " " + a.Right.Describe(st) + ")"
}

func (a *Arith) Clone() Subexpr {
	return &Arith{Op: a.Op, Left: a.Left.Clone(), Right: a.Right.Clone()}
}

// arith yields null when an operand is null or not numeric. Ints stay
// ints, integer division by zero is null. Decimals win over floats.
func arith(op byte, l, r schema.Value) schema.Value {
	if !l.Kind.IsNumeric() || !r.Kind.IsNumeric() {
		return schema.Null()
	}

	switch {
	case l.Kind == schema.KindInt && r.Kind == schema.KindInt:
		switch op {
		case '+':
			return schema.Int(l.I + r.I)
		case '-':
			return schema.Int(l.I - r.I)
		case '*':
			return schema.Int(l.I * r.I)
		default:
			if r.I == 0 {
				return schema.Null()
			}
			return schema.Int(l.I / r.I)
		}

	case l.Kind == schema.KindDecimal || r.Kind == schema.KindDecimal:
		a, b := toDecimal(l), toDecimal(r)
		switch op {
		case '+':
			return schema.Decimal(a.Add(b))
		case '-':
			return schema.Decimal(a.Sub(b))
		case '*':
			return schema.Decimal(a.Mul(b))
		default:
			if b.IsZero() {
				return schema.Null()
			}
			return schema.Decimal(a.Div(b))
		}

	default:
		a, b := l.AsFloat64(), r.AsFloat64()
		switch op {
		case '+':
			return schema.Double(a + b)
		case '-':
			return schema.Double(a - b)
		case '*':
			return schema.Double(a * b)
		default:
			return schema.Double(a / b)
		}
	}
}

func toDecimal(v schema.Value) decimal.Decimal {
	switch v.Kind {
	case schema.KindInt:
		return decimal.NewFromInt(v.I)
	case schema.KindDecimal:
		return v.D
	default:
		return decimal.NewFromFloat(v.F)
	}
}

// Compare is the reference Expression: two subexpressions compared row by
// row.
type Compare struct {
	Left  Subexpr
	Right Subexpr
	Cond  ops.Cond

	table *storage.Table
	eval  valueComparer
}

func NewCompare(left Subexpr, cond ops.Cond, right Subexpr) *Compare {
	return &Compare{Left: left, Right: right, Cond: cond, eval: valueComparer{cond: cond}}
}

func (c *Compare) SetTable(t *storage.Table) error {
	if err := c.Left.SetTable(t); err != nil {
		return err
	}
	if err := c.Right.SetTable(t); err != nil {
		return err
	}
	c.table = t

	c.eval = valueComparer{cond: c.Cond}
	if k, ok := c.Right.(*Const); ok && (c.Cond.IsSubstring() || c.Cond.IsCaseInsensitive()) && (k.V.IsNull() || isStringish(k.V)) {
		c.eval.matcher(k.V)
	}
	return nil
}

func (c *Compare) SetPage(p *storage.Page) error {
	if err := c.Left.SetPage(p); err != nil {
		return err
	}
	return c.Right.SetPage(p)
}

func (c *Compare) FindFirst(start, end int) int {
	for i := start; i < end; i++ {
		if c.eval.eval(c.Left.Value(i), c.Right.Value(i)) {
			return i
		}
	}
	return NotFound
}

func (c *Compare) CollectDependencies(*[]schema.TableKey) {}

func (c *Compare) Describe(st *DescribeState) (string, error) {
	return c.Left.Describe(st) + " " + c.Cond.String() + " " + c.Right.Describe(st), nil
}

func (c *Compare) Clone() Expression {
	// matchers are read only once built
	return &Compare{Left: c.Left.Clone(), Right: c.Right.Clone(), Cond: c.Cond, table: c.table, eval: c.eval}
}
