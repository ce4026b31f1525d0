package parser

import (
	"fmt"

	"github.com/dot5enko/colquery/ops"
	"github.com/dot5enko/colquery/query"
	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
	"github.com/shopspring/decimal"
)

// Parse reads the textual form of a predicate and binds it to t.
func Parse(t *storage.Table, text string, opts ...query.Option) (*query.Query, error) {
	pred, err := ParseExpr(text)
	if err != nil {
		return nil, err
	}
	root, err := Build(t, pred)
	if err != nil {
		return nil, err
	}
	return query.New(t, root, opts...)
}

// Build turns pred into a node tree bound to t. A nil node without an
// error is the always true predicate.
func Build(t *storage.Table, pred Pred) (query.Node, error) {
	b := builder{table: t}
	return b.build(pred)
}

type builder struct {
	table *storage.Table
}

func (b *builder) bind(n query.Node) (query.Node, error) {
	if err := query.SetTable(n, b.table); err != nil {
		return nil, err
	}
	return n, nil
}

func (b *builder) build(pred Pred) (query.Node, error) {
	switch p := pred.(type) {
	case TruePred:
		return nil, nil
	case FalsePred:
		return b.never()
	case AndPred:
		var root query.Node
		for _, term := range p.Terms {
			n, err := b.build(term)
			if err != nil {
				return nil, err
			}
			switch {
			case n == nil:
			case root == nil:
				root = n
			default:
				root.AddChild(n)
			}
		}
		return root, nil
	case OrPred:
		var alts []query.Node
		for _, alt := range p.Alternatives {
			n, err := b.build(alt)
			if err != nil {
				return nil, err
			}
			if n == nil {
				return nil, nil
			}
			alts = append(alts, n)
		}
		return b.bind(query.NewOrNode(alts...))
	case NotPred:
		inner, err := b.build(p.Inner)
		if err != nil {
			return nil, err
		}
		if inner == nil {
			return b.never()
		}
		not, err := query.NewNotNode(inner)
		if err != nil {
			return nil, err
		}
		return b.bind(not)
	case ComparePred:
		return b.compare(p)
	default:
		panic(fmt.Sprintf("unknown predicate %T", pred))
	}
}

// never is FALSEPREDICATE, a comparison of two constants that cannot hold.
func (b *builder) never() (query.Node, error) {
	return b.bind(query.NewExpressionNode(query.NewCompare(query.NewConst(schema.Int(1)), ops.Equal, query.NewConst(schema.Int(0)))))
}

func (b *builder) compare(p ComparePred) (query.Node, error) {
	left, right, cond := p.Left, p.Right, p.Cond

	// literal on the left of a column: mirror it
	if _, ok := left.(Literal); ok {
		if _, ok := right.(ColumnRef); ok {
			if cond.IsSubstring() {
				return nil, fmt.Errorf("%w: `%s` needs the column on its left side", query.ErrInvalidQuery, cond)
			}
			left, right, cond = right, left, cond.Swap()
		}
	}

	if lref, ok := left.(ColumnRef); ok {
		switch r := right.(type) {
		case Literal:
			col, err := b.table.Column(lref.Name)
			if err != nil {
				return nil, err
			}
			if lref.Size {
				return query.NewSizeCondition(b.table, col, cond, r.Value)
			}
			v, err := b.literalFor(col, r)
			if err != nil {
				return nil, err
			}
			return query.NewCondition(b.table, col, cond, v)
		case ColumnRef:
			if !lref.Size && !r.Size {
				c1, err := b.table.Column(lref.Name)
				if err != nil {
					return nil, err
				}
				c2, err := b.table.Column(r.Name)
				if err != nil {
					return nil, err
				}
				return b.bind(query.NewTwoColumnsNode(c1, cond, c2))
			}
		}
	}

	l, err := b.subexpr(left)
	if err != nil {
		return nil, err
	}
	r, err := b.subexpr(right)
	if err != nil {
		return nil, err
	}
	return b.bind(query.NewExpressionNode(query.NewCompare(l, cond, r)))
}

// literalFor reads number literals compared with a decimal column from
// their source text, so 0.1 stays exactly 0.1.
func (b *builder) literalFor(col schema.ColKey, lit Literal) (schema.Value, error) {
	if lit.Raw == "" || b.table.ColumnType(col) != schema.DecimalFieldType {
		return lit.Value, nil
	}
	d, err := decimal.NewFromString(lit.Raw)
	if err != nil {
		return lit.Value, fmt.Errorf("%w: bad decimal `%s`: %w", ErrSyntax, lit.Raw, err)
	}
	return schema.Decimal(d), nil
}

func (b *builder) subexpr(op Operand) (query.Subexpr, error) {
	switch o := op.(type) {
	case Literal:
		return query.NewConst(o.Value), nil
	case ColumnRef:
		if o.Size {
			return nil, fmt.Errorf("%w: the size of `%s` cannot be used in an expression", query.ErrInvalidQuery, o.Name)
		}
		col, err := b.table.Column(o.Name)
		if err != nil {
			return nil, err
		}
		return query.NewCol(col), nil
	case ArithExpr:
		l, err := b.subexpr(o.Left)
		if err != nil {
			return nil, err
		}
		r, err := b.subexpr(o.Right)
		if err != nil {
			return nil, err
		}
		return query.NewArith(o.Op, l, r)
	default:
		panic(fmt.Sprintf("unknown operand %T", op))
	}
}
