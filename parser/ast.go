package parser

import (
	"github.com/dot5enko/colquery/ops"
	"github.com/dot5enko/colquery/schema"
)

// Pred is a parsed predicate, not yet bound to a table.
type Pred interface {
	pred()
}

type (
	TruePred  struct{}
	FalsePred struct{}

	AndPred struct {
		Terms []Pred
	}

	OrPred struct {
		Alternatives []Pred
	}

	NotPred struct {
		Inner Pred
	}

	ComparePred struct {
		Left  Operand
		Cond  ops.Cond
		Right Operand
	}
)

func (TruePred) pred()    {}
func (FalsePred) pred()   {}
func (AndPred) pred()     {}
func (OrPred) pred()      {}
func (NotPred) pred()     {}
func (ComparePred) pred() {}

// Operand is one side of a comparison.
type Operand interface {
	operand()
}

type (
	ColumnRef struct {
		Name string
		// Size is set for `col.@size` and `col.@count`.
		Size bool
	}

	Literal struct {
		Value schema.Value
		// Raw keeps the source text of numbers so decimal columns get the
		// exact digits.
		Raw string
	}

	ArithExpr struct {
		Op          byte
		Left, Right Operand
	}
)

func (ColumnRef) operand() {}
func (Literal) operand()   {}
func (ArithExpr) operand() {}
