package query

import (
	"fmt"
	"sort"

	"github.com/dot5enko/colquery/schema"
)

// OrNode matches rows satisfying any of its alternatives. Each alternative
// is a full chain of its own.
type OrNode struct {
	nodeBase

	conditions []Node

	// per alternative: start of the last search, the offset it got to
	// (a match when wasMatch is set) and whether it matched
	start    []int
	last     []int
	wasMatch []bool
}

func NewOrNode(conditions ...Node) *OrNode {
	n := &OrNode{nodeBase: newBase(schema.NoColumn, 50)}
	for _, c := range conditions {
		if c != nil {
			n.conditions = append(n.conditions, c)
		}
	}
	return n
}

// AddCondition appends an alternative.
func (n *OrNode) AddCondition(c Node) {
	n.conditions = append(n.conditions, c)
}

func (n *OrNode) Conditions() []Node {
	return n.conditions
}

func (n *OrNode) Kind() NodeKind {
	return OrCondition
}

func (n *OrNode) tableChanged() error {
	for _, c := range n.conditions {
		if err := SetTable(c, n.table); err != nil {
			return err
		}
	}
	return nil
}

func (n *OrNode) resetCache() {
	n.start = make([]int, len(n.conditions))
	n.last = make([]int, len(n.conditions))
	n.wasMatch = make([]bool, len(n.conditions))
}

func (n *OrNode) pageChanged() error {
	for _, c := range n.conditions {
		if err := SetPage(c, n.page); err != nil {
			return err
		}
	}
	n.resetCache()
	return nil
}

func (n *OrNode) Init(willQueryRanges bool) {
	n.nodeBase.Init(willQueryRanges)

	if len(n.conditions) > 0 {
		n.combineConditions(!willQueryRanges)
	}
	n.resetCache()

	for _, c := range n.conditions {
		c.Init(willQueryRanges)
		Gather(c)
	}
}

// combineConditions folds equality alternatives on the same column into
// one node holding all literals.
func (n *OrNode) combineConditions(ignoreIndexes bool) {
	sort.SliceStable(n.conditions, func(i, j int) bool {
		return n.conditions[i].Column() < n.conditions[j].Column()
	})

	prev := n.conditions[0]
	kept := n.conditions[:1]
	for _, c := range n.conditions[1:] {
		if ConsumeCondition(prev, c, ignoreIndexes) {
			continue
		}
		kept = append(kept, c)
		prev = c
	}

	for i := len(kept); i < len(n.conditions); i++ {
		n.conditions[i] = nil
	}
	n.conditions = kept
}

func (n *OrNode) FindFirstLocal(start, end int) int {
	if start >= end {
		return NotFound
	}

	index := NotFound
	for c, cond := range n.conditions {
		switch {
		case start < n.start[c]:
			// out of order search, the cache says nothing about this range
			n.last[c] = 0
			n.wasMatch[c] = false
		case n.last[c] >= end:
			// searched before without a match
			continue
		case n.wasMatch[c] && n.last[c] >= start:
			if index == NotFound || n.last[c] < index {
				index = n.last[c]
			}
			continue
		}

		n.start[c] = start
		f := FindFirst(cond, max(n.last[c], start), end)

		n.wasMatch[c] = f != NotFound
		if f == NotFound {
			n.last[c] = end
			continue
		}
		n.last[c] = f
		if index == NotFound || f < index {
			index = f
		}
	}
	return index
}

func (n *OrNode) Validate() error {
	switch len(n.conditions) {
	case 0:
		return fmt.Errorf("%w: missing both arguments of OR", ErrInvalidQuery)
	case 1:
		return fmt.Errorf("%w: missing argument of OR", ErrInvalidQuery)
	}

	if err := n.nodeBase.Validate(); err != nil {
		return err
	}
	for _, c := range n.conditions {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (n *OrNode) Describe(st *DescribeState) (string, error) {
	s := ""
	for i, c := range n.conditions {
		d, err := DescribeExpression(c, st)
		if err != nil {
			return "", err
		}
		s += d
		if i != len(n.conditions)-1 {
			s += " or "
		}
	}
	if len(n.conditions) > 1 {
		s = "(" + s + ")"
	}
	return s, nil
}

func (n *OrNode) CollectDependencies(tables *[]schema.TableKey) {
	for _, c := range n.conditions {
		Dependencies(c, tables)
	}
}

func (n *OrNode) Clone() Node {
	c := &OrNode{nodeBase: n.cloneBase()}
	for _, cond := range n.conditions {
		c.conditions = append(c.conditions, cond.Clone())
	}
	return c
}
