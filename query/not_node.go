package query

import (
	"fmt"

	"github.com/dot5enko/colquery/schema"
)

// NotNode matches rows its sub-tree does not match. It remembers the
// range it scanned last and the first match inside it, which serves the
// overlapping probes the scheduler issues.
type NotNode struct {
	nodeBase

	condition Node

	knownStart   int
	knownEnd     int
	firstInKnown int
}

func NewNotNode(condition Node) (*NotNode, error) {
	if condition == nil {
		return nil, fmt.Errorf("%w: missing argument to Not", ErrInvalidQuery)
	}
	return &NotNode{
		nodeBase:     newBase(schema.NoColumn, 50),
		condition:    condition,
		firstInKnown: NotFound,
	}, nil
}

func (n *NotNode) Condition() Node {
	return n.condition
}

func (n *NotNode) Kind() NodeKind {
	return NotCondition
}

func (n *NotNode) tableChanged() error {
	return SetTable(n.condition, n.table)
}

func (n *NotNode) pageChanged() error {
	if err := SetPage(n.condition, n.page); err != nil {
		return err
	}
	n.updateKnown(0, 0, NotFound)
	return nil
}

func (n *NotNode) Init(willQueryRanges bool) {
	n.nodeBase.Init(willQueryRanges)

	// the sub-tree is only ever asked about single rows
	n.condition.Init(false)
	Gather(n.condition)
	n.updateKnown(0, 0, NotFound)
}

func (n *NotNode) FindFirstLocal(start, end int) int {
	switch {
	case start <= n.knownStart && end >= n.knownEnd:
		return n.findFirstCoversKnown(start, end)
	case start >= n.knownStart && end <= n.knownEnd:
		return n.findFirstCoveredByKnown(start, end)
	case start < n.knownStart && end >= n.knownStart:
		return n.findFirstOverlapLower(start, end)
	case start <= n.knownEnd && end > n.knownEnd:
		return n.findFirstOverlapUpper(start, end)
	default:
		return n.findFirstNoOverlap(start, end)
	}
}

func (n *NotNode) evaluateAt(ndx int) bool {
	return FindFirst(n.condition, ndx, ndx+1) == NotFound
}

func (n *NotNode) updateKnown(start, end, first int) {
	n.knownStart = start
	n.knownEnd = end
	n.firstInKnown = first
}

func (n *NotNode) findFirstLoop(start, end int) int {
	for i := start; i < end; i++ {
		if n.evaluateAt(i) {
			return i
		}
	}
	return NotFound
}

// [   ####   ]
func (n *NotNode) findFirstCoversKnown(start, end int) int {
	result := n.findFirstLoop(start, n.knownStart)
	switch {
	case result != NotFound:
		n.updateKnown(start, n.knownEnd, result)
	case n.firstInKnown != NotFound:
		n.updateKnown(start, n.knownEnd, n.firstInKnown)
		result = n.firstInKnown
	default:
		result = n.findFirstLoop(n.knownEnd, end)
		n.updateKnown(start, end, result)
	}
	return result
}

// ##[####]##
func (n *NotNode) findFirstCoveredByKnown(start, end int) int {
	if n.firstInKnown == NotFound || n.firstInKnown >= end {
		return NotFound
	}
	if n.firstInKnown >= start {
		return n.firstInKnown
	}
	// the known match lies before start and says nothing about the rest
	return n.findFirstLoop(start, end)
}

// [   ##]####
func (n *NotNode) findFirstOverlapLower(start, end int) int {
	result := n.findFirstLoop(start, n.knownStart)
	if result == NotFound {
		result = n.firstInKnown
	}
	n.updateKnown(start, n.knownEnd, result)

	if result != NotFound && result < end {
		return result
	}
	return NotFound
}

// ####[##   ]
func (n *NotNode) findFirstOverlapUpper(start, end int) int {
	if n.firstInKnown == NotFound {
		result := n.findFirstLoop(n.knownEnd, end)
		n.updateKnown(n.knownStart, end, result)
		return result
	}

	if n.firstInKnown >= start {
		n.updateKnown(n.knownStart, end, n.firstInKnown)
		return n.firstInKnown
	}

	result := n.findFirstLoop(start, end)
	n.updateKnown(n.knownStart, end, n.firstInKnown)
	return result
}

// ###  [   ]  or  [   ]  ###
func (n *NotNode) findFirstNoOverlap(start, end int) int {
	result := n.findFirstLoop(start, end)
	if end-start > n.knownEnd-n.knownStart {
		n.updateKnown(start, end, result)
	}
	return result
}

func (n *NotNode) Validate() error {
	if err := n.nodeBase.Validate(); err != nil {
		return err
	}
	return n.condition.Validate()
}

func (n *NotNode) Describe(st *DescribeState) (string, error) {
	s, err := DescribeExpression(n.condition, st)
	if err != nil {
		return "", err
	}
	return "!(" + s + ")", nil
}

func (n *NotNode) CollectDependencies(tables *[]schema.TableKey) {
	Dependencies(n.condition, tables)
}

func (n *NotNode) Clone() Node {
	return &NotNode{
		nodeBase:     n.cloneBase(),
		condition:    n.condition.Clone(),
		firstInKnown: NotFound,
	}
}
