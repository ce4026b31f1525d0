package query

import (
	"fmt"

	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
)

// Stats is the scan local bookkeeping of one node. The scheduler keeps
// one per gathered node and resets them on every Init.
type Stats struct {
	// average row distance between local matches
	AverageMatchDistance float64
	Probes               int
	Matches              int
}

func (s *Stats) reset() {
	s.AverageMatchDistance = 100
	s.Probes = 0
	s.Matches = 0
}

// record accounts a local search that covered rows and found matches.
func (s *Stats) record(rows, matches int) {
	s.Probes += rows
	s.Matches += matches
	s.AverageMatchDistance = float64(rows) / (float64(matches) + 1.1)
}

// Cost estimates the price of asking n for its next match. Match distance
// weighs eight times the per row overhead.
func Cost(n Node, s *Stats) float64 {
	return 8*bitwidthTimeUnit/s.AverageMatchDistance + n.Overhead()
}

// SetTable binds the chain of n to a table. Binding the same table again
// is a no-op. Column kind mismatches surface here.
func SetTable(n Node, t *storage.Table) error {
	b := n.base()
	if b.table == t {
		return nil
	}

	b.table = t
	if b.child != nil {
		if err := SetTable(b.child, t); err != nil {
			b.table = nil
			return err
		}
	}

	if h, ok := n.(tableChangedHook); ok {
		if err := h.tableChanged(); err != nil {
			b.table = nil
			return err
		}
	}
	return nil
}

// SetPage binds the chain of n to a page and rebuilds the leaf caches.
func SetPage(n Node, p *storage.Page) error {
	b := n.base()
	if b.table == nil {
		panic(fmt.Sprintf("node on column %d bound to a page before a table", b.col))
	}

	b.page = p
	if b.child != nil {
		if err := SetPage(b.child, p); err != nil {
			return err
		}
	}

	if h, ok := n.(pageChangedHook); ok {
		return h.pageChanged()
	}
	return nil
}

// Gather flattens the chain of n. Every node of the chain gets the full
// sibling list with itself in front, the list of n is returned.
func Gather(n Node) []Node {
	var all []Node
	for it := n; it != nil; it = it.base().child {
		all = append(all, it)
	}

	for i, it := range all {
		children := make([]Node, 0, len(all))
		children = append(children, it)
		children = append(children, all[:i]...)
		children = append(children, all[i+1:]...)
		it.base().children = children
	}

	return n.base().children
}

// FindFirst returns the first offset in [start, end) satisfying the whole
// chain of n. The conditions are asked in turn, each restarting the others
// whenever it moves the candidate forward. Gather must have run.
func FindFirst(n Node, start, end int) int {
	children := n.base().children
	sz := len(children)
	if sz == 0 {
		panic("FindFirst on an ungathered node")
	}

	cur := 0
	toTest := sz

	for start < end {
		m := children[cur].FindFirstLocal(start, end)
		if m != start {
			if m == NotFound {
				return NotFound
			}
			toTest = sz
			start = m
		}

		toTest--
		if toTest == 0 {
			return m
		}

		cur++
		if cur == sz {
			cur = 0
		}
	}
	return NotFound
}

// ConsumeCondition tries to fold other into a, which works for equality
// nodes on the same column without chained conditions. An index on the
// column blocks the merge unless ignoreIndexes is set, as probing the
// index once per literal beats a merged scan.
func ConsumeCondition(a, other Node, ignoreIndexes bool) bool {
	if a.Column() != other.Column() {
		return false
	}
	if a.base().child != nil || other.base().child != nil {
		return false
	}
	if a.Kind() != other.Kind() || a.Cond() != other.Cond() {
		return false
	}
	if a.HasSearchIndex() && !ignoreIndexes {
		return false
	}

	c, ok := a.(conditionConsumer)
	if !ok {
		return false
	}
	return c.consume(other)
}

// DescribeExpression renders the chain of n as a conjunction.
func DescribeExpression(n Node, st *DescribeState) (string, error) {
	s, err := n.Describe(st)
	if err != nil {
		return "", err
	}
	if child := n.base().child; child != nil {
		rest, err := DescribeExpression(child, st)
		if err != nil {
			return "", err
		}
		s = s + " and " + rest
	}
	return s, nil
}

// Dependencies appends the keys of every table the chain of n reads
// besides its own.
func Dependencies(n Node, tables *[]schema.TableKey) {
	for it := n; it != nil; it = it.base().child {
		it.CollectDependencies(tables)
	}
}

func emit(b *nodeBase, ndx int) bool {
	var v schema.Value
	if b.source != nil {
		v = b.source.Value(ndx)
	}
	return b.state.Match(ndx, v)
}

// findAllLocal feeds every match of n alone in [start, end) to the bound
// state. It returns end, or NotFound once the state asked to stop.
func findAllLocal(n Node, start, end int) int {
	if bf, ok := n.(bulkFinder); ok {
		return bf.findAllLocal(start, end)
	}
	return scanAllLocal(n, start, end)
}

func scanAllLocal(n Node, start, end int) int {
	b := n.base()
	for start < end {
		start = n.FindFirstLocal(start, end)
		if start == NotFound {
			break
		}
		if !emit(b, start) {
			return NotFound
		}
		start++
	}
	return end
}

// aggregateLocal runs n as the driving condition over [start, end) and
// verifies each of its hits against the siblings. It stops after limit
// local hits and returns the offset to resume from, end when the range
// is exhausted, or NotFound when the state asked to stop.
func aggregateLocal(n Node, st State, stats *Stats, start, end, limit int, source storage.Accessor) int {
	b := n.base()
	b.state = st
	b.source = source

	if len(b.children) == 1 {
		return findAllLocal(n, start, end)
	}

	local := 0
	r := start - 1

	for {
		if local == limit {
			stats.record(r+1-start, local)
			return r + 1
		}

		r = n.FindFirstLocal(r+1, end)
		if r == NotFound {
			stats.record(end-start, local)
			return end
		}

		local++

		m := r
		for _, sibling := range b.children[1:] {
			m = sibling.FindFirstLocal(r, r+1)
			if m != r {
				break
			}
		}

		if m == r && !emit(b, r) {
			return NotFound
		}
	}
}
