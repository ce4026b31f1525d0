package query

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/dot5enko/colquery/ops"
	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
)

// LinksToNode matches rows whose link column points at one of a set of
// target rows. A link list matches when any of its links does.
type LinksToNode struct {
	nodeBase

	cond    ops.Cond
	keys    []storage.RowKey
	targets *roaring64.Bitmap

	isList    bool
	targetKey schema.TableKey
	selfLink  bool

	single storage.Leaf[int64]
	list   storage.ListLeaf
}

func NewLinksToNode(col schema.ColKey, cond ops.Cond, targets ...storage.RowKey) (*LinksToNode, error) {
	if cond != ops.Equal && cond != ops.NotEqual {
		return nil, fmt.Errorf("%w: condition %s on a link", ErrInvalidQuery, cond)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: links to no target", ErrInvalidQuery)
	}

	bm := roaring64.New()
	for _, k := range targets {
		if k < 0 {
			return nil, fmt.Errorf("%w: invalid target key %d", ErrInvalidQuery, k)
		}
		bm.Add(uint64(k))
	}

	return &LinksToNode{
		nodeBase: newBase(col, 50),
		cond:     cond,
		keys:     append([]storage.RowKey(nil), targets...),
		targets:  bm,
	}, nil
}

func (n *LinksToNode) Kind() NodeKind {
	return LinksToCondition
}

func (n *LinksToNode) Cond() ops.Cond {
	return n.cond
}

func (n *LinksToNode) tableChanged() error {
	def := n.table.ColumnInfo(n.col)
	if !def.Type.IsLink() {
		return fmt.Errorf("%w: links-to condition on %s column `%s`", ErrUnsupportedColumn, def, def.Name)
	}
	n.isList = def.IsCollection()

	target, err := n.table.LinkTarget(n.col)
	if err != nil {
		return err
	}
	n.targetKey = target.Key()
	n.selfLink = target == n.table
	return nil
}

func (n *LinksToNode) pageChanged() error {
	if n.isList {
		list, err := n.page.Lists(n.col)
		if err != nil {
			return err
		}
		n.list = list
		return nil
	}

	single, err := storage.LeafOf[int64](n.page, n.col)
	if err != nil {
		return err
	}
	n.single = single
	return nil
}

func (n *LinksToNode) linksTo(key int64) bool {
	return key >= 0 && n.targets.Contains(uint64(key))
}

func (n *LinksToNode) matchRow(ndx int) bool {
	want := n.cond == ops.Equal

	if !n.isList {
		if n.single.IsNull(ndx) {
			return !want
		}
		return n.linksTo(n.single.Get(ndx)) == want
	}

	for _, it := range n.list.Items(ndx) {
		if n.linksTo(it.I) == want {
			return true
		}
	}
	return false
}

func (n *LinksToNode) FindFirstLocal(start, end int) int {
	n.checkBound()
	for i := start; i < end; i++ {
		if n.matchRow(i) {
			return i
		}
	}
	return NotFound
}

func (n *LinksToNode) DescribeCondition() string {
	return n.cond.String()
}

func (n *LinksToNode) Describe(st *DescribeState) (string, error) {
	if len(n.keys) > 1 {
		return "", fmt.Errorf("%w: links to multiple objects", ErrSerialization)
	}
	return st.DescribeColumn(n.table, n.col) + " " + n.cond.String() + " " + PrintValue(schema.Link(int64(n.keys[0]))), nil
}

func (n *LinksToNode) CollectDependencies(tables *[]schema.TableKey) {
	if n.table != nil && !n.selfLink {
		*tables = append(*tables, n.targetKey)
	}
}

func (n *LinksToNode) Clone() Node {
	c := *n
	c.nodeBase = n.cloneBase()
	c.keys = append([]storage.RowKey(nil), n.keys...)
	c.targets = n.targets.Clone()
	c.single = storage.Leaf[int64]{}
	c.list = storage.ListLeaf{}
	return &c
}
