package query

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dot5enko/colquery/schema"
	"github.com/dot5enko/colquery/storage"
)

// Query is a conjunction of conditions over one table. A nil root matches
// every row.
//
// The nodes of a query keep scan state, so runs on the same Query are
// serialised. ParallelCount scans with clones.
type Query struct {
	table *storage.Table
	root  Node
	opts  options

	lock sync.Mutex
}

func New(t *storage.Table, root Node, opts ...Option) (*Query, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	q := &Query{table: t, opts: o}
	if root != nil {
		if err := q.And(root); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// And adds a condition to the query.
func (q *Query) And(n Node) error {
	if err := SetTable(n, q.table); err != nil {
		return err
	}
	if err := n.Validate(); err != nil {
		return err
	}

	q.lock.Lock()
	defer q.lock.Unlock()

	if q.root == nil {
		q.root = n
	} else {
		q.root.AddChild(n)
	}
	return nil
}

func (q *Query) Table() *storage.Table {
	return q.table
}

func (q *Query) Root() Node {
	return q.root
}

func (q *Query) Validate() error {
	if q.root == nil {
		return nil
	}
	return q.root.Validate()
}

func (q *Query) Describe() (string, error) {
	if q.root == nil {
		return "TRUEPREDICATE", nil
	}
	return DescribeExpression(q.root, NewDescribeState(q.table))
}

// Dependencies lists the other tables the query reads, without
// duplicates.
func (q *Query) Dependencies() []schema.TableKey {
	var keys []schema.TableKey
	if q.root != nil {
		Dependencies(q.root, &keys)
	}

	out := keys[:0]
	for _, k := range keys {
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}

func (q *Query) Count(ctx context.Context) (int, error) {
	st := NewCountState(0)
	if err := q.run(ctx, st, schema.NoColumn); err != nil {
		return 0, err
	}
	return st.Count(), nil
}

// FindAll returns the keys of the matching rows in key order, at most
// limit of them when limit > 0.
func (q *Query) FindAll(ctx context.Context, limit int) ([]storage.RowKey, error) {
	st := NewFindAllState(limit)
	if err := q.run(ctx, st, schema.NoColumn); err != nil {
		return nil, err
	}
	return st.Keys, nil
}

// FindFirst returns the key of the first matching row.
func (q *Query) FindFirst(ctx context.Context) (storage.RowKey, bool, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.root != nil {
		q.root.Init(true)
		Gather(q.root)
	}

	for _, p := range q.table.Pages() {
		if err := ctx.Err(); err != nil {
			return 0, false, err
		}
		if p.Len() == 0 {
			continue
		}
		if q.root == nil {
			return p.Key(0), true, nil
		}

		if err := SetPage(q.root, p); err != nil {
			return 0, false, err
		}
		if m := FindFirst(q.root, 0, p.Len()); m != NotFound {
			return p.Key(m), true, nil
		}
	}
	return 0, false, nil
}

// Matches reports whether the row under key satisfies the query.
func (q *Query) Matches(key storage.RowKey) (bool, error) {
	p, ndx, ok := q.table.Locate(key)
	if !ok {
		return false, nil
	}
	if q.root == nil {
		return true, nil
	}

	q.lock.Lock()
	defer q.lock.Unlock()

	q.root.Init(false)
	Gather(q.root)
	if err := SetPage(q.root, p); err != nil {
		return false, err
	}
	return FindFirst(q.root, ndx, ndx+1) == ndx, nil
}

func (q *Query) Sum(ctx context.Context, col schema.ColKey) (schema.Value, error) {
	if err := q.checkAggregate(col, true); err != nil {
		return schema.Null(), err
	}
	st := NewSumState()
	if err := q.run(ctx, st, col); err != nil {
		return schema.Null(), err
	}
	return st.Result(), nil
}

// Average is null when no row holds a value.
func (q *Query) Average(ctx context.Context, col schema.ColKey) (schema.Value, error) {
	if err := q.checkAggregate(col, true); err != nil {
		return schema.Null(), err
	}
	st := NewAverageState()
	if err := q.run(ctx, st, col); err != nil {
		return schema.Null(), err
	}
	return st.Result(), nil
}

// Min returns the smallest value of col among matching rows and the key
// of the first row holding it. ok is false when no such row holds a value.
func (q *Query) Min(ctx context.Context, col schema.ColKey) (v schema.Value, key storage.RowKey, ok bool, err error) {
	if err = q.checkAggregate(col, false); err != nil {
		return
	}
	st := NewMinState()
	if err = q.run(ctx, st, col); err != nil {
		return
	}
	v, key, ok = st.Result()
	return
}

// Max is Min for the largest value.
func (q *Query) Max(ctx context.Context, col schema.ColKey) (v schema.Value, key storage.RowKey, ok bool, err error) {
	if err = q.checkAggregate(col, false); err != nil {
		return
	}
	st := NewMaxState()
	if err = q.run(ctx, st, col); err != nil {
		return
	}
	v, key, ok = st.Result()
	return
}

func (q *Query) checkAggregate(col schema.ColKey, numeric bool) error {
	def := q.table.ColumnInfo(col)
	if def.IsCollection() {
		return fmt.Errorf("%w: cannot aggregate collection `%s`", ErrUnsupportedColumn, def.Name)
	}
	if !numeric {
		return nil
	}
	switch def.Type {
	case schema.IntFieldType, schema.FloatFieldType, schema.DoubleFieldType, schema.DecimalFieldType, schema.MixedFieldType:
		return nil
	default:
		return fmt.Errorf("%w: cannot sum %s column `%s`", ErrUnsupportedColumn, def.Type, def.Name)
	}
}

// ParallelCount counts with one clone of the query per worker, each worker
// taking every n-th page.
func (q *Query) ParallelCount(ctx context.Context) (int, error) {
	pages := q.table.Pages()
	workers := min(q.opts.workers, len(pages))
	if q.root == nil || workers <= 1 {
		return q.Count(ctx)
	}

	q.lock.Lock()
	defer q.lock.Unlock()

	counts := make([]int, workers)
	g, gctx := errgroup.WithContext(ctx)

	for w := 0; w < workers; w++ {
		root := q.root.Clone()
		g.Go(func() error {
			var part []*storage.Page
			for i := w; i < len(pages); i += workers {
				part = append(part, pages[i])
			}

			root.Init(true)
			sched := newScheduler(Gather(root), q.opts.cfg)
			st := NewCountState(0)
			if err := runPages(gctx, root, sched, part, st, schema.NoColumn); err != nil {
				return err
			}
			counts[w] = st.Count()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	slog.Debug("parallel count", "table", q.table.Name(), "workers", workers, "count", total)
	return total, nil
}

func (q *Query) run(ctx context.Context, st State, agg schema.ColKey) error {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.root == nil {
		return scanAll(ctx, q.table.Pages(), st, agg)
	}

	q.root.Init(true)
	nodes := Gather(q.root)

	if len(nodes) == 1 {
		if keys := q.root.IndexBasedKeys(); keys != nil {
			slog.Debug("index scan", "table", q.table.Name(), "keys", len(keys))
			return q.runKeys(ctx, keys, st, agg)
		}
	}

	return runPages(ctx, q.root, newScheduler(nodes, q.opts.cfg), q.table.Pages(), st, agg)
}

func runPages(ctx context.Context, root Node, sched *scheduler, pages []*storage.Page, st State, agg schema.ColKey) error {
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.Len() == 0 {
			continue
		}

		if err := SetPage(root, p); err != nil {
			return err
		}
		st.BindPage(p)

		source, err := sourceOf(p, agg)
		if err != nil {
			return err
		}

		if !sched.run(st, 0, p.Len(), source) {
			break
		}
		sched.logCosts(p.Ord())
	}
	return nil
}

// runKeys feeds the rows of an index result straight to the state.
func (q *Query) runKeys(ctx context.Context, keys []storage.RowKey, st State, agg schema.ColKey) error {
	var (
		cur    *storage.Page
		source storage.Accessor
	)

	for _, k := range keys {
		p, ndx, ok := q.table.Locate(k)
		if !ok {
			continue
		}

		if p != cur {
			if err := ctx.Err(); err != nil {
				return err
			}
			var err error
			if source, err = sourceOf(p, agg); err != nil {
				return err
			}
			st.BindPage(p)
			cur = p
		}

		var v schema.Value
		if source != nil {
			v = source.Value(ndx)
		}
		if !st.Match(ndx, v) {
			break
		}
	}
	return nil
}

func scanAll(ctx context.Context, pages []*storage.Page, st State, agg schema.ColKey) error {
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}

		source, err := sourceOf(p, agg)
		if err != nil {
			return err
		}
		st.BindPage(p)

		for i := 0; i < p.Len(); i++ {
			var v schema.Value
			if source != nil {
				v = source.Value(i)
			}
			if !st.Match(i, v) {
				return nil
			}
		}
	}
	return nil
}

func sourceOf(p *storage.Page, agg schema.ColKey) (storage.Accessor, error) {
	if agg == schema.NoColumn {
		return nil, nil
	}
	return p.Accessor(agg)
}
