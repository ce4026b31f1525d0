package storage

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dot5enko/colquery/schema"
)

// Group is a set of tables that may link to each other by name.
type Group struct {
	tables map[string]*Table
	lock   sync.RWMutex
}

func NewGroup() *Group {
	return &Group{
		tables: map[string]*Table{},
	}
}

// CreateTable adds a table. Link targets must already exist or be the new
// table itself.
func (g *Group) CreateTable(s schema.Schema, opts ...Option) (*Table, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	if _, ok := g.tables[s.Name]; ok {
		return nil, fmt.Errorf("%w: `%s`", ErrTableExists, s.Name)
	}

	for _, col := range s.Columns {
		if !col.Type.IsLink() || col.Target == s.Name {
			continue
		}
		if _, ok := g.tables[col.Target]; !ok {
			return nil, fmt.Errorf("%w: `%s` targeted by `%s.%s`", ErrTableNotFound, col.Target, s.Name, col.Name)
		}
	}

	t, err := newTable(g, s, opts...)
	if err != nil {
		return nil, err
	}

	g.tables[s.Name] = t
	slog.Info("table created", "table", s.Name, "columns", len(s.Columns))

	return t, nil
}

func (g *Group) Table(name string) (*Table, error) {
	g.lock.RLock()
	defer g.lock.RUnlock()

	t, ok := g.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: `%s`", ErrTableNotFound, name)
	}
	return t, nil
}

// TableByKey resolves a table from its schema key.
func (g *Group) TableByKey(key schema.TableKey) (*Table, bool) {
	g.lock.RLock()
	defer g.lock.RUnlock()

	for _, t := range g.tables {
		if t.Key() == key {
			return t, true
		}
	}
	return nil, false
}

// Tables returns all tables ordered by name.
func (g *Group) Tables() []*Table {
	g.lock.RLock()
	defer g.lock.RUnlock()

	out := make([]*Table, 0, len(g.tables))
	for _, t := range g.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
