package query

import (
	"context"
	"log/slog"

	"github.com/dot5enko/colquery/storage"
)

// scheduler drives the gathered conditions of a query over page ranges.
// The cheapest condition leads, the others are probed over short ranges
// so their costs stay current.
type scheduler struct {
	nodes []Node
	stats []Stats
	cfg   Config
}

func newScheduler(nodes []Node, cfg Config) *scheduler {
	s := &scheduler{
		nodes: nodes,
		stats: make([]Stats, len(nodes)),
		cfg:   cfg,
	}
	for i := range s.stats {
		s.stats[i].reset()
	}
	return s
}

// best returns the node of least cost, the first one on ties.
func (s *scheduler) best() int {
	best := 0
	score := Cost(s.nodes[0], &s.stats[0])
	for i := 1; i < len(s.nodes); i++ {
		if c := Cost(s.nodes[i], &s.stats[i]); c < score {
			score, best = c, i
		}
	}
	return best
}

// run feeds the matches in [start, end) of the bound page to st. It
// returns false once the state asked to stop.
func (s *scheduler) run(st State, start, end int, source storage.Accessor) bool {
	for start < end {
		best := s.best()

		start = aggregateLocal(s.nodes[best], st, &s.stats[best], start, end, s.cfg.FindLocals, source)
		if start == NotFound {
			return false
		}

		for i, n := range s.nodes {
			if i == best || start >= end {
				continue
			}
			if n.Overhead() >= Cost(n, &s.stats[i]) {
				continue
			}

			td := end
			if n.Overhead() != 0 {
				td = min(start+s.cfg.BestDist, end)
			}

			start = aggregateLocal(n, st, &s.stats[i], start, td, s.cfg.ProbeMatches, source)
			if start == NotFound {
				return false
			}
		}
	}
	return true
}

func (s *scheduler) logCosts(page int) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	costs := make([]float64, len(s.nodes))
	for i, n := range s.nodes {
		costs[i] = Cost(n, &s.stats[i])
	}
	slog.Debug("node costs", "page", page, "costs", costs)
}
