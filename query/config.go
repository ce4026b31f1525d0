package query

const (
	// NotFound is returned by every search that has no result.
	NotFound = -1

	findLocals       = 64
	bestDist         = 512
	probeMatches     = 4
	bitwidthTimeUnit = 64
)

// Config tunes the scheduler of a query.
type Config struct {
	// matches collected from the cheapest node before costs are compared again
	FindLocals int
	// widest range a secondary node is probed over
	BestDist int
	// matches a secondary node may report per probe
	ProbeMatches int
}

func DefaultConfig() Config {
	return Config{
		FindLocals:   findLocals,
		BestDist:     bestDist,
		ProbeMatches: probeMatches,
	}
}

type options struct {
	cfg     Config
	workers int
}

type Option func(*options)

func defaultOptions() options {
	return options{
		cfg:     DefaultConfig(),
		workers: 4,
	}
}

// WithConfig replaces the scheduler constants. Zero fields keep their
// defaults.
func WithConfig(c Config) Option {
	return func(o *options) {
		if c.FindLocals > 0 {
			o.cfg.FindLocals = c.FindLocals
		}
		if c.BestDist > 0 {
			o.cfg.BestDist = c.BestDist
		}
		if c.ProbeMatches > 0 {
			o.cfg.ProbeMatches = c.ProbeMatches
		}
	}
}

// WithWorkers sets the goroutine count of ParallelCount.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}
