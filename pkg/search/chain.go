package search

import (
	"log/slog"
	"sort"
)

// Options bound a search. Zero values mean no bound.
type Options struct {
	MinScore   float64 `json:"min_score,omitempty"`
	MaxResults int     `json:"max_results,omitempty"`
}

// Chain runs strategies in descending priority. A strategy at or above
// ShortCircuitPriority that finds anything ends the run with only its own
// results; everything else is accumulated and merged.
type Chain struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewChain orders the strategies by priority, highest first. Strategies of
// equal priority keep the order given.
func NewChain(logger *slog.Logger, strategies ...Strategy) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	sorted := append([]Strategy(nil), strategies...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	return &Chain{strategies: sorted, logger: logger}
}

// Run executes the chain over the snapshot.
func (c *Chain) Run(snap *Snapshot, raw, normalized string, opts Options) []Result {
	var acc []Result
	for _, s := range c.strategies {
		found := s.FindMatches(snap, raw, normalized)
		c.logger.Debug("strategy executed", "kind", s.Kind(), "query", raw, "results", len(found))

		if s.Priority() >= ShortCircuitPriority && len(found) > 0 {
			return merge(found, opts)
		}
		acc = append(acc, found...)
	}
	return merge(acc, opts)
}

// Info describes one strategy of the chain.
type Info struct {
	Kind     Kind `json:"kind"`
	Priority int  `json:"priority"`
}

// Strategies lists the chain in execution order.
func (c *Chain) Strategies() []Info {
	out := make([]Info, len(c.strategies))
	for i, s := range c.strategies {
		out[i] = Info{Kind: s.Kind(), Priority: s.Priority()}
	}
	return out
}

// merge keeps the best result per entry id, drops those under the minimum
// score, orders by score then name, and truncates.
func merge(results []Result, opts Options) []Result {
	best := make(map[string]int, len(results))
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if i, ok := best[r.Entry.ID]; ok {
			if r.Score > out[i].Score {
				out[i] = r
			}
			continue
		}
		best[r.Entry.ID] = len(out)
		out = append(out, r)
	}

	if opts.MinScore > 0 {
		kept := out[:0]
		for _, r := range out {
			if r.Score >= opts.MinScore {
				kept = append(kept, r)
			}
		}
		out = kept
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Entry.Name < out[j].Entry.Name
	})

	if opts.MaxResults > 0 && len(out) > opts.MaxResults {
		out = out[:opts.MaxResults]
	}
	return out
}
