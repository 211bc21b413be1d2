package hnsw

import (
	"context"

	"github.com/hupe1980/vexo/internal/searcher"
	"github.com/hupe1980/vexo/model"
)

// Search returns the k nearest live nodes to q, ordered ascending by
// distance. An empty graph or k <= 0 yields an empty slice, not an error.
//
// The frontier width ef trades latency for recall monotonically; values
// below k are raised to k. Cancellation is checked between frontier
// expansion steps.
func (h *Index) Search(ctx context.Context, q []float32, k int, opts *SearchOptions) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	if len(q) != h.opts.Dimension {
		return nil, &ErrDimensionMismatch{Expected: h.opts.Dimension, Actual: len(q)}
	}

	query, err := h.prepareVector(q)
	if err != nil {
		return nil, err
	}

	ef := h.opts.EF
	var filter Filter
	if opts != nil {
		if opts.EF > 0 {
			ef = opts.EF
		}
		filter = opts.Filter
	}
	if ef < k {
		ef = k
	}

	s := searcher.Get()
	defer searcher.Put(s)

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.maxLevel < 0 {
		return nil, nil
	}

	// Greedy descent to layer 1, keeping the single nearest as the seed.
	currID := h.entryPoint
	currDist := h.distFunc(query, h.nodes[currID].vector)
	for level := h.maxLevel; level > 0; level-- {
		currID, currDist = h.greedyStep(currID, currDist, level, query)
	}

	cancel := func() error { return ctx.Err() }
	if err := h.searchLayer(s, query, currID, currDist, 0, ef, filter, cancel); err != nil {
		return nil, err
	}

	return h.extractResults(s, k), nil
}

// searchLayer runs the bounded best-first expansion at one layer.
//
// Filtered-out and tombstoned nodes stay in the exploration frontier — the
// graph is traversed through them — but never enter the result heap. This
// is the active filter policy: recall under highly selective filters decays
// with the effective frontier rather than cutting navigation paths.
//
// Caller holds at least the read lock.
func (h *Index) searchLayer(s *searcher.Searcher, q []float32, epID model.Handle, epDist float32, level, ef int, filter Filter, cancel func() error) error {
	s.Visited.Reset()
	s.Frontier.Reset()
	s.Results.Reset()

	s.Visited.Visit(epID)
	s.Frontier.PushItem(searcher.Item{Node: epID, Distance: epDist})
	if h.admissible(epID, filter) {
		s.Results.PushItem(searcher.Item{Node: epID, Distance: epDist})
	}

	for s.Frontier.Len() > 0 {
		if cancel != nil {
			if err := cancel(); err != nil {
				return err
			}
		}

		curr, _ := s.Frontier.PopItem()

		if s.Results.Len() >= ef {
			worst, _ := s.Results.TopItem()
			if curr.Distance > worst.Distance {
				break
			}
		}

		currNode := h.nodes[curr.Node]
		if level > currNode.level {
			continue
		}
		for _, next := range currNode.conns[level] {
			if s.Visited.Visited(next.Handle) {
				continue
			}
			s.Visited.Visit(next.Handle)

			nextDist := h.distFunc(q, h.nodes[next.Handle].vector)

			// Classic HNSW pruning: skip obviously-bad candidates once the
			// result heap is full.
			if s.Results.Len() >= ef {
				worst, _ := s.Results.TopItem()
				if nextDist > worst.Distance {
					continue
				}
			}

			s.Frontier.PushItem(searcher.Item{Node: next.Handle, Distance: nextDist})
			if h.admissible(next.Handle, filter) {
				s.Results.PushItemBounded(searcher.Item{Node: next.Handle, Distance: nextDist}, ef)
			}
		}
	}

	return nil
}

// admissible reports whether a handle may enter the result set.
func (h *Index) admissible(hnd model.Handle, filter Filter) bool {
	if h.nodes[hnd].deleted {
		return false
	}
	return filter == nil || filter.Matches(hnd)
}

// extractResults pops the result heap down to k and returns hits ascending
// by distance. Caller holds at least the read lock.
func (h *Index) extractResults(s *searcher.Searcher, k int) []Result {
	for s.Results.Len() > k {
		_, _ = s.Results.PopItem()
	}

	out := make([]Result, s.Results.Len())
	for i := len(out) - 1; i >= 0; i-- {
		item, _ := s.Results.PopItem()
		out[i] = Result{
			ID:       h.nodes[item.Node].id,
			Handle:   item.Node,
			Distance: item.Distance,
		}
	}
	return out
}

// BruteSearch scans every live node. Used for very selective filters where
// graph traversal is wasteful and as a recall baseline in tests.
func (h *Index) BruteSearch(ctx context.Context, q []float32, k int, filter Filter) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	query, err := h.prepareVector(q)
	if err != nil {
		return nil, err
	}

	pq := searcher.NewPriorityQueue(true)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for hnd, n := range h.nodes {
		if n == nil || n.deleted {
			continue
		}
		if filter != nil && !filter.Matches(model.Handle(hnd)) {
			continue
		}
		d := h.distFunc(query, n.vector)
		pq.PushItemBounded(searcher.Item{Node: model.Handle(hnd), Distance: d}, k)
	}

	out := make([]Result, pq.Len())
	for i := len(out) - 1; i >= 0; i-- {
		item, _ := pq.PopItem()
		out[i] = Result{
			ID:       h.nodes[item.Node].id,
			Handle:   item.Node,
			Distance: item.Distance,
		}
	}
	return out, nil
}
