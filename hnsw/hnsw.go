// Package hnsw implements the multi-layer navigable proximity graph used
// for approximate nearest-neighbor search.
//
// The graph follows the classic HNSW construction: a node's top layer is
// drawn once from an exponential distribution at insertion and never
// changes; every participating layer carries a bounded, mutually-consistent
// edge list maintained by diversity-aware pruning. Deletion is a tombstone
// flag only; topology is preserved for navigability and physical removal is
// an external compaction concern.
//
// Concurrency: single writer, unbounded concurrent readers. Mutations take
// the write lock for their full duration, so a search always observes a
// fully-pruned, consistent adjacency as of its start.
package hnsw

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/hupe1980/vexo/distance"
	"github.com/hupe1980/vexo/internal/searcher"
	"github.com/hupe1980/vexo/model"
)

const (
	// layerNormalizationBase is the base constant for the exponential layer
	// probability distribution.
	layerNormalizationBase = 1.0

	// mmax0Multiplier is the multiplier for maximum connections at layer 0.
	mmax0Multiplier = 2

	// minimumM is the minimum valid value for M.
	minimumM = 2

	// DefaultM is the default number of bidirectional links per layer.
	DefaultM = 16

	// DefaultEF is the default frontier width for construction and search.
	DefaultEF = 200
)

// Options configures an Index.
type Options struct {
	// Dimension is the fixed dense-vector dimension, validated on insert.
	Dimension int

	// M is the degree cap per layer (layer 0 allows 2*M).
	M int

	// EF is the construction-time frontier width, and the default search
	// width when a query does not override it.
	EF int

	// Heuristic enables diversity-aware neighbor selection. Without it the
	// M nearest candidates are kept, which clusters directionally.
	Heuristic bool

	// Metric is fixed per index and applied uniformly.
	Metric distance.Metric

	// RandomSeed pins the layer generator for reproducible topology.
	// Nil seeds from the clock.
	RandomSeed *int64

	// InitialCapacity pre-sizes the node arena.
	InitialCapacity int
}

// DefaultOptions contains the default options for an Index.
var DefaultOptions = Options{
	M:               DefaultM,
	EF:              DefaultEF,
	Heuristic:       true,
	Metric:          distance.MetricL2,
	InitialCapacity: 1024,
}

// SearchOptions controls a single search call.
type SearchOptions struct {
	// EF is the frontier width; values below k are raised to k.
	EF int

	// Filter restricts results to matching handles. Filtered-out nodes are
	// traversed through but never returned, so recall under high selectivity
	// degrades gracefully instead of stranding the search.
	Filter Filter
}

// Filter restricts a search to matching handles.
type Filter interface {
	Matches(h model.Handle) bool
}

// Result is a single search hit.
type Result struct {
	ID       model.ID
	Handle   model.Handle
	Distance float32
}

// Index is the hierarchical navigable small world graph.
type Index struct {
	opts     Options
	distFunc distance.Func

	maxConnsPerLayer int
	maxConnsLayer0   int
	layerMultiplier  float64
	seed             int64

	mu         sync.RWMutex
	nodes      []*node // arena: handle -> slot, never shrinks
	byID       map[model.ID]model.Handle
	entryPoint model.Handle
	maxLevel   int // -1 while empty
	liveCount  int
	tombstones int
	rng        *rand.Rand
}

// New creates a new Index.
func New(optFns ...func(o *Options)) (*Index, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Dimension <= 0 {
		return nil, &ErrInvalidDimension{Dimension: opts.Dimension}
	}
	if opts.M < minimumM {
		opts.M = minimumM
	}
	if opts.EF <= 0 {
		opts.EF = DefaultEF
	}
	if opts.InitialCapacity <= 0 {
		opts.InitialCapacity = DefaultOptions.InitialCapacity
	}

	distFunc, err := distance.Provider(opts.Metric)
	if err != nil {
		return nil, err
	}

	var seed int64
	if opts.RandomSeed != nil {
		seed = *opts.RandomSeed
	} else {
		seed = time.Now().UnixNano()
	}

	return &Index{
		opts:             opts,
		distFunc:         distFunc,
		maxConnsPerLayer: opts.M,
		maxConnsLayer0:   mmax0Multiplier * opts.M,
		layerMultiplier:  layerNormalizationBase / math.Log(float64(opts.M)),
		seed:             seed,
		nodes:            make([]*node, 0, opts.InitialCapacity),
		byID:             make(map[model.ID]model.Handle, opts.InitialCapacity),
		maxLevel:         -1,
		rng:              rand.New(rand.NewSource(seed)),
	}, nil
}

// Dimension returns the fixed vector dimension of the index.
func (h *Index) Dimension() int { return h.opts.Dimension }

// Metric returns the distance metric of the index.
func (h *Index) Metric() distance.Metric { return h.opts.Metric }

// Len returns the number of live (non-tombstoned) nodes.
func (h *Index) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.liveCount
}

// TombstoneRatio returns tombstoned/(live+tombstoned). A rising ratio is the
// signal consumed by the external compaction trigger.
func (h *Index) TombstoneRatio() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := h.liveCount + h.tombstones
	if total == 0 {
		return 0
	}
	return float64(h.tombstones) / float64(total)
}

// Contains reports whether an active node exists for id.
func (h *Index) Contains(id model.ID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	hnd, ok := h.byID[id]
	return ok && !h.nodes[hnd].deleted
}

// HandleOf returns the current handle for id.
func (h *Index) HandleOf(id model.ID) (model.Handle, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	hnd, ok := h.byID[id]
	if !ok || h.nodes[hnd].deleted {
		return 0, false
	}
	return hnd, true
}

// IDOf returns the identifier for a handle, false for empty or out-of-range
// slots. Tombstoned handles still resolve; liveness is a separate concern.
func (h *Index) IDOf(hnd model.Handle) (model.ID, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if int(hnd) >= len(h.nodes) || h.nodes[hnd] == nil {
		return "", false
	}
	return h.nodes[hnd].id, true
}

// VectorOf returns a copy of the stored vector for a handle.
func (h *Index) VectorOf(hnd model.Handle) ([]float32, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if int(hnd) >= len(h.nodes) || h.nodes[hnd] == nil {
		return nil, false
	}
	out := make([]float32, len(h.nodes[hnd].vector))
	copy(out, h.nodes[hnd].vector)
	return out, true
}

// Neighbors returns the layer-level edge targets of a handle. Exposed for
// connectivity checks and compaction; the slice is a copy.
func (h *Index) Neighbors(hnd model.Handle, level int) []model.Handle {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if int(hnd) >= len(h.nodes) || h.nodes[hnd] == nil {
		return nil
	}
	n := h.nodes[hnd]
	if level > n.level {
		return nil
	}
	out := make([]model.Handle, len(n.conns[level]))
	for i, c := range n.conns[level] {
		out[i] = c.Handle
	}
	return out
}

// EntryPoint returns the current entry point handle, false if the graph is
// empty.
func (h *Index) EntryPoint() (model.Handle, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.maxLevel < 0 {
		return 0, false
	}
	return h.entryPoint, true
}

// Level returns the top layer of a handle, -1 if unknown.
func (h *Index) Level(hnd model.Handle) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if int(hnd) >= len(h.nodes) || h.nodes[hnd] == nil {
		return -1
	}
	return h.nodes[hnd].level
}

// prepareVector validates and (for cosine) normalizes a vector.
func (h *Index) prepareVector(v []float32) ([]float32, error) {
	if len(v) == 0 {
		return nil, ErrEmptyVector
	}
	if len(v) != h.opts.Dimension {
		return nil, &ErrDimensionMismatch{Expected: h.opts.Dimension, Actual: len(v)}
	}

	if distance.NeedsNormalization(h.opts.Metric) {
		vec, ok := distance.NormalizeL2Copy(v)
		if !ok {
			return nil, ErrEmptyVector
		}
		return vec, nil
	}

	vec := make([]float32, len(v))
	copy(vec, v)
	return vec, nil
}

// ValidateVector checks a vector against the index configuration without
// modifying the graph.
func (h *Index) ValidateVector(v []float32) error {
	_, err := h.prepareVector(v)
	return err
}

// determineLayer draws a top layer from the exponential distribution.
// Caller holds the write lock (the rng is not goroutine-safe).
func (h *Index) determineLayer() int {
	r := h.rng.Float64()
	if r == 0 {
		r = math.SmallestNonzeroFloat64
	}
	return int(math.Floor(-math.Log(r) * h.layerMultiplier))
}

// Insert adds a vector under id and links it into the graph.
//
// An active duplicate id is rejected; a tombstoned id gets a fresh node
// under a new handle (the tombstone keeps its slot until compaction).
func (h *Index) Insert(ctx context.Context, id model.ID, v []float32) (model.Handle, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	vec, err := h.prepareVector(v)
	if err != nil {
		return 0, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.byID[id]; ok && !h.nodes[prev].deleted {
		return 0, &ErrDuplicateID{ID: id}
	}

	level := h.determineLayer()
	hnd := model.Handle(len(h.nodes))
	n := newNode(id, vec, level, h.maxConnsPerLayer, h.maxConnsLayer0)
	h.nodes = append(h.nodes, n)
	h.byID[id] = hnd
	h.liveCount++

	// First node becomes the entry point.
	if h.maxLevel < 0 {
		h.entryPoint = hnd
		h.maxLevel = level
		return hnd, nil
	}

	if err := h.link(ctx, hnd, n); err != nil {
		// A canceled link leaves the node half-connected. Tombstone it so
		// any back-edges added so far stay valid, the node never surfaces,
		// and the id is free for a retry.
		n.deleted = true
		h.liveCount--
		h.tombstones++
		return 0, err
	}

	if level > h.maxLevel {
		h.maxLevel = level
		h.entryPoint = hnd
	}

	return hnd, nil
}

// link connects a freshly allocated node into every layer it participates
// in. Caller holds the write lock.
func (h *Index) link(ctx context.Context, hnd model.Handle, n *node) error {
	s := searcher.Get()
	defer searcher.Put(s)

	currID := h.entryPoint
	currDist := h.distFunc(n.vector, h.nodes[currID].vector)

	// Greedy descent from the top layer down to level+1, carrying the single
	// nearest node as the next layer's seed.
	for level := h.maxLevel; level > n.level; level-- {
		currID, currDist = h.greedyStep(currID, currDist, level, n.vector)
	}

	// From the node's top layer down to 0: best-first search bounded by EF,
	// connect symmetrically, prune overfull neighbors.
	for level := min(n.level, h.maxLevel); level >= 0; level-- {
		if err := ctx.Err(); err != nil {
			return err
		}

		h.searchLayer(s, n.vector, currID, currDist, level, h.opts.EF, nil, nil)

		if best, ok := s.Results.MinItem(); ok {
			currID = best.Node
			currDist = best.Distance
		}

		maxConns := h.maxConnsPerLayer
		if level == 0 {
			maxConns = h.maxConnsLayer0
		}

		neighbors := h.selectNeighbors(s, maxConns)

		conns := n.conns[level][:0]
		for _, nb := range neighbors {
			conns = append(conns, Neighbor{Handle: nb.Node, Dist: nb.Distance})
		}
		n.conns[level] = conns

		for _, nb := range neighbors {
			h.addConnection(nb.Node, hnd, level, nb.Distance)
		}
	}

	return nil
}

// greedyStep walks one layer greedily until no neighbor improves.
func (h *Index) greedyStep(currID model.Handle, currDist float32, level int, q []float32) (model.Handle, float32) {
	changed := true
	for changed {
		changed = false
		curr := h.nodes[currID]
		if level > curr.level {
			break
		}
		for _, next := range curr.conns[level] {
			nextDist := h.distFunc(q, h.nodes[next.Handle].vector)
			if nextDist < currDist {
				currID = next.Handle
				currDist = nextDist
				changed = true
			}
		}
	}
	return currID, currDist
}

// addConnection adds the back-edge target->source and prunes the target's
// edge list if the degree cap is exceeded. Runs under the write lock, so a
// concurrent search never observes a half-pruned list.
func (h *Index) addConnection(sourceHnd, targetHnd model.Handle, level int, dist float32) {
	src := h.nodes[sourceHnd]
	if level > src.level {
		return
	}

	for _, c := range src.conns[level] {
		if c.Handle == targetHnd {
			return
		}
	}

	maxConns := h.maxConnsPerLayer
	if level == 0 {
		maxConns = h.maxConnsLayer0
	}

	if len(src.conns[level]) < maxConns {
		src.conns[level] = append(src.conns[level], Neighbor{Handle: targetHnd, Dist: dist})
		return
	}

	// Overfull: re-select the best maxConns from existing edges plus the new
	// one, using cached distances.
	candidates := make([]searcher.Item, 0, len(src.conns[level])+1)
	for _, c := range src.conns[level] {
		candidates = append(candidates, searcher.Item{Node: c.Handle, Distance: c.Dist})
	}
	candidates = append(candidates, searcher.Item{Node: targetHnd, Distance: dist})
	sortItemsByDistance(candidates)

	var kept []searcher.Item
	if h.opts.Heuristic {
		kept = h.applyHeuristic(candidates, maxConns)
		if len(kept) < maxConns {
			kept = fillUpNeighbors(kept, candidates, maxConns)
		}
	} else {
		kept = candidates[:maxConns]
	}

	conns := src.conns[level][:0]
	for _, it := range kept {
		conns = append(conns, Neighbor{Handle: it.Node, Dist: it.Distance})
	}
	src.conns[level] = conns
}

// selectNeighbors drains the search result heap into an ascending candidate
// list and picks up to m neighbors.
func (h *Index) selectNeighbors(s *searcher.Searcher, m int) []searcher.Item {
	temp := s.ScratchItems[:0]
	for s.Results.Len() > 0 {
		item, _ := s.Results.PopItem()
		temp = append(temp, item)
	}
	// Results is a max-heap, so popping yields worst-to-best; reverse.
	for i, j := 0, len(temp)-1; i < j; i, j = i+1, j-1 {
		temp[i], temp[j] = temp[j], temp[i]
	}
	s.ScratchItems = temp

	if !h.opts.Heuristic || len(temp) <= m {
		if len(temp) > m {
			temp = temp[:m]
		}
		return temp
	}

	result := h.applyHeuristic(temp, m)
	if len(result) < m {
		result = fillUpNeighbors(result, temp, m)
	}
	return result
}

// applyHeuristic keeps a candidate only if it is closer to the source than
// to every already-kept neighbor (relative neighborhood graph property),
// which avoids directional clustering. Candidate distances are relative to
// the common source, so no source vector is needed here.
func (h *Index) applyHeuristic(candidates []searcher.Item, m int) []searcher.Item {
	result := make([]searcher.Item, 0, m)
	for _, cand := range candidates {
		if len(result) >= m {
			break
		}
		candVec := h.nodes[cand.Node].vector

		good := true
		for _, kept := range result {
			if h.distFunc(candVec, h.nodes[kept.Node].vector) < cand.Distance {
				good = false
				break
			}
		}
		if good {
			result = append(result, cand)
		}
	}
	return result
}

func fillUpNeighbors(result, candidates []searcher.Item, m int) []searcher.Item {
	for _, cand := range candidates {
		if len(result) >= m {
			break
		}
		found := false
		for _, r := range result {
			if r.Node == cand.Node {
				found = true
				break
			}
		}
		if !found {
			result = append(result, cand)
		}
	}
	return result
}

func sortItemsByDistance(items []searcher.Item) {
	// Insertion sort: lists are bounded by maxConns+1.
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j].Distance < items[j-1].Distance; j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

// Delete marks the node for id as tombstoned. O(1); edges stay untouched to
// avoid costly repair. Physical removal is the compaction trigger's job.
func (h *Index) Delete(ctx context.Context, id model.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	hnd, ok := h.byID[id]
	if !ok || h.nodes[hnd].deleted {
		return &ErrNodeNotFound{ID: id}
	}

	h.nodes[hnd].deleted = true
	h.liveCount--
	h.tombstones++

	// A tombstoned entry point still navigates; it is only excluded from
	// results. No entry point repair needed.
	return nil
}
