package hnsw

import (
	"context"
	"fmt"

	"github.com/hupe1980/vexo/distance"
	"github.com/hupe1980/vexo/model"
)

// Export captures the full graph as a Snapshot. The snapshot is a deep copy
// and stays valid after further mutations.
func (h *Index) Export() *Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	snap := &Snapshot{
		Metric:    h.opts.Metric.String(),
		Dimension: h.opts.Dimension,
		M:         h.opts.M,
		EF:        h.opts.EF,
		Seed:      h.seed,
		EntryHnd:  uint32(h.entryPoint),
		MaxLevel:  h.maxLevel,
		Count:     h.liveCount,
		Nodes:     make([]SnapshotNode, len(h.nodes)),
	}

	for i, n := range h.nodes {
		if n == nil {
			continue
		}
		sn := SnapshotNode{
			ID:      n.id,
			Level:   n.level,
			Deleted: n.deleted,
			Vector:  append([]float32(nil), n.vector...),
			Conns:   make([][]SnapEdge, len(n.conns)),
		}
		for l, conns := range n.conns {
			edges := make([]SnapEdge, len(conns))
			for j, c := range conns {
				edges[j] = SnapEdge{To: uint32(c.Handle), Dist: c.Dist}
			}
			sn.Conns[l] = edges
		}
		snap.Nodes[i] = sn
	}

	return snap
}

// Restore rebuilds an Index from a Snapshot, preserving handles, adjacency,
// tombstones and the layer-generator seed.
func Restore(snap *Snapshot) (*Index, error) {
	metric, err := distance.ParseMetric(snap.Metric)
	if err != nil {
		return nil, fmt.Errorf("hnsw restore: %w", err)
	}

	seed := snap.Seed
	h, err := New(func(o *Options) {
		o.Dimension = snap.Dimension
		o.M = snap.M
		o.EF = snap.EF
		o.Metric = metric
		o.RandomSeed = &seed
		o.InitialCapacity = len(snap.Nodes)
	})
	if err != nil {
		return nil, err
	}

	h.nodes = make([]*node, len(snap.Nodes))
	live, tombs := 0, 0
	for i, sn := range snap.Nodes {
		if sn.Vector == nil {
			continue
		}
		n := &node{
			id:      sn.ID,
			vector:  sn.Vector,
			level:   sn.Level,
			deleted: sn.Deleted,
			conns:   make([][]Neighbor, len(sn.Conns)),
		}
		for l, edges := range sn.Conns {
			conns := make([]Neighbor, len(edges))
			for j, e := range edges {
				conns[j] = Neighbor{Handle: model.Handle(e.To), Dist: e.Dist}
			}
			n.conns[l] = conns
		}
		h.nodes[i] = n
		h.byID[sn.ID] = model.Handle(i)
		if sn.Deleted {
			tombs++
		} else {
			live++
		}
	}

	h.entryPoint = model.Handle(snap.EntryHnd)
	h.maxLevel = snap.MaxLevel
	h.liveCount = live
	h.tombstones = tombs

	return h, nil
}

// RebuildCompacted re-inserts every live node into a fresh graph, dropping
// tombstoned slots. This is the physical purge invoked by the external
// compaction trigger; the original index is left untouched.
func (h *Index) RebuildCompacted(ctx context.Context) (*Index, error) {
	type liveNode struct {
		id  model.ID
		vec []float32
	}

	h.mu.RLock()
	lives := make([]liveNode, 0, h.liveCount)
	for _, n := range h.nodes {
		if n == nil || n.deleted {
			continue
		}
		lives = append(lives, liveNode{id: n.id, vec: append([]float32(nil), n.vector...)})
	}
	opts := h.opts
	seed := h.seed
	h.mu.RUnlock()

	fresh, err := New(func(o *Options) {
		*o = opts
		o.RandomSeed = &seed
		o.InitialCapacity = len(lives)
	})
	if err != nil {
		return nil, err
	}

	for _, ln := range lives {
		if _, err := fresh.Insert(ctx, ln.id, ln.vec); err != nil {
			return nil, err
		}
	}
	return fresh, nil
}
