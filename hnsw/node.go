package hnsw

import "github.com/hupe1980/vexo/model"

// Neighbor is one bounded-degree edge: the target handle plus the cached
// distance between the two endpoints at link time.
type Neighbor struct {
	Handle model.Handle
	Dist   float32
}

// node is an arena slot. Handles index into the arena directly; a
// tombstoned node keeps its vector and edges so the graph stays navigable
// until external compaction rebuilds it.
type node struct {
	id     model.ID
	vector []float32
	level  int
	// conns[l] holds the layer-l edge list, capped at maxConns (maxConns0
	// for layer 0) by diversity-aware pruning.
	conns   [][]Neighbor
	deleted bool
}

func newNode(id model.ID, vector []float32, level, maxConns, maxConns0 int) *node {
	conns := make([][]Neighbor, level+1)
	for l := range conns {
		capacity := maxConns
		if l == 0 {
			capacity = maxConns0
		}
		conns[l] = make([]Neighbor, 0, capacity)
	}
	return &node{
		id:     id,
		vector: vector,
		level:  level,
		conns:  conns,
	}
}

// Snapshot is a serializable image of the whole graph, used by the
// persistence layer. Field layout is part of the snapshot format.
type Snapshot struct {
	Metric    string           `json:"metric"`
	Dimension int              `json:"dimension"`
	M         int              `json:"m"`
	EF        int              `json:"ef"`
	Seed      int64            `json:"seed"`
	EntryHnd  uint32           `json:"entry"`
	MaxLevel  int              `json:"max_level"`
	Count     int              `json:"count"`
	Nodes     []SnapshotNode   `json:"nodes"`
}

// SnapshotNode is one arena slot in a Snapshot. A nil Vector marks an empty
// slot (never allocated); Deleted marks a tombstone.
type SnapshotNode struct {
	ID      model.ID     `json:"id"`
	Vector  []float32    `json:"vector,omitempty"`
	Level   int          `json:"level"`
	Deleted bool         `json:"deleted,omitempty"`
	Conns   [][]SnapEdge `json:"conns,omitempty"`
}

// SnapEdge is a single serialized edge.
type SnapEdge struct {
	To   uint32  `json:"to"`
	Dist float32 `json:"dist"`
}
