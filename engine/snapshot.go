package engine

import (
	"context"

	"github.com/hupe1980/vexo/hnsw"
	"github.com/hupe1980/vexo/model"
	"github.com/hupe1980/vexo/persistence"
)

// Snapshot is a consistent, point-in-time copy of the whole engine state.
// The lexical index is not serialized; it is rebuilt from the documents on
// restore, which keeps the format independent of posting-list layout.
type Snapshot struct {
	Graph *hnsw.Snapshot        `json:"graph"`
	Docs  map[model.ID]Document `json:"docs"`
}

// Snapshot captures the engine state. Taken under the write lock so the
// graph and the record store are mutually consistent.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return &Snapshot{
		Graph: e.graph.Export(),
		Docs:  e.docs.ToMap(),
	}
}

// SaveSnapshot writes the engine state through the persistence manager.
func (e *Engine) SaveSnapshot(ctx context.Context, mgr *persistence.Manager, name string) error {
	snap := e.Snapshot()
	if err := mgr.Save(ctx, name, snap); err != nil {
		e.logger.ErrorContext(ctx, "snapshot failed", "name", name, "error", err)
		return err
	}
	e.logger.InfoContext(ctx, "snapshot saved", "name", name, "records", len(snap.Docs))
	return nil
}

// Restore builds an engine from a snapshot. Graph parameters come from the
// snapshot itself; optFns configure everything else (tokenizer, limits,
// logging). The lexical index is rebuilt from the restored documents.
func Restore(snap *Snapshot, optFns ...func(o *Options)) (*Engine, error) {
	opts := Options{
		FilterOverfetch:     DefaultFilterOverfetch,
		CompactionThreshold: DefaultCompactionThreshold,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	graph, err := hnsw.Restore(snap.Graph)
	if err != nil {
		return nil, err
	}

	e := newWithGraph(graph, opts)
	for id, doc := range snap.Docs {
		if len(doc.Fields) > 0 {
			if err := e.lex.Add(id, doc.Fields); err != nil {
				return nil, err
			}
		}
		_ = e.docs.Set(id, doc)
	}
	return e, nil
}

// LoadSnapshot reads a snapshot through the persistence manager and
// restores an engine from it.
func LoadSnapshot(ctx context.Context, mgr *persistence.Manager, name string, optFns ...func(o *Options)) (*Engine, error) {
	var snap Snapshot
	if err := mgr.Load(ctx, name, &snap); err != nil {
		return nil, err
	}
	return Restore(&snap, optFns...)
}
