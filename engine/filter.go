package engine

import (
	"github.com/hupe1980/vexo/hnsw"
	"github.com/hupe1980/vexo/metadata"
)

// compileFilter evaluates the predicate over every live record once and
// collects matching graph handles into a bitmap, so the search hot loop
// pays a bitmap probe instead of a predicate call per visited node.
func (e *Engine) compileFilter(graph *hnsw.Index, pred metadata.Predicate) *metadata.Bitmap {
	bm := metadata.NewBitmap()
	for id, doc := range e.docs.ToMap() {
		if !pred(id, doc.Fields) {
			continue
		}
		if hnd, ok := graph.HandleOf(id); ok {
			bm.Add(hnd)
		}
	}
	return bm
}
