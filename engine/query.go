package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vexo/distance"
	"github.com/hupe1980/vexo/fusion"
	"github.com/hupe1980/vexo/hnsw"
	"github.com/hupe1980/vexo/lexical"
	"github.com/hupe1980/vexo/lexical/bm25"
	"github.com/hupe1980/vexo/metadata"
	"github.com/hupe1980/vexo/model"
	"github.com/hupe1980/vexo/rank"
)

// Query is one hybrid retrieval request. At least one of Vector, Sparse, or
// Text must be set; fusion activates only the legs present.
type Query struct {
	// Vector is the dense query vector.
	Vector []float32

	// Sparse scores stored sparse vectors by dot product. When set it takes
	// the sparse side; Text is ignored.
	Sparse *model.SparseVector

	// Text is the lexical (BM25) query.
	Text string

	// Fields restricts and boosts the lexical fields, "field^boost" syntax.
	// Empty means all indexed fields at boost 1.0.
	Fields []string

	// K1 and B override the BM25 parameters for this query; nil selects the
	// defaults, so an explicit zero is a valid setting.
	K1 *float64
	B  *float64

	// K is the number of results. 0 returns an empty result set.
	K int

	// EF overrides the dense frontier width. Must be >= K when set.
	EF int

	// Filter restricts results to records the predicate admits.
	Filter metadata.Predicate

	// FilterOverfetch overrides the engine's fetch multiplier for filtered
	// dense searches.
	FilterOverfetch int

	// Fusion selects the strategy and its parameters. Nil uses the default
	// weighted-sum configuration.
	Fusion *fusion.Config

	// Autocut truncates after the N-th score jump. 0 disables.
	Autocut int

	// Explain attaches a per-result score breakdown.
	Explain bool
}

// Search runs the hybrid pipeline: both retrieval legs in parallel, score
// fusion, top-k truncation, then autocut and optional explanations.
func (e *Engine) Search(ctx context.Context, q Query) ([]model.FusedResult, error) {
	if q.K < 0 {
		return nil, ErrInvalidK
	}
	if q.K == 0 {
		return []model.FusedResult{}, nil
	}
	if len(q.Vector) == 0 && q.Sparse == nil && q.Text == "" {
		return nil, ErrEmptyQuery
	}
	if q.EF != 0 && q.EF < q.K {
		return nil, &ErrInvalidEF{EF: q.EF, K: q.K}
	}

	cfg := fusion.DefaultConfig()
	if q.Fusion != nil {
		cfg = *q.Fusion
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	graph := e.currentGraph()

	var (
		denseScores  map[model.ID]float32
		sparseScores map[model.ID]float32
	)

	g, gctx := errgroup.WithContext(ctx)

	if len(q.Vector) > 0 {
		g.Go(func() error {
			scores, err := e.denseLeg(gctx, graph, q)
			denseScores = scores
			return err
		})
	}

	switch {
	case q.Sparse != nil:
		g.Go(func() error {
			scores, err := e.sparseLeg(gctx, *q.Sparse, q.Filter)
			sparseScores = scores
			return err
		})
	case q.Text != "":
		g.Go(func() error {
			scores, err := e.lexicalLeg(q)
			sparseScores = scores
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	scored, err := fusion.Fuse(
		fusion.Side{Scores: denseScores, LowerIsBetter: true},
		fusion.Side{Scores: sparseScores},
		cfg,
	)
	if err != nil {
		return nil, err
	}

	if len(scored) > q.K {
		scored = scored[:q.K]
	}

	results := rank.Results(scored, cfg, q.Autocut, q.Explain)
	e.logger.DebugContext(ctx, "search completed", "k", q.K, "results", len(results))
	return results, nil
}

// denseLeg searches the proximity graph. With a filter, the fetch size and
// frontier are widened by the overfetch factor so selective filters still
// fill k results.
func (e *Engine) denseLeg(ctx context.Context, graph *hnsw.Index, q Query) (map[model.ID]float32, error) {
	fetchK := q.K
	ef := q.EF

	var filter hnsw.Filter
	if q.Filter != nil {
		overfetch := q.FilterOverfetch
		if overfetch <= 0 {
			overfetch = e.opts.FilterOverfetch
		}
		fetchK = q.K * overfetch
		if ef > 0 {
			ef = ef * overfetch
		}
		filter = e.compileFilter(graph, q.Filter)
	}

	res, err := graph.Search(ctx, q.Vector, fetchK, &hnsw.SearchOptions{EF: ef, Filter: filter})
	if err != nil {
		return nil, err
	}

	scores := make(map[model.ID]float32, len(res))
	for _, r := range res {
		scores[r.ID] = r.Distance
	}
	return scores, nil
}

// sparseLeg scores stored sparse vectors by dot product. This is a linear
// scan over the record store; sparse vectors are an auxiliary signal, not
// an indexed one.
func (e *Engine) sparseLeg(ctx context.Context, query model.SparseVector, pred metadata.Predicate) (map[model.ID]float32, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	scores := make(map[model.ID]float32)
	for id, doc := range e.docs.ToMap() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if doc.Sparse.IsZero() {
			continue
		}
		if pred != nil && !pred(id, doc.Fields) {
			continue
		}
		if s := distance.SparseDot(query, doc.Sparse); s != 0 {
			scores[id] = s
		}
	}
	return scores, nil
}

// lexicalLeg scores the text query with BM25, applying the predicate to the
// scored set afterwards.
func (e *Engine) lexicalLeg(q Query) (map[model.ID]float32, error) {
	scores, err := e.lex.Search(lexical.Query{
		Text:   q.Text,
		Fields: bm25.ParseFieldBoosts(q.Fields),
		K1:     q.K1,
		B:      q.B,
	})
	if err != nil {
		return nil, err
	}

	if q.Filter != nil {
		for id := range scores {
			doc, ok := e.docs.Get(id)
			if !ok || !q.Filter(id, doc.Fields) {
				delete(scores, id)
			}
		}
	}
	return scores, nil
}
