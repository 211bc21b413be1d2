// This file implements the fluent query API for hybrid searches.
package vexo

import (
	"context"
	"time"

	"github.com/hupe1980/vexo/engine"
	"github.com/hupe1980/vexo/fusion"
	"github.com/hupe1980/vexo/metadata"
	"github.com/hupe1980/vexo/model"
)

// Query creates a new fluent query builder for the given dense vector.
// Pass nil to run a lexical-only or sparse-only query.
//
// Example:
//
//	results, err := vx.Query(vec).
//	    Text("cheap red wine", "title^3", "body").
//	    KNN(10).
//	    Alpha(0.6).
//	    Autocut(1).
//	    Execute(ctx)
func (v *Vexo) Query(vector []float32) *QueryBuilder {
	return &QueryBuilder{
		v:   v,
		cfg: fusion.DefaultConfig(),
		q: engine.Query{
			Vector: vector,
			K:      10, // Default k
		},
	}
}

// QueryBuilder is a fluent builder for constructing hybrid queries.
type QueryBuilder struct {
	v   *Vexo
	q   engine.Query
	cfg fusion.Config
}

// Text sets the lexical query text, optionally restricted to fields with
// "field^boost" syntax. A malformed boost degrades to 1.0.
func (qb *QueryBuilder) Text(text string, fields ...string) *QueryBuilder {
	qb.q.Text = text
	qb.q.Fields = fields
	return qb
}

// Sparse sets a sparse query vector, scored by dot product against stored
// sparse vectors. Takes the sparse side over Text when both are set.
func (qb *QueryBuilder) Sparse(sv model.SparseVector) *QueryBuilder {
	qb.q.Sparse = &sv
	return qb
}

// KNN sets the number of results to return.
func (qb *QueryBuilder) KNN(k int) *QueryBuilder {
	qb.q.K = k
	return qb
}

// EF sets the dense frontier width. Higher values improve recall but slow
// down search. Must be >= k.
func (qb *QueryBuilder) EF(ef int) *QueryBuilder {
	qb.q.EF = ef
	return qb
}

// Alpha sets the dense-side weight in [0,1] for the weighted strategies.
func (qb *QueryBuilder) Alpha(alpha float64) *QueryBuilder {
	qb.cfg.Alpha = alpha
	return qb
}

// Strategy selects the fusion strategy.
func (qb *QueryBuilder) Strategy(s fusion.Strategy) *QueryBuilder {
	qb.cfg.Strategy = s
	return qb
}

// Normalization selects the per-side score normalization.
func (qb *QueryBuilder) Normalization(n fusion.Normalization) *QueryBuilder {
	qb.cfg.Normalization = n
	return qb
}

// BM25 overrides the lexical scoring parameters for this query. Zero values
// are honored, not treated as "use the default".
func (qb *QueryBuilder) BM25(k1, b float64) *QueryBuilder {
	qb.q.K1 = &k1
	qb.q.B = &b
	return qb
}

// Filter restricts results to records the predicate admits. Filtered-out
// records are traversed through during graph search but never returned.
func (qb *QueryBuilder) Filter(pred metadata.Predicate) *QueryBuilder {
	qb.q.Filter = pred
	return qb
}

// FilterOverfetch overrides the fetch multiplier for this filtered query.
func (qb *QueryBuilder) FilterOverfetch(n int) *QueryBuilder {
	qb.q.FilterOverfetch = n
	return qb
}

// Autocut truncates results after the n-th score jump. 0 disables.
func (qb *QueryBuilder) Autocut(n int) *QueryBuilder {
	qb.q.Autocut = n
	return qb
}

// Explain attaches a per-result breakdown of raw scores, normalization,
// and the fusion formula.
func (qb *QueryBuilder) Explain() *QueryBuilder {
	qb.q.Explain = true
	return qb
}

// Execute runs the query and returns the fused results.
func (qb *QueryBuilder) Execute(ctx context.Context) ([]model.FusedResult, error) {
	qb.q.Fusion = &qb.cfg

	start := time.Now()
	results, err := qb.v.engine.Search(ctx, qb.q)
	err = translateError(err)
	qb.v.metrics.RecordQuery(qb.q.K, time.Since(start), err)
	return results, err
}

// MustExecute runs the query, panicking on error.
// Use this only in tests or when you're certain the query is valid.
func (qb *QueryBuilder) MustExecute(ctx context.Context) []model.FusedResult {
	results, err := qb.Execute(ctx)
	if err != nil {
		panic(err)
	}
	return results
}

// First returns only the top result, or ErrNotFound if there is none.
func (qb *QueryBuilder) First(ctx context.Context) (model.FusedResult, error) {
	qb.q.K = 1
	results, err := qb.Execute(ctx)
	if err != nil {
		return model.FusedResult{}, err
	}
	if len(results) == 0 {
		return model.FusedResult{}, ErrNotFound
	}
	return results[0], nil
}

// Count executes the query and returns the number of results.
func (qb *QueryBuilder) Count(ctx context.Context) (int, error) {
	results, err := qb.Execute(ctx)
	if err != nil {
		return 0, err
	}
	return len(results), nil
}

// Exists checks if at least one record matches the query.
func (qb *QueryBuilder) Exists(ctx context.Context) (bool, error) {
	qb.q.K = 1
	results, err := qb.Execute(ctx)
	if err != nil {
		return false, err
	}
	return len(results) > 0, nil
}
