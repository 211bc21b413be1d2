// Package engine orchestrates the hybrid retrieval pipeline: the dense
// proximity graph, the lexical BM25 index, and the record store, kept
// mutually consistent under a single-writer discipline.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/hupe1980/vexo/hnsw"
	"github.com/hupe1980/vexo/lexical"
	"github.com/hupe1980/vexo/lexical/bm25"
	"github.com/hupe1980/vexo/model"
	"github.com/hupe1980/vexo/resource"
)

const (
	// DefaultFilterOverfetch multiplies the fetch size for filtered dense
	// searches so selective filters still fill k results.
	DefaultFilterOverfetch = 4

	// DefaultCompactionThreshold is the tombstone ratio above which
	// CompactionNeeded reports true.
	DefaultCompactionThreshold = 0.2
)

// Document is the non-graph half of a record: its text fields and optional
// sparse vector. The dense vector lives in the graph arena.
type Document struct {
	Fields map[string]string  `json:"fields,omitempty"`
	Sparse model.SparseVector `json:"sparse,omitempty"`
}

// Options configures an Engine.
type Options struct {
	// Graph configures the dense proximity graph.
	Graph hnsw.Options

	// Tokenizer is used by the lexical index. Nil selects the simple
	// lowercasing tokenizer.
	Tokenizer lexical.Tokenizer

	// FilterOverfetch multiplies k and ef on filtered dense searches.
	FilterOverfetch int

	// CompactionThreshold is the tombstone ratio that marks the graph as
	// worth rebuilding.
	CompactionThreshold float64

	// Resource bounds background work (compaction, snapshot IO). Nil
	// disables all limits.
	Resource *resource.Controller

	// Logger receives structured operation logs. Nil discards them.
	Logger *slog.Logger
}

// Engine owns the three retrieval structures and keeps them consistent.
// Writes are serialized; reads run concurrently against a stable graph
// pointer, so an in-flight search never observes a half-applied write.
type Engine struct {
	opts Options

	mu    sync.RWMutex // guards graph pointer and cross-structure writes
	graph *hnsw.Index
	lex   lexical.Index
	docs  *MapStore[Document]

	logger *slog.Logger
}

// New creates a new Engine.
func New(optFns ...func(o *Options)) (*Engine, error) {
	opts := Options{
		Graph:               hnsw.DefaultOptions,
		FilterOverfetch:     DefaultFilterOverfetch,
		CompactionThreshold: DefaultCompactionThreshold,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	graph, err := hnsw.New(func(o *hnsw.Options) { *o = opts.Graph })
	if err != nil {
		return nil, err
	}

	return newWithGraph(graph, opts), nil
}

func newWithGraph(graph *hnsw.Index, opts Options) *Engine {
	if opts.FilterOverfetch <= 0 {
		opts.FilterOverfetch = DefaultFilterOverfetch
	}
	if opts.CompactionThreshold <= 0 {
		opts.CompactionThreshold = DefaultCompactionThreshold
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Engine{
		opts:   opts,
		graph:  graph,
		lex:    bm25.New(func(o *bm25.Options) { o.Tokenizer = opts.Tokenizer }),
		docs:   NewMapStore[Document](),
		logger: logger,
	}
}

// Insert adds a new record. A duplicate ID is rejected; use Upsert to
// replace. The graph, the lexical index, and the record store mutate
// together or not at all.
func (e *Engine) Insert(ctx context.Context, rec model.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.insertLocked(ctx, rec)
	if err != nil {
		e.logger.ErrorContext(ctx, "insert failed", "id", string(rec.ID), "error", err)
		return err
	}

	e.logger.DebugContext(ctx, "insert completed", "id", string(rec.ID), "dimension", len(rec.Dense))
	return nil
}

func (e *Engine) insertLocked(ctx context.Context, rec model.Record) error {
	if rec.ID == "" {
		return ErrEmptyID
	}
	if len(rec.Dense) == 0 {
		return ErrMissingVector
	}
	if err := rec.Sparse.Validate(); err != nil {
		return err
	}

	if _, err := e.graph.Insert(ctx, rec.ID, rec.Dense); err != nil {
		return err
	}

	if len(rec.Fields) > 0 {
		if err := e.lex.Add(rec.ID, rec.Fields); err != nil {
			// Roll the graph back so no structure keeps a partial record.
			_ = e.graph.Delete(ctx, rec.ID)
			return err
		}
	}

	_ = e.docs.Set(rec.ID, Document{Fields: rec.Fields, Sparse: rec.Sparse})
	return nil
}

// Upsert inserts the record, replacing any existing record with the same ID.
func (e *Engine) Upsert(ctx context.Context, rec model.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Validate the replacement before touching the old record: a rejected
	// upsert must not degrade into a delete.
	if rec.ID == "" {
		return ErrEmptyID
	}
	if len(rec.Dense) == 0 {
		return ErrMissingVector
	}
	if err := rec.Sparse.Validate(); err != nil {
		return err
	}
	if err := e.graph.ValidateVector(rec.Dense); err != nil {
		return err
	}

	if e.graph.Contains(rec.ID) {
		if err := e.deleteLocked(ctx, rec.ID); err != nil {
			return err
		}
	}
	return e.insertLocked(ctx, rec)
}

// BatchInsert inserts many records, continuing past individual failures.
// It returns the number of failed records and their joined errors.
func (e *Engine) BatchInsert(ctx context.Context, recs []model.Record) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var errs []error
	for _, rec := range recs {
		if err := e.insertLocked(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		e.logger.WarnContext(ctx, "batch insert completed with failures",
			"total", len(recs), "failed", len(errs))
	} else {
		e.logger.InfoContext(ctx, "batch insert completed", "count", len(recs))
	}
	return len(errs), errors.Join(errs...)
}

// Delete tombstones a record in the graph and removes it from the lexical
// index and the record store.
func (e *Engine) Delete(ctx context.Context, id model.ID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.deleteLocked(ctx, id)
	if err != nil {
		e.logger.ErrorContext(ctx, "delete failed", "id", string(id), "error", err)
		return err
	}

	e.logger.DebugContext(ctx, "delete completed", "id", string(id))
	return nil
}

func (e *Engine) deleteLocked(ctx context.Context, id model.ID) error {
	if err := e.graph.Delete(ctx, id); err != nil {
		return err
	}

	if doc, ok := e.docs.Get(id); ok {
		if len(doc.Fields) > 0 {
			_ = e.lex.Remove(id)
		}
		_ = e.docs.Delete(id)
	}
	return nil
}

// Get returns the full record for the given ID. The dense vector is the
// stored form: for cosine indexes that is the normalized copy.
func (e *Engine) Get(id model.ID) (model.Record, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	hnd, ok := e.graph.HandleOf(id)
	if !ok {
		return model.Record{}, ErrNotFound
	}
	vec, _ := e.graph.VectorOf(hnd)
	doc, _ := e.docs.Get(id)

	return model.Record{
		ID:     id,
		Dense:  vec,
		Sparse: doc.Sparse,
		Fields: doc.Fields,
	}, nil
}

// Contains reports whether a live record with the given ID exists.
func (e *Engine) Contains(id model.ID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.Contains(id)
}

// Len returns the number of live records.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.Len()
}

// DocCount returns the number of lexically indexed documents.
func (e *Engine) DocCount() int {
	return e.lex.DocCount()
}

// Close releases the lexical index resources.
func (e *Engine) Close() error {
	return e.lex.Close()
}

// currentGraph returns a stable graph pointer for a read path. The graph is
// internally synchronized; holding the pointer past the RLock is safe even
// across a concurrent compaction swap.
func (e *Engine) currentGraph() *hnsw.Index {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph
}
