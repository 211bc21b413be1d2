// Package vexo is an embedded hybrid search engine: dense vectors in an
// HNSW proximity graph, text fields in a BM25 inverted index, and a fusion
// layer that merges both rankings per query.
package vexo

import (
	"context"
	"time"

	"github.com/hupe1980/vexo/engine"
	"github.com/hupe1980/vexo/model"
	"github.com/hupe1980/vexo/persistence"
	"github.com/hupe1980/vexo/resource"
)

// Vexo is the top-level handle. It is safe for concurrent use: writes are
// serialized internally, reads run in parallel.
type Vexo struct {
	engine  *engine.Engine
	opts    options
	rc      *resource.Controller
	pm      *persistence.Manager // nil without a blob store
	metrics MetricsCollector
	logger  *Logger
}

// New creates an empty index for vectors of the given dimension.
func New(dimension int, optFns ...Option) (*Vexo, error) {
	o := applyOptions(optFns)
	o.graph.Dimension = dimension

	var rc *resource.Controller
	if o.resourceConfig != nil {
		rc = resource.NewController(*o.resourceConfig)
	}

	eng, err := engine.New(engineOptions(o, rc))
	if err != nil {
		return nil, translateError(err)
	}

	return assemble(eng, o, rc, nil), nil
}

// Load restores an index from a snapshot in the configured blob store.
// Graph parameters come from the snapshot itself.
func Load(ctx context.Context, name string, optFns ...Option) (*Vexo, error) {
	o := applyOptions(optFns)
	if o.store == nil {
		return nil, ErrNoBlobStore
	}

	var rc *resource.Controller
	if o.resourceConfig != nil {
		rc = resource.NewController(*o.resourceConfig)
	}

	pm := persistence.NewManager(o.store, o.codec, rc)
	eng, err := engine.LoadSnapshot(ctx, pm, name, engineOptions(o, rc))
	if err != nil {
		return nil, translateError(err)
	}

	return assemble(eng, o, rc, pm), nil
}

func engineOptions(o options, rc *resource.Controller) func(*engine.Options) {
	return func(eo *engine.Options) {
		eo.Graph = o.graph
		eo.Tokenizer = o.tokenizer
		eo.FilterOverfetch = o.filterOverfetch
		eo.CompactionThreshold = o.compactionThreshold
		eo.Resource = rc
		eo.Logger = o.logger.Logger
	}
}

func assemble(eng *engine.Engine, o options, rc *resource.Controller, pm *persistence.Manager) *Vexo {
	if pm == nil && o.store != nil {
		pm = persistence.NewManager(o.store, o.codec, rc)
	}
	return &Vexo{
		engine:  eng,
		opts:    o,
		rc:      rc,
		pm:      pm,
		metrics: o.metricsCollector,
		logger:  o.logger,
	}
}

// Insert adds a new record. Inserting an existing ID returns ErrDuplicateID.
func (v *Vexo) Insert(ctx context.Context, rec model.Record) error {
	start := time.Now()
	err := translateError(v.engine.Insert(ctx, rec))
	v.metrics.RecordInsert(time.Since(start), err)
	return err
}

// Upsert inserts the record, replacing any existing record with the same ID.
func (v *Vexo) Upsert(ctx context.Context, rec model.Record) error {
	start := time.Now()
	err := translateError(v.engine.Upsert(ctx, rec))
	v.metrics.RecordInsert(time.Since(start), err)
	return err
}

// BatchInsert inserts many records, continuing past individual failures.
// It returns the number of failed records and their joined errors.
func (v *Vexo) BatchInsert(ctx context.Context, recs []model.Record) (int, error) {
	start := time.Now()
	failed, err := v.engine.BatchInsert(ctx, recs)
	v.metrics.RecordBatchInsert(len(recs), failed, time.Since(start))
	return failed, translateError(err)
}

// Delete removes a record. The graph slot is tombstoned; reclaim it with
// Compact once CompactionNeeded reports true.
func (v *Vexo) Delete(ctx context.Context, id model.ID) error {
	start := time.Now()
	err := translateError(v.engine.Delete(ctx, id))
	v.metrics.RecordDelete(time.Since(start), err)
	return err
}

// Get returns the full record for the given ID. For cosine indexes the
// dense vector is the stored normalized copy.
func (v *Vexo) Get(id model.ID) (model.Record, error) {
	rec, err := v.engine.Get(id)
	return rec, translateError(err)
}

// Contains reports whether a live record with the given ID exists.
func (v *Vexo) Contains(id model.ID) bool {
	return v.engine.Contains(id)
}

// Len returns the number of live records.
func (v *Vexo) Len() int {
	return v.engine.Len()
}

// TombstoneRatio returns the fraction of graph slots held by tombstones.
func (v *Vexo) TombstoneRatio() float64 {
	return v.engine.TombstoneRatio()
}

// CompactionNeeded reports whether the tombstone ratio has crossed the
// configured threshold.
func (v *Vexo) CompactionNeeded() bool {
	return v.engine.CompactionNeeded()
}

// Compact rebuilds the graph without tombstones. Reads stay available;
// writes block for the duration.
func (v *Vexo) Compact(ctx context.Context) error {
	start := time.Now()
	err := translateError(v.engine.Compact(ctx))
	v.metrics.RecordCompaction(time.Since(start), err)
	return err
}

// Save writes a consistent snapshot to the configured blob store.
func (v *Vexo) Save(ctx context.Context, name string) error {
	if v.pm == nil {
		return ErrNoBlobStore
	}
	return translateError(v.engine.SaveSnapshot(ctx, v.pm, name))
}

// Close releases resources. The index must not be used afterwards.
func (v *Vexo) Close() error {
	return v.engine.Close()
}
