// This file implements the fluent builder API for creating and configuring
// Vexo instances. The builder is immutable - each method returns a new
// builder with the updated configuration.
package vexo

import (
	"github.com/hupe1980/vexo/blobstore"
	"github.com/hupe1980/vexo/codec"
	"github.com/hupe1980/vexo/distance"
	"github.com/hupe1980/vexo/hnsw"
	"github.com/hupe1980/vexo/lexical"
	"github.com/hupe1980/vexo/resource"
)

// HNSW creates a new index builder with the specified dimension.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration. This ensures thread-safety and prevents accidental
// state sharing.
//
// Example:
//
//	vx, err := vexo.HNSW(128).
//	    Cosine().
//	    M(32).
//	    EFConstruction(200).
//	    Build()
func HNSW(dimension int) HNSWBuilder {
	return HNSWBuilder{
		dimension: dimension,
		metric:    hnsw.DefaultOptions.Metric,
		m:         hnsw.DefaultOptions.M,
		ef:        hnsw.DefaultOptions.EF,
		heuristic: hnsw.DefaultOptions.Heuristic,
	}
}

// HNSWBuilder is an immutable fluent builder for creating Vexo instances.
// Each method returns a new builder with the updated configuration.
type HNSWBuilder struct {
	dimension           int
	metric              distance.Metric
	m                   int
	ef                  int
	heuristic           bool
	randomSeed          *int64
	tokenizer           lexical.Tokenizer
	filterOverfetch     int
	compactionThreshold float64
	resourceConfig      *resource.Config
	codec               codec.Codec
	store               blobstore.Store
	logger              *Logger
	metrics             MetricsCollector
}

// SquaredL2 sets the distance metric to Squared Euclidean distance.
func (b HNSWBuilder) SquaredL2() HNSWBuilder {
	b.metric = distance.MetricL2
	return b
}

// Cosine sets the distance metric to cosine distance. Vectors are
// normalized on insert.
func (b HNSWBuilder) Cosine() HNSWBuilder {
	b.metric = distance.MetricCosine
	return b
}

// DotProduct sets the distance metric to negative inner product.
func (b HNSWBuilder) DotProduct() HNSWBuilder {
	b.metric = distance.MetricDot
	return b
}

// Metric sets an explicit distance metric.
func (b HNSWBuilder) Metric(m distance.Metric) HNSWBuilder {
	b.metric = m
	return b
}

// M sets the maximum number of connections per layer.
// Higher values improve recall but increase memory usage.
// Default: 16. Recommended range: 12-64.
func (b HNSWBuilder) M(m int) HNSWBuilder {
	b.m = m
	return b
}

// EFConstruction sets the exploration factor used during index construction.
// Higher values improve index quality but slow down indexing.
// Default: 200. Recommended range: 100-500.
//
// Note: This is different from search-time EF, which is set via Query().EF().
func (b HNSWBuilder) EFConstruction(ef int) HNSWBuilder {
	b.ef = ef
	return b
}

// Heuristic enables or disables diversity-aware neighbor pruning.
// Default: true.
func (b HNSWBuilder) Heuristic(enabled bool) HNSWBuilder {
	b.heuristic = enabled
	return b
}

// RandomSeed sets the seed for deterministic index construction.
// If not set, a random seed (time-based) is used.
func (b HNSWBuilder) RandomSeed(seed int64) HNSWBuilder {
	b.randomSeed = &seed
	return b
}

// Tokenizer sets the tokenizer for the lexical index.
func (b HNSWBuilder) Tokenizer(t lexical.Tokenizer) HNSWBuilder {
	b.tokenizer = t
	return b
}

// FilterOverfetch sets the fetch multiplier for filtered dense searches.
func (b HNSWBuilder) FilterOverfetch(n int) HNSWBuilder {
	b.filterOverfetch = n
	return b
}

// CompactionThreshold sets the tombstone ratio that marks the graph as
// worth rebuilding. Default: 0.2.
func (b HNSWBuilder) CompactionThreshold(ratio float64) HNSWBuilder {
	b.compactionThreshold = ratio
	return b
}

// ResourceLimits bounds background work (memory, workers, snapshot IO).
func (b HNSWBuilder) ResourceLimits(cfg resource.Config) HNSWBuilder {
	b.resourceConfig = &cfg
	return b
}

// Codec sets the snapshot codec.
func (b HNSWBuilder) Codec(c codec.Codec) HNSWBuilder {
	b.codec = c
	return b
}

// BlobStore sets where snapshots are saved and loaded from.
func (b HNSWBuilder) BlobStore(s blobstore.Store) HNSWBuilder {
	b.store = s
	return b
}

// Logger sets the structured logger for operation tracing.
func (b HNSWBuilder) Logger(l *Logger) HNSWBuilder {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b HNSWBuilder) Metrics(mc MetricsCollector) HNSWBuilder {
	b.metrics = mc
	return b
}

// Build creates the Vexo instance.
func (b HNSWBuilder) Build() (*Vexo, error) {
	opts := []Option{
		WithMetric(b.metric),
		WithM(b.m),
		WithEFConstruction(b.ef),
		WithHeuristic(b.heuristic),
	}
	if b.randomSeed != nil {
		opts = append(opts, WithRandomSeed(*b.randomSeed))
	}
	if b.tokenizer != nil {
		opts = append(opts, WithTokenizer(b.tokenizer))
	}
	if b.filterOverfetch > 0 {
		opts = append(opts, WithFilterOverfetch(b.filterOverfetch))
	}
	if b.compactionThreshold > 0 {
		opts = append(opts, WithCompactionThreshold(b.compactionThreshold))
	}
	if b.resourceConfig != nil {
		opts = append(opts, WithResourceLimits(*b.resourceConfig))
	}
	if b.codec != nil {
		opts = append(opts, WithCodec(b.codec))
	}
	if b.store != nil {
		opts = append(opts, WithBlobStore(b.store))
	}
	if b.logger != nil {
		opts = append(opts, WithLogger(b.logger))
	}
	if b.metrics != nil {
		opts = append(opts, WithMetricsCollector(b.metrics))
	}

	return New(b.dimension, opts...)
}

// MustBuild creates the Vexo instance, panicking on error.
func (b HNSWBuilder) MustBuild() *Vexo {
	vx, err := b.Build()
	if err != nil {
		panic(err)
	}
	return vx
}
