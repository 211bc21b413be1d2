package vexo

import (
	"log/slog"

	"github.com/hupe1980/vexo/blobstore"
	"github.com/hupe1980/vexo/codec"
	"github.com/hupe1980/vexo/distance"
	"github.com/hupe1980/vexo/hnsw"
	"github.com/hupe1980/vexo/lexical"
	"github.com/hupe1980/vexo/resource"
)

type options struct {
	graph               hnsw.Options
	tokenizer           lexical.Tokenizer
	filterOverfetch     int
	compactionThreshold float64
	resourceConfig      *resource.Config
	codec               codec.Codec
	store               blobstore.Store
	metricsCollector    MetricsCollector
	logger              *Logger
}

// Option configures constructor/load behavior.
type Option func(*options)

// WithMetric sets the distance metric (default L2).
func WithMetric(m distance.Metric) Option {
	return func(o *options) {
		o.graph.Metric = m
	}
}

// WithM sets the graph degree cap per layer (layer 0 allows 2*M).
// Higher values improve recall but increase memory usage.
func WithM(m int) Option {
	return func(o *options) {
		o.graph.M = m
	}
}

// WithEFConstruction sets the frontier width used during graph construction
// and as the default search width. Higher values improve index quality but
// slow down indexing.
func WithEFConstruction(ef int) Option {
	return func(o *options) {
		o.graph.EF = ef
	}
}

// WithHeuristic enables or disables diversity-aware neighbor selection.
// Default: true.
func WithHeuristic(enabled bool) Option {
	return func(o *options) {
		o.graph.Heuristic = enabled
	}
}

// WithRandomSeed pins the layer generator for deterministic graph topology.
// If not set, a time-based seed is used.
func WithRandomSeed(seed int64) Option {
	return func(o *options) {
		o.graph.RandomSeed = &seed
	}
}

// WithTokenizer sets the tokenizer used by the lexical index.
// Nil selects the simple lowercasing tokenizer.
func WithTokenizer(t lexical.Tokenizer) Option {
	return func(o *options) {
		o.tokenizer = t
	}
}

// WithFilterOverfetch sets the fetch multiplier for filtered dense searches.
// Default: 4.
func WithFilterOverfetch(n int) Option {
	return func(o *options) {
		o.filterOverfetch = n
	}
}

// WithCompactionThreshold sets the tombstone ratio above which
// CompactionNeeded reports true. Default: 0.2.
func WithCompactionThreshold(ratio float64) Option {
	return func(o *options) {
		o.compactionThreshold = ratio
	}
}

// WithResourceLimits bounds background work: memory, concurrent compaction
// jobs, and snapshot IO throughput.
func WithResourceLimits(cfg resource.Config) Option {
	return func(o *options) {
		o.resourceConfig = &cfg
	}
}

// WithCodec configures the codec used for encoding snapshots.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithBlobStore configures where snapshots are saved and loaded from.
// Without a store, Save and Load return ErrNoBlobStore.
func WithBlobStore(s blobstore.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &vexo.BasicMetricsCollector{}
//	vx, _ := vexo.New(128, vexo.WithMetricsCollector(metrics))
//	// ... use vx ...
//	stats := metrics.GetStats()
//	fmt.Printf("Inserts: %d, Avg latency: %dns\n", stats.InsertCount, stats.InsertAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := vexo.NewJSONLogger(slog.LevelInfo)
//	vx, _ := vexo.New(128, vexo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		graph:            hnsw.DefaultOptions,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
