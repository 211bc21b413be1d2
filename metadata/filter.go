package metadata

import "github.com/hupe1980/vexo/model"

// Predicate is the evaluator contract implemented outside the core: given a
// record's identifier and its metadata fields, it returns pass/fail.
// Implementations must be pure with respect to a single query; the
// orchestrator may call them concurrently.
type Predicate func(id model.ID, fields map[string]string) bool

// FilterFunc adapts a plain handle predicate to the Filter interface.
// Cardinality is unknown for function filters; it reports 0, which disables
// cardinality-based heuristics.
type FilterFunc func(h model.Handle) bool

// Matches implements Filter.
func (f FilterFunc) Matches(h model.Handle) bool { return f(h) }

// Cardinality implements Filter.
func (f FilterFunc) Cardinality() uint64 { return 0 }
