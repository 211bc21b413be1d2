package model

import "fmt"

// ID is the user-facing stable identifier of a record.
// It is opaque, caller-assigned and unique for the record's lifetime.
type ID string

// Handle is a dense, internal identifier for a record inside the graph.
// It is strictly 32-bit and stable for the lifetime of the index instance;
// handles are never reused, tombstoned handles are purged by compaction.
type Handle uint32

// MaxHandle is the maximum possible value for a Handle.
const MaxHandle = ^Handle(0)

// SparseEntry is a single (position, weight) pair of a sparse vector.
type SparseEntry struct {
	Index  uint32
	Weight float32
}

// SparseVector is a sparse lexical weight vector: entries sorted ascending
// by Index with unique indices. The nominal dimensionality may be huge; only
// nonzero positions are materialized.
type SparseVector struct {
	Entries []SparseEntry
}

// IsZero returns true if the vector has no entries.
func (s SparseVector) IsZero() bool { return len(s.Entries) == 0 }

// Validate checks the ascending/unique index invariant.
func (s SparseVector) Validate() error {
	for i := 1; i < len(s.Entries); i++ {
		if s.Entries[i].Index <= s.Entries[i-1].Index {
			return fmt.Errorf("sparse vector: indices must be strictly ascending (entry %d: %d <= %d)",
				i, s.Entries[i].Index, s.Entries[i-1].Index)
		}
	}
	return nil
}

// Origin identifies which scorer produced a candidate.
type Origin int

const (
	// OriginDense marks candidates from the graph index.
	OriginDense Origin = iota
	// OriginSparse marks candidates from sparse-vector scoring.
	OriginSparse
	// OriginLexical marks candidates from the BM25 scorer.
	OriginLexical
)

func (o Origin) String() string {
	switch o {
	case OriginDense:
		return "dense"
	case OriginSparse:
		return "sparse"
	case OriginLexical:
		return "lexical"
	default:
		return fmt.Sprintf("Unknown(%d)", int(o))
	}
}

// Candidate is a transient pre-fusion match.
type Candidate struct {
	// ID is the user-facing identifier.
	ID ID
	// Score is the raw, un-normalized score. For dense candidates this is a
	// distance (lower is better); for sparse/lexical candidates a similarity
	// (higher is better).
	Score float32
	// Origin records which scorer produced the candidate.
	Origin Origin
}

// FusedResult is a final, ranked result returned to the caller.
type FusedResult struct {
	// ID is the user-facing identifier.
	ID ID
	// Score is the fused score (higher is better).
	Score float32
	// Explanation is populated by Explain-style queries, nil otherwise.
	Explanation *Explanation
}

// Explanation is a structured account of how a result's fused score was
// computed. All fields are derived; the struct is pure output.
type Explanation struct {
	// Rank is the 1-based position in the final ordering.
	Rank int
	// RawDense is the raw dense-side score, nil if the record had no dense
	// contribution.
	RawDense *float32
	// RawSparse is the raw sparse/lexical-side score, nil if absent.
	RawSparse *float32
	// NormalizedDense and NormalizedSparse are the per-side scores after
	// normalization (0 for a missing side).
	NormalizedDense  float32
	NormalizedSparse float32
	// Normalization names the normalization applied ("min-max", "z-score",
	// or "none" for rank-based strategies).
	Normalization string
	// Formula is the fusion formula with actual operands substituted,
	// e.g. "0.50*0.8333 + 0.50*1.0000".
	Formula string
	// Fused is the final score.
	Fused float32
}

// Record is a full hybrid record as supplied on insert. A record may carry a
// dense vector, a sparse vector, text fields, or any combination; fusion
// activates only the components present on both query and record.
type Record struct {
	ID     ID
	Dense  []float32
	Sparse SparseVector
	Fields map[string]string
}
