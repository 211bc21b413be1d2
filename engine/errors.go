package engine

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record does not exist (or is tombstoned).
//
// This is an engine-layer sentinel used internally; the vexo package may
// translate it into its public error contract.
var ErrNotFound = errors.New("not found")

// ErrInvalidK is returned when a negative k is requested.
var ErrInvalidK = errors.New("k must not be negative")

// ErrEmptyQuery is returned when a query carries neither a dense vector,
// a sparse vector, nor query text.
var ErrEmptyQuery = errors.New("query needs a dense vector, a sparse vector, or text")

// ErrMissingVector is returned when a record is inserted without a dense
// vector. Every record participates in the proximity graph.
var ErrMissingVector = errors.New("record needs a dense vector")

// ErrEmptyID is returned when a record is inserted without an ID.
var ErrEmptyID = errors.New("record id must not be empty")

// ErrInvalidEF indicates a per-query frontier width below k.
type ErrInvalidEF struct {
	EF int
	K  int
}

func (e *ErrInvalidEF) Error() string {
	return fmt.Sprintf("ef %d must be >= k %d", e.EF, e.K)
}
