package hnsw

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vexo/model"
)

// ErrEmptyVector is returned when an empty vector is inserted or queried.
var ErrEmptyVector = errors.New("vector must not be empty")

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
// Vectors are rejected outright, never padded or truncated.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrInvalidDimension indicates an invalid configured dimension.
type ErrInvalidDimension struct {
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

// ErrNodeNotFound indicates that no active node exists for the identifier.
type ErrNodeNotFound struct {
	ID model.ID
}

func (e *ErrNodeNotFound) Error() string {
	return fmt.Sprintf("node not found: %q", e.ID)
}

// ErrDuplicateID indicates that an active node already exists for the
// identifier. Whether to upsert instead is decided one layer up.
type ErrDuplicateID struct {
	ID model.ID
}

func (e *ErrDuplicateID) Error() string {
	return fmt.Sprintf("duplicate id: %q", e.ID)
}
