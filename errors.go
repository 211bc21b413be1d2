package vexo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vexo/engine"
	"github.com/hupe1980/vexo/fusion"
	"github.com/hupe1980/vexo/hnsw"
	"github.com/hupe1980/vexo/model"
)

var (
	// ErrNotFound is returned when a record does not exist or is deleted.
	ErrNotFound = errors.New("not found")

	// ErrInvalidK is returned when k is negative.
	ErrInvalidK = errors.New("k must not be negative")

	// ErrInvalidConfiguration is returned for invalid query or index
	// parameters: ef below k, alpha outside [0,1], unknown fusion strategy.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNoBlobStore is returned when Save/Load is called without a
	// configured blob store.
	ErrNoBlobStore = errors.New("no blob store configured")
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrDuplicateID indicates an insert with an ID that already exists.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDuplicateID struct {
	ID    model.ID
	cause error
}

func (e *ErrDuplicateID) Error() string {
	return fmt.Sprintf("duplicate id: %q", string(e.ID))
}

func (e *ErrDuplicateID) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, engine.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	var enf *hnsw.ErrNodeNotFound
	if errors.As(err, &enf) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	// Dimension and duplicate normalization.
	var dm *hnsw.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	var dup *hnsw.ErrDuplicateID
	if errors.As(err, &dup) {
		return &ErrDuplicateID{ID: dup.ID, cause: err}
	}

	// Parameter-space violations collapse into one configuration error.
	if errors.Is(err, engine.ErrInvalidK) {
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	}
	var ief *engine.ErrInvalidEF
	if errors.As(err, &ief) {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	var ia *fusion.ErrInvalidAlpha
	if errors.As(err, &ia) {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	var us *fusion.ErrUnknownStrategy
	if errors.As(err, &us) {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	var id *hnsw.ErrInvalidDimension
	if errors.As(err, &id) {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	return err
}
