package engine

import "github.com/hupe1980/vexo/model"

// Store is a generic interface for storing and retrieving data associated
// with record IDs.
//
// Implementations can provide different storage strategies (in-memory,
// disk-backed, distributed, etc.).
type Store[T any] interface {
	// Get retrieves the data associated with the given ID.
	// Returns the data and true if found, or zero value and false if not.
	Get(id model.ID) (T, bool)

	// Set stores data associated with the given ID.
	// If the ID already exists, it updates the data.
	Set(id model.ID, data T) error

	// Delete removes the data associated with the given ID.
	// Returns an error if the ID doesn't exist.
	Delete(id model.ID) error

	// Len returns the number of items currently stored.
	Len() int

	// Clear removes all items from the store.
	Clear() error

	// ToMap returns a copy of all data as a map (for serialization).
	ToMap() map[model.ID]T
}
