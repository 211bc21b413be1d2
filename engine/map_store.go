package engine

import (
	"maps"
	"sync"

	"github.com/hupe1980/vexo/model"
)

// MapStore is an in-memory implementation of Store using a Go map.
// It's suitable for datasets that fit in memory and provides fast O(1) access.
type MapStore[T any] struct {
	mu   sync.RWMutex
	data map[model.ID]T
}

// NewMapStore creates a new in-memory map-based store.
func NewMapStore[T any]() *MapStore[T] {
	return &MapStore[T]{
		data: make(map[model.ID]T),
	}
}

// Get retrieves the data associated with the given ID.
func (m *MapStore[T]) Get(id model.ID) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[id]
	return v, ok
}

// Set stores data associated with the given ID.
func (m *MapStore[T]) Set(id model.ID, data T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[id] = data
	return nil
}

// Delete removes the data associated with the given ID.
func (m *MapStore[T]) Delete(id model.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[id]; !ok {
		return ErrNotFound
	}

	delete(m.data, id)
	return nil
}

// Len returns the number of items currently stored.
func (m *MapStore[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.data)
}

// Clear removes all items from the store.
func (m *MapStore[T]) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[model.ID]T)
	return nil
}

// ToMap returns a copy of all data as a map (for serialization).
func (m *MapStore[T]) ToMap() map[model.ID]T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[model.ID]T, len(m.data))
	maps.Copy(result, m.data)

	return result
}
