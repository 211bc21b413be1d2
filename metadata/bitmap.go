// Package metadata provides the predicate-filter surface of the search core:
// a roaring-bitmap allowlist over internal handles and the evaluator contract
// the orchestrator uses to build one from caller predicates.
package metadata

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/vexo/model"
)

// Filter restricts a graph search to matching handles. Filtered-out nodes
// are still traversed for navigability; they are only excluded from results.
type Filter interface {
	// Matches returns true if the handle passes the filter.
	Matches(h model.Handle) bool
	// Cardinality returns the number of matching handles.
	Cardinality() uint64
}

// Bitmap is an allowlist of handles backed by a 32-bit roaring bitmap.
type Bitmap struct {
	rb *roaring.Bitmap
}

var _ Filter = (*Bitmap)(nil)

// NewBitmap creates a new empty bitmap.
func NewBitmap() *Bitmap {
	return &Bitmap{rb: roaring.New()}
}

// Add adds a handle to the bitmap.
func (b *Bitmap) Add(h model.Handle) {
	b.rb.Add(uint32(h))
}

// AddMany adds a batch of handles.
func (b *Bitmap) AddMany(hs []uint32) {
	b.rb.AddMany(hs)
}

// Remove removes a handle from the bitmap.
func (b *Bitmap) Remove(h model.Handle) {
	b.rb.Remove(uint32(h))
}

// Matches implements Filter.
func (b *Bitmap) Matches(h model.Handle) bool {
	return b.rb.Contains(uint32(h))
}

// Contains checks if a handle is in the bitmap.
func (b *Bitmap) Contains(h model.Handle) bool {
	return b.rb.Contains(uint32(h))
}

// IsEmpty returns true if the bitmap is empty.
func (b *Bitmap) IsEmpty() bool {
	return b.rb.IsEmpty()
}

// Cardinality returns the number of elements in the bitmap.
func (b *Bitmap) Cardinality() uint64 {
	return b.rb.GetCardinality()
}

// Clone returns a deep copy of the bitmap.
func (b *Bitmap) Clone() *Bitmap {
	return &Bitmap{rb: b.rb.Clone()}
}

// And computes the intersection with another bitmap in place.
func (b *Bitmap) And(other *Bitmap) {
	b.rb.And(other.rb)
}

// Or computes the union with another bitmap in place.
func (b *Bitmap) Or(other *Bitmap) {
	b.rb.Or(other.rb)
}

// Clear removes all elements.
func (b *Bitmap) Clear() {
	b.rb.Clear()
}

// Iterator returns an iterator over the bitmap in ascending handle order.
func (b *Bitmap) Iterator() iter.Seq[model.Handle] {
	return func(yield func(model.Handle) bool) {
		it := b.rb.Iterator()
		for it.HasNext() {
			if !yield(model.Handle(it.Next())) {
				return
			}
		}
	}
}

// ForEach calls fn for each handle until fn returns false.
func (b *Bitmap) ForEach(fn func(model.Handle) bool) {
	it := b.rb.Iterator()
	for it.HasNext() {
		if !fn(model.Handle(it.Next())) {
			return
		}
	}
}
