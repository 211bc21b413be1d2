package searcher

import "sync"

// Searcher is a reusable execution context for graph search operations.
// It owns all scratch memory required for a search, eliminating heap
// allocations in the steady state.
//
// Searcher is NOT thread-safe. It is intended to be owned by a single
// goroutine for the duration of one operation.
type Searcher struct {
	// Visited tracks visited nodes during graph traversal.
	Visited *VisitedSet

	// Results is a max-heap keeping the best ef candidates found so far.
	Results *PriorityQueue

	// Frontier is a min-heap of candidates still to expand.
	Frontier *PriorityQueue

	// ScratchVec is a reusable buffer for query normalization.
	ScratchVec []float32

	// ScratchItems is a reusable buffer for neighbor selection.
	ScratchItems []Item
}

var pool = sync.Pool{
	New: func() any {
		return NewSearcher(1024, 128)
	},
}

// NewSearcher creates a new searcher with the given initial capacities.
func NewSearcher(visitedCap, queueCap int) *Searcher {
	return &Searcher{
		Visited:      NewVisitedSet(visitedCap),
		Results:      NewPriorityQueue(true),
		Frontier:     NewPriorityQueue(false),
		ScratchItems: make([]Item, 0, queueCap),
	}
}

// Get acquires a Searcher from the pool.
func Get() *Searcher {
	return pool.Get().(*Searcher)
}

// Put returns a Searcher to the pool after resetting its state.
func Put(s *Searcher) {
	s.Visited.Reset()
	s.Results.Reset()
	s.Frontier.Reset()
	s.ScratchItems = s.ScratchItems[:0]
	pool.Put(s)
}
