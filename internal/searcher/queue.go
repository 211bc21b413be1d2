// Package searcher implements the reusable search queues and scratch state
// used by the graph index.
package searcher

import (
	"github.com/hupe1980/vexo/model"
)

// Item is an entry in a priority queue: a node handle and its distance to
// the query. Value-based to keep the heap allocation-free.
type Item struct {
	Node     model.Handle
	Distance float32
}

// PriorityQueue implements a binary heap of Items.
// It is value-based for cache locality and does NOT implement
// container/heap to avoid interface overhead on the hot path.
type PriorityQueue struct {
	isMaxHeap bool // true = max heap (worst on top), false = min heap
	items     []Item
}

// NewPriorityQueue creates a new priority queue.
func NewPriorityQueue(isMaxHeap bool) *PriorityQueue {
	return &PriorityQueue{
		isMaxHeap: isMaxHeap,
		items:     make([]Item, 0, 16),
	}
}

// Reset clears the priority queue for reuse.
func (pq *PriorityQueue) Reset() {
	pq.items = pq.items[:0]
}

// Len returns the number of elements in the heap.
func (pq *PriorityQueue) Len() int {
	return len(pq.items)
}

// TopItem returns the top element of the heap.
func (pq *PriorityQueue) TopItem() (Item, bool) {
	if len(pq.items) == 0 {
		return Item{}, false
	}
	return pq.items[0], true
}

// MinItem returns the item with the minimum distance in the queue.
// O(N) for a max heap, but N (ef) is small.
func (pq *PriorityQueue) MinItem() (Item, bool) {
	if len(pq.items) == 0 {
		return Item{}, false
	}
	best := pq.items[0]
	for _, item := range pq.items[1:] {
		if item.Distance < best.Distance {
			best = item
		}
	}
	return best, true
}

// PushItem inserts an item while maintaining the heap invariant.
func (pq *PriorityQueue) PushItem(item Item) {
	pq.items = append(pq.items, item)
	pq.siftUp(len(pq.items) - 1)
}

// PushItemBounded inserts an item into a heap bounded to capacity items.
// If the heap is full and the new item is worse than the top, it is skipped;
// if it is better, the top is replaced.
func (pq *PriorityQueue) PushItemBounded(item Item, capacity int) {
	if len(pq.items) < capacity {
		pq.PushItem(item)
		return
	}

	top, _ := pq.TopItem()
	if pq.isMaxHeap {
		// Top is the largest distance (worst candidate); keep smaller.
		if item.Distance < top.Distance {
			pq.items[0] = item
			pq.siftDown(0)
		}
	} else {
		if item.Distance > top.Distance {
			pq.items[0] = item
			pq.siftDown(0)
		}
	}
}

// PopItem removes and returns the top element from the heap.
func (pq *PriorityQueue) PopItem() (Item, bool) {
	n := len(pq.items)
	if n == 0 {
		return Item{}, false
	}

	item := pq.items[0]
	pq.items[0] = pq.items[n-1]
	pq.items = pq.items[:n-1]

	if len(pq.items) > 0 {
		pq.siftDown(0)
	}

	return item, true
}

func (pq *PriorityQueue) less(i, j int) bool {
	if pq.isMaxHeap {
		return pq.items[i].Distance > pq.items[j].Distance
	}
	return pq.items[i].Distance < pq.items[j].Distance
}

func (pq *PriorityQueue) swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
}

func (pq *PriorityQueue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !pq.less(i, parent) {
			break
		}
		pq.swap(i, parent)
		i = parent
	}
}

func (pq *PriorityQueue) siftDown(i int) {
	n := len(pq.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		right := left + 1
		if right < n && pq.less(right, left) {
			child = right
		}
		if !pq.less(child, i) {
			break
		}
		pq.swap(i, child)
		i = child
	}
}
