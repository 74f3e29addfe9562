package flatnav

import "container/heap"

// item is a single (node id, distance) entry held by a priority queue. Plain
// node ids (not NbrT) are used here: the queues operate purely on internal
// storage indices during beam search, conversion to/from the neighbor-id
// type happens only at the storage boundary.
type item struct {
	id   int
	dist float32
}

// Standard IEEE-754 ordering (a < b) already gives NaN the property the
// spec asks for: a NaN on either side makes both a<b and b<a false, so a
// NaN compares as neither less nor greater than anything — it just settles
// wherever the heap happens to put it, never panicking and never favoring
// one side. No special-casing needed.

type closestHeap []item

func (h closestHeap) Len() int            { return len(h) }
func (h closestHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h closestHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *closestHeap) Push(x interface{}) { *h = append(*h, x.(item)) }
func (h *closestHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

type furthestHeap []item

func (h furthestHeap) Len() int            { return len(h) }
func (h furthestHeap) Less(i, j int) bool  { return h[i].dist > h[j].dist }
func (h furthestHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *furthestHeap) Push(x interface{}) { *h = append(*h, x.(item)) }
func (h *furthestHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// ClosestQueue pops the smallest-distance element first.
type ClosestQueue struct {
	h closestHeap
}

// NewClosestQueue returns an empty ClosestQueue.
func NewClosestQueue() *ClosestQueue { return &ClosestQueue{} }

func (q *ClosestQueue) Len() int { return len(q.h) }

// Push inserts (id, dist).
func (q *ClosestQueue) Push(id int, dist float32) { heap.Push(&q.h, item{id, dist}) }

// Pop removes and returns the closest (id, dist). Panics if empty: an empty
// pop here means a logic bug in the engine, per the spec's error model.
func (q *ClosestQueue) Pop() (int, float32) {
	it := heap.Pop(&q.h).(item)
	return it.id, it.dist
}

// Peek returns the closest (id, dist) without removing it.
func (q *ClosestQueue) Peek() (int, float32) { return q.h[0].id, q.h[0].dist }

// FurthestQueue pops the largest-distance element first.
type FurthestQueue struct {
	h furthestHeap
}

// NewFurthestQueue returns an empty FurthestQueue.
func NewFurthestQueue() *FurthestQueue { return &FurthestQueue{} }

func (q *FurthestQueue) Len() int { return len(q.h) }

// Push inserts (id, dist).
func (q *FurthestQueue) Push(id int, dist float32) { heap.Push(&q.h, item{id, dist}) }

// Pop removes and returns the furthest (id, dist).
func (q *FurthestQueue) Pop() (int, float32) {
	it := heap.Pop(&q.h).(item)
	return it.id, it.dist
}

// Peek returns the furthest (id, dist) without removing it.
func (q *FurthestQueue) Peek() (int, float32) { return q.h[0].id, q.h[0].dist }

// PushWithCap pushes (id, dist) and, if the queue now holds more than cap
// elements, pops the worst (furthest) one — the bounded-worklist pattern
// beam search uses to keep only the best ef results seen so far.
func (q *FurthestQueue) PushWithCap(id int, dist float32, cap int) {
	q.Push(id, dist)
	if q.Len() > cap {
		q.Pop()
	}
}

// DrainSortedAscending pops every element in ascending-distance order,
// consuming the queue. Nothing in this package calls it: Insert and Query
// move the beamSearch worklist into a ClosestQueue by popping it.
func (q *FurthestQueue) DrainSortedAscending() []item {
	n := q.Len()
	out := make([]item, n)
	for i := n - 1; i >= 0; i-- {
		id, dist := q.Pop()
		out[i] = item{id, dist}
	}
	return out
}
