package core

import (
	"container/heap"
	"net/netip"
)

// candidateQueue orders partially-explored vertices by tentative distance
// from the root, ascending, with ties broken by insertion order so runs are
// deterministic. At most one entry per vertex id is ever present.
//
// Built on container/heap; none of the libraries in use provide a priority
// queue with decrease-key.
type candidateQueue struct {
	h   candHeap
	ids map[netip.Addr]*candEntry
	seq uint64
}

type candEntry struct {
	v     *vertex
	seq   uint64
	index int
}

type candHeap []*candEntry

func (h candHeap) Len() int { return len(h) }

func (h candHeap) Less(i, j int) bool {
	if h[i].v.dist != h[j].v.dist {
		return h[i].v.dist < h[j].v.dist
	}
	return h[i].seq < h[j].seq
}

func (h candHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *candHeap) Push(x any) {
	e := x.(*candEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *candHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

func newCandidateQueue() *candidateQueue {
	return &candidateQueue{ids: make(map[netip.Addr]*candEntry)}
}

func (q *candidateQueue) len() int {
	return len(q.h)
}

func (q *candidateQueue) push(v *vertex) {
	e := &candEntry{v: v, seq: q.seq}
	q.seq++
	heap.Push(&q.h, e)
	q.ids[v.id] = e
}

// popMin removes and returns the lowest-distance vertex, or nil when the
// queue is exhausted. Exhaustion terminates the SPF main loop.
func (q *candidateQueue) popMin() *vertex {
	if len(q.h) == 0 {
		return nil
	}
	e := heap.Pop(&q.h).(*candEntry)
	delete(q.ids, e.v.id)
	return e.v
}

// find locates a queued vertex by its topology identity without removing
// it.
func (q *candidateQueue) find(id netip.Addr) *vertex {
	e, ok := q.ids[id]
	if !ok {
		return nil
	}
	return e.v
}

// decreaseKey lowers a queued vertex's distance and restores heap order.
// Only called with dist strictly below the stored value.
func (q *candidateQueue) decreaseKey(v *vertex, dist uint32) {
	e, ok := q.ids[v.id]
	if !ok {
		return
	}
	e.v.dist = dist
	heap.Fix(&q.h, e.index)
}
