package engine

import (
	"github.com/hupe1980/skycat/internal/record"
	"github.com/hupe1980/skycat/model"
)

// candidate is a star that passed the separation filter. The catalog entry is
// only materialized for candidates that survive to the final result.
type candidate struct {
	sep    float64
	zone   model.ZoneID
	number model.RunningNumber
	raw    record.Raw
}

// before reports whether c ranks ahead of o: smaller separation first, ties
// broken by ascending identifier.
func (c candidate) before(o candidate) bool {
	if c.sep != o.sep {
		return c.sep < o.sep
	}
	if c.zone != o.zone {
		return c.zone < o.zone
	}
	return c.number < o.number
}

// resultQueue is a bounded max-heap keeping the best capacity candidates.
// The top is the worst candidate retained.
// It does NOT implement container/heap to avoid interface overhead.
type resultQueue struct {
	capacity int
	items    []candidate
}

func newResultQueue(capacity int) *resultQueue {
	return &resultQueue{
		capacity: capacity,
		items:    make([]candidate, 0, min(capacity, 64)),
	}
}

// Len returns the number of retained candidates.
func (q *resultQueue) Len() int { return len(q.items) }

// Full reports whether the queue holds capacity candidates.
func (q *resultQueue) Full() bool { return len(q.items) >= q.capacity }

// Top returns the worst retained candidate.
func (q *resultQueue) Top() (candidate, bool) {
	if len(q.items) == 0 {
		return candidate{}, false
	}
	return q.items[0], true
}

// Push offers c. When the queue is full, c replaces the top only if it ranks
// ahead of it.
func (q *resultQueue) Push(c candidate) {
	if len(q.items) < q.capacity {
		q.items = append(q.items, c)
		q.siftUp(len(q.items) - 1)
		return
	}
	if c.before(q.items[0]) {
		q.items[0] = c
		q.siftDown(0)
	}
}

// Pop removes and returns the worst retained candidate.
func (q *resultQueue) Pop() (candidate, bool) {
	n := len(q.items)
	if n == 0 {
		return candidate{}, false
	}
	top := q.items[0]
	q.items[0] = q.items[n-1]
	q.items = q.items[:n-1]
	if len(q.items) > 0 {
		q.siftDown(0)
	}
	return top, true
}

// Drain empties the queue and returns its candidates best first.
func (q *resultQueue) Drain() []candidate {
	out := make([]candidate, len(q.items))
	for i := len(out) - 1; i >= 0; i-- {
		out[i], _ = q.Pop()
	}
	return out
}

// less orders the heap so that the worst candidate is on top.
func (q *resultQueue) less(i, j int) bool {
	return q.items[j].before(q.items[i])
}

func (q *resultQueue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(i, parent) {
			break
		}
		q.items[i], q.items[parent] = q.items[parent], q.items[i]
		i = parent
	}
}

func (q *resultQueue) siftDown(i int) {
	n := len(q.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		if right := left + 1; right < n && q.less(right, left) {
			child = right
		}
		if !q.less(child, i) {
			break
		}
		q.items[i], q.items[child] = q.items[child], q.items[i]
		i = child
	}
}
