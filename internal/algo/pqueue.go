package algo

import "container/heap"

// PriorityQueue hands back the item with the smallest priority first.
// Equal priorities leave in insertion order. Duplicates are allowed and
// there is no decrease-key; callers enqueue again and skip stale entries.
type PriorityQueue[T any] struct {
	h   pqHeap[T]
	seq uint64
}

type pqItem[T any] struct {
	item     T
	priority float64
	seq      uint64
}

type pqHeap[T any] []pqItem[T]

func (p pqHeap[T]) Len() int { return len(p) }
func (p pqHeap[T]) Less(i, j int) bool {
	if p[i].priority != p[j].priority {
		return p[i].priority < p[j].priority
	}
	return p[i].seq < p[j].seq
}
func (p pqHeap[T]) Swap(i, j int) { p[i], p[j] = p[j], p[i] }

func (p *pqHeap[T]) Push(x any) {
	*p = append(*p, x.(pqItem[T]))
}

func (p *pqHeap[T]) Pop() any {
	old := *p
	n := len(old)
	item := old[n-1]
	old[n-1] = pqItem[T]{}
	*p = old[:n-1]
	return item
}

func (q *PriorityQueue[T]) Enqueue(item T, priority float64) {
	heap.Push(&q.h, pqItem[T]{item: item, priority: priority, seq: q.seq})
	q.seq++
}

// Dequeue removes the minimum-priority item. ok is false when the queue
// is empty.
func (q *PriorityQueue[T]) Dequeue() (item T, ok bool) {
	item, _, ok = q.DequeueWithPriority()
	return item, ok
}

// DequeueWithPriority is Dequeue that also reports the priority the item
// was enqueued with.
func (q *PriorityQueue[T]) DequeueWithPriority() (T, float64, bool) {
	if len(q.h) == 0 {
		var zero T
		return zero, 0, false
	}
	it := heap.Pop(&q.h).(pqItem[T])
	return it.item, it.priority, true
}

func (q *PriorityQueue[T]) IsEmpty() bool { return len(q.h) == 0 }

func (q *PriorityQueue[T]) Len() int { return len(q.h) }
