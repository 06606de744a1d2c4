package bench

import (
	"runtime"
)

// dropQueue keeps per-iteration outputs alive while the timer runs and
// releases them with the timer stopped, so reclaiming large results is not
// charged to the iteration that produced them.
type dropQueue struct {
	items []any
	size  int
	limit int
}

func newDropQueue(limit int) *dropQueue {
	return &dropQueue{limit: limit}
}

// push retains v, which holds roughly size bytes. Once more than limit bytes
// are held the queue is drained between iterations.
func (q *dropQueue) push(b B, size int, v any) {
	q.items = append(q.items, v)
	q.size += size
	if q.size > q.limit {
		b.StopTimer()
		q.drain()
		b.StartTimer()
	}
}

// finish drains what is left once the timed loop is over.
func (q *dropQueue) finish(b B) {
	b.StopTimer()
	q.drain()
}

func (q *dropQueue) drain() {
	if len(q.items) == 0 {
		return
	}
	clear(q.items)
	q.items = q.items[:0]
	q.size = 0
	runtime.GC()
}
