package sched

import (
	"container/heap"
	"time"
)

// Manual is a deterministic Scheduler. Time only moves when Advance is
// called; callbacks due at the same instant run in scheduling order.
// Work passed to Go runs inline and its result is queued for the current
// instant. Manual is not safe for concurrent use.
type Manual struct {
	now   time.Duration
	seq   uint64
	queue taskQueue
}

// NewManual creates a manual scheduler at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Now returns the elapsed virtual time.
func (m *Manual) Now() time.Duration {
	return m.now
}

// After implements Scheduler.
func (m *Manual) After(d time.Duration, fn func()) Cancel {
	if d < 0 {
		d = 0
	}
	t := m.push(m.now+d, fn)
	return func() { t.cancelled = true }
}

// Go implements Scheduler.
func (m *Manual) Go(work func() func()) {
	if apply := work(); apply != nil {
		m.push(m.now, apply)
	}
}

// Advance moves time forward by d, running every callback that falls due,
// including callbacks scheduled by other callbacks within the window.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for m.queue.Len() > 0 {
		next := m.queue[0]
		if next.due > target {
			break
		}
		heap.Pop(&m.queue)
		if next.due > m.now {
			m.now = next.due
		}
		if !next.cancelled {
			next.fn()
		}
	}
	m.now = target
}

// Flush runs everything due now without moving time.
func (m *Manual) Flush() {
	m.Advance(0)
}

// Pending returns the number of live queued callbacks.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.queue {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// NextDue returns the delay until the earliest live callback.
func (m *Manual) NextDue() (time.Duration, bool) {
	for m.queue.Len() > 0 && m.queue[0].cancelled {
		heap.Pop(&m.queue)
	}
	if m.queue.Len() == 0 {
		return 0, false
	}
	return m.queue[0].due - m.now, true
}

func (m *Manual) push(due time.Duration, fn func()) *task {
	m.seq++
	t := &task{due: due, seq: m.seq, fn: fn}
	heap.Push(&m.queue, t)
	return t
}

type task struct {
	due       time.Duration
	seq       uint64
	fn        func()
	cancelled bool
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due == q[j].due {
		return q[i].seq < q[j].seq
	}
	return q[i].due < q[j].due
}

func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *taskQueue) Push(x any) { *q = append(*q, x.(*task)) }

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}
