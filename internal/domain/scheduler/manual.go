package scheduler

import (
	"container/heap"
	"sync"
	"time"
)

// Manual is a virtual-time Scheduler. Time only moves when Advance is called,
// which makes widget timelines reproducible in tests and autoplay.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	queue timerHeap
	live  map[Handle]*entry
}

type entry struct {
	h   Handle
	at  time.Time
	seq uint64
	fn  func()
	idx int
}

// NewManual returns a Manual scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{
		now:  start,
		live: make(map[Handle]*entry),
	}
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// After schedules fn at Now()+d.
func (m *Manual) After(d time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	e := &entry{
		h:   Handle(m.seq),
		at:  m.now.Add(d),
		seq: m.seq,
		fn:  fn,
	}
	heap.Push(&m.queue, e)
	m.live[e.h] = e
	return e.h
}

// Cancel removes a pending callback.
func (m *Manual) Cancel(h Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live[h]
	if !ok {
		return false
	}
	delete(m.live, h)
	heap.Remove(&m.queue, e.idx)
	return true
}

// Advance moves the clock forward by d, running every callback due within the
// window in due-time order. Ties run in scheduling order. Callbacks scheduled
// by callbacks run too when they fall inside the window. It returns the number
// of callbacks run.
func (m *Manual) Advance(d time.Duration) int {
	m.mu.Lock()
	deadline := m.now.Add(d)
	m.mu.Unlock()
	return m.runUntil(deadline)
}

// RunNext jumps to the earliest pending callback and runs it, reporting
// whether one existed.
func (m *Manual) RunNext() bool {
	m.mu.Lock()
	if len(m.queue) == 0 {
		m.mu.Unlock()
		return false
	}
	at := m.queue[0].at
	m.mu.Unlock()
	return m.runUntil(at) > 0
}

// Pending returns the number of outstanding callbacks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *Manual) runUntil(deadline time.Time) int {
	ran := 0
	for {
		m.mu.Lock()
		if len(m.queue) == 0 || m.queue[0].at.After(deadline) {
			if deadline.After(m.now) {
				m.now = deadline
			}
			m.mu.Unlock()
			return ran
		}
		e := heap.Pop(&m.queue).(*entry)
		delete(m.live, e.h)
		if e.at.After(m.now) {
			m.now = e.at
		}
		m.mu.Unlock()

		// Callbacks run unlocked so they can schedule and cancel.
		e.fn()
		ran++
	}
}

type timerHeap []*entry

func (q timerHeap) Len() int { return len(q) }

func (q timerHeap) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q timerHeap) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].idx = i
	q[j].idx = j
}

func (q *timerHeap) Push(x any) {
	e := x.(*entry)
	e.idx = len(*q)
	*q = append(*q, e)
}

func (q *timerHeap) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.idx = -1
	*q = old[:n-1]
	return e
}
