package kernel

import (
	"container/heap"
	"time"
)

// TimerID identifies a scheduled timer. The zero value is never issued.
type TimerID uint64

// Timers is a cooperative timer queue driven by an explicit tick count
// (one tick per millisecond, like hal.Time). Callbacks run synchronously
// inside Advance, on the goroutine that calls it.
//
// Timers is not safe for concurrent use.
type Timers struct {
	now  uint64
	next TimerID
	q    timerQueue
	live map[TimerID]*timer
}

type timer struct {
	id       TimerID
	deadline uint64
	fn       func()
	index    int
}

// NewTimers returns an empty queue at tick 0.
func NewTimers() *Timers {
	return &Timers{live: make(map[TimerID]*timer)}
}

// Now returns the current tick.
func (t *Timers) Now() uint64 { return t.now }

// Pending returns the number of timers that have neither fired nor been
// cancelled.
func (t *Timers) Pending() int { return len(t.live) }

// After schedules fn to run once delay has elapsed. Sub-millisecond delays
// round up to one tick.
func (t *Timers) After(delay time.Duration, fn func()) TimerID {
	ticks := uint64(0)
	if delay > 0 {
		ticks = uint64((delay + time.Millisecond - 1) / time.Millisecond)
	}
	t.next++
	tm := &timer{id: t.next, deadline: t.now + ticks, fn: fn}
	heap.Push(&t.q, tm)
	t.live[tm.id] = tm
	return tm.id
}

// Cancel removes a pending timer. It reports false if id already fired, was
// already cancelled, or is zero.
func (t *Timers) Cancel(id TimerID) bool {
	tm, ok := t.live[id]
	if !ok {
		return false
	}
	heap.Remove(&t.q, tm.index)
	delete(t.live, id)
	return true
}

// Advance moves time forward by d and fires every timer that became due, in
// deadline order (ties in scheduling order). It returns the number fired.
func (t *Timers) Advance(d time.Duration) int {
	if d < 0 {
		d = 0
	}
	return t.AdvanceTo(t.now + uint64(d/time.Millisecond))
}

// AdvanceTo moves time forward to tick (never backwards) and fires due timers.
func (t *Timers) AdvanceTo(tick uint64) int {
	if tick > t.now {
		t.now = tick
	}
	fired := 0
	for len(t.q) > 0 && t.q[0].deadline <= t.now {
		tm := heap.Pop(&t.q).(*timer)
		delete(t.live, tm.id)
		if tm.fn != nil {
			tm.fn()
		}
		fired++
	}
	return fired
}

type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].deadline != q[j].deadline {
		return q[i].deadline < q[j].deadline
	}
	return q[i].id < q[j].id
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	tm := x.(*timer)
	tm.index = len(*q)
	*q = append(*q, tm)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	tm := old[n-1]
	old[n-1] = nil
	tm.index = -1
	*q = old[:n-1]
	return tm
}
