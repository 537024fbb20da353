package kernel

import (
	"runtime"
	"sync/atomic"
)

// DefaultMailboxSlots is the capacity used when NewMailbox is given n <= 0.
const DefaultMailboxSlots = 256

type slot[T any] struct {
	seq atomic.Uint64
	val T
}

// Mailbox is a bounded multi-producer, single-consumer FIFO queue.
//
// Producers on any goroutine call TrySend/Send; exactly one goroutine (the
// render thread) drains it with TryRecv/Recv/Drain. No allocations after
// construction; waiting spins with Gosched.
type Mailbox[T any] struct {
	_     [0]func() // prevent accidental copying.
	mask  uint64
	slots []slot[T]
	head  atomic.Uint64 // next enqueue position
	tail  atomic.Uint64 // next dequeue position
}

// NewMailbox returns a mailbox with capacity n rounded up to a power of two.
func NewMailbox[T any](n int) *Mailbox[T] {
	if n <= 0 {
		n = DefaultMailboxSlots
	}
	size := 1
	for size < n {
		size <<= 1
	}
	mb := &Mailbox[T]{
		mask:  uint64(size - 1),
		slots: make([]slot[T], size),
	}
	for i := range mb.slots {
		mb.slots[i].seq.Store(uint64(i))
	}
	return mb
}

// Cap returns the number of slots.
func (mb *Mailbox[T]) Cap() int { return len(mb.slots) }

// Len returns the number of queued messages. It is a snapshot.
func (mb *Mailbox[T]) Len() int {
	return int(mb.head.Load() - mb.tail.Load())
}

// TrySend attempts to enqueue a message, returning false if the mailbox is full.
func (mb *Mailbox[T]) TrySend(msg T) bool {
	for {
		pos := mb.head.Load()
		s := &mb.slots[pos&mb.mask]
		seq := s.seq.Load()
		switch diff := int64(seq) - int64(pos); {
		case diff == 0:
			// Reserve the slot, then publish it by bumping its sequence.
			if mb.head.CompareAndSwap(pos, pos+1) {
				s.val = msg
				s.seq.Store(pos + 1)
				return true
			}
		case diff < 0:
			return false
		}
		// Another producer claimed pos first; retry with the new head.
	}
}

// Send enqueues a message, blocking until it succeeds.
func (mb *Mailbox[T]) Send(msg T) {
	for !mb.TrySend(msg) {
		runtime.Gosched()
	}
}

// TryRecv attempts to dequeue one message, returning false if empty.
// Only one goroutine may receive.
func (mb *Mailbox[T]) TryRecv() (T, bool) {
	var zero T
	pos := mb.tail.Load()
	s := &mb.slots[pos&mb.mask]
	if int64(s.seq.Load())-int64(pos+1) < 0 {
		return zero, false
	}
	msg := s.val
	s.val = zero
	s.seq.Store(pos + mb.mask + 1)
	mb.tail.Store(pos + 1)
	return msg, true
}

// Recv blocks until one message is available.
func (mb *Mailbox[T]) Recv() T {
	for {
		msg, ok := mb.TryRecv()
		if ok {
			return msg
		}
		runtime.Gosched()
	}
}

// Drain hands every queued message to fn in FIFO order and returns how many
// were delivered. Messages sent while draining may or may not be included.
func (mb *Mailbox[T]) Drain(fn func(T)) int {
	n := 0
	for {
		msg, ok := mb.TryRecv()
		if !ok {
			return n
		}
		fn(msg)
		n++
	}
}
