package hal

import "time"

type hostTime struct {
	ch  chan uint64
	seq uint64

	last time.Time
	acc  time.Duration
}

func newHostTime() *hostTime {
	return &hostTime{ch: make(chan uint64, 1024)}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

// step advances by the wall-clock time since the previous call.
func (t *hostTime) step() {
	now := time.Now()
	if t.last.IsZero() {
		t.last = now
		t.acc = 0
		t.stepN(1)
		return
	}

	t.acc += now.Sub(t.last)
	t.last = now

	const tickDur = time.Millisecond
	ticks := uint64(t.acc / tickDur)
	if ticks == 0 {
		return
	}
	t.acc = t.acc % tickDur
	t.stepN(ticks)
}

// stepFixed advances by exactly d regardless of the wall clock.
func (t *hostTime) stepFixed(d time.Duration) {
	t.stepN(uint64(d / time.Millisecond))
}

// stepN publishes only the newest sequence number: consumers care about the
// current tick, and a full channel must not stall the render loop.
func (t *hostTime) stepN(n uint64) {
	if n == 0 {
		return
	}
	t.seq += n
	select {
	case t.ch <- t.seq:
	default:
	}
}

// LatestTick drains a tick stream without blocking and returns the newest
// sequence seen, or last if nothing arrived.
func LatestTick(ticks <-chan uint64, last uint64) uint64 {
	for {
		select {
		case seq, ok := <-ticks:
			if !ok {
				return last
			}
			if seq > last {
				last = seq
			}
		default:
			return last
		}
	}
}
