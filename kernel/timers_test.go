package kernel

import (
	"testing"
	"time"
)

func TestTimersFireInDeadlineOrder(t *testing.T) {
	tm := NewTimers()
	var got []string
	tm.After(30*time.Millisecond, func() { got = append(got, "c") })
	tm.After(10*time.Millisecond, func() { got = append(got, "a") })
	tm.After(10*time.Millisecond, func() { got = append(got, "b") })

	if n := tm.Advance(5 * time.Millisecond); n != 0 {
		t.Fatalf("Advance(5ms) fired %d, want 0", n)
	}
	if n := tm.Advance(25 * time.Millisecond); n != 3 {
		t.Fatalf("Advance(25ms) fired %d, want 3", n)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("fire order = %v, want [a b c]", got)
	}
	if tm.Pending() != 0 {
		t.Fatalf("Pending() = %d, want 0", tm.Pending())
	}
}

func TestTimersCancel(t *testing.T) {
	tm := NewTimers()
	fired := false
	id := tm.After(time.Second, func() { fired = true })

	if !tm.Cancel(id) {
		t.Fatalf("Cancel() = false, want true")
	}
	if tm.Cancel(id) {
		t.Fatalf("second Cancel() = true, want false")
	}
	if tm.Cancel(0) {
		t.Fatalf("Cancel(0) = true, want false")
	}
	tm.Advance(2 * time.Second)
	if fired {
		t.Fatalf("cancelled timer fired")
	}
}

func TestTimersCancelAfterFire(t *testing.T) {
	tm := NewTimers()
	id := tm.After(time.Millisecond, func() {})
	tm.Advance(time.Millisecond)
	if tm.Cancel(id) {
		t.Fatalf("Cancel() after fire = true, want false")
	}
}

func TestTimersRescheduleFromCallback(t *testing.T) {
	tm := NewTimers()
	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			tm.After(10*time.Millisecond, tick)
		}
	}
	tm.After(10*time.Millisecond, tick)
	tm.AdvanceTo(100)
	// Each reschedule is relative to the advanced clock, so only the first
	// timer is due inside this call.
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	tm.Advance(10 * time.Millisecond)
	tm.Advance(10 * time.Millisecond)
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
}

func TestTimersNeverGoBackwards(t *testing.T) {
	tm := NewTimers()
	tm.AdvanceTo(50)
	tm.AdvanceTo(10)
	if tm.Now() != 50 {
		t.Fatalf("Now() = %d, want 50", tm.Now())
	}
}
