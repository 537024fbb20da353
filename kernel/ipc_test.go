package kernel

import (
	"runtime"
	"sync"
	"testing"
)

func TestMailboxTryRecvEmpty(t *testing.T) {
	mb := NewMailbox[int](4)

	_, ok := mb.TryRecv()
	if ok {
		t.Fatalf("TryRecv() ok = true, want false")
	}
}

func TestMailboxCapacityRoundsUp(t *testing.T) {
	if got := NewMailbox[int](5).Cap(); got != 8 {
		t.Fatalf("Cap() = %d, want 8", got)
	}
	if got := NewMailbox[int](0).Cap(); got != DefaultMailboxSlots {
		t.Fatalf("Cap() = %d, want %d", got, DefaultMailboxSlots)
	}
}

func TestMailboxTrySendFull(t *testing.T) {
	mb := NewMailbox[int](8)

	for i := 0; i < mb.Cap(); i++ {
		if ok := mb.TrySend(i); !ok {
			t.Fatalf("TrySend() ok = false at slot %d, want true", i)
		}
	}
	if ok := mb.TrySend(99); ok {
		t.Fatalf("TrySend() ok = true when full, want false")
	}
	if got := mb.Len(); got != 8 {
		t.Fatalf("Len() = %d, want 8", got)
	}

	for i := 0; i < mb.Cap(); i++ {
		got, ok := mb.TryRecv()
		if !ok {
			t.Fatalf("TryRecv() ok = false at slot %d, want true", i)
		}
		if got != i {
			t.Fatalf("TryRecv() = %d, want %d (FIFO)", got, i)
		}
	}
}

func TestMailboxWrapsAround(t *testing.T) {
	mb := NewMailbox[int](2)
	for round := 0; round < 10; round++ {
		mb.Send(round)
		mb.Send(round + 100)
		if got := mb.Recv(); got != round {
			t.Fatalf("round %d: Recv() = %d, want %d", round, got, round)
		}
		if got := mb.Recv(); got != round+100 {
			t.Fatalf("round %d: Recv() = %d, want %d", round, got, round+100)
		}
	}
}

func TestMailboxDrain(t *testing.T) {
	mb := NewMailbox[string](4)
	mb.Send("a")
	mb.Send("b")
	mb.Send("c")

	var got []string
	n := mb.Drain(func(s string) { got = append(got, s) })
	if n != 3 || len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Fatalf("Drain() = %d %v, want 3 [a b c]", n, got)
	}
	if n := mb.Drain(func(string) {}); n != 0 {
		t.Fatalf("Drain() on empty = %d, want 0", n)
	}
}

func TestMailboxConcurrentProducers(t *testing.T) {
	oldProcs := runtime.GOMAXPROCS(1)
	defer runtime.GOMAXPROCS(oldProcs)

	const (
		producers = 4
		perProd   = 10_000
		total     = producers * perProd
	)

	mb := NewMailbox[uint32](8)

	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(producers)
	for producerID := 0; producerID < producers; producerID++ {
		go func(producerID int) {
			defer wg.Done()
			<-start
			for i := 0; i < perProd; i++ {
				mb.Send(uint32(producerID*perProd + i))
			}
		}(producerID)
	}
	close(start)

	seen := make([]bool, total)
	last := make([]int, producers)
	for i := range last {
		last[i] = -1
	}
	for i := 0; i < total; i++ {
		id := mb.Recv()
		if int(id) >= total {
			t.Fatalf("Recv() id = %d, want < %d", id, total)
		}
		if seen[id] {
			t.Fatalf("Recv() duplicate id %d", id)
		}
		seen[id] = true

		// Per-producer order is preserved.
		p, seq := int(id)/perProd, int(id)%perProd
		if seq <= last[p] {
			t.Fatalf("producer %d: got %d after %d", p, seq, last[p])
		}
		last[p] = seq
	}

	wg.Wait()
}
