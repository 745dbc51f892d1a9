package dashboard

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type seqMsg struct {
	producer int
	seq      int
}

func TestQueueDeliversInPostOrder(t *testing.T) {
	t.Parallel()

	q := newEventQueue()
	for i := 0; i < 5; i++ {
		if !q.Post(seqMsg{seq: i}) {
			t.Fatalf("post %d rejected on open queue", i)
		}
	}

	for i := 0; i < 5; i++ {
		msg, ok := q.Next()
		if !ok {
			t.Fatalf("queue reported closed with %d items outstanding", 5-i)
		}
		got, isSeq := msg.(seqMsg)
		if !isSeq {
			t.Fatalf("unexpected message type %T", msg)
		}
		if got.seq != i {
			t.Fatalf("expected item %d, got %d", i, got.seq)
		}
	}
}

func TestQueuePostNeverBlocksWithoutConsumer(t *testing.T) {
	t.Parallel()

	q := newEventQueue()
	const n = 50000
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < n; i++ {
			q.Post(seqMsg{seq: i})
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("posting without a consumer blocked")
	}
	if got := q.Len(); got != n {
		t.Fatalf("expected %d queued items, got %d", n, got)
	}
}

func TestQueueNextBlocksUntilPost(t *testing.T) {
	t.Parallel()

	q := newEventQueue()
	received := make(chan tea.Msg, 1)
	go func() {
		msg, ok := q.Next()
		if !ok {
			received <- nil
			return
		}
		received <- msg
	}()

	select {
	case <-received:
		t.Fatal("receive completed before anything was posted")
	case <-time.After(50 * time.Millisecond):
	}

	q.Post(seqMsg{seq: 7})

	select {
	case msg := <-received:
		got, isSeq := msg.(seqMsg)
		if !isSeq || got.seq != 7 {
			t.Fatalf("expected seq 7, got %#v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("receive never woke after post")
	}
}

func TestQueueClose(t *testing.T) {
	t.Parallel()

	q := newEventQueue()
	q.Post(seqMsg{seq: 0})
	q.Post(seqMsg{seq: 1})
	q.Close()
	q.Close()

	if q.Post(seqMsg{seq: 2}) {
		t.Fatal("post accepted after close")
	}

	// Items queued before close still drain in order.
	for i := 0; i < 2; i++ {
		msg, ok := q.Next()
		if !ok {
			t.Fatalf("queue empty with item %d outstanding", i)
		}
		if got := msg.(seqMsg).seq; got != i {
			t.Fatalf("expected item %d, got %d", i, got)
		}
	}
	if _, ok := q.Next(); ok {
		t.Fatal("drained closed queue still reported an item")
	}
}

func TestQueueCloseWakesBlockedConsumer(t *testing.T) {
	t.Parallel()

	q := newEventQueue()
	woke := make(chan bool, 1)
	go func() {
		_, ok := q.Next()
		woke <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-woke:
		if ok {
			t.Fatal("consumer woke with an item on an empty closed queue")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("close did not wake the blocked consumer")
	}
}

func TestQueueKeepsPerProducerOrder(t *testing.T) {
	t.Parallel()

	q := newEventQueue()
	const producers = 8
	const perProducer = 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Post(seqMsg{producer: p, seq: i})
			}
		}(p)
	}
	wg.Wait()

	lastSeen := make([]int, producers)
	for i := range lastSeen {
		lastSeen[i] = -1
	}
	for i := 0; i < producers*perProducer; i++ {
		msg, ok := q.Next()
		if !ok {
			t.Fatalf("queue closed with %d items outstanding", producers*perProducer-i)
		}
		got := msg.(seqMsg)
		if got.seq != lastSeen[got.producer]+1 {
			t.Fatalf("producer %d delivered out of order: %d after %d",
				got.producer, got.seq, lastSeen[got.producer])
		}
		lastSeen[got.producer] = got.seq
	}

	for p, last := range lastSeen {
		if last != perProducer-1 {
			t.Fatalf("producer %d only delivered through %d", p, last)
		}
	}
}
