package dashboard

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// eventQueue is an unbounded multi-producer single-consumer FIFO. Post never
// blocks regardless of how far the consumer has fallen behind, and items from
// one producer are delivered in the order that producer posted them.
type eventQueue struct {
	mu     sync.Mutex
	ready  *sync.Cond
	items  []tea.Msg
	closed bool
}

func newEventQueue() *eventQueue {
	q := &eventQueue{}
	q.ready = sync.NewCond(&q.mu)
	return q
}

// Post enqueues msg and reports whether it was accepted. Posts against a
// closed queue are dropped.
func (q *eventQueue) Post(msg tea.Msg) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, msg)
	q.ready.Signal()
	return true
}

// Next blocks until an item is available and pops it. Once the queue is
// closed and drained it reports ok=false.
func (q *eventQueue) Next() (tea.Msg, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.ready.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	msg := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return msg, true
}

// Close makes further posts no-ops and wakes any blocked consumer. Items
// already queued can still be drained.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.ready.Broadcast()
}

// Len reports the number of queued items.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
