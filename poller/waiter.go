package poller

import (
	"sync/atomic"

	"github.com/eapache/queue"
)

// Continuation resumes a parked fiber.
type Continuation func()

// WaiterRecord holds the fibers waiting on one descriptor: the one currently
// being resumed (head), and those queued behind it (tail). Records are owned
// by the scheduler, which must serialize its own operations per descriptor.
// Clear, and the finalizer from BuildFDFinalizer, are safe from any goroutine.
type WaiterRecord struct {
	head atomic.Pointer[Continuation]
	tail atomic.Pointer[queue.Queue] // of Continuation
}

// SetHead sets the currently resumed continuation, nil clears it.
func (w *WaiterRecord) SetHead(c Continuation) {
	if c == nil {
		w.head.Store(nil)
		return
	}
	w.head.Store(&c)
}

// Head returns the currently resumed continuation, or nil.
func (w *WaiterRecord) Head() Continuation {
	if c := w.head.Load(); c != nil {
		return *c
	}
	return nil
}

// Push queues c behind the head.
func (w *WaiterRecord) Push(c Continuation) {
	q := w.tail.Load()
	if q == nil {
		q = queue.New()
		w.tail.Store(q)
	}
	q.Add(c)
}

// Next moves the oldest pending continuation into the head, returning it, or
// nil if nothing is pending.
func (w *WaiterRecord) Next() Continuation {
	q := w.tail.Load()
	if q == nil || q.Length() == 0 {
		w.head.Store(nil)
		return nil
	}
	c := q.Remove().(Continuation)
	w.SetHead(c)
	return c
}

// Len returns the number of pending continuations, excluding the head.
func (w *WaiterRecord) Len() int {
	if q := w.tail.Load(); q != nil {
		return q.Length()
	}
	return 0
}

// Empty reports whether there is neither a head nor anything pending.
func (w *WaiterRecord) Empty() bool {
	return w.head.Load() == nil && w.Len() == 0
}

// Clear drops the head and the pending tail.
func (w *WaiterRecord) Clear() {
	w.head.Store(nil)
	w.tail.Store(nil)
}
