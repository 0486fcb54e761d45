//go:build linux

package poller

import (
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// eventBuffer is the reusable flat array the kernel writes ready records into.
// Capacity only grows, by doubling, and the slice is reallocated lazily at
// the start of the next wait.
//
// Only Run touches events. capacity is atomic so that it may be inspected
// from other goroutines.
type eventBuffer struct {
	events   []unix.EpollEvent
	capacity atomic.Int64
}

func (b *eventBuffer) init(capacity int) {
	b.capacity.Store(int64(capacity))
}

// ensure reallocates the slice if its length differs from the capacity.
func (b *eventBuffer) ensure() []unix.EpollEvent {
	if c := int(b.capacity.Load()); len(b.events) != c {
		b.events = make([]unix.EpollEvent, c)
	}
	return b.events
}

// saturated doubles the capacity if n filled the buffer, returning the old
// and new capacity.
func (b *eventBuffer) saturated(n int) (from, to int, grew bool) {
	from = int(b.capacity.Load())
	if n < from {
		return from, from, false
	}
	to = from * 2
	b.capacity.Store(int64(to))
	return from, to, true
}

