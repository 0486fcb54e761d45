package poller

import (
	"sync/atomic"
)

// Status is the state of a [Poller]'s wake protocol.
//
// State Machine:
//
//	NotWaiting → Waiting    [Run, before the deadline refresh]
//	Waiting → NotWaiting    [Run, after the wait returns]
//	NotWaiting → Dead       [Destroy]
//	Waiting → Dead          [Destroy, the blocked Run releases descriptors]
//	Dead → (terminal)
//
// Only the goroutine inside Run moves between NotWaiting and Waiting, using
// CAS so that it can never overwrite Dead.
type Status uint32

const (
	// NotWaiting indicates no goroutine is blocked in the wait call.
	NotWaiting Status = iota
	// Waiting indicates a goroutine is inside (or about to enter) the wait call.
	Waiting
	// Dead indicates the poller has been destroyed.
	Dead
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case NotWaiting:
		return "NotWaiting"
	case Waiting:
		return "Waiting"
	case Dead:
		return "Dead"
	default:
		return "Unknown"
	}
}

// statusWord is the lock-free tri-state flag, cache-line padded as it is the
// only word written by both the owner and foreign goroutines.
//
// sync/atomic operations are sequentially consistent, which is what the
// "never misses a wake" ordering relies on.
type statusWord struct { // betteralign:ignore
	_ [64]byte      //nolint:unused
	v atomic.Uint32 // Status value
	_ [60]byte      //nolint:unused
}

func (s *statusWord) load() Status {
	return Status(s.v.Load())
}

func (s *statusWord) swap(to Status) Status {
	return Status(s.v.Swap(uint32(to)))
}

func (s *statusWord) tryTransition(from, to Status) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}
