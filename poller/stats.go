package poller

import (
	"sync/atomic"
)

// Stats is a snapshot of a poller's counters.
type Stats struct {
	// Polls is the number of completed wait calls.
	Polls uint64
	// Events is the number of user events passed to a fold.
	Events uint64
	// Wakes is the number of wake signals written.
	Wakes uint64
	// Grows is the number of times the event buffer capacity doubled.
	Grows uint64
	// Interrupts is the number of EINTR retries inside Run.
	Interrupts uint64
}

type stats struct {
	polls      atomic.Uint64
	events     atomic.Uint64
	wakes      atomic.Uint64
	grows      atomic.Uint64
	interrupts atomic.Uint64
}

func (s *stats) snapshot() Stats {
	return Stats{
		Polls:      s.polls.Load(),
		Events:     s.events.Load(),
		Wakes:      s.wakes.Load(),
		Grows:      s.grows.Load(),
		Interrupts: s.interrupts.Load(),
	}
}
