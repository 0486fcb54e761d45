//go:build linux

package poller

import (
	"math"
	"time"

	"golang.org/x/sys/unix"
)

// Fold accumulates one ready (fd, mask) pair into acc.
type Fold[R any] func(acc R, fd int, mask Mask) R

// Ready is a descriptor reported by a wait, and its readiness mask.
type Ready struct {
	FD   int
	Mask Mask
}

// Collect is the default Fold, building an association list with the most
// recent record first.
func Collect(acc []Ready, fd int, mask Mask) []Ready {
	acc = append(acc, Ready{})
	copy(acc[1:], acc)
	acc[0] = Ready{FD: fd, Mask: mask}
	return acc
}

// Run blocks until a registered descriptor is ready, the deadline passes, or
// Wake is called, then folds the ready records into seed.
//
// A zero deadline blocks indefinitely, an elapsed deadline polls without
// blocking. refresh, if non-nil, is called after the status becomes Waiting
// and may replace the deadline, e.g. with time.Now() when the caller's run
// queue is non-empty. This is the only place callers may safely check shared
// state that Wake is used to signal.
//
// Records are folded in kernel order, which is neither stable nor FIFO. If
// the wait fills the event buffer, its capacity doubles before the next Run.
//
// Run must only be called from the poller's owning goroutine. It returns
// ErrDestroyed (with seed) if the poller is or becomes destroyed.
func Run[R any](p *Poller, deadline time.Time, refresh func(time.Time) time.Time, fold Fold[R], seed R) (R, error) {
	c := p.core

	if !c.running.CompareAndSwap(false, true) {
		return seed, ErrConcurrentRun
	}
	defer c.running.Store(false)

	events := c.buf.ensure()

	if !c.status.tryTransition(NotWaiting, Waiting) {
		return seed, ErrDestroyed
	}

	n, err := c.sleep(events, deadline, refresh)
	if err != nil {
		return seed, err
	}

	c.stats.polls.Add(1)
	if from, to, grew := c.buf.saturated(n); grew {
		c.stats.grows.Add(1)
		c.logger.Debug().
			Uint64(`poller`, c.id).
			Int(`from`, from).
			Int(`to`, to).
			Log(`event buffer saturated`)
	}

	acc := seed
	for i := 0; i < n; i++ {
		fd := int(events[i].Fd)
		if fd == c.wake.r {
			continue
		}
		c.stats.events.Add(1)
		acc = fold(acc, fd, Mask(events[i].Events))
	}
	return acc, nil
}

// Poll is Run with no refresh and the Collect fold.
func (p *Poller) Poll(deadline time.Time) ([]Ready, error) {
	return Run(p, deadline, nil, Collect, nil)
}

// sleep calls refresh then waits, with the status Waiting. NotWaiting is
// restored on every exit, including a panic in refresh. If Destroy ran
// meanwhile, it left the release to us, and the result is ErrDestroyed.
func (c *core) sleep(events []unix.EpollEvent, deadline time.Time, refresh func(time.Time) time.Time) (n int, err error) {
	defer func() {
		if !c.status.tryTransition(Waiting, NotWaiting) {
			c.release(`runner`)
			n, err = 0, ErrDestroyed
		}
	}()
	if refresh != nil {
		deadline = refresh(deadline)
	}
	return c.wait(events, deadline)
}

// wait blocks in epoll_wait, retrying EINTR with the timeout recomputed from
// deadline. The wake channel is drained when it is among the results. The
// returned count is the raw number of records written into events,
// including the wake channel's.
func (c *core) wait(events []unix.EpollEvent, deadline time.Time) (int, error) {
	epfd := int(c.epfd.Load())
	for {
		n, err := unix.EpollWait(epfd, events, timeoutMillis(deadline))
		if err == unix.EINTR {
			c.stats.interrupts.Add(1)
			c.logger.Trace().
				Uint64(`poller`, c.id).
				Log(`epoll_wait interrupted, retrying`)
			continue
		}
		if err != nil {
			return 0, newSyscallError("epoll_wait", epfd, err)
		}
		for i := 0; i < n; i++ {
			if int(events[i].Fd) == c.wake.r {
				c.wake.drain()
				break
			}
		}
		return n, nil
	}
}

// timeoutMillis converts a deadline to an epoll_wait timeout. Zero means
// block indefinitely (-1). Remaining time is rounded up, so that a wait never
// returns before its deadline.
func timeoutMillis(deadline time.Time) int {
	if deadline.IsZero() {
		return -1
	}
	d := time.Until(deadline)
	if d <= 0 {
		return 0
	}
	ms := (d + time.Millisecond - 1) / time.Millisecond
	if ms > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(ms)
}
