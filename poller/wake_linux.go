//go:build linux

package poller

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// wakeChannel interrupts a blocked wait from another goroutine. It behaves
// as a level-triggered binary semaphore: readable while at least one signal
// is buffered, and a full channel already implies a pending wake.
//
// For an eventfd both ends are the same descriptor.
type wakeChannel struct {
	r, w  int
	kind  WakeKind
	token [8]byte
}

// newWakeChannel creates a nonblocking wake channel.
func newWakeChannel(kind WakeKind, closeOnExec bool) (*wakeChannel, error) {
	switch kind {
	case WakeEventFD:
		flags := unix.EFD_NONBLOCK
		if closeOnExec {
			flags |= unix.EFD_CLOEXEC
		}
		fd, err := unix.Eventfd(0, flags)
		if err != nil {
			return nil, newSyscallError("eventfd", -1, err)
		}
		c := &wakeChannel{r: fd, w: fd, kind: kind}
		binary.NativeEndian.PutUint64(c.token[:], 1)
		return c, nil

	default:
		flags := unix.O_NONBLOCK
		if closeOnExec {
			flags |= unix.O_CLOEXEC
		}
		var fds [2]int
		if err := unix.Pipe2(fds[:], flags); err != nil {
			return nil, newSyscallError("pipe2", -1, err)
		}
		return &wakeChannel{r: fds[0], w: fds[1], kind: WakePipe, token: [8]byte{1}}, nil
	}
}

// signal performs one nonblocking write. EAGAIN means the channel is full,
// which already guarantees a pending wake.
func (c *wakeChannel) signal() error {
	var err error
	if c.kind == WakeEventFD {
		_, err = writeFD(c.w, c.token[:])
	} else {
		_, err = writeFD(c.w, c.token[:1])
	}
	return err
}

// drain reads until the channel would block.
func (c *wakeChannel) drain() {
	var buf [64]byte
	for {
		n, err := readFD(c.r, buf[:])
		if err != nil || n <= 0 {
			return
		}
		if c.kind == WakeEventFD {
			// a single read resets the counter
			return
		}
	}
}

// close releases both ends. The result is the error from closing the read
// end, errors from the write end are returned separately so the caller can
// swallow them.
func (c *wakeChannel) close() (readErr, writeErr error) {
	readErr = newSyscallError("close", c.r, closeFD(c.r))
	if c.w != c.r {
		writeErr = newSyscallError("close", c.w, closeFD(c.w))
	}
	return
}

// Wake interrupts a goroutine blocked in Run. It only writes while the status
// is Waiting, and is a no-op for NotWaiting and Dead. It never fails visibly,
// a full channel already holds a pending wake.
//
// Wake is lock-free and safe from any goroutine, including concurrently with
// Destroy.
func (p *Poller) Wake() {
	c := p.core
	c.inflight.Add(1)
	defer c.inflight.Add(-1)

	if c.status.load() != Waiting {
		return
	}
	if err := c.wake.signal(); err != nil {
		if err != unix.EAGAIN {
			logSwallowed(c.logger, c.id, `wake_write`, c.wake.w, err)
		}
		return
	}
	c.stats.wakes.Add(1)
}
