//go:build linux

package poller

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Add registers interest in fd. OneShot is always added to mask, so after fd
// fires it reports nothing more until re-armed with ModifyOrAdd. Fails with a
// *SyscallError wrapping EEXIST if fd is already registered.
func (p *Poller) Add(fd int, mask Mask) error {
	return p.core.ctl(unix.EPOLL_CTL_ADD, "epoll_ctl_add", fd, mask)
}

// Modify replaces the interest mask of a registered fd, re-arming it. Fails
// with a *SyscallError wrapping ENOENT if fd is not registered.
func (p *Poller) Modify(fd int, mask Mask) error {
	return p.core.ctl(unix.EPOLL_CTL_MOD, "epoll_ctl_mod", fd, mask)
}

// ModifyOrAdd re-arms fd, registering it if it was not registered. This lets
// callers re-arm after a one-shot fire without tracking registration state.
func (p *Poller) ModifyOrAdd(fd int, mask Mask) error {
	err := p.Modify(fd, mask)
	if err != nil && errors.Is(err, unix.ENOENT) {
		return p.Add(fd, mask)
	}
	return err
}

// Remove deregisters fd. Closing fd deregisters it implicitly, so this is only
// needed for eager cleanup.
func (p *Poller) Remove(fd int) error {
	return p.core.ctl(unix.EPOLL_CTL_DEL, "epoll_ctl_del", fd, 0)
}

// ctl counts itself in flight before checking the status, so a concurrent
// Destroy cannot close epfd under the EpollCtl.
func (c *core) ctl(op int, name string, fd int, mask Mask) error {
	c.inflight.Add(1)
	defer c.inflight.Add(-1)
	if c.status.load() == Dead {
		return ErrDestroyed
	}
	epfd := int(c.epfd.Load())
	if epfd < 0 {
		return ErrDestroyed
	}
	if fd == c.wake.r || fd == c.wake.w {
		return ErrReservedFD
	}
	var ev *unix.EpollEvent
	if op != unix.EPOLL_CTL_DEL {
		ev = &unix.EpollEvent{
			Events: uint32(mask | OneShot),
			Fd:     int32(fd),
		}
	}
	return newSyscallError(name, fd, unix.EpollCtl(epfd, op, fd, ev))
}
