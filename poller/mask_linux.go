//go:build linux

package poller

import (
	"golang.org/x/sys/unix"
)

// Mask is a set of epoll readiness bits. Test membership with a bitwise AND,
// or [Mask.Has].
type Mask uint32

// Readiness masks used for registration and reported by Run.
const (
	// Read is readable, including the peer half-closing its write side.
	Read Mask = unix.EPOLLIN | unix.EPOLLRDHUP
	// Write is writable.
	Write Mask = unix.EPOLLOUT
	// ClosedOrError is hangup or error. The kernel always reports these, they
	// need not be requested.
	ClosedOrError Mask = unix.EPOLLHUP | unix.EPOLLERR
)

// Platform flags, re-exported for composition by callers.
const (
	ReadHangup    Mask = unix.EPOLLRDHUP
	Priority      Mask = unix.EPOLLPRI
	Hangup        Mask = unix.EPOLLHUP
	Error         Mask = unix.EPOLLERR
	OneShot       Mask = unix.EPOLLONESHOT
	EdgeTriggered Mask = unix.EPOLLET
)

var maskNames = [...]struct {
	m    Mask
	name string
}{
	{unix.EPOLLIN, "EPOLLIN"},
	{unix.EPOLLOUT, "EPOLLOUT"},
	{ReadHangup, "EPOLLRDHUP"},
	{Priority, "EPOLLPRI"},
	{Error, "EPOLLERR"},
	{Hangup, "EPOLLHUP"},
	{EdgeTriggered, "EPOLLET"},
	{OneShot, "EPOLLONESHOT"},
}

// Has reports whether any bit of other is set in m.
func (m Mask) Has(other Mask) bool {
	return m&other != 0
}

// String returns the set flag names joined by "|".
func (m Mask) String() (str string) {
	for _, v := range maskNames {
		if m&v.m == 0 {
			continue
		}
		if str != "" {
			str += "|"
		}
		str += v.name
	}
	if str == "" {
		str = "0"
	}
	return
}
