//go:build linux

package poller

import (
	"runtime"
	"sync/atomic"

	"github.com/joeycumines/logiface"
	"golang.org/x/sys/unix"
)

// Poller multiplexes descriptor readiness across one blocking wait per Run.
// Instances must be created with Create.
//
// Poller is a thin handle around core. The reclamation sweep watches the
// handle, and destroys the core once the handle is unreachable.
type Poller struct {
	// Prevent copying
	_ [0]func()

	core    *core
	cleanup runtime.Cleanup
	tracked bool
}

// core holds everything the poller owns. It must never reference its Poller,
// or the handle could not become unreachable.
type core struct { // betteralign:ignore
	status statusWord

	logger *logiface.Logger[logiface.Event]
	wake   *wakeChannel

	// buf is only touched by Run.
	buf eventBuffer

	stats stats

	id uint64

	// epfd is -1 once released, swapping it is what makes release run once.
	epfd atomic.Int32

	// inflight counts Wake and registration calls that passed their status
	// check, and may still touch the descriptors.
	inflight atomic.Int64

	// running guards against overlapping Run calls.
	running atomic.Bool
}

var pollerIDCounter atomic.Uint64

// Create creates a poller. The wake channel is created first, then the epoll
// instance, and the wake channel's read end is registered as the first
// interest. Any OS failure is returned as a *SyscallError, after closing
// whatever was opened.
func Create(opts ...Option) (*Poller, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	wake, err := newWakeChannel(cfg.wakeKind, cfg.closeOnExec)
	if err != nil {
		return nil, err
	}

	var flags int
	if cfg.closeOnExec {
		flags = unix.EPOLL_CLOEXEC
	}
	epfd, err := unix.EpollCreate1(flags)
	if err != nil {
		_, _ = wake.close()
		return nil, newSyscallError("epoll_create1", -1, err)
	}

	c := &core{
		logger: cfg.logger,
		wake:   wake,
		id:     pollerIDCounter.Add(1),
	}
	c.epfd.Store(int32(epfd))
	c.buf.init(cfg.initialCapacity)

	// Level-triggered and never one-shot: the wait drains it on every wake.
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wake.r)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wake.r, &ev); err != nil {
		_ = closeFD(epfd)
		_, _ = wake.close()
		return nil, newSyscallError("epoll_ctl_add", wake.r, err)
	}

	p := &Poller{core: c}
	if cfg.reclamation {
		p.cleanup = runtime.AddCleanup(p, enqueueSweep, c)
		p.tracked = true
		track(p)
	}

	c.logger.Debug().
		Uint64(`poller`, c.id).
		Int(`epfd`, epfd).
		Int(`wake_r`, wake.r).
		Int(`wake_w`, wake.w).
		Stringer(`wake`, wake.kind).
		Int(`capacity`, cfg.initialCapacity).
		Log(`poller created`)

	return p, nil
}

// IsPoller reports whether v is a *Poller.
func IsPoller(v any) bool {
	_, ok := v.(*Poller)
	return ok
}

// Destroy releases every descriptor the poller owns. It is idempotent, and
// safe to call from any goroutine, concurrently with Wake. If a goroutine is
// blocked in Run, it is woken and performs the release itself, returning
// ErrDestroyed.
func (p *Poller) Destroy() {
	if p == nil || p.core == nil {
		return
	}
	if p.tracked {
		p.cleanup.Stop()
	}
	p.core.destroy(`explicit`)
}

// ID returns a process-unique identifier for the poller.
func (p *Poller) ID() uint64 {
	return p.core.id
}

// FD returns the epoll descriptor, or -1 once destroyed. If Destroy is
// called while Run is blocked, the runner closes the descriptors on its way
// out, so FD may briefly report the old descriptor after Destroy returns.
func (p *Poller) FD() int {
	return int(p.core.epfd.Load())
}

// Capacity returns the current event buffer capacity.
func (p *Poller) Capacity() int {
	return int(p.core.buf.capacity.Load())
}

// Status returns the current wake protocol status.
func (p *Poller) Status() Status {
	return p.core.status.load()
}

// Stats returns a snapshot of the poller's counters.
func (p *Poller) Stats() Stats {
	return p.core.stats.snapshot()
}

// destroy moves the status to Dead, then releases the descriptors, or hands
// that job to the goroutine blocked in Run. It reports false if the core was
// already dead.
func (c *core) destroy(reason string) bool {
	// counted as in flight, so a racing release cannot close the channel
	// under the signal below
	c.inflight.Add(1)
	prev := c.status.swap(Dead)
	if prev == Waiting {
		if err := c.wake.signal(); err != nil && err != unix.EAGAIN {
			logSwallowed(c.logger, c.id, `wake_write`, c.wake.w, err)
		}
	}
	c.inflight.Add(-1)

	switch prev {
	case Dead:
		return false
	case Waiting:
		// the blocked Run observes Dead on return and calls release
		c.logger.Debug().
			Uint64(`poller`, c.id).
			Str(`reason`, reason).
			Log(`poller destroy deferred to runner`)
	default:
		c.release(reason)
	}
	return true
}

// release closes the wake channel then the epoll descriptor, at most once.
func (c *core) release(reason string) {
	epfd := c.epfd.Swap(-1)
	if epfd < 0 {
		return
	}

	// Dead is visible to every new Wake or registration, wait out the ones
	// already past their status check.
	for spin := 0; c.inflight.Load() > 0; spin++ {
		if spin > 1000 {
			runtime.Gosched()
		}
	}

	readErr, writeErr := c.wake.close()
	if writeErr != nil {
		logSwallowed(c.logger, c.id, `close_wake_w`, c.wake.w, writeErr)
	}
	epErr := newSyscallError("close", int(epfd), closeFD(int(epfd)))
	pollers.remove(c.id)

	c.logger.Debug().
		Uint64(`poller`, c.id).
		Str(`reason`, reason).
		Int(`epfd`, int(epfd)).
		Call(func(b *logiface.Builder[logiface.Event]) {
			if readErr != nil {
				b.Err(readErr)
			} else if epErr != nil {
				b.Err(epErr)
			}
		}).
		Log(`poller destroyed`)
}
