// Package poller is the I/O readiness core beneath a cooperative fiber
// scheduler. It wraps a Linux epoll instance so that one goroutine (normally
// locked to its OS thread, driving a run-loop) can block waiting for
// descriptor readiness, while any other goroutine can interrupt that wait.
//
// # Architecture
//
// A [Poller] owns four things:
//   - the epoll descriptor
//   - a wake channel (a nonblocking self-pipe, or an eventfd, see [WithWakeChannel])
//   - a status word ([NotWaiting], [Waiting], [Dead])
//   - a reusable event buffer that doubles whenever a wait fills it
//
// Interest is always registered one-shot: once a descriptor fires it stays
// silent until re-armed with [Poller.ModifyOrAdd].
//
// # Wake Protocol
//
// [Run] flips the status to [Waiting] before it calls the caller's deadline
// refresh function, and only then blocks. [Poller.Wake] writes to the wake
// channel only while the status is [Waiting]. A producer that mutates shared
// state and then calls Wake therefore either interrupts the wait, or its
// mutation is visible to the refresh function. Callers must check their
// shared state inside the refresh function, never before calling Run.
//
//	p, err := poller.Create()
//	if err != nil {
//	    return err
//	}
//	defer p.Destroy()
//
//	ready, err := poller.Run(p, time.Time{}, func(d time.Time) time.Time {
//	    if runQueue.Len() > 0 {
//	        return time.Now() // don't block, there is work to do
//	    }
//	    return d
//	}, poller.Collect, nil)
//
// # Reclamation
//
// Pollers own descriptors the garbage collector knows nothing about. Explicit
// [Poller.Destroy] is the primary release path. Pollers that become
// unreachable without being destroyed are destroyed by a background sweep
// (see [Sweep]).
//
// # Thread Safety
//
//   - [Run] and [Poller.Poll] must only be called from the owning goroutine
//   - [Poller.Wake], [Poller.Destroy] and the accessors are safe from any goroutine
//   - the callbacks from [BuildFDFinalizer] are safe from any goroutine
//   - registering the same descriptor from two goroutines at once is not supported
package poller
