//go:build linux

package poller

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
)

// sweeper destroys cores whose Poller became unreachable. The runtime
// cleanup only enqueues, the destroy itself happens on the sweeper
// goroutine, so a slow close never stalls the runtime's cleanup queue.
var sweeper struct {
	pending *queue.Queue // of *core
	signal  chan struct{}
	start   sync.Once
	mu      sync.Mutex

	destroyed atomic.Uint64
}

func init() {
	sweeper.pending = queue.New()
	sweeper.signal = make(chan struct{}, 1)
}

// enqueueSweep is the runtime cleanup registered for every tracked Poller.
func enqueueSweep(c *core) {
	sweeper.mu.Lock()
	sweeper.pending.Add(c)
	sweeper.mu.Unlock()

	sweeper.start.Do(func() { go runSweeper() })

	select {
	case sweeper.signal <- struct{}{}:
	default:
	}
}

func runSweeper() {
	for range sweeper.signal {
		n := sweepPending()
		n += sweepCollected()
		if n > 0 {
			getDefaultLogger().Info().
				Int(`destroyed`, n).
				Log(`reclamation sweep`)
		}
	}
}

// sweepPending destroys every queued core, including any queued while it
// runs.
func sweepPending() (n int) {
	for {
		sweeper.mu.Lock()
		if sweeper.pending.Length() == 0 {
			sweeper.mu.Unlock()
			return n
		}
		c := sweeper.pending.Remove().(*core)
		sweeper.mu.Unlock()

		if c.destroy(`sweep`) {
			sweeper.destroyed.Add(1)
			n++
		}
	}
}

// sweepCollected destroys cores whose handle the registry saw collected.
func sweepCollected() (n int) {
	for _, c := range pollers.collected() {
		if c.destroy(`sweep`) {
			sweeper.destroyed.Add(1)
			n++
		}
	}
	return n
}

// Sweep runs reclamation passes until one destroys nothing, returning the
// total destroyed. Each pass forces a garbage collection, then destroys every
// tracked poller that user code can no longer reach, since a destroy may make
// further pollers collectible.
//
// Sweep is a backstop: pollers should be destroyed explicitly.
//
// Each destroyed poller logs its own destroy line to its own logger, while
// the pass summary goes to the default logger (see SetDefaultLogger). The
// background sweeper logs the same way.
func Sweep(ctx context.Context) (total int, err error) {
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		runtime.GC()
		n := sweepCollected() + sweepPending()
		total += n
		if n == 0 {
			break
		}
	}
	if total > 0 {
		getDefaultLogger().Info().
			Int(`destroyed`, total).
			Log(`reclamation sweep`)
	}
	return total, nil
}

// Swept returns the number of pollers destroyed by reclamation so far.
func Swept() uint64 {
	return sweeper.destroyed.Load()
}
