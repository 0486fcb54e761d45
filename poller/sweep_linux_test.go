//go:build linux

package poller

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests force garbage collections and inspect process-wide state, so
// they are deliberately not parallel.

// abandon creates a poller and drops the handle, returning its core.
//
//go:noinline
func abandon(t *testing.T, opts ...Option) *core {
	p, err := Create(opts...)
	require.NoError(t, err)
	return p.core
}

func TestSweep_ReclaimsUnreachable(t *testing.T) {
	before := Swept()
	c := abandon(t)
	require.Equal(t, NotWaiting, c.status.load())

	// the runtime cleanup and Sweep race to destroy it, either is fine
	require.Eventually(t, func() bool {
		_, _ = Sweep(context.Background())
		return c.status.load() == Dead
	}, 5*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool { return c.epfd.Load() == -1 }, 5*time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, Swept(), before+1)
}

func TestSweep_ManyUnreachable(t *testing.T) {
	const count = 16

	cores := make([]*core, count)
	for i := range cores {
		cores[i] = abandon(t)
	}

	require.Eventually(t, func() bool {
		_, _ = Sweep(context.Background())
		for _, c := range cores {
			if c.epfd.Load() != -1 {
				return false
			}
		}
		return true
	}, 5*time.Second, 10*time.Millisecond)

	for _, c := range cores {
		assert.Equal(t, Dead, c.status.load())
	}
}

func TestSweep_ReclamationDisabled(t *testing.T) {
	c := abandon(t, WithReclamation(false))
	t.Cleanup(func() { c.destroy(`test`) })

	_, err := Sweep(context.Background())
	require.NoError(t, err)
	runtime.GC()
	assert.Equal(t, NotWaiting, c.status.load())
	assert.GreaterOrEqual(t, c.epfd.Load(), int32(0))
}

func TestSweep_ReachableUntouched(t *testing.T) {
	p, err := Create()
	require.NoError(t, err)
	defer p.Destroy()

	_, err = Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NotWaiting, p.Status())
	assert.GreaterOrEqual(t, p.FD(), 0)
}

func TestSweep_ExplicitDestroyNotCounted(t *testing.T) {
	_, err := Sweep(context.Background())
	require.NoError(t, err)
	before := Swept()

	c := func() *core {
		p, err := Create()
		require.NoError(t, err)
		p.Destroy()
		return p.core
	}()

	n, err := Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, before, Swept())
	assert.Equal(t, Dead, c.status.load())
}

func TestSweep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := Sweep(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
}

func TestLive(t *testing.T) {
	_, err := Sweep(context.Background())
	require.NoError(t, err)
	before := Live()

	p, err := Create()
	require.NoError(t, err)
	assert.Equal(t, before+1, Live())

	untracked, err := Create(WithReclamation(false))
	require.NoError(t, err)
	assert.Equal(t, before+1, Live())
	untracked.Destroy()

	p.Destroy()
	assert.Equal(t, before, Live())
}

func TestRegistry_Compact(t *testing.T) {
	r := newRegistry()
	var keep []*Poller
	for i := range 100 {
		p, err := Create(WithReclamation(false))
		require.NoError(t, err)
		r.add(p)
		if i%10 == 0 {
			keep = append(keep, p)
		} else {
			p.Destroy()
		}
	}
	defer func() {
		for _, p := range keep {
			p.Destroy()
		}
	}()

	// destroyed entries are dropped without being returned
	assert.Empty(t, r.collected())
	assert.Len(t, r.data, len(keep))
	assert.Len(t, r.ring, len(keep))
	assert.Equal(t, len(keep), r.live())
}

func TestRegistry_ForgetsDestroyed(t *testing.T) {
	_, err := Sweep(context.Background())
	require.NoError(t, err)

	size := func() (data, ring int) {
		pollers.mu.Lock()
		defer pollers.mu.Unlock()
		return len(pollers.data), len(pollers.ring)
	}
	before, _ := size()
	live := Live()

	for range 1000 {
		p, err := Create(WithInitialCapacity(1024))
		require.NoError(t, err)
		p.Destroy()
	}

	data, ring := size()
	assert.Equal(t, before, data)
	assert.LessOrEqual(t, ring, max(65, 4*data+4))
	assert.Equal(t, live, Live())
}

func TestSweep_Logging(t *testing.T) {
	var def, own syncBuffer
	SetDefaultLogger(newTestLogger(&def, logiface.LevelInformational))
	defer SetDefaultLogger(nil)

	c := abandon(t, WithLogger(newTestLogger(&own, logiface.LevelDebug)))
	require.Eventually(t, func() bool {
		_, _ = Sweep(context.Background())
		return c.epfd.Load() == -1
	}, 5*time.Second, 10*time.Millisecond)

	// the destroy line goes to the poller's logger, the pass summary to the
	// default one
	assert.Contains(t, own.String(), `"reason":"sweep"`)
	assert.NotContains(t, own.String(), `reclamation sweep`)
	require.Eventually(t, func() bool {
		return strings.Contains(def.String(), `reclamation sweep`)
	}, 5*time.Second, time.Millisecond)
	assert.NotContains(t, def.String(), `poller destroyed`)
}
