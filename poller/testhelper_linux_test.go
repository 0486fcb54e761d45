//go:build linux

package poller

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// closer returns an idempotent close for fd, also registered as cleanup, so
// a test closing an end early never double-closes a reused descriptor.
func closer(t *testing.T, fd int) func() {
	var once sync.Once
	fn := func() { once.Do(func() { _ = unix.Close(fd) }) }
	t.Cleanup(fn)
	return fn
}

// testPipe creates a nonblocking pipe, returning a close func for the write
// end. Both ends are closed on cleanup.
func testPipe(t *testing.T) (r, w int, closeW func()) {
	t.Helper()
	var fds [2]int
	require.NoError(t, unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC))
	closer(t, fds[0])
	return fds[0], fds[1], closer(t, fds[1])
}

// testSocketpair creates a nonblocking AF_UNIX stream pair, returning a
// close func for b.
func testSocketpair(t *testing.T) (a, b int, closeB func()) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)
	closer(t, fds[0])
	return fds[0], fds[1], closer(t, fds[1])
}

// testCreate creates a poller that is destroyed on cleanup.
func testCreate(t *testing.T, opts ...Option) *Poller {
	t.Helper()
	p, err := Create(opts...)
	require.NoError(t, err)
	t.Cleanup(p.Destroy)
	return p
}

func writeByte(t *testing.T, fd int) {
	t.Helper()
	_, err := unix.Write(fd, []byte{'x'})
	require.NoError(t, err)
}

// soon is a deadline for non-blocking-ish polls that must not hang a test.
func soon() time.Time {
	return time.Now().Add(50 * time.Millisecond)
}

// masksByFD flattens a Collect result, failing on duplicates.
func masksByFD(t *testing.T, ready []Ready) map[int]Mask {
	t.Helper()
	m := make(map[int]Mask, len(ready))
	for _, r := range ready {
		_, dup := m[r.FD]
		require.False(t, dup, "fd %d reported twice", r.FD)
		m[r.FD] = r.Mask
	}
	return m
}
