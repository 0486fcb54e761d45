//go:build linux

package poller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestMask_Values(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Mask(unix.EPOLLIN|unix.EPOLLRDHUP), Read)
	assert.Equal(t, Mask(unix.EPOLLOUT), Write)
	assert.Equal(t, Mask(unix.EPOLLHUP|unix.EPOLLERR), ClosedOrError)
	assert.Zero(t, Read&Write)
	assert.Zero(t, Read&ClosedOrError)
}

func TestMask_Has(t *testing.T) {
	t.Parallel()
	m := Mask(unix.EPOLLIN | unix.EPOLLHUP)
	assert.True(t, m.Has(Read))
	assert.True(t, m.Has(ClosedOrError))
	assert.False(t, m.Has(Write))
}

func TestMask_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0", Mask(0).String())
	assert.Equal(t, "EPOLLIN|EPOLLRDHUP", Read.String())
	assert.Equal(t, "EPOLLOUT|EPOLLONESHOT", (Write | OneShot).String())
	assert.Equal(t, "EPOLLERR|EPOLLHUP", ClosedOrError.String())
}
