package poller

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyscallError(t *testing.T) {
	t.Parallel()

	err := newSyscallError("epoll_ctl_add", 7, syscall.EEXIST)
	require.Error(t, err)

	assert.Equal(t, "poller: epoll_ctl_add fd=7: "+syscall.EEXIST.Error(), err.Error())
	assert.True(t, errors.Is(err, ErrSyscall))
	assert.True(t, errors.Is(err, syscall.EEXIST))
	assert.False(t, errors.Is(err, syscall.ENOENT))
	assert.False(t, errors.Is(err, ErrDestroyed))

	var se *SyscallError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "epoll_ctl_add", se.Op)
	assert.Equal(t, 7, se.FD)
}

func TestSyscallError_NilPassthrough(t *testing.T) {
	t.Parallel()
	// must be an untyped nil, not a nil *SyscallError
	assert.NoError(t, newSyscallError("close", 3, nil))
	assert.True(t, newSyscallError("close", 3, nil) == nil)
}
